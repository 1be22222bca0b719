package scape

import (
	"context"
	"errors"
	"fmt"
	"sort"

	spikeio "spikenet/internal/io"
	"spikenet/internal/scapeid"
)

var (
	ErrUnknownScape = errors.New("unknown scape")
	ErrInvalidSteps = errors.New("steps must be > 0")
)

type Fitness float64

type Trace map[string]any

// Learner is the adapter side of a scape: it maps observations to output
// spikes and accepts reward or teacher feedback after every step.
type Learner interface {
	ID() string
	RunStep(ctx context.Context, input []float64) ([]float64, error)
	Reward(ctx context.Context, r float64) error
	Teach(ctx context.Context, teacher []float64) error
}

// TickLearner reads its observations from registered sensors instead of an
// explicit input vector.
type TickLearner interface {
	Learner
	Tick(ctx context.Context) ([]float64, error)
	RegisteredSensor(id string) (spikeio.Sensor, bool)
	RegisteredActuator(id string) (spikeio.Actuator, bool)
}

type Scape interface {
	Name() string
	// Shape reports the sensor and output layer widths the scape expects.
	Shape() (inputs, outputs int)
	// Episode runs steps observation/feedback cycles and returns the fraction
	// of steps the learner answered correctly.
	Episode(ctx context.Context, learner Learner, steps int) (Fitness, Trace, error)
}

// Options parameterizes scape construction by name.
type Options struct {
	// Width sets the pattern width of the mirror scape.
	Width int
	// Power is the reward magnitude of teacherless scapes.
	Power float64
	Seed  int64
}

var constructors = map[string]func(Options) Scape{
	"xor":    func(Options) Scape { return XORScape{} },
	"mirror": func(o Options) Scape { return MirrorScape{Width: o.Width} },
	"beacon": func(o Options) Scape { return NewBeaconScape(o.Power, o.Seed) },
}

func New(name string, opts Options) (Scape, error) {
	normalized := scapeid.Normalize(name)
	build, ok := constructors[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScape, name)
	}
	return build(opts), nil
}

func List() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkSteps(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSteps, steps)
	}
	return nil
}

func active(v float64) bool {
	return v > 0
}

func runStep(ctx context.Context, learner Learner, in []float64, want int) ([]float64, error) {
	out, err := learner.RunStep(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(out) != want {
		return nil, fmt.Errorf("learner %s returned %d outputs, want %d", learner.ID(), len(out), want)
	}
	return out, nil
}

func scalarSetter(learner TickLearner, name string) (spikeio.ScalarSensorSetter, error) {
	sensor, ok := learner.RegisteredSensor(name)
	if !ok {
		return nil, fmt.Errorf("agent %s missing sensor %s", learner.ID(), name)
	}
	setter, ok := sensor.(spikeio.ScalarSensorSetter)
	if !ok {
		return nil, fmt.Errorf("sensor %s does not support scalar set", name)
	}
	return setter, nil
}

func snapshot(learner TickLearner, name string) (spikeio.SnapshotActuator, error) {
	actuator, ok := learner.RegisteredActuator(name)
	if !ok {
		return nil, fmt.Errorf("agent %s missing actuator %s", learner.ID(), name)
	}
	output, ok := actuator.(spikeio.SnapshotActuator)
	if !ok {
		return nil, fmt.Errorf("actuator %s does not support output snapshot", name)
	}
	return output, nil
}
