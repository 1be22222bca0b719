package scape

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"spikenet/internal/agent"
	spikeio "spikenet/internal/io"
	"spikenet/internal/nn"
)

// scriptedLearner answers with fn and records every feedback it receives.
type scriptedLearner struct {
	fn       func([]float64) []float64
	inputs   [][]float64
	teachers [][]float64
	rewards  []float64
}

func (l *scriptedLearner) ID() string { return "scripted" }

func (l *scriptedLearner) RunStep(_ context.Context, in []float64) ([]float64, error) {
	l.inputs = append(l.inputs, append([]float64(nil), in...))
	return l.fn(in), nil
}

func (l *scriptedLearner) Reward(_ context.Context, r float64) error {
	l.rewards = append(l.rewards, r)
	return nil
}

func (l *scriptedLearner) Teach(_ context.Context, teacher []float64) error {
	l.teachers = append(l.teachers, append([]float64(nil), teacher...))
	return nil
}

func xorFn(in []float64) []float64 {
	if (in[0] > 0) != (in[1] > 0) {
		return []float64{1}
	}
	return []float64{0}
}

// tickLearner reads the xor sensors and writes the xor actuator.
type tickLearner struct {
	scriptedLearner
	sensors   map[string]spikeio.Sensor
	actuators map[string]spikeio.Actuator
	ticks     int
}

func newXORTickLearner() *tickLearner {
	return &tickLearner{
		scriptedLearner: scriptedLearner{fn: xorFn},
		sensors: map[string]spikeio.Sensor{
			spikeio.XORInputLeftSensorName:  spikeio.NewScalarInputSensor(spikeio.XORInputLeftSensorName, 0),
			spikeio.XORInputRightSensorName: spikeio.NewScalarInputSensor(spikeio.XORInputRightSensorName, 0),
		},
		actuators: map[string]spikeio.Actuator{
			spikeio.XOROutputActuatorName: spikeio.NewOutputActuator(spikeio.XOROutputActuatorName),
		},
	}
}

func (l *tickLearner) Tick(ctx context.Context) ([]float64, error) {
	l.ticks++
	left, _ := l.sensors[spikeio.XORInputLeftSensorName].Read(ctx)
	right, _ := l.sensors[spikeio.XORInputRightSensorName].Read(ctx)
	out := xorFn([]float64{left[0], right[0]})
	if err := l.actuators[spikeio.XOROutputActuatorName].Write(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *tickLearner) RegisteredSensor(id string) (spikeio.Sensor, bool) {
	s, ok := l.sensors[id]
	return s, ok
}

func (l *tickLearner) RegisteredActuator(id string) (spikeio.Actuator, bool) {
	a, ok := l.actuators[id]
	return a, ok
}

func TestXORScapeEpisodeWithPerfectLearner(t *testing.T) {
	learner := &scriptedLearner{fn: xorFn}
	fitness, trace, err := XORScape{}.Episode(context.Background(), learner, 8)
	if err != nil {
		t.Fatalf("episode: %v", err)
	}
	if fitness != 1 {
		t.Fatalf("expected perfect fitness, got %f (trace=%+v)", fitness, trace)
	}
	if trace["correct"] != 8 {
		t.Fatalf("unexpected correct count: %+v", trace)
	}
	want := [][]float64{{0}, {1}, {1}, {0}, {0}, {1}, {1}, {0}}
	if !reflect.DeepEqual(learner.teachers, want) {
		t.Fatalf("unexpected teacher vectors: %v", learner.teachers)
	}
	if len(learner.rewards) != 0 {
		t.Fatalf("xor must not send rewards, got %v", learner.rewards)
	}
}

func TestXORScapeEpisodeWithSilentLearner(t *testing.T) {
	learner := &scriptedLearner{fn: func([]float64) []float64 { return []float64{0} }}
	fitness, _, err := XORScape{}.Episode(context.Background(), learner, 4)
	if err != nil {
		t.Fatalf("episode: %v", err)
	}
	if fitness != 0.5 {
		t.Fatalf("silent learner matches the two zero cases, got %f", fitness)
	}
}

func TestXORScapeEpisodeWithIOComponents(t *testing.T) {
	learner := newXORTickLearner()
	fitness, _, err := XORScape{}.Episode(context.Background(), learner, 4)
	if err != nil {
		t.Fatalf("episode: %v", err)
	}
	if fitness != 1 {
		t.Fatalf("expected perfect fitness, got %f", fitness)
	}
	if learner.ticks != 4 || len(learner.inputs) != 0 {
		t.Fatalf("expected tick path only, ticks=%d steps=%d", learner.ticks, len(learner.inputs))
	}
}

func TestXORScapeEpisodeWithCortex(t *testing.T) {
	net, err := nn.Build(nn.Config{Topology: []int{2, 3, 1}, Seed: 7, Observer: nn.NopObserver{}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	sensors := map[string]spikeio.Sensor{}
	for _, name := range spikeio.ListSensorsForScape("xor") {
		s, err := spikeio.ResolveSensor(name, "xor")
		if err != nil {
			t.Fatalf("resolve sensor: %v", err)
		}
		sensors[name] = s
	}
	actuator, err := spikeio.ResolveActuator(spikeio.XOROutputActuatorName, "xor")
	if err != nil {
		t.Fatalf("resolve actuator: %v", err)
	}
	cortex, err := agent.NewCortex(
		"xor-agent",
		net,
		sensors,
		map[string]spikeio.Actuator{spikeio.XOROutputActuatorName: actuator},
		spikeio.ListSensorsForScape("xor"),
		[]string{spikeio.XOROutputActuatorName},
	)
	if err != nil {
		t.Fatalf("new cortex: %v", err)
	}

	fitness, trace, err := XORScape{}.Episode(context.Background(), cortex, 12)
	if err != nil {
		t.Fatalf("episode: %v", err)
	}
	if fitness < 0 || fitness > 1 {
		t.Fatalf("fitness out of range: %f", fitness)
	}
	predictions, ok := trace["predictions"].([]float64)
	if !ok || len(predictions) != 12 {
		t.Fatalf("unexpected predictions: %+v", trace)
	}
	if last := actuator.(spikeio.SnapshotActuator).Last(); len(last) != 1 {
		t.Fatalf("expected actuator snapshot, got %v", last)
	}
}

func TestXORScapeNumericEpisodeRewardsActiveOutput(t *testing.T) {
	net, err := nn.Build(nn.Config{
		Topology: []int{2, 1},
		Signal:   nn.SignalNumeric,
		Method:   nn.MethodReinforcement,
		Observer: nn.NopObserver{},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, sensors := net.Layer(1)[0], net.Layer(0)
	for _, s := range sensors {
		if err := net.SetWeight(out, s, 80); err != nil {
			t.Fatalf("set weight: %v", err)
		}
	}
	cortex, err := agent.NewCortex("xor-numeric", net, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("new cortex: %v", err)
	}
	power := 5.0
	cortex.SetCycleOptions(nn.CycleOptions{ErrorPower: &power})

	// Steps cover {0,0} then {0,1}: silent then active on the right sensor.
	fitness, trace, err := XORScape{}.Episode(context.Background(), cortex, 2)
	if err != nil {
		t.Fatalf("episode: %v", err)
	}
	if fitness != 1 {
		t.Fatalf("expected perfect fitness, got %f (trace=%+v)", fitness, trace)
	}
	predictions := trace["predictions"].([]float64)
	if predictions[1] <= 1+nn.DefaultNumericTolerance {
		t.Fatalf("expected a numeric output far from 1, got %v", predictions)
	}
	left, _ := net.Connection(out, sensors[0])
	right, _ := net.Connection(out, sensors[1])
	if right.Weight != 85 {
		t.Fatalf("active source must be rewarded: got=%v want=85", right.Weight)
	}
	if left.Weight != 80 {
		t.Fatalf("silent source must be untouched: got=%v want=80", left.Weight)
	}
}

func TestEpisodeRejectsInvalidSteps(t *testing.T) {
	learner := &scriptedLearner{fn: xorFn}
	for _, s := range []Scape{XORScape{}, MirrorScape{}, NewBeaconScape(0, 1)} {
		if _, _, err := s.Episode(context.Background(), learner, 0); !errors.Is(err, ErrInvalidSteps) {
			t.Fatalf("%s: expected ErrInvalidSteps, got %v", s.Name(), err)
		}
	}
}

func TestEpisodeHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	learner := &scriptedLearner{fn: xorFn}
	if _, _, err := (XORScape{}).Episode(ctx, learner, 4); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewScapeByName(t *testing.T) {
	if got := List(); !reflect.DeepEqual(got, []string{"beacon", "mirror", "xor"}) {
		t.Fatalf("unexpected scape list: %v", got)
	}
	s, err := New(" Mirror ", Options{Width: 3})
	if err != nil {
		t.Fatalf("new mirror: %v", err)
	}
	if in, out := s.Shape(); in != 3 || out != 3 {
		t.Fatalf("unexpected mirror shape: %d/%d", in, out)
	}
	if _, err := New("pong", Options{}); !errors.Is(err, ErrUnknownScape) {
		t.Fatalf("expected ErrUnknownScape, got %v", err)
	}
}
