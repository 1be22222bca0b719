package agent

import (
	"context"
	"fmt"

	spikeio "spikenet/internal/io"
	"spikenet/internal/nn"
)

// Cortex drives one spiking network through its registered sensors and
// actuators and routes scape feedback into the learning engine.
type Cortex struct {
	id          string
	net         *nn.Network
	sensors     map[string]spikeio.Sensor
	actuators   map[string]spikeio.Actuator
	sensorIDs   []string
	actuatorIDs []string
	cycle       nn.CycleOptions
}

func NewCortex(
	id string,
	net *nn.Network,
	sensors map[string]spikeio.Sensor,
	actuators map[string]spikeio.Actuator,
	sensorIDs []string,
	actuatorIDs []string,
) (*Cortex, error) {
	if id == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if net == nil {
		return nil, fmt.Errorf("network is required")
	}
	width := 0
	for _, sensorID := range sensorIDs {
		sensor, ok := sensors[sensorID]
		if !ok {
			return nil, fmt.Errorf("sensor not registered: %s", sensorID)
		}
		width += sensor.Width()
	}
	if len(sensorIDs) > 0 && width != net.InputSize() {
		return nil, fmt.Errorf("%w: sensors provide %d values, sensor layer has %d neurons", nn.ErrDimensionMismatch, width, net.InputSize())
	}
	for _, actuatorID := range actuatorIDs {
		if _, ok := actuators[actuatorID]; !ok {
			return nil, fmt.Errorf("actuator not registered: %s", actuatorID)
		}
	}

	return &Cortex{
		id:          id,
		net:         net,
		sensors:     sensors,
		actuators:   actuators,
		sensorIDs:   append([]string(nil), sensorIDs...),
		actuatorIDs: append([]string(nil), actuatorIDs...),
	}, nil
}

func (c *Cortex) ID() string {
	return c.id
}

func (c *Cortex) Network() *nn.Network {
	return c.net
}

// SetCycleOptions overrides the learning method and context policy used by
// Reward and Teach.
func (c *Cortex) SetCycleOptions(opts nn.CycleOptions) {
	c.cycle = opts
}

func (c *Cortex) RegisteredSensor(id string) (spikeio.Sensor, bool) {
	if c.sensors == nil {
		return nil, false
	}
	s, ok := c.sensors[id]
	return s, ok
}

func (c *Cortex) RegisteredActuator(id string) (spikeio.Actuator, bool) {
	if c.actuators == nil {
		return nil, false
	}
	a, ok := c.actuators[id]
	return a, ok
}

// Tick reads every sensor in registration order, runs one network step and
// writes the output spikes to the actuators.
func (c *Cortex) Tick(ctx context.Context) ([]float64, error) {
	inputs := make([]float64, 0, c.net.InputSize())
	for _, sensorID := range c.sensorIDs {
		values, err := c.sensors[sensorID].Read(ctx)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, values...)
	}

	outputs, err := c.RunStep(ctx, inputs)
	if err != nil {
		return nil, err
	}

	if len(c.actuatorIDs) > 0 {
		chunks, err := splitOutputsForActuators(outputs, len(c.actuatorIDs))
		if err != nil {
			return nil, err
		}
		for i, actuatorID := range c.actuatorIDs {
			if err := c.actuators[actuatorID].Write(ctx, chunks[i]); err != nil {
				return nil, err
			}
		}
	}
	return outputs, nil
}

// RunStep feeds inputs to the sensor layer and returns the output spikes.
func (c *Cortex) RunStep(ctx context.Context, inputs []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.net.Input(inputs); err != nil {
		return nil, err
	}
	c.net.Forward()
	return c.net.Output(), nil
}

// Reward runs a cycle without teacher using r as the learning error.
func (c *Cortex) Reward(ctx context.Context, r float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.net.CycleWithoutTeacher(r, c.cycle)
}

// Teach runs a teacher cycle against the expected output spikes. Scapes
// score outputs by activity, so the teacher matches on activity as well.
func (c *Cortex) Teach(ctx context.Context, teacher []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := c.cycle
	opts.MatchActivity = true
	return c.net.CycleTeacher(teacher, opts)
}

func splitOutputsForActuators(outputs []float64, actuatorCount int) ([][]float64, error) {
	if actuatorCount <= 0 {
		return nil, fmt.Errorf("actuator count must be > 0")
	}
	// A single actuator receives the full output vector, N actuators receive
	// equal contiguous slices.
	if actuatorCount == 1 {
		return [][]float64{append([]float64(nil), outputs...)}, nil
	}
	if len(outputs)%actuatorCount != 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("actuator/output shape mismatch: outputs=%d actuators=%d", len(outputs), actuatorCount)
	}
	chunkSize := len(outputs) / actuatorCount
	chunks := make([][]float64, 0, actuatorCount)
	for i := 0; i < actuatorCount; i++ {
		start := i * chunkSize
		chunks = append(chunks, append([]float64(nil), outputs[start:start+chunkSize]...))
	}
	return chunks, nil
}
