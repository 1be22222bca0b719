package nn

import "math"

const (
	WeightMin = -127.0
	WeightMax = 127.0

	TTLMin = 0
	TTLMax = 255

	StabilityMin = 1.0
	StabilityMax = 100.0

	// maxStabilitySteps is enough steps to saturate stability from
	// StabilityMin to StabilityMax.
	maxStabilitySteps = 1 << 20
)

// NeuronID addresses a neuron inside its Network arena.
type NeuronID int

// Connection is an incoming edge of a neuron. It refers to its source by
// arena index and never owns it.
type Connection struct {
	Source    NeuronID
	Weight    float64
	TTL       int
	Stability float64
}

// involved reports whether the source carried signal this cycle.
func involved(output float64) bool {
	return output != 0
}

func (c *Connection) setWeight(v float64) {
	c.Weight = round(clamp(round(v), WeightMin, WeightMax))
}

func (c *Connection) addWeight(delta float64) {
	c.setWeight(c.Weight + delta)
}

// adjustStability moves stability one diminishing step per unit of magnitude:
// s' = s ± 1/((s+1)·s), clamped to [StabilityMin, StabilityMax].
func (c *Connection) adjustStability(direction int, magnitude float64) {
	if direction == 0 {
		return
	}
	steps := int(math.Min(math.Round(math.Abs(magnitude)), maxStabilitySteps))
	if steps < 1 {
		steps = 1
	}
	s := c.Stability
	for i := 0; i < steps; i++ {
		step := 1 / ((s + 1) * s)
		if direction > 0 {
			s = round(s + step)
		} else {
			s = round(s - step)
		}
		s = clamp(s, StabilityMin, StabilityMax)
		if (direction > 0 && s == StabilityMax) || (direction < 0 && s == StabilityMin) {
			break
		}
	}
	c.Stability = s
}
