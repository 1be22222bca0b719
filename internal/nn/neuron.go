package nn

import "math"

// Neuron is one spiking unit of a Network. All mutation goes through the
// owning Network; the accessors return copies.
type Neuron struct {
	id         NeuronID
	layerDepth int
	props      Properties

	vm                float64
	spike             float64
	refractoryCounter int

	connections   []Connection
	outputHistory []float64

	forced      bool
	forcedValue float64
}

func (n *Neuron) ID() NeuronID               { return n.id }
func (n *Neuron) LayerDepth() int            { return n.layerDepth }
func (n *Neuron) Properties() Properties     { return n.props }
func (n *Neuron) MembranePotential() float64 { return n.vm }
func (n *Neuron) Output() float64            { return n.spike }
func (n *Neuron) Spiked() bool               { return involved(n.spike) }
func (n *Neuron) Sensitivity() float64       { return n.props.Sensitivity }
func (n *Neuron) RefractoryCounter() int     { return n.refractoryCounter }

func (n *Neuron) Connections() []Connection {
	return append([]Connection(nil), n.connections...)
}

func (n *Neuron) OutputHistory() []float64 {
	return append([]float64(nil), n.outputHistory...)
}

func (n *Neuron) connectionTo(source NeuronID) (*Connection, bool) {
	for i := range n.connections {
		if n.connections[i].Source == source {
			return &n.connections[i], true
		}
	}
	return nil, false
}

func (n *Neuron) forward(net *Network) {
	if n.forced {
		n.emitForced(net)
	} else {
		total := n.processInput(net)
		transitions[net.cfg.Activation](n, net, total)
	}
	n.outputHistory = append(n.outputHistory, n.spike)
}

// emitForced reproduces the externally supplied observation without running
// leak or threshold dynamics.
func (n *Neuron) emitForced(net *Network) {
	v := n.forcedValue
	if net.cfg.Signal == SignalBinary {
		if involved(v) {
			n.spike = 1
		} else {
			n.spike = 0
		}
	} else {
		n.spike = v
	}
	n.vm = round(clamp(v, net.cfg.MinVM, net.cfg.MaxVM))
}

func (n *Neuron) processInput(net *Network) float64 {
	total := 0.0
	for i := range n.connections {
		c := &n.connections[i]
		if c.TTL > 0 {
			total += c.Weight
			c.TTL--
			continue
		}
		out := net.neurons[c.Source].spike
		if involved(out) {
			total += c.Weight * out
			if n.props.ResidualTTL > 0 {
				c.TTL = n.props.ResidualTTL
			}
		}
	}
	return round(clamp(total, net.cfg.MinInput, net.cfg.MaxInput))
}

func stepTransition(n *Neuron, net *Network, total float64) {
	p := &n.props
	n.vm = round(clamp(n.vm+total, net.cfg.MinVM, net.cfg.MaxVM))
	activePotential := round(p.Threshold * p.Sensitivity / 100)

	if n.vm >= activePotential && n.refractoryCounter == 0 {
		n.spike = n.spikeValue(net, activePotential)
		n.vm = round(clamp(p.Rest+p.ResetRatio*(p.Threshold-p.Rest), net.cfg.MinVM, net.cfg.MaxVM))
		n.refractoryCounter = p.RefractoryPeriod
		p.Sensitivity += p.SensitivityAdjustRate
	} else {
		n.spike = 0
		if n.vm > activePotential {
			n.vm = activePotential
		}
		n.vm = round(n.vm - ((n.vm-p.Rest)/100)*p.LeakPercent)
		if n.refractoryCounter > 0 {
			n.refractoryCounter--
		}
		if diff := p.SensitivityNormal - p.Sensitivity; diff != 0 {
			step := math.Min(p.SensitivityRestoreRate, math.Abs(diff))
			if diff > 0 {
				p.Sensitivity += step
			} else {
				p.Sensitivity -= step
			}
		}
	}
	p.Sensitivity = clamp(p.Sensitivity, SensitivityMin, SensitivityMax)
}

// spikeValue min-max normalises vm-activePotential from [0, MaxVM-activePotential]
// into [1,100] for numeric signals.
func (n *Neuron) spikeValue(net *Network, activePotential float64) float64 {
	if net.cfg.Signal == SignalBinary {
		return 1
	}
	span := net.cfg.MaxVM - activePotential
	if span <= 0 {
		return 100
	}
	return clamp(round((n.vm-activePotential)/span*100), 1, 100)
}
