package nn

import (
	"fmt"
	"math"
	"strings"
)

// LearningMethod selects the rule applied to output neurons by a training
// cycle.
type LearningMethod int

const (
	// MethodRecursive is back3P: cooperation plus reinforcement propagated
	// depth-bounded through the connection graph.
	MethodRecursive LearningMethod = iota + 1
	MethodReinforcement
	MethodCooperation
	// MethodBackprop adds the error to every weight and spreads it upstream
	// without looking at spikes.
	MethodBackprop
)

func (m LearningMethod) String() string {
	switch m {
	case MethodRecursive:
		return "recursive_learning"
	case MethodReinforcement:
		return "reinforcement"
	case MethodCooperation:
		return "cooperation"
	case MethodBackprop:
		return "backprop"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

func (m LearningMethod) validate() error {
	switch m {
	case MethodRecursive, MethodReinforcement, MethodCooperation, MethodBackprop:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownLearningMethod, m)
	}
}

// ParseLearningMethod resolves a method name, accepting the historical
// aliases. The empty name selects MethodRecursive.
func ParseLearningMethod(name string) (LearningMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "recursive_learning", "recursive", "back3p":
		return MethodRecursive, nil
	case "reinforcement":
		return MethodReinforcement, nil
	case "cooperation":
		return MethodCooperation, nil
	case "backprop", "backpropagation":
		return MethodBackprop, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownLearningMethod, name)
	}
}

// RecursiveOptions disables parts of the per-neuron update during recursive
// learning. The zero value runs both.
type RecursiveOptions struct {
	SkipCooperation   bool
	SkipReinforcement bool
}

// Reinforcement corrects the weights of the connections whose source was
// active this cycle. Positive error rewards the neuron's own behaviour and
// stabilises those connections; negative error punishes it and makes them
// more plastic.
func (net *Network) Reinforcement(id NeuronID, learningErr float64) error {
	n, err := net.neuron(id)
	if err != nil {
		return err
	}
	if !net.acceptError(id, learningErr) {
		return nil
	}
	net.cfg.Observer.NeuronLearned(LearningEvent{Neuron: id, Method: MethodReinforcement, Error: learningErr})
	net.reinforce(n, learningErr)
	return nil
}

// Cooperation recruits silent excitatory connections of an under-firing
// neuron. It only engages for negative error on a non-spiking, non-sensor
// neuron.
func (net *Network) Cooperation(id NeuronID, learningErr float64) error {
	n, err := net.neuron(id)
	if err != nil {
		return err
	}
	if !net.acceptError(id, learningErr) {
		return nil
	}
	net.cfg.Observer.NeuronLearned(LearningEvent{Neuron: id, Method: MethodCooperation, Error: learningErr})
	net.cooperate(n, learningErr)
	return nil
}

// RecursiveLearning runs back3P from an output neuron and returns the number
// of neuron visits. Starting from any other layer is rejected.
func (net *Network) RecursiveLearning(id NeuronID, learningErr float64) (int, error) {
	return net.RecursiveLearningWith(id, learningErr, RecursiveOptions{})
}

// RecursiveLearningWith is RecursiveLearning with parts of the update
// switched off.
//
// The remaining-hop counter is seeded from the start neuron's depth and is
// the only guard against cycles: there is no visited set, and a neuron that
// is reached over several paths inside the bound is trained once per path.
func (net *Network) RecursiveLearningWith(id NeuronID, learningErr float64, opts RecursiveOptions) (int, error) {
	n, err := net.neuron(id)
	if err != nil {
		return 0, err
	}
	if n.layerDepth != len(net.layers)-1 {
		return 0, fmt.Errorf("%w: neuron %d is in layer %d", ErrNotOutputNeuron, id, n.layerDepth)
	}
	if !net.acceptError(id, learningErr) {
		return 0, nil
	}
	return net.recurse(id, learningErr, n.layerDepth, opts), nil
}

// Backprop is the whole-layer fallback: every weight of the neuron receives
// error and sources deeper than layer 1 receive error divided by the
// neuron's connection count.
func (net *Network) Backprop(id NeuronID, learningErr float64) error {
	n, err := net.neuron(id)
	if err != nil {
		return err
	}
	if !net.acceptError(id, learningErr) {
		return nil
	}
	net.backprop(id, learningErr, n.layerDepth)
	return nil
}

func (net *Network) acceptError(id NeuronID, learningErr float64) bool {
	if isFinite(learningErr) {
		return true
	}
	net.cfg.Observer.PropertyCoerced(CoercionEvent{Neuron: id, Property: "learning_error", Requested: learningErr, Applied: 0})
	return false
}

func (net *Network) reinforce(n *Neuron, learningErr float64) {
	if learningErr == 0 {
		return
	}
	direction := 1
	if learningErr < 0 {
		direction = -1
	}
	magnitude := math.Abs(learningErr)
	if !n.Spiked() {
		learningErr = -learningErr
	}
	for i := range n.connections {
		c := &n.connections[i]
		if !involved(net.neurons[c.Source].spike) {
			continue
		}
		c.addWeight(learningErr / c.Stability)
		c.adjustStability(direction, magnitude)
	}
}

func (net *Network) cooperate(n *Neuron, learningErr float64) {
	if learningErr >= 0 || n.Spiked() || n.layerDepth == 0 {
		return
	}
	for i := range n.connections {
		c := &n.connections[i]
		if involved(net.neurons[c.Source].spike) || c.Weight < 0 {
			continue
		}
		jitter := net.rng.Float64() * net.cfg.RandLearning
		c.addWeight((jitter + math.Abs(learningErr)) / c.Stability)
	}
}

func (net *Network) recurse(id NeuronID, learningErr float64, remaining int, opts RecursiveOptions) int {
	if remaining <= 0 {
		return 0
	}
	n := &net.neurons[id]
	net.cfg.Observer.NeuronLearned(LearningEvent{Neuron: id, Method: MethodRecursive, Error: learningErr, Remaining: remaining})
	if !opts.SkipCooperation {
		net.cooperate(n, learningErr)
	}
	if !opts.SkipReinforcement {
		net.reinforce(n, learningErr)
	}
	visits := 1
	for i := range n.connections {
		visits += net.recurse(n.connections[i].Source, learningErr, remaining-1, opts)
	}
	return visits
}

func (net *Network) backprop(id NeuronID, learningErr float64, remaining int) {
	if remaining <= 0 {
		return
	}
	n := &net.neurons[id]
	net.cfg.Observer.NeuronLearned(LearningEvent{Neuron: id, Method: MethodBackprop, Error: learningErr, Remaining: remaining})
	if len(n.connections) == 0 {
		return
	}
	share := learningErr / float64(len(n.connections))
	for i := range n.connections {
		c := &n.connections[i]
		c.addWeight(learningErr)
		if net.neurons[c.Source].layerDepth > 1 {
			net.backprop(c.Source, share, remaining-1)
		}
	}
}
