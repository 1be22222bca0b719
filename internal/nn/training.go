package nn

import (
	"fmt"
	"math"
)

// MaxRandomErrorPower bounds the error power drawn when a teacher cycle is
// run without an explicit one.
const MaxRandomErrorPower = 50

// CycleOptions tunes one training cycle. Nil fields fall back to the
// network's Config.
type CycleOptions struct {
	Method          *LearningMethod
	PreserveContext *bool
	// ErrorPower is the magnitude used by CycleTeacher. When nil a random
	// integer in [0, MaxRandomErrorPower] is drawn.
	ErrorPower *float64
	// MatchActivity makes CycleTeacher compare activity only, so a numeric
	// output matches any non-zero teacher value.
	MatchActivity bool
	Recursive     RecursiveOptions
}

// Method returns a pointer to m, for building CycleOptions literals.
func Method(m LearningMethod) *LearningMethod { return &m }

// Bool returns a pointer to v, for building CycleOptions literals.
func Bool(v bool) *bool { return &v }

func (net *Network) resolve(opts CycleOptions) (LearningMethod, bool, error) {
	method := net.cfg.Method
	if opts.Method != nil {
		method = *opts.Method
	}
	if err := method.validate(); err != nil {
		return 0, false, err
	}
	preserve := net.cfg.PreserveContext
	if opts.PreserveContext != nil {
		preserve = *opts.PreserveContext
	}
	return method, preserve, nil
}

// Train applies learningErr to every output neuron with the network's
// default method and context policy.
func (net *Network) Train(learningErr float64) error {
	return net.CycleWithoutTeacher(learningErr, CycleOptions{})
}

// CycleWithoutTeacher applies the same error to every output neuron.
func (net *Network) CycleWithoutTeacher(learningErr float64, opts CycleOptions) error {
	method, preserve, err := net.resolve(opts)
	if err != nil {
		return err
	}
	last := net.layers[len(net.layers)-1]
	for _, id := range last {
		if err := net.learn(method, id, learningErr, opts.Recursive); err != nil {
			return err
		}
	}
	if !preserve {
		net.ResetContext()
	}
	return nil
}

// CycleTeacher rewards every output neuron that matches its teacher value
// and punishes every one that does not.
func (net *Network) CycleTeacher(teacher []float64, opts CycleOptions) error {
	last := net.layers[len(net.layers)-1]
	if len(teacher) != len(last) {
		return fmt.Errorf("%w: teacher expects %d values, got %d", ErrDimensionMismatch, len(last), len(teacher))
	}
	method, preserve, err := net.resolve(opts)
	if err != nil {
		return err
	}
	power := float64(net.rng.Intn(MaxRandomErrorPower + 1))
	if opts.ErrorPower != nil {
		power = *opts.ErrorPower
	}
	for i, id := range last {
		learningErr := -power
		if net.matches(net.neurons[id].spike, teacher[i], opts.MatchActivity) {
			learningErr = power
		}
		if err := net.learn(method, id, learningErr, opts.Recursive); err != nil {
			return err
		}
	}
	if !preserve {
		net.ResetContext()
	}
	return nil
}

// matches compares an output with its teacher value. Binary signals compare
// activity; numeric signals also require both values within
// NumericTolerance when active, unless activityOnly is set.
func (net *Network) matches(output, teacher float64, activityOnly bool) bool {
	if involved(output) != involved(teacher) {
		return false
	}
	if activityOnly || net.cfg.Signal == SignalBinary || !involved(output) {
		return true
	}
	return math.Abs(output-teacher) <= net.cfg.NumericTolerance
}

func (net *Network) learn(method LearningMethod, id NeuronID, learningErr float64, opts RecursiveOptions) error {
	switch method {
	case MethodRecursive:
		_, err := net.RecursiveLearningWith(id, learningErr, opts)
		return err
	case MethodReinforcement:
		return net.Reinforcement(id, learningErr)
	case MethodCooperation:
		return net.Cooperation(id, learningErr)
	case MethodBackprop:
		return net.Backprop(id, learningErr)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownLearningMethod, method)
	}
}
