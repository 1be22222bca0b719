package nn

import "errors"

var (
	ErrDimensionMismatch         = errors.New("dimension mismatch")
	ErrUnsupportedActivationKind = errors.New("unsupported activation kind")
	ErrNonFiniteInput            = errors.New("non-finite input value")
	ErrNotOutputNeuron           = errors.New("recursive learning must start from an output neuron")
	ErrUnknownLearningMethod     = errors.New("unknown learning method")
	ErrInvalidTopology           = errors.New("invalid topology")
	ErrInvalidConfig             = errors.New("invalid network config")
	ErrUnknownNeuron             = errors.New("neuron not found")
	ErrUnknownConnection         = errors.New("connection not found")
)
