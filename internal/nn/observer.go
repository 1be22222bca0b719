package nn

import (
	"context"
	"log/slog"
)

// CoercionEvent records a property value that was replaced instead of
// rejected: an out-of-range setter argument or a zero stability.
type CoercionEvent struct {
	Neuron    NeuronID
	Property  string
	Requested float64
	Applied   float64
}

// LearningEvent records one neuron visit by a learning method.
type LearningEvent struct {
	Neuron    NeuronID
	Method    LearningMethod
	Error     float64
	Remaining int
}

// Observer receives the side events of the simulation. Implementations must
// not mutate the network.
type Observer interface {
	PropertyCoerced(ev CoercionEvent)
	NeuronLearned(ev LearningEvent)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) PropertyCoerced(CoercionEvent) {}
func (NopObserver) NeuronLearned(LearningEvent)   {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes coercions at warn level and learning visits at debug
// level.
func NewLogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return logObserver{logger: logger}
}

func (o logObserver) PropertyCoerced(ev CoercionEvent) {
	o.logger.Warn("property coerced",
		slog.Int("neuron", int(ev.Neuron)),
		slog.String("property", ev.Property),
		slog.Float64("requested", ev.Requested),
		slog.Float64("applied", ev.Applied),
	)
}

func (o logObserver) NeuronLearned(ev LearningEvent) {
	if !o.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	o.logger.Debug("neuron learned",
		slog.Int("neuron", int(ev.Neuron)),
		slog.String("method", ev.Method.String()),
		slog.Float64("error", ev.Error),
		slog.Int("remaining", ev.Remaining),
	)
}
