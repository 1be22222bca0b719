package nn

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
)

// SignalType selects how a firing neuron encodes its output.
type SignalType int

const (
	// SignalBinary neurons emit 1 on a spike and 0 otherwise.
	SignalBinary SignalType = iota
	// SignalNumeric neurons emit a value in [1,100] on a spike and 0 otherwise.
	SignalNumeric
)

func (s SignalType) String() string {
	switch s {
	case SignalBinary:
		return "binary"
	case SignalNumeric:
		return "numeric"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

func ParseSignalType(name string) (SignalType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "binary":
		return SignalBinary, nil
	case "numeric":
		return SignalNumeric, nil
	default:
		return 0, fmt.Errorf("%w: unsupported signal type %q", ErrInvalidConfig, name)
	}
}

// Connectivity is the wiring policy applied by Build.
type Connectivity string

const (
	// ConnectivityFull connects every neuron to every neuron of the previous
	// layer. Config.Edges are added on top.
	ConnectivityFull Connectivity = "full"
	// ConnectivityCustom wires only Config.Edges.
	ConnectivityCustom Connectivity = "custom"
)

// NeuronRef addresses a neuron by layer and position before the arena exists.
type NeuronRef struct {
	Layer int
	Index int
}

// Edge is an explicit connection request. Edges may point backwards or within
// a layer, so the resulting graph is not guaranteed to be acyclic.
type Edge struct {
	From      NeuronRef
	To        NeuronRef
	Weight    *float64
	TTL       int
	Stability float64
}

// Config is the structured construction parameter set of a Network.
type Config struct {
	Topology     []int
	Connectivity Connectivity
	Edges        []Edge
	Signal       SignalType
	Activation   ActivationKind

	// Layer property sets. Input applies to layer 0, Output to the last
	// layer and Hidden to everything between. LayerOverrides wins over all
	// three for the given layer index.
	InputProperties  PropertyOverrides
	HiddenProperties PropertyOverrides
	OutputProperties PropertyOverrides
	LayerOverrides   map[int]PropertyOverrides

	// InitWeightRange bounds the uniform initial weights: [-r, r].
	InitWeightRange float64
	// RandLearning is the upper bound of the cooperation jitter.
	RandLearning float64

	MinInput float64
	MaxInput float64
	MinVM    float64
	MaxVM    float64

	// NumericTolerance is the largest output/teacher distance still counted
	// as a match in numeric teacher cycles.
	NumericTolerance float64

	Method          LearningMethod
	PreserveContext bool

	Seed int64
	Rand *rand.Rand

	Observer Observer
	Logger   *slog.Logger
}

const (
	DefaultInitWeightRange  = 20.0
	DefaultRandLearning     = 10.0
	DefaultInputBound       = 100.0
	DefaultVMBound          = 100.0
	DefaultNumericTolerance = 10.0
)

// DefaultInputProperties makes the sensor layer a near-instant pass-through.
func DefaultInputProperties() PropertyOverrides {
	return PropertyOverrides{
		Threshold:        Float(0.001),
		LeakPercent:      Float(100),
		RefractoryPeriod: Int(0),
	}
}

func DefaultHiddenProperties() PropertyOverrides {
	return PropertyOverrides{
		Threshold:        Float(25),
		LeakPercent:      Float(0),
		RefractoryPeriod: Int(0),
	}
}

func DefaultOutputProperties() PropertyOverrides {
	return PropertyOverrides{
		Threshold:        Float(25),
		LeakPercent:      Float(LeakDefault),
		RefractoryPeriod: Int(0),
	}
}

// Defaults fills every unset scalar with its package default.
func (c *Config) Defaults() {
	if c.Connectivity == "" {
		c.Connectivity = ConnectivityFull
	}
	if c.Activation == 0 {
		c.Activation = ActivationStep
	}
	if c.InitWeightRange == 0 {
		c.InitWeightRange = DefaultInitWeightRange
	}
	if c.RandLearning == 0 {
		c.RandLearning = DefaultRandLearning
	}
	if c.MinInput == 0 && c.MaxInput == 0 {
		c.MinInput, c.MaxInput = -DefaultInputBound, DefaultInputBound
	}
	if c.MinVM == 0 && c.MaxVM == 0 {
		c.MinVM, c.MaxVM = -DefaultVMBound, DefaultVMBound
	}
	if c.NumericTolerance == 0 {
		c.NumericTolerance = DefaultNumericTolerance
	}
	if c.Method == 0 {
		c.Method = MethodRecursive
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Observer == nil {
		c.Observer = NewLogObserver(c.Logger)
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(c.Seed))
	}
}

func (c Config) validate() error {
	if len(c.Topology) < 2 {
		return fmt.Errorf("%w: need at least input and output layers, got %d", ErrInvalidTopology, len(c.Topology))
	}
	for i, size := range c.Topology {
		if size <= 0 {
			return fmt.Errorf("%w: layer %d has %d neurons", ErrInvalidTopology, i, size)
		}
	}
	switch c.Connectivity {
	case ConnectivityFull, ConnectivityCustom:
	default:
		return fmt.Errorf("%w: unsupported connectivity %q", ErrInvalidTopology, c.Connectivity)
	}
	for i, edge := range c.Edges {
		if !c.validRef(edge.From) || !c.validRef(edge.To) {
			return fmt.Errorf("%w: edge %d references a missing neuron", ErrInvalidTopology, i)
		}
	}
	if err := validateActivationKind(c.Activation); err != nil {
		return err
	}
	if c.Signal != SignalBinary && c.Signal != SignalNumeric {
		return fmt.Errorf("%w: unsupported signal type %d", ErrInvalidConfig, int(c.Signal))
	}
	if c.InitWeightRange < 0 || !isFinite(c.InitWeightRange) {
		return fmt.Errorf("%w: init weight range %v", ErrInvalidConfig, c.InitWeightRange)
	}
	if c.RandLearning < 0 || !isFinite(c.RandLearning) {
		return fmt.Errorf("%w: rand learning %v", ErrInvalidConfig, c.RandLearning)
	}
	if !(c.MinInput < c.MaxInput) {
		return fmt.Errorf("%w: input bounds [%v, %v]", ErrInvalidConfig, c.MinInput, c.MaxInput)
	}
	if !(c.MinVM < c.MaxVM) {
		return fmt.Errorf("%w: membrane bounds [%v, %v]", ErrInvalidConfig, c.MinVM, c.MaxVM)
	}
	if err := c.Method.validate(); err != nil {
		return err
	}
	return nil
}

func (c Config) validRef(ref NeuronRef) bool {
	return ref.Layer >= 0 && ref.Layer < len(c.Topology) && ref.Index >= 0 && ref.Index < c.Topology[ref.Layer]
}

// layerProperties resolves the override chain for layer depth.
func (c Config) layerProperties(depth int) PropertyOverrides {
	var base PropertyOverrides
	switch {
	case depth == 0:
		base = DefaultInputProperties().Merge(c.InputProperties)
	case depth == len(c.Topology)-1:
		base = DefaultOutputProperties().Merge(c.OutputProperties)
	default:
		base = DefaultHiddenProperties().Merge(c.HiddenProperties)
	}
	if override, ok := c.LayerOverrides[depth]; ok {
		base = base.Merge(override)
	}
	return base
}
