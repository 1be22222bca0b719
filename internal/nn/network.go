package nn

import (
	"fmt"
	"math/rand"
)

// Network owns every neuron of a simulation. Neurons are stored in one arena
// and addressed by NeuronID; layers list the IDs of each depth in order.
//
// A Network is not safe for concurrent use.
type Network struct {
	cfg     Config
	rng     *rand.Rand
	neurons []Neuron
	layers  [][]NeuronID
}

// Build constructs a network from cfg. Topology and layer depths are fixed
// for the lifetime of the result.
func Build(cfg Config) (*Network, error) {
	cfg.Defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Topology = append([]int(nil), cfg.Topology...)
	cfg.Edges = append([]Edge(nil), cfg.Edges...)

	net := &Network{
		cfg:    cfg,
		rng:    cfg.Rand,
		layers: make([][]NeuronID, len(cfg.Topology)),
	}
	total := 0
	for _, size := range cfg.Topology {
		total += size
	}
	net.neurons = make([]Neuron, 0, total)

	for depth, size := range cfg.Topology {
		overrides := cfg.layerProperties(depth)
		ids := make([]NeuronID, 0, size)
		for i := 0; i < size; i++ {
			id := NeuronID(len(net.neurons))
			props := DefaultProperties()
			overrides.apply(&props, net.reporter(id))
			net.neurons = append(net.neurons, Neuron{id: id, layerDepth: depth, props: props})
			ids = append(ids, id)
		}
		net.layers[depth] = ids
	}

	if cfg.Connectivity == ConnectivityFull {
		for depth := 1; depth < len(net.layers); depth++ {
			for _, target := range net.layers[depth] {
				for _, source := range net.layers[depth-1] {
					net.connect(target, source, net.randomWeight(), 0, StabilityMin)
				}
			}
		}
	}
	for _, edge := range cfg.Edges {
		target := net.layers[edge.To.Layer][edge.To.Index]
		source := net.layers[edge.From.Layer][edge.From.Index]
		weight := net.randomWeight()
		if edge.Weight != nil {
			weight = *edge.Weight
		}
		// An edge without stability starts as plastic as a generated one.
		stability := edge.Stability
		if stability == 0 {
			stability = StabilityMin
		}
		if c, exists := net.neurons[target].connectionTo(source); exists {
			c.setWeight(weight)
			c.TTL = net.coerceTTL(target, edge.TTL)
			c.Stability = net.coerceStability(target, stability)
			continue
		}
		net.connect(target, source, weight, edge.TTL, stability)
	}
	return net, nil
}

func (net *Network) randomWeight() float64 {
	r := net.cfg.InitWeightRange
	return round(net.rng.Float64()*2*r - r)
}

func (net *Network) connect(target, source NeuronID, weight float64, ttl int, stability float64) {
	n := &net.neurons[target]
	n.connections = append(n.connections, Connection{Source: source})
	c := &n.connections[len(n.connections)-1]
	c.setWeight(weight)
	c.TTL = net.coerceTTL(target, ttl)
	c.Stability = net.coerceStability(target, stability)
}

// Connect adds an incoming connection from source to target. Connecting an
// already connected pair only updates the weight.
func (net *Network) Connect(target, source NeuronID, weight float64) error {
	n, err := net.neuron(target)
	if err != nil {
		return err
	}
	if _, err := net.neuron(source); err != nil {
		return err
	}
	if c, ok := n.connectionTo(source); ok {
		c.setWeight(weight)
		return nil
	}
	net.connect(target, source, weight, 0, StabilityMin)
	return nil
}

func (net *Network) reporter(id NeuronID) func(string, float64, float64) {
	return func(property string, requested, applied float64) {
		net.cfg.Observer.PropertyCoerced(CoercionEvent{Neuron: id, Property: property, Requested: requested, Applied: applied})
	}
}

func (net *Network) coerceTTL(id NeuronID, ttl int) int {
	clamped := clampInt(ttl, TTLMin, TTLMax)
	if clamped != ttl {
		net.reporter(id)("ttl", float64(ttl), float64(clamped))
	}
	return clamped
}

func (net *Network) coerceStability(id NeuronID, s float64) float64 {
	if s == 0 || !isFinite(s) {
		net.reporter(id)("stability", s, StabilityMin)
		return StabilityMin
	}
	clamped := round(clamp(s, StabilityMin, StabilityMax))
	if clamped != s {
		net.reporter(id)("stability", s, clamped)
	}
	return clamped
}

func (net *Network) neuron(id NeuronID) (*Neuron, error) {
	if id < 0 || int(id) >= len(net.neurons) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNeuron, id)
	}
	return &net.neurons[id], nil
}

func (net *Network) connection(target, source NeuronID) (*Connection, error) {
	n, err := net.neuron(target)
	if err != nil {
		return nil, err
	}
	c, ok := n.connectionTo(source)
	if !ok {
		return nil, fmt.Errorf("%w: %d <- %d", ErrUnknownConnection, target, source)
	}
	return c, nil
}

// Neuron returns a read-only snapshot of the neuron with the given ID.
func (net *Network) Neuron(id NeuronID) (Neuron, error) {
	n, err := net.neuron(id)
	if err != nil {
		return Neuron{}, err
	}
	snapshot := *n
	snapshot.connections = n.Connections()
	snapshot.outputHistory = n.OutputHistory()
	return snapshot, nil
}

func (net *Network) Config() Config     { return net.cfg }
func (net *Network) LayerCount() int    { return len(net.layers) }
func (net *Network) NeuronCount() int   { return len(net.neurons) }
func (net *Network) InputSize() int     { return len(net.layers[0]) }
func (net *Network) OutputSize() int    { return len(net.layers[len(net.layers)-1]) }
func (net *Network) Signal() SignalType { return net.cfg.Signal }

// Layer returns the IDs of the neurons at depth, in index order.
func (net *Network) Layer(depth int) []NeuronID {
	if depth < 0 || depth >= len(net.layers) {
		return nil
	}
	return append([]NeuronID(nil), net.layers[depth]...)
}

// Connection returns a copy of the connection from source into target.
func (net *Network) Connection(target, source NeuronID) (Connection, error) {
	c, err := net.connection(target, source)
	if err != nil {
		return Connection{}, err
	}
	return *c, nil
}

func (net *Network) SetWeight(target, source NeuronID, weight float64) error {
	c, err := net.connection(target, source)
	if err != nil {
		return err
	}
	if !isFinite(weight) {
		net.reporter(target)("weight", weight, c.Weight)
		return nil
	}
	c.setWeight(weight)
	return nil
}

func (net *Network) SetTTL(target, source NeuronID, ttl int) error {
	c, err := net.connection(target, source)
	if err != nil {
		return err
	}
	c.TTL = net.coerceTTL(target, ttl)
	return nil
}

// SetStability sets a connection's stability. Zero is coerced to 1 and
// reported; other values are clamped to [1, 100].
func (net *Network) SetStability(target, source NeuronID, stability float64) error {
	c, err := net.connection(target, source)
	if err != nil {
		return err
	}
	c.Stability = net.coerceStability(target, stability)
	return nil
}

// SetProperties applies overrides to one neuron. Nil fields keep their
// current value.
func (net *Network) SetProperties(id NeuronID, overrides PropertyOverrides) error {
	n, err := net.neuron(id)
	if err != nil {
		return err
	}
	overrides.apply(&n.props, net.reporter(id))
	n.props.Sensitivity = clamp(n.props.Sensitivity, SensitivityMin, SensitivityMax)
	return nil
}

func (net *Network) SetMembranePotential(id NeuronID, vm float64) error {
	n, err := net.neuron(id)
	if err != nil {
		return err
	}
	if !isFinite(vm) {
		net.reporter(id)("vm", vm, n.vm)
		return nil
	}
	n.vm = round(clamp(vm, net.cfg.MinVM, net.cfg.MaxVM))
	return nil
}

// Input forces the sensor layer to values. The whole slice is validated
// before any neuron is touched.
func (net *Network) Input(values []float64) error {
	sensors := net.layers[0]
	if len(values) != len(sensors) {
		return fmt.Errorf("%w: input expects %d values, got %d", ErrDimensionMismatch, len(sensors), len(values))
	}
	for i, v := range values {
		if !isFinite(v) {
			return fmt.Errorf("%w: input %d is %v", ErrNonFiniteInput, i, v)
		}
	}
	for i, id := range sensors {
		n := &net.neurons[id]
		n.forced = true
		n.forcedValue = values[i]
	}
	return nil
}

// Forward runs one simulation step over every neuron in layer order, then
// index order. Neurons read the outputs their sources hold at the moment
// they are visited.
func (net *Network) Forward() {
	for _, layer := range net.layers {
		for _, id := range layer {
			net.neurons[id].forward(net)
		}
	}
}

// Output returns the current spike value of every output neuron.
func (net *Network) Output() []float64 {
	last := net.layers[len(net.layers)-1]
	out := make([]float64, len(last))
	for i, id := range last {
		out[i] = net.neurons[id].spike
	}
	return out
}

// OutputBools reports whether each output neuron spiked on the last step.
func (net *Network) OutputBools() []bool {
	last := net.layers[len(net.layers)-1]
	out := make([]bool, len(last))
	for i, id := range last {
		out[i] = net.neurons[id].Spiked()
	}
	return out
}

// ResetContext zeroes the membrane potential of every neuron.
func (net *Network) ResetContext() {
	for i := range net.neurons {
		net.neurons[i].vm = 0
	}
}
