package stats

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"spikenet/internal/model"
	"spikenet/internal/nn"
)

var ErrNoFeedForwardLayer = errors.New("layer has no preceding layer")

// LayerWeights returns the feed-forward weight matrix of layer depth: row i
// holds the weights of neuron i from each neuron of depth-1. Missing
// connections are zero; recurrent and lateral connections are not included.
func LayerWeights(net *nn.Network, depth int) (*mat.Dense, error) {
	if depth <= 0 || depth >= net.LayerCount() {
		return nil, fmt.Errorf("%w: %d", ErrNoFeedForwardLayer, depth)
	}
	targets := net.Layer(depth)
	sources := net.Layer(depth - 1)
	column := make(map[nn.NeuronID]int, len(sources))
	for j, id := range sources {
		column[id] = j
	}

	weights := mat.NewDense(len(targets), len(sources), nil)
	for i, id := range targets {
		n, err := net.Neuron(id)
		if err != nil {
			return nil, err
		}
		for _, c := range n.Connections() {
			if j, ok := column[c.Source]; ok {
				weights.Set(i, j, c.Weight)
			}
		}
	}
	return weights, nil
}

// Layers snapshots every layer of net. Weight and stability figures cover
// all incoming connections; WeightNorm is the Frobenius norm of the
// feed-forward matrix.
func Layers(net *nn.Network) ([]model.LayerStats, error) {
	out := make([]model.LayerStats, 0, net.LayerCount())
	for depth := 0; depth < net.LayerCount(); depth++ {
		ids := net.Layer(depth)
		var (
			weights     []float64
			stabilities []float64
			vms         = make([]float64, 0, len(ids))
			spikes      int
			steps       int
		)
		for _, id := range ids {
			n, err := net.Neuron(id)
			if err != nil {
				return nil, err
			}
			for _, c := range n.Connections() {
				weights = append(weights, c.Weight)
				stabilities = append(stabilities, c.Stability)
			}
			vms = append(vms, n.MembranePotential())
			for _, v := range n.OutputHistory() {
				steps++
				if v != 0 {
					spikes++
				}
			}
		}

		layer := model.LayerStats{
			Layer:       depth,
			Neurons:     len(ids),
			Connections: len(weights),
			MeanVM:      stat.Mean(vms, nil),
		}
		if steps > 0 {
			layer.SpikeRate = float64(spikes) / float64(steps)
		}
		if len(weights) > 0 {
			layer.MeanWeight = stat.Mean(weights, nil)
			layer.MinWeight = floats.Min(weights)
			layer.MaxWeight = floats.Max(weights)
			layer.MeanStability = stat.Mean(stabilities, nil)
		}
		if depth > 0 {
			matrix, err := LayerWeights(net, depth)
			if err != nil {
				return nil, err
			}
			layer.WeightNorm = mat.Norm(matrix, 2)
		}
		out = append(out, layer)
	}
	return out, nil
}
