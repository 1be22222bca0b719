package scape

import (
	"context"
	"fmt"

	spikeio "spikenet/internal/io"
)

// XORScape cycles through the four XOR cases and teaches the expected bit
// after every step.
type XORScape struct{}

type xorCase struct {
	in   []float64
	want float64
}

var xorCases = []xorCase{
	{in: []float64{0, 0}, want: 0},
	{in: []float64{0, 1}, want: 1},
	{in: []float64{1, 0}, want: 1},
	{in: []float64{1, 1}, want: 0},
}

func (XORScape) Name() string {
	return "xor"
}

func (XORScape) Shape() (int, int) {
	return 2, 1
}

func (XORScape) Episode(ctx context.Context, learner Learner, steps int) (Fitness, Trace, error) {
	if err := checkSteps(steps); err != nil {
		return 0, nil, err
	}

	predict := func(ctx context.Context, in []float64) (float64, error) {
		out, err := runStep(ctx, learner, in, 1)
		if err != nil {
			return 0, err
		}
		return out[0], nil
	}
	if ticker, ok := learner.(TickLearner); ok {
		if tickPredict, err := xorTickPredictor(ticker); err == nil {
			predict = tickPredict
		}
	}

	correct := 0
	predictions := make([]float64, 0, steps)
	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		c := xorCases[step%len(xorCases)]
		predicted, err := predict(ctx, c.in)
		if err != nil {
			return 0, nil, err
		}
		predictions = append(predictions, predicted)
		if active(predicted) == active(c.want) {
			correct++
		}
		if err := learner.Teach(ctx, []float64{c.want}); err != nil {
			return 0, nil, err
		}
	}

	return Fitness(float64(correct) / float64(steps)), Trace{
		"correct":     correct,
		"steps":       steps,
		"predictions": predictions,
	}, nil
}

func xorTickPredictor(ticker TickLearner) (func(context.Context, []float64) (float64, error), error) {
	left, err := scalarSetter(ticker, spikeio.XORInputLeftSensorName)
	if err != nil {
		return nil, err
	}
	right, err := scalarSetter(ticker, spikeio.XORInputRightSensorName)
	if err != nil {
		return nil, err
	}
	output, err := snapshot(ticker, spikeio.XOROutputActuatorName)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, in []float64) (float64, error) {
		left.Set(in[0])
		right.Set(in[1])

		out, err := ticker.Tick(ctx)
		if err != nil {
			return 0, err
		}
		if last := output.Last(); len(last) > 0 {
			return last[0], nil
		}
		if len(out) > 0 {
			return out[0], nil
		}
		return 0, fmt.Errorf("xor requires one output, got 0")
	}, nil
}
