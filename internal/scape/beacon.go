package scape

import (
	"context"
	"fmt"
	"math/rand"

	spikeio "spikenet/internal/io"
)

const defaultBeaconPower = 10

// BeaconScape shows a beacon on the left or right sensor and rewards the
// learner for turning toward it. No teacher vector is ever given.
type BeaconScape struct {
	Power float64
	Seed  int64
}

func NewBeaconScape(power float64, seed int64) BeaconScape {
	if power <= 0 {
		power = defaultBeaconPower
	}
	return BeaconScape{Power: power, Seed: seed}
}

func (BeaconScape) Name() string {
	return "beacon"
}

func (BeaconScape) Shape() (int, int) {
	return 2, 2
}

func (b BeaconScape) Episode(ctx context.Context, learner Learner, steps int) (Fitness, Trace, error) {
	if err := checkSteps(steps); err != nil {
		return 0, nil, err
	}
	power := b.Power
	if power <= 0 {
		power = defaultBeaconPower
	}
	rng := rand.New(rand.NewSource(b.Seed))

	turn := func(ctx context.Context, in []float64) ([]float64, error) {
		return runStep(ctx, learner, in, 2)
	}
	if ticker, ok := learner.(TickLearner); ok {
		if tickTurn, err := beaconTickTurn(ticker); err == nil {
			turn = tickTurn
		}
	}

	hits := 0
	total := 0.0
	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		side := rng.Intn(2)
		in := []float64{0, 0}
		in[side] = 1

		out, err := turn(ctx, in)
		if err != nil {
			return 0, nil, err
		}
		reward := -power
		if active(out[side]) && !active(out[1-side]) {
			reward = power
			hits++
		}
		total += reward
		if err := learner.Reward(ctx, reward); err != nil {
			return 0, nil, err
		}
	}

	return Fitness(float64(hits) / float64(steps)), Trace{
		"hits":         hits,
		"steps":        steps,
		"total_reward": total,
	}, nil
}

func beaconTickTurn(ticker TickLearner) (func(context.Context, []float64) ([]float64, error), error) {
	left, err := scalarSetter(ticker, spikeio.BeaconLeftSensorName)
	if err != nil {
		return nil, err
	}
	right, err := scalarSetter(ticker, spikeio.BeaconRightSensorName)
	if err != nil {
		return nil, err
	}
	output, err := snapshot(ticker, spikeio.BeaconTurnActuatorName)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, in []float64) ([]float64, error) {
		left.Set(in[0])
		right.Set(in[1])
		if _, err := ticker.Tick(ctx); err != nil {
			return nil, err
		}
		last := output.Last()
		if len(last) != 2 {
			return nil, fmt.Errorf("beacon requires two outputs, got %d", len(last))
		}
		return last, nil
	}, nil
}
