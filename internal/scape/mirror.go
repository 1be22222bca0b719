package scape

import "context"

const defaultMirrorWidth = 2

// MirrorScape presents every bit pattern of Width bits in turn and teaches
// the learner to reproduce it on its outputs.
type MirrorScape struct {
	Width int
}

func (MirrorScape) Name() string {
	return "mirror"
}

func (m MirrorScape) Shape() (int, int) {
	w := m.width()
	return w, w
}

func (m MirrorScape) width() int {
	if m.Width <= 0 {
		return defaultMirrorWidth
	}
	return m.Width
}

func (m MirrorScape) Episode(ctx context.Context, learner Learner, steps int) (Fitness, Trace, error) {
	if err := checkSteps(steps); err != nil {
		return 0, nil, err
	}
	width := m.width()
	patterns := 1 << width
	if width > 16 {
		patterns = 1 << 16
	}

	matchedBits := 0
	exact := 0
	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		pattern := mirrorPattern(step%patterns, width)
		out, err := runStep(ctx, learner, pattern, width)
		if err != nil {
			return 0, nil, err
		}
		matched := 0
		for i := range pattern {
			if active(out[i]) == active(pattern[i]) {
				matched++
			}
		}
		matchedBits += matched
		if matched == width {
			exact++
		}
		if err := learner.Teach(ctx, pattern); err != nil {
			return 0, nil, err
		}
	}

	return Fitness(float64(matchedBits) / float64(steps*width)), Trace{
		"exact": exact,
		"steps": steps,
		"width": width,
	}, nil
}

// mirrorPattern expands n into width bits, most significant first.
func mirrorPattern(n, width int) []float64 {
	bits := make([]float64, width)
	for i := 0; i < width; i++ {
		if n&(1<<(width-1-i)) != 0 {
			bits[i] = 1
		}
	}
	return bits
}
