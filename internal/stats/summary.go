package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RewardSummary describes a series of per-episode fitness values.
type RewardSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	First  float64 `json:"first"`
	Final  float64 `json:"final"`
}

// Improvement is the change from the first to the final value.
func (s RewardSummary) Improvement() float64 {
	return s.Final - s.First
}

// SummarizeRewards returns the zero summary for an empty series. The standard
// deviation of a single value is 0.
func SummarizeRewards(values []float64) RewardSummary {
	if len(values) == 0 {
		return RewardSummary{}
	}
	summary := RewardSummary{
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
		First: values[0],
		Final: values[len(values)-1],
	}
	if len(values) == 1 {
		summary.Mean = values[0]
		return summary
	}
	summary.Mean, summary.StdDev = stat.MeanStdDev(values, nil)
	return summary
}
