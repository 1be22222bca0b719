package nn

import (
	"math"
)

// Bounds and fallback values for neuron properties. A setter that receives a
// value outside its range (or NaN/Inf) falls back to the listed default and
// reports a CoercionEvent instead of failing.
const (
	ResetRatioMin     = 0.0
	ResetRatioMax     = 1.0
	ResetRatioDefault = 0.05

	LeakMin     = 0.0
	LeakMax     = 100.0
	LeakDefault = 0.1

	SensitivityMin     = 0.0
	SensitivityMax     = 200.0
	SensitivityDefault = 100.0

	SensitivityAdjustMin     = -100.0
	SensitivityAdjustMax     = 100.0
	SensitivityAdjustDefault = -10.0

	SensitivityRestoreMin     = 0.0
	SensitivityRestoreMax     = 100.0
	SensitivityRestoreDefault = 1.0

	RefractoryMin     = 0
	RefractoryMax     = 1_000_000
	RefractoryDefault = 1

	// Precision is the number of decimal digits kept for weights, membrane
	// potentials and stability values.
	Precision = 4
)

// Properties is the full membrane parameter set of a neuron.
type Properties struct {
	Rest                   float64
	Threshold              float64
	ResetRatio             float64
	LeakPercent            float64
	Sensitivity            float64
	SensitivityNormal      float64
	SensitivityAdjustRate  float64
	SensitivityRestoreRate float64
	RefractoryPeriod       int
	// ResidualTTL arms a connection's TTL each time its source is active.
	// Zero disables residual injection.
	ResidualTTL int
}

// DefaultProperties mirrors a freshly constructed neuron before any layer
// defaults are applied.
func DefaultProperties() Properties {
	return Properties{
		Rest:                   0,
		Threshold:              25,
		ResetRatio:             ResetRatioDefault,
		LeakPercent:            LeakDefault,
		Sensitivity:            SensitivityDefault,
		SensitivityNormal:      SensitivityDefault,
		SensitivityAdjustRate:  -0.001,
		SensitivityRestoreRate: SensitivityRestoreDefault,
		RefractoryPeriod:       0,
	}
}

// PropertyOverrides carries optional property updates; nil fields are left
// untouched.
type PropertyOverrides struct {
	Rest                   *float64
	Threshold              *float64
	ResetRatio             *float64
	LeakPercent            *float64
	Sensitivity            *float64
	SensitivityNormal      *float64
	SensitivityAdjustRate  *float64
	SensitivityRestoreRate *float64
	RefractoryPeriod       *int
	ResidualTTL            *int
}

// Float returns a pointer to v, for building PropertyOverrides literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building PropertyOverrides literals.
func Int(v int) *int { return &v }

// Merge returns o with every field set in other taking precedence.
func (o PropertyOverrides) Merge(other PropertyOverrides) PropertyOverrides {
	out := o
	if other.Rest != nil {
		out.Rest = other.Rest
	}
	if other.Threshold != nil {
		out.Threshold = other.Threshold
	}
	if other.ResetRatio != nil {
		out.ResetRatio = other.ResetRatio
	}
	if other.LeakPercent != nil {
		out.LeakPercent = other.LeakPercent
	}
	if other.Sensitivity != nil {
		out.Sensitivity = other.Sensitivity
	}
	if other.SensitivityNormal != nil {
		out.SensitivityNormal = other.SensitivityNormal
	}
	if other.SensitivityAdjustRate != nil {
		out.SensitivityAdjustRate = other.SensitivityAdjustRate
	}
	if other.SensitivityRestoreRate != nil {
		out.SensitivityRestoreRate = other.SensitivityRestoreRate
	}
	if other.RefractoryPeriod != nil {
		out.RefractoryPeriod = other.RefractoryPeriod
	}
	if other.ResidualTTL != nil {
		out.ResidualTTL = other.ResidualTTL
	}
	return out
}

// apply writes the overrides into p, coercing out-of-range values. Every
// coercion is handed to report.
func (o PropertyOverrides) apply(p *Properties, report func(property string, requested, applied float64)) {
	if o.Rest != nil {
		p.Rest = finiteOr(*o.Rest, p.Rest, "rest", report)
	}
	if o.Threshold != nil {
		p.Threshold = finiteOr(*o.Threshold, p.Threshold, "threshold", report)
	}
	if o.ResetRatio != nil {
		p.ResetRatio = rangeOr(*o.ResetRatio, ResetRatioMin, ResetRatioMax, ResetRatioDefault, "reset_ratio", report)
	}
	if o.LeakPercent != nil {
		p.LeakPercent = rangeOr(*o.LeakPercent, LeakMin, LeakMax, LeakDefault, "leak_percent", report)
	}
	if o.Sensitivity != nil {
		p.Sensitivity = rangeOr(*o.Sensitivity, SensitivityMin, SensitivityMax, SensitivityDefault, "sensitivity", report)
	}
	if o.SensitivityNormal != nil {
		p.SensitivityNormal = rangeOr(*o.SensitivityNormal, SensitivityMin, SensitivityMax, SensitivityDefault, "sensitivity_normal", report)
	}
	if o.SensitivityAdjustRate != nil {
		p.SensitivityAdjustRate = rangeOr(*o.SensitivityAdjustRate, SensitivityAdjustMin, SensitivityAdjustMax, SensitivityAdjustDefault, "sensitivity_adjust_rate", report)
	}
	if o.SensitivityRestoreRate != nil {
		p.SensitivityRestoreRate = rangeOr(*o.SensitivityRestoreRate, SensitivityRestoreMin, SensitivityRestoreMax, SensitivityRestoreDefault, "sensitivity_restore_rate", report)
	}
	if o.RefractoryPeriod != nil {
		v := *o.RefractoryPeriod
		if v < RefractoryMin || v > RefractoryMax {
			report("refractory_period", float64(v), RefractoryDefault)
			v = RefractoryDefault
		}
		p.RefractoryPeriod = v
	}
	if o.ResidualTTL != nil {
		v := *o.ResidualTTL
		if v < TTLMin || v > TTLMax {
			clamped := clampInt(v, TTLMin, TTLMax)
			report("residual_ttl", float64(v), float64(clamped))
			v = clamped
		}
		p.ResidualTTL = v
	}
}

func rangeOr(v, lo, hi, fallback float64, property string, report func(string, float64, float64)) float64 {
	if math.IsNaN(v) || v < lo || v > hi {
		report(property, v, fallback)
		return fallback
	}
	return v
}

func finiteOr(v, fallback float64, property string, report func(string, float64, float64)) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		report(property, v, fallback)
		return fallback
	}
	return v
}

var roundScale = math.Pow10(Precision)

func round(v float64) float64 {
	return math.Round(v*roundScale) / roundScale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
