package hmpi

import "math"

// RiskTier is the discrete classification of an HMPI value.
type RiskTier string

const (
	VeryHighRisk RiskTier = "Very High Risk"
	HighRisk     RiskTier = "High Risk"
	ModerateRisk RiskTier = "Moderate Risk"
	LowRisk      RiskTier = "Low Risk"
	Safe         RiskTier = "Safe"
)

// Tiers lists the tiers from most to least severe.
var Tiers = []RiskTier{VeryHighRisk, HighRisk, ModerateRisk, LowRisk, Safe}

var tierBounds = []struct {
	min  float64
	tier RiskTier
}{
	{100, VeryHighRisk},
	{50, HighRisk},
	{25, ModerateRisk},
	{10, LowRisk},
}

var tierColors = map[RiskTier]string{
	VeryHighRisk: "#DC2626",
	HighRisk:     "#EA580C",
	ModerateRisk: "#D97706",
	LowRisk:      "#65A30D",
	Safe:         "#059669",
}

// Color returns the display color for the tier, grey for unknown tiers.
func (t RiskTier) Color() string {
	if c, ok := tierColors[t]; ok {
		return c
	}
	return "#666666"
}

// Valid reports whether t is one of the five tiers.
func (t RiskTier) Valid() bool {
	_, ok := tierColors[t]
	return ok
}

// ComputeIndex returns (concentration / idealValue) * weight * 100 rounded
// half-up to two decimals. Non-positive idealValue or weight resolve to the
// defaults instead of producing a division by zero or a negative index.
func ComputeIndex(concentration, idealValue, weight float64) float64 {
	if idealValue <= 0 {
		idealValue = DefaultIdealValue
	}
	if weight <= 0 {
		weight = DefaultWeight
	}
	return round2((concentration / idealValue) * weight * 100)
}

// Classify maps an index to its tier. Lower bounds are inclusive.
func Classify(index float64) RiskTier {
	for _, b := range tierBounds {
		if index >= b.min {
			return b.tier
		}
	}
	return Safe
}

// Overrides lets a caller replace the table constants for one evaluation.
type Overrides struct {
	Ideal  *float64
	Weight *float64
}

// Result is the outcome of evaluating one measurement.
type Result struct {
	Ideal  float64
	Weight float64
	Index  float64
	Tier   RiskTier
}

// Evaluate resolves the reference constants for metal, applies overrides,
// and computes and classifies the index.
func Evaluate(metal Metal, concentration float64, ov Overrides) Result {
	ref := ReferenceFor(metal)
	if ov.Ideal != nil && *ov.Ideal > 0 {
		ref.Ideal = *ov.Ideal
	}
	if ov.Weight != nil && *ov.Weight > 0 {
		ref.Weight = *ov.Weight
	}
	index := ComputeIndex(concentration, ref.Ideal, ref.Weight)
	return Result{
		Ideal:  ref.Ideal,
		Weight: ref.Weight,
		Index:  index,
		Tier:   Classify(index),
	}
}

// round2 rounds half-up to two decimals. The explicit conversion keeps the
// multiply from being fused with the add.
func round2(v float64) float64 {
	return math.Floor(float64(v*100)+0.5) / 100
}
