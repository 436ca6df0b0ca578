// Package report derives summary statistics and compliance rates from
// samples that already carry their computed HMPI value and risk tier.
// Every function takes an immutable snapshot and returns fresh values.
package report

import (
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/hmpi"
	"github.com/smukkama/aquasure-server/internal/standards"
)

// Summary is the rollup of a set of samples. Tiers and metals that do not
// occur are absent from the maps.
type Summary struct {
	Count             int                    `json:"count"`
	AverageIndex      float64                `json:"average_index"`
	HighRiskCount     int                    `json:"high_risk_count"`
	RiskTierCounts    map[hmpi.RiskTier]int  `json:"risk_tier_counts"`
	MetalCounts       map[hmpi.Metal]int     `json:"metal_counts"`
	MetalAverageIndex map[hmpi.Metal]float64 `json:"metal_average_index"`
}

// Summarize computes counts, the mean HMPI (0 for no samples) and per-tier
// and per-metal groupings in a single pass.
func Summarize(samples []*database.Sample) Summary {
	s := Summary{
		RiskTierCounts:    make(map[hmpi.RiskTier]int),
		MetalCounts:       make(map[hmpi.Metal]int),
		MetalAverageIndex: make(map[hmpi.Metal]float64),
	}

	var total float64
	metalTotals := make(map[hmpi.Metal]float64)
	for _, sample := range samples {
		s.Count++
		total += sample.HMPIValue
		s.RiskTierCounts[sample.RiskLevel]++
		s.MetalCounts[sample.Metal]++
		metalTotals[sample.Metal] += sample.HMPIValue
		if IsHighRisk(sample.RiskLevel) {
			s.HighRiskCount++
		}
	}

	if s.Count > 0 {
		s.AverageIndex = total / float64(s.Count)
	}
	for metal, sum := range metalTotals {
		s.MetalAverageIndex[metal] = sum / float64(s.MetalCounts[metal])
	}
	return s
}

// IsHighRisk groups High Risk and Very High Risk together, the way report
// headlines count "high risk" samples.
func IsHighRisk(tier hmpi.RiskTier) bool {
	return tier == hmpi.HighRisk || tier == hmpi.VeryHighRisk
}

// HighRiskCount counts samples classified High Risk or Very High Risk.
func HighRiskCount(samples []*database.Sample) int {
	n := 0
	for _, sample := range samples {
		if IsHighRisk(sample.RiskLevel) {
			n++
		}
	}
	return n
}

// Compliance is the result of checking one metal against one limit.
type Compliance struct {
	Violations int     `json:"violations"`
	Total      int     `json:"total"`
	Rate       float64 `json:"rate"`
}

// ComplianceRate evaluates every metal in limits against the samples of that
// metal. A violation is a concentration strictly above the limit. A metal
// with no samples is fully compliant.
func ComplianceRate(samples []*database.Sample, limits standards.Table) map[hmpi.Metal]Compliance {
	out := make(map[hmpi.Metal]Compliance, len(limits))
	for metal := range limits {
		out[metal] = Compliance{Rate: 100}
	}

	for _, sample := range samples {
		c, ok := out[sample.Metal]
		if !ok {
			continue
		}
		c.Total++
		if limits.Exceeds(sample.Metal, sample.Concentration) {
			c.Violations++
		}
		out[sample.Metal] = c
	}

	for metal, c := range out {
		if c.Total > 0 {
			c.Rate = float64(c.Total-c.Violations) / float64(c.Total) * 100
			out[metal] = c
		}
	}
	return out
}

// ComplianceByStandard runs ComplianceRate once per standard in the registry.
func ComplianceByStandard(samples []*database.Sample, reg *standards.Registry) map[string]map[hmpi.Metal]Compliance {
	out := make(map[string]map[hmpi.Metal]Compliance)
	for _, name := range reg.Names() {
		table, _ := reg.Table(name)
		out[name] = ComplianceRate(samples, table)
	}
	return out
}
