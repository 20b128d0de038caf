package application

import (
	"time"

	"github.com/wms-platform/picklist-service/internal/domain"
)

// ReportBuilder derives the per-picklist summary table and run-level quality
// metrics from a set of sealed picklists.
type ReportBuilder struct {
	weights                domain.ScoreWeights
	consolidationReference float64
}

// NewReportBuilder creates a report builder. A non-positive consolidation
// reference falls back to the default.
func NewReportBuilder(weights domain.ScoreWeights, consolidationReference float64) *ReportBuilder {
	if consolidationReference <= 0 {
		consolidationReference = domain.DefaultConsolidationReference
	}
	return &ReportBuilder{
		weights:                weights,
		consolidationReference: consolidationReference,
	}
}

// Summaries builds one summary row per picklist, in picklist order
func (b *ReportBuilder) Summaries(picklists []*domain.Picklist) []domain.SummaryRow {
	now := time.Now()
	rows := make([]domain.SummaryRow, 0, len(picklists))
	for _, p := range picklists {
		createdAt := now
		if p.SealedAt != nil {
			createdAt = *p.SealedAt
		}
		rows = append(rows, domain.SummaryRow{
			Zone:           p.Zone,
			SequenceNumber: p.SequenceNumber,
			Type:           p.Type,
			TotalUnits:     p.TotalUnits,
			TotalWeight:    p.TotalWeight,
			DistinctOrders: p.DistinctOrders(),
			DistinctBins:   p.DistinctBins(),
			EarliestCutoff: p.EarliestCutoff,
			CreatedAt:      createdAt,
		})
	}
	return rows
}

// Build computes the run metrics and composite quality score.
//
// The baseline is the hypothetical one-picklist-per-order plan: the sum of
// distinct order counts across picklists. Weight utilization is effective
// (capped at 1 per picklist) so an overweight list cannot inflate the score.
func (b *ReportBuilder) Build(picklists []*domain.Picklist, malformedLines, unpackableLines int) domain.RunMetrics {
	metrics := domain.RunMetrics{
		TotalPicklists:  len(picklists),
		TypeCounts:      make(map[string]int),
		ZoneCounts:      make(map[string]int),
		MalformedLines:  malformedLines,
		UnpackableLines: unpackableLines,
	}

	if len(picklists) == 0 {
		return metrics
	}

	var (
		totalUnits     int
		totalWeight    float64
		sumUnitUtil    float64
		sumWeightUtil  float64
		sumOrders      int
		sumBins        int
		baselineOrders int
	)

	for _, p := range picklists {
		totalUnits += p.TotalUnits
		totalWeight += p.TotalWeight
		sumUnitUtil += p.UnitUtilization()
		sumWeightUtil += p.WeightUtilization()
		sumOrders += p.DistinctOrders()
		sumBins += p.DistinctBins()
		baselineOrders += p.DistinctOrders()

		metrics.TypeCounts[string(p.Type)]++
		metrics.ZoneCounts[p.Zone]++

		unitViolation, weightViolation := p.Violations()
		if unitViolation || weightViolation {
			metrics.ViolationCount++
		}
		// Dominance buckets are exclusive; a joint breach lands in neither
		if unitViolation && !weightViolation {
			metrics.UnitDominatedViolations++
		}
		if weightViolation && !unitViolation {
			metrics.WeightDominatedViolations++
		}
	}

	count := float64(len(picklists))
	metrics.AvgUnitsPerPicklist = float64(totalUnits) / count
	metrics.AvgWeightPerPicklist = totalWeight / count
	metrics.ViolationRate = float64(metrics.ViolationCount) / count
	metrics.AvgUnitUtilization = sumUnitUtil / count
	metrics.AvgWeightUtilization = sumWeightUtil / count
	metrics.AvgOrdersPerPicklist = float64(sumOrders) / count
	metrics.AvgBinsPerPicklist = float64(sumBins) / count

	metrics.BaselinePicklists = baselineOrders
	if baselineOrders > 0 {
		metrics.BaselineReduction = 1.0 - count/float64(baselineOrders)
	}

	consolidation := clamp01(metrics.AvgOrdersPerPicklist / b.consolidationReference)
	correctness := clamp01(1.0 - metrics.ViolationRate)

	metrics.QualityScore = b.weights.UnitUtilization*clamp01(metrics.AvgUnitUtilization) +
		b.weights.WeightUtilization*clamp01(metrics.AvgWeightUtilization) +
		b.weights.Consolidation*consolidation +
		b.weights.Correctness*correctness +
		b.weights.BaselineReduction*clamp01(metrics.BaselineReduction)

	return metrics
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
