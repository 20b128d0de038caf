package application

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picklist-service/internal/domain"
)

// buildSealedPicklist creates a sealed picklist holding one unit of weight
// unitWeight for each of the given order IDs.
func buildSealedPicklist(t *testing.T, seq int, policy domain.CapacityPolicy, unitWeight float64, orderIDs ...string) *domain.Picklist {
	t.Helper()
	p := domain.NewPicklist("ZONE-A", domain.PicklistTypeNormal, seq, policy)
	for _, orderID := range orderIDs {
		line := packLine(orderID, 1, unitWeight)
		require.NoError(t, p.Add(line, 1))
	}
	require.NoError(t, p.Seal())
	return p
}

func TestReportBuilderEmptyRun(t *testing.T) {
	builder := NewReportBuilder(domain.DefaultScoreWeights(), 0)

	metrics := builder.Build(nil, 3, 1)

	assert.Zero(t, metrics.TotalPicklists)
	assert.Zero(t, metrics.QualityScore)
	assert.Equal(t, 3, metrics.MalformedLines)
	assert.Equal(t, 1, metrics.UnpackableLines)
}

func TestReportBuilderQualityScoreDefaultWeights(t *testing.T) {
	policy := domain.CapacityPolicy{UnitCap: 10, WeightCap: 10.0}
	// 8 units at 0.75kg: unit utilization 0.8, weight utilization 0.6,
	// 4 distinct orders of a reference of 20: consolidation 0.2
	p := buildSealedPicklist(t, 1, policy, 0.75,
		"ORD-001", "ORD-001", "ORD-002", "ORD-002", "ORD-003", "ORD-003", "ORD-004", "ORD-004")

	builder := NewReportBuilder(domain.DefaultScoreWeights(), 20.0)
	metrics := builder.Build([]*domain.Picklist{p}, 0, 0)

	assert.InDelta(t, 0.8, metrics.AvgUnitUtilization, 1e-9)
	assert.InDelta(t, 0.6, metrics.AvgWeightUtilization, 1e-9)
	assert.InDelta(t, 4.0, metrics.AvgOrdersPerPicklist, 1e-9)
	assert.Zero(t, metrics.ViolationCount)

	// 0.4*0.8 + 0.3*0.6 + 0.2*0.2 + 0.1*1.0
	assert.InDelta(t, 0.64, metrics.QualityScore, 1e-9)
}

func TestReportBuilderBaselineReduction(t *testing.T) {
	policy := domain.CapacityPolicy{UnitCap: 100, WeightCap: 1000.0}

	// Ten picklists of ten distinct orders each: the one-order-one-picklist
	// baseline is 100, so the plan is a 90% reduction.
	var picklists []*domain.Picklist
	for i := 0; i < 10; i++ {
		var orderIDs []string
		for j := 0; j < 10; j++ {
			orderIDs = append(orderIDs, fmt.Sprintf("ORD-%02d-%02d", i, j))
		}
		picklists = append(picklists, buildSealedPicklist(t, i+1, policy, 1.0, orderIDs...))
	}

	builder := NewReportBuilder(domain.DefaultScoreWeights(), 20.0)
	metrics := builder.Build(picklists, 0, 0)

	assert.Equal(t, 100, metrics.BaselinePicklists)
	assert.InDelta(t, 0.90, metrics.BaselineReduction, 1e-9)
}

func TestReportBuilderDominanceSplitIsExclusive(t *testing.T) {
	policy := domain.CapacityPolicy{UnitCap: 10, WeightCap: 10.0}

	unitOnly := buildSealedPicklist(t, 1, policy, 0.1, "ORD-001")
	unitOnly.TotalUnits = 12

	weightOnly := buildSealedPicklist(t, 2, policy, 0.1, "ORD-002")
	weightOnly.TotalWeight = 15.0

	joint := buildSealedPicklist(t, 3, policy, 0.1, "ORD-003")
	joint.TotalUnits = 12
	joint.TotalWeight = 15.0

	builder := NewReportBuilder(domain.DefaultScoreWeights(), 20.0)
	metrics := builder.Build([]*domain.Picklist{unitOnly, weightOnly, joint}, 0, 0)

	assert.Equal(t, 3, metrics.ViolationCount)
	// A joint breach is counted in neither dominance bucket
	assert.Equal(t, 1, metrics.UnitDominatedViolations)
	assert.Equal(t, 1, metrics.WeightDominatedViolations)
}

func TestReportBuilderCountsByTypeAndZone(t *testing.T) {
	policy := domain.CapacityPolicy{UnitCap: 10, WeightCap: 100.0}

	normal := buildSealedPicklist(t, 1, policy, 1.0, "ORD-001")

	fragilePolicy := domain.CapacityPolicy{UnitCap: 10, WeightCap: 50.0}
	fragile := domain.NewPicklist("ZONE-B", domain.PicklistTypeFragile, 1, fragilePolicy)
	fragileLine := packLine("ORD-002", 1, 1.0)
	fragileLine.Zone = "ZONE-B"
	fragileLine.Fragile = true
	require.NoError(t, fragile.Add(fragileLine, 1))
	require.NoError(t, fragile.Seal())

	builder := NewReportBuilder(domain.DefaultScoreWeights(), 20.0)
	metrics := builder.Build([]*domain.Picklist{normal, fragile}, 0, 0)

	assert.Equal(t, 2, metrics.TotalPicklists)
	assert.Equal(t, 1, metrics.TypeCounts["normal"])
	assert.Equal(t, 1, metrics.TypeCounts["fragile"])
	assert.Equal(t, 1, metrics.ZoneCounts["ZONE-A"])
	assert.Equal(t, 1, metrics.ZoneCounts["ZONE-B"])
}

func TestReportBuilderSummaries(t *testing.T) {
	policy := domain.CapacityPolicy{UnitCap: 10, WeightCap: 100.0}
	p := buildSealedPicklist(t, 3, policy, 2.0, "ORD-001", "ORD-002")

	builder := NewReportBuilder(domain.DefaultScoreWeights(), 20.0)
	rows := builder.Summaries([]*domain.Picklist{p})

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "ZONE-A", row.Zone)
	assert.Equal(t, 3, row.SequenceNumber)
	assert.Equal(t, domain.PicklistTypeNormal, row.Type)
	assert.Equal(t, 2, row.TotalUnits)
	assert.InDelta(t, 4.0, row.TotalWeight, 1e-9)
	assert.Equal(t, 2, row.DistinctOrders)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), row.EarliestCutoff)
}
