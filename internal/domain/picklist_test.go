package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() CapacityPolicy {
	return CapacityPolicy{UnitCap: 10, WeightCap: 20.0}
}

func testLine(orderID, bin string, qty int, weight float64) OrderLine {
	return OrderLine{
		SKU:        "SKU-001",
		OrderID:    orderID,
		Store:      "STORE-01",
		Zone:       "ZONE-A",
		Bin:        bin,
		Qty:        qty,
		UnitWeight: weight,
		Priority:   1,
		Cutoff:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}
}

func TestPicklistAdd(t *testing.T) {
	p := NewPicklist("ZONE-A", PicklistTypeNormal, 1, testPolicy())

	err := p.Add(testLine("ORD-001", "BIN-A1", 3, 1.0), 3)

	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalUnits)
	assert.InDelta(t, 3.0, p.TotalWeight, 1e-9)
	assert.Equal(t, 1, p.DistinctOrders())
	assert.Equal(t, 1, p.DistinctBins())
}

func TestPicklistAddRejectsOverCapacity(t *testing.T) {
	tests := []struct {
		name  string
		line  OrderLine
		units int
	}{
		{"Unit cap breach", testLine("ORD-001", "BIN-A1", 11, 0.1), 11},
		{"Weight cap breach", testLine("ORD-001", "BIN-A1", 5, 5.0), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPicklist("ZONE-A", PicklistTypeNormal, 1, testPolicy())
			err := p.Add(tt.line, tt.units)
			assert.ErrorIs(t, err, ErrCapacityExceeded)
			assert.Zero(t, p.TotalUnits)
		})
	}
}

func TestPicklistAddRejectsMismatches(t *testing.T) {
	p := NewPicklist("ZONE-A", PicklistTypeNormal, 1, testPolicy())

	wrongZone := testLine("ORD-001", "BIN-A1", 1, 1.0)
	wrongZone.Zone = "ZONE-B"
	assert.ErrorIs(t, p.Add(wrongZone, 1), ErrZoneMismatch)

	fragile := testLine("ORD-001", "BIN-A1", 1, 1.0)
	fragile.Fragile = true
	assert.ErrorIs(t, p.Add(fragile, 1), ErrFragilityMismatch)

	assert.ErrorIs(t, p.Add(testLine("ORD-001", "BIN-A1", 1, 1.0), 0), ErrInvalidAllocation)
}

func TestPicklistMaxTake(t *testing.T) {
	tests := []struct {
		name       string
		preUnits   int
		preWeight  float64
		lineWeight float64
		want       int
	}{
		{"Empty picklist bounded by weight", 0, 0, 3.0, 6},
		{"Empty picklist bounded by units", 0, 0, 0.5, 10},
		{"Zero-weight line bounded by units only", 0, 0, 0, 10},
		{"Partially full picklist", 4, 10.0, 2.0, 5},
		{"Full picklist takes nothing", 10, 0, 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPicklist("ZONE-A", PicklistTypeNormal, 1, testPolicy())
			if tt.preUnits > 0 {
				require.NoError(t, p.Add(testLine("ORD-PRE", "BIN-A1", tt.preUnits, tt.preWeight/float64(tt.preUnits)), tt.preUnits))
			}

			line := testLine("ORD-001", "BIN-A2", 100, tt.lineWeight)
			assert.Equal(t, tt.want, p.MaxTake(line))
		})
	}
}

func TestPicklistMaxTakeWeightTolerance(t *testing.T) {
	// Ten lots of 2.0kg must exactly fill a 20kg cap despite float accumulation
	p := NewPicklist("ZONE-A", PicklistTypeNormal, 1, CapacityPolicy{UnitCap: 100, WeightCap: 20.0})

	for i := 0; i < 9; i++ {
		require.NoError(t, p.Add(testLine("ORD-001", "BIN-A1", 1, 2.0), 1))
	}

	line := testLine("ORD-001", "BIN-A1", 1, 2.0)
	assert.Equal(t, 1, p.MaxTake(line))
	require.NoError(t, p.Add(line, 1))
	assert.Equal(t, 0, p.MaxTake(line))
}

func TestPicklistSeal(t *testing.T) {
	p := NewPicklist("ZONE-A", PicklistTypeNormal, 1, testPolicy())
	require.NoError(t, p.Add(testLine("ORD-002", "BIN-B2", 2, 1.0), 2))
	require.NoError(t, p.Add(testLine("ORD-001", "BIN-A1", 1, 1.0), 1))

	require.NoError(t, p.Seal())

	assert.True(t, p.IsSealed())
	assert.NotNil(t, p.SealedAt)
	assert.Equal(t, []string{"ORD-001", "ORD-002"}, p.OrderIDs)
	assert.Equal(t, []string{"BIN-A1", "BIN-B2"}, p.Bins)

	// Frozen once sealed
	assert.ErrorIs(t, p.Add(testLine("ORD-003", "BIN-C3", 1, 1.0), 1), ErrPicklistSealed)
	assert.ErrorIs(t, p.Seal(), ErrPicklistSealed)
}

func TestPicklistSealEmpty(t *testing.T) {
	p := NewPicklist("ZONE-A", PicklistTypeNormal, 1, testPolicy())
	assert.ErrorIs(t, p.Seal(), ErrPicklistEmpty)
}

func TestPicklistEarliestCutoff(t *testing.T) {
	p := NewPicklist("ZONE-A", PicklistTypeNormal, 1, testPolicy())

	late := testLine("ORD-001", "BIN-A1", 1, 1.0)
	late.Cutoff = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	early := testLine("ORD-002", "BIN-A2", 1, 1.0)
	early.Cutoff = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, p.Add(late, 1))
	require.NoError(t, p.Add(early, 1))

	assert.Equal(t, early.Cutoff, p.EarliestCutoff)
}

func TestPicklistUtilization(t *testing.T) {
	p := NewPicklist("ZONE-A", PicklistTypeNormal, 1, testPolicy())
	require.NoError(t, p.Add(testLine("ORD-001", "BIN-A1", 5, 2.0), 5))

	assert.InDelta(t, 0.5, p.UnitUtilization(), 1e-9)
	assert.InDelta(t, 0.5, p.WeightUtilization(), 1e-9)

	unitViolation, weightViolation := p.Violations()
	assert.False(t, unitViolation)
	assert.False(t, weightViolation)
}

func TestPicklistTypeFor(t *testing.T) {
	assert.Equal(t, PicklistTypeFragile, PicklistTypeFor(true))
	assert.Equal(t, PicklistTypeNormal, PicklistTypeFor(false))
}
