package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOrderLine(orderID string, priority int) OrderLine {
	return OrderLine{
		SKU:        "SKU-001",
		OrderID:    orderID,
		Store:      "STORE-01",
		Zone:       "ZONE-A",
		Bin:        "BIN-A1",
		BinRank:    "1",
		Qty:        3,
		UnitWeight: 0.5,
		Priority:   priority,
		OrderDate:  time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func TestCutoffPolicyResolve(t *testing.T) {
	policy := DefaultCutoffPolicy()
	orderDate := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		priority   int
		wantCutoff time.Time
	}{
		{"Tier 1 gets two hours", 1, orderDate.Add(2 * time.Hour)},
		{"Tier 2 gets four hours", 2, orderDate.Add(4 * time.Hour)},
		{"Tier 3 gets eight hours", 3, orderDate.Add(8 * time.Hour)},
		{"Tier 4 gets one day", 4, orderDate.Add(24 * time.Hour)},
		{"Tier 5 gets two days", 5, orderDate.Add(48 * time.Hour)},
		{"No-SLA tier gets thirty days", NoSLAPriority, orderDate.Add(720 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := createTestOrderLine("ORD-001", tt.priority)
			resolved, err := policy.Resolve(line)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCutoff, resolved.Cutoff)
			assert.Equal(t, line.OrderID, resolved.OrderID)
		})
	}
}

func TestCutoffPolicyResolveDoesNotMutateInput(t *testing.T) {
	policy := DefaultCutoffPolicy()
	line := createTestOrderLine("ORD-001", 2)

	_, err := policy.Resolve(line)

	require.NoError(t, err)
	assert.True(t, line.Cutoff.IsZero())
}

func TestCutoffPolicyResolveUnknownPriority(t *testing.T) {
	policy := DefaultCutoffPolicy()
	line := createTestOrderLine("ORD-001", 42)

	_, err := policy.Resolve(line)

	require.Error(t, err)
	var malformed *MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "ORD-001", malformed.OrderID)
	assert.ErrorIs(t, err, ErrUnknownPriority)
}

func TestCutoffPolicyResolveMissingOrderDate(t *testing.T) {
	policy := DefaultCutoffPolicy()
	line := createTestOrderLine("ORD-002", 1)
	line.OrderDate = time.Time{}

	_, err := policy.Resolve(line)

	require.Error(t, err)
	var malformed *MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.ErrorIs(t, err, ErrMissingOrderDate)
}

func TestCutoffPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultCutoffPolicy().Validate())

	empty := CutoffPolicy{}
	assert.Error(t, empty.Validate())

	negative := CutoffPolicy{LeadTimes: map[int]time.Duration{1: -time.Hour}}
	assert.Error(t, negative.Validate())
}
