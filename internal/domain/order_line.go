package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errors
var (
	ErrMissingOrderDate = errors.New("order line has no parseable order date")
	ErrUnknownPriority  = errors.New("order line priority is outside the known domain")
)

// NoSLAPriority is the sentinel tier for feed rows that carry no priority.
// It maps to a far-future cutoff so undated work packs behind everything else.
const NoSLAPriority = 9999

// OrderLine is a single normalized warehouse order-line record.
// It is immutable once the cutoff has been resolved; packing operates on
// residual-quantity views and never mutates the source line.
type OrderLine struct {
	SKU        string    `bson:"sku" json:"sku"`
	OrderID    string    `bson:"orderId" json:"orderId"`
	Store      string    `bson:"store" json:"store"`
	Zone       string    `bson:"zone" json:"zone"`
	Bin        string    `bson:"bin" json:"bin"`
	BinRank    string    `bson:"binRank" json:"binRank"`
	Qty        int       `bson:"qty" json:"qty"`
	UnitWeight float64   `bson:"unitWeight" json:"unitWeight"` // kg per unit
	Priority   int       `bson:"priority" json:"priority"`     // lower = more urgent
	OrderDate  time.Time `bson:"orderDate" json:"orderDate"`
	Fragile    bool      `bson:"fragile" json:"fragile"`
	Cutoff     time.Time `bson:"cutoff" json:"cutoff"` // derived by CutoffPolicy
}

// MalformedRecordError marks an order line that failed cutoff resolution.
// Such lines are excluded from packing and reported, never silently dropped.
type MalformedRecordError struct {
	OrderID string
	SKU     string
	Reason  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed order line %s (%s): %v", e.OrderID, e.SKU, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Reason
}

// CutoffPolicy maps priority tiers to allowed lead times.
type CutoffPolicy struct {
	LeadTimes map[int]time.Duration
}

// DefaultCutoffPolicy returns the standard tier table. Tier 1 is the most
// urgent; NoSLAPriority gets a 30-day lead time.
func DefaultCutoffPolicy() CutoffPolicy {
	return CutoffPolicy{
		LeadTimes: map[int]time.Duration{
			1:             2 * time.Hour,
			2:             4 * time.Hour,
			3:             8 * time.Hour,
			4:             24 * time.Hour,
			5:             48 * time.Hour,
			NoSLAPriority: 720 * time.Hour,
		},
	}
}

// Validate checks the policy is usable
func (p CutoffPolicy) Validate() error {
	if len(p.LeadTimes) == 0 {
		return errors.New("cutoff policy has no priority tiers")
	}
	for tier, lead := range p.LeadTimes {
		if lead <= 0 {
			return fmt.Errorf("cutoff policy tier %d has non-positive lead time", tier)
		}
	}
	return nil
}

// Resolve derives the absolute cutoff for a line: order_date + lead_time(priority).
// Returns MalformedRecordError when the order date is missing or the priority is
// outside the configured domain. The input line is not mutated.
func (p CutoffPolicy) Resolve(line OrderLine) (OrderLine, error) {
	if line.OrderDate.IsZero() {
		return OrderLine{}, &MalformedRecordError{OrderID: line.OrderID, SKU: line.SKU, Reason: ErrMissingOrderDate}
	}

	lead, ok := p.LeadTimes[line.Priority]
	if !ok {
		return OrderLine{}, &MalformedRecordError{
			OrderID: line.OrderID,
			SKU:     line.SKU,
			Reason:  fmt.Errorf("%w: %d", ErrUnknownPriority, line.Priority),
		}
	}

	resolved := line
	resolved.Cutoff = line.OrderDate.Add(lead)
	return resolved, nil
}
