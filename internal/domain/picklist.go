package domain

import (
	"errors"
	"sort"
	"time"
)

// Errors
var (
	ErrPicklistSealed    = errors.New("picklist is sealed and cannot be modified")
	ErrPicklistEmpty     = errors.New("picklist must contain at least one pick unit")
	ErrCapacityExceeded  = errors.New("allocation would exceed picklist capacity")
	ErrZoneMismatch      = errors.New("pick unit zone does not match picklist zone")
	ErrFragilityMismatch = errors.New("pick unit fragility class does not match picklist type")
	ErrInvalidAllocation = errors.New("allocation must be at least one unit")
)

// PicklistType represents the fragility class of a picklist
type PicklistType string

const (
	PicklistTypeNormal  PicklistType = "normal"
	PicklistTypeFragile PicklistType = "fragile"
)

// PicklistTypeFor returns the picklist type for a line's fragility flag
func PicklistTypeFor(fragile bool) PicklistType {
	if fragile {
		return PicklistTypeFragile
	}
	return PicklistTypeNormal
}

// PicklistStatus represents the lifecycle state of a picklist
type PicklistStatus string

const (
	PicklistStatusOpen   PicklistStatus = "open"   // accumulating pick units
	PicklistStatusSealed PicklistStatus = "sealed" // frozen, numbered permanently
)

// Default capacity caps
const (
	DefaultUnitCap          = 2000
	DefaultNormalWeightCap  = 200.0 // kg
	DefaultFragileWeightCap = 50.0  // kg
)

// WeightTolerance absorbs float accumulation error on the weight cap.
const WeightTolerance = 1e-6

// CapacityPolicy bounds a single (zone, type) packing run
type CapacityPolicy struct {
	UnitCap   int     `bson:"unitCap" json:"unitCap"`
	WeightCap float64 `bson:"weightCap" json:"weightCap"` // kg
}

// PickUnit is an allocation of units from one order line into one picklist.
// Never mutated after creation; owned exclusively by its picklist.
type PickUnit struct {
	SKU        string    `bson:"sku" json:"sku"`
	OrderID    string    `bson:"orderId" json:"orderId"`
	Store      string    `bson:"store" json:"store"`
	Bin        string    `bson:"bin" json:"bin"`
	BinRank    string    `bson:"binRank" json:"binRank"`
	Units      int       `bson:"units" json:"units"`
	UnitWeight float64   `bson:"unitWeight" json:"unitWeight"`
	Cutoff     time.Time `bson:"cutoff" json:"cutoff"`
	Priority   int       `bson:"priority" json:"priority"`
	Fragile    bool      `bson:"fragile" json:"fragile"`
}

// Picklist is an ordered, append-only batch of pick units for one
// (zone, type, sequence) triple. Built incrementally while open, immutable
// once sealed.
type Picklist struct {
	Zone           string         `bson:"zone" json:"zone"`
	Type           PicklistType   `bson:"picklistType" json:"picklistType"`
	SequenceNumber int            `bson:"sequenceNumber" json:"sequenceNumber"`
	Policy         CapacityPolicy `bson:"policy" json:"policy"`
	Status         PicklistStatus `bson:"status" json:"status"`
	Units          []PickUnit     `bson:"units" json:"units"`
	TotalUnits     int            `bson:"totalUnits" json:"totalUnits"`
	TotalWeight    float64        `bson:"totalWeight" json:"totalWeight"`
	OrderIDs       []string       `bson:"orderIds" json:"orderIds"` // sorted, distinct; fixed at seal
	Bins           []string       `bson:"bins" json:"bins"`         // sorted, distinct; fixed at seal
	EarliestCutoff time.Time      `bson:"earliestCutoff" json:"earliestCutoff"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	SealedAt       *time.Time     `bson:"sealedAt,omitempty" json:"sealedAt,omitempty"`

	orderSet map[string]struct{}
	binSet   map[string]struct{}
}

// NewPicklist creates an empty open picklist
func NewPicklist(zone string, picklistType PicklistType, sequenceNumber int, policy CapacityPolicy) *Picklist {
	return &Picklist{
		Zone:           zone,
		Type:           picklistType,
		SequenceNumber: sequenceNumber,
		Policy:         policy,
		Status:         PicklistStatusOpen,
		Units:          make([]PickUnit, 0),
		CreatedAt:      time.Now(),
		orderSet:       make(map[string]struct{}),
		binSet:         make(map[string]struct{}),
	}
}

// IsSealed reports whether the picklist is frozen
func (p *Picklist) IsSealed() bool {
	return p.Status == PicklistStatusSealed
}

// RemainingUnits returns the unit headroom under the cap
func (p *Picklist) RemainingUnits() int {
	return p.Policy.UnitCap - p.TotalUnits
}

// RemainingWeight returns the weight headroom under the cap in kg
func (p *Picklist) RemainingWeight() float64 {
	return p.Policy.WeightCap - p.TotalWeight
}

// MaxTake returns how many units of the line fit in the current headroom.
// Zero-weight lines are bounded by the unit cap only.
func (p *Picklist) MaxTake(line OrderLine) int {
	byUnits := p.RemainingUnits()
	if line.UnitWeight <= 0 {
		return byUnits
	}
	byWeight := int((p.RemainingWeight() + WeightTolerance) / line.UnitWeight)
	if byWeight < byUnits {
		return byWeight
	}
	return byUnits
}

// Add allocates units of a line into the picklist. The capacity invariant is
// enforced here: an allocation that would breach either cap is rejected.
func (p *Picklist) Add(line OrderLine, units int) error {
	if p.IsSealed() {
		return ErrPicklistSealed
	}
	if units < 1 {
		return ErrInvalidAllocation
	}
	if line.Zone != p.Zone {
		return ErrZoneMismatch
	}
	if PicklistTypeFor(line.Fragile) != p.Type {
		return ErrFragilityMismatch
	}
	if p.TotalUnits+units > p.Policy.UnitCap {
		return ErrCapacityExceeded
	}
	addedWeight := float64(units) * line.UnitWeight
	if p.TotalWeight+addedWeight > p.Policy.WeightCap+WeightTolerance {
		return ErrCapacityExceeded
	}

	p.Units = append(p.Units, PickUnit{
		SKU:        line.SKU,
		OrderID:    line.OrderID,
		Store:      line.Store,
		Bin:        line.Bin,
		BinRank:    line.BinRank,
		Units:      units,
		UnitWeight: line.UnitWeight,
		Cutoff:     line.Cutoff,
		Priority:   line.Priority,
		Fragile:    line.Fragile,
	})

	p.TotalUnits += units
	p.TotalWeight += addedWeight

	if p.orderSet == nil {
		p.orderSet = make(map[string]struct{})
	}
	if p.binSet == nil {
		p.binSet = make(map[string]struct{})
	}
	p.orderSet[line.OrderID] = struct{}{}
	p.binSet[line.Bin] = struct{}{}

	if p.EarliestCutoff.IsZero() || line.Cutoff.Before(p.EarliestCutoff) {
		p.EarliestCutoff = line.Cutoff
	}

	return nil
}

// Seal freezes the picklist. Its sequence number is permanent from here on.
func (p *Picklist) Seal() error {
	if p.IsSealed() {
		return ErrPicklistSealed
	}
	if len(p.Units) == 0 {
		return ErrPicklistEmpty
	}

	p.OrderIDs = sortedKeys(p.orderSet)
	p.Bins = sortedKeys(p.binSet)
	p.Status = PicklistStatusSealed
	now := time.Now()
	p.SealedAt = &now

	return nil
}

// DistinctOrders returns the number of distinct order IDs in the picklist
func (p *Picklist) DistinctOrders() int {
	if p.IsSealed() {
		return len(p.OrderIDs)
	}
	return len(p.orderSet)
}

// DistinctBins returns the number of distinct bins in the picklist
func (p *Picklist) DistinctBins() int {
	if p.IsSealed() {
		return len(p.Bins)
	}
	return len(p.binSet)
}

// UnitUtilization returns total units over the unit cap (0-1)
func (p *Picklist) UnitUtilization() float64 {
	if p.Policy.UnitCap <= 0 {
		return 0
	}
	return float64(p.TotalUnits) / float64(p.Policy.UnitCap)
}

// WeightUtilization returns effective (capped) weight over the weight cap (0-1)
func (p *Picklist) WeightUtilization() float64 {
	if p.Policy.WeightCap <= 0 {
		return 0
	}
	effective := p.TotalWeight
	if effective > p.Policy.WeightCap {
		effective = p.Policy.WeightCap
	}
	return effective / p.Policy.WeightCap
}

// Violations reports cap breaches. A post-hoc integrity check: both should
// always be false when the packer is correct.
func (p *Picklist) Violations() (unitViolation, weightViolation bool) {
	unitViolation = p.TotalUnits > p.Policy.UnitCap
	weightViolation = p.TotalWeight > p.Policy.WeightCap+WeightTolerance
	return
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
