package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RunStatus represents the outcome of a generation run
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ExclusionKind distinguishes why a line was excluded from packing
type ExclusionKind string

const (
	ExclusionMalformed  ExclusionKind = "malformed"  // unparseable date / unknown priority
	ExclusionUnpackable ExclusionKind = "unpackable" // single unit exceeds the weight cap
)

// ExcludedLine records one order line excluded from packing
type ExcludedLine struct {
	OrderID string        `bson:"orderId" json:"orderId"`
	SKU     string        `bson:"sku" json:"sku"`
	Zone    string        `bson:"zone" json:"zone"`
	Kind    ExclusionKind `bson:"kind" json:"kind"`
	Reason  string        `bson:"reason" json:"reason"`
}

// SummaryRow is the per-picklist line of the run summary table
type SummaryRow struct {
	Zone           string       `bson:"zone" json:"zone"`
	SequenceNumber int          `bson:"sequenceNumber" json:"sequenceNumber"`
	Type           PicklistType `bson:"picklistType" json:"picklistType"`
	TotalUnits     int          `bson:"totalUnits" json:"totalUnits"`
	TotalWeight    float64      `bson:"totalWeight" json:"totalWeight"`
	DistinctOrders int          `bson:"distinctOrders" json:"distinctOrders"`
	DistinctBins   int          `bson:"distinctBins" json:"distinctBins"`
	EarliestCutoff time.Time    `bson:"earliestCutoff" json:"earliestCutoff"`
	CreatedAt      time.Time    `bson:"createdAt" json:"createdAt"`
}

// RunMetrics aggregates run-level quality measurements
type RunMetrics struct {
	TotalPicklists            int                  `bson:"totalPicklists" json:"totalPicklists"`
	AvgUnitsPerPicklist       float64              `bson:"avgUnitsPerPicklist" json:"avgUnitsPerPicklist"`
	AvgWeightPerPicklist      float64              `bson:"avgWeightPerPicklist" json:"avgWeightPerPicklist"`
	ViolationCount            int                  `bson:"violationCount" json:"violationCount"`
	ViolationRate             float64              `bson:"violationRate" json:"violationRate"`
	UnitDominatedViolations   int                  `bson:"unitDominatedViolations" json:"unitDominatedViolations"`
	WeightDominatedViolations int                  `bson:"weightDominatedViolations" json:"weightDominatedViolations"`
	AvgUnitUtilization        float64              `bson:"avgUnitUtilization" json:"avgUnitUtilization"`     // 0-1
	AvgWeightUtilization      float64              `bson:"avgWeightUtilization" json:"avgWeightUtilization"` // 0-1, effective (capped)
	AvgOrdersPerPicklist      float64              `bson:"avgOrdersPerPicklist" json:"avgOrdersPerPicklist"`
	AvgBinsPerPicklist        float64              `bson:"avgBinsPerPicklist" json:"avgBinsPerPicklist"`
	BaselinePicklists         int                  `bson:"baselinePicklists" json:"baselinePicklists"` // one-order-one-picklist baseline
	BaselineReduction         float64              `bson:"baselineReduction" json:"baselineReduction"` // 1 - total/baseline
	TypeCounts                map[string]int       `bson:"typeCounts" json:"typeCounts"`
	ZoneCounts                map[string]int       `bson:"zoneCounts" json:"zoneCounts"`
	MalformedLines            int                  `bson:"malformedLines" json:"malformedLines"`
	UnpackableLines           int                  `bson:"unpackableLines" json:"unpackableLines"`
	QualityScore              float64              `bson:"qualityScore" json:"qualityScore"`
}

// ScoreWeights tunes the composite quality score. Weights must be
// non-negative and sum to 1.
type ScoreWeights struct {
	UnitUtilization   float64 `bson:"unitUtilization" json:"unitUtilization" yaml:"unit_utilization"`
	WeightUtilization float64 `bson:"weightUtilization" json:"weightUtilization" yaml:"weight_utilization"`
	Consolidation     float64 `bson:"consolidation" json:"consolidation" yaml:"consolidation"`
	Correctness       float64 `bson:"correctness" json:"correctness" yaml:"correctness"`
	BaselineReduction float64 `bson:"baselineReduction" json:"baselineReduction" yaml:"baseline_reduction"`
}

// DefaultConsolidationReference is the orders-per-picklist count treated as
// full consolidation when normalizing the consolidation factor.
const DefaultConsolidationReference = 20.0

// DefaultScoreWeights matches the reference evaluation formula.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		UnitUtilization:   0.4,
		WeightUtilization: 0.3,
		Consolidation:     0.2,
		Correctness:       0.1,
		BaselineReduction: 0.0,
	}
}

// Validate checks the weights are non-negative and sum to 1
func (w ScoreWeights) Validate() error {
	for name, v := range map[string]float64{
		"unit_utilization":   w.UnitUtilization,
		"weight_utilization": w.WeightUtilization,
		"consolidation":      w.Consolidation,
		"correctness":        w.Correctness,
		"baseline_reduction": w.BaselineReduction,
	} {
		if v < 0 {
			return fmt.Errorf("score weight %s is negative", name)
		}
	}

	sum := w.UnitUtilization + w.WeightUtilization + w.Consolidation + w.Correctness + w.BaselineReduction
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("score weights sum to %.6f, want 1.0", sum)
	}
	return nil
}

// PicklistRun is the aggregate root for one generation run
type PicklistRun struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RunID         string             `bson:"runId" json:"runId"`
	Status        RunStatus          `bson:"status" json:"status"`
	Zones         []string           `bson:"zones" json:"zones"`
	Picklists     []*Picklist        `bson:"picklists" json:"picklists"`
	Summaries     []SummaryRow       `bson:"summaries" json:"summaries"`
	Metrics       RunMetrics         `bson:"metrics" json:"metrics"`
	Exclusions    []ExcludedLine     `bson:"exclusions" json:"exclusions"`
	SourceLines   int                `bson:"sourceLines" json:"sourceLines"`
	FailureReason string             `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	CompletedAt   *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	DomainEvents  []DomainEvent      `bson:"-" json:"-"` // Transient
}

// NewPicklistRun creates a new run aggregate
func NewPicklistRun(runID string, sourceLines int) *PicklistRun {
	return &PicklistRun{
		RunID:        runID,
		Picklists:    make([]*Picklist, 0),
		Summaries:    make([]SummaryRow, 0),
		Exclusions:   make([]ExcludedLine, 0),
		SourceLines:  sourceLines,
		CreatedAt:    time.Now(),
		DomainEvents: make([]DomainEvent, 0),
	}
}

// AttachPicklist appends a sealed picklist and records the seal event
func (r *PicklistRun) AttachPicklist(p *Picklist) error {
	if !p.IsSealed() {
		return errors.New("only sealed picklists can be attached to a run")
	}

	r.Picklists = append(r.Picklists, p)

	sealedAt := time.Now()
	if p.SealedAt != nil {
		sealedAt = *p.SealedAt
	}
	r.AddDomainEvent(&PicklistSealedEvent{
		RunID:          r.RunID,
		Zone:           p.Zone,
		Type:           string(p.Type),
		SequenceNumber: p.SequenceNumber,
		TotalUnits:     p.TotalUnits,
		TotalWeight:    p.TotalWeight,
		DistinctOrders: p.DistinctOrders(),
		SealedAt:       sealedAt,
	})

	return nil
}

// RecordExclusion records a line excluded from packing
func (r *PicklistRun) RecordExclusion(line ExcludedLine) {
	r.Exclusions = append(r.Exclusions, line)
}

// Complete marks the run as completed with its summary and metrics
func (r *PicklistRun) Complete(zones []string, summaries []SummaryRow, metrics RunMetrics) {
	now := time.Now()
	r.Status = RunStatusCompleted
	r.Zones = zones
	r.Summaries = summaries
	r.Metrics = metrics
	r.CompletedAt = &now

	r.AddDomainEvent(&PicklistRunCompletedEvent{
		RunID:           r.RunID,
		TotalPicklists:  metrics.TotalPicklists,
		QualityScore:    metrics.QualityScore,
		MalformedLines:  metrics.MalformedLines,
		UnpackableLines: metrics.UnpackableLines,
		CompletedAt:     now,
	})
}

// Fail marks the run as failed. Used when a packing invariant is breached.
func (r *PicklistRun) Fail(reason string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FailureReason = reason
	r.CompletedAt = &now

	r.AddDomainEvent(&PicklistRunFailedEvent{
		RunID:    r.RunID,
		Reason:   reason,
		FailedAt: now,
	})
}

// ExclusionCount returns how many lines were excluded for the given kind
func (r *PicklistRun) ExclusionCount(kind ExclusionKind) int {
	count := 0
	for _, e := range r.Exclusions {
		if e.Kind == kind {
			count++
		}
	}
	return count
}

// AddDomainEvent adds a domain event
func (r *PicklistRun) AddDomainEvent(event DomainEvent) {
	r.DomainEvents = append(r.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (r *PicklistRun) ClearDomainEvents() {
	r.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (r *PicklistRun) GetDomainEvents() []DomainEvent {
	return r.DomainEvents
}
