package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// PicklistSealedEvent is published when a picklist is sealed
type PicklistSealedEvent struct {
	RunID          string    `json:"runId"`
	Zone           string    `json:"zone"`
	Type           string    `json:"picklistType"`
	SequenceNumber int       `json:"sequenceNumber"`
	TotalUnits     int       `json:"totalUnits"`
	TotalWeight    float64   `json:"totalWeight"`
	DistinctOrders int       `json:"distinctOrders"`
	SealedAt       time.Time `json:"sealedAt"`
}

func (e *PicklistSealedEvent) EventType() string     { return "wms.picklist.sealed" }
func (e *PicklistSealedEvent) OccurredAt() time.Time { return e.SealedAt }

// PicklistRunCompletedEvent is published when a generation run completes
type PicklistRunCompletedEvent struct {
	RunID           string    `json:"runId"`
	TotalPicklists  int       `json:"totalPicklists"`
	QualityScore    float64   `json:"qualityScore"`
	MalformedLines  int       `json:"malformedLines"`
	UnpackableLines int       `json:"unpackableLines"`
	CompletedAt     time.Time `json:"completedAt"`
}

func (e *PicklistRunCompletedEvent) EventType() string     { return "wms.picklist-run.completed" }
func (e *PicklistRunCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// PicklistRunFailedEvent is published when a generation run aborts
type PicklistRunFailedEvent struct {
	RunID    string    `json:"runId"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failedAt"`
}

func (e *PicklistRunFailedEvent) EventType() string     { return "wms.picklist-run.failed" }
func (e *PicklistRunFailedEvent) OccurredAt() time.Time { return e.FailedAt }
