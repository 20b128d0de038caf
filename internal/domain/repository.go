package domain

import "context"

// PicklistRunRepository defines the interface for run persistence
type PicklistRunRepository interface {
	// Save persists a run (create or update)
	Save(ctx context.Context, run *PicklistRun) error

	// FindByID retrieves a run by its run ID
	FindByID(ctx context.Context, runID string) (*PicklistRun, error)

	// ListRecent retrieves the most recent runs, newest first
	ListRecent(ctx context.Context, limit int) ([]*PicklistRun, error)

	// Delete removes a run
	Delete(ctx context.Context, runID string) error

	// Count returns the number of runs matching a status
	Count(ctx context.Context, status RunStatus) (int64, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish publishes a domain event
	Publish(ctx context.Context, event DomainEvent) error

	// PublishAll publishes multiple domain events
	PublishAll(ctx context.Context, events []DomainEvent) error
}

// OrderLineSource is the Row Normalizer collaborator: it hands the pipeline
// a sequence of typed order-line records with column ambiguity already
// resolved. Cutoffs are not yet derived.
type OrderLineSource interface {
	// FetchOrderLines returns order lines, up to limit when limit > 0
	FetchOrderLines(ctx context.Context, limit int) ([]OrderLine, error)
}

// RunExporter is the Persistence Layer collaborator consuming a completed
// run: one file per picklist plus a summary table.
type RunExporter interface {
	ExportRun(ctx context.Context, run *PicklistRun) error
}
