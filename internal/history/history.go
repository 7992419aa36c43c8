package history

import (
	"context"
	"time"
)

// Outcome values recorded for a run.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Record is one provisioning or administration action taken on this host.
type Record struct {
	ID        int64
	Tool      string
	Action    string
	Detail    string
	Outcome   string
	CreatedAt time.Time
}

// Repository describes the persistence contract for the run history.
type Repository interface {
	// Bootstrap prepares the backing store.
	Bootstrap(ctx context.Context) error

	// Append stores a record and returns its identifier.
	Append(ctx context.Context, rec Record) (int64, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Prune removes everything but the newest keep records.
	Prune(ctx context.Context, keep int) error

	Close() error
}
