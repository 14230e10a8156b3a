package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when no bill matches.
var ErrNotFound = errors.New("bill not found")

type Repository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	// ListByPatient returns the patient's bills, optionally filtered by
	// status. Ordering depends on the filter: pending bills by due date,
	// paid bills by payment date, everything else newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID, status string) ([]*Bill, error)
	Update(ctx context.Context, b *Bill) error
	// OutstandingBalance sums the amounts of the patient's pending and
	// overdue bills.
	OutstandingBalance(ctx context.Context, patientID uuid.UUID) (float64, error)
	// MarkOverdue flips pending bills whose due date has passed to overdue
	// and returns how many rows changed.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}
