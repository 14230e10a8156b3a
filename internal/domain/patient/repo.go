package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when no patient matches.
var ErrNotFound = errors.New("patient not found")

// Repository is the persistence contract for patient accounts.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	GetByVerificationToken(ctx context.Context, token string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SetVerified(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateLastAccess(ctx context.Context, id uuid.UUID, at time.Time) error

	// Search matches a case-insensitive substring of email, first name, or
	// last name, or the exact account ID. Results are ordered by last name.
	Search(ctx context.Context, query string, activeOnly bool, limit, offset int) ([]*Patient, int, error)

	// ListInactiveSince returns accounts not accessed since cutoff; accounts
	// that never logged in qualify by creation date. Ordered oldest first.
	ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*Patient, error)
}
