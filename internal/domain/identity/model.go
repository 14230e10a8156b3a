package identity

import (
	"time"

	"github.com/google/uuid"
)

// Account is a clinic-side login: a provider or a staff member. Role is the
// human-facing title ("Doctor", "Records Administrator"); Permissions is a
// free-form capability list carried on the profile.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	Permissions  []string  `json:"permissions"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FullName returns "First Last".
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}
