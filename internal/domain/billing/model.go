package billing

import (
	"time"

	"github.com/google/uuid"
)

// Bill statuses. A bill starts pending, moves to paid on a successful charge,
// to failed on a declined one, and to overdue when the sweep finds it unpaid
// past its due date. Overdue bills can still be paid.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
	StatusFailed  = "failed"
)

type Bill struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patientId"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	Description   *string    `json:"description,omitempty"`
	PaymentMethod *string    `json:"paymentMethod,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Payable reports whether a charge attempt against the bill is allowed.
func (b *Bill) Payable() bool {
	return b.Status == StatusPending || b.Status == StatusOverdue || b.Status == StatusFailed
}
