package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/audit"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/httperr"
	"github.com/medrec/medrec/internal/platform/payments"
)

type Service struct {
	repo     Repository
	gateway  payments.Gateway
	recorder audit.Recorder
	logger   zerolog.Logger
}

func NewService(repo Repository, gateway payments.Gateway, recorder audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		gateway:  gateway,
		recorder: recorder,
		logger:   logger.With().Str("component", "billing").Logger(),
	}
}

// BillsForPatient lists the patient's bills, optionally filtered by status.
func (s *Service) BillsForPatient(ctx context.Context, patientID uuid.UUID, status string) ([]*Bill, error) {
	switch status {
	case "", StatusPending, StatusPaid, StatusOverdue, StatusFailed:
	default:
		return nil, httperr.NewValidation("Invalid status filter")
	}

	bills, err := s.repo.ListByPatient(ctx, patientID, status)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	if bills == nil {
		bills = []*Bill{}
	}
	return bills, nil
}

// OutstandingBalance sums the patient's pending and overdue bill amounts.
func (s *Service) OutstandingBalance(ctx context.Context, patientID uuid.UUID) (float64, error) {
	total, err := s.repo.OutstandingBalance(ctx, patientID)
	if err != nil {
		return 0, fmt.Errorf("outstanding balance: %w", err)
	}
	return total, nil
}

// Pay charges the bill through the payment gateway on behalf of the patient.
// The bill must belong to the caller and must not already be paid. Every
// charge attempt leaves a payment audit entry, successful or not.
func (s *Service) Pay(ctx context.Context, patientID, billID uuid.UUID, paymentMethodID, ip, ua string) (*Bill, error) {
	if paymentMethodID == "" {
		return nil, httperr.NewValidation("Payment method is required")
	}

	bill, err := s.repo.GetByID(ctx, billID)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NewValidation("Bill not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup bill: %w", err)
	}
	// Do not disclose other patients' bill IDs.
	if bill.PatientID != patientID {
		return nil, httperr.NewValidation("Bill not found")
	}
	if !bill.Payable() {
		return nil, httperr.NewValidation("Bill already paid")
	}

	result, err := s.gateway.Charge(ctx, payments.ChargeRequest{
		AmountCents:     int64(math.Round(bill.Amount * 100)),
		Currency:        "usd",
		PaymentMethodID: paymentMethodID,
		Metadata: map[string]string{
			"billId":    bill.ID.String(),
			"patientId": patientID.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("charge bill: %w", err)
	}

	if !result.Success {
		bill.Status = StatusFailed
		if upErr := s.repo.Update(ctx, bill); upErr != nil {
			s.logger.Error().Err(upErr).Str("billId", bill.ID.String()).Msg("mark bill failed")
		}
		s.recordPayment(ctx, patientID, bill, ip, ua, false, result.Error)
		return nil, httperr.NewValidation(result.Error)
	}

	now := time.Now()
	method := "credit_card"
	bill.Status = StatusPaid
	bill.PaymentMethod = &method
	bill.PaidAt = &now
	if err := s.repo.Update(ctx, bill); err != nil {
		return nil, fmt.Errorf("mark bill paid: %w", err)
	}

	s.recordPayment(ctx, patientID, bill, ip, ua, true, "")
	return bill, nil
}

// CreateBill records a new pending bill for the patient.
func (s *Service) CreateBill(ctx context.Context, patientID uuid.UUID, amount float64, description string, dueDate *time.Time) (*Bill, error) {
	if amount <= 0 {
		return nil, httperr.NewValidation("Amount must be greater than zero")
	}

	bill := &Bill{
		PatientID: patientID,
		Amount:    amount,
		Status:    StatusPending,
		DueDate:   dueDate,
	}
	if description != "" {
		bill.Description = &description
	}
	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}
	return bill, nil
}

// SweepOverdue flips pending bills past their due date to overdue and
// returns the number of bills changed.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkOverdue(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("sweep overdue: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("bills marked overdue")
	}
	return n, nil
}

func (s *Service) recordPayment(ctx context.Context, patientID uuid.UUID, bill *Bill, ip, ua string, success bool, failure string) {
	details := map[string]interface{}{
		"billId":  bill.ID.String(),
		"amount":  bill.Amount,
		"success": success,
	}
	if failure != "" {
		details["error"] = failure
	}
	s.recorder.Record(ctx, audit.Entry{
		Action:    audit.ActionPayment,
		ActorType: auth.RolePatient,
		ActorID:   patientID.String(),
		PatientID: patientID.String(),
		IPAddress: ip,
		UserAgent: ua,
		Details:   details,
	})
}
