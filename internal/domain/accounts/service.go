// Package accounts implements the staff-side patient lifecycle: searching
// across all accounts, one-way inactivation, and the inactive-accounts
// report. It reuses the patient repository rather than owning tables.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/domain/patient"
	"github.com/medrec/medrec/internal/platform/audit"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/httperr"
)

const (
	defaultSearchLimit = 50
	defaultMinYears    = 7
	defaultReason      = "No reason provided"
)

type Service struct {
	patients patient.Repository
	recorder audit.Recorder
	logger   zerolog.Logger
}

func NewService(patients patient.Repository, recorder audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		patients: patients,
		recorder: recorder,
		logger:   logger.With().Str("component", "accounts").Logger(),
	}
}

// SearchPatients matches across all accounts, inactive ones included. An
// empty query returns nothing rather than every account on record.
func (s *Service) SearchPatients(ctx context.Context, query string, limit int) ([]*patient.Patient, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*patient.Patient{}, 0, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	items, total, err := s.patients.Search(ctx, query, false, limit, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("search patients: %w", err)
	}
	return items, total, nil
}

// Inactivate deactivates a patient account. There is no reactivation path;
// a second call fails with a conflict instead of succeeding silently, and
// exactly one inactivate audit entry is written per successful call.
func (s *Service) Inactivate(ctx context.Context, staffID uuid.UUID, patientID uuid.UUID, reason, ip, ua string) (*patient.Patient, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if errors.Is(err, patient.ErrNotFound) {
		return nil, httperr.NewNotFound("Patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup patient: %w", err)
	}
	if !p.IsActive {
		return nil, httperr.NewConflict("Patient account is already inactive")
	}

	if err := s.patients.SetActive(ctx, patientID, false); err != nil {
		return nil, fmt.Errorf("inactivate patient: %w", err)
	}
	p.IsActive = false

	if reason == "" {
		reason = defaultReason
	}
	s.recorder.Record(ctx, audit.Entry{
		Action:    audit.ActionInactivate,
		ActorType: auth.RoleStaff,
		ActorID:   staffID.String(),
		PatientID: patientID.String(),
		IPAddress: ip,
		UserAgent: ua,
		Details: map[string]interface{}{
			"reason":       reason,
			"patientEmail": p.Email,
			"patientName":  p.FullName(),
		},
	})

	return p, nil
}

// InactiveAccount is one row of the inactive-accounts report.
type InactiveAccount struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	LastAccessDate *time.Time `json:"lastAccessDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	IsActive       bool       `json:"isActive"`
}

// ReportStatistics summarizes the report.
type ReportStatistics struct {
	TotalInactive int              `json:"totalInactive"`
	NeverAccessed int              `json:"neverAccessed"`
	OldestAccount *InactiveAccount `json:"oldestAccount"`
}

// ReportCriteria echoes back the parameters the report was built with.
type ReportCriteria struct {
	MinimumYears int       `json:"minimumYears"`
	CutoffDate   time.Time `json:"cutoffDate"`
}

// Report is the inactive-accounts report.
type Report struct {
	Accounts   []InactiveAccount `json:"accounts"`
	Statistics ReportStatistics  `json:"statistics"`
	Criteria   ReportCriteria    `json:"criteria"`
}

// InactiveAccounts reports accounts not accessed for at least minYears
// years. Accounts that never logged in qualify by creation date. This is a
// pure read; no audit entry is written.
func (s *Service) InactiveAccounts(ctx context.Context, minYears int) (*Report, error) {
	if minYears <= 0 {
		minYears = defaultMinYears
	}
	cutoff := time.Now().AddDate(-minYears, 0, 0)

	patients, err := s.patients.ListInactiveSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list inactive accounts: %w", err)
	}

	report := &Report{
		Accounts: make([]InactiveAccount, 0, len(patients)),
		Criteria: ReportCriteria{MinimumYears: minYears, CutoffDate: cutoff},
	}
	for _, p := range patients {
		report.Accounts = append(report.Accounts, InactiveAccount{
			ID:             p.ID,
			Email:          p.Email,
			Name:           p.FullName(),
			LastAccessDate: p.LastAccessDate,
			CreatedAt:      p.CreatedAt,
			IsActive:       p.IsActive,
		})
		if p.LastAccessDate == nil {
			report.Statistics.NeverAccessed++
		}
	}
	report.Statistics.TotalInactive = len(report.Accounts)
	if len(report.Accounts) > 0 {
		// ListInactiveSince orders oldest first, never-accessed leading.
		report.Statistics.OldestAccount = &report.Accounts[0]
	}
	return report, nil
}
