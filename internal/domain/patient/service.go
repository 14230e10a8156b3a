package patient

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/audit"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/httperr"
	"github.com/medrec/medrec/internal/platform/notification"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
)

type Service struct {
	repo     Repository
	tokens   *auth.TokenService
	recorder audit.Recorder
	mailer   *notification.Mailer
	baseURL  string
	logger   zerolog.Logger
}

func NewService(repo Repository, tokens *auth.TokenService, recorder audit.Recorder, mailer *notification.Mailer, baseURL string, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		recorder: recorder,
		mailer:   mailer,
		baseURL:  baseURL,
		logger:   logger.With().Str("component", "patient").Logger(),
	}
}

// RegisterInput carries the self-registration form.
type RegisterInput struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Address     *string    `json:"address,omitempty"`
}

// Register creates an unverified patient account and sends the verification
// email best-effort: a delivery failure is logged but registration succeeds.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return nil, httperr.NewValidation("Email, password, first name, and last name are required")
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, httperr.NewValidation("Invalid email format")
	}
	if len(in.Password) < 8 {
		return nil, httperr.NewValidation("Password must be at least 8 characters long")
	}
	if err := validateName(in.FirstName, "First name"); err != nil {
		return nil, err
	}
	if err := validateName(in.LastName, "Last name"); err != nil {
		return nil, err
	}
	if in.Phone != nil && *in.Phone != "" && !phonePattern.MatchString(*in.Phone) {
		return nil, httperr.NewValidation("Invalid phone number format")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, httperr.NewConflict("An account with this email already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing account: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := newVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	p := &Patient{
		Email:             email,
		PasswordHash:      hash,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		DateOfBirth:       in.DateOfBirth,
		Phone:             in.Phone,
		Address:           in.Address,
		IsActive:          true,
		IsVerified:        false,
		VerificationToken: &token,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	if s.mailer != nil {
		data := map[string]string{
			"first_name":  p.FirstName,
			"verify_link": s.baseURL + "/auth/verify/" + token,
		}
		if err := s.mailer.SendTemplate(ctx, "account-verification", data, p.Email); err != nil {
			s.logger.Warn().Err(err).Str("patient_id", p.ID.String()).Msg("verification email failed")
		}
	}

	return p, nil
}

// Verify consumes a verification token. Tokens are single-use: a verified
// account's token is cleared, so replaying one reports not found.
func (s *Service) Verify(ctx context.Context, token string) (*Patient, error) {
	if token == "" {
		return nil, httperr.NewValidation("Verification token is required")
	}

	p, err := s.repo.GetByVerificationToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NewNotFound("Invalid or expired verification token")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup verification token: %w", err)
	}

	if err := s.repo.SetVerified(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	p.IsVerified = true
	p.VerificationToken = nil

	return p, nil
}

// Login authenticates a patient. The inactive check runs before the password
// check so a deactivated account always reports deactivation, and
// unverified accounts are rejected after the password verifies.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Patient, error) {
	if email == "" || password == "" {
		return "", nil, httperr.NewValidation("Email and password are required")
	}

	p, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return "", nil, httperr.NewAuthentication("Invalid email or password")
	}
	if err != nil {
		return "", nil, fmt.Errorf("lookup account: %w", err)
	}

	if !p.IsActive {
		return "", nil, httperr.NewAuthorization("Your account has been deactivated. Please contact support.")
	}

	if !auth.VerifyPassword(password, p.PasswordHash) {
		return "", nil, httperr.NewAuthentication("Invalid email or password")
	}

	if !p.IsVerified {
		return "", nil, httperr.NewAuthorization("Please verify your email address before logging in")
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastAccess(ctx, p.ID, now); err != nil {
		return "", nil, fmt.Errorf("update last access: %w", err)
	}
	p.LastAccessDate = &now

	token, err := s.tokens.Issue(auth.Identity{
		ID:        p.ID.String(),
		Email:     p.Email,
		RoleLabel: "Patient",
		UserType:  auth.RolePatient,
	})
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, p, nil
}

// Get fetches a patient record for a provider and records the chart access.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor *auth.Identity, ip, ua string) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NewNotFound("Patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:    audit.ActionAccess,
		ActorType: actor.UserType,
		ActorID:   actor.ID,
		PatientID: p.ID.String(),
		IPAddress: ip,
		UserAgent: ua,
		Details:   map[string]interface{}{"patientEmail": p.Email},
	})

	return p, nil
}

// UpdateInput is the set of fields a provider may change on a record. Nil
// means leave unchanged.
type UpdateInput struct {
	FirstName    *string      `json:"firstName,omitempty"`
	LastName     *string      `json:"lastName,omitempty"`
	DateOfBirth  *time.Time   `json:"dateOfBirth,omitempty"`
	Phone        *string      `json:"phone,omitempty"`
	Address      *string      `json:"address,omitempty"`
	Vitals       *Vitals      `json:"vitals,omitempty"`
	VisitSummary *string      `json:"visitSummary,omitempty"`
	Diagnosis    *string      `json:"diagnosis,omitempty"`
	Treatment    *string      `json:"treatment,omitempty"`
	LabResults   []LabResult  `json:"labResults,omitempty"`
	Medications  []Medication `json:"medications,omitempty"`
}

// Update applies a provider's changes to the record and records the update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput, actor *auth.Identity, ip, ua string) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NewNotFound("Patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}

	var changed []string
	if in.FirstName != nil {
		if err := validateName(*in.FirstName, "First name"); err != nil {
			return nil, err
		}
		p.FirstName = strings.TrimSpace(*in.FirstName)
		changed = append(changed, "firstName")
	}
	if in.LastName != nil {
		if err := validateName(*in.LastName, "Last name"); err != nil {
			return nil, err
		}
		p.LastName = strings.TrimSpace(*in.LastName)
		changed = append(changed, "lastName")
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth = in.DateOfBirth
		changed = append(changed, "dateOfBirth")
	}
	if in.Phone != nil {
		if *in.Phone != "" && !phonePattern.MatchString(*in.Phone) {
			return nil, httperr.NewValidation("Invalid phone number format")
		}
		p.Phone = in.Phone
		changed = append(changed, "phone")
	}
	if in.Address != nil {
		p.Address = in.Address
		changed = append(changed, "address")
	}
	if in.Vitals != nil {
		p.Vitals = in.Vitals
		changed = append(changed, "vitals")
	}
	if in.VisitSummary != nil {
		p.VisitSummary = in.VisitSummary
		changed = append(changed, "visitSummary")
	}
	if in.Diagnosis != nil {
		p.Diagnosis = in.Diagnosis
		changed = append(changed, "diagnosis")
	}
	if in.Treatment != nil {
		p.Treatment = in.Treatment
		changed = append(changed, "treatment")
	}
	if in.LabResults != nil {
		p.LabResults = in.LabResults
		changed = append(changed, "labResults")
	}
	if in.Medications != nil {
		p.Medications = in.Medications
		changed = append(changed, "medications")
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:    audit.ActionUpdate,
		ActorType: actor.UserType,
		ActorID:   actor.ID,
		PatientID: p.ID.String(),
		IPAddress: ip,
		UserAgent: ua,
		Details:   map[string]interface{}{"updatedFields": changed},
	})

	return p, nil
}

// Search finds active patients by name, email, or exact ID. A blank query
// returns nothing rather than listing every record.
func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []*Patient{}, 0, nil
	}
	return s.repo.Search(ctx, q, true, limit, offset)
}

func validateName(name, field string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return httperr.NewValidation(field + " cannot be empty")
	}
	if len(trimmed) > 100 {
		return httperr.NewValidation(field + " must be 100 characters or fewer")
	}
	return nil
}

func newVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
