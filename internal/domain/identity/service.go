package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medrec/medrec/internal/platform/audit"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/httperr"
)

type Service struct {
	providers Repository
	staff     Repository
	tokens    *auth.TokenService
	recorder  audit.Recorder
}

func NewService(providers, staff Repository, tokens *auth.TokenService, recorder audit.Recorder) *Service {
	return &Service{
		providers: providers,
		staff:     staff,
		tokens:    tokens,
		recorder:  recorder,
	}
}

// LoginProvider authenticates against the provider table.
func (s *Service) LoginProvider(ctx context.Context, email, password, ip, ua string) (string, *Account, error) {
	return s.login(ctx, s.providers, auth.RoleProvider, email, password, ip, ua)
}

// LoginStaff authenticates against the staff table.
func (s *Service) LoginStaff(ctx context.Context, email, password, ip, ua string) (string, *Account, error) {
	return s.login(ctx, s.staff, auth.RoleStaff, email, password, ip, ua)
}

// login checks credentials before account state, so callers cannot probe
// whether an email exists from the inactive message alone. A successful
// login is recorded in the audit trail.
func (s *Service) login(ctx context.Context, repo Repository, userType auth.Role, email, password, ip, ua string) (string, *Account, error) {
	if email == "" || password == "" {
		return "", nil, httperr.NewValidation("Email and password are required")
	}

	a, err := repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return "", nil, httperr.NewAuthentication("Invalid credentials")
	}
	if err != nil {
		return "", nil, fmt.Errorf("lookup account: %w", err)
	}

	if !auth.VerifyPassword(password, a.PasswordHash) {
		return "", nil, httperr.NewAuthentication("Invalid credentials")
	}

	if !a.IsActive {
		return "", nil, httperr.NewAuthorization("Account is inactive")
	}

	token, err := s.tokens.Issue(auth.Identity{
		ID:        a.ID.String(),
		Email:     a.Email,
		RoleLabel: a.Role,
		UserType:  userType,
	})
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:    audit.ActionLogin,
		ActorType: userType,
		ActorID:   a.ID.String(),
		IPAddress: ip,
		UserAgent: ua,
		Details:   map[string]interface{}{"email": a.Email, "role": a.Role},
	})

	return token, a, nil
}
