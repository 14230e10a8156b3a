package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated principal embedded in access tokens.
// RoleLabel is the human-facing title ("Doctor", "Billing Specialist");
// UserType drives authorization.
type Identity struct {
	ID        string
	Email     string
	RoleLabel string
	UserType  Role
}

// Claims is the JWT payload for an Identity.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Role     string `json:"role"`
	UserType string `json:"userType"`
}

// TokenService issues and verifies HS256 access tokens. There is no
// revocation list; tokens stay valid until expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService signing with secret. A non-positive
// ttl falls back to 24 hours.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the identity with iat/exp set from the service TTL.
func (s *TokenService) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email:    id.Email,
		Role:     id.RoleLabel,
		UserType: string(id.UserType),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the embedded identity or
// nil on any failure: bad signature, wrong algorithm, malformed payload,
// expiry, or an unknown user type.
func (s *TokenService) Verify(tokenStr string) *Identity {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil
	}

	userType, err := ParseRole(claims.UserType)
	if err != nil {
		return nil
	}

	return &Identity{
		ID:        claims.Subject,
		Email:     claims.Email,
		RoleLabel: claims.Role,
		UserType:  userType,
	}
}
