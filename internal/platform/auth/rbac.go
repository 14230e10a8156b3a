package auth

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/httperr"
)

// RequireRole returns middleware that allows only identities whose user type
// is one of the given roles. A request with no identity is unauthenticated
// (401); an authenticated identity with the wrong role is forbidden (403).
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFromContext(c.Request().Context())
			if id == nil {
				return httperr.NewAuthentication("Authentication required")
			}

			for _, required := range roles {
				if id.UserType == required {
					return next(c)
				}
			}

			names := make([]string, len(roles))
			for i, r := range roles {
				names[i] = string(r)
			}
			return httperr.NewAuthorization(
				fmt.Sprintf("required role: %s", strings.Join(names, " or ")))
		}
	}
}
