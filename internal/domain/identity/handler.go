package identity

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/audit"
	"github.com/medrec/medrec/internal/platform/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterAuthRoutes mounts the clinic-side login endpoints.
func (h *Handler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/provider/login", h.LoginProvider)
	g.POST("/staff/login", h.LoginStaff)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginFunc func(ctx context.Context, email, password, ip, ua string) (string, *Account, error)

func (h *Handler) LoginProvider(c echo.Context) error {
	return h.handleLogin(c, "provider", h.svc.LoginProvider)
}

func (h *Handler) LoginStaff(c echo.Context) error {
	return h.handleLogin(c, "staff", h.svc.LoginStaff)
}

func (h *Handler) handleLogin(c echo.Context, key string, login loginFunc) error {
	var in loginRequest
	if err := c.Bind(&in); err != nil {
		return httperr.NewValidation("Invalid request body")
	}

	req := c.Request()
	token, account, err := login(req.Context(), in.Email, in.Password, audit.ClientIP(req), audit.UserAgent(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		key:     account,
	})
}
