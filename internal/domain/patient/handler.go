package patient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/audit"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/httperr"
	"github.com/medrec/medrec/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterAuthRoutes mounts the unauthenticated account endpoints.
func (h *Handler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/patient/register", h.Register)
	g.POST("/patient/login", h.Login)
	g.GET("/verify/:token", h.Verify)
}

// RegisterAPIRoutes mounts the provider-facing record endpoints.
func (h *Handler) RegisterAPIRoutes(api *echo.Group) {
	providers := api.Group("", auth.RequireRole(auth.RoleProvider))
	providers.GET("/patients/search", h.Search)
	providers.GET("/patients/:id", h.Get)
	providers.PUT("/patients/:id", h.Update)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return httperr.NewValidation("Invalid request body")
	}

	p, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Registration successful. Please check your email to verify your account.",
		"patient": p.Summary(),
	})
}

func (h *Handler) Verify(c echo.Context) error {
	_, err := h.svc.Verify(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Email verified successfully. You can now log in.",
		"verified": true,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var in loginRequest
	if err := c.Bind(&in); err != nil {
		return httperr.NewValidation("Invalid request body")
	}

	token, p, err := h.svc.Login(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":   token,
		"patient": p,
	})
}

func (h *Handler) Search(c echo.Context) error {
	params := pagination.FromContext(c)

	patients, total, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"), params.Limit, params.Offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"patients": patients,
		"total":    total,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.NewValidation("Invalid patient id")
	}

	req := c.Request()
	actor := auth.IdentityFromContext(req.Context())
	p, err := h.svc.Get(req.Context(), id, actor, audit.ClientIP(req), audit.UserAgent(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.NewValidation("Invalid patient id")
	}

	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return httperr.NewValidation("Invalid request body")
	}

	req := c.Request()
	actor := auth.IdentityFromContext(req.Context())
	p, err := h.svc.Update(req.Context(), id, in, actor, audit.ClientIP(req), audit.UserAgent(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, p)
}
