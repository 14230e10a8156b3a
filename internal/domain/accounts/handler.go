package accounts

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/audit"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the staff-only lifecycle endpoints.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleStaff))
	g.GET("/staff/patients/search", h.SearchPatients)
	g.POST("/staff/patients/:id/inactivate", h.InactivatePatient)
	g.GET("/reports/inactive-accounts", h.InactiveAccountsReport)
}

func (h *Handler) SearchPatients(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	items, total, err := h.svc.SearchPatients(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"patients": items,
		"total":    total,
	})
}

type inactivateRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) InactivatePatient(c echo.Context) error {
	staffID, err := staffID(c)
	if err != nil {
		return err
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.NewValidation("Invalid patient id")
	}

	var in inactivateRequest
	// Body is optional; a bind failure on an empty body is not an error.
	_ = c.Bind(&in)

	req := c.Request()
	p, err := h.svc.Inactivate(req.Context(), staffID, patientID, in.Reason,
		audit.ClientIP(req), audit.UserAgent(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Patient account inactivated",
		"patient": p.Summary(),
	})
}

func (h *Handler) InactiveAccountsReport(c echo.Context) error {
	years, _ := strconv.Atoi(c.QueryParam("years"))

	report, err := h.svc.InactiveAccounts(c.Request().Context(), years)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func staffID(c echo.Context) (uuid.UUID, error) {
	id := auth.IdentityFromContext(c.Request().Context())
	if id == nil {
		return uuid.Nil, httperr.NewAuthentication("Authentication required")
	}
	sid, err := uuid.Parse(id.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse caller id: %w", err)
	}
	return sid, nil
}
