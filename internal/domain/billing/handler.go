package billing

import (
	"fmt"
	"net/http"

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

// RegisterRoutes mounts the patient-facing billing endpoints.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RolePatient))
	g.GET("/bills", h.ListBills)
	g.POST("/payments", h.PayBill)
}

// ListBills returns the caller's bills plus their outstanding balance.
func (h *Handler) ListBills(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	bills, err := h.svc.BillsForPatient(ctx, patientID, c.QueryParam("status"))
	if err != nil {
		return err
	}
	balance, err := h.svc.OutstandingBalance(ctx, patientID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"bills":              bills,
		"outstandingBalance": balance,
		"count":              len(bills),
	})
}

type paymentRequest struct {
	BillID          string `json:"billId"`
	PaymentMethodID string `json:"paymentMethodId"`
}

func (h *Handler) PayBill(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}

	var in paymentRequest
	if err := c.Bind(&in); err != nil {
		return httperr.NewValidation("Invalid request body")
	}
	if in.BillID == "" || in.PaymentMethodID == "" {
		return httperr.NewValidation("billId and paymentMethodId are required")
	}
	billID, err := uuid.Parse(in.BillID)
	if err != nil {
		return httperr.NewValidation("Bill not found")
	}

	req := c.Request()
	bill, err := h.svc.Pay(req.Context(), patientID, billID, in.PaymentMethodID,
		audit.ClientIP(req), audit.UserAgent(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Payment successful",
		"bill":    bill,
	})
}

func callerID(c echo.Context) (uuid.UUID, error) {
	id := auth.IdentityFromContext(c.Request().Context())
	if id == nil {
		return uuid.Nil, httperr.NewAuthentication("Authentication required")
	}
	patientID, err := uuid.Parse(id.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse caller id: %w", err)
	}
	return patientID, nil
}
