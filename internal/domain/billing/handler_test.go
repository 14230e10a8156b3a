package billing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/payments"
)

func newTestHandler(t *testing.T) (*Handler, *mockRepo, *memRecorder) {
	t.Helper()
	repo := newMockRepo()
	recorder := &memRecorder{}
	svc := NewService(repo, payments.NewMockGateway(), recorder, zerolog.Nop())
	return NewHandler(svc), repo, recorder
}

func patientContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, patientID uuid.UUID) echo.Context {
	ctx := auth.WithIdentity(req.Context(), &auth.Identity{
		ID:       patientID.String(),
		Email:    "patient@example.test",
		UserType: auth.RolePatient,
	})
	return e.NewContext(req.WithContext(ctx), rec)
}

func TestListBillsScopedToCaller(t *testing.T) {
	h, repo, _ := newTestHandler(t)
	patientID := uuid.New()

	seedBill(t, repo, patientID, 100, StatusPending, nil)
	seedBill(t, repo, patientID, 40, StatusOverdue, nil)
	seedBill(t, repo, uuid.New(), 999, StatusPending, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bills", nil)
	rec := httptest.NewRecorder()
	c := patientContext(e, req, rec, patientID)

	if err := h.ListBills(c); err != nil {
		t.Fatalf("handler: %v", err)
	}

	var body struct {
		Bills              []*Bill `json:"bills"`
		OutstandingBalance float64 `json:"outstandingBalance"`
		Count              int     `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Count != 2 || len(body.Bills) != 2 {
		t.Fatalf("expected 2 bills, got count=%d len=%d", body.Count, len(body.Bills))
	}
	if body.OutstandingBalance != 140 {
		t.Fatalf("outstanding balance = %v, want 140", body.OutstandingBalance)
	}
	for _, b := range body.Bills {
		if b.PatientID != patientID {
			t.Fatalf("bill %s belongs to another patient", b.ID)
		}
	}
}

func TestListBillsUnauthenticated(t *testing.T) {
	h, _, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bills", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListBills(c); err == nil {
		t.Fatal("expected error without identity")
	}
}

func TestPayBillHandler(t *testing.T) {
	h, repo, _ := newTestHandler(t)
	patientID := uuid.New()
	bill := seedBill(t, repo, patientID, 75, StatusPending, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments",
		strings.NewReader(`{"billId":"`+bill.ID.String()+`","paymentMethodId":"pm_card_visa"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := patientContext(e, req, rec, patientID)

	if err := h.PayBill(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Message string `json:"message"`
		Bill    *Bill  `json:"bill"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Bill == nil || body.Bill.Status != StatusPaid {
		t.Fatalf("unexpected bill payload: %+v", body.Bill)
	}
}

func TestPayBillMissingFields(t *testing.T) {
	h, _, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments",
		strings.NewReader(`{"billId":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := patientContext(e, req, rec, uuid.New())

	if err := h.PayBill(c); err == nil {
		t.Fatal("expected validation error for missing fields")
	}
}
