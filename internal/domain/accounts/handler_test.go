package accounts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/httperr"
)

func newTestHandler(t *testing.T) (*Handler, *mockPatientRepo, *memRecorder) {
	t.Helper()
	repo := newMockPatientRepo()
	recorder := &memRecorder{}
	svc := NewService(repo, recorder, zerolog.Nop())
	return NewHandler(svc), repo, recorder
}

func staffContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, staffID uuid.UUID) echo.Context {
	ctx := auth.WithIdentity(req.Context(), &auth.Identity{
		ID:        staffID.String(),
		Email:     "records@clinic.test",
		RoleLabel: "Records Administrator",
		UserType:  auth.RoleStaff,
	})
	return e.NewContext(req.WithContext(ctx), rec)
}

func TestSearchPatientsHandler(t *testing.T) {
	h, repo, _ := newTestHandler(t)
	seedPatient(t, repo, "jane.doe@example.test", "Jane", "Doe", true, nil)
	seedPatient(t, repo, "john.doe@example.test", "John", "Doe", false, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/patients/search?q=doe", nil)
	rec := httptest.NewRecorder()
	c := staffContext(e, req, rec, uuid.New())

	if err := h.SearchPatients(c); err != nil {
		t.Fatalf("handler: %v", err)
	}

	var body struct {
		Patients []json.RawMessage `json:"patients"`
		Total    int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Total != 2 || len(body.Patients) != 2 {
		t.Fatalf("expected 2 patients, got total=%d len=%d", body.Total, len(body.Patients))
	}
}

func TestInactivatePatientHandler(t *testing.T) {
	h, repo, recorder := newTestHandler(t)
	p := seedPatient(t, repo, "jane.doe@example.test", "Jane", "Doe", true, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staff/patients/"+p.ID.String()+"/inactivate",
		strings.NewReader(`{"reason":"fraud"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := staffContext(e, req, rec, uuid.New())
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.InactivatePatient(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	stored, _ := repo.GetByID(req.Context(), p.ID)
	if stored.IsActive {
		t.Fatal("patient still active")
	}
	if got := len(recorder.Entries()); got != 1 {
		t.Fatalf("expected 1 audit entry, got %d", got)
	}
}

func TestInactivatePatientHandlerBadID(t *testing.T) {
	h, _, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staff/patients/nope/inactivate", nil)
	rec := httptest.NewRecorder()
	c := staffContext(e, req, rec, uuid.New())
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := h.InactivatePatient(c)
	if !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInactiveAccountsReportHandler(t *testing.T) {
	h, repo, _ := newTestHandler(t)
	tenYears := time.Now().AddDate(-10, 0, 0)
	seedPatient(t, repo, "dormant@example.test", "Dora", "Dormant", true, &tenYears)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/inactive-accounts?years=7", nil)
	rec := httptest.NewRecorder()
	c := staffContext(e, req, rec, uuid.New())

	if err := h.InactiveAccountsReport(c); err != nil {
		t.Fatalf("handler: %v", err)
	}

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.Statistics.TotalInactive != 1 {
		t.Fatalf("total inactive = %d, want 1", report.Statistics.TotalInactive)
	}
	if report.Criteria.MinimumYears != 7 {
		t.Fatalf("criteria years = %d, want 7", report.Criteria.MinimumYears)
	}
}
