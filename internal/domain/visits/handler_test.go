package visits

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler(planStatus string) (*Handler, *Service, *mockRepo, uuid.UUID) {
	svc, repo, p := newTestService(planStatus)
	return NewHandler(svc), svc, repo, p.ID
}

func TestHandlerCreate(t *testing.T) {
	h, _, repo, planID := newTestHandler("active")
	e := echo.New()

	body := `{"preferred_date":"2026-09-14T09:00:00Z","note":"mornings only"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(planID.String())

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var got VisitRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != "requested" {
		t.Errorf("expected status requested, got %s", got.Status)
	}
	if len(repo.store) != 1 {
		t.Errorf("expected 1 stored request, got %d", len(repo.store))
	}
}

func TestHandlerCreate_InactivePlan(t *testing.T) {
	h, _, _, planID := newTestHandler("completed")
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"preferred_date":"2026-09-14T09:00:00Z"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(planID.String())

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandlerUpdateStatus(t *testing.T) {
	h, svc, _, planID := newTestHandler("active")
	e := echo.New()

	seeded := &VisitRequest{PreferredDate: pref()}
	if err := svc.Create(context.Background(), planID, seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"confirmed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(seeded.ID.String())

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	var got VisitRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != "confirmed" {
		t.Errorf("expected confirmed, got %s", got.Status)
	}
}

func TestHandlerListByIncident(t *testing.T) {
	h, svc, _, planID := newTestHandler("active")
	e := echo.New()

	seeded := &VisitRequest{PreferredDate: pref()}
	if err := svc.Create(context.Background(), planID, seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(seeded.IncidentID.String())

	if err := h.ListByIncident(c); err != nil {
		t.Fatalf("ListByIncident: %v", err)
	}
	var got struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Total != 1 {
		t.Errorf("expected total 1, got %d", got.Total)
	}
}
