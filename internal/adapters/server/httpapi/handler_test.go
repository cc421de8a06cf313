package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hylla/agenda/internal/adapters/server/common"
	"github.com/hylla/agenda/internal/app"
	"github.com/hylla/agenda/internal/domain"
)

// stubAgendaService provides deterministic agenda responses for handler tests.
type stubAgendaService struct {
	items        []common.AgendaItem
	created      common.AgendaItem
	updated      common.AgendaItem
	workshop     common.Workshop
	err          error
	lastWorkshop string
	lastID       string
	lastCreate   common.CreateAgendaItemRequest
	lastUpdate   common.UpdateAgendaItemRequest
	lastReorder  []common.OrderEntry
	lastOrder    int
}

func (s *stubAgendaService) ListAgendaItems(_ context.Context, workshopID string) ([]common.AgendaItem, error) {
	s.lastWorkshop = workshopID
	if s.err != nil {
		return nil, s.err
	}
	return append([]common.AgendaItem(nil), s.items...), nil
}

func (s *stubAgendaService) CreateAgendaItem(_ context.Context, in common.CreateAgendaItemRequest) (common.AgendaItem, error) {
	s.lastCreate = in
	if s.err != nil {
		return common.AgendaItem{}, s.err
	}
	return s.created, nil
}

func (s *stubAgendaService) UpdateAgendaItem(_ context.Context, id string, in common.UpdateAgendaItemRequest) (common.AgendaItem, error) {
	s.lastID = id
	s.lastUpdate = in
	if s.err != nil {
		return common.AgendaItem{}, s.err
	}
	return s.updated, nil
}

func (s *stubAgendaService) DeleteAgendaItem(_ context.Context, id string) error {
	s.lastID = id
	return s.err
}

func (s *stubAgendaService) ReorderAgendaItems(_ context.Context, workshopID string, entries []common.OrderEntry) error {
	s.lastWorkshop = workshopID
	s.lastReorder = entries
	return s.err
}

func (s *stubAgendaService) SetAgendaItemOrder(_ context.Context, id string, orderIndex int) error {
	s.lastID = id
	s.lastOrder = orderIndex
	return s.err
}

func (s *stubAgendaService) GetWorkshop(_ context.Context, id string) (common.Workshop, error) {
	s.lastID = id
	if s.err != nil {
		return common.Workshop{}, s.err
	}
	return s.workshop, nil
}

func (s *stubAgendaService) ListWorkshops(_ context.Context) ([]common.Workshop, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []common.Workshop{s.workshop}, nil
}

func serve(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// TestHandlerListAgendaItems verifies the list envelope and snake_case fields.
func TestHandlerListAgendaItems(t *testing.T) {
	svc := &stubAgendaService{items: []common.AgendaItem{{
		ID:              "a1",
		WorkshopID:      "w1",
		Title:           "Warm-up",
		ActivityType:    "session",
		StartTime:       domain.MustTimeOfDay("09:00"),
		EndTime:         domain.MustTimeOfDay("09:15"),
		OrderIndex:      1,
		MaterialsNeeded: []string{},
	}}}
	rec := serve(NewHandler(svc), http.MethodGet, "/workshop-agenda/workshop/w1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.lastWorkshop != "w1" {
		t.Fatalf("workshop = %q, want w1", svc.lastWorkshop)
	}
	var raw map[string][]map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	item := raw["agendaItems"][0]
	for _, key := range []string{"workshop_id", "activity_type", "start_time", "end_time", "order_index", "materials_needed"} {
		if _, ok := item[key]; !ok {
			t.Fatalf("missing %s in %#v", key, item)
		}
	}
	if item["start_time"] != "09:00" {
		t.Fatalf("start_time = %v, want 09:00", item["start_time"])
	}
}

// TestHandlerMutations verifies routing and payload decoding for write endpoints.
func TestHandlerMutations(t *testing.T) {
	svc := &stubAgendaService{created: common.AgendaItem{ID: "new", OrderIndex: 3}}
	handler := NewHandler(svc)

	rec := serve(handler, http.MethodPost, "/workshop-agenda", `{"workshop_id":"w1","title":"Lunch","activity_type":"break","start_time":"12:00","end_time":"13:00","order_index":3}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastCreate.OrderIndex != 3 || svc.lastCreate.WorkshopID != "w1" {
		t.Fatalf("unexpected create request %#v", svc.lastCreate)
	}

	rec = serve(handler, http.MethodPut, "/workshop-agenda/a1", `{"notes":"bring tea"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	if svc.lastID != "a1" || svc.lastUpdate.Notes == nil || svc.lastUpdate.Title != nil {
		t.Fatalf("unexpected update %q %#v", svc.lastID, svc.lastUpdate)
	}

	rec = serve(handler, http.MethodDelete, "/workshop-agenda/a1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = serve(handler, http.MethodPut, "/workshop-agenda/workshop/w1/reorder", `{"agendaItems":[{"id":"b","order_index":1},{"id":"a","order_index":2}]}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reorder status = %d", rec.Code)
	}
	if svc.lastWorkshop != "w1" || len(svc.lastReorder) != 2 || svc.lastReorder[0].ID != "b" {
		t.Fatalf("unexpected reorder %q %#v", svc.lastWorkshop, svc.lastReorder)
	}

	rec = serve(handler, http.MethodPut, "/workshop-agenda/a1/order", `{"order_index":2}`)
	if rec.Code != http.StatusNoContent || svc.lastOrder != 2 {
		t.Fatalf("set order status = %d order %d", rec.Code, svc.lastOrder)
	}
}

// TestHandlerErrorMapping verifies structured status mapping for service errors.
func TestHandlerErrorMapping(t *testing.T) {
	formErr := &app.FormError{Fields: []app.FieldError{{Field: "title", Message: "is required"}}}
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantAPI  string
	}{
		{name: "not found", err: fmt.Errorf("x: %w", common.ErrNotFound), wantCode: http.StatusNotFound, wantAPI: "not_found"},
		{name: "invalid reorder", err: fmt.Errorf("x: %w", common.ErrInvalidReorder), wantCode: http.StatusBadRequest, wantAPI: "invalid_reorder"},
		{name: "invalid request", err: errors.Join(common.ErrInvalidRequest, formErr), wantCode: http.StatusBadRequest, wantAPI: "invalid_request"},
		{name: "internal", err: errors.New("disk on fire"), wantCode: http.StatusInternalServerError, wantAPI: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(NewHandler(&stubAgendaService{err: tc.err}), http.MethodGet, "/workshop-agenda/workshop/w1", "")
			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			var env ErrorEnvelope
			if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if env.Error.Code != tc.wantAPI {
				t.Fatalf("code = %q, want %q", env.Error.Code, tc.wantAPI)
			}
			if tc.name == "invalid request" && env.Error.Context["title"] != "is required" {
				t.Fatalf("expected field context, got %#v", env.Error.Context)
			}
		})
	}
}

// TestHandlerRejectsBadRequests verifies strict decoding, routing and method checks.
func TestHandlerRejectsBadRequests(t *testing.T) {
	handler := NewHandler(&stubAgendaService{})
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "unknown field", method: http.MethodPut, path: "/workshop-agenda/a1", body: `{"colour":"red"}`, want: http.StatusBadRequest},
		{name: "trailing content", method: http.MethodPut, path: "/workshop-agenda/a1/order", body: `{"order_index":1}{}`, want: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodPost, path: "/workshop-agenda/workshop/w1", want: http.StatusMethodNotAllowed},
		{name: "unknown route", method: http.MethodGet, path: "/nope", want: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(handler, tc.method, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
	rec := serve(handler, http.MethodPost, "/workshop-agenda/workshop/w1", "")
	if rec.Header().Get("Allow") != http.MethodGet {
		t.Fatalf("Allow = %q, want GET", rec.Header().Get("Allow"))
	}
	if rec := serve(NewHandler(nil), http.MethodGet, "/workshops", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil service status = %d", rec.Code)
	}
}

func TestRouteLabel(t *testing.T) {
	cases := map[string]string{
		"/workshop-agenda":                    "/workshop-agenda",
		"/workshop-agenda/workshop/w1":        "/workshop-agenda/workshop/{id}",
		"/workshop-agenda/workshop/w1/reorder": "/workshop-agenda/workshop/{id}/reorder",
		"/workshop-agenda/a1":                 "/workshop-agenda/{id}",
		"/workshop-agenda/a1/order":           "/workshop-agenda/{id}/order",
		"/workshops/w1":                       "/workshops/{id}",
		"/":                                   "other",
	}
	for path, want := range cases {
		if got := RouteLabel(path); got != want {
			t.Fatalf("RouteLabel(%q) = %q, want %q", path, got, want)
		}
	}
}
