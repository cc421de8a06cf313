// Package httpapi provides the REST HTTP adapter for the agenda backend.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hylla/agenda/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Route resource names.
const (
	agendaResource   = "workshop-agenda"
	workshopResource = "workshops"
)

// Handler serves the agenda API subrouter mounted under the API endpoint.
type Handler struct {
	agenda common.AgendaService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the agenda service.
func NewHandler(agenda common.AgendaService) *Handler {
	return &Handler{agenda: agenda}
}

// RouteLabel returns a low-cardinality route name for metrics.
func RouteLabel(path string) string {
	segments := splitPath(path)
	switch {
	case len(segments) == 1 && segments[0] == agendaResource:
		return "/workshop-agenda"
	case len(segments) == 3 && segments[0] == agendaResource && segments[1] == "workshop":
		return "/workshop-agenda/workshop/{id}"
	case len(segments) == 4 && segments[0] == agendaResource && segments[1] == "workshop" && segments[3] == "reorder":
		return "/workshop-agenda/workshop/{id}/reorder"
	case len(segments) == 2 && segments[0] == agendaResource:
		return "/workshop-agenda/{id}"
	case len(segments) == 3 && segments[0] == agendaResource && segments[2] == "order":
		return "/workshop-agenda/{id}/order"
	case len(segments) == 1 && segments[0] == workshopResource:
		return "/workshops"
	case len(segments) == 2 && segments[0] == workshopResource:
		return "/workshops/{id}"
	default:
		return "other"
	}
}

// ServeHTTP routes one API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.agenda == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "agenda service is not configured",
		})
		return
	}

	segments := splitPath(r.URL.Path)
	switch RouteLabel(r.URL.Path) {
	case "/workshop-agenda":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleCreateItem(w, r)
	case "/workshop-agenda/workshop/{id}":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListItems(w, r, segments[2])
	case "/workshop-agenda/workshop/{id}/reorder":
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w, http.MethodPut)
			return
		}
		h.handleReorder(w, r, segments[2])
	case "/workshop-agenda/{id}":
		switch r.Method {
		case http.MethodPut:
			h.handleUpdateItem(w, r, segments[1])
		case http.MethodDelete:
			h.handleDeleteItem(w, r, segments[1])
		default:
			writeMethodNotAllowed(w, http.MethodPut, http.MethodDelete)
		}
	case "/workshop-agenda/{id}/order":
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w, http.MethodPut)
			return
		}
		h.handleSetOrder(w, r, segments[1])
	case "/workshops":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListWorkshops(w, r)
	case "/workshops/{id}":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleGetWorkshop(w, r, segments[1])
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleListItems serves GET `/workshop-agenda/workshop/{id}`.
func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request, workshopID string) {
	items, err := h.agenda.ListAgendaItems(r.Context(), workshopID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.AgendaListResponse{AgendaItems: items})
}

// handleCreateItem serves POST `/workshop-agenda`.
func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req common.CreateAgendaItemRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	item, err := h.agenda.CreateAgendaItem(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleUpdateItem serves PUT `/workshop-agenda/{id}`.
func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request, id string) {
	var req common.UpdateAgendaItemRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	item, err := h.agenda.UpdateAgendaItem(r.Context(), id, req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleDeleteItem serves DELETE `/workshop-agenda/{id}`.
func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.agenda.DeleteAgendaItem(r.Context(), id); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReorder serves PUT `/workshop-agenda/workshop/{id}/reorder`.
func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request, workshopID string) {
	var req common.ReorderRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if err := h.agenda.ReorderAgendaItems(r.Context(), workshopID, req.AgendaItems); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetOrder serves PUT `/workshop-agenda/{id}/order`.
func (h *Handler) handleSetOrder(w http.ResponseWriter, r *http.Request, id string) {
	var req common.SetOrderRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if err := h.agenda.SetAgendaItemOrder(r.Context(), id, req.OrderIndex); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListWorkshops serves GET `/workshops`.
func (h *Handler) handleListWorkshops(w http.ResponseWriter, r *http.Request) {
	workshops, err := h.agenda.ListWorkshops(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.WorkshopListResponse{Workshops: workshops})
}

// handleGetWorkshop serves GET `/workshops/{id}`.
func (h *Handler) handleGetWorkshop(w http.ResponseWriter, r *http.Request, id string) {
	workshop, err := h.agenda.GetWorkshop(r.Context(), id)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workshop)
}

// splitPath canonicalizes one request path into non-empty segments.
func splitPath(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil
		}
	}
	return parts
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidReorder):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_reorder",
			Message: err.Error(),
			Hint:    "Reload the agenda and send every item once with order_index 1..n.",
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
			Context: common.FieldContext(err),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
