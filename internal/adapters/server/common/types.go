// Package common provides transport-agnostic agenda contracts shared by the
// HTTP and MCP adapters and by the REST client.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/hylla/agenda/internal/domain"
)

// ErrInvalidRequest reports malformed or rejected transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrInvalidReorder reports a reorder that does not describe a full 1..n permutation.
var ErrInvalidReorder = errors.New("invalid reorder")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// AgendaItem is the snake_case wire form of one agenda item.
type AgendaItem struct {
	ID              string           `json:"id"`
	WorkshopID      string           `json:"workshop_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ActivityType    string           `json:"activity_type"`
	StartTime       domain.TimeOfDay `json:"start_time"`
	EndTime         domain.TimeOfDay `json:"end_time"`
	FacilitatorID   string           `json:"facilitator_id,omitempty"`
	FacilitatorName string           `json:"facilitator_name,omitempty"`
	OrderIndex      int              `json:"order_index"`
	MaterialsNeeded []string         `json:"materials_needed"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `json:"created_at,omitzero"`
	UpdatedAt       time.Time        `json:"updated_at,omitzero"`
}

// AgendaListResponse is the body of GET /workshop-agenda/workshop/{id}.
type AgendaListResponse struct {
	AgendaItems []AgendaItem `json:"agendaItems"`
}

// CreateAgendaItemRequest is the body of POST /workshop-agenda.
type CreateAgendaItemRequest struct {
	WorkshopID      string   `json:"workshop_id" validate:"notblank"`
	Title           string   `json:"title" validate:"notblank"`
	Description     string   `json:"description,omitempty"`
	ActivityType    string   `json:"activity_type" validate:"notblank,activity_type"`
	StartTime       string   `json:"start_time" validate:"notblank,time_of_day"`
	EndTime         string   `json:"end_time" validate:"notblank,time_of_day"`
	FacilitatorID   string   `json:"facilitator_id,omitempty"`
	FacilitatorName string   `json:"facilitator_name,omitempty"`
	OrderIndex      int      `json:"order_index,omitempty" validate:"gte=0"`
	MaterialsNeeded []string `json:"materials_needed,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// UpdateAgendaItemRequest is the body of PUT /workshop-agenda/{id}. Absent
// fields are left unchanged.
type UpdateAgendaItemRequest struct {
	Title           *string   `json:"title,omitempty" validate:"omitnil,notblank"`
	Description     *string   `json:"description,omitempty"`
	ActivityType    *string   `json:"activity_type,omitempty" validate:"omitnil,activity_type"`
	StartTime       *string   `json:"start_time,omitempty" validate:"omitnil,time_of_day"`
	EndTime         *string   `json:"end_time,omitempty" validate:"omitnil,time_of_day"`
	FacilitatorID   *string   `json:"facilitator_id,omitempty"`
	FacilitatorName *string   `json:"facilitator_name,omitempty"`
	MaterialsNeeded *[]string `json:"materials_needed,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}

// OrderEntry is one {id, order_index} pair of a reorder body.
type OrderEntry struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"order_index"`
}

// ReorderRequest is the body of PUT /workshop-agenda/workshop/{id}/reorder.
type ReorderRequest struct {
	AgendaItems []OrderEntry `json:"agendaItems"`
}

// SetOrderRequest is the body of PUT /workshop-agenda/{id}/order.
type SetOrderRequest struct {
	OrderIndex int `json:"order_index"`
}

// Workshop is the wire form of the workshop context.
type Workshop struct {
	ID                      string `json:"id"`
	Title                   string `json:"title"`
	Date                    string `json:"date,omitempty"`
	Duration                int    `json:"duration"`
	Location                string `json:"location,omitempty"`
	PathwayTitle            string `json:"pathway_title,omitempty"`
	PathwayParticipantCount int    `json:"pathway_participant_count"`
}

// WorkshopListResponse is the body of GET /workshops.
type WorkshopListResponse struct {
	Workshops []Workshop `json:"workshops"`
}

// AgendaService is the transport-facing agenda backend.
type AgendaService interface {
	ListAgendaItems(ctx context.Context, workshopID string) ([]AgendaItem, error)
	CreateAgendaItem(ctx context.Context, in CreateAgendaItemRequest) (AgendaItem, error)
	UpdateAgendaItem(ctx context.Context, id string, in UpdateAgendaItemRequest) (AgendaItem, error)
	DeleteAgendaItem(ctx context.Context, id string) error
	ReorderAgendaItems(ctx context.Context, workshopID string, entries []OrderEntry) error
	SetAgendaItemOrder(ctx context.Context, id string, orderIndex int) error
	GetWorkshop(ctx context.Context, id string) (Workshop, error)
	ListWorkshops(ctx context.Context) ([]Workshop, error)
}
