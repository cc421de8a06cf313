package app

import (
	"context"

	"github.com/hylla/agenda/internal/domain"
)

// AgendaClient is the remote agenda service as seen by the Store.
type AgendaClient interface {
	List(ctx context.Context, workshopID string) ([]domain.AgendaItem, error)
	Create(ctx context.Context, in domain.AgendaItemInput) (domain.AgendaItem, error)
	Update(ctx context.Context, id string, patch domain.AgendaItemPatch) (domain.AgendaItem, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, workshopID string, entries []domain.OrderEntry) error
	SetOrder(ctx context.Context, id string, orderIndex int) error
	GetWorkshop(ctx context.Context, id string) (domain.Workshop, error)
}

// Repository represents repository data used by the local agenda service.
type Repository interface {
	CreateWorkshop(context.Context, domain.Workshop) error
	GetWorkshop(context.Context, string) (domain.Workshop, error)
	ListWorkshops(context.Context) ([]domain.Workshop, error)

	// CreateAgendaItem inserts the item after rewriting sibling order, atomically.
	CreateAgendaItem(context.Context, domain.AgendaItem, []domain.OrderEntry) error
	UpdateAgendaItem(context.Context, domain.AgendaItem) error
	GetAgendaItem(context.Context, string) (domain.AgendaItem, error)
	ListAgendaItems(context.Context, string) ([]domain.AgendaItem, error)
	// DeleteAgendaItem removes the item and rewrites sibling order, atomically.
	// A nil order leaves siblings untouched.
	DeleteAgendaItem(context.Context, string, []domain.OrderEntry) error
	// ApplyOrder writes every entry's order index in one transaction.
	ApplyOrder(context.Context, string, []domain.OrderEntry) error
}
