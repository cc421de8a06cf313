package app

import (
	"context"
	"errors"

	"github.com/hylla/agenda/internal/domain"
)

// LocalClient serves AgendaClient in-process from a Service, for offline use
// without the HTTP server.
type LocalClient struct {
	svc *Service
}

// NewLocalClient constructs a new value for this package.
func NewLocalClient(svc *Service) *LocalClient {
	return &LocalClient{svc: svc}
}

var errNoLocalService = errors.New("local agenda service is not configured")

// List returns one workshop's items.
func (c *LocalClient) List(ctx context.Context, workshopID string) ([]domain.AgendaItem, error) {
	if c == nil || c.svc == nil {
		return nil, errNoLocalService
	}
	return c.svc.ListAgendaItems(ctx, workshopID)
}

// Create appends one item.
func (c *LocalClient) Create(ctx context.Context, in domain.AgendaItemInput) (domain.AgendaItem, error) {
	if c == nil || c.svc == nil {
		return domain.AgendaItem{}, errNoLocalService
	}
	return c.svc.CreateAgendaItem(ctx, in)
}

// Update applies a patch.
func (c *LocalClient) Update(ctx context.Context, id string, patch domain.AgendaItemPatch) (domain.AgendaItem, error) {
	if c == nil || c.svc == nil {
		return domain.AgendaItem{}, errNoLocalService
	}
	return c.svc.UpdateAgendaItem(ctx, id, patch)
}

// Delete removes one item.
func (c *LocalClient) Delete(ctx context.Context, id string) error {
	if c == nil || c.svc == nil {
		return errNoLocalService
	}
	return c.svc.DeleteAgendaItem(ctx, id)
}

// Reorder replaces a workshop's order.
func (c *LocalClient) Reorder(ctx context.Context, workshopID string, entries []domain.OrderEntry) error {
	if c == nil || c.svc == nil {
		return errNoLocalService
	}
	return c.svc.ReorderAgendaItems(ctx, workshopID, entries)
}

// SetOrder moves one item.
func (c *LocalClient) SetOrder(ctx context.Context, id string, orderIndex int) error {
	if c == nil || c.svc == nil {
		return errNoLocalService
	}
	return c.svc.SetAgendaItemOrder(ctx, id, orderIndex)
}

// GetWorkshop returns one workshop.
func (c *LocalClient) GetWorkshop(ctx context.Context, id string) (domain.Workshop, error) {
	if c == nil || c.svc == nil {
		return domain.Workshop{}, errNoLocalService
	}
	return c.svc.GetWorkshop(ctx, id)
}
