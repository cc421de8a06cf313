package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/agenda/internal/app"
	"github.com/hylla/agenda/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service agenda APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListAgendaItems lists one workshop's agenda in order.
func (a *AppServiceAdapter) ListAgendaItems(ctx context.Context, workshopID string) ([]AgendaItem, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	items, err := a.service.ListAgendaItems(ctx, workshopID)
	if err != nil {
		return nil, mapAppError("list agenda items", err)
	}
	return FromDomainItems(items), nil
}

// CreateAgendaItem validates and creates one item.
func (a *AppServiceAdapter) CreateAgendaItem(ctx context.Context, in CreateAgendaItemRequest) (AgendaItem, error) {
	if err := a.ready(); err != nil {
		return AgendaItem{}, err
	}
	if err := app.ValidateStruct(in); err != nil {
		return AgendaItem{}, fmt.Errorf("create agenda item: %w", errors.Join(ErrInvalidRequest, err))
	}
	input, err := in.Input()
	if err != nil {
		return AgendaItem{}, mapAppError("create agenda item", err)
	}
	item, err := a.service.CreateAgendaItem(ctx, input)
	if err != nil {
		return AgendaItem{}, mapAppError("create agenda item", err)
	}
	return FromDomainItem(item), nil
}

// UpdateAgendaItem applies a partial update.
func (a *AppServiceAdapter) UpdateAgendaItem(ctx context.Context, id string, in UpdateAgendaItemRequest) (AgendaItem, error) {
	if err := a.ready(); err != nil {
		return AgendaItem{}, err
	}
	if err := app.ValidateStruct(in); err != nil {
		return AgendaItem{}, fmt.Errorf("update agenda item: %w", errors.Join(ErrInvalidRequest, err))
	}
	patch, err := in.Patch()
	if err != nil {
		return AgendaItem{}, mapAppError("update agenda item", err)
	}
	item, err := a.service.UpdateAgendaItem(ctx, id, patch)
	if err != nil {
		return AgendaItem{}, mapAppError("update agenda item", err)
	}
	return FromDomainItem(item), nil
}

// DeleteAgendaItem deletes one item.
func (a *AppServiceAdapter) DeleteAgendaItem(ctx context.Context, id string) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("delete agenda item", a.service.DeleteAgendaItem(ctx, id))
}

// ReorderAgendaItems replaces one workshop's full order.
func (a *AppServiceAdapter) ReorderAgendaItems(ctx context.Context, workshopID string, entries []OrderEntry) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("reorder agenda items", a.service.ReorderAgendaItems(ctx, workshopID, DomainOrder(entries)))
}

// SetAgendaItemOrder moves one item to a position.
func (a *AppServiceAdapter) SetAgendaItemOrder(ctx context.Context, id string, orderIndex int) error {
	if err := a.ready(); err != nil {
		return err
	}
	return mapAppError("set agenda item order", a.service.SetAgendaItemOrder(ctx, id, orderIndex))
}

// GetWorkshop returns one workshop.
func (a *AppServiceAdapter) GetWorkshop(ctx context.Context, id string) (Workshop, error) {
	if err := a.ready(); err != nil {
		return Workshop{}, err
	}
	w, err := a.service.GetWorkshop(ctx, id)
	if err != nil {
		return Workshop{}, mapAppError("get workshop", err)
	}
	return FromDomainWorkshop(w), nil
}

// ListWorkshops lists every workshop.
func (a *AppServiceAdapter) ListWorkshops(ctx context.Context) ([]Workshop, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	workshops, err := a.service.ListWorkshops(ctx)
	if err != nil {
		return nil, mapAppError("list workshops", err)
	}
	out := make([]Workshop, 0, len(workshops))
	for _, w := range workshops {
		out = append(out, FromDomainWorkshop(w))
	}
	return out, nil
}

func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return errors.New("app service adapter is not configured")
	}
	return nil
}

// mapAppError joins app/domain failures with the transport sentinel they map to.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, app.ErrInvalidReorder):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidReorder, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidWorkshopID),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidActivityType),
		errors.Is(err, domain.ErrInvalidTimeOfDay),
		errors.Is(err, domain.ErrInvalidTimeRange),
		errors.Is(err, domain.ErrInvalidOrderIndex),
		errors.Is(err, domain.ErrInvalidDuration):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

// FieldContext extracts per-field validation messages from err, if any.
func FieldContext(err error) map[string]any {
	var form *app.FormError
	if !errors.As(err, &form) || len(form.Fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(form.Fields))
	for _, f := range form.Fields {
		out[f.Field] = strings.TrimSpace(f.Message)
	}
	return out
}
