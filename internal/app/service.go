package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/agenda/internal/domain"
)

// ServiceConfig holds configuration for the local agenda service.
type ServiceConfig struct {
	// LeaveGapsOnDelete skips sibling compaction after a delete.
	LeaveGapsOnDelete bool
	TimeRangePolicy   domain.TimeRangePolicy
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service is the server-side agenda service backing the REST and MCP surfaces.
type Service struct {
	repo            Repository
	idGen           IDGenerator
	clock           Clock
	compactOnDelete bool
	timeRange       domain.TimeRangePolicy
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.TimeRangePolicy == "" {
		cfg.TimeRangePolicy = domain.TimeRangeReject
	}
	return &Service{
		repo:            repo,
		idGen:           idGen,
		clock:           clock,
		compactOnDelete: !cfg.LeaveGapsOnDelete,
		timeRange:       cfg.TimeRangePolicy,
	}
}

// CreateWorkshop creates one workshop, generating an id when none is given.
func (s *Service) CreateWorkshop(ctx context.Context, in domain.WorkshopInput) (domain.Workshop, error) {
	if strings.TrimSpace(in.ID) == "" {
		in.ID = s.idGen()
	}
	workshop, err := domain.NewWorkshop(in)
	if err != nil {
		return domain.Workshop{}, err
	}
	if err := s.repo.CreateWorkshop(ctx, workshop); err != nil {
		return domain.Workshop{}, err
	}
	return workshop, nil
}

// GetWorkshop returns one workshop.
func (s *Service) GetWorkshop(ctx context.Context, id string) (domain.Workshop, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Workshop{}, domain.ErrInvalidWorkshopID
	}
	return s.repo.GetWorkshop(ctx, id)
}

// ListWorkshops lists workshops by date.
func (s *Service) ListWorkshops(ctx context.Context) ([]domain.Workshop, error) {
	workshops, err := s.repo.ListWorkshops(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(workshops, func(a, b domain.Workshop) int {
		return a.Date.Compare(b.Date)
	})
	return workshops, nil
}

// ListAgendaItems returns the agenda of one workshop in display order.
func (s *Service) ListAgendaItems(ctx context.Context, workshopID string) ([]domain.AgendaItem, error) {
	workshopID = strings.TrimSpace(workshopID)
	if workshopID == "" {
		return nil, domain.ErrInvalidWorkshopID
	}
	if _, err := s.repo.GetWorkshop(ctx, workshopID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListAgendaItems(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	domain.SortByOrder(items)
	return items, nil
}

// CreateAgendaItem appends one item as n+1, or inserts it at a requested
// position inside 1..n and shifts the later siblings down.
func (s *Service) CreateAgendaItem(ctx context.Context, in domain.AgendaItemInput) (domain.AgendaItem, error) {
	siblings, err := s.ListAgendaItems(ctx, in.WorkshopID)
	if err != nil {
		return domain.AgendaItem{}, err
	}
	if err := s.timeRange.CheckTimeRange(in.StartTime, in.EndTime); err != nil {
		return domain.AgendaItem{}, err
	}

	n := len(siblings)
	position := in.OrderIndex
	if position < 1 || position > n+1 {
		position = n + 1
	}
	in.ID = s.idGen()
	in.OrderIndex = position
	item, err := domain.NewAgendaItem(in, s.clock())
	if err != nil {
		return domain.AgendaItem{}, err
	}

	var shifted []domain.OrderEntry
	if position <= n {
		next := slices.Insert(slices.Clone(siblings), position-1, item)
		domain.Reindex(next)
		for _, it := range next {
			if it.ID != item.ID {
				shifted = append(shifted, domain.OrderEntry{ID: it.ID, OrderIndex: it.OrderIndex})
			}
		}
	}
	if err := s.repo.CreateAgendaItem(ctx, item, shifted); err != nil {
		return domain.AgendaItem{}, err
	}
	return item, nil
}

// UpdateAgendaItem applies a partial update. Order is not changed here.
func (s *Service) UpdateAgendaItem(ctx context.Context, id string, patch domain.AgendaItemPatch) (domain.AgendaItem, error) {
	item, err := s.repo.GetAgendaItem(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.AgendaItem{}, err
	}
	if patch.IsEmpty() {
		return item, nil
	}
	if err := item.Apply(patch, s.clock()); err != nil {
		return domain.AgendaItem{}, err
	}
	if err := s.timeRange.CheckTimeRange(item.StartTime, item.EndTime); err != nil {
		return domain.AgendaItem{}, err
	}
	if err := s.repo.UpdateAgendaItem(ctx, item); err != nil {
		return domain.AgendaItem{}, err
	}
	return item, nil
}

// DeleteAgendaItem deletes one item and, unless configured otherwise,
// compacts the remaining siblings back to 1..n.
func (s *Service) DeleteAgendaItem(ctx context.Context, id string) error {
	item, err := s.repo.GetAgendaItem(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !s.compactOnDelete {
		return s.repo.DeleteAgendaItem(ctx, item.ID, nil)
	}
	siblings, err := s.repo.ListAgendaItems(ctx, item.WorkshopID)
	if err != nil {
		return err
	}
	domain.SortByOrder(siblings)
	remaining := slices.DeleteFunc(siblings, func(it domain.AgendaItem) bool { return it.ID == item.ID })
	domain.Reindex(remaining)
	return s.repo.DeleteAgendaItem(ctx, item.ID, domain.OrderEntries(remaining))
}

// ReorderAgendaItems replaces the full order of one workshop atomically. The
// entries must name every item exactly once and use indexes 1..n.
func (s *Service) ReorderAgendaItems(ctx context.Context, workshopID string, entries []domain.OrderEntry) error {
	current, err := s.ListAgendaItems(ctx, workshopID)
	if err != nil {
		return err
	}
	if len(entries) != len(current) {
		return fmt.Errorf("%w: expected %d entries, got %d", ErrInvalidReorder, len(current), len(entries))
	}
	if err := domain.ValidateOrder(entries); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReorder, err)
	}
	for _, e := range entries {
		if domain.IndexOf(current, e.ID) < 0 {
			return fmt.Errorf("%w: item %q does not belong to workshop %q", ErrInvalidReorder, e.ID, workshopID)
		}
	}
	return s.repo.ApplyOrder(ctx, strings.TrimSpace(workshopID), entries)
}

// SetAgendaItemOrder moves one item to a 1-based position and reindexes its siblings.
func (s *Service) SetAgendaItemOrder(ctx context.Context, id string, orderIndex int) error {
	item, err := s.repo.GetAgendaItem(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	siblings, err := s.repo.ListAgendaItems(ctx, item.WorkshopID)
	if err != nil {
		return err
	}
	domain.SortByOrder(siblings)
	moved, err := domain.MoveTo(siblings, item.ID, orderIndex)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrderIndex) {
			return fmt.Errorf("%w: order_index %d outside 1..%d", ErrInvalidReorder, orderIndex, len(siblings))
		}
		return err
	}
	return s.repo.ApplyOrder(ctx, item.WorkshopID, domain.OrderEntries(moved))
}
