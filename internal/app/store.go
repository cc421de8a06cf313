package app

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/hylla/agenda/internal/domain"
)

// SyncState tracks whether local order matches persisted order.
type SyncState int

// SyncClean and related constants define the mutation lifecycle. SyncBusy
// covers a load, create, update or delete round trip.
const (
	SyncClean SyncState = iota
	SyncPending
	SyncReconciling
	SyncBusy
)

// String returns the lowercase state name.
func (s SyncState) String() string {
	switch s {
	case SyncPending:
		return "pending"
	case SyncReconciling:
		return "reconciling"
	case SyncBusy:
		return "saving"
	default:
		return "clean"
	}
}

// Store holds the canonical client-side order of one workshop's agenda.
type Store struct {
	client AgendaClient

	mu         sync.Mutex
	workshopID string
	items      []domain.AgendaItem
	persisted  []domain.AgendaItem
	state      SyncState
}

// NewStore constructs a store over client. Call Load before anything else.
func NewStore(client AgendaClient) *Store {
	return &Store{client: client}
}

// Items returns a copy of the current local order.
func (s *Store) Items() []domain.AgendaItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Item returns one item by id.
func (s *Store) Item(id string) (domain.AgendaItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := domain.IndexOf(s.items, id)
	if idx < 0 {
		return domain.AgendaItem{}, false
	}
	return cloneItem(s.items[idx]), true
}

// Has reports whether id is in the local list.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.IndexOf(s.items, id) >= 0
}

// WorkshopID returns the loaded workshop, or "" before the first Load.
func (s *Store) WorkshopID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workshopID
}

// SyncState reports where the store is in the mutation lifecycle.
func (s *Store) SyncState() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load fetches the agenda and replaces local state. On failure the previous
// state is kept and a *FetchError is returned. A load never overlaps another
// mutation: while one is in flight the error wraps ErrMutationInFlight.
func (s *Store) Load(ctx context.Context, workshopID string) error {
	workshopID = strings.TrimSpace(workshopID)
	if workshopID == "" {
		return &FetchError{WorkshopID: workshopID, Err: domain.ErrInvalidWorkshopID}
	}
	if err := s.acquire(); err != nil {
		return &FetchError{WorkshopID: workshopID, Err: err}
	}
	defer s.release()
	return s.refresh(ctx, workshopID)
}

// refresh replaces local state with the server list. The caller owns the
// sync state for the duration.
func (s *Store) refresh(ctx context.Context, workshopID string) error {
	items, err := s.client.List(ctx, workshopID)
	if err != nil {
		return &FetchError{WorkshopID: workshopID, Err: err}
	}
	domain.SortByOrder(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workshopID = workshopID
	s.items = items
	s.persisted = cloneItems(items)
	return nil
}

// acquire moves a clean store to SyncBusy.
func (s *Store) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SyncClean {
		return ErrMutationInFlight
	}
	s.state = SyncBusy
	return nil
}

// release ends a busy round trip. Other states belong to the reorder path.
func (s *Store) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SyncBusy {
		s.state = SyncClean
	}
}

// ApplyReorder moves sourceID into targetID's slot locally and returns the
// new order. It reports false without changing anything when the move is a
// no-op. A real move leaves the store Pending until CommitReorder runs.
func (s *Store) ApplyReorder(sourceID, targetID string) ([]domain.AgendaItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SyncClean {
		return cloneItems(s.items), false, ErrMutationInFlight
	}
	next, moved := domain.SpliceMove(s.items, sourceID, targetID)
	if !moved {
		return cloneItems(s.items), false, nil
	}
	s.items = next
	s.state = SyncPending
	return cloneItems(next), true, nil
}

// CommitReorder persists the pending order. On rejection it reloads server
// truth, falling back to the last persisted order, and returns a *StaleStateError.
func (s *Store) CommitReorder(ctx context.Context) error {
	s.mu.Lock()
	if s.state != SyncPending {
		s.mu.Unlock()
		return nil
	}
	workshopID := s.workshopID
	entries := domain.OrderEntries(s.items)
	s.mu.Unlock()

	err := s.client.Reorder(ctx, workshopID, entries)
	if err == nil {
		s.mu.Lock()
		s.persisted = cloneItems(s.items)
		s.state = SyncClean
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.state = SyncReconciling
	s.mu.Unlock()

	stale := &StaleStateError{WorkshopID: workshopID, Err: err}
	loadErr := s.refresh(ctx, workshopID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SyncClean
	if loadErr != nil {
		s.items = cloneItems(s.persisted)
		stale.Err = errors.Join(err, loadErr)
		return stale
	}
	stale.Reloaded = true
	return stale
}

// Create appends a new item as n+1 and reloads.
func (s *Store) Create(ctx context.Context, in domain.AgendaItemInput) (domain.AgendaItem, error) {
	workshopID, count, err := s.beginEdit("")
	if err != nil {
		return domain.AgendaItem{}, err
	}
	defer s.release()
	in.WorkshopID = workshopID
	in.OrderIndex = count + 1
	created, err := s.client.Create(ctx, in)
	if err != nil {
		return domain.AgendaItem{}, err
	}
	return created, s.refresh(ctx, workshopID)
}

// Update sends changed fields and reloads.
func (s *Store) Update(ctx context.Context, id string, patch domain.AgendaItemPatch) (domain.AgendaItem, error) {
	workshopID, _, err := s.beginEdit(id)
	if err != nil {
		return domain.AgendaItem{}, err
	}
	defer s.release()
	updated, err := s.client.Update(ctx, id, patch)
	if err != nil {
		return domain.AgendaItem{}, err
	}
	return updated, s.refresh(ctx, workshopID)
}

// Delete removes one item and reloads. A reloaded order with gaps is
// compacted with a follow-up reorder.
func (s *Store) Delete(ctx context.Context, id string) error {
	workshopID, _, err := s.beginEdit(id)
	if err != nil {
		return err
	}
	defer s.release()
	if err := s.client.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.refresh(ctx, workshopID); err != nil {
		return err
	}

	s.mu.Lock()
	if domain.ItemsOrder(s.items) == nil {
		s.mu.Unlock()
		return nil
	}
	domain.Reindex(s.items)
	s.state = SyncPending
	s.mu.Unlock()
	return s.CommitReorder(ctx)
}

// beginEdit checks that a workshop is loaded, that id (when set) is known
// and that nothing is in flight, then marks the store busy.
func (s *Store) beginEdit(id string) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workshopID == "" {
		return "", 0, ErrNoWorkshop
	}
	if s.state != SyncClean {
		return "", 0, ErrMutationInFlight
	}
	if id != "" && domain.IndexOf(s.items, id) < 0 {
		return "", 0, ErrUnknownItem
	}
	s.state = SyncBusy
	return s.workshopID, len(s.items), nil
}

func cloneItems(in []domain.AgendaItem) []domain.AgendaItem {
	if in == nil {
		return nil
	}
	out := make([]domain.AgendaItem, len(in))
	for i, it := range in {
		out[i] = cloneItem(it)
	}
	return out
}

func cloneItem(it domain.AgendaItem) domain.AgendaItem {
	it.MaterialsNeeded = slices.Clone(it.MaterialsNeeded)
	return it
}
