package domain

import (
	"cmp"
	"slices"
)

// OrderEntry is one (id, position) pair of a full reorder.
type OrderEntry struct {
	ID         string
	OrderIndex int
}

// SortByOrder sorts items by order index, breaking ties by id.
func SortByOrder(items []AgendaItem) {
	slices.SortStableFunc(items, func(a, b AgendaItem) int {
		if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// IndexOf returns the slice position of id, or -1.
func IndexOf(items []AgendaItem, id string) int {
	return slices.IndexFunc(items, func(it AgendaItem) bool { return it.ID == id })
}

// SpliceMove removes the source and reinserts it at the target's former
// position, then reindexes. It reports false and returns a reindexed copy
// of the input when the move is a no-op.
func SpliceMove(items []AgendaItem, sourceID, targetID string) ([]AgendaItem, bool) {
	out := slices.Clone(items)
	src := IndexOf(out, sourceID)
	dst := IndexOf(out, targetID)
	if sourceID == targetID || src < 0 || dst < 0 {
		return out, false
	}
	moved := out[src]
	out = slices.Delete(out, src, src+1)
	out = slices.Insert(out, dst, moved)
	Reindex(out)
	return out, true
}

// MoveTo moves id to the 1-based position and reindexes.
func MoveTo(items []AgendaItem, id string, orderIndex int) ([]AgendaItem, error) {
	out := slices.Clone(items)
	src := IndexOf(out, id)
	if src < 0 {
		return out, ErrInvalidID
	}
	if orderIndex < 1 || orderIndex > len(out) {
		return out, ErrInvalidOrderIndex
	}
	moved := out[src]
	out = slices.Delete(out, src, src+1)
	out = slices.Insert(out, orderIndex-1, moved)
	Reindex(out)
	return out, nil
}

// Reindex sets each OrderIndex to its 1-based slice position.
func Reindex(items []AgendaItem) {
	for i := range items {
		items[i].OrderIndex = i + 1
	}
}

// OrderEntries snapshots the order of items.
func OrderEntries(items []AgendaItem) []OrderEntry {
	out := make([]OrderEntry, 0, len(items))
	for _, it := range items {
		out = append(out, OrderEntry{ID: it.ID, OrderIndex: it.OrderIndex})
	}
	return out
}

// ValidateOrder checks that order indexes are exactly {1..n} with unique ids.
func ValidateOrder(entries []OrderEntry) error {
	seenIDs := make(map[string]struct{}, len(entries))
	seenIdx := make([]bool, len(entries)+1)
	for _, e := range entries {
		if e.ID == "" {
			return ErrInvalidID
		}
		if _, dup := seenIDs[e.ID]; dup {
			return ErrInvalidID
		}
		seenIDs[e.ID] = struct{}{}
		if e.OrderIndex < 1 || e.OrderIndex > len(entries) || seenIdx[e.OrderIndex] {
			return ErrOrderNotContiguous
		}
		seenIdx[e.OrderIndex] = true
	}
	return nil
}

// ItemsOrder validates a sorted item list the same way.
func ItemsOrder(items []AgendaItem) error {
	return ValidateOrder(OrderEntries(items))
}
