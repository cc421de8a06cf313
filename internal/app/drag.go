package app

import (
	"context"
	"strings"

	"github.com/hylla/agenda/internal/domain"
)

// Reorderer is the part of Store the drag controller drives.
type Reorderer interface {
	Has(id string) bool
	ApplyReorder(sourceID, targetID string) ([]domain.AgendaItem, bool, error)
	CommitReorder(ctx context.Context) error
}

// DragState is the gesture state of a DragController.
type DragState int

// DragIdle and related constants define drag gesture states.
const (
	DragIdle DragState = iota
	DragDragging
)

// DropResult describes what one drop did.
type DropResult struct {
	SourceID string
	TargetID string
	// Applied is true when the local order changed and a commit is owed.
	Applied bool
	Err     error
}

// DragController turns drag gestures into store reorders. It knows nothing
// about rendering and is driven from one goroutine.
type DragController struct {
	store  Reorderer
	state  DragState
	source string
	hover  string
}

// NewDragController constructs a new value for this package.
func NewDragController(store Reorderer) *DragController {
	return &DragController{store: store}
}

// State reports whether a drag is in progress.
func (d *DragController) State() DragState { return d.state }

// Source returns the dragged id, or "" when idle.
func (d *DragController) Source() string { return d.source }

// Hover returns the last hovered id, for highlighting only.
func (d *DragController) Hover() string { return d.hover }

// OnDragStart begins dragging id. Starting again replaces the source.
func (d *DragController) OnDragStart(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || !d.store.Has(id) {
		d.Cancel()
		return false
	}
	d.state = DragDragging
	d.source = id
	d.hover = id
	return true
}

// OnDragOver records the row under the pointer.
func (d *DragController) OnDragOver(id string) {
	if d.state != DragDragging {
		return
	}
	d.hover = strings.TrimSpace(id)
}

// OnDrop ends the gesture. A valid target applies the reorder locally; the
// caller owes a CommitReorder when Applied is true. An empty or unknown
// target returns to idle with no change.
func (d *DragController) OnDrop(id string) DropResult {
	if d.state != DragDragging {
		return DropResult{}
	}
	res := DropResult{SourceID: d.source, TargetID: strings.TrimSpace(id)}
	d.Cancel()
	if res.TargetID == "" || res.TargetID == res.SourceID || !d.store.Has(res.TargetID) {
		return res
	}
	_, applied, err := d.store.ApplyReorder(res.SourceID, res.TargetID)
	res.Applied = applied
	res.Err = err
	return res
}

// Cancel returns to idle without touching the store.
func (d *DragController) Cancel() {
	d.state = DragIdle
	d.source = ""
	d.hover = ""
}

// DropAndCommit drops on id and persists the result synchronously.
func (d *DragController) DropAndCommit(ctx context.Context, id string) (DropResult, error) {
	res := d.OnDrop(id)
	if res.Err != nil {
		return res, res.Err
	}
	if !res.Applied {
		return res, nil
	}
	if err := d.store.CommitReorder(ctx); err != nil {
		res.Err = err
		return res, err
	}
	return res, nil
}
