package app

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestDragControllerDropReordersAndCommits(t *testing.T) {
	store, client, seeded := newLoadedStore(t, ServiceConfig{}, "A", "B", "C")
	drag := NewDragController(store)

	if !drag.OnDragStart(seeded[2].ID) {
		t.Fatal("expected drag to start")
	}
	if drag.State() != DragDragging || drag.Source() != seeded[2].ID {
		t.Fatalf("unexpected drag state %v source %q", drag.State(), drag.Source())
	}
	drag.OnDragOver(seeded[1].ID)
	drag.OnDragOver(seeded[0].ID)
	if drag.Hover() != seeded[0].ID {
		t.Fatalf("unexpected hover %q", drag.Hover())
	}
	if got := titles(store.Items()); !slices.Equal(got, []string{"A(1)", "B(2)", "C(3)"}) {
		t.Fatalf("drag over must not mutate, got %v", got)
	}

	res, err := drag.DropAndCommit(context.Background(), seeded[0].ID)
	if err != nil {
		t.Fatalf("DropAndCommit() error = %v", err)
	}
	if !res.Applied || res.SourceID != seeded[2].ID || res.TargetID != seeded[0].ID {
		t.Fatalf("unexpected drop result %#v", res)
	}
	if drag.State() != DragIdle {
		t.Fatalf("expected idle after drop, got %v", drag.State())
	}
	if got := titles(store.Items()); !slices.Equal(got, []string{"C(1)", "A(2)", "B(3)"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if !slices.Contains(client.calls, "reorder") {
		t.Fatalf("expected reorder call, got %v", client.calls)
	}
}

func TestDragControllerDropWithoutTarget(t *testing.T) {
	store, client, seeded := newLoadedStore(t, ServiceConfig{}, "A", "B")
	drag := NewDragController(store)

	for _, target := range []string{"", "outside", seeded[0].ID} {
		drag.OnDragStart(seeded[0].ID)
		res := drag.OnDrop(target)
		if res.Applied || res.Err != nil {
			t.Fatalf("OnDrop(%q) = %#v, want no-op", target, res)
		}
		if drag.State() != DragIdle {
			t.Fatalf("OnDrop(%q) left state %v", target, drag.State())
		}
	}
	if store.SyncState() != SyncClean {
		t.Fatalf("expected clean store, got %s", store.SyncState())
	}
	if slices.Contains(client.calls, "reorder") {
		t.Fatalf("unexpected reorder call %v", client.calls)
	}
}

func TestDragControllerIgnoresUnknownSourceAndIdleDrop(t *testing.T) {
	store, _, seeded := newLoadedStore(t, ServiceConfig{}, "A", "B")
	drag := NewDragController(store)

	if drag.OnDragStart("ghost") {
		t.Fatal("expected unknown source to be rejected")
	}
	if res := drag.OnDrop(seeded[1].ID); res.Applied || res.SourceID != "" {
		t.Fatalf("drop while idle = %#v", res)
	}
	drag.OnDragOver(seeded[1].ID)
	if drag.Hover() != "" {
		t.Fatalf("hover recorded while idle: %q", drag.Hover())
	}

	drag.OnDragStart(seeded[0].ID)
	drag.Cancel()
	if drag.State() != DragIdle || drag.Source() != "" {
		t.Fatalf("cancel did not reset: %v %q", drag.State(), drag.Source())
	}
}

func TestDragControllerCommitFailureSurfacesStaleState(t *testing.T) {
	store, client, seeded := newLoadedStore(t, ServiceConfig{}, "A", "B", "C")
	client.reorderErr = &ValidationError{Status: 400, Code: "invalid_reorder", Message: "stale"}
	drag := NewDragController(store)

	drag.OnDragStart(seeded[0].ID)
	_, err := drag.DropAndCommit(context.Background(), seeded[2].ID)
	var stale *StaleStateError
	if !errors.As(err, &stale) {
		t.Fatalf("expected *StaleStateError, got %v", err)
	}
	if got := titles(store.Items()); !slices.Equal(got, []string{"A(1)", "B(2)", "C(3)"}) {
		t.Fatalf("expected server order restored, got %v", got)
	}
}
