package app

import (
	"context"
	"errors"
	"testing"

	"github.com/hylla/agenda/internal/domain"
)

func TestLocalClientDrivesStore(t *testing.T) {
	svc, _ := newTestService(t, ServiceConfig{})
	seedItems(t, svc, "A", "B", "C")
	store := NewStore(NewLocalClient(svc))
	ctx := context.Background()

	if err := store.Load(ctx, "w1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	items := store.Items()
	if _, applied, err := store.ApplyReorder(items[2].ID, items[0].ID); err != nil || !applied {
		t.Fatalf("ApplyReorder() applied=%v err=%v", applied, err)
	}
	if err := store.CommitReorder(ctx); err != nil {
		t.Fatalf("CommitReorder() error = %v", err)
	}
	persisted, err := svc.ListAgendaItems(ctx, "w1")
	if err != nil {
		t.Fatalf("ListAgendaItems() error = %v", err)
	}
	if got := titles(persisted); got[0] != "C(1)" || got[1] != "A(2)" || got[2] != "B(3)" {
		t.Fatalf("unexpected persisted order %v", got)
	}

	w, err := NewLocalClient(svc).GetWorkshop(ctx, "w1")
	if err != nil || w.Title != "Speaking" {
		t.Fatalf("GetWorkshop() = %#v, %v", w, err)
	}
}

func TestLocalClientRequiresService(t *testing.T) {
	var c *LocalClient
	if _, err := c.List(context.Background(), "w1"); !errors.Is(err, errNoLocalService) {
		t.Fatalf("expected errNoLocalService, got %v", err)
	}
	if err := NewLocalClient(nil).SetOrder(context.Background(), "x", 1); !errors.Is(err, errNoLocalService) {
		t.Fatalf("expected errNoLocalService, got %v", err)
	}
	if _, err := NewLocalClient(nil).Create(context.Background(), domain.AgendaItemInput{}); err == nil {
		t.Fatal("expected error from unconfigured client")
	}
}
