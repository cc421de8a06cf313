package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/hylla/agenda/internal/adapters/storage/sqlite"
	"github.com/hylla/agenda/internal/app"
	"github.com/hylla/agenda/internal/domain"
)

// flakyClient wraps the local client so tests can reject reorders.
type flakyClient struct {
	*app.LocalClient
	reorderErr error
	reorders   int
}

func (c *flakyClient) Reorder(ctx context.Context, workshopID string, entries []domain.OrderEntry) error {
	c.reorders++
	if c.reorderErr != nil {
		return c.reorderErr
	}
	return c.LocalClient.Reorder(ctx, workshopID, entries)
}

type testBoard struct {
	svc     *app.Service
	client  *flakyClient
	store   *app.Store
	copied  string
	session app.Session
}

func newTestBoard(t *testing.T, role string, titles ...string) *testBoard {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	n := 0
	svc := app.NewService(repo, func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}, func() time.Time {
		return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	}, app.ServiceConfig{})
	ctx := context.Background()
	if _, err := svc.CreateWorkshop(ctx, domain.WorkshopInput{
		ID:       "w1",
		Title:    "Feedback Loops",
		Date:     time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
		Location: "Room 4",
	}); err != nil {
		t.Fatalf("CreateWorkshop() error = %v", err)
	}
	for i, title := range titles {
		start := domain.MustTimeOfDay(fmt.Sprintf("%02d:00", 9+i))
		end := domain.MustTimeOfDay(fmt.Sprintf("%02d:45", 9+i))
		if _, err := svc.CreateAgendaItem(ctx, domain.AgendaItemInput{
			WorkshopID:   "w1",
			Title:        title,
			ActivityType: domain.ActivitySession,
			StartTime:    start,
			EndTime:      end,
		}); err != nil {
			t.Fatalf("CreateAgendaItem(%q) error = %v", title, err)
		}
	}
	client := &flakyClient{LocalClient: app.NewLocalClient(svc)}
	return &testBoard{
		svc:     svc,
		client:  client,
		store:   app.NewStore(client),
		session: app.NewSession("u1", "Dana", role, app.Branding{ProductName: "Studio"}),
	}
}

func (b *testBoard) model(opts ...Option) Model {
	base := []Option{
		WithSession(b.session),
		WithWorkshopLookup(b.svc.GetWorkshop),
		WithClipboard(func(s string) error {
			b.copied = s
			return nil
		}),
		WithShowDescription(false),
	}
	return NewModel(b.store, "w1", append(base, opts...)...)
}

func (b *testBoard) persistedTitles(t *testing.T) []string {
	t.Helper()
	items, err := b.svc.ListAgendaItems(context.Background(), "w1")
	if err != nil {
		t.Fatalf("ListAgendaItems() error = %v", err)
	}
	return orderedTitles(items)
}

func orderedTitles(items []domain.AgendaItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, fmt.Sprintf("%s(%d)", it.Title, it.OrderIndex))
	}
	return out
}

func sameTitles(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestModelLoadsAgendaAndHeader(t *testing.T) {
	b := newTestBoard(t, "trainer", "Welcome", "Deep dive", "Wrap-up")
	m := loadReadyModel(t, b.model())

	if m.err != nil {
		t.Fatalf("unexpected load error %v", m.err)
	}
	if got := orderedTitles(m.items); !sameTitles(got, "Welcome(1)", "Deep dive(2)", "Wrap-up(3)") {
		t.Fatalf("unexpected items %v", got)
	}
	if m.workshop == nil || m.workshop.Title != "Feedback Loops" {
		t.Fatalf("expected workshop header, got %#v", m.workshop)
	}
	out := m.render()
	for _, want := range []string{"Studio", "Feedback Loops", "Room 4", "Dana · trainer", "Deep dive", "09:00-09:45"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view\n%s", want, out)
		}
	}
}

func TestModelLoadFailureShowsError(t *testing.T) {
	b := newTestBoard(t, "trainer", "A")
	m := NewModel(b.store, "missing", WithSession(b.session))
	m = loadReadyModel(t, m)
	if m.err == nil {
		t.Fatal("expected load error for unknown workshop")
	}
	var fetchErr *app.FetchError
	if !errors.As(m.err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T", m.err)
	}
	if !strings.Contains(m.render(), "press r to retry") {
		t.Fatalf("expected retry hint, got %q", m.render())
	}

	m = loadReadyModel(t, NewModel(b.store, " ", WithSession(b.session)))
	if !errors.Is(m.err, app.ErrNoWorkshop) {
		t.Fatalf("expected ErrNoWorkshop, got %v", m.err)
	}
}

func TestModelKeyboardMovePersistsOrder(t *testing.T) {
	b := newTestBoard(t, "trainer", "A", "B", "C")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, keyRune(']'))
	if got := orderedTitles(m.items); !sameTitles(got, "B(1)", "A(2)", "C(3)") {
		t.Fatalf("unexpected local order %v", got)
	}
	if m.selected != 1 {
		t.Fatalf("expected selection to follow the moved item, got %d", m.selected)
	}
	if m.status != "order saved" {
		t.Fatalf("unexpected status %q", m.status)
	}
	if got := b.persistedTitles(t); !sameTitles(got, "B(1)", "A(2)", "C(3)") {
		t.Fatalf("unexpected persisted order %v", got)
	}

	// Moving past either end is a no-op.
	m = applyMsg(t, m, keyRune('k'))
	m = applyMsg(t, m, keyRune('['))
	if got := orderedTitles(m.items); !sameTitles(got, "B(1)", "A(2)", "C(3)") {
		t.Fatalf("expected unchanged order, got %v", got)
	}
	if b.client.reorders != 1 {
		t.Fatalf("expected one reorder call, got %d", b.client.reorders)
	}
}

func TestModelMouseDragReorders(t *testing.T) {
	b := newTestBoard(t, "administrator", "A", "B", "C")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, tea.MouseClickMsg{X: 4, Y: listTop + 2, Button: tea.MouseLeft})
	if m.drag.State() != app.DragDragging || m.drag.Source() != m.items[2].ID {
		t.Fatalf("expected drag of C, state %v source %q", m.drag.State(), m.drag.Source())
	}
	m = applyMsg(t, m, tea.MouseMotionMsg{X: 4, Y: listTop, Button: tea.MouseLeft})
	if m.drag.Hover() != m.items[0].ID {
		t.Fatalf("expected hover on A, got %q", m.drag.Hover())
	}
	if !strings.Contains(m.render(), "(moving)") {
		t.Fatal("expected dragged row marker in view")
	}
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: 4, Y: listTop, Button: tea.MouseLeft})

	if m.drag.State() != app.DragIdle {
		t.Fatalf("expected idle after drop, got %v", m.drag.State())
	}
	if got := orderedTitles(m.items); !sameTitles(got, "C(1)", "A(2)", "B(3)") {
		t.Fatalf("unexpected order %v", got)
	}
	if m.items[m.selected].Title != "C" {
		t.Fatalf("expected focus on dropped item, got %q", m.items[m.selected].Title)
	}
	if got := b.persistedTitles(t); !sameTitles(got, "C(1)", "A(2)", "B(3)") {
		t.Fatalf("unexpected persisted order %v", got)
	}
}

func TestModelDropOutsideListCancels(t *testing.T) {
	b := newTestBoard(t, "trainer", "A", "B")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, tea.MouseClickMsg{X: 4, Y: listTop, Button: tea.MouseLeft})
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: 4, Y: 0, Button: tea.MouseLeft})
	if m.drag.State() != app.DragIdle || b.client.reorders != 0 {
		t.Fatalf("expected cancelled drag, state %v reorders %d", m.drag.State(), b.client.reorders)
	}

	m = applyMsg(t, m, tea.MouseClickMsg{X: 4, Y: listTop, Button: tea.MouseLeft})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.drag.State() != app.DragIdle || m.status != "drag cancelled" {
		t.Fatalf("expected esc to cancel drag, state %v status %q", m.drag.State(), m.status)
	}
	if got := orderedTitles(m.items); !sameTitles(got, "A(1)", "B(2)") {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestModelRejectedReorderReloads(t *testing.T) {
	b := newTestBoard(t, "trainer", "A", "B", "C")
	b.client.reorderErr = errors.New("conflict")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, keyRune(']'))
	if got := orderedTitles(m.items); !sameTitles(got, "A(1)", "B(2)", "C(3)") {
		t.Fatalf("expected server order after rejection, got %v", got)
	}
	if !strings.Contains(m.status, "reloaded from server") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if b.store.SyncState() != app.SyncClean {
		t.Fatalf("expected clean store, got %v", b.store.SyncState())
	}
}

func TestModelEditorValidatesAndCreates(t *testing.T) {
	b := newTestBoard(t, "trainer", "A")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeEditItem || len(m.inputs) != len(formFields) {
		t.Fatalf("expected editor form, mode %v inputs %d", m.mode, len(m.inputs))
	}
	m = applyMsg(t, m, ctrlKey('s'))
	for _, field := range []string{app.FieldTitle, app.FieldActivityType, app.FieldStartTime, app.FieldEndTime} {
		if _, ok := m.formErrors[field]; !ok {
			t.Fatalf("expected %s error, got %#v", field, m.formErrors)
		}
	}
	if m.mode != modeEditItem {
		t.Fatal("expected form to stay open on invalid input")
	}

	m = typeText(t, m, "Lunch")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(t, m, "break")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(t, m, "12:00")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(t, m, "11:00")
	m = applyMsg(t, m, ctrlKey('s'))
	if _, ok := m.formErrors[app.FieldEndTime]; !ok || len(m.formErrors) != 1 {
		t.Fatalf("expected only an end time error, got %#v", m.formErrors)
	}

	for range 5 {
		m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyBackspace})
	}
	m = typeText(t, m, "13:00")
	m = applyMsg(t, m, ctrlKey('s'))

	if m.mode != modeNone {
		t.Fatalf("expected form closed, status %q errors %#v", m.status, m.formErrors)
	}
	if got := orderedTitles(m.items); !sameTitles(got, "A(1)", "Lunch(2)") {
		t.Fatalf("unexpected items %v", got)
	}
	if m.items[m.selected].Title != "Lunch" || m.items[1].ActivityType != domain.ActivityBreak {
		t.Fatalf("unexpected created item %#v", m.items[m.selected])
	}
}

func TestModelEditorUpdatesAndCancels(t *testing.T) {
	b := newTestBoard(t, "trainer", "A")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, keyRune('e'))
	if m.inputs[0].Value() != "A" || m.inputs[2].Value() != "09:00" {
		t.Fatalf("expected prefilled form, got %q %q", m.inputs[0].Value(), m.inputs[2].Value())
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeNone || m.editor.IsOpen() {
		t.Fatal("expected esc to close editor")
	}

	m = applyMsg(t, m, keyRune('e'))
	m = typeText(t, m, "+")
	for range len(formFields) - 1 {
		m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	}
	m = typeText(t, m, "bring cards")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeNone {
		t.Fatalf("expected saved form, status %q", m.status)
	}
	if m.items[0].Title != "A+" || m.items[0].Notes != "bring cards" {
		t.Fatalf("unexpected updated item %#v", m.items[0])
	}
}

func TestModelDeleteConfirm(t *testing.T) {
	b := newTestBoard(t, "trainer", "A", "B", "C")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, keyRune('d'))
	if m.mode != modeConfirmDelete {
		t.Fatal("expected delete confirmation")
	}
	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeNone || len(m.items) != 3 {
		t.Fatalf("expected cancelled delete, items %d", len(m.items))
	}

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	if got := orderedTitles(m.items); !sameTitles(got, "A(1)", "C(2)") {
		t.Fatalf("unexpected items after delete %v", got)
	}
	if m.status != "deleted" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestModelIgnoresSecondSubmitWhileSaving(t *testing.T) {
	b := newTestBoard(t, "trainer", "A", "B")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, keyRune('e'))
	m = typeText(t, m, "+")
	updated, first := m.Update(ctrlKey('s'))
	m = updated.(Model)
	if first == nil || !m.saving {
		t.Fatalf("expected save dispatched, saving=%t", m.saving)
	}
	updated, second := m.Update(ctrlKey('s'))
	m = updated.(Model)
	if second != nil {
		t.Fatal("expected second submit ignored while saving")
	}
	if m.status != "save in progress" {
		t.Fatalf("unexpected status %q", m.status)
	}

	m = applyMsg(t, m, first())
	if m.saving || m.mode != modeNone {
		t.Fatalf("expected save finished, saving=%t mode=%v status=%q", m.saving, m.mode, m.status)
	}
	if m.items[0].Title != "A+" {
		t.Fatalf("unexpected saved item %#v", m.items[0])
	}
}

func TestModelBoardWaitsForDelete(t *testing.T) {
	b := newTestBoard(t, "trainer", "A", "B", "C")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, keyRune('d'))
	updated, del := m.Update(keyRune('y'))
	m = updated.(Model)
	if del == nil || !m.saving {
		t.Fatal("expected delete dispatched")
	}
	for _, msg := range []tea.Msg{keyRune(']'), keyRune('r'), keyRune('n'), keyRune('d')} {
		updated, cmd := m.Update(msg)
		m = updated.(Model)
		if cmd != nil || m.mode != modeNone {
			t.Fatalf("expected %v ignored while deleting", msg)
		}
		if m.status != "save in progress" {
			t.Fatalf("unexpected status %q after %v", m.status, msg)
		}
	}
	updated, _ = m.Update(tea.MouseClickMsg{X: 4, Y: listTop + 1, Button: tea.MouseLeft})
	m = updated.(Model)
	if m.drag.State() != app.DragIdle {
		t.Fatal("expected no drag while deleting")
	}

	m = applyMsg(t, m, del())
	if m.saving || m.status != "deleted" {
		t.Fatalf("expected delete finished, saving=%t status=%q", m.saving, m.status)
	}
	m.selected = 0
	m = applyMsg(t, m, keyRune(']'))
	if got := b.persistedTitles(t); !sameTitles(got, "C(1)", "B(2)") {
		t.Fatalf("unexpected persisted order %v", got)
	}
	if m.saving || m.status != "order saved" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestModelReloadSkippedWhileStoreBusy(t *testing.T) {
	b := newTestBoard(t, "trainer", "A", "B")
	m := loadReadyModel(t, b.model())
	m = applyMsg(t, m, loadedMsg{err: &app.FetchError{WorkshopID: "w1", Err: app.ErrMutationInFlight}})
	if m.err != nil || len(m.items) != 2 {
		t.Fatalf("expected board kept, err=%v items=%d", m.err, len(m.items))
	}
	if m.status != "save in progress, reload skipped" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestModelReadOnlyRoleCannotChangeAgenda(t *testing.T) {
	b := newTestBoard(t, "participant", "A", "B")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, keyRune(']'))
	if !strings.Contains(m.status, "participant") {
		t.Fatalf("expected read-only status, got %q", m.status)
	}
	for _, r := range []rune{'n', 'e', 'd'} {
		m = applyMsg(t, m, keyRune(r))
		if m.mode != modeNone {
			t.Fatalf("key %q opened mode %v for read-only role", r, m.mode)
		}
	}
	m = applyMsg(t, m, tea.MouseClickMsg{X: 4, Y: listTop + 1, Button: tea.MouseLeft})
	if m.drag.State() != app.DragIdle || m.selected != 1 {
		t.Fatalf("expected selection without drag, state %v selected %d", m.drag.State(), m.selected)
	}
	if b.client.reorders != 0 {
		t.Fatalf("expected no reorder calls, got %d", b.client.reorders)
	}
}

func TestModelCopyAndDetails(t *testing.T) {
	b := newTestBoard(t, "client", "Kickoff")
	m := loadReadyModel(t, b.model())

	m = applyMsg(t, m, keyRune('y'))
	if b.copied != "09:00-09:45 Kickoff (Session)" {
		t.Fatalf("unexpected clipboard text %q", b.copied)
	}
	m = applyMsg(t, m, keyRune('i'))
	if !m.showDetails {
		t.Fatal("expected details pane toggled on")
	}

	failing := loadReadyModel(t, b.model(WithClipboard(func(string) error { return errors.New("no display") })))
	failing = applyMsg(t, failing, keyRune('y'))
	if !strings.Contains(failing.status, "copy failed") {
		t.Fatalf("unexpected status %q", failing.status)
	}
}

func TestModelReloadKeepsSelection(t *testing.T) {
	b := newTestBoard(t, "trainer", "A", "B", "C")
	m := loadReadyModel(t, b.model())
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))

	if err := b.svc.SetAgendaItemOrder(context.Background(), m.items[2].ID, 1); err != nil {
		t.Fatalf("SetAgendaItemOrder() error = %v", err)
	}
	m = applyMsg(t, m, keyRune('r'))
	if got := orderedTitles(m.items); !sameTitles(got, "C(1)", "A(2)", "B(3)") {
		t.Fatalf("unexpected reloaded order %v", got)
	}
	if m.items[m.selected].Title != "C" {
		t.Fatalf("expected selection to follow C, got %q", m.items[m.selected].Title)
	}
	if m.status != "loaded 3 items" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestModelViewUsesMouseAndAltScreen(t *testing.T) {
	b := newTestBoard(t, "trainer", "A")
	m := loadReadyModel(t, b.model(WithShowDescription(true)))
	v := m.View()
	if v.Content == nil || v.MouseMode != tea.MouseModeCellMotion || !v.AltScreen {
		t.Fatalf("unexpected view settings %#v", v)
	}
	if got := NewModel(b.store, "w1").render(); got != "loading..." {
		t.Fatalf("expected loading view before size, got %q", got)
	}
}

func TestTruncateAndClamp(t *testing.T) {
	if got := truncate("agenda", 4); got != "age…" {
		t.Fatalf("truncate() = %q", got)
	}
	if got := truncate("ok", 4); got != "ok" {
		t.Fatalf("truncate() = %q", got)
	}
	if got := clamp(9, 0, 3); got != 3 {
		t.Fatalf("clamp() = %d", got)
	}
	if got := wrapIndex(-1, 4); got != 3 {
		t.Fatalf("wrapIndex() = %d", got)
	}
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 120, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = applyMsg(t, m, keyRune(r))
	}
	return m
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func ctrlKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}
