package agendaapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hylla/agenda/internal/adapters/server/common"
	"github.com/hylla/agenda/internal/adapters/server/httpapi"
	"github.com/hylla/agenda/internal/adapters/storage/sqlite"
	"github.com/hylla/agenda/internal/app"
	"github.com/hylla/agenda/internal/domain"
)

var _ app.AgendaClient = (*Client)(nil)

// newLiveClient wires a Client to the real HTTP handler over an in-memory database.
func newLiveClient(t *testing.T) (*Client, string) {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	n := 0
	svc := app.NewService(repo, func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}, func() time.Time {
		return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	}, app.ServiceConfig{})
	w, err := svc.CreateWorkshop(context.Background(), domain.WorkshopInput{
		Title:           "Feedback Loops",
		Date:            time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 180,
	})
	require.NoError(t, err)

	server := httptest.NewServer(httpapi.NewHandler(common.NewAppServiceAdapter(svc)))
	t.Cleanup(server.Close)
	client, err := New(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return client, w.ID
}

func createItem(t *testing.T, c *Client, workshopID, title string) domain.AgendaItem {
	t.Helper()
	item, err := c.Create(context.Background(), domain.AgendaItemInput{
		WorkshopID:   workshopID,
		Title:        title,
		ActivityType: domain.ActivitySession,
		StartTime:    domain.MustTimeOfDay("09:00"),
		EndTime:      domain.MustTimeOfDay("09:30"),
	})
	require.NoError(t, err)
	return item
}

func TestClientRoundTripsAgainstHandler(t *testing.T) {
	ctx := context.Background()
	c, workshopID := newLiveClient(t)

	a := createItem(t, c, workshopID, "A")
	b := createItem(t, c, workshopID, "B")
	cc := createItem(t, c, workshopID, "C")
	require.Equal(t, 3, cc.OrderIndex)

	require.NoError(t, c.Reorder(ctx, workshopID, []domain.OrderEntry{
		{ID: cc.ID, OrderIndex: 1},
		{ID: a.ID, OrderIndex: 2},
		{ID: b.ID, OrderIndex: 3},
	}))
	items, err := c.List(ctx, workshopID)
	require.NoError(t, err)
	require.Equal(t, []string{"C", "A", "B"}, []string{items[0].Title, items[1].Title, items[2].Title})
	require.Equal(t, domain.MustTimeOfDay("09:30"), items[0].EndTime)

	notes := "bring sticky notes"
	updated, err := c.Update(ctx, a.ID, domain.AgendaItemPatch{Notes: &notes})
	require.NoError(t, err)
	require.Equal(t, notes, updated.Notes)
	require.Equal(t, "A", updated.Title)

	require.NoError(t, c.SetOrder(ctx, b.ID, 1))
	require.NoError(t, c.Delete(ctx, cc.ID))
	items, err = c.List(ctx, workshopID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, b.ID, items[0].ID)
	require.Equal(t, 2, items[1].OrderIndex)

	w, err := c.GetWorkshop(ctx, workshopID)
	require.NoError(t, err)
	require.Equal(t, "Feedback Loops", w.Title)
	require.Equal(t, 180, w.DurationMinutes)
}

func TestClientMapsErrors(t *testing.T) {
	ctx := context.Background()
	c, workshopID := newLiveClient(t)

	err := c.Reorder(ctx, workshopID, []domain.OrderEntry{{ID: "ghost", OrderIndex: 1}})
	var vErr *app.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, http.StatusBadRequest, vErr.Status)
	require.Equal(t, "invalid_reorder", vErr.Code)

	_, err = c.List(ctx, "missing")
	require.ErrorIs(t, err, app.ErrNotFound)
	require.False(t, IsRetryable(err))
}

func TestClientMapsServerAndNetworkErrors(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"code":"upstream","message":"db offline"}}`))
	}))
	c, err := New(server.URL+"/api/", WithHTTPClient(server.Client()))
	require.NoError(t, err)

	err = c.Delete(ctx, "x")
	var sErr *app.ServerError
	require.ErrorAs(t, err, &sErr)
	require.Equal(t, http.StatusBadGateway, sErr.Status)
	require.Equal(t, "db offline", sErr.Message)
	require.True(t, IsRetryable(err))

	server.Close()
	err = c.Delete(ctx, "x")
	var nErr *app.NetworkError
	require.ErrorAs(t, err, &nErr)
	require.Equal(t, "delete agenda item", nErr.Op)
	require.True(t, IsRetryable(err))
}

func TestClientEscapesPathSegments(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()
	c, err := New(server.URL, WithHTTPClient(server.Client()), WithTimeout(time.Second))
	require.NoError(t, err)

	require.NoError(t, c.Delete(context.Background(), "a/b"))
	require.Equal(t, "/workshop-agenda/a%2Fb", gotPath)
}

func TestNewLeavesTimeoutToTransport(t *testing.T) {
	c, err := New("http://127.0.0.1:8080/api")
	require.NoError(t, err)
	require.Zero(t, c.httpClient.Timeout)

	c, err = New("http://127.0.0.1:8080/api", WithTimeout(0))
	require.NoError(t, err)
	require.Zero(t, c.httpClient.Timeout)

	c, err = New("http://127.0.0.1:8080/api", WithTimeout(3*time.Second))
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, c.httpClient.Timeout)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("not a url")
	require.Error(t, err)
	_, err = New("")
	require.Error(t, err)
}

func TestStoreOverClient(t *testing.T) {
	ctx := context.Background()
	c, workshopID := newLiveClient(t)
	for _, title := range []string{"A", "B", "C"} {
		createItem(t, c, workshopID, title)
	}

	store := app.NewStore(c)
	require.NoError(t, store.Load(ctx, workshopID))
	_, applied, err := store.ApplyReorder(store.Items()[2].ID, store.Items()[0].ID)
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, store.CommitReorder(ctx))

	fresh, err := c.List(ctx, workshopID)
	require.NoError(t, err)
	require.Equal(t, "C", fresh[0].Title)
}
