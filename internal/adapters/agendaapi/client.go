// Package agendaapi implements the agenda REST client used by the TUI store.
package agendaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hylla/agenda/internal/adapters/server/common"
	"github.com/hylla/agenda/internal/app"
	"github.com/hylla/agenda/internal/domain"
)

// maxErrorBodyBytes caps how much of an error response is read.
const maxErrorBodyBytes = 64 << 10

// Client talks to the agenda REST API. Requests are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures one Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient = &http.Client{Timeout: d, Transport: cl.httpClient.Transport}
		}
	}
}

// WithLogger enables debug request logging.
func WithLogger(l *log.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New constructs a Client rooted at baseURL, for example http://127.0.0.1:8080/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid agenda api url %q", baseURL)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches one workshop's agenda items.
func (c *Client) List(ctx context.Context, workshopID string) ([]domain.AgendaItem, error) {
	var out common.AgendaListResponse
	if err := c.do(ctx, "list agenda", http.MethodGet, c.path("workshop-agenda", "workshop", workshopID), nil, &out); err != nil {
		return nil, err
	}
	items := make([]domain.AgendaItem, 0, len(out.AgendaItems))
	for _, item := range out.AgendaItems {
		items = append(items, item.Domain())
	}
	return items, nil
}

// Create posts one new agenda item and returns the server's record.
func (c *Client) Create(ctx context.Context, in domain.AgendaItemInput) (domain.AgendaItem, error) {
	var out common.AgendaItem
	body := common.CreateRequestFromInput(in)
	if err := c.do(ctx, "create agenda item", http.MethodPost, c.path("workshop-agenda"), body, &out); err != nil {
		return domain.AgendaItem{}, err
	}
	return out.Domain(), nil
}

// Update sends a partial update for one item.
func (c *Client) Update(ctx context.Context, id string, patch domain.AgendaItemPatch) (domain.AgendaItem, error) {
	var out common.AgendaItem
	body := common.UpdateRequestFromPatch(patch)
	if err := c.do(ctx, "update agenda item", http.MethodPut, c.path("workshop-agenda", id), body, &out); err != nil {
		return domain.AgendaItem{}, err
	}
	return out.Domain(), nil
}

// Delete removes one item.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete agenda item", http.MethodDelete, c.path("workshop-agenda", id), nil, nil)
}

// Reorder replaces a workshop's full order.
func (c *Client) Reorder(ctx context.Context, workshopID string, entries []domain.OrderEntry) error {
	body := common.ReorderRequest{AgendaItems: common.FromDomainOrder(entries)}
	return c.do(ctx, "reorder agenda", http.MethodPut, c.path("workshop-agenda", "workshop", workshopID, "reorder"), body, nil)
}

// SetOrder moves one item to orderIndex.
func (c *Client) SetOrder(ctx context.Context, id string, orderIndex int) error {
	body := common.SetOrderRequest{OrderIndex: orderIndex}
	return c.do(ctx, "set agenda item order", http.MethodPut, c.path("workshop-agenda", id, "order"), body, nil)
}

// GetWorkshop fetches one workshop's context.
func (c *Client) GetWorkshop(ctx context.Context, id string) (domain.Workshop, error) {
	var out common.Workshop
	if err := c.do(ctx, "get workshop", http.MethodGet, c.path("workshops", id), nil, &out); err != nil {
		return domain.Workshop{}, err
	}
	w, err := out.Domain()
	if err != nil {
		return domain.Workshop{}, fmt.Errorf("decode workshop: %w", err)
	}
	return w, nil
}

// path joins escaped segments onto the base URL.
func (c *Client) path(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

// do performs one JSON request and maps failures into app error types.
func (c *Client) do(ctx context.Context, op, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.debug(op, method, target, 0, started)
		return &app.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.debug(op, method, target, resp.StatusCode, started)

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &app.ServerError{
			Status:  resp.StatusCode,
			Code:    "decode_error",
			Message: fmt.Sprintf("%s: decode response: %v", op, err),
		}
	}
	return nil
}

func (c *Client) debug(op, method, target string, status int, started time.Time) {
	if c.logger == nil {
		return
	}
	c.logger.Debug("agenda api request", "op", op, "method", method, "url", target, "status", status, "elapsed", time.Since(started))
}

// errorEnvelope mirrors the server's {"error":{...}} body.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Hint    string `json:"hint"`
	} `json:"error"`
}

// statusError converts a 4xx/5xx response into ValidationError or ServerError.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	var env errorEnvelope
	code, message := "", strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Code != "" {
		code, message = env.Error.Code, env.Error.Message
		if env.Error.Hint != "" {
			message += " (" + env.Error.Hint + ")"
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return &app.ServerError{Status: resp.StatusCode, Code: code, Message: message}
	}
	return &app.ValidationError{Status: resp.StatusCode, Code: code, Message: message}
}

// IsRetryable reports whether err is a transport or 5xx failure the user may retry by hand.
func IsRetryable(err error) bool {
	var netErr *app.NetworkError
	var srvErr *app.ServerError
	return errors.As(err, &netErr) || errors.As(err, &srvErr)
}
