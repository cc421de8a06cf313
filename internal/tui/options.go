package tui

import (
	"context"

	"github.com/hylla/agenda/internal/app"
	"github.com/hylla/agenda/internal/domain"
)

// WorkshopLookupFunc fetches the workshop shown in the header.
type WorkshopLookupFunc func(context.Context, string) (domain.Workshop, error)

// ClipboardFunc writes text to the system clipboard.
type ClipboardFunc func(string) error

type Option func(*Model)

// WithSession sets the signed-in user and branding.
func WithSession(s app.Session) Option {
	return func(m *Model) {
		m.session = s
	}
}

// WithWorkshopLookup enables the workshop header line.
func WithWorkshopLookup(fn WorkshopLookupFunc) Option {
	return func(m *Model) {
		m.lookupWorkshop = fn
	}
}

// WithTimeRangePolicy controls whether the editor accepts end <= start.
func WithTimeRangePolicy(p domain.TimeRangePolicy) Option {
	return func(m *Model) {
		m.editor = app.NewItemEditor(m.store, p)
	}
}

// WithShowDescription toggles the detail pane at startup.
func WithShowDescription(show bool) Option {
	return func(m *Model) {
		m.showDetails = show
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn ClipboardFunc) Option {
	return func(m *Model) {
		if fn != nil {
			m.copyText = fn
		}
	}
}
