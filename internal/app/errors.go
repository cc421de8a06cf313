package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound         = errors.New("not found")
	ErrMutationInFlight = errors.New("another agenda change is still being saved")
	ErrInvalidReorder   = errors.New("invalid reorder request")
	ErrUnknownItem      = errors.New("unknown agenda item")
	ErrNoWorkshop       = errors.New("no workshop loaded")
)

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError reports a 4xx rejection from the agenda service.
type ValidationError struct {
	Status  int
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("request rejected (%d %s): %s", e.Status, e.Code, e.Message)
}

// Is lets a 404 rejection match ErrNotFound.
func (e *ValidationError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// ServerError reports a 5xx failure from the agenda service.
type ServerError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d %s): %s", e.Status, e.Code, e.Message)
}

// FetchError reports a failed agenda load. Local state is left untouched.
type FetchError struct {
	WorkshopID string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("load agenda for workshop %q: %v", e.WorkshopID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StaleStateError reports a rejected reorder. Reloaded tells whether local
// state was refreshed from the server or restored from the last persisted order.
type StaleStateError struct {
	WorkshopID string
	Reloaded   bool
	Err        error
}

func (e *StaleStateError) Error() string {
	how := "restored last saved order"
	if e.Reloaded {
		how = "reloaded from server"
	}
	return fmt.Sprintf("reorder for workshop %q failed, %s: %v", e.WorkshopID, how, e.Err)
}

func (e *StaleStateError) Unwrap() error { return e.Err }

// FieldError names one rejected editor field.
type FieldError struct {
	Field   string
	Message string
}

// FormError lists the editor fields blocking a submit.
type FormError struct {
	Fields []FieldError
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid agenda item: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the rejected fields.
func (e *FormError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
