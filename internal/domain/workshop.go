package domain

import (
	"strings"
	"time"
)

// Workshop is the read-only context an agenda belongs to.
type Workshop struct {
	ID                      string
	Title                   string
	Date                    time.Time
	DurationMinutes         int
	Location                string
	PathwayTitle            string
	PathwayParticipantCount int
}

type WorkshopInput struct {
	ID                      string
	Title                   string
	Date                    time.Time
	DurationMinutes         int
	Location                string
	PathwayTitle            string
	PathwayParticipantCount int
}

// NewWorkshop validates and builds one workshop. Date is truncated to the day.
func NewWorkshop(in WorkshopInput) (Workshop, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	if in.ID == "" {
		return Workshop{}, ErrInvalidWorkshopID
	}
	if in.Title == "" {
		return Workshop{}, ErrInvalidTitle
	}
	if in.DurationMinutes < 0 {
		return Workshop{}, ErrInvalidDuration
	}
	if in.PathwayParticipantCount < 0 {
		in.PathwayParticipantCount = 0
	}
	date := in.Date.UTC()
	if !date.IsZero() {
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	}
	return Workshop{
		ID:                      in.ID,
		Title:                   in.Title,
		Date:                    date,
		DurationMinutes:         in.DurationMinutes,
		Location:                strings.TrimSpace(in.Location),
		PathwayTitle:            strings.TrimSpace(in.PathwayTitle),
		PathwayParticipantCount: in.PathwayParticipantCount,
	}, nil
}
