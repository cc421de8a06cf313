package domain

import (
	"slices"
	"strings"
	"time"
)

type ActivityType string

const (
	ActivitySession      ActivityType = "session"
	ActivityPresentation ActivityType = "presentation"
	ActivityBreak        ActivityType = "break"
	ActivityActivity     ActivityType = "activity"
	ActivityWorkshop     ActivityType = "workshop"
	ActivityGroupWork    ActivityType = "group_work"
	ActivityAssessment   ActivityType = "assessment"
	ActivityFeedback     ActivityType = "feedback"
)

var validActivityTypes = []ActivityType{
	ActivitySession,
	ActivityPresentation,
	ActivityBreak,
	ActivityActivity,
	ActivityWorkshop,
	ActivityGroupWork,
	ActivityAssessment,
	ActivityFeedback,
}

// ActivityTypes returns every supported activity type in display order.
func ActivityTypes() []ActivityType {
	return slices.Clone(validActivityTypes)
}

// NormalizeActivityType canonicalizes raw input and reports whether it is supported.
func NormalizeActivityType(raw string) (ActivityType, bool) {
	t := ActivityType(strings.ToLower(strings.TrimSpace(raw)))
	t = ActivityType(strings.ReplaceAll(string(t), "-", "_"))
	return t, slices.Contains(validActivityTypes, t)
}

// Label renders the activity type for people.
func (t ActivityType) Label() string {
	s := strings.ReplaceAll(string(t), "_", " ")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type AgendaItem struct {
	ID              string
	WorkshopID      string
	Title           string
	Description     string
	ActivityType    ActivityType
	StartTime       TimeOfDay
	EndTime         TimeOfDay
	FacilitatorID   string
	FacilitatorName string
	OrderIndex      int
	MaterialsNeeded []string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AgendaItemInput struct {
	ID              string
	WorkshopID      string
	Title           string
	Description     string
	ActivityType    ActivityType
	StartTime       TimeOfDay
	EndTime         TimeOfDay
	FacilitatorID   string
	FacilitatorName string
	OrderIndex      int
	MaterialsNeeded []string
	Notes           string
}

// NewAgendaItem validates input and builds one agenda item.
func NewAgendaItem(in AgendaItemInput, now time.Time) (AgendaItem, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.WorkshopID = strings.TrimSpace(in.WorkshopID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.FacilitatorID = strings.TrimSpace(in.FacilitatorID)
	in.FacilitatorName = strings.TrimSpace(in.FacilitatorName)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.ID == "" {
		return AgendaItem{}, ErrInvalidID
	}
	if in.WorkshopID == "" {
		return AgendaItem{}, ErrInvalidWorkshopID
	}
	if in.Title == "" {
		return AgendaItem{}, ErrInvalidTitle
	}
	activity, ok := NormalizeActivityType(string(in.ActivityType))
	if !ok {
		return AgendaItem{}, ErrInvalidActivityType
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return AgendaItem{}, ErrInvalidTimeOfDay
	}
	if in.OrderIndex < 1 {
		return AgendaItem{}, ErrInvalidOrderIndex
	}

	ts := now.UTC()
	return AgendaItem{
		ID:              in.ID,
		WorkshopID:      in.WorkshopID,
		Title:           in.Title,
		Description:     in.Description,
		ActivityType:    activity,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		FacilitatorID:   in.FacilitatorID,
		FacilitatorName: in.FacilitatorName,
		OrderIndex:      in.OrderIndex,
		MaterialsNeeded: NormalizeMaterials(in.MaterialsNeeded),
		Notes:           in.Notes,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}, nil
}

// AgendaItemPatch carries changed fields only. Nil means unchanged.
type AgendaItemPatch struct {
	Title           *string
	Description     *string
	ActivityType    *ActivityType
	StartTime       *TimeOfDay
	EndTime         *TimeOfDay
	FacilitatorID   *string
	FacilitatorName *string
	MaterialsNeeded *[]string
	Notes           *string
}

// IsEmpty reports whether the patch changes nothing.
func (p AgendaItemPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.ActivityType == nil &&
		p.StartTime == nil && p.EndTime == nil && p.FacilitatorID == nil &&
		p.FacilitatorName == nil && p.MaterialsNeeded == nil && p.Notes == nil
}

// Apply applies the patch to the item. Order is never changed by a patch.
func (i *AgendaItem) Apply(p AgendaItemPatch, now time.Time) error {
	next := *i
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return ErrInvalidTitle
		}
		next.Title = title
	}
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	if p.ActivityType != nil {
		activity, ok := NormalizeActivityType(string(*p.ActivityType))
		if !ok {
			return ErrInvalidActivityType
		}
		next.ActivityType = activity
	}
	if p.StartTime != nil {
		if p.StartTime.IsZero() {
			return ErrInvalidTimeOfDay
		}
		next.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		if p.EndTime.IsZero() {
			return ErrInvalidTimeOfDay
		}
		next.EndTime = *p.EndTime
	}
	if p.FacilitatorID != nil {
		next.FacilitatorID = strings.TrimSpace(*p.FacilitatorID)
	}
	if p.FacilitatorName != nil {
		next.FacilitatorName = strings.TrimSpace(*p.FacilitatorName)
	}
	if p.MaterialsNeeded != nil {
		next.MaterialsNeeded = NormalizeMaterials(*p.MaterialsNeeded)
	}
	if p.Notes != nil {
		next.Notes = strings.TrimSpace(*p.Notes)
	}
	next.UpdatedAt = now.UTC()
	*i = next
	return nil
}

// Duration returns the scheduled length, or zero for an inverted range.
func (i AgendaItem) Duration() time.Duration {
	if i.StartTime.IsZero() || i.EndTime.IsZero() || !i.StartTime.Before(i.EndTime) {
		return 0
	}
	return time.Duration(i.EndTime.Minutes()-i.StartTime.Minutes()) * time.Minute
}

// TimeRangePolicy decides whether an item may end at or before it starts.
type TimeRangePolicy string

const (
	TimeRangeReject TimeRangePolicy = "reject"
	TimeRangeAccept TimeRangePolicy = "accept"
)

// CheckTimeRange enforces the policy for one start/end pair.
func (p TimeRangePolicy) CheckTimeRange(start, end TimeOfDay) error {
	if p == TimeRangeAccept {
		return nil
	}
	if start.IsZero() || end.IsZero() {
		return nil
	}
	if !start.Before(end) {
		return ErrInvalidTimeRange
	}
	return nil
}

// NormalizeMaterials trims entries, drops empties and removes duplicates keeping first occurrence.
func NormalizeMaterials(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		m := strings.TrimSpace(raw)
		if m == "" {
			continue
		}
		key := strings.ToLower(m)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}

// SplitMaterials parses a comma separated materials list.
func SplitMaterials(raw string) []string {
	return NormalizeMaterials(strings.Split(raw, ","))
}
