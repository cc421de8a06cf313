package app

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/hylla/agenda/internal/domain"
)

// Editor field names, matching the wire names of the agenda item.
const (
	FieldTitle           = "title"
	FieldActivityType    = "activity_type"
	FieldStartTime       = "start_time"
	FieldEndTime         = "end_time"
	FieldFacilitatorName = "facilitator_name"
	FieldDescription     = "description"
	FieldMaterials       = "materials_needed"
	FieldNotes           = "notes"
)

// ItemDraft holds raw form values.
type ItemDraft struct {
	Title           string `json:"title" validate:"notblank"`
	ActivityType    string `json:"activity_type" validate:"notblank,activity_type"`
	StartTime       string `json:"start_time" validate:"notblank,time_of_day"`
	EndTime         string `json:"end_time" validate:"notblank,time_of_day"`
	FacilitatorName string `json:"facilitator_name"`
	Description     string `json:"description"`
	Materials       string `json:"materials_needed"`
	Notes           string `json:"notes"`
}

// DraftFromItem fills a draft from an existing item.
func DraftFromItem(item domain.AgendaItem) ItemDraft {
	return ItemDraft{
		Title:           item.Title,
		ActivityType:    string(item.ActivityType),
		StartTime:       item.StartTime.String(),
		EndTime:         item.EndTime.String(),
		FacilitatorName: item.FacilitatorName,
		Description:     item.Description,
		Materials:       strings.Join(item.MaterialsNeeded, ", "),
		Notes:           item.Notes,
	}
}

// EditorSaver persists editor results and refreshes the displayed list.
type EditorSaver interface {
	Create(ctx context.Context, in domain.AgendaItemInput) (domain.AgendaItem, error)
	Update(ctx context.Context, id string, patch domain.AgendaItemPatch) (domain.AgendaItem, error)
}

// ItemEditor is the create/edit form state for one agenda item.
type ItemEditor struct {
	saver    EditorSaver
	policy   domain.TimeRangePolicy
	open     bool
	existing *domain.AgendaItem

	Draft ItemDraft
}

// NewItemEditor constructs a new value for this package.
func NewItemEditor(saver EditorSaver, policy domain.TimeRangePolicy) *ItemEditor {
	if policy == "" {
		policy = domain.TimeRangeReject
	}
	return &ItemEditor{saver: saver, policy: policy}
}

// OpenNew opens an empty form for a new item.
func (e *ItemEditor) OpenNew() {
	e.open = true
	e.existing = nil
	e.Draft = ItemDraft{ActivityType: string(domain.ActivitySession)}
}

// OpenEdit opens the form prefilled from item.
func (e *ItemEditor) OpenEdit(item domain.AgendaItem) {
	e.open = true
	copied := cloneItem(item)
	e.existing = &copied
	e.Draft = DraftFromItem(item)
}

// Close discards the draft.
func (e *ItemEditor) Close() {
	e.open = false
	e.existing = nil
	e.Draft = ItemDraft{}
}

// IsOpen reports whether a draft is being edited.
func (e *ItemEditor) IsOpen() bool { return e.open }

// Editing returns the item under edit, if any.
func (e *ItemEditor) Editing() (domain.AgendaItem, bool) {
	if e.existing == nil {
		return domain.AgendaItem{}, false
	}
	return *e.existing, true
}

// Validate checks required fields and the time range policy and returns
// the parsed input.
func (e *ItemEditor) Validate() (domain.AgendaItemInput, error) {
	if err := ValidateStruct(e.Draft); err != nil {
		return domain.AgendaItemInput{}, err
	}
	activity, _ := domain.NormalizeActivityType(e.Draft.ActivityType)
	start, _ := domain.ParseTimeOfDay(e.Draft.StartTime)
	end, _ := domain.ParseTimeOfDay(e.Draft.EndTime)
	if err := e.policy.CheckTimeRange(start, end); err != nil {
		return domain.AgendaItemInput{}, &FormError{Fields: []FieldError{{Field: FieldEndTime, Message: "must be after the start time"}}}
	}
	return domain.AgendaItemInput{
		Title:           strings.TrimSpace(e.Draft.Title),
		Description:     strings.TrimSpace(e.Draft.Description),
		ActivityType:    activity,
		StartTime:       start,
		EndTime:         end,
		FacilitatorName: strings.TrimSpace(e.Draft.FacilitatorName),
		MaterialsNeeded: domain.SplitMaterials(e.Draft.Materials),
		Notes:           strings.TrimSpace(e.Draft.Notes),
	}, nil
}

// Submit validates and saves. Invalid input makes no call and keeps the
// editor open; success closes it.
func (e *ItemEditor) Submit(ctx context.Context) (domain.AgendaItem, error) {
	if !e.open {
		return domain.AgendaItem{}, errors.New("editor is not open")
	}
	in, err := e.Validate()
	if err != nil {
		return domain.AgendaItem{}, err
	}

	var saved domain.AgendaItem
	if e.existing != nil {
		patch := diffPatch(*e.existing, in)
		if patch.IsEmpty() {
			saved = *e.existing
			e.Close()
			return saved, nil
		}
		saved, err = e.saver.Update(ctx, e.existing.ID, patch)
	} else {
		saved, err = e.saver.Create(ctx, in)
	}
	if err != nil {
		return domain.AgendaItem{}, err
	}
	e.Close()
	return saved, nil
}

// diffPatch keeps only fields that differ from the original item.
func diffPatch(orig domain.AgendaItem, in domain.AgendaItemInput) domain.AgendaItemPatch {
	var p domain.AgendaItemPatch
	if in.Title != orig.Title {
		p.Title = &in.Title
	}
	if in.Description != orig.Description {
		p.Description = &in.Description
	}
	if in.ActivityType != orig.ActivityType {
		p.ActivityType = &in.ActivityType
	}
	if in.StartTime != orig.StartTime {
		p.StartTime = &in.StartTime
	}
	if in.EndTime != orig.EndTime {
		p.EndTime = &in.EndTime
	}
	if in.FacilitatorName != orig.FacilitatorName {
		p.FacilitatorName = &in.FacilitatorName
	}
	if !slices.Equal(in.MaterialsNeeded, orig.MaterialsNeeded) {
		p.MaterialsNeeded = &in.MaterialsNeeded
	}
	if in.Notes != orig.Notes {
		p.Notes = &in.Notes
	}
	return p
}
