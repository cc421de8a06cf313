package common

import (
	"fmt"
	"slices"
	"time"

	"github.com/hylla/agenda/internal/domain"
)

// workshopDateLayout renders workshop dates on the wire.
const workshopDateLayout = "2006-01-02"

// FromDomainItem converts one domain item to its wire form.
func FromDomainItem(item domain.AgendaItem) AgendaItem {
	materials := slices.Clone(item.MaterialsNeeded)
	if materials == nil {
		materials = []string{}
	}
	return AgendaItem{
		ID:              item.ID,
		WorkshopID:      item.WorkshopID,
		Title:           item.Title,
		Description:     item.Description,
		ActivityType:    string(item.ActivityType),
		StartTime:       item.StartTime,
		EndTime:         item.EndTime,
		FacilitatorID:   item.FacilitatorID,
		FacilitatorName: item.FacilitatorName,
		OrderIndex:      item.OrderIndex,
		MaterialsNeeded: materials,
		Notes:           item.Notes,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

// FromDomainItems converts a list of items.
func FromDomainItems(items []domain.AgendaItem) []AgendaItem {
	out := make([]AgendaItem, 0, len(items))
	for _, it := range items {
		out = append(out, FromDomainItem(it))
	}
	return out
}

// Domain converts a wire item back into the domain model.
func (a AgendaItem) Domain() domain.AgendaItem {
	activity, _ := domain.NormalizeActivityType(a.ActivityType)
	return domain.AgendaItem{
		ID:              a.ID,
		WorkshopID:      a.WorkshopID,
		Title:           a.Title,
		Description:     a.Description,
		ActivityType:    activity,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		FacilitatorID:   a.FacilitatorID,
		FacilitatorName: a.FacilitatorName,
		OrderIndex:      a.OrderIndex,
		MaterialsNeeded: domain.NormalizeMaterials(a.MaterialsNeeded),
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// CreateRequestFromInput builds a POST body from domain input.
func CreateRequestFromInput(in domain.AgendaItemInput) CreateAgendaItemRequest {
	return CreateAgendaItemRequest{
		WorkshopID:      in.WorkshopID,
		Title:           in.Title,
		Description:     in.Description,
		ActivityType:    string(in.ActivityType),
		StartTime:       in.StartTime.String(),
		EndTime:         in.EndTime.String(),
		FacilitatorID:   in.FacilitatorID,
		FacilitatorName: in.FacilitatorName,
		OrderIndex:      in.OrderIndex,
		MaterialsNeeded: slices.Clone(in.MaterialsNeeded),
		Notes:           in.Notes,
	}
}

// Input parses a POST body into domain input. Call after validation.
func (r CreateAgendaItemRequest) Input() (domain.AgendaItemInput, error) {
	start, err := domain.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return domain.AgendaItemInput{}, err
	}
	end, err := domain.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return domain.AgendaItemInput{}, err
	}
	return domain.AgendaItemInput{
		WorkshopID:      r.WorkshopID,
		Title:           r.Title,
		Description:     r.Description,
		ActivityType:    domain.ActivityType(r.ActivityType),
		StartTime:       start,
		EndTime:         end,
		FacilitatorID:   r.FacilitatorID,
		FacilitatorName: r.FacilitatorName,
		OrderIndex:      r.OrderIndex,
		MaterialsNeeded: r.MaterialsNeeded,
		Notes:           r.Notes,
	}, nil
}

// UpdateRequestFromPatch builds a PUT body carrying changed fields only.
func UpdateRequestFromPatch(p domain.AgendaItemPatch) UpdateAgendaItemRequest {
	out := UpdateAgendaItemRequest{
		Title:           p.Title,
		Description:     p.Description,
		FacilitatorID:   p.FacilitatorID,
		FacilitatorName: p.FacilitatorName,
		MaterialsNeeded: p.MaterialsNeeded,
		Notes:           p.Notes,
	}
	if p.ActivityType != nil {
		v := string(*p.ActivityType)
		out.ActivityType = &v
	}
	if p.StartTime != nil {
		v := p.StartTime.String()
		out.StartTime = &v
	}
	if p.EndTime != nil {
		v := p.EndTime.String()
		out.EndTime = &v
	}
	return out
}

// Patch parses a PUT body into a domain patch. Call after validation.
func (r UpdateAgendaItemRequest) Patch() (domain.AgendaItemPatch, error) {
	out := domain.AgendaItemPatch{
		Title:           r.Title,
		Description:     r.Description,
		FacilitatorID:   r.FacilitatorID,
		FacilitatorName: r.FacilitatorName,
		MaterialsNeeded: r.MaterialsNeeded,
		Notes:           r.Notes,
	}
	if r.ActivityType != nil {
		v := domain.ActivityType(*r.ActivityType)
		out.ActivityType = &v
	}
	if r.StartTime != nil {
		v, err := domain.ParseTimeOfDay(*r.StartTime)
		if err != nil {
			return domain.AgendaItemPatch{}, err
		}
		out.StartTime = &v
	}
	if r.EndTime != nil {
		v, err := domain.ParseTimeOfDay(*r.EndTime)
		if err != nil {
			return domain.AgendaItemPatch{}, err
		}
		out.EndTime = &v
	}
	return out, nil
}

// FromDomainOrder converts order entries to wire form.
func FromDomainOrder(entries []domain.OrderEntry) []OrderEntry {
	out := make([]OrderEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, OrderEntry{ID: e.ID, OrderIndex: e.OrderIndex})
	}
	return out
}

// DomainOrder converts wire order entries to domain form.
func DomainOrder(entries []OrderEntry) []domain.OrderEntry {
	out := make([]domain.OrderEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.OrderEntry{ID: e.ID, OrderIndex: e.OrderIndex})
	}
	return out
}

// FromDomainWorkshop converts a workshop to wire form.
func FromDomainWorkshop(w domain.Workshop) Workshop {
	out := Workshop{
		ID:                      w.ID,
		Title:                   w.Title,
		Duration:                w.DurationMinutes,
		Location:                w.Location,
		PathwayTitle:            w.PathwayTitle,
		PathwayParticipantCount: w.PathwayParticipantCount,
	}
	if !w.Date.IsZero() {
		out.Date = w.Date.UTC().Format(workshopDateLayout)
	}
	return out
}

// Domain converts a wire workshop into the domain model.
func (w Workshop) Domain() (domain.Workshop, error) {
	var date time.Time
	if w.Date != "" {
		parsed, err := time.Parse(workshopDateLayout, w.Date)
		if err != nil {
			return domain.Workshop{}, fmt.Errorf("decode workshop date %q: %w", w.Date, err)
		}
		date = parsed
	}
	return domain.NewWorkshop(domain.WorkshopInput{
		ID:                      w.ID,
		Title:                   w.Title,
		Date:                    date,
		DurationMinutes:         w.Duration,
		Location:                w.Location,
		PathwayTitle:            w.PathwayTitle,
		PathwayParticipantCount: w.PathwayParticipantCount,
	})
}
