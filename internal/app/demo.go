package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hylla/agenda/internal/domain"
)

// DemoWorkshopID identifies the workshop created by SeedDemo.
const DemoWorkshopID = "demo-workshop"

// demoAgenda is the sample agenda used for local trials.
var demoAgenda = []struct {
	title       string
	activity    domain.ActivityType
	start, end  string
	facilitator string
	description string
	materials   []string
}{
	{"Welcome and check-in", domain.ActivitySession, "09:00", "09:20", "Alex", "Round of names and one expectation each.", nil},
	{"Why feedback stalls", domain.ActivityPresentation, "09:20", "10:00", "Alex", "Short talk on the **three most common** blockers.", []string{"slides", "clicker"}},
	{"Coffee", domain.ActivityBreak, "10:00", "10:15", "", "", nil},
	{"Practice triads", domain.ActivityGroupWork, "10:15", "11:15", "Sam", "Groups of three rotate giver, receiver and observer.", []string{"role cards", "timer"}},
	{"Debrief", domain.ActivityFeedback, "11:15", "11:45", "Sam", "", []string{"flip chart"}},
	{"Close", domain.ActivitySession, "11:45", "12:00", "Alex", "", nil},
}

// SeedDemo creates the demo workshop and its agenda when they do not exist yet.
// It is safe to run repeatedly.
func SeedDemo(ctx context.Context, svc *Service, day time.Time) (domain.Workshop, error) {
	w, err := svc.GetWorkshop(ctx, DemoWorkshopID)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		w, err = svc.CreateWorkshop(ctx, domain.WorkshopInput{
			ID:                      DemoWorkshopID,
			Title:                   "Giving Useful Feedback",
			Date:                    day,
			DurationMinutes:         180,
			Location:                "Room 2",
			PathwayTitle:            "Team Leads 2026",
			PathwayParticipantCount: 14,
		})
		if err != nil {
			return domain.Workshop{}, fmt.Errorf("create demo workshop: %w", err)
		}
	default:
		return domain.Workshop{}, fmt.Errorf("get demo workshop: %w", err)
	}

	existing, err := svc.ListAgendaItems(ctx, w.ID)
	if err != nil {
		return domain.Workshop{}, fmt.Errorf("list demo agenda: %w", err)
	}
	if len(existing) > 0 {
		return w, nil
	}
	for _, it := range demoAgenda {
		if _, err := svc.CreateAgendaItem(ctx, domain.AgendaItemInput{
			WorkshopID:      w.ID,
			Title:           it.title,
			ActivityType:    it.activity,
			StartTime:       domain.MustTimeOfDay(it.start),
			EndTime:         domain.MustTimeOfDay(it.end),
			FacilitatorName: it.facilitator,
			Description:     it.description,
			MaterialsNeeded: it.materials,
		}); err != nil {
			return domain.Workshop{}, fmt.Errorf("create demo item %q: %w", it.title, err)
		}
	}
	return w, nil
}
