package progression

import (
	"fmt"
	"strings"
	"time"

	"alcyxob/healthera/internal/domain"
)

// Source tells where a displayed progression came from.
type Source string

const (
	SourceAuthoritative Source = "authoritative"
	SourceEstimated     Source = "estimated"
)

// Display is the progression shown for one enrollment, identical on every screen.
type Display struct {
	Percent      int    `json:"percent"`
	MealRate     *int   `json:"mealRate,omitempty"`
	ActivityRate *int   `json:"activityRate,omitempty"`
	Source       Source `json:"source"`
	Summary      string `json:"summary"`
}

// Reconcile picks the progression to display for an enrollment.
//
// Server statistics win only when their global progression is strictly
// positive. A zero is read as "not computed yet" rather than "no progress":
// statistics objects exist with an unset aggregate before the first day is
// recorded, and showing that zero would hide the elapsed-time estimate. This
// is a deliberate heuristic and it can mask a genuine authoritative zero.
func Reconcile(stats *domain.Statistics, e domain.Enrollment, today time.Time) Display {
	if stats != nil && stats.GlobalProgression > 0 {
		percent := domain.ClampPercent(stats.GlobalProgression)
		meal := domain.ClampPercent(stats.MealRate)
		activity := domain.ClampPercent(stats.ActivityRate)
		return Display{
			Percent:      percent,
			MealRate:     &meal,
			ActivityRate: &activity,
			Source:       SourceAuthoritative,
			Summary:      fmt.Sprintf("%d%% • %d%% meals • %d%% activities", percent, meal, activity),
		}
	}

	percent := Estimate(e, today)
	var items, activities int
	if e.Program != nil {
		items = len(e.Program.MenuItems)
		activities = len(e.Program.Activities)
	}
	return Display{
		Percent: percent,
		Source:  SourceEstimated,
		Summary: fmt.Sprintf("%d%% • %d menu items • %d activities (estimate)", percent, items, activities),
	}
}

// DayDisplay is what the detail screen shows for one date.
type DayDisplay struct {
	SelectedMealIDs     []int  `json:"selectedMealIds"`
	SelectedActivityIDs []int  `json:"selectedActivityIds"`
	CaloriesConsumed    *int   `json:"caloriesConsumed,omitempty"`
	Label               string `json:"label"`
}

// NoRecordLabel is shown for a date without any DayRecord.
const NoRecordLabel = "no activity recorded"

// ReconcileDay turns an optional DayRecord into the day's selections and label.
func ReconcileDay(rec *domain.DayRecord) DayDisplay {
	if rec == nil {
		return DayDisplay{
			SelectedMealIDs:     []int{},
			SelectedActivityIDs: []int{},
			Label:               NoRecordLabel,
		}
	}
	meals := append([]int{}, rec.MealIDs...)
	activities := append([]int{}, rec.ActivityIDs...)
	return DayDisplay{
		SelectedMealIDs:     meals,
		SelectedActivityIDs: activities,
		CaloriesConsumed:    rec.CaloriesConsumed,
		Label:               DayLabel(rec.Status),
	}
}

// DayLabel renders a day status. Every input has a label.
func DayLabel(status string) string {
	switch strings.ToUpper(status) {
	case domain.DayComplete:
		return "complete"
	case domain.DayPartial:
		return "partial"
	case domain.DayNone:
		return "none"
	case "":
		return "undefined"
	}
	return "unknown: " + status
}

// SelectionSummary describes a selection that has not been submitted yet.
func SelectionSummary(p *domain.Program, mealIDs, activityIDs []int) string {
	if len(mealIDs) == 0 && len(activityIDs) == 0 {
		return "nothing selected"
	}
	consumed, burned := 0, 0
	for _, id := range mealIDs {
		if m, ok := p.MenuItemByID(id); ok {
			consumed += m.Calories
		}
	}
	for _, id := range activityIDs {
		if a, ok := p.ActivityByID(id); ok {
			burned += a.CaloriesBurned
		}
	}
	label := "partial day (unsaved)"
	if len(mealIDs) > 0 && len(activityIDs) > 0 {
		label = "complete day (unsaved)"
	}
	return fmt.Sprintf("%s • %d kcal consumed | %d kcal burned", label, consumed, burned)
}
