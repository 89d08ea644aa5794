package service

import (
	"alcyxob/healthera/internal/domain"
	"time"
)

// DeriveDayStatus labels a day from which facets were recorded.
func DeriveDayStatus(mealIDs, activityIDs []int) string {
	switch {
	case len(mealIDs) > 0 && len(activityIDs) > 0:
		return domain.DayComplete
	case len(mealIDs) > 0 || len(activityIDs) > 0:
		return domain.DayPartial
	default:
		return domain.DayNone
	}
}

// ComputeStatistics aggregates the day records of one enrollment.
//
// mealRate and activityRate are the share of the program's menu items and
// activities selected per recorded day. globalProgression credits a complete
// day fully and a partial day by half, over the program duration (or over the
// recorded days when the duration is unknown). A completed enrollment is 100.
// Returns nil when nothing has been recorded.
func ComputeStatistics(enrollment *domain.Enrollment, program *domain.Program, records []domain.DayRecord, now time.Time) *domain.Statistics {
	if enrollment == nil || len(records) == 0 {
		return nil
	}
	days := len(records)
	var meals, activities, halfDays int
	for _, r := range records {
		meals += len(domain.NormalizeIDs(r.MealIDs))
		activities += len(domain.NormalizeIDs(r.ActivityIDs))
		switch DeriveDayStatus(r.MealIDs, r.ActivityIDs) {
		case domain.DayComplete:
			halfDays += 2
		case domain.DayPartial:
			halfDays++
		}
	}

	stats := &domain.Statistics{
		EnrollmentID: enrollment.ID.Hex(),
		DaysRecorded: days,
		ComputedAt:   now.UTC(),
	}
	if program != nil {
		if n := len(program.MenuItems); n > 0 {
			stats.MealRate = domain.ClampPercent(meals * 100 / (days * n))
		}
		if n := len(program.Activities); n > 0 {
			stats.ActivityRate = domain.ClampPercent(activities * 100 / (days * n))
		}
	}

	span := days
	if program != nil && program.DurationDays > 0 {
		span = program.DurationDays
	}
	stats.GlobalProgression = domain.ClampPercent(halfDays * 50 / span)
	if enrollment.Status == domain.EnrollmentCompleted {
		stats.GlobalProgression = 100
	}
	return stats
}
