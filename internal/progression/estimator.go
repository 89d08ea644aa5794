// Package progression turns enrollments, statistics and day records into the
// values shown to the user.
package progression

import (
	"time"

	"alcyxob/healthera/internal/domain"
)

// pausedUnknownDuration is shown for a paused enrollment whose program has no usable duration.
const pausedUnknownDuration = 50

// Estimate derives a 0-100 progression from the enrollment's start date, its
// program's duration and its status, as of today. It never fails: a start
// date that does not parse yields 0.
func Estimate(e domain.Enrollment, today time.Time) int {
	switch e.Status {
	case domain.EnrollmentCompleted:
		return 100
	case domain.EnrollmentActive, domain.EnrollmentPaused:
	default:
		return 0
	}

	start, err := domain.ParseDate(e.StartDate)
	if err != nil {
		return 0
	}
	elapsed := domain.DaysBetween(start, today)
	if elapsed < 0 {
		elapsed = 0
	}

	duration := e.DurationDays()
	if duration <= 0 {
		if e.Status == domain.EnrollmentPaused {
			return pausedUnknownDuration
		}
		return 0
	}
	return domain.ClampPercent(elapsed * 100 / duration)
}

// Estimator is Estimate bound to a clock.
type Estimator struct {
	Now func() time.Time
}

// NewEstimator returns an Estimator reading the wall clock.
func NewEstimator() Estimator {
	return Estimator{Now: time.Now}
}

// Estimate applies the package-level Estimate at the estimator's current time.
// A zero Estimator falls back to the wall clock.
func (es Estimator) Estimate(e domain.Enrollment) int {
	now := time.Now
	if es.Now != nil {
		now = es.Now
	}
	return Estimate(e, now())
}
