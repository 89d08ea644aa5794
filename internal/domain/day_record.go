package domain

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayStatus values as computed by the server. Other values may still show up on the wire.
const (
	DayComplete = "COMPLETE"
	DayPartial  = "PARTIEL"
	DayNone     = "NON_FAIT"
)

// DayRecord is what a user ate and did on one calendar date of an enrollment.
// A nil MealIDs or ActivityIDs means nothing was recorded for that facet.
type DayRecord struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EnrollmentID     primitive.ObjectID `bson:"enrollmentId" json:"enrollmentId"`
	Date             string             `bson:"date" json:"date"` // YYYY-MM-DD
	MealIDs          []int              `bson:"mealIds,omitempty" json:"mealIds,omitempty"`
	ActivityIDs      []int              `bson:"activityIds,omitempty" json:"activityIds,omitempty"`
	CaloriesConsumed *int               `bson:"caloriesConsumed,omitempty" json:"caloriesConsumed,omitempty"`
	Status           string             `bson:"status,omitempty" json:"status,omitempty"`
	Weight           *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	Notes            *string            `bson:"notes,omitempty" json:"notes,omitempty"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DaySubmission is the single write that replaces the DayRecord of (EnrollmentID, Date).
type DaySubmission struct {
	EnrollmentID string   `json:"-"`
	Date         string   `json:"-"`
	MealIDs      []int    `json:"mealIds,omitempty"`
	ActivityIDs  []int    `json:"activityIds,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// NormalizeIDs turns a selection into a sorted set. An empty selection becomes absent.
func NormalizeIDs(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// Statistics is the server-computed aggregate for an enrollment.
// Clients treat it as a point-in-time snapshot.
type Statistics struct {
	EnrollmentID      string    `json:"enrollmentId"`
	GlobalProgression int       `json:"globalProgression"`
	MealRate          int       `json:"mealRate"`
	ActivityRate      int       `json:"activityRate"`
	DaysRecorded      int       `json:"daysRecorded"`
	ComputedAt        time.Time `json:"computedAt"`
}
