package domain

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentStatus is the lifecycle state of an enrollment.
// Raw values coming from the wire go through ParseEnrollmentStatus exactly once.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentPaused    EnrollmentStatus = "paused"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentAbandoned EnrollmentStatus = "abandoned"
	EnrollmentUnknown   EnrollmentStatus = "unknown"
)

// legacy values still sent by older servers
var enrollmentStatusAliases = map[string]EnrollmentStatus{
	"active":    EnrollmentActive,
	"en_cours":  EnrollmentActive,
	"en-cours":  EnrollmentActive,
	"paused":    EnrollmentPaused,
	"pause":     EnrollmentPaused,
	"completed": EnrollmentCompleted,
	"termine":   EnrollmentCompleted,
	"abandoned": EnrollmentAbandoned,
	"abandonne": EnrollmentAbandoned,
}

// ParseEnrollmentStatus maps a loosely cased wire value onto the closed set of statuses.
// Anything unrecognized becomes EnrollmentUnknown.
func ParseEnrollmentStatus(raw string) EnrollmentStatus {
	if s, ok := enrollmentStatusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return EnrollmentUnknown
}

// IsTerminal reports whether no further transition can leave s.
func (s EnrollmentStatus) IsTerminal() bool {
	return s == EnrollmentCompleted || s == EnrollmentAbandoned
}

// UnmarshalJSON normalizes the status at the decoding boundary.
func (s *EnrollmentStatus) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		*s = EnrollmentUnknown
		return nil
	}
	*s = ParseEnrollmentStatus(*raw)
	return nil
}

// CanTransition reports whether the server may move an enrollment from one status to another.
func CanTransition(from, to EnrollmentStatus) bool {
	switch from {
	case EnrollmentActive:
		return to == EnrollmentPaused || to == EnrollmentCompleted || to == EnrollmentAbandoned
	case EnrollmentPaused:
		return to == EnrollmentActive || to == EnrollmentCompleted || to == EnrollmentAbandoned
	}
	return false
}

// Enrollment is a user's instance of a Program.
type Enrollment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ProgramID   primitive.ObjectID `bson:"programId" json:"programId"`
	Program     *Program           `bson:"-" json:"program,omitempty"` // Resolved by the server on reads
	StartDate   string             `bson:"startDate" json:"startDate"` // YYYY-MM-DD, kept raw
	EndDate     *string            `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Status      EnrollmentStatus   `bson:"status" json:"status"`
	Progression int                `bson:"progression" json:"progression"` // 0-100
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DurationDays is the declared duration of the resolved program, 0 when unknown.
func (e *Enrollment) DurationDays() int {
	if e == nil || e.Program == nil {
		return 0
	}
	return e.Program.DurationDays
}

// ClampPercent bounds a progression value to [0,100].
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
