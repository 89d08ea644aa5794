// Package enrollment decides what a user may do with an enrollment given its status.
// Transitions themselves belong to the server; this package only gates actions.
package enrollment

import (
	"alcyxob/healthera/internal/domain"
)

// BlockedError explains why an action is not permitted. Reason is user-facing.
type BlockedError struct {
	Status domain.EnrollmentStatus
	Reason string
}

func (e *BlockedError) Error() string {
	return e.Reason
}

// Reasons shown when an action is blocked.
const (
	ReasonUnavailable = "enrollment unavailable"
	ReasonPaused      = "program paused"
	ReasonCompleted   = "program finished"
	ReasonAbandoned   = "program abandoned"
	ReasonUnknown     = "unknown status"
	ReasonNoContent   = "program has no content"
)

func statusReason(s domain.EnrollmentStatus) string {
	switch s {
	case domain.EnrollmentActive:
		return ""
	case domain.EnrollmentPaused:
		return ReasonPaused
	case domain.EnrollmentCompleted:
		return ReasonCompleted
	case domain.EnrollmentAbandoned:
		return ReasonAbandoned
	}
	return ReasonUnknown
}

// CheckAdjustment returns nil when the enrollment's progression may be changed directly.
func CheckAdjustment(e *domain.Enrollment) error {
	if e == nil {
		return &BlockedError{Status: domain.EnrollmentUnknown, Reason: ReasonUnavailable}
	}
	if reason := statusReason(e.Status); reason != "" {
		return &BlockedError{Status: e.Status, Reason: reason}
	}
	return nil
}

// CheckSubmission returns nil when a day may be submitted for the enrollment:
// it must be active and its program must have at least one menu item or activity.
func CheckSubmission(e *domain.Enrollment) error {
	if err := CheckAdjustment(e); err != nil {
		return err
	}
	// Guard against malformed upstream data, not a state of its own.
	if !e.Program.HasContent() {
		return &BlockedError{Status: e.Status, Reason: ReasonNoContent}
	}
	return nil
}
