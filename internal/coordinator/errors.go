package coordinator

import "errors"

// Kinds of submission failure. Use errors.Is against these.
var (
	// status or content gate failed, nothing sent
	ErrNotAllowed = errors.New("submission not allowed")
	// empty submission, nothing sent
	ErrNothingSelected   = errors.New("nothing selected")
	ErrSubmissionPending = errors.New("a submission is already pending for this day")
	// transport or server error, never retried
	ErrSubmitFailed = errors.New("submission failed")
)

// SubmitError carries the kind of failure, a user-facing reason and the underlying cause, if any.
type SubmitError struct {
	Kind   error
	Reason string
	Err    error
}

func (e *SubmitError) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Reason
}

func (e *SubmitError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func notAllowed(reason string) error {
	return &SubmitError{Kind: ErrNotAllowed, Reason: reason}
}

func failed(err error) error {
	return &SubmitError{Kind: ErrSubmitFailed, Reason: err.Error(), Err: err}
}
