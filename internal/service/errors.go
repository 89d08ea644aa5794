package service

import "errors"

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrValidationFailed     = errors.New("validation failed")

	ErrProgramNotFound      = errors.New("program not found")
	ErrImageStorageDisabled = errors.New("image storage is not configured")
	ErrDishNotFound         = errors.New("dish not found")

	ErrEnrollmentNotFound     = errors.New("enrollment not found")
	ErrEnrollmentAccessDenied = errors.New("enrollment belongs to another user")
	ErrActiveEnrollmentExists = errors.New("user already has an active enrollment")
	ErrEnrollmentNotActive    = errors.New("enrollment is not active")
	ErrInvalidTransition      = errors.New("status transition not allowed")
	ErrProgramHasNoContent    = errors.New("program has no menu items or activities")

	ErrInvalidDate           = errors.New("date must be formatted YYYY-MM-DD")
	ErrUnknownItem           = errors.New("selection references an item outside the program")
	ErrDayRecordNotFound     = errors.New("no record for this date")
	ErrStatisticsUnavailable = errors.New("no statistics recorded yet")
)
