package repository

import (
	"alcyxob/healthera/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrDuplicate     = RepositoryError("duplicate key")
	ErrUpdateFailed  = RepositoryError("update failed")
	ErrStatusChanged = RepositoryError("status changed concurrently")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProgramRepository defines the interface for the program catalog.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	List(ctx context.Context) ([]domain.Program, error)
	ListByObjective(ctx context.Context, objective domain.Objective) ([]domain.Program, error)
	ListByMenuCategory(ctx context.Context, category domain.MealCategory) ([]domain.Program, error)
	SetImageObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error
}

// EnrollmentRepository defines the interface for a user's enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Enrollment, error)
	// UpdateStatus moves an enrollment from one status to another; it fails with
	// ErrStatusChanged when the stored status is no longer `from`. Completion sets progression to 100.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.EnrollmentStatus, endDate *string) error
	// UpdateProgression only applies while the enrollment is active.
	UpdateProgression(ctx context.Context, id primitive.ObjectID, progression int) error
}

// DayRecordRepository stores at most one DayRecord per (enrollment, date).
type DayRecordRepository interface {
	// Replace writes the record for its (EnrollmentID, Date), overwriting any previous one.
	Replace(ctx context.Context, record *domain.DayRecord) (*domain.DayRecord, error)
	Get(ctx context.Context, enrollmentID primitive.ObjectID, date string) (*domain.DayRecord, error)
	ListByEnrollment(ctx context.Context, enrollmentID primitive.ObjectID) ([]domain.DayRecord, error)
}
