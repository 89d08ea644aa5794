package service

import (
	"alcyxob/healthera/internal/cache"
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/repository"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrackingService owns enrollments after creation: status, progression, day records and statistics.
// Every method checks that the enrollment belongs to userID.
type TrackingService interface {
	GetEnrollment(ctx context.Context, userID, enrollmentID primitive.ObjectID) (*domain.Enrollment, error)
	ListEnrollments(ctx context.Context, userID primitive.ObjectID) ([]domain.Enrollment, error)
	ChangeStatus(ctx context.Context, userID, enrollmentID primitive.ObjectID, to domain.EnrollmentStatus) (*domain.Enrollment, error)
	UpdateProgression(ctx context.Context, userID, enrollmentID primitive.ObjectID, progression int) (*domain.Enrollment, error)
	SubmitDay(ctx context.Context, userID, enrollmentID primitive.ObjectID, sub domain.DaySubmission) (*domain.DayRecord, error)
	GetDay(ctx context.Context, userID, enrollmentID primitive.ObjectID, date string) (*domain.DayRecord, error)
	GetStatistics(ctx context.Context, userID, enrollmentID primitive.ObjectID) (*domain.Statistics, error)
}

// trackingService implements the TrackingService interface.
type trackingService struct {
	enrollmentRepo repository.EnrollmentRepository
	programRepo    repository.ProgramRepository
	dayRepo        repository.DayRecordRepository
	statsCache     cache.StatisticsCache
	now            func() time.Time
}

// NewTrackingService creates a new instance of trackingService. A nil statsCache disables caching.
func NewTrackingService(enrollmentRepo repository.EnrollmentRepository, programRepo repository.ProgramRepository, dayRepo repository.DayRecordRepository, statsCache cache.StatisticsCache) TrackingService {
	if statsCache == nil {
		statsCache = cache.NewNoopStatisticsCache()
	}
	return &trackingService{
		enrollmentRepo: enrollmentRepo,
		programRepo:    programRepo,
		dayRepo:        dayRepo,
		statsCache:     statsCache,
		now:            time.Now,
	}
}

// GetEnrollment returns the enrollment with its program embedded.
func (s *trackingService) GetEnrollment(ctx context.Context, userID, enrollmentID primitive.ObjectID) (*domain.Enrollment, error) {
	enrollment, err := s.ownedEnrollment(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := s.attachProgram(ctx, enrollment, nil); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// ListEnrollments returns every enrollment of the user, newest first, programs embedded.
func (s *trackingService) ListEnrollments(ctx context.Context, userID primitive.ObjectID) ([]domain.Enrollment, error) {
	enrollments, err := s.enrollmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	programs := map[primitive.ObjectID]*domain.Program{}
	for i := range enrollments {
		if err := s.attachProgram(ctx, &enrollments[i], programs); err != nil {
			return nil, err
		}
	}
	return enrollments, nil
}

// ChangeStatus applies a lifecycle transition. Terminal transitions stamp the end date.
func (s *trackingService) ChangeStatus(ctx context.Context, userID, enrollmentID primitive.ObjectID, to domain.EnrollmentStatus) (*domain.Enrollment, error) {
	enrollment, err := s.ownedEnrollment(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	from := enrollment.Status
	if !domain.CanTransition(from, to) {
		return nil, ErrInvalidTransition
	}

	var endDate *string
	if to.IsTerminal() {
		today := domain.FormatDate(s.now())
		endDate = &today
	}
	err = s.enrollmentRepo.UpdateStatus(ctx, enrollmentID, from, to, endDate)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrActiveEnrollmentExists
		case errors.Is(err, repository.ErrStatusChanged):
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	s.invalidateStatistics(ctx, enrollmentID)
	log.Printf("INFO: Enrollment %s moved from %s to %s", enrollmentID.Hex(), from, to)
	return s.GetEnrollment(ctx, userID, enrollmentID)
}

// UpdateProgression overrides the stored progression of an active enrollment, clamped to [0,100].
func (s *trackingService) UpdateProgression(ctx context.Context, userID, enrollmentID primitive.ObjectID, progression int) (*domain.Enrollment, error) {
	enrollment, err := s.ownedEnrollment(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != domain.EnrollmentActive {
		return nil, ErrEnrollmentNotActive
	}
	if err := s.enrollmentRepo.UpdateProgression(ctx, enrollmentID, domain.ClampPercent(progression)); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrEnrollmentNotActive
		}
		return nil, err
	}
	return s.GetEnrollment(ctx, userID, enrollmentID)
}

// SubmitDay replaces the record of (enrollment, date). The server derives the day
// status and calories consumed from the program's items.
func (s *trackingService) SubmitDay(ctx context.Context, userID, enrollmentID primitive.ObjectID, sub domain.DaySubmission) (*domain.DayRecord, error) {
	date, err := domain.ParseDate(sub.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	enrollment, err := s.GetEnrollment(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != domain.EnrollmentActive {
		return nil, ErrEnrollmentNotActive
	}
	program := enrollment.Program
	if !program.HasContent() {
		return nil, ErrProgramHasNoContent
	}

	mealIDs := domain.NormalizeIDs(sub.MealIDs)
	activityIDs := domain.NormalizeIDs(sub.ActivityIDs)
	calories := 0
	for _, id := range mealIDs {
		item, ok := program.MenuItemByID(id)
		if !ok {
			return nil, ErrUnknownItem
		}
		calories += item.Calories
	}
	for _, id := range activityIDs {
		if _, ok := program.ActivityByID(id); !ok {
			return nil, ErrUnknownItem
		}
	}

	record := &domain.DayRecord{
		EnrollmentID: enrollmentID,
		Date:         date.Format(domain.DateLayout),
		MealIDs:      mealIDs,
		ActivityIDs:  activityIDs,
		Status:       DeriveDayStatus(mealIDs, activityIDs),
		Weight:       sub.Weight,
		Notes:        sub.Notes,
	}
	if mealIDs != nil {
		record.CaloriesConsumed = &calories
	}

	stored, err := s.dayRepo.Replace(ctx, record)
	if err != nil {
		return nil, err
	}
	s.invalidateStatistics(ctx, enrollmentID)
	return stored, nil
}

// GetDay returns the record of one date, or ErrDayRecordNotFound.
func (s *trackingService) GetDay(ctx context.Context, userID, enrollmentID primitive.ObjectID, date string) (*domain.DayRecord, error) {
	d, err := domain.ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := s.ownedEnrollment(ctx, userID, enrollmentID); err != nil {
		return nil, err
	}
	record, err := s.dayRepo.Get(ctx, enrollmentID, d.Format(domain.DateLayout))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayRecordNotFound
		}
		return nil, err
	}
	return record, nil
}

// GetStatistics returns the cached aggregate or recomputes it from the day records.
// ErrStatisticsUnavailable means nothing has been recorded yet.
func (s *trackingService) GetStatistics(ctx context.Context, userID, enrollmentID primitive.ObjectID) (*domain.Statistics, error) {
	enrollment, err := s.GetEnrollment(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}

	stats, err := s.statsCache.Get(ctx, enrollmentID.Hex())
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("WARN: Statistics cache read failed for %s: %v", enrollmentID.Hex(), err)
	}

	records, err := s.dayRepo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	stats = ComputeStatistics(enrollment, enrollment.Program, records, s.now())
	if stats == nil {
		return nil, ErrStatisticsUnavailable
	}
	if err := s.statsCache.Set(ctx, stats); err != nil {
		log.Printf("WARN: Statistics cache write failed for %s: %v", enrollmentID.Hex(), err)
	}
	return stats, nil
}

func (s *trackingService) ownedEnrollment(ctx context.Context, userID, enrollmentID primitive.ObjectID) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, ErrEnrollmentAccessDenied
	}
	return enrollment, nil
}

// attachProgram resolves enrollment.Program, sharing lookups through seen when non-nil.
// A program deleted from the catalog leaves Program nil.
func (s *trackingService) attachProgram(ctx context.Context, enrollment *domain.Enrollment, seen map[primitive.ObjectID]*domain.Program) error {
	if p, ok := seen[enrollment.ProgramID]; ok {
		enrollment.Program = p
		return nil
	}
	program, err := s.programRepo.GetByID(ctx, enrollment.ProgramID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err != nil {
		log.Printf("WARN: Program %s of enrollment %s not found", enrollment.ProgramID.Hex(), enrollment.ID.Hex())
		program = nil
	}
	if seen != nil {
		seen[enrollment.ProgramID] = program
	}
	enrollment.Program = program
	return nil
}

func (s *trackingService) invalidateStatistics(ctx context.Context, enrollmentID primitive.ObjectID) {
	if err := s.statsCache.Invalidate(ctx, enrollmentID.Hex()); err != nil {
		log.Printf("WARN: Statistics cache invalidation failed for %s: %v", enrollmentID.Hex(), err)
	}
}
