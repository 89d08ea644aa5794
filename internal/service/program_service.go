package service

import (
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/repository"
	"alcyxob/healthera/internal/storage"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageUpload is what an admin needs to PUT a program image straight to object storage.
type ImageUpload struct {
	UploadURL string
	ObjectKey string
	ExpiresAt time.Time
}

type ProgramService interface {
	ListPrograms(ctx context.Context) ([]domain.Program, error)
	ListProgramsByObjective(ctx context.Context, objective domain.Objective) ([]domain.Program, error)
	GetProgram(ctx context.Context, programID primitive.ObjectID) (*domain.Program, error)
	CreateProgram(ctx context.Context, program *domain.Program) (*domain.Program, error)
	CreateImageUpload(ctx context.Context, programID primitive.ObjectID, contentType string) (*ImageUpload, error)
	Enroll(ctx context.Context, userID, programID primitive.ObjectID, startDate string) (*domain.Enrollment, error)
}

// programService implements the ProgramService interface.
type programService struct {
	programRepo    repository.ProgramRepository
	enrollmentRepo repository.EnrollmentRepository
	fileStorage    storage.FileStorage // nil when S3 is not configured
	now            func() time.Time
}

// NewProgramService creates a new instance of programService. fileStorage may be nil.
func NewProgramService(programRepo repository.ProgramRepository, enrollmentRepo repository.EnrollmentRepository, fileStorage storage.FileStorage) ProgramService {
	return &programService{
		programRepo:    programRepo,
		enrollmentRepo: enrollmentRepo,
		fileStorage:    fileStorage,
		now:            time.Now,
	}
}

func (s *programService) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	programs, err := s.programRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.resolveImageURLs(ctx, programs)
	return programs, nil
}

func (s *programService) ListProgramsByObjective(ctx context.Context, objective domain.Objective) ([]domain.Program, error) {
	if !objective.IsValid() {
		return nil, ErrValidationFailed
	}
	programs, err := s.programRepo.ListByObjective(ctx, objective)
	if err != nil {
		return nil, err
	}
	s.resolveImageURLs(ctx, programs)
	return programs, nil
}

func (s *programService) GetProgram(ctx context.Context, programID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	s.resolveImageURL(ctx, program)
	return program, nil
}

// CreateProgram validates and stores a catalog entry. Item IDs must be unique within each list.
func (s *programService) CreateProgram(ctx context.Context, program *domain.Program) (*domain.Program, error) {
	if program == nil || program.Name == "" || program.DurationDays <= 0 || !program.Objective.IsValid() {
		return nil, ErrValidationFailed
	}
	seen := map[int]bool{}
	for _, m := range program.MenuItems {
		if seen[m.ID] || m.Calories < 0 {
			return nil, ErrValidationFailed
		}
		seen[m.ID] = true
	}
	seen = map[int]bool{}
	for _, a := range program.Activities {
		if seen[a.ID] || a.CaloriesBurned < 0 {
			return nil, ErrValidationFailed
		}
		seen[a.ID] = true
	}
	program.ImageObjectKey = ""

	programID, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}
	return s.programRepo.GetByID(ctx, programID)
}

// CreateImageUpload reserves a fresh object key for the program image and presigns its upload.
// The previous image, if any, is deleted on a best-effort basis.
func (s *programService) CreateImageUpload(ctx context.Context, programID primitive.ObjectID, contentType string) (*ImageUpload, error) {
	if s.fileStorage == nil {
		return nil, ErrImageStorageDisabled
	}
	program, err := s.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	objectKey, err := storage.ProgramImageKey(programID.Hex(), contentType)
	if err != nil {
		return nil, ErrValidationFailed
	}

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	if err := s.programRepo.SetImageObjectKey(ctx, programID, objectKey); err != nil {
		return nil, err
	}
	if program.ImageObjectKey != "" {
		if err := s.fileStorage.DeleteObject(ctx, program.ImageObjectKey); err != nil {
			log.Printf("WARN: Could not delete replaced image %s of program %s: %v", program.ImageObjectKey, programID.Hex(), err)
		}
	}
	return &ImageUpload{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		ExpiresAt: s.now().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

// Enroll starts a new active enrollment. A user may only have one active enrollment at a time.
// An empty startDate means today.
func (s *programService) Enroll(ctx context.Context, userID, programID primitive.ObjectID, startDate string) (*domain.Enrollment, error) {
	if startDate == "" {
		startDate = domain.FormatDate(s.now())
	} else if _, err := domain.ParseDate(startDate); err != nil {
		return nil, ErrInvalidDate
	}

	program, err := s.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}

	existing, err := s.enrollmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.Status == domain.EnrollmentActive {
			return nil, ErrActiveEnrollmentExists
		}
	}

	enrollment := &domain.Enrollment{
		UserID:      userID,
		ProgramID:   programID,
		StartDate:   startDate,
		Status:      domain.EnrollmentActive,
		Progression: 0,
	}
	enrollmentID, err := s.enrollmentRepo.Create(ctx, enrollment)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrActiveEnrollmentExists
		}
		return nil, err
	}
	enrollment.ID = enrollmentID
	enrollment.Program = program
	log.Printf("INFO: User %s enrolled in program %s (enrollment %s)", userID.Hex(), programID.Hex(), enrollmentID.Hex())
	return enrollment, nil
}

func (s *programService) resolveImageURLs(ctx context.Context, programs []domain.Program) {
	for i := range programs {
		s.resolveImageURL(ctx, &programs[i])
	}
}

func (s *programService) resolveImageURL(ctx context.Context, program *domain.Program) {
	if s.fileStorage == nil || program == nil || program.ImageObjectKey == "" {
		return
	}
	u, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, program.ImageObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		log.Printf("WARN: No image URL for program %s: %v", program.ID.Hex(), err)
		return
	}
	program.ImageURL = u
}
