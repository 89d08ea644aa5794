package service

import (
	"alcyxob/healthera/internal/cache"
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(user.Email) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

type fakeProgramRepo struct {
	mu       sync.Mutex
	programs map[primitive.ObjectID]domain.Program
}

func newFakeProgramRepo(programs ...domain.Program) *fakeProgramRepo {
	r := &fakeProgramRepo{programs: map[primitive.ObjectID]domain.Program{}}
	for _, p := range programs {
		r.programs[p.ID] = p
	}
	return r
}

func (r *fakeProgramRepo) Create(_ context.Context, p *domain.Program) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	r.programs[p.ID] = *p
	return p.ID, nil
}

func (r *fakeProgramRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.programs[id]; ok {
		return &p, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProgramRepo) List(ctx context.Context) ([]domain.Program, error) {
	return r.filter(func(domain.Program) bool { return true }), nil
}

func (r *fakeProgramRepo) ListByObjective(_ context.Context, o domain.Objective) ([]domain.Program, error) {
	return r.filter(func(p domain.Program) bool { return p.Objective == o }), nil
}

func (r *fakeProgramRepo) ListByMenuCategory(_ context.Context, c domain.MealCategory) ([]domain.Program, error) {
	return r.filter(func(p domain.Program) bool { return len(p.Dishes(c)) > 0 }), nil
}

func (r *fakeProgramRepo) filter(keep func(domain.Program) bool) []domain.Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Program{}
	for _, p := range r.programs {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *fakeProgramRepo) SetImageObjectKey(_ context.Context, id primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.programs[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.ImageObjectKey = key
	r.programs[id] = p
	return nil
}

type fakeEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[primitive.ObjectID]domain.Enrollment
}

func newFakeEnrollmentRepo(enrollments ...domain.Enrollment) *fakeEnrollmentRepo {
	r := &fakeEnrollmentRepo{enrollments: map[primitive.ObjectID]domain.Enrollment{}}
	for _, e := range enrollments {
		r.enrollments[e.ID] = e
	}
	return r
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, e *domain.Enrollment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now()
	stored := *e
	stored.Program = nil
	r.enrollments[e.ID] = stored
	return e.ID, nil
}

func (r *fakeEnrollmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.enrollments[id]; ok {
		return &e, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEnrollmentRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Enrollment{}
	for _, e := range r.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.EnrollmentStatus, endDate *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok || e.Status != from {
		return repository.ErrStatusChanged
	}
	if to == domain.EnrollmentActive {
		for _, other := range r.enrollments {
			if other.ID != id && other.UserID == e.UserID && other.Status == domain.EnrollmentActive {
				return repository.ErrDuplicate
			}
		}
	}
	e.Status = to
	e.EndDate = endDate
	if to == domain.EnrollmentCompleted {
		e.Progression = 100
	}
	r.enrollments[id] = e
	return nil
}

func (r *fakeEnrollmentRepo) UpdateProgression(_ context.Context, id primitive.ObjectID, progression int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok || e.Status != domain.EnrollmentActive {
		return repository.ErrStatusChanged
	}
	e.Progression = progression
	r.enrollments[id] = e
	return nil
}

type fakeDayRepo struct {
	mu       sync.Mutex
	records  map[string]domain.DayRecord
	replaces int
}

func newFakeDayRepo() *fakeDayRepo {
	return &fakeDayRepo{records: map[string]domain.DayRecord{}}
}

func dayKey(id primitive.ObjectID, date string) string { return id.Hex() + "/" + date }

func (r *fakeDayRepo) Replace(_ context.Context, rec *domain.DayRecord) (*domain.DayRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaces++
	stored := *rec
	if prev, ok := r.records[dayKey(rec.EnrollmentID, rec.Date)]; ok {
		stored.ID = prev.ID
	} else {
		stored.ID = primitive.NewObjectID()
	}
	r.records[dayKey(rec.EnrollmentID, rec.Date)] = stored
	return &stored, nil
}

func (r *fakeDayRepo) Get(_ context.Context, id primitive.ObjectID, date string) (*domain.DayRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[dayKey(id, date)]; ok {
		return &rec, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDayRepo) ListByEnrollment(_ context.Context, id primitive.ObjectID) ([]domain.DayRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.DayRecord{}
	for _, rec := range r.records {
		if rec.EnrollmentID == id {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type fakeStatsCache struct {
	mu          sync.Mutex
	entries     map[string]domain.Statistics
	invalidated []string
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{entries: map[string]domain.Statistics{}}
}

func (c *fakeStatsCache) Get(_ context.Context, id string) (*domain.Statistics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.entries[id]; ok {
		return &s, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *fakeStatsCache) Set(_ context.Context, s *domain.Statistics) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[s.EnrollmentID] = *s
	return nil
}

func (c *fakeStatsCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type fakeFileStorage struct {
	deleted []string
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	return "https://s3.test/upload/" + key + "?ct=" + contentType, nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.test/get/" + key, nil
}

func (f *fakeFileStorage) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func sampleProgram() domain.Program {
	return domain.Program{
		ID:           primitive.NewObjectID(),
		Name:         "Lean 30",
		DurationDays: 30,
		Objective:    domain.ObjectiveWeightLoss,
		MenuItems: []domain.MenuItem{
			{ID: 1, Name: "Oats", Calories: 350, Category: domain.MealBreakfast},
			{ID: 2, Name: "Salad", Calories: 420, Category: domain.MealLunch},
		},
		Activities: []domain.Activity{
			{ID: 10, Name: "Run", DurationMinutes: 30, CaloriesBurned: 300},
			{ID: 11, Name: "Yoga", DurationMinutes: 45, CaloriesBurned: 150},
		},
	}
}
