package api

import (
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "api-test-secret"

type stubAuthService struct{}

func (stubAuthService) Register(_ context.Context, reg service.Registration) (*domain.User, error) {
	if reg.Email == "taken@example.com" {
		return nil, service.ErrUserAlreadyExists
	}
	return &domain.User{ID: primitive.NewObjectID(), LastName: reg.LastName, FirstName: reg.FirstName, Email: reg.Email, Role: domain.RoleUser}, nil
}

func (stubAuthService) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, service.ErrAuthenticationFailed
}

func (stubAuthService) GetJWTSecret() string { return testSecret }

type stubProgramService struct {
	created *domain.Program
}

func (s *stubProgramService) ListPrograms(context.Context) ([]domain.Program, error) {
	return []domain.Program{{ID: primitive.NewObjectID(), Name: "Lean 30"}}, nil
}

func (s *stubProgramService) ListProgramsByObjective(_ context.Context, o domain.Objective) ([]domain.Program, error) {
	if !o.IsValid() {
		return nil, service.ErrValidationFailed
	}
	return []domain.Program{}, nil
}

func (s *stubProgramService) GetProgram(context.Context, primitive.ObjectID) (*domain.Program, error) {
	return nil, service.ErrProgramNotFound
}

func (s *stubProgramService) CreateProgram(_ context.Context, p *domain.Program) (*domain.Program, error) {
	s.created = p
	p.ID = primitive.NewObjectID()
	return p, nil
}

func (s *stubProgramService) CreateImageUpload(context.Context, primitive.ObjectID, string) (*service.ImageUpload, error) {
	return nil, service.ErrImageStorageDisabled
}

func (s *stubProgramService) Enroll(context.Context, primitive.ObjectID, primitive.ObjectID, string) (*domain.Enrollment, error) {
	return nil, service.ErrActiveEnrollmentExists
}

type stubDishService struct {
	known domain.Dish
}

func (s stubDishService) ListDishes(_ context.Context, category string) ([]domain.Dish, error) {
	if _, ok := domain.ParseMealCategory(category); !ok {
		return nil, service.ErrValidationFailed
	}
	return []domain.Dish{s.known}, nil
}

func (s stubDishService) GetDish(_ context.Context, id string) (*domain.Dish, error) {
	if _, _, err := domain.ParseDishID(id); err != nil {
		return nil, service.ErrValidationFailed
	}
	if id != s.known.ID {
		return nil, service.ErrDishNotFound
	}
	return &s.known, nil
}

var testDish = func() domain.Dish {
	programID := primitive.NewObjectID()
	return domain.Dish{
		ID:          domain.DishID(programID, 1),
		ProgramID:   programID,
		ProgramName: "Lean 30",
		Item:        domain.MenuItem{ID: 1, Name: "Oats", Calories: 350, Category: domain.MealBreakfast},
	}
}()

type stubTrackingService struct {
	stats        *domain.Statistics
	day          *domain.DayRecord
	submitErr    error
	lastSubmit   domain.DaySubmission
	lastStatus   domain.EnrollmentStatus
	lastProgress int
}

func (s *stubTrackingService) GetEnrollment(context.Context, primitive.ObjectID, primitive.ObjectID) (*domain.Enrollment, error) {
	return nil, service.ErrEnrollmentAccessDenied
}

func (s *stubTrackingService) ListEnrollments(context.Context, primitive.ObjectID) ([]domain.Enrollment, error) {
	return []domain.Enrollment{}, nil
}

func (s *stubTrackingService) ChangeStatus(_ context.Context, _, id primitive.ObjectID, to domain.EnrollmentStatus) (*domain.Enrollment, error) {
	s.lastStatus = to
	return &domain.Enrollment{ID: id, Status: to}, nil
}

func (s *stubTrackingService) UpdateProgression(_ context.Context, _, id primitive.ObjectID, p int) (*domain.Enrollment, error) {
	s.lastProgress = p
	return &domain.Enrollment{ID: id, Status: domain.EnrollmentActive, Progression: domain.ClampPercent(p)}, nil
}

func (s *stubTrackingService) SubmitDay(_ context.Context, _, id primitive.ObjectID, sub domain.DaySubmission) (*domain.DayRecord, error) {
	s.lastSubmit = sub
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &domain.DayRecord{EnrollmentID: id, Date: sub.Date, MealIDs: sub.MealIDs, Status: domain.DayPartial}, nil
}

func (s *stubTrackingService) GetDay(context.Context, primitive.ObjectID, primitive.ObjectID, string) (*domain.DayRecord, error) {
	if s.day == nil {
		return nil, service.ErrDayRecordNotFound
	}
	return s.day, nil
}

func (s *stubTrackingService) GetStatistics(context.Context, primitive.ObjectID, primitive.ObjectID) (*domain.Statistics, error) {
	if s.stats == nil {
		return nil, service.ErrStatisticsUnavailable
	}
	return s.stats, nil
}

func newTestRouter(programs *stubProgramService, tracking *stubTrackingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, testSecret, stubAuthService{}, programs, stubDishService{known: testDish}, tracking)
	return router
}

func tokenFor(t *testing.T, role domain.Role, secret string, ttl time.Duration) string {
	t.Helper()
	id := primitive.NewObjectID().Hex()
	claims := &service.Claims{
		UserID: id,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(&stubProgramService{}, &stubTrackingService{})

	w := doRequest(router, http.MethodGet, "/api/v1/programs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/programs", tokenFor(t, domain.RoleUser, "other-secret", time.Hour), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/programs", tokenFor(t, domain.RoleUser, testSecret, -time.Minute), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")

	w = doRequest(router, http.MethodGet, "/api/v1/programs", tokenFor(t, domain.RoleUser, testSecret, time.Hour), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lean 30")
}

func TestRegister(t *testing.T) {
	router := newTestRouter(&stubProgramService{}, &stubTrackingService{})
	body := map[string]string{"lastName": "Martin", "firstName": "Sam", "email": "sam@example.com", "password": "password123"}

	w := doRequest(router, http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	body["email"] = "taken@example.com"
	w = doRequest(router, http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	delete(body, "firstName")
	w = doRequest(router, http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProgramRequiresAdmin(t *testing.T) {
	programs := &stubProgramService{}
	router := newTestRouter(programs, &stubTrackingService{})
	body := CreateProgramRequest{Name: "Lean 30", DurationDays: 30, Objective: domain.ObjectiveWeightLoss}

	w := doRequest(router, http.MethodPost, "/api/v1/programs", tokenFor(t, domain.RoleUser, testSecret, time.Hour), body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, programs.created)

	w = doRequest(router, http.MethodPost, "/api/v1/programs", tokenFor(t, domain.RoleAdmin, testSecret, time.Hour), body)
	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, programs.created)
	assert.Equal(t, 30, programs.created.DurationDays)
}

func TestProgramErrorMapping(t *testing.T) {
	router := newTestRouter(&stubProgramService{}, &stubTrackingService{})
	user := tokenFor(t, domain.RoleUser, testSecret, time.Hour)
	admin := tokenFor(t, domain.RoleAdmin, testSecret, time.Hour)
	id := primitive.NewObjectID().Hex()

	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/api/v1/programs/not-an-id", user, nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/api/v1/programs/"+id, user, nil).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/api/v1/programs/objective/bulk", user, nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/api/v1/programs/objective/endurance", user, nil).Code)
	assert.Equal(t, http.StatusConflict, doRequest(router, http.MethodPost, "/api/v1/programs/"+id+"/enroll", user, nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(router, http.MethodPost, "/api/v1/programs/"+id+"/image-upload-url", admin, ImageUploadRequest{ContentType: "image/png"}).Code)
}

func TestDishRoutes(t *testing.T) {
	router := newTestRouter(&stubProgramService{}, &stubTrackingService{})
	user := tokenFor(t, domain.RoleUser, testSecret, time.Hour)

	assert.Equal(t, http.StatusUnauthorized, doRequest(router, http.MethodGet, "/api/v1/dishes", "", nil).Code)

	w := doRequest(router, http.MethodGet, "/api/v1/dishes?category=petit-dejeuner", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dishes []domain.Dish
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dishes))
	require.Len(t, dishes, 1)
	assert.Equal(t, testDish.ID, dishes[0].ID)

	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/api/v1/dishes?category=brunch", user, nil).Code)

	w = doRequest(router, http.MethodGet, "/api/v1/dishes/"+testDish.ID, user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Oats")

	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/api/v1/dishes/"+domain.DishID(primitive.NewObjectID(), 1), user, nil).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/api/v1/dishes/oats", user, nil).Code)
}

func TestEnrollmentAccessDenied(t *testing.T) {
	router := newTestRouter(&stubProgramService{}, &stubTrackingService{})
	w := doRequest(router, http.MethodGet, "/api/v1/enrollments/"+primitive.NewObjectID().Hex(), tokenFor(t, domain.RoleUser, testSecret, time.Hour), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStatisticsAndDayAbsentAre204(t *testing.T) {
	tracking := &stubTrackingService{}
	router := newTestRouter(&stubProgramService{}, tracking)
	token := tokenFor(t, domain.RoleUser, testSecret, time.Hour)
	base := "/api/v1/enrollments/" + primitive.NewObjectID().Hex()

	w := doRequest(router, http.MethodGet, base+"/statistics", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = doRequest(router, http.MethodGet, base+"/days/2026-05-10", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	tracking.stats = &domain.Statistics{GlobalProgression: 47, MealRate: 60, ActivityRate: 30}
	w = doRequest(router, http.MethodGet, base+"/statistics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.Statistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 47, stats.GlobalProgression)
}

func TestSubmitDay(t *testing.T) {
	tracking := &stubTrackingService{}
	router := newTestRouter(&stubProgramService{}, tracking)
	token := tokenFor(t, domain.RoleUser, testSecret, time.Hour)
	base := "/api/v1/enrollments/" + primitive.NewObjectID().Hex()

	w := doRequest(router, http.MethodPut, base+"/days/2026-05-10", token, map[string]any{"mealIds": []int{1, 2}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-05-10", tracking.lastSubmit.Date)
	assert.Equal(t, []int{1, 2}, tracking.lastSubmit.MealIDs)
	assert.Nil(t, tracking.lastSubmit.ActivityIDs)

	tracking.submitErr = service.ErrEnrollmentNotActive
	w = doRequest(router, http.MethodPut, base+"/days/2026-05-10", token, map[string]any{"mealIds": []int{1}})
	assert.Equal(t, http.StatusConflict, w.Code)

	tracking.submitErr = service.ErrInvalidDate
	w = doRequest(router, http.MethodPut, base+"/days/10-05-2026", token, map[string]any{"mealIds": []int{1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangeStatusAndProgression(t *testing.T) {
	tracking := &stubTrackingService{}
	router := newTestRouter(&stubProgramService{}, tracking)
	token := tokenFor(t, domain.RoleUser, testSecret, time.Hour)
	base := "/api/v1/enrollments/" + primitive.NewObjectID().Hex()

	w := doRequest(router, http.MethodPatch, base+"/status", token, ChangeStatusRequest{Status: "PAUSE"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.EnrollmentPaused, tracking.lastStatus)

	w = doRequest(router, http.MethodPatch, base+"/status", token, ChangeStatusRequest{Status: "sleeping"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPut, base+"/progression?progression=95", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 95, tracking.lastProgress)

	w = doRequest(router, http.MethodPut, base+"/progression?progression=lots", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
