package client

import (
	"alcyxob/healthera/internal/coordinator"
	"alcyxob/healthera/internal/domain"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ coordinator.Store = (*Client)(nil)

const enrollmentHex = "6650a1b2c3d4e5f601234567"

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1", "tok", time.Second)
}

func TestFetchStatistics_NoContentIsAbsent(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/enrollments/"+enrollmentHex+"/statistics", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	stats, err := c.FetchStatistics(context.Background(), enrollmentHex)
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestFetchStatistics_Present(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"enrollmentId":"`+enrollmentHex+`","globalProgression":47,"mealRate":60,"activityRate":30,"daysRecorded":5}`)
	})

	stats, err := c.FetchStatistics(context.Background(), enrollmentHex)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 47, stats.GlobalProgression)
	assert.Equal(t, 30, stats.ActivityRate)
}

func TestFetchDayRecord_AbsentAndPresent(t *testing.T) {
	present := false
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/enrollments/"+enrollmentHex+"/days/2026-05-10", r.URL.Path)
		if !present {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"enrollmentId":"`+enrollmentHex+`","date":"2026-05-10","mealIds":[1],"status":"PARTIEL","caloriesConsumed":350}`)
	})

	rec, err := c.FetchDayRecord(context.Background(), enrollmentHex, "2026-05-10")
	require.NoError(t, err)
	assert.Nil(t, rec)

	present = true
	rec, err = c.FetchDayRecord(context.Background(), enrollmentHex, "2026-05-10")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []int{1}, rec.MealIDs)
	assert.Nil(t, rec.ActivityIDs)
	require.NotNil(t, rec.CaloriesConsumed)
	assert.Equal(t, 350, *rec.CaloriesConsumed)
}

func TestSubmitDayRecord_OmitsEmptySelections(t *testing.T) {
	var body map[string]any
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/enrollments/"+enrollmentHex+"/days/2026-05-10", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"date":"2026-05-10","mealIds":[1,2]}`)
	})

	rec, err := c.SubmitDayRecord(context.Background(), domain.DaySubmission{
		EnrollmentID: enrollmentHex,
		Date:         "2026-05-10",
		MealIDs:      []int{1, 2},
		ActivityIDs:  []int{},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, rec.MealIDs)
	assert.Contains(t, body, "mealIds")
	assert.NotContains(t, body, "activityIds")
	assert.NotContains(t, body, "date")
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":"enrollment is not active"}`)
	})

	_, err := c.SubmitDayRecord(context.Background(), domain.DaySubmission{EnrollmentID: enrollmentHex, Date: "2026-05-10", MealIDs: []int{1}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "enrollment is not active", err.Error())
}

func TestLoginStoresToken(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"token":"fresh","user":{"email":"sam@example.com"}}`)
		case "/api/v1/enrollments":
			assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `[{"id":"`+enrollmentHex+`","status":"EN_COURS","startDate":"2026-05-01"}]`)
		default:
			http.NotFound(w, r)
		}
	})

	token, err := c.Login(context.Background(), "sam@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	list, err := c.FetchEnrollments(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.EnrollmentActive, list[0].Status)
	assert.Equal(t, enrollmentHex, list[0].ID.Hex())
}

func TestUpdateProgressionSendsQuery(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "95", r.URL.Query().Get("progression"))
		_, _ = io.WriteString(w, `{"id":"`+enrollmentHex+`","status":"active","progression":95}`)
	})

	e, err := c.UpdateProgression(context.Background(), enrollmentHex, 95)
	require.NoError(t, err)
	assert.Equal(t, 95, e.Progression)
}

func TestDishes(t *testing.T) {
	dishID := enrollmentHex + "-2"
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/dishes":
			assert.Equal(t, "petit-dejeuner", r.URL.Query().Get("category"))
			_, _ = io.WriteString(w, `[{"id":"`+dishID+`","programName":"Lean 30","item":{"id":2,"name":"Oats","calories":350,"category":"breakfast"}}]`)
		case "/api/v1/dishes/" + dishID:
			_, _ = io.WriteString(w, `{"id":"`+dishID+`","programName":"Lean 30","item":{"id":2,"name":"Oats","calories":350,"category":"breakfast"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"dish not found"}`)
		}
	})
	ctx := context.Background()

	dishes, err := c.ListDishes(ctx, "petit-dejeuner")
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, domain.MealBreakfast, dishes[0].Item.Category)

	dish, err := c.GetDish(ctx, dishID)
	require.NoError(t, err)
	assert.Equal(t, 350, dish.Item.Calories)

	_, err = c.GetDish(ctx, enrollmentHex+"-9")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "dish not found", apiErr.Message)
}
