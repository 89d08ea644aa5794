// Package client talks to the tracker REST API. *Client satisfies coordinator.Store.
package client

import (
	"alcyxob/healthera/internal/config"
	"alcyxob/healthera/internal/domain"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer. Message is the server's error text, verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New builds a client for baseURL (e.g. http://localhost:8080/api/v1).
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
	}
}

// NewFromConfig builds a client from the client section of the configuration.
func NewFromConfig(cfg config.ClientConfig) *Client {
	return New(cfg.BaseURL, cfg.Token, cfg.Timeout)
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Registration is the sign-up payload.
type Registration struct {
	LastName  string `json:"lastName"`
	FirstName string `json:"firstName"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BirthDate string `json:"birthDate,omitempty"`
}

func (c *Client) Register(ctx context.Context, reg Registration) (*domain.User, error) {
	var user domain.User
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", reg, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return "", err
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// ListPrograms returns the catalog, filtered by objective when it is not empty.
func (c *Client) ListPrograms(ctx context.Context, objective string) ([]domain.Program, error) {
	path := "/programs"
	if objective != "" {
		path = "/programs/objective/" + url.PathEscape(objective)
	}
	var programs []domain.Program
	if _, err := c.do(ctx, http.MethodGet, path, nil, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (c *Client) GetProgram(ctx context.Context, programID string) (*domain.Program, error) {
	var program domain.Program
	if _, err := c.do(ctx, http.MethodGet, "/programs/"+url.PathEscape(programID), nil, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

// ListDishes returns the dish catalog, filtered by meal category when it is not empty.
func (c *Client) ListDishes(ctx context.Context, category string) ([]domain.Dish, error) {
	path := "/dishes"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var dishes []domain.Dish
	if _, err := c.do(ctx, http.MethodGet, path, nil, &dishes); err != nil {
		return nil, err
	}
	return dishes, nil
}

func (c *Client) GetDish(ctx context.Context, dishID string) (*domain.Dish, error) {
	var dish domain.Dish
	if _, err := c.do(ctx, http.MethodGet, "/dishes/"+url.PathEscape(dishID), nil, &dish); err != nil {
		return nil, err
	}
	return &dish, nil
}

// Enroll starts an enrollment; an empty startDate lets the server use today.
func (c *Client) Enroll(ctx context.Context, programID, startDate string) (*domain.Enrollment, error) {
	body := map[string]string{}
	if startDate != "" {
		body["startDate"] = startDate
	}
	var e domain.Enrollment
	if _, err := c.do(ctx, http.MethodPost, "/programs/"+url.PathEscape(programID)+"/enroll", body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) ChangeStatus(ctx context.Context, enrollmentID string, status domain.EnrollmentStatus) (*domain.Enrollment, error) {
	var e domain.Enrollment
	body := map[string]string{"status": string(status)}
	if _, err := c.do(ctx, http.MethodPatch, enrollmentPath(enrollmentID)+"/status", body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) FetchEnrollment(ctx context.Context, enrollmentID string) (*domain.Enrollment, error) {
	var e domain.Enrollment
	if _, err := c.do(ctx, http.MethodGet, enrollmentPath(enrollmentID), nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) FetchEnrollments(ctx context.Context) ([]domain.Enrollment, error) {
	var list []domain.Enrollment
	if _, err := c.do(ctx, http.MethodGet, "/enrollments", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchStatistics returns (nil, nil) when the server has nothing recorded yet.
func (c *Client) FetchStatistics(ctx context.Context, enrollmentID string) (*domain.Statistics, error) {
	var stats domain.Statistics
	status, err := c.do(ctx, http.MethodGet, enrollmentPath(enrollmentID)+"/statistics", nil, &stats)
	if err != nil || status == http.StatusNoContent {
		return nil, err
	}
	return &stats, nil
}

// FetchDayRecord returns (nil, nil) when there is no record for that date.
func (c *Client) FetchDayRecord(ctx context.Context, enrollmentID, date string) (*domain.DayRecord, error) {
	var rec domain.DayRecord
	status, err := c.do(ctx, http.MethodGet, enrollmentPath(enrollmentID)+"/days/"+url.PathEscape(date), nil, &rec)
	if err != nil || status == http.StatusNoContent {
		return nil, err
	}
	return &rec, nil
}

// SubmitDayRecord sends the one write of a submission. Empty selections are omitted from the body.
func (c *Client) SubmitDayRecord(ctx context.Context, sub domain.DaySubmission) (*domain.DayRecord, error) {
	sub.MealIDs = domain.NormalizeIDs(sub.MealIDs)
	sub.ActivityIDs = domain.NormalizeIDs(sub.ActivityIDs)
	var rec domain.DayRecord
	path := enrollmentPath(sub.EnrollmentID) + "/days/" + url.PathEscape(sub.Date)
	if _, err := c.do(ctx, http.MethodPut, path, sub, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) UpdateProgression(ctx context.Context, enrollmentID string, percent int) (*domain.Enrollment, error) {
	var e domain.Enrollment
	path := enrollmentPath(enrollmentID) + "/progression?progression=" + strconv.Itoa(percent)
	if _, err := c.do(ctx, http.MethodPut, path, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func enrollmentPath(enrollmentID string) string {
	return "/enrollments/" + url.PathEscape(enrollmentID)
}

// do sends one request and decodes a 2xx JSON body into out. A 204 leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeAPIError(resp)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
