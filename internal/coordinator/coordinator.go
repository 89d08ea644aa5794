// Package coordinator owns the client-side view of enrollments: it gates and
// sends day submissions, refreshes what a write invalidates, and keeps one
// snapshot that the list and detail screens both read from.
package coordinator

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/enrollment"
	"alcyxob/healthera/internal/progression"

	"golang.org/x/sync/errgroup"
)

// Store is the remote side the coordinator reads from and writes to.
// FetchStatistics and FetchDayRecord return (nil, nil) when there is nothing yet.
type Store interface {
	FetchEnrollment(ctx context.Context, enrollmentID string) (*domain.Enrollment, error)
	FetchEnrollments(ctx context.Context) ([]domain.Enrollment, error)
	FetchStatistics(ctx context.Context, enrollmentID string) (*domain.Statistics, error)
	FetchDayRecord(ctx context.Context, enrollmentID, date string) (*domain.DayRecord, error)
	SubmitDayRecord(ctx context.Context, sub domain.DaySubmission) (*domain.DayRecord, error)
	UpdateProgression(ctx context.Context, enrollmentID string, percent int) (*domain.Enrollment, error)
}

// SubmitState is the optimistic UI state of one (enrollment, date).
type SubmitState string

const (
	StateIdle      SubmitState = "idle"
	StatePending   SubmitState = "pending"
	StateSucceeded SubmitState = "succeeded"
	StateFailed    SubmitState = "failed"
)

// Update is sent to listeners each time a refresh lands in the snapshot.
type Update struct {
	EnrollmentID string
	Date         string // empty when no day record was applied
	Progress     progression.Display
}

// Listener receives snapshot updates. It is called without any lock held.
type Listener func(Update)

// Detail is everything the detail screen shows for one enrollment and date.
type Detail struct {
	Enrollment    domain.Enrollment
	Date          string
	Progress      progression.Display
	Day           progression.DayDisplay
	CanSubmit     bool
	BlockedReason string
}

// ListEntry is one row of the list screen.
type ListEntry struct {
	Enrollment    domain.Enrollment
	Progress      progression.Display
	CanAdjust     bool
	BlockedReason string
}

type dayKey struct {
	enrollmentID string
	date         string
}

// Coordinator is safe for concurrent use. Its lock is never held across a Store call.
type Coordinator struct {
	store Store
	now   func() time.Time

	mu          sync.Mutex
	enrollments map[string]*domain.Enrollment
	stats       map[string]*domain.Statistics
	days        map[dayKey]*domain.DayRecord
	focus       map[string]string // date currently shown for each enrollment
	statsGen    map[string]uint64 // latest statistics read issued per enrollment
	dayGen      map[dayKey]uint64 // latest day record read issued per (enrollment, date)
	states      map[dayKey]SubmitState
	listeners   []Listener
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a Coordinator on top of store.
func New(store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       store,
		now:         time.Now,
		enrollments: make(map[string]*domain.Enrollment),
		stats:       make(map[string]*domain.Statistics),
		days:        make(map[dayKey]*domain.DayRecord),
		focus:       make(map[string]string),
		statsGen:    make(map[string]uint64),
		dayGen:      make(map[dayKey]uint64),
		states:      make(map[dayKey]SubmitState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a listener for snapshot updates.
func (c *Coordinator) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Focus makes date the one shown for the enrollment and returns it in canonical form.
// A date that does not parse falls back to today. Day records fetched for any
// other date are discarded from then on.
func (c *Coordinator) Focus(enrollmentID, date string) string {
	date = domain.DateOrToday(date, c.now())
	c.mu.Lock()
	c.focus[enrollmentID] = date
	c.mu.Unlock()
	return date
}

// Load fetches the enrollment, then its statistics and the day record for date.
func (c *Coordinator) Load(ctx context.Context, enrollmentID, date string) (*Detail, error) {
	date = c.Focus(enrollmentID, date)

	e, err := c.store.FetchEnrollment(ctx, enrollmentID)
	if err != nil {
		c.mu.Lock()
		delete(c.enrollments, enrollmentID)
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Lock()
	c.enrollments[enrollmentID] = e
	c.mu.Unlock()

	if err := c.refresh(ctx, enrollmentID, date); err != nil {
		log.Printf("WARN: partial load for enrollment %s on %s: %v", enrollmentID, date, err)
	}
	return c.Detail(enrollmentID, date)
}

// LoadList fetches the user's enrollments and the statistics of each.
// Statistics that cannot be fetched are treated as absent.
func (c *Coordinator) LoadList(ctx context.Context) ([]ListEntry, error) {
	list, err := c.store.FetchEnrollments(ctx)
	if err != nil {
		return nil, err
	}

	type fetched struct {
		gen   uint64
		stats *domain.Statistics
		err   error
	}
	results := make([]fetched, len(list))

	c.mu.Lock()
	for i := range list {
		e := list[i]
		id := e.ID.Hex()
		c.enrollments[id] = &e
		c.statsGen[id]++
		results[i].gen = c.statsGen[id]
	}
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range list {
		i := i
		g.Go(func() error {
			results[i].stats, results[i].err = c.store.FetchStatistics(gctx, list[i].ID.Hex())
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	for i := range list {
		id := list[i].ID.Hex()
		if results[i].err != nil {
			log.Printf("WARN: statistics unavailable for enrollment %s: %v", id, results[i].err)
			continue
		}
		if results[i].gen == c.statsGen[id] {
			c.stats[id] = results[i].stats
		}
	}
	c.mu.Unlock()

	entries := make([]ListEntry, 0, len(list))
	for i := range list {
		id := list[i].ID.Hex()
		e, progress, ok := c.snapshot(id)
		if !ok {
			continue
		}
		entry := ListEntry{Enrollment: *e, Progress: progress, CanAdjust: true}
		if err := enrollment.CheckAdjustment(e); err != nil {
			entry.CanAdjust = false
			entry.BlockedReason = err.Error()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Progress returns the reconciled progression for an enrollment already in the snapshot.
func (c *Coordinator) Progress(enrollmentID string) (progression.Display, bool) {
	_, d, ok := c.snapshot(enrollmentID)
	return d, ok
}

// Day returns what is known about one date of an enrollment.
func (c *Coordinator) Day(enrollmentID, date string) progression.DayDisplay {
	c.mu.Lock()
	rec := c.days[dayKey{enrollmentID, date}]
	c.mu.Unlock()
	return progression.ReconcileDay(rec)
}

// State returns the submission state of one (enrollment, date).
func (c *Coordinator) State(enrollmentID, date string) SubmitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.states[dayKey{enrollmentID, date}]; ok {
		return s
	}
	return StateIdle
}

// Detail assembles the detail screen from the snapshot, without any I/O.
func (c *Coordinator) Detail(enrollmentID, date string) (*Detail, error) {
	e, progress, ok := c.snapshot(enrollmentID)
	if !ok {
		return nil, errors.New(enrollment.ReasonUnavailable)
	}
	d := &Detail{
		Enrollment: *e,
		Date:       date,
		Progress:   progress,
		Day:        c.Day(enrollmentID, date),
		CanSubmit:  true,
	}
	if err := enrollment.CheckSubmission(e); err != nil {
		d.CanSubmit = false
		d.BlockedReason = err.Error()
	}
	return d, nil
}

// SubmitDay records what was eaten and done on date, in one write.
//
// Nothing is sent when the enrollment is not active, its program is empty,
// both selections are empty, or a submission for the same day is pending.
// After a successful write the statistics and the day record are refreshed
// exactly once. Failures are returned as is and never retried.
func (c *Coordinator) SubmitDay(ctx context.Context, enrollmentID, date string, mealIDs, activityIDs []int) (*domain.DayRecord, error) {
	date = domain.DateOrToday(date, c.now())
	key := dayKey{enrollmentID, date}

	e, err := c.enrollment(ctx, enrollmentID)
	if err != nil {
		return nil, notAllowed(enrollment.ReasonUnavailable)
	}
	if err := enrollment.CheckSubmission(e); err != nil {
		return nil, notAllowed(err.Error())
	}

	sub := domain.DaySubmission{
		EnrollmentID: enrollmentID,
		Date:         date,
		MealIDs:      domain.NormalizeIDs(mealIDs),
		ActivityIDs:  domain.NormalizeIDs(activityIDs),
	}
	if sub.MealIDs == nil && sub.ActivityIDs == nil {
		return nil, &SubmitError{Kind: ErrNothingSelected}
	}

	c.mu.Lock()
	if c.states[key] == StatePending {
		c.mu.Unlock()
		return nil, &SubmitError{Kind: ErrSubmissionPending}
	}
	c.states[key] = StatePending
	if _, ok := c.focus[enrollmentID]; !ok {
		c.focus[enrollmentID] = date
	}
	c.mu.Unlock()

	rec, err := c.store.SubmitDayRecord(ctx, sub)
	if err != nil {
		c.setState(key, StateFailed)
		log.Printf("ERROR: day submission for enrollment %s on %s failed: %v", enrollmentID, date, err)
		return nil, failed(err)
	}
	c.setState(key, StateSucceeded)

	if err := c.refresh(ctx, enrollmentID, date); err != nil {
		log.Printf("WARN: refresh after submission for enrollment %s on %s: %v", enrollmentID, date, err)
	}
	return rec, nil
}

// AdjustProgression moves the stored progression by delta, capped to [0,100].
// It is the list screen's quick-adjust path and does not go through reconciliation.
func (c *Coordinator) AdjustProgression(ctx context.Context, enrollmentID string, delta int) (*domain.Enrollment, error) {
	e, err := c.enrollment(ctx, enrollmentID)
	if err != nil {
		return nil, notAllowed(enrollment.ReasonUnavailable)
	}
	if err := enrollment.CheckAdjustment(e); err != nil {
		return nil, notAllowed(err.Error())
	}

	updated, err := c.store.UpdateProgression(ctx, enrollmentID, domain.ClampPercent(e.Progression+delta))
	if err != nil {
		return nil, failed(err)
	}
	if updated.Program == nil {
		updated.Program = e.Program
	}
	c.mu.Lock()
	c.enrollments[enrollmentID] = updated
	c.mu.Unlock()
	return updated, nil
}

// enrollment returns the cached enrollment, fetching it when missing.
func (c *Coordinator) enrollment(ctx context.Context, enrollmentID string) (*domain.Enrollment, error) {
	c.mu.Lock()
	e, ok := c.enrollments[enrollmentID]
	c.mu.Unlock()
	if ok {
		return e, nil
	}
	e, err := c.store.FetchEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.enrollments[enrollmentID] = e
	c.mu.Unlock()
	return e, nil
}

// refresh reads statistics and the day record concurrently and applies both
// once they are joined. Each result is dropped when a newer read of the same
// thing was issued meanwhile: statistics per enrollment, day records per
// (enrollment, date). A fresh day record for a date that lost the focus is
// not kept either, and the cached one for that date is evicted.
func (c *Coordinator) refresh(ctx context.Context, enrollmentID, date string) error {
	key := dayKey{enrollmentID, date}
	c.mu.Lock()
	c.statsGen[enrollmentID]++
	statsGen := c.statsGen[enrollmentID]
	c.dayGen[key]++
	dayGen := c.dayGen[key]
	c.mu.Unlock()

	var (
		g                errgroup.Group
		stats            *domain.Statistics
		rec              *domain.DayRecord
		statsErr, dayErr error
	)
	g.Go(func() error {
		stats, statsErr = c.store.FetchStatistics(ctx, enrollmentID)
		return statsErr
	})
	g.Go(func() error {
		rec, dayErr = c.store.FetchDayRecord(ctx, enrollmentID, date)
		return dayErr
	})
	_ = g.Wait()

	update := Update{EnrollmentID: enrollmentID}
	c.mu.Lock()
	statsApplied := statsGen == c.statsGen[enrollmentID] && statsErr == nil
	if statsApplied {
		c.stats[enrollmentID] = stats
	}
	if dayGen == c.dayGen[key] && dayErr == nil {
		if c.focus[enrollmentID] == date {
			c.days[key] = rec
			update.Date = date
		} else {
			delete(c.days, key)
		}
	}
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	if statsApplied || update.Date != "" {
		if _, progress, ok := c.snapshot(enrollmentID); ok {
			update.Progress = progress
			for _, l := range listeners {
				l(update)
			}
		}
	}
	return errors.Join(statsErr, dayErr)
}

func (c *Coordinator) snapshot(enrollmentID string) (*domain.Enrollment, progression.Display, bool) {
	c.mu.Lock()
	e, ok := c.enrollments[enrollmentID]
	stats := c.stats[enrollmentID]
	c.mu.Unlock()
	if !ok {
		return nil, progression.Display{}, false
	}
	return e, progression.Reconcile(stats, *e, c.now()), true
}

func (c *Coordinator) setState(key dayKey, s SubmitState) {
	c.mu.Lock()
	c.states[key] = s
	c.mu.Unlock()
}
