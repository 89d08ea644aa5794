// Package cache keeps computed enrollment statistics between day writes.
package cache

import (
	"alcyxob/healthera/internal/domain"
	"context"
	"errors"
)

// ErrCacheMiss is returned by Get when nothing is cached for the enrollment.
var ErrCacheMiss = errors.New("cache miss")

// StatisticsCache stores the last computed Statistics of each enrollment.
type StatisticsCache interface {
	Get(ctx context.Context, enrollmentID string) (*domain.Statistics, error)
	Set(ctx context.Context, stats *domain.Statistics) error
	Invalidate(ctx context.Context, enrollmentID string) error
}

type noopStatisticsCache struct{}

// NewNoopStatisticsCache returns a cache that never hits. Used when Redis is not configured.
func NewNoopStatisticsCache() StatisticsCache {
	return noopStatisticsCache{}
}

func (noopStatisticsCache) Get(context.Context, string) (*domain.Statistics, error) {
	return nil, ErrCacheMiss
}

func (noopStatisticsCache) Set(context.Context, *domain.Statistics) error { return nil }

func (noopStatisticsCache) Invalidate(context.Context, string) error { return nil }
