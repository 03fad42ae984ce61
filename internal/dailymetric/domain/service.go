package domain

import (
	"context"
	"errors"
	"time"
)

type RangeRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

type Service interface {
	Range(ctx context.Context, req RangeRequest) ([]DailyMetric, error)
	Today(ctx context.Context) (DailyMetric, error)
}

var (
	ErrInvalidRange = errors.New("invalid_range")
	ErrNotFound     = errors.New("daily_metric_not_found")
)

// DefaultRangeDays is how far back Range looks when no bounds are given.
const DefaultRangeDays = 30

// ParseDay parses a YYYY-MM-DD bound.
func ParseDay(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}
