package service

import (
	"context"
	"strings"

	"github.com/nutridesk/nutridesk/internal/clock"
	"github.com/nutridesk/nutridesk/internal/dailymetric/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dailymetric.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Range(ctx context.Context, req domain.RangeRequest) ([]domain.DailyMetric, error) {
	today := domain.Day(s.clock.Now())

	from := today.AddDate(0, 0, -domain.DefaultRangeDays)
	to := today

	if raw := strings.TrimSpace(req.From); raw != "" {
		parsed, err := domain.ParseDay(raw)
		if err != nil {
			return nil, domain.ErrInvalidRange
		}
		from = parsed
	}
	if raw := strings.TrimSpace(req.To); raw != "" {
		parsed, err := domain.ParseDay(raw)
		if err != nil {
			return nil, domain.ErrInvalidRange
		}
		to = parsed
	}

	if to.Before(from) {
		return nil, domain.ErrInvalidRange
	}

	return s.repo.Range(ctx, s.db, from, to)
}

func (s *Service) Today(ctx context.Context) (domain.DailyMetric, error) {
	item, err := s.repo.FindByDate(ctx, s.db, domain.Day(s.clock.Now()))
	if err != nil {
		return domain.DailyMetric{}, err
	}
	if item == nil {
		return domain.DailyMetric{}, domain.ErrNotFound
	}
	return *item, nil
}
