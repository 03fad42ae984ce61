package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/nutridesk/nutridesk/internal/subscription/domain"
	"github.com/nutridesk/nutridesk/pkg/db/option"
	"github.com/nutridesk/nutridesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Store repository.Repository[domain.Subscription]
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	store repository.Repository[domain.Subscription]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		repo:  p.Repo,
		store: p.Store,
	}
}

func (s *Service) GetByAccountID(ctx context.Context, accountID string) (domain.Subscription, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(accountID))
	if err != nil || id == 0 {
		return domain.Subscription{}, domain.ErrInvalidAccountID
	}

	item, err := s.repo.FindByAccountID(ctx, s.db, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if item == nil {
		return domain.Subscription{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, status string) ([]*domain.Subscription, error) {
	query := domain.Subscription{}

	if raw := strings.TrimSpace(status); raw != "" {
		st := domain.Status(raw)
		switch st {
		case domain.StatusActive, domain.StatusTrialing, domain.StatusPastDue, domain.StatusCanceled, domain.StatusExpired:
			query.Status = st
		default:
			return nil, domain.ErrInvalidStatus
		}
	}

	return s.store.Find(ctx, &query, option.WithOrder("created_at DESC"))
}
