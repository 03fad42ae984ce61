package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nutridesk/nutridesk/internal/account/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAccountRequest) (domain.Account, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Account{}, domain.ErrInvalidEmail
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return domain.Account{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:        s.genID.Generate(),
		Email:     email,
		FullName:  fullName,
		Plan:      domain.PlanTierFree,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &account); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Account, error) {
	accountID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || accountID == 0 {
		return domain.Account{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if item == nil {
		return domain.Account{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, s.db)
}
