package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nutridesk/nutridesk/internal/cache"
	"github.com/nutridesk/nutridesk/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const activePlansTTL = 5 * time.Minute

const activePlansKey = "plans:active"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	active cache.Cache[string, []domain.MembershipPlan]
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("plan.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		active: cache.NewTTLCache[string, []domain.MembershipPlan](),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.MembershipPlan, error) {
	return s.repo.List(ctx, s.db, false)
}

func (s *Service) ListActive(ctx context.Context) ([]domain.MembershipPlan, error) {
	if plans, ok := s.active.Get(activePlansKey); ok {
		return plans, nil
	}

	plans, err := s.repo.List(ctx, s.db, true)
	if err != nil {
		return nil, err
	}

	s.active.Set(activePlansKey, plans, activePlansTTL)
	return plans, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.MembershipPlan, error) {
	planID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || planID == 0 {
		return domain.MembershipPlan{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return domain.MembershipPlan{}, err
	}
	if item == nil {
		return domain.MembershipPlan{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreatePlanRequest) (domain.MembershipPlan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.MembershipPlan{}, domain.ErrInvalidName
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if slug == "" || strings.ContainsAny(slug, " \t") {
		return domain.MembershipPlan{}, domain.ErrInvalidSlug
	}

	if req.Price < 0 {
		return domain.MembershipPlan{}, domain.ErrInvalidPrice
	}

	period := domain.BillingPeriodMonthly
	if req.BillingPeriod != "" {
		period = domain.BillingPeriod(req.BillingPeriod)
		if period != domain.BillingPeriodMonthly && period != domain.BillingPeriodYearly {
			return domain.MembershipPlan{}, domain.ErrInvalidBillingPeriod
		}
	}

	existing, err := s.repo.FindBySlug(ctx, s.db, slug)
	if err != nil {
		return domain.MembershipPlan{}, err
	}
	if existing != nil {
		return domain.MembershipPlan{}, domain.ErrSlugTaken
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "CLP"
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now().UTC()
	plan := domain.MembershipPlan{
		ID:            s.genID.Generate(),
		Name:          name,
		Slug:          slug,
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		Currency:      currency,
		BillingPeriod: period,
		Features:      marshalFeatures(req.Features),
		MaxPatients:   req.MaxPatients,
		MaxStorageGB:  req.MaxStorageGB,
		IsPopular:     req.IsPopular,
		IsActive:      isActive,
		DisplayOrder:  req.DisplayOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &plan); err != nil {
		return domain.MembershipPlan{}, err
	}

	s.active.Delete(activePlansKey)
	return plan, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdatePlanRequest) (domain.MembershipPlan, error) {
	plan, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.MembershipPlan{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.MembershipPlan{}, domain.ErrInvalidName
		}
		plan.Name = name
	}
	if req.Description != nil {
		plan.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.MembershipPlan{}, domain.ErrInvalidPrice
		}
		plan.Price = *req.Price
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if currency != "" {
			plan.Currency = currency
		}
	}
	if req.BillingPeriod != nil {
		period := domain.BillingPeriod(*req.BillingPeriod)
		if period != domain.BillingPeriodMonthly && period != domain.BillingPeriodYearly {
			return domain.MembershipPlan{}, domain.ErrInvalidBillingPeriod
		}
		plan.BillingPeriod = period
	}
	if req.Features != nil {
		plan.Features = marshalFeatures(req.Features)
	}
	if req.MaxPatients != nil {
		plan.MaxPatients = req.MaxPatients
	}
	if req.MaxStorageGB != nil {
		plan.MaxStorageGB = req.MaxStorageGB
	}
	if req.IsPopular != nil {
		plan.IsPopular = *req.IsPopular
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if req.DisplayOrder != nil {
		plan.DisplayOrder = *req.DisplayOrder
	}

	plan.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, &plan); err != nil {
		return domain.MembershipPlan{}, err
	}

	s.active.Delete(activePlansKey)
	return plan, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	plan, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, s.db, plan.ID); err != nil {
		return err
	}

	s.active.Delete(activePlansKey)
	return nil
}

func (s *Service) ToggleActive(ctx context.Context, id string) (domain.MembershipPlan, error) {
	plan, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.MembershipPlan{}, err
	}

	plan.IsActive = !plan.IsActive
	plan.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, &plan); err != nil {
		return domain.MembershipPlan{}, err
	}

	s.active.Delete(activePlansKey)
	return plan, nil
}

func marshalFeatures(features []string) datatypes.JSON {
	if len(features) == 0 {
		return nil
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
