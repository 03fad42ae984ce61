package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/nutridesk/nutridesk/internal/account/domain"
	"github.com/nutridesk/nutridesk/internal/clock"
	dailymetricdomain "github.com/nutridesk/nutridesk/internal/dailymetric/domain"
	"github.com/nutridesk/nutridesk/internal/observability/metrics"
	paymentdomain "github.com/nutridesk/nutridesk/internal/payment/domain"
	plandomain "github.com/nutridesk/nutridesk/internal/plan/domain"
	"github.com/nutridesk/nutridesk/internal/reconciliation/domain"
	subscriptiondomain "github.com/nutridesk/nutridesk/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Metrics       *metrics.Metrics `optional:"true"`
	Accounts      accountdomain.Repository
	Plans         plandomain.Repository
	Payments      paymentdomain.Repository
	Subscriptions subscriptiondomain.Repository
	DailyMetrics  dailymetricdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	metrics       *metrics.Metrics
	accounts      accountdomain.Repository
	plans         plandomain.Repository
	payments      paymentdomain.Repository
	subscriptions subscriptiondomain.Repository
	dailyMetrics  dailymetricdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("reconciliation.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		metrics:       p.Metrics,
		accounts:      p.Accounts,
		plans:         p.Plans,
		payments:      p.Payments,
		subscriptions: p.Subscriptions,
		dailyMetrics:  p.DailyMetrics,
	}
}

func (s *Service) Reconcile(ctx context.Context, req domain.ReconcileRequest) (domain.ReconcileResult, error) {
	method, ok := paymentdomain.ParseMethod(strings.TrimSpace(req.Method))
	if !ok {
		return domain.ReconcileResult{}, domain.ErrInvalidMethod
	}

	if req.Amount != nil && *req.Amount <= 0 {
		return domain.ReconcileResult{}, domain.ErrInvalidAmount
	}

	accountID, err := snowflake.ParseString(strings.TrimSpace(req.AccountID))
	if err != nil || accountID == 0 {
		return domain.ReconcileResult{}, domain.ErrInvalidAccountID
	}

	planID, err := snowflake.ParseString(strings.TrimSpace(req.PlanID))
	if err != nil || planID == 0 {
		return domain.ReconcileResult{}, domain.ErrInvalidPlanID
	}

	var (
		payment paymentdomain.Payment
		sub     subscriptiondomain.Subscription
		period  plandomain.BillingPeriod
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.accounts.FindByID(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrAccountNotFound
		}

		plan, err := s.plans.FindByID(ctx, tx, planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.ErrPlanNotFound
		}
		period = plan.BillingPeriod

		amount := plan.Price
		if req.Amount != nil {
			amount = *req.Amount
		}

		now := s.clock.Now()
		startDate := now
		endDate := startDate.AddDate(0, 1, 0)
		if plan.BillingPeriod == plandomain.BillingPeriodYearly {
			endDate = startDate.AddDate(1, 0, 0)
		}

		sub = subscriptiondomain.Subscription{
			ID:        s.genID.Generate(),
			AccountID: account.ID,
			PlanID:    plan.ID,
			Status:    subscriptiondomain.StatusActive,
			StartDate: startDate,
			EndDate:   endDate,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.subscriptions.Upsert(ctx, tx, &sub); err != nil {
			return err
		}

		current, err := s.subscriptions.FindByAccountID(ctx, tx, account.ID)
		if err != nil {
			return err
		}
		if current != nil {
			sub = *current
		}

		payment = paymentdomain.Payment{
			ID:             s.genID.Generate(),
			AccountID:      account.ID,
			PlanID:         plan.ID,
			SubscriptionID: &sub.ID,
			Amount:         amount,
			Currency:       plan.Currency,
			Status:         paymentdomain.StatusCompleted,
			Method:         method,
			Description:    "Simulated payment for plan " + plan.Name,
			Metadata: datatypes.JSONMap{
				"isSimulation":   true,
				"adminTriggered": true,
			},
			PaidAt:    &now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.payments.Insert(ctx, tx, &payment); err != nil {
			return err
		}

		tier := accountdomain.TierForSlug(plan.Slug)
		if err := s.accounts.UpdatePlan(ctx, tx, account.ID, tier, &endDate, now); err != nil {
			return err
		}

		totalUsers, err := s.accounts.Count(ctx, tx)
		if err != nil {
			return err
		}

		return s.dailyMetrics.ApplyPayment(ctx, tx, s.genID.Generate(), dailymetricdomain.Day(now), amount, totalUsers, now)
	})
	if err != nil {
		s.metrics.RecordReconciliation(ctx, string(period), "error")
		return domain.ReconcileResult{}, err
	}

	s.metrics.RecordPayment(ctx, string(method))
	s.metrics.RecordReconciliation(ctx, string(period), "success")

	s.log.Info("reconciled subscription payment",
		zap.String("account_id", req.AccountID),
		zap.String("plan_id", req.PlanID),
		zap.Int64("amount", payment.Amount),
		zap.String("method", string(method)),
	)

	return domain.ReconcileResult{Payment: payment, Subscription: sub}, nil
}
