package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nutridesk/nutridesk/internal/cache"
	"github.com/nutridesk/nutridesk/internal/clock"
	"github.com/nutridesk/nutridesk/internal/payment/domain"
	"github.com/nutridesk/nutridesk/pkg/db/option"
	"github.com/nutridesk/nutridesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Stats are recomputed at most once per TTL window; the dashboard polls
// aggressively and the underlying sums scan the whole ledger.
const statsTTL = 30 * time.Second

const statsKey = "payments:stats"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	stats cache.Cache[string, domain.RevenueStats]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("payment.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		stats: cache.NewTTLCache[string, domain.RevenueStats](),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (domain.Payment, error) {
	accountID, err := snowflake.ParseString(strings.TrimSpace(req.AccountID))
	if err != nil || accountID == 0 {
		return domain.Payment{}, domain.ErrInvalidAccountID
	}

	planID, err := snowflake.ParseString(strings.TrimSpace(req.PlanID))
	if err != nil || planID == 0 {
		return domain.Payment{}, domain.ErrInvalidPlanID
	}

	if req.Amount <= 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}

	method, ok := domain.ParseMethod(strings.TrimSpace(req.Method))
	if !ok {
		return domain.Payment{}, domain.ErrInvalidMethod
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	now := s.clock.Now()
	payment := domain.Payment{
		ID:             s.genID.Generate(),
		AccountID:      accountID,
		PlanID:         planID,
		Amount:         req.Amount,
		Currency:       "CLP",
		Status:         domain.StatusCompleted,
		Method:         method,
		Description:    strings.TrimSpace(req.Description),
		TransactionID:  normalizeKey(req.TransactionID),
		IdempotencyKey: normalizeKey(req.IdempotencyKey),
		Metadata:       metadata,
		PaidAt:         &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		return domain.Payment{}, err
	}

	s.stats.Delete(statsKey)

	s.log.Info("registered payment",
		zap.String("account_id", req.AccountID),
		zap.Int64("amount", payment.Amount),
		zap.String("method", string(method)),
	)

	return payment, nil
}

// normalizeKey folds blank gateway keys into NULL so the partial unique
// indexes only guard real values.
func normalizeKey(raw *string) *string {
	if raw == nil {
		return nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil
	}
	return &v
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentsRequest) (domain.ListPaymentsResponse, error) {
	filter := domain.ListFilter{}

	if raw := strings.TrimSpace(req.AccountID); raw != "" {
		accountID, err := snowflake.ParseString(raw)
		if err != nil || accountID == 0 {
			return domain.ListPaymentsResponse{}, domain.ErrInvalidAccountID
		}
		filter.AccountID = accountID
	}

	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.Status(raw)
		switch status {
		case domain.StatusPending, domain.StatusCompleted, domain.StatusFailed, domain.StatusRefunded:
			filter.Status = status
		default:
			return domain.ListPaymentsResponse{}, domain.ErrInvalidStatus
		}
	}

	size := req.PageSize
	if size <= 0 {
		size = 10
	}

	payments, err := s.repo.List(ctx, s.db, filter, option.ApplyPagination(req.Pagination))
	if err != nil {
		return domain.ListPaymentsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(payments, int32(size), func(p *domain.Payment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        p.ID.String(),
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	if len(payments) > size {
		payments = payments[:size]
	}

	return domain.ListPaymentsResponse{Payments: payments, PageInfo: pageInfo}, nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Payment, error) {
	return s.repo.Recent(ctx, s.db, limit)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	paymentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || paymentID == 0 {
		return domain.Payment{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	if item == nil {
		return domain.Payment{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Stats(ctx context.Context) (domain.RevenueStats, error) {
	if cached, ok := s.stats.Get(statsKey); ok {
		return cached, nil
	}

	now := s.clock.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	total, err := s.repo.SumCompleted(ctx, s.db, time.Time{})
	if err != nil {
		return domain.RevenueStats{}, err
	}

	mrr, err := s.repo.SumCompleted(ctx, s.db, monthStart)
	if err != nil {
		return domain.RevenueStats{}, err
	}

	count, err := s.repo.CountCompleted(ctx, s.db, monthStart)
	if err != nil {
		return domain.RevenueStats{}, err
	}

	result := domain.RevenueStats{
		TotalLifetime:     total,
		MonthlyRecurring:  mrr,
		PaymentsThisMonth: count,
		Currency:          "CLP",
	}

	s.stats.Set(statsKey, result, statsTTL)
	return result, nil
}
