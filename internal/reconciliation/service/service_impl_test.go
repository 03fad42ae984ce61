package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/nutridesk/nutridesk/internal/account/domain"
	accountrepo "github.com/nutridesk/nutridesk/internal/account/repository"
	"github.com/nutridesk/nutridesk/internal/clock"
	dailymetricdomain "github.com/nutridesk/nutridesk/internal/dailymetric/domain"
	dailymetricrepo "github.com/nutridesk/nutridesk/internal/dailymetric/repository"
	paymentdomain "github.com/nutridesk/nutridesk/internal/payment/domain"
	paymentrepo "github.com/nutridesk/nutridesk/internal/payment/repository"
	plandomain "github.com/nutridesk/nutridesk/internal/plan/domain"
	planrepo "github.com/nutridesk/nutridesk/internal/plan/repository"
	"github.com/nutridesk/nutridesk/internal/reconciliation/domain"
	subscriptiondomain "github.com/nutridesk/nutridesk/internal/subscription/domain"
	subscriptionrepo "github.com/nutridesk/nutridesk/internal/subscription/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupReconcileTest(t *testing.T, now time.Time) (*gorm.DB, domain.Service, *snowflake.Node, *clock.FakeClock) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&accountdomain.Account{},
		&plandomain.MembershipPlan{},
		&subscriptiondomain.Subscription{},
		&paymentdomain.Payment{},
		&dailymetricdomain.DailyMetric{},
	)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(now)

	svc := New(Params{
		DB:            db,
		Log:           zaptest.NewLogger(t),
		GenID:         node,
		Clock:         fakeClock,
		Accounts:      accountrepo.Provide(),
		Plans:         planrepo.Provide(),
		Payments:      paymentrepo.Provide(),
		Subscriptions: subscriptionrepo.Provide(),
		DailyMetrics:  dailymetricrepo.Provide(),
	})

	return db, svc, node, fakeClock
}

func seedAccount(t *testing.T, db *gorm.DB, node *snowflake.Node, email string) accountdomain.Account {
	now := time.Now().UTC()
	account := accountdomain.Account{
		ID:        node.Generate(),
		Email:     email,
		FullName:  "Test Account",
		Plan:      accountdomain.PlanTierFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&account).Error)
	return account
}

func seedPlan(t *testing.T, db *gorm.DB, node *snowflake.Node, slug string, price int64, period plandomain.BillingPeriod) plandomain.MembershipPlan {
	now := time.Now().UTC()
	plan := plandomain.MembershipPlan{
		ID:            node.Generate(),
		Name:          slug,
		Slug:          slug,
		Price:         price,
		Currency:      "CLP",
		BillingPeriod: period,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&plan).Error)
	return plan
}

func TestReconcile_MonthlyPlan(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db, svc, node, _ := setupReconcileTest(t, now)

	account := seedAccount(t, db, node, "pro@example.com")
	plan := seedPlan(t, db, node, "pro", 29990, plandomain.BillingPeriodMonthly)

	result, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    plan.ID.String(),
		Method:    "BANK_TRANSFER",
	})
	require.NoError(t, err)

	assert.Equal(t, paymentdomain.StatusCompleted, result.Payment.Status)
	assert.Equal(t, int64(29990), result.Payment.Amount)
	assert.Equal(t, "CLP", result.Payment.Currency)
	assert.Equal(t, paymentdomain.MethodBankTransfer, result.Payment.Method)
	require.NotNil(t, result.Payment.PaidAt)
	assert.Equal(t, now, result.Payment.PaidAt.UTC())
	assert.Equal(t, true, result.Payment.Metadata["isSimulation"])
	assert.Equal(t, true, result.Payment.Metadata["adminTriggered"])
	require.NotNil(t, result.Payment.SubscriptionID)
	assert.Equal(t, result.Subscription.ID, *result.Payment.SubscriptionID)

	assert.Equal(t, subscriptiondomain.StatusActive, result.Subscription.Status)
	assert.Equal(t, now, result.Subscription.StartDate.UTC())
	assert.Equal(t, now.AddDate(0, 1, 0), result.Subscription.EndDate.UTC())

	var updated accountdomain.Account
	require.NoError(t, db.Where("id = ?", account.ID).First(&updated).Error)
	assert.Equal(t, accountdomain.PlanTierPro, updated.Plan)
	require.NotNil(t, updated.SubscriptionEndsAt)
	assert.Equal(t, now.AddDate(0, 1, 0), updated.SubscriptionEndsAt.UTC())

	var metric dailymetricdomain.DailyMetric
	require.NoError(t, db.Where("date = ?", dailymetricdomain.Day(now)).First(&metric).Error)
	assert.Equal(t, int64(29990), metric.TotalRevenue)
	assert.Equal(t, int64(1), metric.ActiveSubscriptions)
	assert.Equal(t, int64(1), metric.TotalUsers)
}

func TestReconcile_YearlyPlan(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db, svc, node, _ := setupReconcileTest(t, now)

	account := seedAccount(t, db, node, "yearly@example.com")
	plan := seedPlan(t, db, node, "pro-annual", 299900, plandomain.BillingPeriodYearly)

	result, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    plan.ID.String(),
		Method:    "WEBPAY",
	})
	require.NoError(t, err)

	assert.Equal(t, now.AddDate(1, 0, 0), result.Subscription.EndDate.UTC())
}

func TestReconcile_MonthEndNormalizes(t *testing.T) {
	// Jan 31 + 1 month lands on the normalized Mar 3 (2026 is not a leap year).
	now := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	db, svc, node, _ := setupReconcileTest(t, now)

	account := seedAccount(t, db, node, "edge@example.com")
	plan := seedPlan(t, db, node, "pro", 29990, plandomain.BillingPeriodMonthly)

	result, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    plan.ID.String(),
		Method:    "MANUAL",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), result.Subscription.EndDate.UTC())
}

func TestReconcile_ExplicitAmountOverridesPlanPrice(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db, svc, node, _ := setupReconcileTest(t, now)

	account := seedAccount(t, db, node, "discount@example.com")
	plan := seedPlan(t, db, node, "pro", 29990, plandomain.BillingPeriodMonthly)

	amount := int64(15000)
	result, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    plan.ID.String(),
		Amount:    &amount,
		Method:    "CREDIT_CARD",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(15000), result.Payment.Amount)

	var metric dailymetricdomain.DailyMetric
	require.NoError(t, db.Where("date = ?", dailymetricdomain.Day(now)).First(&metric).Error)
	assert.Equal(t, int64(15000), metric.TotalRevenue)
}

func TestReconcile_TierMapping(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		slug string
		want accountdomain.PlanTier
	}{
		{"free", accountdomain.PlanTierFree},
		{"enterprise", accountdomain.PlanTierEnterprise},
		{"enterprise-annual", accountdomain.PlanTierEnterprise},
		{"clinic-starter", accountdomain.PlanTierPro},
	}

	for _, tc := range cases {
		t.Run(tc.slug, func(t *testing.T) {
			db, svc, node, _ := setupReconcileTest(t, now)
			account := seedAccount(t, db, node, tc.slug+"@example.com")
			plan := seedPlan(t, db, node, tc.slug, 9990, plandomain.BillingPeriodMonthly)

			_, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
				AccountID: account.ID.String(),
				PlanID:    plan.ID.String(),
				Method:    "MANUAL",
			})
			require.NoError(t, err)

			var updated accountdomain.Account
			require.NoError(t, db.Where("id = ?", account.ID).First(&updated).Error)
			assert.Equal(t, tc.want, updated.Plan)
		})
	}
}

func TestReconcile_RepeatKeepsSingleSubscriptionRow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db, svc, node, fakeClock := setupReconcileTest(t, now)

	account := seedAccount(t, db, node, "repeat@example.com")
	monthly := seedPlan(t, db, node, "pro", 29990, plandomain.BillingPeriodMonthly)
	yearly := seedPlan(t, db, node, "enterprise-annual", 999900, plandomain.BillingPeriodYearly)

	first, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    monthly.ID.String(),
		Method:    "BANK_TRANSFER",
	})
	require.NoError(t, err)

	fakeClock.Advance(time.Hour)

	second, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    yearly.ID.String(),
		Method:    "BANK_TRANSFER",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&subscriptiondomain.Subscription{}).Where("account_id = ?", account.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The surviving row keeps its original identity but the new period.
	assert.Equal(t, first.Subscription.ID, second.Subscription.ID)
	assert.Equal(t, yearly.ID, second.Subscription.PlanID)

	var payments int64
	require.NoError(t, db.Model(&paymentdomain.Payment{}).Count(&payments).Error)
	assert.Equal(t, int64(2), payments)
}

func TestReconcile_ConcurrentSameAccount(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db, svc, node, _ := setupReconcileTest(t, now)

	// A single pooled connection keeps both transactions on the one
	// shared in-memory database and serializes them; the unique index on
	// account_id is what guarantees a single row either way.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	account := seedAccount(t, db, node, "concurrent@example.com")
	plan := seedPlan(t, db, node, "pro", 29990, plandomain.BillingPeriodMonthly)

	req := domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    plan.ID.String(),
		Method:    "BANK_TRANSFER",
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reconcile(context.Background(), req)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	var subs int64
	require.NoError(t, db.Model(&subscriptiondomain.Subscription{}).Where("account_id = ?", account.ID).Count(&subs).Error)
	assert.Equal(t, int64(1), subs)

	var payments int64
	require.NoError(t, db.Model(&paymentdomain.Payment{}).Count(&payments).Error)
	assert.Equal(t, int64(2), payments)
}

func TestReconcile_SameDayAccumulatesMetric(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db, svc, node, fakeClock := setupReconcileTest(t, now)

	account := seedAccount(t, db, node, "metric@example.com")
	plan := seedPlan(t, db, node, "pro", 29990, plandomain.BillingPeriodMonthly)

	req := domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    plan.ID.String(),
		Method:    "BANK_TRANSFER",
	}

	_, err := svc.Reconcile(context.Background(), req)
	require.NoError(t, err)
	fakeClock.Advance(time.Hour)
	_, err = svc.Reconcile(context.Background(), req)
	require.NoError(t, err)

	var metric dailymetricdomain.DailyMetric
	require.NoError(t, db.Where("date = ?", dailymetricdomain.Day(now)).First(&metric).Error)
	assert.Equal(t, int64(59980), metric.TotalRevenue)
	// Every settled payment bumps the counter, renewals for the same
	// account included.
	assert.Equal(t, int64(2), metric.ActiveSubscriptions)

	var metricRows int64
	require.NoError(t, db.Model(&dailymetricdomain.DailyMetric{}).Count(&metricRows).Error)
	assert.Equal(t, int64(1), metricRows)
}

func TestReconcile_UnknownPlanRollsBack(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db, svc, node, _ := setupReconcileTest(t, now)

	account := seedAccount(t, db, node, "rollback@example.com")

	_, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    node.Generate().String(),
		Method:    "BANK_TRANSFER",
	})
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)

	var payments int64
	require.NoError(t, db.Model(&paymentdomain.Payment{}).Count(&payments).Error)
	assert.Equal(t, int64(0), payments)

	var metrics int64
	require.NoError(t, db.Model(&dailymetricdomain.DailyMetric{}).Count(&metrics).Error)
	assert.Equal(t, int64(0), metrics)

	var updated accountdomain.Account
	require.NoError(t, db.Where("id = ?", account.ID).First(&updated).Error)
	assert.Equal(t, accountdomain.PlanTierFree, updated.Plan)
}

func TestReconcile_AccountNotFound(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db, svc, node, _ := setupReconcileTest(t, now)

	plan := seedPlan(t, db, node, "pro", 29990, plandomain.BillingPeriodMonthly)

	_, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: node.Generate().String(),
		PlanID:    plan.ID.String(),
		Method:    "BANK_TRANSFER",
	})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestReconcile_Validation(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db, svc, node, _ := setupReconcileTest(t, now)

	account := seedAccount(t, db, node, "validation@example.com")
	plan := seedPlan(t, db, node, "pro", 29990, plandomain.BillingPeriodMonthly)

	_, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    plan.ID.String(),
		Method:    "PAYPAL",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)

	negative := int64(-100)
	_, err = svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    plan.ID.String(),
		Amount:    &negative,
		Method:    "MANUAL",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	zero := int64(0)
	_, err = svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    plan.ID.String(),
		Amount:    &zero,
		Method:    "MANUAL",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	var payments int64
	require.NoError(t, db.Model(&paymentdomain.Payment{}).Count(&payments).Error)
	assert.Equal(t, int64(0), payments)

	_, err = svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: "not-a-number",
		PlanID:    plan.ID.String(),
		Method:    "MANUAL",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAccountID)

	_, err = svc.Reconcile(context.Background(), domain.ReconcileRequest{
		AccountID: account.ID.String(),
		PlanID:    "",
		Method:    "MANUAL",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPlanID)
}
