package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/nutridesk/nutridesk/internal/subscription/domain"
	subscriptionrepo "github.com/nutridesk/nutridesk/internal/subscription/repository"
	"github.com/nutridesk/nutridesk/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupSubscriptionTest(t *testing.T) (*gorm.DB, domain.Service, *snowflake.Node) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.Subscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		Repo:  subscriptionrepo.Provide(),
		Store: repository.ProvideStore[domain.Subscription](db),
	})

	return db, svc, node
}

func seedSubscription(t *testing.T, db *gorm.DB, node *snowflake.Node, status domain.Status) domain.Subscription {
	now := time.Now().UTC()
	sub := domain.Subscription{
		ID:        node.Generate(),
		AccountID: node.Generate(),
		PlanID:    node.Generate(),
		Status:    status,
		StartDate: now,
		EndDate:   now.AddDate(0, 1, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&sub).Error)
	return sub
}

func TestGetByAccountID(t *testing.T) {
	db, svc, node := setupSubscriptionTest(t)

	sub := seedSubscription(t, db, node, domain.StatusActive)

	found, err := svc.GetByAccountID(context.Background(), sub.AccountID.String())
	require.NoError(t, err)
	assert.Equal(t, sub.ID, found.ID)

	_, err = svc.GetByAccountID(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByAccountID(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidAccountID)
}

func TestListSubscriptions(t *testing.T) {
	db, svc, node := setupSubscriptionTest(t)

	seedSubscription(t, db, node, domain.StatusActive)
	seedSubscription(t, db, node, domain.StatusActive)
	seedSubscription(t, db, node, domain.StatusCanceled)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.List(context.Background(), "ACTIVE")
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = svc.List(context.Background(), "PAUSED")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpsert_ReplacesInPlace(t *testing.T) {
	db, svc, node := setupSubscriptionTest(t)
	_ = svc

	repo := subscriptionrepo.Provide()
	ctx := context.Background()
	now := time.Now().UTC()

	accountID := node.Generate()
	first := domain.Subscription{
		ID:        node.Generate(),
		AccountID: accountID,
		PlanID:    node.Generate(),
		Status:    domain.StatusActive,
		StartDate: now,
		EndDate:   now.AddDate(0, 1, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Upsert(ctx, db, &first))

	newPlan := node.Generate()
	second := domain.Subscription{
		ID:        node.Generate(),
		AccountID: accountID,
		PlanID:    newPlan,
		Status:    domain.StatusActive,
		StartDate: now.Add(time.Hour),
		EndDate:   now.AddDate(1, 0, 0),
		CreatedAt: now.Add(time.Hour),
		UpdatedAt: now.Add(time.Hour),
	}
	require.NoError(t, repo.Upsert(ctx, db, &second))

	var count int64
	require.NoError(t, db.Model(&domain.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	current, err := repo.FindByAccountID(ctx, db, accountID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, first.ID, current.ID)
	assert.Equal(t, newPlan, current.PlanID)
}
