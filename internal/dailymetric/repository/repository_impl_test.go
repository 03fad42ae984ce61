package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/nutridesk/nutridesk/internal/dailymetric/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMetricTest(t *testing.T) (*gorm.DB, domain.Repository, *snowflake.Node) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.DailyMetric{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return db, Provide(), node
}

func TestApplyPayment_CreateThenIncrement(t *testing.T) {
	db, repo, node := setupMetricTest(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	day := domain.Day(now)

	require.NoError(t, repo.ApplyPayment(ctx, db, node.Generate(), day, 29990, 3, now))

	metric, err := repo.FindByDate(ctx, db, day)
	require.NoError(t, err)
	require.NotNil(t, metric)
	assert.Equal(t, int64(29990), metric.TotalRevenue)
	assert.Equal(t, int64(1), metric.ActiveSubscriptions)
	assert.Equal(t, int64(3), metric.TotalUsers)

	// Second payment on the same day folds into the existing row.
	require.NoError(t, repo.ApplyPayment(ctx, db, node.Generate(), day, 10000, 4, now.Add(time.Hour)))

	metric, err = repo.FindByDate(ctx, db, day)
	require.NoError(t, err)
	require.NotNil(t, metric)
	assert.Equal(t, int64(39990), metric.TotalRevenue)
	assert.Equal(t, int64(2), metric.ActiveSubscriptions)
	assert.Equal(t, int64(4), metric.TotalUsers)

	var rows int64
	require.NoError(t, db.Model(&domain.DailyMetric{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestRange(t *testing.T) {
	db, repo, node := setupMetricTest(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		day := base.AddDate(0, 0, i)
		require.NoError(t, repo.ApplyPayment(ctx, db, node.Generate(), day, 1000, 1, day))
	}

	metrics, err := repo.Range(ctx, db, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, metrics, 3)
	assert.Equal(t, base.AddDate(0, 0, 1), metrics[0].Date.UTC())
	assert.Equal(t, base.AddDate(0, 0, 3), metrics[2].Date.UTC())
}

func TestDay_TruncatesToMidnightUTC(t *testing.T) {
	local := time.Date(2026, 3, 10, 23, 45, 0, 0, time.FixedZone("CLT", -3*3600))
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), domain.Day(local))
}
