package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nutridesk/nutridesk/internal/dailymetric/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

// Provide returns the daily metric repository.
func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ApplyPayment(ctx context.Context, db *gorm.DB, id snowflake.ID, day time.Time, amount, totalUsers int64, now time.Time) error {
	metric := domain.DailyMetric{
		ID:                  id,
		Date:                day,
		TotalRevenue:        amount,
		NewUsers:            0,
		ActiveSubscriptions: 1,
		TotalUsers:          totalUsers,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_revenue":        gorm.Expr("total_revenue + ?", amount),
			"active_subscriptions": gorm.Expr("active_subscriptions + 1"),
			"total_users":          totalUsers,
			"updated_at":           now,
		}),
	}).Create(&metric).Error
}

func (r *repo) FindByDate(ctx context.Context, db *gorm.DB, day time.Time) (*domain.DailyMetric, error) {
	var metric domain.DailyMetric
	err := db.WithContext(ctx).Where("date = ?", day).First(&metric).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

func (r *repo) Range(ctx context.Context, db *gorm.DB, from, to time.Time) ([]domain.DailyMetric, error) {
	var metrics []domain.DailyMetric
	err := db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&metrics).Error
	if err != nil {
		return nil, err
	}
	return metrics, nil
}
