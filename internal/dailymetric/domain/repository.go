package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// ApplyPayment folds one settled payment into the day's bucket. The
	// increments run inside the INSERT's conflict branch so concurrent
	// writers never lose updates.
	ApplyPayment(ctx context.Context, db *gorm.DB, id snowflake.ID, day time.Time, amount, totalUsers int64, now time.Time) error
	FindByDate(ctx context.Context, db *gorm.DB, day time.Time) (*DailyMetric, error)
	Range(ctx context.Context, db *gorm.DB, from, to time.Time) ([]DailyMetric, error)
}
