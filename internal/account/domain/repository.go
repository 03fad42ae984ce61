package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Account, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	UpdatePlan(ctx context.Context, db *gorm.DB, id snowflake.ID, tier PlanTier, endsAt *time.Time, now time.Time) error
}
