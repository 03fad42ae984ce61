package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert creates the account's subscription or, when one exists,
	// replaces its plan, status and period in place.
	Upsert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByAccountID(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*Subscription, error)
	CountByStatus(ctx context.Context, db *gorm.DB, status Status) (int64, error)
}
