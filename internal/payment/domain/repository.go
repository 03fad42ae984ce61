package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nutridesk/nutridesk/pkg/db/option"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, opts ...option.QueryOption) ([]*Payment, error)
	Recent(ctx context.Context, db *gorm.DB, limit int) ([]Payment, error)
	SumCompleted(ctx context.Context, db *gorm.DB, since time.Time) (int64, error)
	CountCompleted(ctx context.Context, db *gorm.DB, since time.Time) (int64, error)
}

// ListFilter narrows the ledger listing. Zero values match everything.
type ListFilter struct {
	AccountID snowflake.ID
	Status    Status
}
