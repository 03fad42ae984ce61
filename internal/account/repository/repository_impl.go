package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nutridesk/nutridesk/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, full_name, plan, subscription_ends_at, created_at, updated_at
		 FROM accounts WHERE id = ?`,
		id,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Account{}).Count(&count).Error
	return count, err
}

func (r *repo) UpdatePlan(ctx context.Context, db *gorm.DB, id snowflake.ID, tier domain.PlanTier, endsAt *time.Time, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE accounts SET plan = ?, subscription_ends_at = ?, updated_at = ? WHERE id = ?`,
		tier,
		endsAt,
		now,
		id,
	).Error
}
