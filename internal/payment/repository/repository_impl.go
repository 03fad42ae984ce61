package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nutridesk/nutridesk/internal/payment/domain"
	"github.com/nutridesk/nutridesk/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

// Provide returns the payment repository.
func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, opts ...option.QueryOption) ([]*domain.Payment, error) {
	q := db.WithContext(ctx).Model(&domain.Payment{})

	if filter.AccountID != 0 {
		q = q.Where("account_id = ?", filter.AccountID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	for _, opt := range opts {
		q = opt.Apply(q)
	}

	var payments []*domain.Payment
	if err := q.Order("created_at DESC, id DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) Recent(ctx context.Context, db *gorm.DB, limit int) ([]domain.Payment, error) {
	if limit <= 0 {
		limit = 10
	}

	var payments []domain.Payment
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) SumCompleted(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&domain.Payment{}).Where("status = ?", domain.StatusCompleted)
	if !since.IsZero() {
		q = q.Where("paid_at >= ?", since)
	}
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) CountCompleted(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var count int64
	q := db.WithContext(ctx).Model(&domain.Payment{}).Where("status = ?", domain.StatusCompleted)
	if !since.IsZero() {
		q = q.Where("paid_at >= ?", since)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
