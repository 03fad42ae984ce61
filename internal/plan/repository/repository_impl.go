package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/nutridesk/nutridesk/internal/plan/domain"
	"gorm.io/gorm"
)

type repo struct{}

// Provide returns the plan repository.
func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *domain.MembershipPlan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MembershipPlan, error) {
	var plan domain.MembershipPlan
	err := db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.MembershipPlan, error) {
	var plan domain.MembershipPlan
	err := db.WithContext(ctx).Where("slug = ?", slug).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, onlyActive bool) ([]domain.MembershipPlan, error) {
	var plans []domain.MembershipPlan
	q := db.WithContext(ctx).Order("display_order ASC, price ASC")
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, plan *domain.MembershipPlan) error {
	return db.WithContext(ctx).Save(plan).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.MembershipPlan{}).Error
}
