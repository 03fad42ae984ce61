package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plan *MembershipPlan) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MembershipPlan, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*MembershipPlan, error)
	List(ctx context.Context, db *gorm.DB, onlyActive bool) ([]MembershipPlan, error)
	Update(ctx context.Context, db *gorm.DB, plan *MembershipPlan) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
