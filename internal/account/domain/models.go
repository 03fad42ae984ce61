// Package domain contains persistence models for tenant accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PlanTier is the coarse account-level plan classification.
type PlanTier string

const (
	PlanTierFree       PlanTier = "FREE"
	PlanTierPro        PlanTier = "PRO"
	PlanTierEnterprise PlanTier = "ENTERPRISE"
)

// Account is a tenant user of the platform. Plan and SubscriptionEndsAt are
// denormalized from the subscription state and rewritten by reconciliation.
type Account struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	Email              string       `gorm:"not null;uniqueIndex" json:"email"`
	FullName           string       `gorm:"not null" json:"full_name"`
	Plan               PlanTier     `gorm:"type:text;not null;default:'FREE'" json:"plan"`
	SubscriptionEndsAt *time.Time   `gorm:"" json:"subscription_ends_at,omitempty"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }
