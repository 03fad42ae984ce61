// Package domain contains persistence models for the membership plan catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BillingPeriod is the plan renewal cadence.
type BillingPeriod string

const (
	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

// MembershipPlan is a catalog entry. Prices are stored in minor units; CLP
// carries no decimals so the amount is the face value.
type MembershipPlan struct {
	ID            snowflake.ID   `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Slug          string         `gorm:"not null;uniqueIndex" json:"slug"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	Price         int64          `gorm:"not null" json:"price"`
	Currency      string         `gorm:"not null;default:'CLP'" json:"currency"`
	BillingPeriod BillingPeriod  `gorm:"type:text;not null;default:'monthly'" json:"billing_period"`
	Features      datatypes.JSON `gorm:"type:jsonb" json:"features,omitempty"`
	MaxPatients   *int           `gorm:"" json:"max_patients,omitempty"`
	MaxStorageGB  *int           `gorm:"" json:"max_storage_gb,omitempty"`
	IsPopular     bool           `gorm:"not null;default:false" json:"is_popular"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	DisplayOrder  int            `gorm:"not null;default:0" json:"display_order"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MembershipPlan) TableName() string { return "membership_plans" }
