// Package domain contains subscription models. Each account holds at most
// one subscription row; renewals overwrite it in place.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusTrialing Status = "TRIALING"
	StatusPastDue  Status = "PAST_DUE"
	StatusCanceled Status = "CANCELED"
	StatusExpired  Status = "EXPIRED"
)

type Subscription struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID `gorm:"not null;uniqueIndex" json:"account_id"`
	PlanID    snowflake.ID `gorm:"not null" json:"plan_id"`
	Status    Status       `gorm:"type:text;not null" json:"status"`
	StartDate time.Time    `gorm:"not null" json:"start_date"`
	EndDate   time.Time    `gorm:"not null" json:"end_date"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
