// Package domain contains the per-day usage and revenue aggregates that
// back the admin dashboard charts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// DailyMetric holds one calendar day's aggregate. Date is truncated to
// midnight UTC, one row per day.
type DailyMetric struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	Date                time.Time    `gorm:"not null;uniqueIndex" json:"date"`
	TotalRevenue        int64        `gorm:"not null;default:0" json:"total_revenue"`
	NewUsers            int64        `gorm:"not null;default:0" json:"new_users"`
	ActiveSubscriptions int64        `gorm:"not null;default:0" json:"active_subscriptions"`
	TotalUsers          int64        `gorm:"not null;default:0" json:"total_users"`
	CreatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (DailyMetric) TableName() string { return "daily_metrics" }

// Day truncates t to midnight UTC, the canonical bucket key.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
