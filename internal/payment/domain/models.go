// Package domain contains the payment ledger models. Ledger rows are
// append-only; status transitions create new records upstream, never
// rewrite history.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the settlement state of a ledger entry.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Method identifies how the payment was collected.
type Method string

const (
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodWebpay       Method = "WEBPAY"
	MethodManual       Method = "MANUAL"
)

// ParseMethod validates a wire value against the known collection methods.
func ParseMethod(raw string) (Method, bool) {
	switch Method(raw) {
	case MethodBankTransfer, MethodCreditCard, MethodWebpay, MethodManual:
		return Method(raw), true
	}
	return "", false
}

type Payment struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID      snowflake.ID      `gorm:"not null;index" json:"account_id"`
	PlanID         snowflake.ID      `gorm:"not null" json:"plan_id"`
	SubscriptionID *snowflake.ID     `gorm:"" json:"subscription_id,omitempty"`
	Amount         int64             `gorm:"not null" json:"amount"`
	Currency       string            `gorm:"not null;default:'CLP'" json:"currency"`
	Status         Status            `gorm:"type:text;not null;index" json:"status"`
	Method         Method            `gorm:"type:text;not null" json:"method"`
	Description    string            `gorm:"type:text" json:"description,omitempty"`
	TransactionID  *string           `gorm:"uniqueIndex" json:"transaction_id,omitempty"`
	IdempotencyKey *string           `gorm:"uniqueIndex" json:"idempotency_key,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	PaidAt         *time.Time        `gorm:"" json:"paid_at,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
