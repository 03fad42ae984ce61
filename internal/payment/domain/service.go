package domain

import (
	"context"
	"errors"

	"github.com/nutridesk/nutridesk/pkg/db/pagination"
)

// CreatePaymentRequest registers a settled payment directly on the ledger.
// Rows are append-only and always land COMPLETED; gateway callbacks carry
// their transaction reference, retried calls their idempotency key.
type CreatePaymentRequest struct {
	AccountID      string         `json:"account_id"`
	PlanID         string         `json:"plan_id"`
	Amount         int64          `json:"amount"`
	Method         string         `json:"method"`
	Description    string         `json:"description"`
	TransactionID  *string        `json:"transaction_id"`
	IdempotencyKey *string        `json:"idempotency_key"`
	Metadata       map[string]any `json:"metadata"`
}

type ListPaymentsRequest struct {
	pagination.Pagination

	AccountID string `form:"account_id"`
	Status    string `form:"status"`
}

type ListPaymentsResponse struct {
	Payments []*Payment           `json:"payments"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

// RevenueStats summarizes the COMPLETED side of the ledger. MRR covers the
// current calendar month, from its first day at midnight UTC.
type RevenueStats struct {
	TotalLifetime     int64  `json:"total_lifetime"`
	MonthlyRecurring  int64  `json:"monthly_recurring"`
	PaymentsThisMonth int64  `json:"payments_this_month"`
	Currency          string `json:"currency"`
}

type Service interface {
	Create(ctx context.Context, req CreatePaymentRequest) (Payment, error)
	List(ctx context.Context, req ListPaymentsRequest) (ListPaymentsResponse, error)
	Recent(ctx context.Context, limit int) ([]Payment, error)
	GetByID(ctx context.Context, id string) (Payment, error)
	Stats(ctx context.Context) (RevenueStats, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidAccountID = errors.New("invalid_account_id")
	ErrInvalidPlanID    = errors.New("invalid_plan_id")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidMethod    = errors.New("invalid_method")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrNotFound         = errors.New("payment_not_found")
)
