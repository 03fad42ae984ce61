// Package domain defines the subscription reconciliation operation: one
// transaction that records a settled payment, renews the account's
// subscription, syncs the account plan tier and folds the amount into the
// day's metric bucket.
package domain

import (
	"context"
	"errors"

	paymentdomain "github.com/nutridesk/nutridesk/internal/payment/domain"
	subscriptiondomain "github.com/nutridesk/nutridesk/internal/subscription/domain"
)

type ReconcileRequest struct {
	AccountID string `json:"account_id"`
	PlanID    string `json:"plan_id"`
	// Amount overrides the plan price when set. Nil means charge the
	// catalog price.
	Amount *int64 `json:"amount,omitempty"`
	Method string `json:"method"`
}

type ReconcileResult struct {
	Payment      paymentdomain.Payment           `json:"payment"`
	Subscription subscriptiondomain.Subscription `json:"subscription"`
}

type Service interface {
	Reconcile(ctx context.Context, req ReconcileRequest) (ReconcileResult, error)
}

var (
	ErrInvalidAccountID = errors.New("invalid_account_id")
	ErrInvalidPlanID    = errors.New("invalid_plan_id")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidMethod    = errors.New("invalid_method")
	ErrAccountNotFound  = errors.New("account_not_found")
	ErrPlanNotFound     = errors.New("plan_not_found")
)
