package domain

import (
	"context"
	"errors"
)

type Service interface {
	GetByAccountID(ctx context.Context, accountID string) (Subscription, error)
	List(ctx context.Context, status string) ([]*Subscription, error)
}

var (
	ErrInvalidAccountID = errors.New("invalid_account_id")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrNotFound         = errors.New("subscription_not_found")
)
