package domain

import (
	"context"
	"errors"
)

type CreateAccountRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type Service interface {
	Create(context.Context, CreateAccountRequest) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	Count(ctx context.Context) (int64, error)
}

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("account_not_found")
)
