package domain

import (
	"context"
	"errors"
)

type CreatePlanRequest struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description,omitempty"`
	Price         int64    `json:"price"`
	Currency      string   `json:"currency,omitempty"`
	BillingPeriod string   `json:"billing_period,omitempty"`
	Features      []string `json:"features,omitempty"`
	MaxPatients   *int     `json:"max_patients,omitempty"`
	MaxStorageGB  *int     `json:"max_storage_gb,omitempty"`
	IsPopular     bool     `json:"is_popular,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
	DisplayOrder  int      `json:"display_order,omitempty"`
}

type UpdatePlanRequest struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *int64   `json:"price,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	BillingPeriod *string  `json:"billing_period,omitempty"`
	Features      []string `json:"features,omitempty"`
	MaxPatients   *int     `json:"max_patients,omitempty"`
	MaxStorageGB  *int     `json:"max_storage_gb,omitempty"`
	IsPopular     *bool    `json:"is_popular,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
	DisplayOrder  *int     `json:"display_order,omitempty"`
}

type Service interface {
	List(ctx context.Context) ([]MembershipPlan, error)
	ListActive(ctx context.Context) ([]MembershipPlan, error)
	GetByID(ctx context.Context, id string) (MembershipPlan, error)
	Create(ctx context.Context, req CreatePlanRequest) (MembershipPlan, error)
	Update(ctx context.Context, id string, req UpdatePlanRequest) (MembershipPlan, error)
	Delete(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (MembershipPlan, error)
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidSlug          = errors.New("invalid_slug")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrInvalidBillingPeriod = errors.New("invalid_billing_period")
	ErrSlugTaken            = errors.New("slug_taken")
	ErrNotFound             = errors.New("plan_not_found")
)
