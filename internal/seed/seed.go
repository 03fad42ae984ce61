// Package seed bootstraps the membership plan catalog so a fresh install
// is usable without manual setup.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/nutridesk/nutridesk/internal/plan/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type planSeed struct {
	Name         string
	Slug         string
	Description  string
	Price        int64
	Features     []string
	MaxPatients  *int
	MaxStorageGB *int
	IsPopular    bool
	DisplayOrder int
}

func intPtr(v int) *int { return &v }

var defaultPlans = []planSeed{
	{
		Name:        "Free",
		Slug:        "free",
		Description: "Para nutricionistas que recién comienzan",
		Price:       0,
		Features: []string{
			"Hasta 10 pacientes",
			"Fichas clínicas básicas",
			"Calendario de citas",
		},
		MaxPatients:  intPtr(10),
		MaxStorageGB: intPtr(1),
		DisplayOrder: 1,
	},
	{
		Name:        "Pro",
		Slug:        "pro",
		Description: "Para consultas en crecimiento",
		Price:       29990,
		Features: []string{
			"Pacientes ilimitados",
			"Planes de alimentación personalizados",
			"Recordatorios automáticos",
			"Reportes de progreso",
		},
		MaxStorageGB: intPtr(20),
		IsPopular:    true,
		DisplayOrder: 2,
	},
	{
		Name:        "Enterprise",
		Slug:        "enterprise",
		Description: "Para clínicas y equipos de nutrición",
		Price:       99990,
		Features: []string{
			"Todo lo del plan Pro",
			"Múltiples profesionales",
			"Marca personalizada",
			"Soporte prioritario",
		},
		MaxStorageGB: intPtr(100),
		DisplayOrder: 3,
	},
}

// EnsureDefaultPlans seeds the free, pro and enterprise plans. Existing
// slugs are left untouched so operator edits survive restarts.
func EnsureDefaultPlans(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range defaultPlans {
			if err := ensurePlanTx(ctx, tx, node, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensurePlanTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, p planSeed) error {
	var existing plandomain.MembershipPlan
	err := tx.WithContext(ctx).Where("slug = ?", p.Slug).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	features, err := json.Marshal(p.Features)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	plan := plandomain.MembershipPlan{
		ID:            node.Generate(),
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		Currency:      "CLP",
		BillingPeriod: plandomain.BillingPeriodMonthly,
		Features:      datatypes.JSON(features),
		MaxPatients:   p.MaxPatients,
		MaxStorageGB:  p.MaxStorageGB,
		IsPopular:     p.IsPopular,
		IsActive:      true,
		DisplayOrder:  p.DisplayOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return tx.WithContext(ctx).Create(&plan).Error
}
