package migration

import (
	accountdomain "github.com/nutridesk/nutridesk/internal/account/domain"
	"github.com/nutridesk/nutridesk/internal/config"
	dailymetricdomain "github.com/nutridesk/nutridesk/internal/dailymetric/domain"
	paymentdomain "github.com/nutridesk/nutridesk/internal/payment/domain"
	plandomain "github.com/nutridesk/nutridesk/internal/plan/domain"
	"github.com/nutridesk/nutridesk/internal/seed"
	subscriptiondomain "github.com/nutridesk/nutridesk/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are for local development only; gorm's
			// schema sync is good enough there.
			err := conn.AutoMigrate(
				&accountdomain.Account{},
				&plandomain.MembershipPlan{},
				&subscriptiondomain.Subscription{},
				&paymentdomain.Payment{},
				&dailymetricdomain.DailyMetric{},
			)
			if err != nil {
				return err
			}
		}

		if cfg.SeedPlans {
			return seed.EnsureDefaultPlans(conn)
		}
		return nil
	}),
)
