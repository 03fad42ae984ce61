package subscription

import (
	"github.com/nutridesk/nutridesk/internal/subscription/domain"
	"github.com/nutridesk/nutridesk/internal/subscription/repository"
	"github.com/nutridesk/nutridesk/internal/subscription/service"
	pkgrepository "github.com/nutridesk/nutridesk/pkg/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(db *gorm.DB) pkgrepository.Repository[domain.Subscription] {
		return pkgrepository.ProvideStore[domain.Subscription](db)
	}),
	fx.Provide(service.New),
)
