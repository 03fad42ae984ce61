package account

import (
	"github.com/nutridesk/nutridesk/internal/account/repository"
	"github.com/nutridesk/nutridesk/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
