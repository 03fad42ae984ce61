package dailymetric

import (
	"github.com/nutridesk/nutridesk/internal/dailymetric/repository"
	"github.com/nutridesk/nutridesk/internal/dailymetric/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dailymetric.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
