package reconciliation

import (
	"github.com/nutridesk/nutridesk/internal/reconciliation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconciliation.service",
	fx.Provide(service.New),
)
