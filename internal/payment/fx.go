package payment

import (
	"github.com/nutridesk/nutridesk/internal/payment/repository"
	"github.com/nutridesk/nutridesk/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
