package pricing

import (
	"github.com/carewise/escortcare/internal/pricing/repository"
	"github.com/carewise/escortcare/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(repository.ProvideConfig),
	fx.Provide(service.New),
	fx.Provide(service.NewConfigService),
)
