package order

import (
	"github.com/carewise/escortcare/internal/order/repository"
	"github.com/carewise/escortcare/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
