package coupon

import (
	"github.com/carewise/escortcare/internal/coupon/repository"
	"github.com/carewise/escortcare/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
