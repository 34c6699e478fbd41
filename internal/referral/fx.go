package referral

import (
	"github.com/carewise/escortcare/internal/referral/repository"
	"github.com/carewise/escortcare/internal/referral/service"
	"go.uber.org/fx"
)

var Module = fx.Module("referral.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
