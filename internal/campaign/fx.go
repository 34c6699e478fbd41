package campaign

import (
	"github.com/carewise/escortcare/internal/campaign/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("campaign.service",
	fx.Provide(repository.Provide),
)
