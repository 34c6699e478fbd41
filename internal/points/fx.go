package points

import (
	"github.com/carewise/escortcare/internal/points/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("points.service",
	fx.Provide(repository.Provide),
)
