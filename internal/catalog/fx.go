package catalog

import (
	"github.com/carewise/escortcare/internal/catalog/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
)
