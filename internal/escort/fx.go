package escort

import (
	"github.com/carewise/escortcare/internal/escort/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("escort.service",
	fx.Provide(repository.Provide),
)
