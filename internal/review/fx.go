package review

import (
	"github.com/carewise/escortcare/internal/review/repository"
	"github.com/carewise/escortcare/internal/review/service"
	"go.uber.org/fx"
)

var Module = fx.Module("review.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
