package patient

import (
	"github.com/carewise/escortcare/internal/patient/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("patient.service",
	fx.Provide(repository.Provide),
)
