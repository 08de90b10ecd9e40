package school

import (
	"github.com/orbitaagency1ia/miautoescuela/internal/school/repository"
	"github.com/orbitaagency1ia/miautoescuela/internal/school/service"
	"go.uber.org/fx"
)

var Module = fx.Module("school.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
