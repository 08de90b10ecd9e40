package course

import (
	"github.com/orbitaagency1ia/miautoescuela/internal/course/repository"
	"github.com/orbitaagency1ia/miautoescuela/internal/course/service"
	"go.uber.org/fx"
)

var Module = fx.Module("course.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
