package profile

import (
	"github.com/orbitaagency1ia/miautoescuela/internal/profile/repository"
	"github.com/orbitaagency1ia/miautoescuela/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
