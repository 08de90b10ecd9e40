package invite

import (
	"github.com/orbitaagency1ia/miautoescuela/internal/invite/repository"
	"github.com/orbitaagency1ia/miautoescuela/internal/invite/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invite.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
