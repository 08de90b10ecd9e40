package subscription

import (
	"github.com/orbitaagency1ia/miautoescuela/internal/subscription/repository"
	"github.com/orbitaagency1ia/miautoescuela/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
