package auth

import (
	"github.com/orbitaagency1ia/miautoescuela/internal/auth/repository"
	"github.com/orbitaagency1ia/miautoescuela/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
