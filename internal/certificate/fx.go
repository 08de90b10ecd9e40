package certificate

import (
	"github.com/orbitaagency1ia/miautoescuela/internal/certificate/repository"
	"github.com/orbitaagency1ia/miautoescuela/internal/certificate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("certificate.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
