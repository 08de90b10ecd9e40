package email

import (
	"github.com/orbitaagency1ia/miautoescuela/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewProvider),
)

// NewProvider returns the SMTP provider when configured, NoOp otherwise.
func NewProvider(cfg config.Config, log *zap.Logger) Provider {
	if cfg.SMTPHost == "" {
		log.Info("smtp not configured, email disabled")
		return &NoOpProvider{}
	}
	return NewSMTP(Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}
