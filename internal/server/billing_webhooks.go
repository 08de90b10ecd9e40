package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/orbitaagency1ia/miautoescuela/internal/subscription/domain"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// BillingWebhook accepts provider events. Replays acknowledge with 200 so
// the provider stops retrying; unknown customers return 404 and let the
// provider retry until the school record catches up.
func (s *Server) BillingWebhook(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))
	if provider == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.subscriptionSvc.IngestWebhook(c.Request.Context(), provider, payload)
	switch {
	case err == nil:
		s.metrics.WebhookEvents.WithLabelValues(provider, "processed").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, subscriptiondomain.ErrEventAlreadyProcessed):
		s.metrics.WebhookEvents.WithLabelValues(provider, "duplicate").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	default:
		s.metrics.WebhookEvents.WithLabelValues(provider, "error").Inc()
		s.log.Warn("webhook ingest failed", zap.String("provider", provider), zap.Error(err))
		AbortWithError(c, err)
	}
}
