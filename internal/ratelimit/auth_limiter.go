package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orbitaagency1ia/miautoescuela/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyLoginIP  = "auth:login:ip:%s"
	keyRedeemIP = "invite:redeem:ip:%s"
)

const (
	loginRate   = 0.5 // tokens per second, 30/min sustained
	loginBurst  = 10
	redeemRate  = 0.2
	redeemBurst = 5
)

// AuthLimiter throttles credential guessing and invite-token probing per
// client IP. Without a Redis address it stays disabled and lets everything
// through.
type AuthLimiter struct {
	enabled bool
	bucket  *TokenBucket
}

func NewAuthLimiter(cfg config.Config) *AuthLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.RedisPassword,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &AuthLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
	}
}

func (l *AuthLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *AuthLimiter) AllowLogin(ctx context.Context, ip string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyLoginIP, strings.TrimSpace(ip)), loginRate, loginBurst)
}

func (l *AuthLimiter) AllowRedeem(ctx context.Context, ip string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyRedeemIP, strings.TrimSpace(ip)), redeemRate, redeemBurst)
}
