package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nutridesk/nutridesk/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keySimulateClient = "reconcile:simulate:client:%s"
	keyReconcileLock  = "reconcile:account:%s"

	simulateClientRate  = 1.0
	simulateClientBurst = 5
	reconcileLockTTL    = 10 * time.Second
)

// SimulateLimiter throttles the payment simulation endpoint per client and
// serializes reconciliations per account. Disabled (allow-everything) when
// no redis address is configured.
type SimulateLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker
}

func NewSimulateLimiter(cfg config.Config) *SimulateLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &SimulateLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
	}
}

func (l *SimulateLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *SimulateLimiter) AllowClient(ctx context.Context, clientID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf(keySimulateClient, strings.TrimSpace(clientID))
	return l.bucket.Allow(ctx, key, simulateClientRate, simulateClientBurst)
}

func (l *SimulateLimiter) TryLockAccount(ctx context.Context, accountID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	key := fmt.Sprintf(keyReconcileLock, strings.TrimSpace(accountID))
	return l.locker.TryLock(ctx, key, reconcileLockTTL)
}

func (l *SimulateLimiter) ReleaseAccount(ctx context.Context, accountID, token string) error {
	if !l.Enabled() {
		return nil
	}
	key := fmt.Sprintf(keyReconcileLock, strings.TrimSpace(accountID))
	return l.locker.Release(ctx, key, token)
}
