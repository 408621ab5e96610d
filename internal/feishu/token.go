package feishu

import (
	"context"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xxxsen/vocabnote/internal/metrics"
)

// TokenFetchFunc obtains a fresh token and its lifetime from the identity
// endpoint.
type TokenFetchFunc func(ctx context.Context) (token string, expiresIn time.Duration, err error)

// TokenCache holds the tenant access token. Concurrent callers that find
// the cache empty or expired share a single refresh.
type TokenCache struct {
	fetch TokenFetchFunc
	skew  time.Duration
	now   func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

func NewTokenCache(fetch TokenFetchFunc, skew time.Duration) *TokenCache {
	if skew < 0 {
		skew = 0
	}
	return &TokenCache{fetch: fetch, skew: skew, now: time.Now}
}

func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		return token, nil
	}
	v, err, _ := c.group.Do("tenant_access_token", func() (interface{}, error) {
		if token, ok := c.cached(); ok {
			return token, nil
		}
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Refresh fetches a new token even if the cached one is still valid. It
// joins a refresh already in flight instead of starting another.
func (c *TokenCache) Refresh(ctx context.Context) (string, error) {
	v, err, _ := c.group.Do("tenant_access_token", func() (interface{}, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	start := c.now()
	token, expiresIn, err := c.fetch(ctx)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		logutil.GetLogger(ctx).Error("refresh tenant access token failed", zap.Error(err))
		return "", err
	}
	c.mu.Lock()
	c.token = token
	c.expiresAt = start.Add(expiresIn)
	c.mu.Unlock()
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	logutil.GetLogger(ctx).Info("tenant access token refreshed", zap.Duration("expires_in", expiresIn))
	return token, nil
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return "", false
	}
	if !c.now().Before(c.expiresAt.Add(-c.skew)) {
		return "", false
	}
	return c.token, true
}

// Invalidate drops the cached token so the next Token call refreshes.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

// ExpiresAt is the absolute expiry of the cached token, zero when empty.
func (c *TokenCache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}
