package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type TokenSource interface {
	ExpiresAt() time.Time
	Refresh(ctx context.Context) (string, error)
}

// TokenWarmupJob renews the tenant access token ahead of its expiry so
// page requests rarely pay for a refresh.
type TokenWarmupJob struct {
	tokens TokenSource
	ahead  time.Duration
	now    func() time.Time
}

func NewTokenWarmupJob(tokens TokenSource, ahead time.Duration) *TokenWarmupJob {
	return &TokenWarmupJob{tokens: tokens, ahead: ahead, now: time.Now}
}

func (j *TokenWarmupJob) Name() string {
	return "token_warmup"
}

func (j *TokenWarmupJob) Run(ctx context.Context) error {
	if j.tokens == nil {
		return nil
	}
	ahead := j.ahead
	if ahead <= 0 {
		ahead = 10 * time.Minute
	}
	expiresAt := j.tokens.ExpiresAt()
	if !expiresAt.IsZero() && j.now().Add(ahead).Before(expiresAt) {
		return nil
	}
	if _, err := j.tokens.Refresh(ctx); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Debug("tenant access token warmed up", zap.Time("previous_expiry", expiresAt))
	return nil
}
