// Package wordcache keeps recently fetched bitable rows in memory.
package wordcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vocabnote/internal/feishu"
)

type Source interface {
	FetchRecords(ctx context.Context, filterUserID string) []feishu.RawRecord
}

// Wrap decorates src with an expirable LRU keyed by owner filter. It returns
// src unchanged when size or ttl is not positive.
func Wrap(src Source, size int, ttl time.Duration) Source {
	if src == nil || size <= 0 || ttl <= 0 {
		return src
	}
	return &lruSource{
		next:  src,
		cache: expirable.NewLRU[string, []feishu.RawRecord](size, nil, ttl),
	}
}

type lruSource struct {
	next  Source
	cache *expirable.LRU[string, []feishu.RawRecord]
}

func (l *lruSource) FetchRecords(ctx context.Context, filterUserID string) []feishu.RawRecord {
	if cached, ok := l.cache.Get(filterUserID); ok {
		logutil.GetLogger(ctx).Debug("record cache hit", zap.String("filter_user_id", filterUserID))
		return cloneRecords(cached)
	}
	res := l.next.FetchRecords(ctx, filterUserID)
	// an empty result may be a degraded failure, keep asking upstream
	if len(res) == 0 {
		return res
	}
	l.cache.Add(filterUserID, cloneRecords(res))
	return res
}

// Purge drops every cached entry of src if it is a cache.
func Purge(src Source) {
	if l, ok := src.(*lruSource); ok {
		l.cache.Purge()
	}
}

func cloneRecords(records []feishu.RawRecord) []feishu.RawRecord {
	clone := make([]feishu.RawRecord, len(records))
	copy(clone, records)
	return clone
}
