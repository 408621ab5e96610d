package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vocabnote/internal/config"
	"github.com/xxxsen/vocabnote/internal/feishu"
	"github.com/xxxsen/vocabnote/internal/model"
	appErr "github.com/xxxsen/vocabnote/internal/pkg/errors"
	"github.com/xxxsen/vocabnote/internal/vocab"
	"github.com/xxxsen/vocabnote/internal/wordcache"
)

type RecordSource interface {
	FetchRecords(ctx context.Context, filterUserID string) []feishu.RawRecord
}

type RecordWriter interface {
	CreateRecord(ctx context.Context, fields map[string]interface{}) (string, error)
}

type WordService struct {
	source        RecordSource
	writer        RecordWriter
	normalizer    *vocab.Normalizer
	fields        config.FieldsConfig
	perUserFilter bool
}

func NewWordService(source RecordSource, writer RecordWriter, fields config.FieldsConfig, perUserFilter bool) *WordService {
	return &WordService{
		source:        source,
		writer:        writer,
		normalizer:    vocab.NewNormalizer(fields),
		fields:        fields,
		perUserFilter: perUserFilter,
	}
}

func (s *WordService) owner(userID string) string {
	if !s.perUserFilter {
		return ""
	}
	return userID
}

// List returns the words visible to userID, newest first.
func (s *WordService) List(ctx context.Context, userID string) []model.Word {
	return s.normalizer.NormalizeAll(s.source.FetchRecords(ctx, s.owner(userID)))
}

// Get looks up a single word among the ones visible to userID.
func (s *WordService) Get(ctx context.Context, userID, recordID string) (*model.Word, error) {
	for _, raw := range s.source.FetchRecords(ctx, s.owner(userID)) {
		if raw.RecordID != recordID {
			continue
		}
		word := s.normalizer.Normalize(raw)
		return &word, nil
	}
	return nil, appErr.ErrNotFound
}

// Submit appends a word to the table on behalf of sub.UserID.
func (s *WordService) Submit(ctx context.Context, sub model.WordSubmission) (string, error) {
	word := strings.TrimSpace(sub.Word)
	if word == "" {
		return "", fmt.Errorf("word is required: %w", appErr.ErrInvalid)
	}
	fields := map[string]interface{}{
		s.fields.Owner:     sub.UserID,
		s.fields.InputWord: word,
	}
	if domain := strings.TrimSpace(sub.Domain); domain != "" {
		fields[s.fields.Domain] = domain
	}
	if link := NormalizeSourceURL(sub.SourceURL); link != "" {
		fields[s.fields.SourceURL] = link
	}
	id, err := s.writer.CreateRecord(ctx, fields)
	if err != nil {
		logutil.GetLogger(ctx).Error("create record failed", zap.String("user_id", sub.UserID), zap.Error(err))
		return "", fmt.Errorf("submit word: %w", appErr.ErrUpstream)
	}
	wordcache.Purge(s.source)
	logutil.GetLogger(ctx).Info("word submitted",
		zap.String("user_id", sub.UserID), zap.String("record_id", id))
	return id, nil
}

// NormalizeSourceURL trims raw and prefixes https:// when no scheme is
// present. Blank input stays blank.
func NormalizeSourceURL(raw string) string {
	link := strings.TrimSpace(raw)
	if link == "" || strings.HasPrefix(link, "http") {
		return link
	}
	return "https://" + link
}
