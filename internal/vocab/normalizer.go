// Package vocab turns bitable rows into display-ready words.
package vocab

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/vocabnote/internal/config"
	"github.com/xxxsen/vocabnote/internal/feishu"
	"github.com/xxxsen/vocabnote/internal/model"
)

const (
	Untitled     = "无标题"
	PreviewRunes = 100
	Ellipsis     = "..."
)

type Normalizer struct {
	fields config.FieldsConfig
}

func NewNormalizer(fields config.FieldsConfig) *Normalizer {
	return &Normalizer{fields: fields}
}

func (n *Normalizer) Normalize(raw feishu.RawRecord) model.Word {
	get := func(label string) feishu.FieldValue {
		return raw.Fields[label]
	}
	title := get(n.fields.Title).String()
	if title == "" {
		title = Untitled
	}
	content := get(n.fields.Content).String()
	return model.Word{
		ID:          raw.RecordID,
		InputWord:   get(n.fields.InputWord).String(),
		Title:       title,
		Sentence:    Sentence(get(n.fields.Sentence)),
		Comment:     get(n.fields.Comment).String(),
		Content:     content,
		Preview:     Preview(content),
		Domain:      get(n.fields.Domain).String(),
		Position:    get(n.fields.Position).String(),
		Reference:   get(n.fields.Reference).String(),
		CreatedTime: get(n.fields.CreatedTime).String(),
	}
}

// NormalizeAll normalizes raws and orders them newest first. CreatedTime is
// compared as a plain string, so it only orders correctly for sortable
// timestamp formats.
func (n *Normalizer) NormalizeAll(raws []feishu.RawRecord) []model.Word {
	words := make([]model.Word, 0, len(raws))
	for _, raw := range raws {
		words = append(words, n.Normalize(raw))
	}
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].CreatedTime > words[j].CreatedTime
	})
	return words
}

// Sentence flattens a possibly rich-text cell into one line of plain text.
func Sentence(v feishu.FieldValue) string {
	return strings.TrimSpace(strings.ReplaceAll(v.Resolve(), "\n", " "))
}

func Preview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:PreviewRunes]) + Ellipsis
}
