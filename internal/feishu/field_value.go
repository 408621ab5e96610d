package feishu

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type FieldKind int

const (
	FieldEmpty FieldKind = iota
	FieldPlain
	FieldRichText
)

// TextRun is one formatted fragment of a rich-text cell.
type TextRun struct {
	Text string
}

// FieldValue is a decoded bitable cell. Cells arrive as plain strings,
// numbers, rich-text run lists, or strings holding a JSON encoded run list;
// the shape is resolved once when the record is decoded.
type FieldValue struct {
	kind     FieldKind
	raw      string
	runs     []TextRun
	embedded bool
	// textless marks a native list or object with no text runs, shown as
	// its display form but resolving to nothing as rich text.
	textless bool
}

func PlainText(s string) FieldValue {
	return FieldValue{kind: FieldPlain, raw: s}
}

func RichText(runs ...TextRun) FieldValue {
	return FieldValue{kind: FieldRichText, runs: runs}
}

// ParseText decodes a string cell. A value whose trimmed form starts with
// '[' or '{' and parses as a run list (or a single object with "text") is
// rich text; anything else stays plain.
func ParseText(s string) FieldValue {
	v := PlainText(s)
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
		return v
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return v
	}
	runs, ok := textRuns(parsed)
	if !ok {
		return v
	}
	v.kind = FieldRichText
	v.runs = runs
	v.embedded = true
	return v
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var parsed interface{}
	if err := dec.Decode(&parsed); err != nil {
		return err
	}
	switch val := parsed.(type) {
	case nil:
		*v = FieldValue{}
	case string:
		*v = ParseText(val)
	case json.Number:
		*v = PlainText(val.String())
	case bool:
		*v = PlainText(strconv.FormatBool(val))
	default:
		runs, ok := textRuns(val)
		if ok && len(runs) > 0 {
			*v = RichText(runs...)
			return nil
		}
		display, err := displayText(val, data)
		if err != nil {
			return err
		}
		*v = PlainText(display)
		v.textless = ok
	}
	return nil
}

// displayText renders a native list or object that is not rich text. A list
// of strings, such as a multi-select cell, is joined with ", "; anything else
// is kept as compact JSON.
func displayText(val interface{}, data []byte) (string, error) {
	if items, ok := val.([]interface{}); ok {
		if len(items) == 0 {
			return "", nil
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				parts = nil
				break
			}
			parts = append(parts, s)
		}
		if parts != nil {
			return strings.Join(parts, ", "), nil
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return "", err
	}
	return compact.String(), nil
}

func (v FieldValue) Kind() FieldKind {
	return v.kind
}

func (v FieldValue) IsEmpty() bool {
	return v.kind == FieldEmpty
}

func (v FieldValue) Runs() []TextRun {
	return v.runs
}

// String is the cell as text without rich-text interpretation of string
// cells: plain and embedded values come back verbatim, native run lists
// are concatenated.
func (v FieldValue) String() string {
	switch {
	case v.kind == FieldEmpty:
		return ""
	case v.kind == FieldPlain || v.embedded:
		return v.raw
	default:
		return joinRuns(v.runs)
	}
}

// Resolve is the cell as text with rich text flattened to its runs.
func (v FieldValue) Resolve() string {
	switch v.kind {
	case FieldRichText:
		return joinRuns(v.runs)
	case FieldPlain:
		if v.textless {
			return ""
		}
		return v.raw
	default:
		return ""
	}
}

func joinRuns(runs []TextRun) string {
	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// textRuns extracts text runs from a decoded list or object. Elements that
// are not objects carrying "text" contribute nothing; a non-string "text"
// makes the whole value unusable as rich text.
func textRuns(parsed interface{}) ([]TextRun, bool) {
	switch val := parsed.(type) {
	case []interface{}:
		runs := make([]TextRun, 0, len(val))
		for _, item := range val {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			text, ok := obj["text"]
			if !ok {
				continue
			}
			s, ok := text.(string)
			if !ok {
				return nil, false
			}
			runs = append(runs, TextRun{Text: s})
		}
		return runs, true
	case map[string]interface{}:
		text, ok := val["text"]
		if !ok {
			return nil, true
		}
		s, ok := text.(string)
		if !ok {
			return nil, false
		}
		return []TextRun{{Text: s}}, true
	}
	return nil, false
}
