package extract

import (
	"context"
	"strings"
	"unicode/utf8"
)

var textMimeTypes = map[string]bool{
	"text/plain":    true,
	"text/csv":      true,
	"text/markdown": true,
}

// TextExtractor handles plain-text families: the content is the text. It
// also records basic shape statistics as structured data.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Supports(mimeType string) bool {
	return textMimeTypes[mimeType]
}

func (e *TextExtractor) Extract(ctx context.Context, mimeType string, content []byte) (*Result, error) {
	if !e.Supports(mimeType) {
		return nil, ErrUnsupported
	}
	if !utf8.Valid(content) {
		return nil, ErrUnsupported
	}

	text := string(content)
	lines := strings.Count(text, "\n") + 1

	return &Result{
		Text: text,
		Data: map[string]interface{}{
			"mime_type": mimeType,
			"lines":     lines,
			"chars":     utf8.RuneCountInString(text),
		},
	}, nil
}

// Registry tries extractors in order and dispatches on mime type.
type Registry struct {
	extractors []Extractor
}

func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

func (r *Registry) Supports(mimeType string) bool {
	for _, e := range r.extractors {
		if e.Supports(mimeType) {
			return true
		}
	}
	return false
}

func (r *Registry) Extract(ctx context.Context, mimeType string, content []byte) (*Result, error) {
	for _, e := range r.extractors {
		if e.Supports(mimeType) {
			return e.Extract(ctx, mimeType, content)
		}
	}
	return nil, ErrUnsupported
}
