package extract

import (
	"context"
	"errors"
)

// ErrUnsupported marks inputs no extractor can handle. It is non-retryable;
// the pipeline fails the document immediately instead of backing off.
var ErrUnsupported = errors.New("no extractor for mime type")

// Result is the outcome of a successful extraction.
type Result struct {
	Text string
	// Structured fields pulled out of the document, e.g. detected entities
	// or table summaries. Providers may leave this nil.
	Data map[string]interface{}
}

// Extractor turns an uploaded document into text plus structured data.
type Extractor interface {
	// Supports reports whether this extractor handles the mime type.
	Supports(mimeType string) bool

	// Extract processes the raw content. Errors other than ErrUnsupported
	// are treated as transient and retried by the pipeline.
	Extract(ctx context.Context, mimeType string, content []byte) (*Result, error)
}
