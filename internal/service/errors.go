package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Controllers map these onto
// HTTP statuses; nothing below the controller layer knows about HTTP.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrSessionArchived      = errors.New("chat session is archived")
	ErrFeatureDisabled      = errors.New("feature not available on current plan")
	ErrSubscriptionInactive = errors.New("subscription is not active")
	ErrQuotaExceeded        = errors.New("usage quota exceeded")
	ErrUpstreamUnavailable  = errors.New("assistant upstream unavailable")
	ErrInvalidDocument      = errors.New("document failed validation")
	ErrDocumentTerminal     = errors.New("document already reached a terminal state")
	ErrCannotCancel         = errors.New("document can no longer be canceled")
)

// QuotaExceededError carries the numbers behind a quota denial so callers
// can render them. It matches ErrQuotaExceeded under errors.Is.
type QuotaExceededError struct {
	Metric string
	Limit  int
	Used   int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: used %d of %d", e.Metric, e.Used, e.Limit)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
