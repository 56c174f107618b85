package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/x-xyz/salebot/base/ctx"
)

// Ack is the echo of a posted announcement
type Ack struct {
	Id   string
	Text string
}

type Publisher interface {
	Publish(c ctx.Ctx, text string) (*Ack, error)
}

type PublishErrorKind string

const (
	PublishErrorAuth      PublishErrorKind = "auth"
	PublishErrorRateLimit PublishErrorKind = "rate_limit"
	PublishErrorTransient PublishErrorKind = "transient"
)

type PublishError struct {
	Kind PublishErrorKind
	// ResetAt is set on rate limit errors when the platform reports it
	ResetAt time.Time
	Err     error
}

func (e *PublishError) Error() string {
	if e.Kind == PublishErrorRateLimit && !e.ResetAt.IsZero() {
		return fmt.Sprintf("publish %s (reset at %s): %v", e.Kind, e.ResetAt.UTC().Format(time.RFC3339), e.Err)
	}
	return fmt.Sprintf("publish %s: %v", e.Kind, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

func NewAuthError(err error) error {
	return &PublishError{Kind: PublishErrorAuth, Err: err}
}

func NewRateLimitError(resetAt time.Time, err error) error {
	return &PublishError{Kind: PublishErrorRateLimit, ResetAt: resetAt, Err: err}
}

func NewTransientError(err error) error {
	return &PublishError{Kind: PublishErrorTransient, Err: err}
}

// ClassifyPublishError falls back to transient for errors no transport classified
func ClassifyPublishError(err error) *PublishError {
	var pErr *PublishError
	if errors.As(err, &pErr) {
		return pErr
	}
	return &PublishError{Kind: PublishErrorTransient, Err: err}
}
