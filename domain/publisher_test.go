package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassifyPublishError(t *testing.T) {
	req := require.New(t)
	reset := time.Unix(1700000000, 0)
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		kind PublishErrorKind
	}{
		{"auth", NewAuthError(cause), PublishErrorAuth},
		{"rate limit", NewRateLimitError(reset, cause), PublishErrorRateLimit},
		{"wrapped", fmt.Errorf("twitter: %w", NewAuthError(cause)), PublishErrorAuth},
		{"unclassified", cause, PublishErrorTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pErr := ClassifyPublishError(tt.err)
			req.Equal(tt.kind, pErr.Kind)
			req.ErrorIs(pErr, cause)
		})
	}
}

func TestPublishErrorMessage(t *testing.T) {
	req := require.New(t)
	err := NewRateLimitError(time.Unix(0, 0), errors.New("code 88"))
	req.Equal("publish rate_limit (reset at 1970-01-01T00:00:00Z): code 88", err.Error())
	req.Equal("publish auth: denied", NewAuthError(errors.New("denied")).Error())
}

func TestAddressShort(t *testing.T) {
	req := require.New(t)
	req.Equal("0xabcdef", Address("0xabcdef0123").Short(8))
	req.Equal("0xab", Address("0xab").Short(8))
	req.Equal("", Address("").Short(8))
}
