package discord

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/domain"
)

func restError(status int, header http.Header) error {
	return &discordgo.RESTError{
		Response:     &http.Response{StatusCode: status, Header: header},
		ResponseBody: []byte(`{"message":"nope","code":0}`),
	}
}

func TestPublish(t *testing.T) {
	req := require.New(t)
	var gotChannel, gotContent string
	p := newPublisher("123", func(ctx context.Context, channelId, content string) (*discordgo.Message, error) {
		gotChannel, gotContent = channelId, content
		return &discordgo.Message{ID: "m1", Content: content}, nil
	})

	ack, err := p.Publish(bCtx.Background(), "sold")
	req.NoError(err)
	req.Equal(&domain.Ack{Id: "m1", Text: "sold"}, ack)
	req.Equal("123", gotChannel)
	req.Equal("sold", gotContent)
}

func TestPublishErrors(t *testing.T) {
	now := time.Unix(1704100000, 0)
	rateHeader := http.Header{}
	rateHeader.Set("X-RateLimit-Reset", "1704103200.5")

	tests := []struct {
		name    string
		err     error
		kind    domain.PublishErrorKind
		resetAt time.Time
	}{
		{"unauthorized", restError(http.StatusUnauthorized, http.Header{}), domain.PublishErrorAuth, time.Time{}},
		{"missing permissions", restError(http.StatusForbidden, http.Header{}), domain.PublishErrorAuth, time.Time{}},
		{"rest rate limit", restError(http.StatusTooManyRequests, rateHeader), domain.PublishErrorRateLimit, time.Unix(1704103200, 500000000)},
		{
			"rate limit error",
			&discordgo.RateLimitError{RateLimit: &discordgo.RateLimit{
				TooManyRequests: &discordgo.TooManyRequests{RetryAfter: 30 * time.Second},
			}},
			domain.PublishErrorRateLimit,
			now.Add(30 * time.Second),
		},
		{"server error", restError(http.StatusBadGateway, http.Header{}), domain.PublishErrorTransient, time.Time{}},
		{"network", errors.New("dial tcp: timeout"), domain.PublishErrorTransient, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			p := newPublisher("123", func(context.Context, string, string) (*discordgo.Message, error) {
				return nil, tt.err
			})
			p.now = func() time.Time { return now }

			_, err := p.Publish(bCtx.Background(), "sold")
			pErr := domain.ClassifyPublishError(err)
			req.Equal(tt.kind, pErr.Kind)
			req.True(tt.resetAt.Equal(pErr.ResetAt), "resetAt %s", pErr.ResetAt)
			req.ErrorIs(err, tt.err)
		})
	}
}

func TestNewPublisherRequiresChannel(t *testing.T) {
	_, err := NewPublisher(&PublisherCfg{BotKey: "key"})
	require.ErrorIs(t, err, ErrMissingChannel)
}

func slowSend(delay time.Duration) sendFunc {
	return func(ctx context.Context, channelId, content string) (*discordgo.Message, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			return &discordgo.Message{ID: "m1", Content: content}, nil
		}
	}
}

func TestPublishHonorsDeadline(t *testing.T) {
	req := require.New(t)
	p := newPublisher("123", slowSend(time.Second))

	ctx, cancel := bCtx.WithTimeout(bCtx.Background(), 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	ack, err := p.Publish(ctx, "sold")
	req.Nil(ack)
	req.ErrorIs(err, context.DeadlineExceeded)
	req.Equal(domain.PublishErrorTransient, domain.ClassifyPublishError(err).Kind)
	req.Less(time.Since(start), 500*time.Millisecond)
}

func TestPublishCancelledBeforeSend(t *testing.T) {
	req := require.New(t)
	sent := false
	p := newPublisher("123", func(context.Context, string, string) (*discordgo.Message, error) {
		sent = true
		return &discordgo.Message{ID: "m1"}, nil
	})

	ctx, cancel := bCtx.WithCancel(bCtx.Background())
	cancel()
	_, err := p.Publish(ctx, "sold")
	req.ErrorIs(err, context.Canceled)
	req.Equal(domain.PublishErrorTransient, domain.ClassifyPublishError(err).Kind)
	req.False(sent)
}
