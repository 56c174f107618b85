package discord

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/base/log"
	"github.com/x-xyz/salebot/domain"
)

const rateLimitResetHeader = "X-RateLimit-Reset"

var ErrMissingChannel = errors.New("discord channel id required")

type PublisherCfg struct {
	BotKey    string
	ChannelId string
}

type sendFunc func(ctx context.Context, channelId, content string) (*discordgo.Message, error)

type publisher struct {
	channelId string
	send      sendFunc
	now       func() time.Time
}

// NewPublisher posts announcements as bot messages in one channel
func NewPublisher(cfg *PublisherCfg) (domain.Publisher, error) {
	if cfg.ChannelId == "" {
		return nil, ErrMissingChannel
	}
	session, err := discordgo.New(fmt.Sprintf("Bot %s", cfg.BotKey))
	if err != nil {
		return nil, err
	}
	// discordgo sleeps and retries on 429 unless told otherwise
	session.ShouldRetryOnRateLimit = false
	return newPublisher(cfg.ChannelId, func(ctx context.Context, channelId, content string) (*discordgo.Message, error) {
		return session.ChannelMessageSend(channelId, content, discordgo.WithContext(ctx))
	}), nil
}

func newPublisher(channelId string, send sendFunc) *publisher {
	return &publisher{
		channelId: channelId,
		send:      send,
		now:       time.Now,
	}
}

func (p *publisher) Publish(ctx bCtx.Ctx, text string) (*domain.Ack, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewTransientError(err)
	}
	msg, err := p.send(ctx, p.channelId, text)
	if err != nil {
		ctx.WithFields(log.Fields{
			"channelId": p.channelId,
			"err":       err,
		}).Debug("ChannelMessageSend failed")
		return nil, p.classify(err)
	}
	if msg == nil {
		return nil, domain.NewTransientError(errors.New("empty message response"))
	}
	return &domain.Ack{Id: msg.ID, Text: msg.Content}, nil
}

func (p *publisher) classify(err error) error {
	var rlErr *discordgo.RateLimitError
	if errors.As(err, &rlErr) {
		resetAt := time.Time{}
		if rlErr.RateLimit != nil && rlErr.TooManyRequests != nil {
			resetAt = p.now().Add(rlErr.RetryAfter)
		}
		return domain.NewRateLimitError(resetAt, err)
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.NewAuthError(err)
		case http.StatusTooManyRequests:
			return domain.NewRateLimitError(parseReset(restErr.Response.Header), err)
		}
	}
	return domain.NewTransientError(err)
}

// parseReset reads the epoch seconds header, fractional part included
func parseReset(h http.Header) time.Time {
	v := h.Get(rateLimitResetHeader)
	if v == "" {
		return time.Time{}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return time.Time{}
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9))
}
