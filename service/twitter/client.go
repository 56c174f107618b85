package twitter

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/x-xyz/salebot/base/announcement"
	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/base/log"
	"github.com/x-xyz/salebot/domain"
)

const (
	defaultApi      = "https://api.twitter.com"
	rateLimitHeader = "x-rate-limit-reset"
)

var (
	ErrStatusCodeNotOk = errors.New("http.status not 2xx")
	ErrEmptyEcho       = errors.New("response carries no posted text")
)

type ClientCfg struct {
	// HttpClient replaces the oauth1 signing client when set
	HttpClient *http.Client
	Timeout    time.Duration
	BaseUrl    string

	ConsumerKey    string
	ConsumerSecret string
	AccessKey      string
	AccessSecret   string

	// Encoding overrides the transport default when set
	Encoding announcement.PayloadEncoding
}

func (cfg *ClientCfg) httpClient() *http.Client {
	if cfg.HttpClient != nil {
		return cfg.HttpClient
	}
	config := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	token := oauth1.NewToken(cfg.AccessKey, cfg.AccessSecret)
	return config.Client(context.Background(), token)
}

func (cfg *ClientCfg) baseUrl() string {
	if cfg.BaseUrl == "" {
		return defaultApi
	}
	return strings.TrimRight(cfg.BaseUrl, "/")
}

func (cfg *ClientCfg) encoding(fallback announcement.PayloadEncoding) announcement.PayloadEncoding {
	if cfg.Encoding == "" {
		return fallback
	}
	return cfg.Encoding
}

type client struct {
	client  *http.Client
	timeout time.Duration
}

// post returns the body of a 2xx response, every other outcome is a classified domain.PublishError
func (c *client) post(ctx bCtx.Ctx, url, contentType string, payload string) ([]byte, error) {
	ctx, cancel := bCtx.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(payload))
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("NewRequestWithContext failed")
		return nil, domain.NewTransientError(err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.client.Do(req)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("client.Do failed")
		return nil, domain.NewTransientError(err)
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("failed to read body")
		return nil, domain.NewTransientError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classify(resp.StatusCode, resp.Header, body)
	}
	return body, nil
}

func parseResetHeader(h http.Header) time.Time {
	v := h.Get(rateLimitHeader)
	if v == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

func statusError(statusCode int, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w: %d", ErrStatusCodeNotOk, statusCode)
	}
	return fmt.Errorf("%w: %d %s", ErrStatusCodeNotOk, statusCode, detail)
}
