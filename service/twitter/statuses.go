package twitter

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/x-xyz/salebot/base/announcement"
	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/domain"
)

const statusesUpdatePath = "/1.1/statuses/update.json"

type statusResp struct {
	IdStr string `json:"id_str"`
	Text  string `json:"text"`
}

type statusesPublisher struct {
	client
	url      string
	encoding announcement.PayloadEncoding
}

// NewStatusesPublisher posts through the v1.1 statuses/update form endpoint.
// The status is percent-encoded before form encoding unless cfg.Encoding says otherwise.
func NewStatusesPublisher(cfg *ClientCfg) domain.Publisher {
	return &statusesPublisher{
		client: client{
			client:  cfg.httpClient(),
			timeout: cfg.Timeout,
		},
		url:      cfg.baseUrl() + statusesUpdatePath,
		encoding: cfg.encoding(announcement.EncodingPercent),
	}
}

func (p *statusesPublisher) Publish(ctx bCtx.Ctx, text string) (*domain.Ack, error) {
	form := url.Values{}
	form.Set("status", p.encoding.Encode(text))

	body, err := p.post(ctx, p.url, "application/x-www-form-urlencoded", form.Encode())
	if err != nil {
		return nil, err
	}

	resp := statusResp{}
	if err := json.Unmarshal(body, &resp); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return nil, domain.NewTransientError(fmt.Errorf("malformed response: %w", err))
	}
	if resp.Text == "" {
		return nil, domain.NewTransientError(ErrEmptyEcho)
	}
	return &domain.Ack{Id: resp.IdStr, Text: resp.Text}, nil
}
