package twitter

import (
	"encoding/json"
	"fmt"

	"github.com/x-xyz/salebot/base/announcement"
	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/domain"
)

const tweetsPath = "/2/tweets"

type tweetReq struct {
	Text string `json:"text"`
}

type tweetResp struct {
	Data struct {
		Id   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type tweetsPublisher struct {
	client
	url      string
	encoding announcement.PayloadEncoding
}

// NewTweetsPublisher posts a JSON body to the v2 tweets endpoint, the text is sent raw by default
func NewTweetsPublisher(cfg *ClientCfg) domain.Publisher {
	return &tweetsPublisher{
		client: client{
			client:  cfg.httpClient(),
			timeout: cfg.Timeout,
		},
		url:      cfg.baseUrl() + tweetsPath,
		encoding: cfg.encoding(announcement.EncodingRaw),
	}
}

func (p *tweetsPublisher) Publish(ctx bCtx.Ctx, text string) (*domain.Ack, error) {
	payload, err := json.Marshal(tweetReq{Text: p.encoding.Encode(text)})
	if err != nil {
		return nil, domain.NewTransientError(err)
	}

	body, err := p.post(ctx, p.url, "application/json", string(payload))
	if err != nil {
		return nil, err
	}

	resp := tweetResp{}
	if err := json.Unmarshal(body, &resp); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return nil, domain.NewTransientError(fmt.Errorf("malformed response: %w", err))
	}
	if resp.Data.Text == "" {
		return nil, domain.NewTransientError(ErrEmptyEcho)
	}
	return &domain.Ack{Id: resp.Data.Id, Text: resp.Data.Text}, nil
}
