package opensea

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/base/log"
)

const (
	bearerKey = "X-API-KEY"
	v1Api     = "https://api.opensea.io/api/v1"
)

func NewClient(cfg *ClientCfg) Client {
	baseUrl := strings.TrimRight(cfg.BaseUrl, "/")
	if baseUrl == "" {
		baseUrl = v1Api
	}
	return &client{
		client:  cfg.HttpClient,
		timeout: cfg.Timeout,
		apikey:  cfg.Apikey,
		baseUrl: baseUrl,
	}
}

type client struct {
	client  http.Client
	timeout time.Duration
	apikey  string
	baseUrl string
}

func (c *client) get(ctx bCtx.Ctx, url string) ([]byte, error) {
	ctx, cancel := bCtx.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("NewRequestWithContext failed")
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apikey != "" {
		req.Header.Set(bearerKey, c.apikey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("client.Do failed")
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ctx.WithFields(log.Fields{
			"url":        url,
			"statusCode": resp.StatusCode,
		}).Error("resp.StatusCode not 2xx")
		return nil, fmt.Errorf("%w: %d", ErrStatusCodeNotOk, resp.StatusCode)
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("failed to read body")
		return nil, err
	}
	return body, nil
}

func (c *client) GetEvent(ctx bCtx.Ctx, opts ...GetEventOptionsFunc) (*EventResp, error) {
	opt, err := ParseGetEventOptions(opts...)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(fmt.Sprintf("%s/events", c.baseUrl))
	if err != nil {
		return nil, err
	}

	params := url.Values{}

	if opt.Offset != nil {
		params.Add("offset", strconv.Itoa(*opt.Offset))
	}

	if opt.Limit != nil {
		params.Add("limit", strconv.Itoa(*opt.Limit))
	}

	if opt.EventType != nil {
		params.Add("event_type", string(*opt.EventType))
	}

	if opt.OnlyOpensea != nil {
		params.Add("only_opensea", strconv.FormatBool(*opt.OnlyOpensea))
	}

	if opt.After != nil {
		params.Add("occurred_after", strconv.FormatInt(opt.After.Unix(), 10))
	}

	if opt.CollectionSlug != nil {
		params.Add("collection_slug", *opt.CollectionSlug)
	}

	if opt.ContractAddress != nil {
		params.Add("asset_contract_address", opt.ContractAddress.ToLowerStr())
	}

	base.RawQuery = params.Encode()
	url := base.String()

	data, err := c.get(ctx, url)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("c.get failed")
		return nil, err
	}

	resp := EventResp{}
	if err := json.Unmarshal(data, &resp); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return nil, err
	}
	if resp.AssetEvents == nil {
		resp.AssetEvents = []AssetEvent{}
	}

	return &resp, nil
}
