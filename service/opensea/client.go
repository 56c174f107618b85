package opensea

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/domain"
)

var (
	ErrStatusCodeNotOk = errors.New("http.status not 2xx")
)

type GetEventOptions struct {
	CollectionSlug  *string
	ContractAddress *domain.Address
	EventType       *EventType
	OnlyOpensea     *bool
	After           *time.Time
	Offset          *int
	Limit           *int
}

type GetEventOptionsFunc func(*GetEventOptions) error

// ParseGetEventOptions requires at least one identifying filter
func ParseGetEventOptions(opts ...GetEventOptionsFunc) (GetEventOptions, error) {
	opt := GetEventOptions{}
	for _, f := range opts {
		err := f(&opt)
		if err != nil {
			return opt, err
		}
	}
	if opt.CollectionSlug == nil && opt.ContractAddress == nil {
		return opt, domain.ErrNoSaleSource
	}
	return opt, nil
}

func WithCollectionSlug(slug string) GetEventOptionsFunc {
	return func(opt *GetEventOptions) error {
		if slug == "" {
			return nil
		}
		opt.CollectionSlug = &slug
		return nil
	}
}

func WithContractAddress(address domain.Address) GetEventOptionsFunc {
	return func(opt *GetEventOptions) error {
		if address.IsEmpty() {
			return nil
		}
		opt.ContractAddress = &address
		return nil
	}
}

func WithEventType(eventType EventType) GetEventOptionsFunc {
	return func(opt *GetEventOptions) error {
		opt.EventType = &eventType
		return nil
	}
}

func WithOnlyOpensea(only bool) GetEventOptionsFunc {
	return func(opt *GetEventOptions) error {
		opt.OnlyOpensea = &only
		return nil
	}
}

func WithAfter(t time.Time) GetEventOptionsFunc {
	return func(opt *GetEventOptions) error {
		opt.After = &t
		return nil
	}
}

func WithOffset(offset int) GetEventOptionsFunc {
	return func(opt *GetEventOptions) error {
		opt.Offset = &offset
		return nil
	}
}

func WithLimit(limit int) GetEventOptionsFunc {
	return func(opt *GetEventOptions) error {
		opt.Limit = &limit
		return nil
	}
}

type Client interface {
	GetEvent(ctx bCtx.Ctx, option ...GetEventOptionsFunc) (*EventResp, error)
}

type ClientCfg struct {
	HttpClient http.Client
	Timeout    time.Duration
	Apikey     string
	// BaseUrl defaults to the v1 api
	BaseUrl string
}

type EventResp struct {
	AssetEvents []AssetEvent `json:"asset_events"`
}

type EventType string

const (
	EventTypeSuccessful EventType = "successful"
)

// NumericString accepts a json string, a json number or null without failing the response
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	// anything else is kept raw and rejected later by the price conversion of its own sale
	*n = NumericString(data)
	return nil
}

type Asset struct {
	Name        string `json:"name"`
	Permalink   string `json:"permalink"`
	Description string `json:"description"`
}

type Account struct {
	Address domain.Address `json:"address"`
}

type PaymentToken struct {
	Symbol   string        `json:"symbol"`
	UsdPrice NumericString `json:"usd_price"`
	Decimals int32         `json:"decimals"`
}

type AssetEvent struct {
	Id            int64         `json:"id"`
	Asset         *Asset        `json:"asset"`
	EventType     EventType     `json:"event_type"`
	CreatedDate   string        `json:"created_date"`
	TotalPrice    NumericString `json:"total_price"`
	PaymentToken  *PaymentToken `json:"payment_token"`
	WinnerAccount *Account      `json:"winner_account"`
}

// created_date carries no zone and is UTC
const createdDateLayout = "2006-01-02T15:04:05.999999999"

func ParseCreatedDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(createdDateLayout, s, time.UTC)
}

func (ev AssetEvent) ToSaleEvent() (domain.SaleEvent, error) {
	sale := domain.SaleEvent{
		Id:         ev.Id,
		TotalPrice: string(ev.TotalPrice),
	}
	if ev.Asset != nil {
		sale.Asset = &domain.Asset{
			Name:        ev.Asset.Name,
			Permalink:   ev.Asset.Permalink,
			Description: ev.Asset.Description,
		}
	}
	if ev.WinnerAccount != nil && !ev.WinnerAccount.Address.IsEmpty() {
		buyer := ev.WinnerAccount.Address
		sale.BuyerAddress = &buyer
	}
	if ev.PaymentToken != nil {
		sale.PaymentToken = &domain.PaymentToken{
			Symbol:   ev.PaymentToken.Symbol,
			UsdPrice: string(ev.PaymentToken.UsdPrice),
			Decimals: ev.PaymentToken.Decimals,
		}
	}
	occurredAt, err := ParseCreatedDate(ev.CreatedDate)
	if err != nil {
		return sale, err
	}
	sale.OccurredAt = occurredAt
	return sale, nil
}

// SaleEvents keeps upstream order, an unparsable created_date leaves OccurredAt zero
func (r EventResp) SaleEvents(ctx bCtx.Ctx) []domain.SaleEvent {
	sales := make([]domain.SaleEvent, 0, len(r.AssetEvents))
	for _, ev := range r.AssetEvents {
		sale, err := ev.ToSaleEvent()
		if err != nil {
			ctx.WithField("eventId", ev.Id).WithField("createdDate", ev.CreatedDate).Warn("unparsable created_date")
		}
		sales = append(sales, sale)
	}
	return sales
}
