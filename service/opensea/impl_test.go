package opensea

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/domain"
)

const eventsBody = `{
  "next": null,
  "asset_events": [
    {
      "id": 3,
      "event_type": "successful",
      "created_date": "2024-01-01T09:45:10.123456",
      "total_price": "1500000000000000000",
      "asset": {"name": "Cool Cat #3", "permalink": "https://opensea.io/assets/0xabc/3", "description": "Third. Cat."},
      "winner_account": {"address": "0x1234567890abcdef1234567890abcdef12345678"},
      "payment_token": {"symbol": "ETH", "usd_price": "2000.000000000000000", "decimals": 18}
    },
    {
      "id": 1,
      "event_type": "successful",
      "created_date": "2024-01-01T09:05:00",
      "total_price": 250000000000000000,
      "asset": {"name": "Cool Cat #1", "permalink": "https://opensea.io/assets/0xabc/1", "description": null},
      "winner_account": null,
      "payment_token": {"symbol": "APE", "usd_price": 4.25, "decimals": 18}
    },
    {
      "id": 2,
      "event_type": "successful",
      "created_date": "not a date",
      "total_price": "1",
      "asset": null,
      "payment_token": {"symbol": "ETH", "usd_price": {"bad": true}}
    }
  ]
}`

type openseaSuite struct {
	suite.Suite

	server   *httptest.Server
	status   int
	body     string
	lastReq  *http.Request
	lastVals url.Values
}

func TestOpenseaSuite(t *testing.T) {
	suite.Run(t, new(openseaSuite))
}

func (s *openseaSuite) SetupTest() {
	s.status = http.StatusOK
	s.body = eventsBody
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lastReq = r
		s.lastVals = r.URL.Query()
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.body))
	}))
}

func (s *openseaSuite) TearDownTest() {
	s.server.Close()
}

func (s *openseaSuite) newClient(apikey string) Client {
	return NewClient(&ClientCfg{
		HttpClient: http.Client{},
		Timeout:    5 * time.Second,
		Apikey:     apikey,
		BaseUrl:    s.server.URL + "/",
	})
}

func (s *openseaSuite) TestGetEventQuery() {
	after := time.Unix(1704096000, 0)
	resp, err := s.newClient("secret").GetEvent(
		bCtx.Background(),
		WithCollectionSlug("cool-cats-nft"),
		WithContractAddress(domain.Address("0x1A92F7381B9F03921564A437210BB9396471050C")),
		WithEventType(EventTypeSuccessful),
		WithOnlyOpensea(false),
		WithAfter(after),
		WithOffset(0),
		WithLimit(100),
	)
	s.Require().NoError(err)
	s.Len(resp.AssetEvents, 3)

	s.Equal("/events", s.lastReq.URL.Path)
	s.Equal("secret", s.lastReq.Header.Get("X-API-KEY"))
	s.Equal("successful", s.lastVals.Get("event_type"))
	s.Equal("false", s.lastVals.Get("only_opensea"))
	s.Equal("1704096000", s.lastVals.Get("occurred_after"))
	s.Equal("0", s.lastVals.Get("offset"))
	s.Equal("100", s.lastVals.Get("limit"))
	s.Equal("cool-cats-nft", s.lastVals.Get("collection_slug"))
	s.Equal("0x1a92f7381b9f03921564a437210bb9396471050c", s.lastVals.Get("asset_contract_address"))
	s.False(s.lastVals.Has("occurred_before"))
}

func (s *openseaSuite) TestGetEventWithoutApiKey() {
	_, err := s.newClient("").GetEvent(bCtx.Background(), WithCollectionSlug("cool-cats-nft"))
	s.Require().NoError(err)
	s.Empty(s.lastReq.Header.Get("X-API-KEY"))
	s.False(s.lastVals.Has("asset_contract_address"))
}

func (s *openseaSuite) TestGetEventRequiresSource() {
	s.lastReq = nil
	_, err := s.newClient("").GetEvent(bCtx.Background(), WithCollectionSlug(""), WithContractAddress(""))
	s.ErrorIs(err, domain.ErrNoSaleSource)
	s.Nil(s.lastReq)
}

func (s *openseaSuite) TestGetEventAbsentEvents() {
	s.body = `{"next": null}`
	resp, err := s.newClient("").GetEvent(bCtx.Background(), WithCollectionSlug("cool-cats-nft"))
	s.Require().NoError(err)
	s.NotNil(resp.AssetEvents)
	s.Empty(resp.AssetEvents)
}

func (s *openseaSuite) TestGetEventStatusNotOk() {
	s.status = http.StatusTooManyRequests
	_, err := s.newClient("").GetEvent(bCtx.Background(), WithCollectionSlug("cool-cats-nft"))
	s.ErrorIs(err, ErrStatusCodeNotOk)
}

func (s *openseaSuite) TestGetEventMalformedBody() {
	s.body = `{"asset_events": [`
	_, err := s.newClient("").GetEvent(bCtx.Background(), WithCollectionSlug("cool-cats-nft"))
	s.Error(err)
}

func (s *openseaSuite) TestSaleEvents() {
	resp, err := s.newClient("").GetEvent(bCtx.Background(), WithCollectionSlug("cool-cats-nft"))
	s.Require().NoError(err)

	sales := resp.SaleEvents(bCtx.Background())
	s.Require().Len(sales, 3)

	first := sales[0]
	s.Equal(int64(3), first.Id)
	s.Equal("Cool Cat #3", first.Asset.Name)
	s.Equal("Third. Cat.", first.Asset.Description)
	s.Equal(domain.Address("0x1234567890abcdef1234567890abcdef12345678"), *first.BuyerAddress)
	s.Equal("1500000000000000000", first.TotalPrice)
	s.Equal("ETH", first.PaymentToken.Symbol)
	s.Equal("2000.000000000000000", first.PaymentToken.UsdPrice)
	s.Equal(time.Date(2024, 1, 1, 9, 45, 10, 123456000, time.UTC), first.OccurredAt)

	second := sales[1]
	s.Nil(second.BuyerAddress)
	s.Equal("", second.Asset.Description)
	s.Equal("250000000000000000", second.TotalPrice)
	s.Equal("4.25", second.PaymentToken.UsdPrice)
	s.Equal(time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC), second.OccurredAt)

	third := sales[2]
	s.Nil(third.Asset)
	s.True(third.OccurredAt.IsZero())
	s.Equal(`{"bad": true}`, third.PaymentToken.UsdPrice)
}
