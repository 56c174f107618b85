package domain

import (
	"time"

	"github.com/x-xyz/salebot/base/ctx"
)

type Asset struct {
	Name        string
	Permalink   string
	Description string
}

type PaymentToken struct {
	Symbol string
	// UsdPrice is the fiat rate of one whole token, kept raw so a bad value only fails its own sale
	UsdPrice string
	Decimals int32
}

// SaleEvent is one completed sale of the tracked collection
type SaleEvent struct {
	Id           int64
	Asset        *Asset
	BuyerAddress *Address
	// TotalPrice is an unsigned integer string in the smallest token unit
	TotalPrice   string
	PaymentToken *PaymentToken
	OccurredAt   time.Time
}

type Announcement struct {
	Event SaleEvent
	Text  string
}

type SaleReport struct {
	Fetched          int
	InWindow         int
	Published        int
	ConversionFailed int
	FormatFailed     int
	AuthFailed       int
	RateLimited      int
	TransientFailed  int
}

func (r SaleReport) Skipped() int {
	return r.ConversionFailed + r.FormatFailed
}

func (r SaleReport) PublishFailed() int {
	return r.AuthFailed + r.RateLimited + r.TransientFailed
}

type SaleUseCase interface {
	// CheckSales announces the sales of the window ending at now, only ErrFetch is returned
	CheckSales(c ctx.Ctx, now time.Time) (*SaleReport, error)
}
