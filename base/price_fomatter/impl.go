package pricefomatter

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
	"github.com/x-xyz/salebot/domain"
)

type impl struct {
	decimals int32
}

func NewPriceFormatter() PriceFormatter {
	return &impl{decimals: EtherDecimals}
}

func (f *impl) GetPrices(totalPrice string, usdPrice string) (Prices, error) {
	value, err := parseTotalPrice(totalPrice)
	if err != nil {
		return Prices{}, err
	}
	token := decimal.NewFromBigInt(value, -f.decimals)

	rate, err := parseRate(usdPrice)
	if err != nil {
		return Prices{}, err
	}

	return Prices{
		Token: token,
		Usd:   token.Mul(rate).Round(2),
	}, nil
}

func parseTotalPrice(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty total price", domain.ErrConversion)
	}
	n, ok := math.ParseBig256(s)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid total price %q", domain.ErrConversion, s)
	}
	return n, nil
}

func parseRate(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty usd price", domain.ErrConversion)
	}
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid usd price %q: %v", domain.ErrConversion, s, err)
	}
	return rate, nil
}
