package pricefeed

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"
)

// BinanceSource looks up spot prices via the Binance REST API
type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource creates a Binance-backed price source.
// 공개 ticker 엔드포인트만 사용하므로 키는 비어 있어도 된다.
func NewBinanceSource(apiKey, secretKey string) *BinanceSource {
	return &BinanceSource{
		client: binance.NewClient(apiKey, secretKey),
	}
}

// CurrentPrice fetches the latest ticker price for symbol
func (b *BinanceSource) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("binance ticker %s: %w", symbol, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("binance ticker %s: empty response", symbol)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("binance ticker %s: parse %q: %w", symbol, prices[0].Price, err)
	}

	return price, nil
}
