package feed

import (
	"context"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultQuoteAsset asset exchange prices are expressed in.
const DefaultQuoteAsset = "USDT"

// BinanceSource builds price records from Binance spot tickers quoted in a single asset.
// Only public endpoints are used, no authentication is required.
type BinanceSource struct {
	client     *binance.Client
	quoteAsset string
}

// NewBinanceSource creates a Binance backed source.
func NewBinanceSource(client *binance.Client, quoteAsset string) *BinanceSource {
	if quoteAsset == "" {
		quoteAsset = DefaultQuoteAsset
	}
	return &BinanceSource{client: client, quoteAsset: strings.ToUpper(quoteAsset)}
}

// Fetch lists all symbol prices and keeps those quoted in the configured asset.
func (s *BinanceSource) Fetch(ctx context.Context) ([]Record, error) {
	prices, err := s.client.NewListPricesService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list binance prices")
	}

	records := make([]Record, 0, len(prices)+1)
	for _, p := range prices {
		if p == nil {
			continue
		}
		base, ok := baseOf(p.Symbol, s.quoteAsset)
		if !ok {
			continue
		}
		records = append(records, Record{Currency: base, Price: priceFromString(p.Price)})
	}

	return withQuoteAsset(records, s.quoteAsset), nil
}

// baseOf splits BTCUSDT into BTC when USDT is the quote asset.
func baseOf(symbol, quote string) (string, bool) {
	if !strings.HasSuffix(symbol, quote) || len(symbol) == len(quote) {
		return "", false
	}
	return strings.TrimSuffix(symbol, quote), true
}

// withQuoteAsset appends the quote asset itself at a price of one so it can be selected too.
func withQuoteAsset(records []Record, quote string) []Record {
	one := decimal.NewFromInt(1)
	return append(records, Record{Currency: quote, Price: &one})
}
