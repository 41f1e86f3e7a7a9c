package feed

import (
	"context"
	"strings"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
)

// BybitSource builds price records from Bybit v5 spot tickers quoted in a single asset.
type BybitSource struct {
	client     *bybit.Client
	quoteAsset string
}

// NewBybitSource creates a Bybit backed source.
func NewBybitSource(client *bybit.Client, quoteAsset string) *BybitSource {
	if quoteAsset == "" {
		quoteAsset = DefaultQuoteAsset
	}
	return &BybitSource{client: client, quoteAsset: strings.ToUpper(quoteAsset)}
}

// Fetch lists all spot tickers and keeps those quoted in the configured asset.
func (s *BybitSource) Fetch(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
	})
	if err != nil {
		return nil, errors.Wrap(err, "get bybit tickers")
	}

	list := result.Result.Spot.List
	records := make([]Record, 0, len(list)+1)
	for _, item := range list {
		base, ok := baseOf(string(item.Symbol), s.quoteAsset)
		if !ok {
			continue
		}
		records = append(records, Record{Currency: base, Price: priceFromString(item.LastPrice)})
	}

	return withQuoteAsset(records, s.quoteAsset), nil
}
