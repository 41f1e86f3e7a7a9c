package feed

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	hyperliquid "github.com/sonirico/go-hyperliquid"
)

const (
	// DefaultHyperliquidURL public Hyperliquid API.
	DefaultHyperliquidURL = "https://api.hyperliquid.xyz"
	// HyperliquidQuoteAsset asset Hyperliquid mids are expressed in.
	HyperliquidQuoteAsset = "USDC"
)

type midsFetcher interface {
	AllMids(ctx context.Context) (map[string]string, error)
}

// HyperliquidSource builds price records from Hyperliquid mid prices.
// Only the public Info API is used.
type HyperliquidSource struct {
	info midsFetcher
}

// NewHyperliquidSource creates a Hyperliquid backed source.
func NewHyperliquidSource(info *hyperliquid.Info) *HyperliquidSource {
	if info == nil {
		return &HyperliquidSource{}
	}
	return &HyperliquidSource{info: info}
}

// NewHyperliquidInfo builds a read-only Info client. No key is set, so the
// underlying exchange can never sign an action.
func NewHyperliquidInfo(ctx context.Context, baseURL string) *hyperliquid.Info {
	if baseURL == "" {
		baseURL = DefaultHyperliquidURL
	}
	return hyperliquid.NewExchange(ctx, nil, baseURL, nil, "", "", nil).Info()
}

// Fetch reads all mids. Mids are keyed by base coin; spot aliases like "@107"
// and "PURR/USDC" are skipped.
func (s *HyperliquidSource) Fetch(ctx context.Context) ([]Record, error) {
	if s.info == nil {
		return nil, errors.New("hyperliquid info client is nil")
	}

	mids, err := s.info.AllMids(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get hyperliquid mids")
	}

	coins := make([]string, 0, len(mids))
	for coin := range mids {
		if coin == "" || strings.ContainsAny(coin, "@/") {
			continue
		}
		coins = append(coins, coin)
	}
	sort.Strings(coins)

	records := make([]Record, 0, len(coins)+1)
	hasQuote := false
	for _, coin := range coins {
		if coin == HyperliquidQuoteAsset {
			hasQuote = true
		}
		records = append(records, Record{Currency: coin, Price: priceFromString(mids[coin])})
	}

	if hasQuote {
		return records, nil
	}
	return withQuoteAsset(records, HyperliquidQuoteAsset), nil
}
