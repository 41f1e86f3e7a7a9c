package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/swapquote/internal/domain"
	"github.com/vadiminshakov/swapquote/internal/services/feed"
)

type stubSource struct {
	records []feed.Record
	err     error

	block   chan struct{}
	entered chan struct{}
}

func (s *stubSource) Fetch(ctx context.Context) ([]feed.Record, error) {
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	return s.records, s.err
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func rec(currency string, p *decimal.Decimal) feed.Record {
	return feed.Record{Currency: currency, Price: p}
}

func currencies(tokens []domain.Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Currency)
	}
	return out
}

func TestBuildTokens(t *testing.T) {
	tests := []struct {
		name     string
		records  []feed.Record
		expected []string
		prices   map[string]string
	}{
		{
			name:     "Null price discarded, duplicate resolved to valid record",
			records:  []feed.Record{rec("BTC", nil), rec("BTC", price("50000"))},
			expected: []string{"BTC"},
			prices:   map[string]string{"BTC": "50000"},
		},
		{
			name: "Last occurrence wins, first appearance order kept",
			records: []feed.Record{
				rec("ETH", price("1600")),
				rec("USDC", price("1")),
				rec("ETH", price("1645.93")),
				rec("ATOM", price("7.18")),
			},
			expected: []string{"ETH", "USDC", "ATOM"},
			prices:   map[string]string{"ETH": "1645.93", "USDC": "1", "ATOM": "7.18"},
		},
		{
			name: "Zero and missing prices excluded before dedupe",
			records: []feed.Record{
				rec("LUNA", price("0")),
				rec("ZIL", nil),
				rec("OSMO", price("0.37")),
				rec("OSMO", price("0")),
			},
			expected: []string{"OSMO"},
			prices:   map[string]string{"OSMO": "0.37"},
		},
		{
			name:     "Negative price and empty currency discarded",
			records:  []feed.Record{rec("BAD", price("-1")), rec("", price("3")), rec("GOOD", price("2"))},
			expected: []string{"GOOD"},
			prices:   map[string]string{"GOOD": "2"},
		},
		{
			name:     "Empty feed",
			records:  nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := BuildTokens(tt.records, "", zap.NewNop())
			assert.Equal(t, tt.expected, currencies(tokens))
			for _, tok := range tokens {
				assert.True(t, tok.Price.Equal(decimal.RequireFromString(tt.prices[tok.Currency])),
					"price of %s: %s", tok.Currency, tok.Price)
				assert.True(t, tok.Price.IsPositive())
			}
		})
	}
}

func TestBuildTokens_Idempotent(t *testing.T) {
	records := []feed.Record{
		rec("A", price("1")), rec("B", price("2")), rec("A", price("3")),
		rec("C", nil), rec("B", price("4")), rec("D", price("5")),
	}

	first := BuildTokens(records, "", nil)

	again := make([]feed.Record, 0, len(first))
	for _, tok := range first {
		p := tok.Price
		again = append(again, feed.Record{Currency: tok.Currency, Price: &p})
	}
	second := BuildTokens(again, "", nil)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Currency, second[i].Currency)
		assert.True(t, first[i].Price.Equal(second[i].Price))
		assert.Equal(t, first[i].Icon, second[i].Icon)
	}

	seen := map[string]bool{}
	for _, tok := range first {
		assert.False(t, seen[tok.Currency], "duplicate %s", tok.Currency)
		seen[tok.Currency] = true
	}
	assert.Equal(t, []string{"A", "B", "D"}, currencies(first))
}

func TestBuildTokens_Icon(t *testing.T) {
	tokens := BuildTokens([]feed.Record{rec("SWTH", price("0.004"))}, "", nil)
	require.Len(t, tokens, 1)
	assert.Equal(t, "https://raw.githubusercontent.com/Switcheo/token-icons/main/tokens/SWTH.svg", tokens[0].Icon)

	tokens = BuildTokens([]feed.Record{rec("SWTH", price("0.004"))}, "https://icons.example/%s.png", nil)
	assert.Equal(t, "https://icons.example/SWTH.png", tokens[0].Icon)
}

func TestCatalog_Load(t *testing.T) {
	src := &stubSource{records: []feed.Record{
		rec("ETH", price("2000")),
		rec("USDC", price("1")),
		rec("ETH", nil),
	}}
	c := New(src, zap.NewNop())
	assert.True(t, c.Loading(), "catalog is loading until the first fetch resolves")

	require.NoError(t, c.Load(context.Background()))
	assert.False(t, c.Loading())
	assert.Equal(t, 2, c.Len())

	eth, ok := c.Lookup("ETH")
	require.True(t, ok)
	assert.True(t, eth.Price.Equal(decimal.NewFromInt(2000)))

	_, ok = c.Lookup("BTC")
	assert.False(t, ok)

	opts := c.Options()
	require.Len(t, opts, 2)
	assert.Equal(t, "ETH", opts[0].Value)
	assert.Equal(t, "ETH", opts[0].Label)
	assert.Equal(t, "2000", opts[0].Price)
	assert.Equal(t, "USDC", opts[1].Value)
}

func TestCatalog_Load_Failure(t *testing.T) {
	src := &stubSource{records: []feed.Record{rec("ETH", price("2000"))}}
	c := New(src, zap.NewNop())
	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, 1, c.Len())

	netErr := errors.New("connection refused")
	src.err = netErr
	src.records = nil

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailure)
	assert.ErrorIs(t, err, netErr)
	assert.Equal(t, 0, c.Len(), "catalog is left empty after a failed load")
	assert.False(t, c.Loading())
}

func TestCatalog_Load_NotReentrant(t *testing.T) {
	src := &stubSource{
		records: []feed.Record{rec("ETH", price("2000"))},
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	c := New(src, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = c.Load(context.Background())
	}()

	<-src.entered
	assert.True(t, c.Loading())
	assert.ErrorIs(t, c.Load(context.Background()), ErrLoadInFlight)

	close(src.block)
	wg.Wait()

	require.NoError(t, firstErr)
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_TokensCopy(t *testing.T) {
	c := New(&stubSource{records: []feed.Record{rec("ETH", price("2000"))}}, nil)
	require.NoError(t, c.Load(context.Background()))

	tokens := c.Tokens()
	tokens[0].Currency = "MUTATED"

	_, ok := c.Lookup("ETH")
	assert.True(t, ok)
	assert.Equal(t, "ETH", c.Tokens()[0].Currency)
}
