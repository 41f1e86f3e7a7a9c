package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinanceSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"symbol":"BTCUSDT","price":"50000.00000000"},
			{"symbol":"ETHBTC","price":"0.05300000"},
			{"symbol":"ETHUSDT","price":"2000.10000000"},
			{"symbol":"USDT","price":"1"}
		]`)
	}))
	defer srv.Close()

	client := binance.NewClient("", "")
	client.BaseURL = srv.URL

	records, err := NewBinanceSource(client, "usdt").Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "BTC", records[0].Currency)
	assert.True(t, records[0].Price.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "ETH", records[1].Currency)
	assert.True(t, records[1].Price.Equal(decimal.RequireFromString("2000.1")))
	assert.Equal(t, "USDT", records[2].Currency)
	assert.True(t, records[2].Price.Equal(decimal.NewFromInt(1)))
}

func TestBaseOf(t *testing.T) {
	tests := []struct {
		symbol string
		base   string
		ok     bool
	}{
		{symbol: "BTCUSDT", base: "BTC", ok: true},
		{symbol: "ETHBTC", ok: false},
		{symbol: "USDT", ok: false},
		{symbol: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			base, ok := baseOf(tt.symbol, "USDT")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.base, base)
		})
	}
}
