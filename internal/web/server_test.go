package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/swapquote/internal/domain"
)

type stubTokens struct {
	loading bool
	options []domain.TokenOption
}

func (s stubTokens) Options() []domain.TokenOption { return s.options }
func (s stubTokens) Loading() bool                 { return s.loading }

type stubQuotes struct {
	entries []domain.QuoteRecordEntry
}

func (s stubQuotes) RecordsAfter(index uint64) ([]domain.QuoteRecordEntry, error) {
	var out []domain.QuoteRecordEntry
	for _, e := range s.entries {
		if e.Index > index {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestServer_Tokens(t *testing.T) {
	tokens := stubTokens{options: []domain.TokenOption{
		{Value: "ETH", Label: "ETH", Price: "2000", Icon: "https://icons/ETH.svg"},
	}}
	srv := httptest.NewServer(NewServer("", tokens, nil, zap.NewNop()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tokens")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body tokensResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Loading)
	require.Len(t, body.Tokens, 1)
	assert.Equal(t, "ETH", body.Tokens[0].Value)
}

func TestServer_TokensLoading(t *testing.T) {
	srv := httptest.NewServer(NewServer("", stubTokens{loading: true}, nil, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tokens")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, true, raw["loading"])
	assert.Equal(t, []any{}, raw["tokens"])
}

func TestServer_QuoteStream(t *testing.T) {
	quotes := stubQuotes{entries: []domain.QuoteRecordEntry{
		{Index: 1, Record: domain.QuoteRecord{From: "ETH", To: "USDC", FromAmount: "2", ToAmount: "4000.000000"}},
	}}
	srv := httptest.NewServer(NewServer("", stubTokens{}, quotes, zap.NewNop()).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/quotes/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: quote\n", event)

	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(data, "data: "))

	var record domain.QuoteRecord
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(data), "data: ")), &record))
	assert.Equal(t, "4000.000000", record.ToAmount)
}

func TestServer_Unavailable(t *testing.T) {
	srv := httptest.NewServer(NewServer("", nil, nil, nil).Handler())
	defer srv.Close()

	for _, path := range []string{"/tokens", "/quotes/stream"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func TestServer_Index(t *testing.T) {
	srv := httptest.NewServer(NewServer("", nil, nil, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
