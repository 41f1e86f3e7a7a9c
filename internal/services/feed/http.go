package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// DefaultEndpoint public price list consumed by the swap form.
	DefaultEndpoint = "https://interview.switcheo.com/prices.json"

	defaultTimeout = 10 * time.Second
	maxBodySize    = 8 << 20
)

type priceEntry struct {
	Currency string          `json:"currency"`
	Date     string          `json:"date,omitempty"`
	Price    json.RawMessage `json:"price"`
}

// HTTPSource fetches a JSON array of {currency, price} records with a single GET.
type HTTPSource struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPSource creates a source for the given endpoint. A nil client gets a default one.
func NewHTTPSource(endpoint string, httpClient *http.Client) *HTTPSource {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPSource{endpoint: endpoint, httpClient: httpClient}
}

// Fetch downloads and decodes the price list.
func (s *HTTPSource) Fetch(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build price request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request prices")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("price feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var entries []priceEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "decode prices")
	}

	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		price, err := decodePrice(e.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "decode price of %q", e.Currency)
		}
		records = append(records, Record{Currency: e.Currency, Price: price})
	}

	return records, nil
}

// decodePrice reads a price given as a JSON number or numeric string.
// Falsy values (absent, null, false, "") carry no price and decode to nil.
func decodePrice(raw json.RawMessage) (*decimal.Decimal, error) {
	v := strings.TrimSpace(string(raw))
	switch v {
	case "", "null", "false", `""`:
		return nil, nil
	}

	if strings.HasPrefix(v, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		v = s
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
