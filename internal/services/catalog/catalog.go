// Package catalog keeps the deduplicated set of tokens a quoting session can select from.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/swapquote/internal/domain"
	"github.com/vadiminshakov/swapquote/internal/services/feed"
)

// DefaultIconTemplate icon locator template, %s is replaced by the currency code.
const DefaultIconTemplate = "https://raw.githubusercontent.com/Switcheo/token-icons/main/tokens/%s.svg"

var (
	// ErrFetchFailure is returned when the price feed could not be loaded.
	ErrFetchFailure = errors.New("failed to fetch token prices")
	// ErrLoadInFlight is returned when Load is called while another load is running.
	ErrLoadInFlight = errors.New("price load already in flight")
)

// Catalog session scoped token universe, populated once from a price source.
type Catalog struct {
	source       feed.Source
	iconTemplate string
	logger       *zap.Logger

	inFlight atomic.Bool

	mu       sync.RWMutex
	tokens   []domain.Token
	index    map[string]int
	resolved bool
}

// Option configures the Catalog.
type Option func(*Catalog)

// WithIconTemplate overrides the icon locator template.
func WithIconTemplate(template string) Option {
	return func(c *Catalog) {
		if template != "" {
			c.iconTemplate = template
		}
	}
}

// New creates an empty catalog backed by source.
func New(source feed.Source, logger *zap.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		source:       source,
		iconTemplate: DefaultIconTemplate,
		logger:       logger,
		index:        make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches prices and replaces the catalog contents.
// On failure the catalog is left empty and the returned error wraps ErrFetchFailure.
func (c *Catalog) Load(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrLoadInFlight
	}
	defer c.inFlight.Store(false)

	records, err := c.source.Fetch(ctx)
	if err != nil {
		c.replace(nil)
		c.logger.Error("price feed fetch failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}

	tokens := BuildTokens(records, c.iconTemplate, c.logger)
	c.replace(tokens)

	c.logger.Info("token catalog loaded",
		zap.Int("records", len(records)),
		zap.Int("tokens", len(tokens)))

	return nil
}

func (c *Catalog) replace(tokens []domain.Token) {
	index := make(map[string]int, len(tokens))
	for i, t := range tokens {
		index[t.Currency] = i
	}

	c.mu.Lock()
	c.tokens = tokens
	c.index = index
	c.resolved = true
	c.mu.Unlock()
}

// Loading reports whether the catalog is still waiting for its first load to resolve.
func (c *Catalog) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.resolved || c.inFlight.Load()
}

// Tokens returns a copy of the catalog in first-appearance order.
func (c *Catalog) Tokens() []domain.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Token, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// Lookup returns the token for currency.
func (c *Catalog) Lookup(currency string) (domain.Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[currency]
	if !ok {
		return domain.Token{}, false
	}
	return c.tokens[i], true
}

// Options returns the tokens in their selectable form.
func (c *Catalog) Options() []domain.TokenOption {
	c.mu.RLock()
	defer c.mu.RUnlock()

	opts := make([]domain.TokenOption, 0, len(c.tokens))
	for _, t := range c.tokens {
		opts = append(opts, t.Option())
	}
	return opts
}

// Len returns number of tokens in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tokens)
}

// BuildTokens filters records without a usable price, resolves duplicates so that the
// last record of a currency wins, and keeps the order in which currencies first appeared.
func BuildTokens(records []feed.Record, iconTemplate string, logger *zap.Logger) []domain.Token {
	if logger == nil {
		logger = zap.NewNop()
	}
	if iconTemplate == "" {
		iconTemplate = DefaultIconTemplate
	}

	order := make([]string, 0, len(records))
	latest := make(map[string]feed.Record, len(records))

	for _, r := range records {
		if r.Currency == "" || !r.HasUsablePrice() {
			continue
		}
		if r.Price.IsNegative() {
			logger.Warn("discarding record with negative price",
				zap.String("currency", r.Currency),
				zap.String("price", r.Price.String()))
			continue
		}
		if _, seen := latest[r.Currency]; !seen {
			order = append(order, r.Currency)
		}
		latest[r.Currency] = r
	}

	tokens := make([]domain.Token, 0, len(order))
	for _, currency := range order {
		r := latest[currency]
		tokens = append(tokens, domain.Token{
			Currency: currency,
			Price:    *r.Price,
			Icon:     fmt.Sprintf(iconTemplate, currency),
		})
	}

	return tokens
}
