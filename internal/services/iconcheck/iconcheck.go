// Package iconcheck tells whether a token icon locator resolves to a loadable resource.
package iconcheck

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 5 * time.Second

// Checker issues a GET per icon and remembers the outcome.
type Checker struct {
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	cache map[string]bool
}

// New creates a checker. A nil client gets a default one.
func New(httpClient *http.Client, logger *zap.Logger) *Checker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		httpClient: httpClient,
		logger:     logger,
		cache:      make(map[string]bool),
	}
}

// Valid reports whether url answers with a 2xx status. Transport errors count as invalid
// and are not cached, so a later call may succeed.
func (c *Checker) Valid(ctx context.Context, url string) bool {
	c.mu.RLock()
	valid, ok := c.cache[url]
	c.mu.RUnlock()
	if ok {
		return valid
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Debug("invalid icon url", zap.String("url", url), zap.Error(err))
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("icon check failed", zap.String("url", url), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	valid = resp.StatusCode >= 200 && resp.StatusCode < 300

	c.mu.Lock()
	c.cache[url] = valid
	c.mu.Unlock()

	return valid
}
