package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vadiminshakov/swapquote/internal/domain"
)

const quotePollInterval = 2 * time.Second

type tokenLister interface {
	Options() []domain.TokenOption
	Loading() bool
}

type quoteReader interface {
	RecordsAfter(index uint64) ([]domain.QuoteRecordEntry, error)
}

// Server exposes the token list as JSON and journaled quotes as an SSE stream.
type Server struct {
	Addr   string
	Tokens tokenLister
	Quotes quoteReader
	Logger *zap.Logger

	pollInterval time.Duration
}

// NewServer creates a new web server instance. quotes may be nil when no journal is kept.
func NewServer(addr string, tokens tokenLister, quotes quoteReader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Tokens: tokens, Quotes: quotes, Logger: logger, pollInterval: quotePollInterval}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/tokens", s.handleTokens)
	mux.HandleFunc("/quotes/stream", s.handleQuoteStream)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

type tokensResponse struct {
	Loading bool                 `json:"loading"`
	Tokens  []domain.TokenOption `json:"tokens"`
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	if s.Tokens == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "token catalog not available")
		return
	}

	resp := tokensResponse{Loading: s.Tokens.Loading(), Tokens: s.Tokens.Options()}
	if resp.Tokens == nil {
		resp.Tokens = []domain.TokenOption{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Warn("encode tokens response", zap.Error(err))
	}
}

func (s *Server) handleQuoteStream(w http.ResponseWriter, r *http.Request) {
	if s.Quotes == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "quote journal not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(s.pollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendQuotes := func() error {
		entries, err := s.Quotes.RecordsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			payload, err := json.Marshal(entry.Record)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: quote\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = entry.Index
		}
		return nil
	}

	if err := sendQuotes(); err != nil {
		http.Error(w, "failed to load quotes", http.StatusInternalServerError)
		s.Logger.Error("quote stream initial load", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendQuotes(); err != nil {
				s.Logger.Warn("quote stream poll", zap.Error(err))
			}
		}
	}
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Token Swap quotes</title>
<style>
body { font-family: system-ui, sans-serif; background: #1a1a1a; color: #eee; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #333; padding: .4rem .6rem; text-align: left; }
th { color: #646cff; }
</style>
</head>
<body>
<h1>Token Swap</h1>
<h2>Tokens</h2>
<div id="tokens">Loading...</div>
<h2>Quotes</h2>
<table>
<thead><tr><th>Time</th><th>From</th><th>Amount</th><th>To</th><th>Amount</th><th>Rate</th></tr></thead>
<tbody id="quotes"></tbody>
</table>
<script>
fetch('/tokens').then(r => r.json()).then(data => {
  const el = document.getElementById('tokens');
  if (data.loading) { el.textContent = 'Loading...'; return; }
  el.textContent = data.tokens.map(t => t.label + ' ' + t.price).join(', ') || 'No tokens';
});
const es = new EventSource('/quotes/stream');
es.addEventListener('quote', ev => {
  const q = JSON.parse(ev.data);
  const row = document.createElement('tr');
  [new Date(q.ts).toLocaleTimeString(), q.from, q.from_amount, q.to, q.to_amount, q.rate || ''].forEach(v => {
    const td = document.createElement('td');
    td.textContent = v;
    row.appendChild(td);
  });
  document.getElementById('quotes').prepend(row);
});
</script>
</body>
</html>
`
