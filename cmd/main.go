// Command swapquote runs the interactive token swap form.
// Prices are loaded once at start from the configured source, then the form quotes
// conversions between any two tokens until the user quits.
//
// Usage:
//
//	swapquote --config config.yaml
//	swapquote --source binance --quote USDT --listen :8080 --journal ./wal/quotes
//	swapquote --source hyperliquid
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/adshao/go-binance/v2"
	"github.com/charmbracelet/huh"
	"github.com/hirokisan/bybit/v2"
	"go.uber.org/zap"

	"github.com/vadiminshakov/swapquote/config"
	"github.com/vadiminshakov/swapquote/internal/logging"
	"github.com/vadiminshakov/swapquote/internal/services/catalog"
	"github.com/vadiminshakov/swapquote/internal/services/feed"
	"github.com/vadiminshakov/swapquote/internal/services/iconcheck"
	"github.com/vadiminshakov/swapquote/internal/session"
	"github.com/vadiminshakov/swapquote/internal/setup"
	"github.com/vadiminshakov/swapquote/internal/storage/quotes"
	"github.com/vadiminshakov/swapquote/internal/web"
)

func main() {
	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(conf.LogLevel, conf.LogFile)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, logger); err != nil {
		logger.Error("swapquote stopped", zap.Error(err))
		log.Fatal(err)
	}
}

func run(ctx context.Context, conf config.Config, logger *zap.Logger) error {
	tokens := catalog.New(newSource(ctx, conf), logger, catalog.WithIconTemplate(conf.IconTemplate))

	var opts []session.Option
	var journal *quotes.WALStore
	if conf.JournalDir != "" {
		var err error
		journal, err = quotes.NewWALStore(conf.JournalDir)
		if err != nil {
			return err
		}
		defer journal.Close()
		opts = append(opts, session.WithJournal(journal))
	}

	s := session.New(tokens, logger, opts...)
	defer s.Close()

	if conf.Listen != "" {
		var srv *web.Server
		if journal != nil {
			srv = web.NewServer(conf.Listen, tokens, journal, logger)
		} else {
			srv = web.NewServer(conf.Listen, tokens, nil, logger)
		}
		go func() {
			if err := srv.Start(ctx); err != nil {
				logger.Error("web server failed", zap.String("addr", conf.Listen), zap.Error(err))
			}
		}()
		logger.Info("web server started", zap.String("addr", conf.Listen))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, conf.FetchTimeout)
	err := s.Start(fetchCtx)
	cancel()
	if err != nil {
		// the form shows the failure notification and an empty token list
		logger.Warn("starting with empty catalog", zap.Error(err))
	} else {
		logger.Info("catalog ready", zap.Int("tokens", tokens.Len()))
	}

	err = setup.RunSwapForm(ctx, s, iconcheck.New(nil, logger))
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newSource(ctx context.Context, conf config.Config) feed.Source {
	switch conf.Source {
	case config.SourceBinance:
		return feed.NewBinanceSource(binance.NewClient("", ""), conf.QuoteAsset)
	case config.SourceBybit:
		return feed.NewBybitSource(bybit.NewClient(), conf.QuoteAsset)
	case config.SourceHyperliquid:
		return feed.NewHyperliquidSource(feed.NewHyperliquidInfo(ctx, conf.Endpoint))
	default:
		return feed.NewHTTPSource(conf.Endpoint, nil)
	}
}
