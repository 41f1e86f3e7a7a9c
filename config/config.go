package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/swapquote/internal/services/catalog"
	"github.com/vadiminshakov/swapquote/internal/services/feed"
)

const (
	SourceHTTP        = "http"
	SourceBinance     = "binance"
	SourceBybit       = "bybit"
	SourceHyperliquid = "hyperliquid"

	defaultFetchTimeout = 10 * time.Second
	defaultLogFile      = "swapquote.log"
)

type Config struct {
	// Source price feed kind: http, binance, bybit or hyperliquid.
	Source string
	// Endpoint price list URL for the http source, API base URL for hyperliquid.
	Endpoint string
	// QuoteAsset asset exchange prices are expressed in.
	QuoteAsset   string
	IconTemplate string
	FetchTimeout time.Duration
	// JournalDir quote journal directory, empty disables the journal.
	JournalDir string
	// Listen address of the quote web server, empty disables it.
	Listen   string
	LogLevel zapcore.Level
	// LogFile rotated log file, empty logs to stderr.
	LogFile string
}

type ConfigTmp struct {
	Source       string        `yaml:"source"`
	Endpoint     string        `yaml:"endpoint,omitempty"`
	QuoteAsset   string        `yaml:"quote_asset,omitempty"`
	IconTemplate string        `yaml:"icon_template,omitempty"`
	FetchTimeout time.Duration `yaml:"fetch_timeout,omitempty"`
	JournalDir   string        `yaml:"journal_dir,omitempty"`
	Listen       string        `yaml:"listen,omitempty"`
	LogLevel     string        `yaml:"log_level,omitempty"`
	LogFile      string        `yaml:"log_file,omitempty"`
}

// Get reads configuration from --config yaml file or from command line flags.
func Get() (Config, error) {
	return Parse(os.Args[1:])
}

// Parse reads configuration from args.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("swapquote", flag.ContinueOnError)
	path := fs.String("config", "", "path to yaml config")
	source := fs.String("source", SourceHTTP, "price source: http, binance, bybit or hyperliquid")
	endpoint := fs.String("endpoint", feed.DefaultEndpoint, "price list url for the http source, api url for hyperliquid")
	quote := fs.String("quote", feed.DefaultQuoteAsset, "quote asset for exchange sources, example: USDT")
	icons := fs.String("icons", catalog.DefaultIconTemplate, "icon url template, %s is the currency")
	timeout := fs.Duration("timeout", defaultFetchTimeout, "price fetch timeout")
	journal := fs.String("journal", "", "quote journal directory, empty disables it")
	listen := fs.String("listen", "", "quote web server address, example: :8080")
	level := fs.String("loglevel", "info", "log level: debug, info, warn, error")
	logFile := fs.String("logfile", defaultLogFile, "log file, empty logs to stderr")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *path != "" {
		return getYaml(*path)
	}

	return build(ConfigTmp{
		Source:       *source,
		Endpoint:     *endpoint,
		QuoteAsset:   *quote,
		IconTemplate: *icons,
		FetchTimeout: *timeout,
		JournalDir:   *journal,
		Listen:       *listen,
		LogLevel:     *level,
		LogFile:      *logFile,
	})
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	return build(tmp)
}

func build(c ConfigTmp) (Config, error) {
	conf := Config{
		Source:       strings.ToLower(strings.TrimSpace(c.Source)),
		Endpoint:     c.Endpoint,
		QuoteAsset:   strings.ToUpper(strings.TrimSpace(c.QuoteAsset)),
		IconTemplate: c.IconTemplate,
		FetchTimeout: c.FetchTimeout,
		JournalDir:   c.JournalDir,
		Listen:       c.Listen,
		LogFile:      c.LogFile,
	}

	switch conf.Source {
	case "":
		conf.Source = SourceHTTP
	case SourceHTTP, SourceBinance, SourceBybit, SourceHyperliquid:
	default:
		return Config{}, fmt.Errorf("incorrect 'source' param: %s (must be http, binance, bybit or hyperliquid)", c.Source)
	}

	switch {
	case conf.Source == SourceHyperliquid && (conf.Endpoint == "" || conf.Endpoint == feed.DefaultEndpoint):
		conf.Endpoint = feed.DefaultHyperliquidURL
	case conf.Endpoint == "":
		conf.Endpoint = feed.DefaultEndpoint
	}
	if conf.QuoteAsset == "" {
		conf.QuoteAsset = feed.DefaultQuoteAsset
	}
	if conf.IconTemplate == "" {
		conf.IconTemplate = catalog.DefaultIconTemplate
	}
	if strings.Count(conf.IconTemplate, "%s") != 1 {
		return Config{}, fmt.Errorf("incorrect 'icon_template' param: %s (must contain exactly one %%s)", conf.IconTemplate)
	}
	if conf.FetchTimeout <= 0 {
		conf.FetchTimeout = defaultFetchTimeout
	}

	level := c.LogLevel
	if level == "" {
		level = "info"
	}
	if err := conf.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return Config{}, fmt.Errorf("incorrect 'log_level' param: %s, error: %w", level, err)
	}

	return conf, nil
}
