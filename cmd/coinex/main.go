package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/efreitasn/coinex/internal/config"
	"github.com/efreitasn/coinex/internal/domain"
	"github.com/efreitasn/coinex/internal/engine"
	"github.com/efreitasn/coinex/internal/handler"
	"github.com/efreitasn/coinex/internal/ledger"
	"github.com/efreitasn/coinex/internal/notify"
	"github.com/efreitasn/coinex/internal/pricing"
	"github.com/efreitasn/coinex/internal/service"
	"github.com/efreitasn/coinex/internal/store"
)

// seedTickers is the built-in symbol table. Tickers are immutable
// and there is no runtime registration endpoint.
var seedTickers = []struct {
	symbol string
	name   string
}{
	{"BTC", "Bitcoin"},
	{"ETH", "Ethereum"},
	{"XRP", "Ripple"},
	{"BNB", "Binance Coin"},
	{"ADA", "Cardano"},
	{"SOL", "Solana"},
	{"DOT", "Polkadot"},
	{"DOGE", "Dogecoin"},
	{"AVAX", "Avalanche"},
	{"LTC", "Litecoin"},
	{"MATIC", "Polygon"},
	{"ATOM", "Cosmos"},
	{"LINK", "Chainlink"},
	{"UNI", "Uniswap"},
	{"XLM", "Stellar"},
	{"ETC", "Ethereum Classic"},
	{"ALGO", "Algorand"},
	{"VET", "VeChain"},
	{"XTZ", "Tezos"},
	{"FIL", "Filecoin"},
}

// seedDemoUsers provisions a few funded accounts so the server is
// usable out of the box. Account management proper lives in an
// external collaborator.
func seedDemoUsers(users *store.UserStore) {
	for id := int64(1); id <= 3; id++ {
		users.Put(&domain.User{
			ID:        id,
			Name:      fmt.Sprintf("demo-%d", id),
			Balance:   1_000_000, // $10,000.00
			CreatedAt: time.Now(),
		})
	}
}

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Stores.
	userStore := store.NewUserStore()
	tickerStore := store.NewTickerStore()
	assetStore := store.NewAssetStore()
	orderStore := store.NewOrderStore()
	tradeStore := store.NewTradeStore()

	for _, t := range seedTickers {
		tickerStore.Create(t.symbol, t.name, domain.TickerTypeCrypto)
	}
	seedDemoUsers(userStore)

	// Ledger and engine.
	lgr := ledger.New(userStore, assetStore)
	books := engine.NewBookManager()
	matcher := engine.NewMatcher(books, orderStore, tradeStore, lgr, cfg.CommissionRate, cfg.MatchMaxRetries, logger)

	// Notification sink: webhook delivery when configured, else a no-op.
	var sink notify.Sink = notify.NopSink{}
	if cfg.WebhookURL != "" {
		sink = notify.NewWebhookSink(cfg.WebhookURL, cfg.WebhookTimeout)
	}

	// Price oracle for holdings valuation (display only).
	oracle := pricing.NewStaticOracle()

	// Services.
	orderSvc := service.NewOrderService(matcher, userStore, tickerStore, orderStore, sink, logger)
	accountSvc := service.NewAccountService(userStore, orderStore, assetStore, tickerStore, lgr, oracle)
	bookSvc := service.NewBookService(books, tickerStore)

	// Router.
	router := handler.NewRouter(orderSvc, accountSvc, bookSvc, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
