package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/verifiedmkt/poolbook/params"
	"github.com/verifiedmkt/poolbook/pkg/api"
	"github.com/verifiedmkt/poolbook/pkg/book"
	"github.com/verifiedmkt/poolbook/pkg/fixed"
	"github.com/verifiedmkt/poolbook/pkg/storage"
	"github.com/verifiedmkt/poolbook/pkg/swap"
	"github.com/verifiedmkt/poolbook/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")

	logger, err := util.NewLogger()
	if cfg.Node.LogFile != "" {
		logger, err = util.NewLoggerWithFile(cfg.Node.LogFile)
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	minSize, err := fixed.Parse(cfg.Market.MinOrderSize)
	if err != nil {
		sugar.Fatalw("bad_min_order_size", "value", cfg.Market.MinOrderSize, "err", err)
	}

	// ---- Matching engine ----
	b := book.New(cfg.Market.Owner, cfg.Market.Manager, book.Params{
		MinOrderSize: minSize,
		PriceBandBps: cfg.Market.PriceBandBps,
	}, util.RealClock{}, sugar)

	// ---- Persistence ----
	store, err := storage.NewPebbleStore(cfg.Node.DataDir)
	if err != nil {
		sugar.Fatalw("store_open_failed", "dir", cfg.Node.DataDir, "err", err)
	}
	defer store.Close()

	orders, err := store.LoadOrders()
	if err != nil {
		sugar.Fatalw("order_restore_failed", "err", err)
	}
	trades, err := store.LoadTrades()
	if err != nil {
		sugar.Fatalw("trade_restore_failed", "err", err)
	}
	b.Restore(orders, trades)
	b.SetPersister(store)

	// ---- Swap adapter & API ----
	adapter := swap.NewAdapter(b, cfg.Market.Manager,
		cfg.Market.SecurityToken, cfg.Market.CurrencyToken, sugar)
	server := api.NewServer(b, adapter, sugar)

	// Broadcast every execution to WebSocket subscribers.
	b.OnTrade = func(t *book.Trade) {
		server.BroadcastTrade(t)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sugar.Infow("bookd_starting",
		"owner", cfg.Market.Owner.Hex(),
		"manager", cfg.Market.Manager.Hex(),
		"security", cfg.Market.SecurityToken.Hex(),
		"currency", cfg.Market.CurrencyToken.Hex(),
		"min_order_size", minSize.String(),
		"price_band_bps", cfg.Market.PriceBandBps,
		"data_dir", cfg.Node.DataDir)

	go func() {
		if err := server.Start(cfg.Node.APIAddr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("bookd_shutting_down")
}
