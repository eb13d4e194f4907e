package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"trading-terminal/internal/api"
	"trading-terminal/internal/bot"
	"trading-terminal/internal/events"
	"trading-terminal/internal/screener"
	"trading-terminal/pkg/config"
	"trading-terminal/pkg/db"
	futures "trading-terminal/pkg/exchanges/binance/futures"
	marketbinance "trading-terminal/pkg/market/binance"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.Printf("trading terminal starting on :%s (symbol %s, %s strategy)", cfg.Port, cfg.Symbol, cfg.Strategy)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open ledger db: %v", err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf("migrate ledger db: %v", err)
	}

	bus := events.NewBus()

	gateway, err := futures.NewClient(futures.Config{
		APIKey:    cfg.BinanceAPIKey,
		APISecret: cfg.BinanceAPISecret,
		Testnet:   cfg.BinanceTestnet,
	})
	if err != nil {
		log.Fatalf("exchange gateway: %v", err)
	}

	syncCtx, cancel := context.WithTimeout(ctx, cfg.GatewayTimeout)
	if err := gateway.SyncTime(syncCtx); err != nil {
		log.Printf("clock sync failed, using local time: %v", err)
	}
	cancel()

	marketData := marketbinance.NewClient(cfg.BinanceTestnet)

	engine, err := bot.New(cfg, bot.Deps{
		Gateway: gateway,
		Market:  marketData,
		Ledger:  database,
		Bus:     bus,
		Picker:  screener.New(gateway),
	})
	if err != nil {
		log.Fatalf("engine: %v", err)
	}

	// Align the exchange with the configured leverage before any entry.
	levCtx, cancel := context.WithTimeout(ctx, cfg.GatewayTimeout)
	if err := engine.SetLeverage(levCtx, cfg.Leverage); err != nil {
		log.Printf("initial leverage sync failed: %v", err)
	}
	cancel()

	server := api.NewServer(ctx, bus, database, engine, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		log.Fatalf("http server: %v", err)
	case <-ctx.Done():
	}

	log.Println("shutdown signal received")
	engine.Stop()
	// Give an in-flight order submission a moment to settle.
	time.Sleep(500 * time.Millisecond)
	log.Println("trading terminal stopped")
}
