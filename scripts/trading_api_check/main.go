package main

import (
	"context"
	"log"
	"os"
	"time"

	"trading-terminal/pkg/config"
	futures "trading-terminal/pkg/exchanges/binance/futures"
)

// trading_api_check/main.go
//
// Small tool to verify that the wrapped Binance futures API is
// reachable with the configured credentials before trading live.
//
// Usage:
//
//	go run ./scripts/trading_api_check
//
// Environment (same as the main program):
//
//	BINANCE_API_KEY / BINANCE_API_SECRET
//	TRADING_SYMBOL (defaults to XRPUSDT)
//
// Read-only: it never places or cancels orders.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client, err := futures.NewClient(futures.Config{
		APIKey:    cfg.BinanceAPIKey,
		APISecret: cfg.BinanceAPISecret,
		Testnet:   cfg.BinanceTestnet,
	})
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.SyncTime(ctx); err != nil {
		log.Fatalf("time sync: %v", err)
	}
	log.Println("time sync ok")

	balance, err := client.Balance(ctx)
	if err != nil {
		log.Fatalf("balance: %v", err)
	}
	log.Printf("available USDT: %.4f", balance)

	price, err := client.MarkPrice(ctx, cfg.Symbol)
	if err != nil {
		log.Fatalf("mark price: %v", err)
	}
	log.Printf("%s mark price: %.6f", cfg.Symbol, price)

	prec, err := client.SymbolPrecision(ctx, cfg.Symbol)
	if err != nil {
		log.Fatalf("precision: %v", err)
	}
	log.Printf("%s precision: qty %d decimals, price %d decimals", cfg.Symbol, prec.QuantityDecimals, prec.PriceDecimals)

	pos, err := client.OpenPosition(ctx, cfg.Symbol)
	if err != nil {
		log.Fatalf("position: %v", err)
	}
	if pos == nil {
		log.Printf("%s: no open position", cfg.Symbol)
	} else {
		log.Printf("%s: %s %.6f @ %.6f (unrealized %.4f)", pos.Symbol, pos.Side, pos.Qty, pos.EntryPrice, pos.Unrealized)
	}

	log.Printf("weight used: %.1f%% of the minute budget", client.WeightUsage()*100)
	os.Exit(0)
}
