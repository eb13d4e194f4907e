package screener

import (
	"context"
	"errors"
	"testing"

	"trading-terminal/pkg/exchanges/common"
)

type fakeSource struct {
	tickers []common.Ticker24h
	err     error
}

func (f fakeSource) Tickers24h(context.Context) ([]common.Ticker24h, error) {
	return f.tickers, f.err
}

func TestTopGainerPicksStrongestLiquidPair(t *testing.T) {
	s := New(fakeSource{tickers: []common.Ticker24h{
		{Symbol: "BTCUSDT", PriceChangePercent: 2.5, QuoteVolume: 900_000_000},
		{Symbol: "DOGEUSDT", PriceChangePercent: 14.1, QuoteVolume: 50_000_000},
		{Symbol: "ETHBTC", PriceChangePercent: 30, QuoteVolume: 80_000_000},      // not USDT quoted
		{Symbol: "BTCUSDT_250926", PriceChangePercent: 25, QuoteVolume: 5_000_000}, // delivery contract
		{Symbol: "PEPEUSDT", PriceChangePercent: 60, QuoteVolume: 200_000},        // illiquid
	}})

	got, err := s.TopGainer(context.Background())
	if err != nil {
		t.Fatalf("TopGainer: %v", err)
	}
	if got != "DOGEUSDT" {
		t.Fatalf("picked %s, want DOGEUSDT", got)
	}
}

func TestTopGainerPicksLeastLoserInDownMarket(t *testing.T) {
	s := New(fakeSource{tickers: []common.Ticker24h{
		{Symbol: "BTCUSDT", PriceChangePercent: -1.2, QuoteVolume: 900_000_000},
		{Symbol: "SOLUSDT", PriceChangePercent: -8.4, QuoteVolume: 90_000_000},
	}})

	got, err := s.TopGainer(context.Background())
	if err != nil {
		t.Fatalf("TopGainer: %v", err)
	}
	if got != "BTCUSDT" {
		t.Fatalf("picked %s, want BTCUSDT", got)
	}
}

func TestTopGainerErrors(t *testing.T) {
	if _, err := New(fakeSource{err: errors.New("boom")}).TopGainer(context.Background()); err == nil {
		t.Fatal("source error should propagate")
	}
	if _, err := New(fakeSource{}).TopGainer(context.Background()); err == nil {
		t.Fatal("empty ticker list should be an error")
	}
}
