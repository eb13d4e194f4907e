// Package screener picks trading symbols from 24h market statistics.
package screener

import (
	"context"
	"fmt"
	"strings"

	"trading-terminal/pkg/exchanges/common"
)

// minQuoteVolume filters out illiquid pairs whose percent moves are
// dominated by noise.
const minQuoteVolume = 1_000_000

// TickerSource supplies rolling 24h statistics for all symbols.
type TickerSource interface {
	Tickers24h(ctx context.Context) ([]common.Ticker24h, error)
}

// Screener selects the strongest USDT perpetual by 24h price change.
// It satisfies the engine's symbol picker.
type Screener struct {
	source TickerSource
}

func New(source TickerSource) *Screener {
	return &Screener{source: source}
}

// TopGainer returns the liquid USDT pair with the highest 24h gain.
func (s *Screener) TopGainer(ctx context.Context) (string, error) {
	tickers, err := s.source.Tickers24h(ctx)
	if err != nil {
		return "", fmt.Errorf("screener: fetch tickers: %w", err)
	}

	best := ""
	bestChange := 0.0
	for _, t := range tickers {
		if !eligible(t) {
			continue
		}
		if best == "" || t.PriceChangePercent > bestChange {
			best = t.Symbol
			bestChange = t.PriceChangePercent
		}
	}
	if best == "" {
		return "", fmt.Errorf("screener: no eligible USDT pairs in %d tickers", len(tickers))
	}
	return best, nil
}

func eligible(t common.Ticker24h) bool {
	if !strings.HasSuffix(t.Symbol, "USDT") {
		return false
	}
	// Skip dated delivery contracts such as BTCUSDT_250926.
	if strings.Contains(t.Symbol, "_") {
		return false
	}
	return t.QuoteVolume >= minQuoteVolume
}
