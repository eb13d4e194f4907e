package strategy

import (
	"fmt"

	"trading-terminal/pkg/config"
	market "trading-terminal/pkg/market/binance"
)

// Action is a trade decision emitted by a signal provider.
type Action string

const (
	ActionLong  Action = "LONG"
	ActionShort Action = "SHORT"
	ActionWait  Action = "WAIT"
)

// Signal pairs an action with the volatility measured at decision time.
// ATR is meaningless when Action is WAIT.
type Signal struct {
	Action Action
	ATR    float64
}

// Wait is the neutral signal returned when no setup (or not enough
// history) is present.
var Wait = Signal{Action: ActionWait}

// Provider maps a closed-candle window to a trade signal. Implementations
// must be pure: same window, same answer, no hidden state. Windows are
// oldest-first and must never include the still-forming candle; providers
// return Wait instead of failing when the window is too short.
type Provider interface {
	Name() config.StrategyName
	Timeframe() string
	// Lookback is the minimum window length Evaluate needs to produce
	// a non-WAIT signal.
	Lookback() int
	Evaluate(candles []market.Kline) Signal
}

// ForName returns the provider for a strategy name. The set is closed:
// adding a strategy is a compile-time extension.
func ForName(name config.StrategyName, cfg *config.Config) (Provider, error) {
	switch name {
	case config.StrategyMomentum:
		return NewMomentum(cfg.Momentum), nil
	case config.StrategyScalper:
		return NewScalper(cfg.Scalper), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

func closes(candles []market.Kline) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func highs(candles []market.Kline) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

func lows(candles []market.Kline) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

func volumes(candles []market.Kline) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
