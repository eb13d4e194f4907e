package bot

import (
	"context"
	"fmt"
	"strings"

	"trading-terminal/internal/events"
	"trading-terminal/internal/strategy"
	"trading-terminal/pkg/config"
)

// Control-surface commands. Each validates synchronously and returns a
// descriptive error without mutating state when the input is invalid.

// SetLeverage pushes the leverage multiplier to the exchange for the
// active symbol and records it on success.
func (e *Engine) SetLeverage(ctx context.Context, leverage int) error {
	if leverage < 1 || leverage > 125 {
		return fmt.Errorf("leverage %d out of range 1..125", leverage)
	}

	e.mu.Lock()
	symbol := e.symbol
	e.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, e.gatewayTimeout)
	err := e.gateway.SetLeverage(cctx, symbol, leverage)
	cancel()
	if err != nil {
		return fmt.Errorf("set leverage %s: %w", symbol, err)
	}

	e.mu.Lock()
	e.leverage = leverage
	e.mu.Unlock()

	e.logf("leverage set to %dx on %s", leverage, symbol)
	return nil
}

// SetQuantity updates the per-trade quote-currency notional.
func (e *Engine) SetQuantity(usd float64) error {
	if usd < minNotionalUSD {
		return fmt.Errorf("quantity %.2f below minimum notional %.2f", usd, minNotionalUSD)
	}

	e.mu.Lock()
	e.quantityUSD = usd
	e.mu.Unlock()

	e.logf("trade quantity set to %.2f USDT", usd)
	return nil
}

// SetRiskMode switches between atr and fixed_roi exit sizing.
// roiPercent is the take-profit target as a percentage (e.g. 2.0).
func (e *Engine) SetRiskMode(mode config.RiskMode, roiPercent float64) error {
	switch mode {
	case config.RiskModeATR:
	case config.RiskModeFixedROI:
		if roiPercent <= 0 {
			return fmt.Errorf("roi %.2f%% must be positive", roiPercent)
		}
	default:
		return fmt.Errorf("invalid risk mode %q", mode)
	}

	e.mu.Lock()
	e.riskMode = mode
	if mode == config.RiskModeFixedROI {
		e.fixedROI = roiPercent / 100
	}
	e.mu.Unlock()

	e.logf("risk mode set to %s", mode)
	return nil
}

// SetStrategy switches the active signal provider.
func (e *Engine) SetStrategy(name config.StrategyName) error {
	if _, ok := e.providers[name]; !ok {
		return fmt.Errorf("unknown strategy %q", name)
	}

	e.mu.Lock()
	e.strategyName = name
	e.mu.Unlock()

	e.logf("active strategy set to %s", name)
	return nil
}

// UpdateSymbol changes the traded symbol. mode is "manual" (value is
// the symbol) or "auto" (the screener picks the strongest 24h gainer).
// Rejected while a position is open.
func (e *Engine) UpdateSymbol(ctx context.Context, mode, value string) (string, error) {
	e.mu.Lock()
	open := e.position != nil
	e.mu.Unlock()
	if open {
		return "", fmt.Errorf("cannot change symbol while a position is open")
	}

	var symbol string
	switch strings.ToLower(mode) {
	case "manual":
		symbol = strings.ToUpper(strings.TrimSpace(value))
		if symbol == "" {
			return "", fmt.Errorf("manual symbol update requires a symbol")
		}
	case "auto":
		if e.picker == nil {
			return "", fmt.Errorf("auto symbol selection is not configured")
		}
		cctx, cancel := context.WithTimeout(ctx, e.gatewayTimeout)
		picked, err := e.picker.TopGainer(cctx)
		cancel()
		if err != nil {
			return "", fmt.Errorf("screen symbols: %w", err)
		}
		symbol = picked
	default:
		return "", fmt.Errorf("invalid symbol mode %q", mode)
	}

	e.mu.Lock()
	e.symbol = symbol
	e.mu.Unlock()

	e.logf("active symbol set to %s", symbol)
	e.bus.Publish(events.EventSymbolUpdate, symbol)
	return symbol, nil
}

// ManualTrade opens a position on demand, bypassing the scheduled
// signal branch but reusing the tick's quantity and entry logic. It
// contends on the same order-submission lock as the loop, so the two
// can never both submit entries for the symbol.
func (e *Engine) ManualTrade(ctx context.Context, side string) error {
	s, err := normalizeSide(side)
	if err != nil {
		return err
	}

	e.mu.Lock()
	open := e.position != nil
	e.mu.Unlock()
	if open {
		return fmt.Errorf("position already open")
	}

	snap := e.snapshot()
	window, err := e.closedCandles(ctx, snap)
	if err != nil {
		return err
	}
	if window == nil {
		return fmt.Errorf("not enough candle history for %s", snap.symbol)
	}

	// The signal's volatility measure sizes the exits; when the
	// strategy is waiting, measure ATR directly from the window.
	atr := snap.provider.Evaluate(window).ATR
	if atr == 0 {
		atr = strategy.MeasureATR(window, snap.atrLength)
	}

	return e.enterPosition(ctx, snap, s, atr)
}

// EmergencyClose flattens any exposure for the active symbol and syncs
// the ledger, regardless of what the local state believes.
func (e *Engine) EmergencyClose(ctx context.Context) error {
	e.mu.Lock()
	symbol := e.symbol
	if e.position != nil {
		symbol = e.position.Symbol
	}
	e.mu.Unlock()

	e.logf("emergency close requested for %s", symbol)
	return e.closeOpenPosition(ctx, symbol)
}
