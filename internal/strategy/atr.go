package strategy

import (
	talib "github.com/markcheno/go-talib"

	market "trading-terminal/pkg/market/binance"
)

// MeasureATR computes the latest Average True Range over the window.
// Returns 0 when the window is too short, mirroring the WAIT contract.
// Manual entries use this when no signal fired but atr risk sizing
// still needs a volatility measure.
func MeasureATR(candles []market.Kline, length int) float64 {
	if length <= 0 || len(candles) < length+1 {
		return 0
	}
	atr := talib.Atr(highs(candles), lows(candles), closes(candles), length)
	return atr[len(atr)-1]
}
