package strategy

import (
	talib "github.com/markcheno/go-talib"

	"trading-terminal/pkg/config"
	market "trading-terminal/pkg/market/binance"
)

// Momentum is an aggressive EMA-crossover strategy with RSI confirmation.
// A fresh bullish cross of the fast EMA over the slow EMA goes LONG when
// RSI is above the oversold floor; the mirrored cross goes SHORT when RSI
// is below the overbought ceiling. ATR over the same window is reported
// as the volatility measure.
type Momentum struct {
	params config.MomentumParams
}

// NewMomentum builds the momentum provider from its parameter set.
func NewMomentum(p config.MomentumParams) *Momentum {
	return &Momentum{params: p}
}

func (m *Momentum) Name() config.StrategyName { return config.StrategyMomentum }

func (m *Momentum) Timeframe() string { return m.params.Timeframe }

func (m *Momentum) Lookback() int {
	n := m.params.EMASlow
	if m.params.RSILength+1 > n {
		n = m.params.RSILength + 1
	}
	if m.params.ATRLength+1 > n {
		n = m.params.ATRLength + 1
	}
	// One extra candle so the cross can be compared against the prior bar.
	return n + 2
}

func (m *Momentum) Evaluate(candles []market.Kline) Signal {
	if len(candles) < m.Lookback() {
		return Wait
	}

	cl := closes(candles)
	emaFast := talib.Ema(cl, m.params.EMAFast)
	emaSlow := talib.Ema(cl, m.params.EMASlow)
	rsi := talib.Rsi(cl, m.params.RSILength)
	atr := talib.Atr(highs(candles), lows(candles), cl, m.params.ATRLength)

	latest := len(candles) - 1
	prev := latest - 1

	bullCross := emaFast[latest] > emaSlow[latest] && emaFast[prev] <= emaSlow[prev]
	bearCross := emaFast[latest] < emaSlow[latest] && emaFast[prev] >= emaSlow[prev]

	if bullCross && rsi[latest] > m.params.RSIOversold {
		return Signal{Action: ActionLong, ATR: atr[latest]}
	}
	if bearCross && rsi[latest] < m.params.RSIOverbought {
		return Signal{Action: ActionShort, ATR: atr[latest]}
	}
	return Wait
}
