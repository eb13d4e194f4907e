package strategy

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"trading-terminal/pkg/config"
	market "trading-terminal/pkg/market/binance"
)

// Scalper trades sudden volume spikes carried by strong-bodied candles:
// the latest candle's volume must exceed a multiple of its moving
// average and the candle body must dominate its range. Direction follows
// the candle.
type Scalper struct {
	params config.ScalperParams
}

// NewScalper builds the scalping provider from its parameter set.
func NewScalper(p config.ScalperParams) *Scalper {
	return &Scalper{params: p}
}

func (s *Scalper) Name() config.StrategyName { return config.StrategyScalper }

func (s *Scalper) Timeframe() string { return s.params.Timeframe }

func (s *Scalper) Lookback() int {
	n := s.params.VolumeMALen
	if s.params.ATRLength+1 > n {
		n = s.params.ATRLength + 1
	}
	return n + 1
}

func (s *Scalper) Evaluate(candles []market.Kline) Signal {
	if len(candles) < s.Lookback() {
		return Wait
	}

	cl := closes(candles)
	volSMA := talib.Sma(volumes(candles), s.params.VolumeMALen)
	atr := talib.Atr(highs(candles), lows(candles), cl, s.params.ATRLength)

	latest := candles[len(candles)-1]
	idx := len(candles) - 1

	volumeSpike := latest.Volume > volSMA[idx]*s.params.VolumeThresh

	candleRange := latest.High - latest.Low
	bodySize := math.Abs(latest.Close - latest.Open)
	strongBody := bodySize/(candleRange+1e-9) >= s.params.BodyRatio

	if !volumeSpike || !strongBody {
		return Wait
	}
	switch {
	case latest.Close > latest.Open:
		return Signal{Action: ActionLong, ATR: atr[idx]}
	case latest.Close < latest.Open:
		return Signal{Action: ActionShort, ATR: atr[idx]}
	default:
		return Wait
	}
}
