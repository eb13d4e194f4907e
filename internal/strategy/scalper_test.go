package strategy

import (
	"testing"

	"trading-terminal/pkg/config"
	market "trading-terminal/pkg/market/binance"
)

func scalperParams() config.ScalperParams {
	return config.ScalperParams{
		Timeframe:    "1m",
		VolumeMALen:  10,
		VolumeThresh: 2.0,
		BodyRatio:    0.6,
		ATRLength:    5,
		ATRMultSL:    1.0,
	}
}

func spikeWindow(n int, lastVolume, open, close float64) []market.Kline {
	candles := make([]market.Kline, n)
	for i := range candles {
		candles[i] = market.Kline{
			OpenTime: int64(i) * 60_000,
			Open:     100, High: 100.5, Low: 99.5, Close: 100,
			Volume: 100,
		}
	}
	final := &candles[n-1]
	final.Volume = lastVolume
	final.Open = open
	final.Close = close
	if close > open {
		final.High, final.Low = close+0.1, open-0.1
	} else {
		final.High, final.Low = open+0.1, close-0.1
	}
	return candles
}

func TestScalperShortHistoryWaits(t *testing.T) {
	s := NewScalper(scalperParams())

	sig := s.Evaluate(spikeWindow(s.Lookback()-1, 500, 100, 105))
	if sig != Wait {
		t.Fatalf("signal=%+v, expected WAIT on short history", sig)
	}
}

func TestScalperNoSpikeWaits(t *testing.T) {
	s := NewScalper(scalperParams())

	// Strong candle but ordinary volume.
	sig := s.Evaluate(spikeWindow(30, 120, 100, 105))
	if sig.Action != ActionWait {
		t.Fatalf("action=%s, expected WAIT without a volume spike", sig.Action)
	}
}

func TestScalperWeakBodyWaits(t *testing.T) {
	s := NewScalper(scalperParams())

	// Volume spike but a doji-like candle: tiny body, wide range.
	window := spikeWindow(30, 500, 100, 100.1)
	final := &window[len(window)-1]
	final.High, final.Low = 103, 97

	sig := s.Evaluate(window)
	if sig.Action != ActionWait {
		t.Fatalf("action=%s, expected WAIT on weak candle body", sig.Action)
	}
}

func TestScalperBullishSpikeGoesLong(t *testing.T) {
	s := NewScalper(scalperParams())

	sig := s.Evaluate(spikeWindow(30, 500, 100, 105))
	if sig.Action != ActionLong {
		t.Fatalf("action=%s, expected LONG", sig.Action)
	}
	if sig.ATR <= 0 {
		t.Fatalf("ATR=%v, expected positive volatility", sig.ATR)
	}
}

func TestScalperBearishSpikeGoesShort(t *testing.T) {
	s := NewScalper(scalperParams())

	sig := s.Evaluate(spikeWindow(30, 500, 105, 100))
	if sig.Action != ActionShort {
		t.Fatalf("action=%s, expected SHORT", sig.Action)
	}
}
