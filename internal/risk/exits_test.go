package risk

import (
	"math"
	"testing"

	"trading-terminal/pkg/config"
	"trading-terminal/pkg/exchanges/common"
)

func TestExitPricesATRMode(t *testing.T) {
	tests := []struct {
		name   string
		side   common.Side
		entry  float64
		atr    float64
		slMult float64
		tpMult float64
	}{
		{name: "long", side: common.SideBuy, entry: 100, atr: 2, slMult: 1.5, tpMult: 3},
		{name: "short", side: common.SideSell, entry: 100, atr: 2, slMult: 1.5, tpMult: 3},
		{name: "long default tp", side: common.SideBuy, entry: 50, atr: 0.8, slMult: 1.0},
		{name: "short wide", side: common.SideSell, entry: 2500, atr: 12, slMult: 2, tpMult: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := ExitPrices(tt.entry, tt.side, tt.atr, Params{
				Mode:         config.RiskModeATR,
				SLMultiplier: tt.slMult,
				TPMultiplier: tt.tpMult,
			})
			if err != nil {
				t.Fatalf("ExitPrices: %v", err)
			}

			// Stop and take must sit on the correct sides of entry.
			if tt.side == common.SideBuy {
				if ex.Stop >= tt.entry || ex.Take <= tt.entry {
					t.Fatalf("long exits %+v around entry %v", ex, tt.entry)
				}
			} else {
				if ex.Stop <= tt.entry || ex.Take >= tt.entry {
					t.Fatalf("short exits %+v around entry %v", ex, tt.entry)
				}
			}

			// |take-entry| / |stop-entry| must equal tpMult/slMult.
			tpMult := tt.tpMult
			if tpMult == 0 {
				tpMult = 2 * tt.slMult
			}
			ratio := math.Abs(ex.Take-tt.entry) / math.Abs(ex.Stop-tt.entry)
			want := tpMult / tt.slMult
			if math.Abs(ratio-want) > 1e-9 {
				t.Fatalf("distance ratio=%v, expected %v", ratio, want)
			}
		})
	}
}

func TestExitPricesFixedROIMode(t *testing.T) {
	tests := []struct {
		name     string
		side     common.Side
		entry    float64
		roi      float64
		wantStop float64
		wantTake float64
	}{
		{name: "long 2pct", side: common.SideBuy, entry: 100, roi: 0.02, wantStop: 99.0, wantTake: 102.0},
		{name: "short 2pct", side: common.SideSell, entry: 100, roi: 0.02, wantStop: 101.0, wantTake: 98.0},
		{name: "long 5pct", side: common.SideBuy, entry: 200, roi: 0.05, wantStop: 195.0, wantTake: 210.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := ExitPrices(tt.entry, tt.side, 0, Params{
				Mode: config.RiskModeFixedROI,
				ROI:  tt.roi,
			})
			if err != nil {
				t.Fatalf("ExitPrices: %v", err)
			}
			if math.Abs(ex.Stop-tt.wantStop) > 1e-9 {
				t.Fatalf("stop=%v, expected %v", ex.Stop, tt.wantStop)
			}
			if math.Abs(ex.Take-tt.wantTake) > 1e-9 {
				t.Fatalf("take=%v, expected %v", ex.Take, tt.wantTake)
			}

			// The take implies exactly roi; the stop exactly roi/2.
			takeMove := math.Abs(ex.Take-tt.entry) / tt.entry
			stopMove := math.Abs(ex.Stop-tt.entry) / tt.entry
			if math.Abs(takeMove-tt.roi) > 1e-9 || math.Abs(stopMove-tt.roi/2) > 1e-9 {
				t.Fatalf("moves take=%v stop=%v, expected %v and %v", takeMove, stopMove, tt.roi, tt.roi/2)
			}
		})
	}
}

func TestExitPricesRejectsBadInput(t *testing.T) {
	if _, err := ExitPrices(0, common.SideBuy, 2, Params{Mode: config.RiskModeATR, SLMultiplier: 1}); err == nil {
		t.Fatal("expected error for zero entry")
	}
	if _, err := ExitPrices(100, common.SideBuy, 0, Params{Mode: config.RiskModeATR, SLMultiplier: 1}); err == nil {
		t.Fatal("expected error for zero atr in atr mode")
	}
	if _, err := ExitPrices(100, common.SideBuy, 0, Params{Mode: config.RiskModeFixedROI}); err == nil {
		t.Fatal("expected error for zero roi in fixed_roi mode")
	}
	if _, err := ExitPrices(100, common.SideBuy, 1, Params{Mode: "martingale"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		want     float64
	}{
		{1.23456, 2, 1.23},
		{1.23556, 2, 1.24},
		{39.999, 0, 40},
		{0.123456789, 6, 0.123457},
		{100, 2, 100},
	}
	for _, tt := range tests {
		if got := Round(tt.value, tt.decimals); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("Round(%v, %d)=%v, expected %v", tt.value, tt.decimals, got, tt.want)
		}
	}
}
