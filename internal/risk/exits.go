// Package risk derives protective exit prices for a freshly filled entry.
// It is deterministic and does no I/O, so it can be tested in isolation.
package risk

import (
	"fmt"
	"math"

	"trading-terminal/pkg/config"
	"trading-terminal/pkg/exchanges/common"
)

// Params selects and sizes the exit calculation.
type Params struct {
	Mode config.RiskMode

	// atr mode
	SLMultiplier float64
	TPMultiplier float64 // defaults to 2x SLMultiplier when zero

	// fixed_roi mode: target fractional price move, e.g. 0.02
	ROI float64
}

// Exits holds the protective prices for a position.
type Exits struct {
	Stop float64
	Take float64
}

// ExitPrices computes stop and take prices for an entry.
//
// atr mode places the stop SLMultiplier ATRs away and the take
// TPMultiplier ATRs away. fixed_roi mode places the take exactly ROI
// away and the stop at half that distance. Prices are unrounded; round
// to the venue's price precision before submission.
func ExitPrices(entry float64, side common.Side, atr float64, p Params) (Exits, error) {
	if entry <= 0 {
		return Exits{}, fmt.Errorf("entry price %v must be positive", entry)
	}

	var slDist, tpDist float64
	switch p.Mode {
	case config.RiskModeATR:
		if atr <= 0 {
			return Exits{}, fmt.Errorf("atr %v must be positive in atr mode", atr)
		}
		tpMult := p.TPMultiplier
		if tpMult == 0 {
			tpMult = 2 * p.SLMultiplier
		}
		slDist = atr * p.SLMultiplier
		tpDist = atr * tpMult
	case config.RiskModeFixedROI:
		if p.ROI <= 0 {
			return Exits{}, fmt.Errorf("roi %v must be positive in fixed_roi mode", p.ROI)
		}
		tpDist = entry * p.ROI
		slDist = tpDist / 2
	default:
		return Exits{}, fmt.Errorf("unknown risk mode %q", p.Mode)
	}

	if side == common.SideBuy {
		return Exits{Stop: entry - slDist, Take: entry + tpDist}, nil
	}
	return Exits{Stop: entry + slDist, Take: entry - tpDist}, nil
}

// Round rounds value to the given number of decimal places, matching
// exchange precision metadata.
func Round(value float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(value*scale) / scale
}
