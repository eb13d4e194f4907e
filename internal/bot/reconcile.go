package bot

import (
	"context"
	"fmt"
	"sort"

	"trading-terminal/internal/events"
	"trading-terminal/pkg/db"
)

// reconcile syncs the trade ledger with the exchange's trade history
// after a position-closing event. Trades newer than the highest id
// already recorded for the symbol are appended in ascending id order;
// zero-PnL fills (partial entries, fee-only rows) are skipped and
// duplicates are absorbed by the ledger's idempotent insert. A single
// history notification is emitted only when something new was stored.
func (e *Engine) reconcile(ctx context.Context, symbol string) error {
	maxID, err := e.ledger.MaxTradeID(ctx, symbol)
	if err != nil {
		return fmt.Errorf("ledger max trade id %s: %w", symbol, err)
	}

	cctx, cancel := context.WithTimeout(ctx, e.gatewayTimeout)
	trades, err := e.gateway.RecentTrades(cctx, symbol, tradeHistoryLimit)
	cancel()
	if err != nil {
		return fmt.Errorf("fetch trade history %s: %w", symbol, err)
	}

	sort.Slice(trades, func(i, j int) bool { return trades[i].TradeID < trades[j].TradeID })

	inserted := 0
	for _, t := range trades {
		if t.TradeID <= maxID || t.RealizedPnL == 0 {
			continue
		}
		ok, err := e.ledger.InsertTrade(ctx, db.TradeRecord{
			Symbol:    t.Symbol,
			TradeID:   t.TradeID,
			Side:      string(t.Side),
			PnL:       t.RealizedPnL,
			Timestamp: t.Time,
		})
		if err != nil {
			return fmt.Errorf("append trade %d: %w", t.TradeID, err)
		}
		if ok {
			inserted++
		}
	}

	if inserted > 0 {
		e.logf("recorded %d realized trades for %s", inserted, symbol)
		e.bus.Publish(events.EventHistoryUpdate, nil)
	}
	return nil
}
