package db

import (
	"context"
	"database/sql"
)

// TradeRecord is one realized-PnL event reported by the exchange.
// TradeID is the exchange's trade id and is unique across the ledger.
type TradeRecord struct {
	Symbol    string  `json:"symbol"`
	TradeID   int64   `json:"trade_id"`
	Side      string  `json:"side"`
	PnL       float64 `json:"pnl"`
	Timestamp int64   `json:"timestamp"` // ms since epoch
}

// Stats aggregates ledger performance.
type Stats struct {
	TotalPnL    float64 `json:"total_pnl"`
	WinRate     float64 `json:"win_rate"` // percentage
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	TotalTrades int     `json:"total_trades"`
}

// InsertTrade appends a trade record. The insert is idempotent on the
// exchange trade id; it reports whether a new row was actually stored.
func (d *Database) InsertTrade(ctx context.Context, t TradeRecord) (bool, error) {
	res, err := d.DB.ExecContext(ctx, `
		INSERT INTO trades (symbol, trade_id, side, pnl, timestamp)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(trade_id) DO NOTHING
	`, t.Symbol, t.TradeID, t.Side, t.PnL, t.Timestamp)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MaxTradeID returns the highest exchange trade id recorded for symbol,
// or 0 when the ledger has no rows for it.
func (d *Database) MaxTradeID(ctx context.Context, symbol string) (int64, error) {
	var id sql.NullInt64
	err := d.DB.QueryRowContext(ctx,
		`SELECT MAX(trade_id) FROM trades WHERE symbol = ?`, symbol).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id.Int64, nil
}

// ListTrades returns the most recent records, newest first.
func (d *Database) ListTrades(ctx context.Context, limit int) ([]TradeRecord, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT symbol, trade_id, side, pnl, timestamp
		FROM trades ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.Symbol, &t.TradeID, &t.Side, &t.PnL, &t.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AggregateStats computes overall performance from the ledger.
func (d *Database) AggregateStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := d.DB.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(pnl), 0),
			COALESCE(SUM(CASE WHEN pnl > 0 THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM trades
	`).Scan(&s.TotalPnL, &s.Wins, &s.TotalTrades)
	if err != nil {
		return Stats{}, err
	}
	s.Losses = s.TotalTrades - s.Wins
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalTrades) * 100
	}
	return s, nil
}
