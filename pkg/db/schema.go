package db

const schema = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS trades (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    symbol TEXT NOT NULL,
    trade_id INTEGER UNIQUE NOT NULL,
    side TEXT NOT NULL,
    pnl REAL NOT NULL,
    timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
`

// ApplyMigrations creates the ledger schema if it does not exist.
func ApplyMigrations(d *Database) error {
	_, err := d.DB.Exec(schema)
	return err
}
