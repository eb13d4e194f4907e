//go:build ignore

package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "modernc.org/sqlite"
)

// Checks that an existing ledger database has the expected schema.
// Usage: go run scripts/verify_schema.go [path/to/trades.db]
func main() {
	dbPath := "./data/trades.db"
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}
	fmt.Printf("Verifying database at: %s\n", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	// 1. trades table exists
	fmt.Println("\n1. Verifying trades table...")
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name='trades'")
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	if rows.Next() {
		fmt.Println("✓ trades table exists")
	} else {
		log.Fatal("✗ trades table missing")
	}
	rows.Close()

	// 2. unique index on trade_id keeps reconciliation idempotent
	fmt.Println("\n2. Verifying trade_id uniqueness...")
	var count int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM (
			SELECT trade_id FROM trades GROUP BY trade_id HAVING COUNT(*) > 1
		)`).Scan(&count)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	if count == 0 {
		fmt.Println("✓ no duplicate trade ids")
	} else {
		log.Fatalf("✗ %d duplicated trade ids", count)
	}

	// 3. row count and PnL summary
	fmt.Println("\n3. Ledger summary...")
	var trades int
	var pnl float64
	err = db.QueryRow("SELECT COUNT(*), COALESCE(SUM(pnl), 0) FROM trades").Scan(&trades, &pnl)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	fmt.Printf("✓ %d trades, total pnl %.4f\n", trades, pnl)
}
