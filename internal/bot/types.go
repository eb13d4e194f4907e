package bot

import (
	"context"
	"time"

	"trading-terminal/pkg/config"
	"trading-terminal/pkg/db"
	"trading-terminal/pkg/exchanges/common"
	market "trading-terminal/pkg/market/binance"
)

// State is the engine lifecycle state.
type State string

const (
	StateIdle       State = "IDLE"
	StateScanning   State = "SCANNING"
	StateInPosition State = "IN_POSITION"
	StateStopping   State = "STOPPING"
)

// Position is the engine's local belief about the open position.
// At most one position is open per engine at any time.
type Position struct {
	Symbol     string      `json:"symbol"`
	Side       common.Side `json:"side"`
	Qty        float64     `json:"qty"`
	EntryPrice float64     `json:"entry_price"`
	StopPrice  float64     `json:"stop_price"`
	TakePrice  float64     `json:"take_price"`
	OrderID    int64       `json:"order_id"`
	OpenedAt   time.Time   `json:"opened_at"`
}

// Status is a point-in-time snapshot for the control surface.
type Status struct {
	State       State               `json:"state"`
	Symbol      string              `json:"symbol"`
	Leverage    int                 `json:"leverage"`
	QuantityUSD float64             `json:"quantity_usd"`
	RiskMode    config.RiskMode     `json:"risk_mode"`
	FixedROI    float64             `json:"fixed_roi"`
	Strategy    config.StrategyName `json:"strategy"`
	Position    *Position           `json:"position"`
}

// OrderGateway is the exchange surface the engine trades through.
type OrderGateway interface {
	Balance(ctx context.Context) (float64, error)
	MarkPrice(ctx context.Context, symbol string) (float64, error)
	SymbolPrecision(ctx context.Context, symbol string) (common.SymbolPrecision, error)
	PlaceMarketOrder(ctx context.Context, symbol string, side common.Side, qty float64) (common.OrderResult, error)
	PlaceConditionalClose(ctx context.Context, symbol string, side common.Side, typ common.OrderType, stopPrice float64) (int64, error)
	CancelAllOpenOrders(ctx context.Context, symbol string) error
	OpenPosition(ctx context.Context, symbol string) (*common.ExchangePosition, error)
	RecentTrades(ctx context.Context, symbol string, limit int) ([]common.AccountTrade, error)
	SetLeverage(ctx context.Context, symbol string, leverage int) error
}

// MarketData supplies ordered candle sequences, oldest-first.
type MarketData interface {
	Candles(ctx context.Context, symbol, interval string, limit int) ([]market.Kline, error)
}

// Ledger is the append-only store of realized trades.
type Ledger interface {
	InsertTrade(ctx context.Context, t db.TradeRecord) (bool, error)
	MaxTradeID(ctx context.Context, symbol string) (int64, error)
}

// SymbolPicker selects a symbol for auto mode.
type SymbolPicker interface {
	TopGainer(ctx context.Context) (string, error)
}
