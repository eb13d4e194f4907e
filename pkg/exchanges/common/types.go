package common

// Side denotes order side.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType denotes the futures order types used by the terminal.
type OrderType string

const (
	OrderTypeMarket     OrderType = "MARKET"
	OrderTypeStopMarket OrderType = "STOP_MARKET"
	OrderTypeTakeProfit OrderType = "TAKE_PROFIT_MARKET"
)

// OrderStatus normalizes exchange status into a small set.
type OrderStatus string

const (
	StatusNew      OrderStatus = "NEW"
	StatusPartial  OrderStatus = "PARTIAL"
	StatusFilled   OrderStatus = "FILLED"
	StatusCanceled OrderStatus = "CANCELED"
	StatusRejected OrderStatus = "REJECTED"
	StatusExpired  OrderStatus = "EXPIRED"
	StatusUnknown  OrderStatus = "UNKNOWN"
)

// OrderRequest captures an order intent to be sent to the exchange.
type OrderRequest struct {
	Symbol        string
	Side          Side
	Type          OrderType
	Qty           float64
	StopPrice     float64 // trigger price for STOP_MARKET / TAKE_PROFIT_MARKET
	ClientID      string  // optional client order id
	ReduceOnly    bool
	ClosePosition bool // futures: close entire position when triggered
}

// OrderResult returns the exchange ack for a submitted order.
type OrderResult struct {
	OrderID   int64
	ClientID  string
	Status    OrderStatus
	AvgPrice  float64 // average fill price for market orders
	FilledQty float64
}

// ExchangePosition is the venue's authoritative view of an open position.
type ExchangePosition struct {
	Symbol     string
	Side       Side // BUY = long exposure, SELL = short exposure
	Qty        float64
	EntryPrice float64
	Unrealized float64
	Leverage   int
}

// AccountTrade is one fill from the account trade history.
type AccountTrade struct {
	TradeID     int64
	Symbol      string
	Side        Side
	Price       float64
	Qty         float64
	RealizedPnL float64
	Time        int64 // ms
}

// SymbolPrecision carries the venue's rounding rules for a symbol.
type SymbolPrecision struct {
	QuantityDecimals int
	PriceDecimals    int
}

// Ticker24h is a 24-hour rolling statistics entry.
type Ticker24h struct {
	Symbol             string
	PriceChangePercent float64
	QuoteVolume        float64
	LastPrice          float64
}
