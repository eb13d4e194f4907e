package market

// Kline is a single candlestick, oldest-first when returned in sequence.
type Kline struct {
	OpenTime  int64   // ms
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime int64 // ms
}
