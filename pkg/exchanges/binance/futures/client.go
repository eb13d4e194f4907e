package futures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"trading-terminal/pkg/cache"
	"trading-terminal/pkg/exchanges/common"
)

// markPriceTTL is the freshness window for cached mark prices. Within
// it, a tick and a manual command share one /premiumIndex call.
const markPriceTTL = 2 * time.Second

// Config holds Binance USDT-M futures credentials.
type Config struct {
	APIKey     string
	APISecret  string
	Testnet    bool
	RecvWindow int64 // ms
}

// Client is the order gateway for Binance USDT-M futures.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	timeSync   *common.TimeSync
	weight     *common.WeightTracker
	prices     *cache.ShardedPriceCache

	precMu    sync.RWMutex
	precision map[string]common.SymbolPrecision
}

// NewClient creates a USDT-M futures client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("binance futures: API key/secret required")
	}
	base := "https://fapi.binance.com"
	if cfg.Testnet {
		base = "https://testnet.binancefuture.com"
	}
	if cfg.RecvWindow == 0 {
		cfg.RecvWindow = 5000
	}
	return &Client{
		cfg:        cfg,
		baseURL:    base,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		timeSync:   &common.TimeSync{},
		weight:     common.NewWeightTracker(2400, time.Minute), // futures weight budget
		prices:     cache.NewShardedPriceCache(markPriceTTL),
		precision:  make(map[string]common.SymbolPrecision),
	}, nil
}

// SyncTime refreshes the local/server clock offset used for signing.
func (c *Client) SyncTime(ctx context.Context) error {
	before := time.Now().UnixMilli()
	server, err := c.serverTime(ctx)
	if err != nil {
		return err
	}
	c.timeSync.Update(server, before, time.Now().UnixMilli())
	return nil
}

// Balance returns the available USDT balance.
func (c *Client) Balance(ctx context.Context) (float64, error) {
	body, err := c.doSigned(ctx, http.MethodGet, "/fapi/v2/balance", url.Values{})
	if err != nil {
		return 0, err
	}
	var balances []struct {
		Asset            string `json:"asset"`
		AvailableBalance string `json:"availableBalance"`
	}
	if err := json.Unmarshal(body, &balances); err != nil {
		return 0, fmt.Errorf("decode balance: %w", err)
	}
	for _, b := range balances {
		if b.Asset == "USDT" {
			return parseFloat(b.AvailableBalance), nil
		}
	}
	return 0, nil
}

// MarkPrice returns the current mark price for symbol. Recent answers
// are served from a short-lived cache.
func (c *Client) MarkPrice(ctx context.Context, symbol string) (float64, error) {
	if price, ok := c.prices.Get(symbol); ok {
		return price, nil
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := c.doPublic(ctx, "/fapi/v1/premiumIndex", params)
	if err != nil {
		return 0, err
	}
	var resp struct {
		MarkPrice string `json:"markPrice"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode mark price: %w", err)
	}
	price := parseFloat(resp.MarkPrice)
	c.prices.Set(symbol, price)
	return price, nil
}

// SymbolPrecision returns the quantity and price rounding rules for symbol.
// Results are cached for the process lifetime; precision metadata does not
// change while a symbol trades.
func (c *Client) SymbolPrecision(ctx context.Context, symbol string) (common.SymbolPrecision, error) {
	c.precMu.RLock()
	p, ok := c.precision[symbol]
	c.precMu.RUnlock()
	if ok {
		return p, nil
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := c.doPublic(ctx, "/fapi/v1/exchangeInfo", params)
	if err != nil {
		return common.SymbolPrecision{}, err
	}
	var resp struct {
		Symbols []struct {
			Symbol            string `json:"symbol"`
			QuantityPrecision int    `json:"quantityPrecision"`
			PricePrecision    int    `json:"pricePrecision"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return common.SymbolPrecision{}, fmt.Errorf("decode exchange info: %w", err)
	}
	for _, s := range resp.Symbols {
		if s.Symbol == symbol {
			p = common.SymbolPrecision{QuantityDecimals: s.QuantityPrecision, PriceDecimals: s.PricePrecision}
			c.precMu.Lock()
			c.precision[symbol] = p
			c.precMu.Unlock()
			return p, nil
		}
	}
	return common.SymbolPrecision{}, fmt.Errorf("symbol %s not found in exchange info", symbol)
}

// PlaceMarketOrder submits a market order and returns the fill ack.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side common.Side, qty float64) (common.OrderResult, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", string(common.OrderTypeMarket))
	params.Set("quantity", formatFloat(qty))
	params.Set("newOrderRespType", "RESULT") // ask for the fill, not just the ack

	body, err := c.doSigned(ctx, http.MethodPost, "/fapi/v1/order", params)
	if err != nil {
		return common.OrderResult{}, err
	}
	var resp orderResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return common.OrderResult{}, fmt.Errorf("decode order: %w", err)
	}
	return resp.toResult(), nil
}

// PlaceConditionalClose submits a reduce-only trigger order that closes the
// whole position when stopPrice is reached. typ selects stop-loss vs
// take-profit semantics.
func (c *Client) PlaceConditionalClose(ctx context.Context, symbol string, side common.Side, typ common.OrderType, stopPrice float64) (int64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", string(typ))
	params.Set("stopPrice", formatFloat(stopPrice))
	params.Set("closePosition", "true")
	params.Set("workingType", "MARK_PRICE")

	body, err := c.doSigned(ctx, http.MethodPost, "/fapi/v1/order", params)
	if err != nil {
		return 0, err
	}
	var resp orderResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode conditional order: %w", err)
	}
	return resp.OrderID, nil
}

// CancelAllOpenOrders cancels every open order for symbol.
func (c *Client) CancelAllOpenOrders(ctx context.Context, symbol string) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	_, err := c.doSigned(ctx, http.MethodDelete, "/fapi/v1/allOpenOrders", params)
	return err
}

// OpenPosition returns the venue's view of the open position for symbol,
// or nil when the symbol is flat.
func (c *Client) OpenPosition(ctx context.Context, symbol string) (*common.ExchangePosition, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := c.doSigned(ctx, http.MethodGet, "/fapi/v2/positionRisk", params)
	if err != nil {
		return nil, err
	}
	var risks []struct {
		Symbol           string `json:"symbol"`
		PositionAmt      string `json:"positionAmt"`
		EntryPrice       string `json:"entryPrice"`
		UnRealizedProfit string `json:"unRealizedProfit"`
		Leverage         string `json:"leverage"`
	}
	if err := json.Unmarshal(body, &risks); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	for _, r := range risks {
		amt := parseFloat(r.PositionAmt)
		if r.Symbol != symbol || amt == 0 {
			continue
		}
		side := common.SideBuy
		if amt < 0 {
			side = common.SideSell
			amt = -amt
		}
		lev, _ := strconv.Atoi(r.Leverage)
		return &common.ExchangePosition{
			Symbol:     r.Symbol,
			Side:       side,
			Qty:        amt,
			EntryPrice: parseFloat(r.EntryPrice),
			Unrealized: parseFloat(r.UnRealizedProfit),
			Leverage:   lev,
		}, nil
	}
	return nil, nil
}

// RecentTrades returns the most recent account trades for symbol,
// ordered by ascending trade id.
func (c *Client) RecentTrades(ctx context.Context, symbol string, limit int) ([]common.AccountTrade, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.doSigned(ctx, http.MethodGet, "/fapi/v1/userTrades", params)
	if err != nil {
		return nil, err
	}
	var raw []struct {
		ID          int64  `json:"id"`
		Symbol      string `json:"symbol"`
		Side        string `json:"side"`
		Price       string `json:"price"`
		Qty         string `json:"qty"`
		RealizedPnL string `json:"realizedPnl"`
		Time        int64  `json:"time"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode user trades: %w", err)
	}
	trades := make([]common.AccountTrade, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, common.AccountTrade{
			TradeID:     t.ID,
			Symbol:      t.Symbol,
			Side:        common.Side(strings.ToUpper(t.Side)),
			Price:       parseFloat(t.Price),
			Qty:         parseFloat(t.Qty),
			RealizedPnL: parseFloat(t.RealizedPnL),
			Time:        t.Time,
		})
	}
	sort.Slice(trades, func(i, j int) bool { return trades[i].TradeID < trades[j].TradeID })
	return trades, nil
}

// SetLeverage sets the leverage multiplier for symbol.
func (c *Client) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("leverage", strconv.Itoa(leverage))
	_, err := c.doSigned(ctx, http.MethodPost, "/fapi/v1/leverage", params)
	return err
}

// Tickers24h returns 24-hour rolling statistics for all futures symbols.
func (c *Client) Tickers24h(ctx context.Context) ([]common.Ticker24h, error) {
	body, err := c.doPublic(ctx, "/fapi/v1/ticker/24hr", url.Values{})
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Symbol             string `json:"symbol"`
		PriceChangePercent string `json:"priceChangePercent"`
		QuoteVolume        string `json:"quoteVolume"`
		LastPrice          string `json:"lastPrice"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode 24h tickers: %w", err)
	}
	out := make([]common.Ticker24h, 0, len(raw))
	for _, t := range raw {
		out = append(out, common.Ticker24h{
			Symbol:             t.Symbol,
			PriceChangePercent: parseFloat(t.PriceChangePercent),
			QuoteVolume:        parseFloat(t.QuoteVolume),
			LastPrice:          parseFloat(t.LastPrice),
		})
	}
	return out, nil
}

// WeightUsage reports the fraction of the request-weight budget consumed.
func (c *Client) WeightUsage() float64 {
	return c.weight.Usage()
}

func (c *Client) serverTime(ctx context.Context) (int64, error) {
	body, err := c.doPublic(ctx, "/fapi/v1/time", url.Values{})
	if err != nil {
		return 0, err
	}
	var resp struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}
	return resp.ServerTime, nil
}

func (c *Client) doPublic(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, endpoint)
}

// doSigned handles timestamping, signing and sending private requests.
func (c *Client) doSigned(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	params.Set("timestamp", strconv.FormatInt(c.timeSync.NowMillis(), 10))
	params.Set("recvWindow", strconv.FormatInt(c.cfg.RecvWindow, 10))
	params.Set("signature", sign(params.Encode(), c.cfg.APISecret))

	var (
		req *http.Request
		err error
	)
	encoded := params.Encode()
	switch method {
	case http.MethodGet, http.MethodDelete:
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+endpoint+"?"+encoded, nil)
	default:
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, strings.NewReader(encoded))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}
	return c.do(req, endpoint)
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	req.Header.Set("X-MBX-APIKEY", c.cfg.APIKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance futures %s: %w", endpoint, err)
	}
	defer res.Body.Close()

	c.weight.Observe(res.Header.Get("X-MBX-USED-WEIGHT-1M"))

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("binance futures %s %s status %d: %s", req.Method, endpoint, res.StatusCode, string(body))
	}
	return body, nil
}

type orderResp struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Status        string `json:"status"`
	AvgPrice      string `json:"avgPrice"`
	ExecutedQty   string `json:"executedQty"`
}

func (r orderResp) toResult() common.OrderResult {
	return common.OrderResult{
		OrderID:   r.OrderID,
		ClientID:  r.ClientOrderID,
		Status:    mapStatus(r.Status),
		AvgPrice:  parseFloat(r.AvgPrice),
		FilledQty: parseFloat(r.ExecutedQty),
	}
}
