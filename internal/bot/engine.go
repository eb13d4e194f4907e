// Package bot implements the position lifecycle controller: a single
// execution loop per engine that turns strategy signals into orders and
// keeps the local position belief aligned with the exchange.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"trading-terminal/internal/events"
	"trading-terminal/internal/risk"
	"trading-terminal/internal/strategy"
	"trading-terminal/pkg/config"
	"trading-terminal/pkg/exchanges/common"
	market "trading-terminal/pkg/market/binance"
)

const (
	// minNotionalUSD is the exchange's smallest acceptable order value.
	minNotionalUSD = 5.0
	// tradeHistoryLimit bounds how far back reconciliation looks.
	tradeHistoryLimit = 50
	// candlePadding keeps a few candles beyond the strategy lookback.
	candlePadding = 5
)

// Deps bundles the external collaborators of an engine.
type Deps struct {
	Gateway OrderGateway
	Market  MarketData
	Ledger  Ledger
	Bus     *events.Bus
	Picker  SymbolPicker
}

// Engine owns the tick loop, the position state machine and the shared
// runtime configuration. Control-surface commands interleave with the
// loop through two locks: mu guards configuration and lifecycle state,
// orderMu serializes every order submission so a manual command and a
// running tick can never open two positions at once.
type Engine struct {
	gateway OrderGateway
	md      MarketData
	ledger  Ledger
	bus     *events.Bus
	picker  SymbolPicker

	providers map[config.StrategyName]strategy.Provider

	tickInterval    time.Duration
	backoffInterval time.Duration
	gatewayTimeout  time.Duration

	mu            sync.Mutex
	leverage      int
	quantityUSD   float64
	symbol        string
	riskMode      config.RiskMode
	fixedROI      float64
	strategyName  config.StrategyName
	momentum      config.MomentumParams
	scalper       config.ScalperParams
	state         State
	position      *Position
	stopRequested bool

	orderMu sync.Mutex

	wake chan struct{}
}

// New builds an engine from validated configuration.
func New(cfg *config.Config, d Deps) (*Engine, error) {
	if d.Gateway == nil || d.Market == nil || d.Ledger == nil || d.Bus == nil {
		return nil, fmt.Errorf("engine: gateway, market, ledger and bus are required")
	}

	providers := make(map[config.StrategyName]strategy.Provider, 2)
	for _, name := range []config.StrategyName{config.StrategyMomentum, config.StrategyScalper} {
		p, err := strategy.ForName(name, cfg)
		if err != nil {
			return nil, err
		}
		providers[name] = p
	}

	return &Engine{
		gateway:         d.Gateway,
		md:              d.Market,
		ledger:          d.Ledger,
		bus:             d.Bus,
		picker:          d.Picker,
		providers:       providers,
		tickInterval:    cfg.TickInterval,
		backoffInterval: cfg.BackoffInterval,
		gatewayTimeout:  cfg.GatewayTimeout,
		leverage:        cfg.Leverage,
		quantityUSD:     cfg.QuantityUSD,
		symbol:          cfg.Symbol,
		riskMode:        cfg.RiskMode,
		fixedROI:        cfg.FixedROI,
		strategyName:    cfg.Strategy,
		momentum:        cfg.Momentum,
		scalper:         cfg.Scalper,
		state:           StateIdle,
		wake:            make(chan struct{}, 1),
	}, nil
}

// settings is an atomic snapshot of the mutable configuration, taken
// once per tick so a mid-tick config change never splits a decision.
type settings struct {
	symbol      string
	quantityUSD float64
	riskMode    config.RiskMode
	fixedROI    float64
	provider    strategy.Provider
	slMult      float64
	tpMult      float64
	atrLength   int
}

func (e *Engine) snapshot() settings {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := settings{
		symbol:      e.symbol,
		quantityUSD: e.quantityUSD,
		riskMode:    e.riskMode,
		fixedROI:    e.fixedROI,
		provider:    e.providers[e.strategyName],
	}
	switch e.strategyName {
	case config.StrategyScalper:
		s.slMult = e.scalper.ATRMultSL
		s.tpMult = e.scalper.ATRMultTP
		s.atrLength = e.scalper.ATRLength
	default:
		s.slMult = e.momentum.ATRMultSL
		s.tpMult = e.momentum.ATRMultTP
		s.atrLength = e.momentum.ATRLength
	}
	return s
}

func (s settings) riskParams() risk.Params {
	return risk.Params{
		Mode:         s.riskMode,
		SLMultiplier: s.slMult,
		TPMultiplier: s.tpMult,
		ROI:          s.fixedROI,
	}
}

// Start launches the execution loop. It is idempotent: calling it while
// the loop is already running reports false and changes nothing. Calling
// it while the loop is winding down cancels the pending stop.
func (e *Engine) Start(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateIdle:
		e.stopRequested = false
		e.state = StateScanning
		if e.position != nil {
			e.state = StateInPosition
		}
		go e.runLoop(ctx)
		return true
	case StateStopping:
		e.stopRequested = false
		e.state = StateScanning
		if e.position != nil {
			e.state = StateInPosition
		}
		return true
	default:
		return false
	}
}

// Stop requests the loop to exit at the next tick boundary. An order
// submission already in flight is never interrupted.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle {
		return false
	}
	e.stopRequested = true
	e.state = StateStopping

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return true
}

// Status returns a snapshot of the engine for the control surface.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	var pos *Position
	if e.position != nil {
		copied := *e.position
		pos = &copied
	}
	return Status{
		State:       e.state,
		Symbol:      e.symbol,
		Leverage:    e.leverage,
		QuantityUSD: e.quantityUSD,
		RiskMode:    e.riskMode,
		FixedROI:    e.fixedROI,
		Strategy:    e.strategyName,
		Position:    pos,
	}
}

func (e *Engine) runLoop(ctx context.Context) {
	e.logf("strategy loop started")
	for {
		if e.exitIfStopped() {
			e.logf("strategy loop stopped")
			return
		}

		delay := e.tickInterval
		if err := e.tick(ctx); err != nil {
			e.logf("tick abandoned: %v", err)
			delay = e.backoffInterval
		}

		select {
		case <-ctx.Done():
			e.mu.Lock()
			e.state = StateIdle
			e.stopRequested = false
			e.mu.Unlock()
			e.logf("strategy loop stopped: context canceled")
			return
		case <-time.After(delay):
		case <-e.wake:
		}
	}
}

// exitIfStopped observes a pending stop request at the tick boundary.
func (e *Engine) exitIfStopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopRequested {
		e.state = StateIdle
		e.stopRequested = false
		return true
	}
	return false
}

// tick runs one iteration of the loop: fetch candles, evaluate the
// signal, then either supervise the open position or attempt an entry.
// Any returned error means the tick was abandoned; the loop backs off.
func (e *Engine) tick(ctx context.Context) error {
	s := e.snapshot()

	window, err := e.closedCandles(ctx, s)
	if err != nil {
		return err
	}
	if window == nil {
		return nil // not enough history yet
	}
	sig := s.provider.Evaluate(window)

	e.mu.Lock()
	state := e.state
	pos := e.position
	e.mu.Unlock()

	if state == StateInPosition && pos != nil {
		return e.supervisePosition(ctx, pos, sig)
	}
	if sig.Action == strategy.ActionWait {
		return nil
	}
	side := common.SideBuy
	if sig.Action == strategy.ActionShort {
		side = common.SideSell
	}
	return e.enterPosition(ctx, s, side, sig.ATR)
}

// closedCandles fetches the candle window and drops the still-forming
// last candle. Returns nil (no error) when there is too little history.
func (e *Engine) closedCandles(ctx context.Context, s settings) ([]market.Kline, error) {
	cctx, cancel := context.WithTimeout(ctx, e.gatewayTimeout)
	defer cancel()

	limit := s.provider.Lookback() + candlePadding
	candles, err := e.md.Candles(cctx, s.symbol, s.provider.Timeframe(), limit)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", s.symbol, err)
	}
	if len(candles) < 3 {
		return nil, nil
	}
	return candles[:len(candles)-1], nil
}

// supervisePosition re-checks the exchange while a position is open.
// A flat exchange means the position was closed externally (stop or
// take fill, liquidation, manual action on the venue).
func (e *Engine) supervisePosition(ctx context.Context, pos *Position, sig strategy.Signal) error {
	cctx, cancel := context.WithTimeout(ctx, e.gatewayTimeout)
	exch, err := e.gateway.OpenPosition(cctx, pos.Symbol)
	cancel()
	if err != nil {
		return fmt.Errorf("query position %s: %w", pos.Symbol, err)
	}

	if exch == nil {
		e.logf("%s position closed on exchange", pos.Symbol)
		return e.finishClose(ctx, pos.Symbol)
	}

	if opposes(sig.Action, pos.Side) {
		e.logf("opposing %s signal against open %s position, closing", sig.Action, pos.Side)
		return e.closeOpenPosition(ctx, pos.Symbol)
	}

	// Keep observers current with the venue's view.
	snapshot := *pos
	snapshot.Qty = exch.Qty
	e.bus.Publish(events.EventPositionUpdate, &snapshot)
	return nil
}

// opposes reports whether the signal contradicts the held side.
func opposes(a strategy.Action, side common.Side) bool {
	return (a == strategy.ActionLong && side == common.SideSell) ||
		(a == strategy.ActionShort && side == common.SideBuy)
}

// computeQuantity turns the configured notional into a base quantity
// rounded to the venue's precision. A nil result with nil error means
// the entry was rejected by a validation gate (logged, no order).
func (e *Engine) computeQuantity(ctx context.Context, s settings) (*float64, float64, common.SymbolPrecision, error) {
	cctx, cancel := context.WithTimeout(ctx, e.gatewayTimeout)
	defer cancel()

	var prec common.SymbolPrecision

	balance, err := e.gateway.Balance(cctx)
	if err != nil {
		return nil, 0, prec, fmt.Errorf("fetch balance: %w", err)
	}
	if balance <= 0 {
		e.logf("entry rejected: no available balance")
		return nil, 0, prec, nil
	}
	if s.quantityUSD < minNotionalUSD {
		e.logf("entry rejected: notional %.2f below minimum %.2f", s.quantityUSD, minNotionalUSD)
		return nil, 0, prec, nil
	}

	price, err := e.gateway.MarkPrice(cctx, s.symbol)
	if err != nil {
		return nil, 0, prec, fmt.Errorf("fetch mark price %s: %w", s.symbol, err)
	}
	if price <= 0 {
		return nil, 0, prec, fmt.Errorf("mark price %v for %s", price, s.symbol)
	}

	prec, err = e.gateway.SymbolPrecision(cctx, s.symbol)
	if err != nil {
		return nil, 0, prec, fmt.Errorf("fetch precision %s: %w", s.symbol, err)
	}

	qty := risk.Round(s.quantityUSD/price, prec.QuantityDecimals)
	if qty <= 0 {
		e.logf("entry rejected: quantity rounds to zero at price %.8f", price)
		return nil, 0, prec, nil
	}
	return &qty, price, prec, nil
}

// enterPosition submits a market entry and its two protective exits.
// The whole submission happens under orderMu so a concurrent manual
// command cannot produce a second position.
func (e *Engine) enterPosition(ctx context.Context, s settings, side common.Side, atr float64) error {
	if s.riskMode == config.RiskModeATR && atr <= 0 {
		e.logf("entry rejected: no volatility measure for atr risk mode")
		return nil
	}

	qty, markPrice, prec, err := e.computeQuantity(ctx, s)
	if err != nil || qty == nil {
		return err
	}

	e.orderMu.Lock()
	defer e.orderMu.Unlock()

	// A concurrent submission may have opened a position while this
	// one was computing quantity.
	e.mu.Lock()
	if e.position != nil {
		e.mu.Unlock()
		e.logf("entry skipped: position already open")
		return nil
	}
	e.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, e.gatewayTimeout)
	res, err := e.gateway.PlaceMarketOrder(cctx, s.symbol, side, *qty)
	cancel()
	if err != nil {
		return fmt.Errorf("entry order %s %s: %w", side, s.symbol, err)
	}

	entry := res.AvgPrice
	if entry == 0 {
		entry = markPrice
	}

	exits, err := risk.ExitPrices(entry, side, atr, s.riskParams())
	if err != nil {
		return fmt.Errorf("exit prices for %s: %w", s.symbol, err)
	}
	stop := risk.Round(exits.Stop, prec.PriceDecimals)
	take := risk.Round(exits.Take, prec.PriceDecimals)

	closeSide := side.Opposite()
	cctx, cancel = context.WithTimeout(ctx, e.gatewayTimeout)
	if _, perr := e.gateway.PlaceConditionalClose(cctx, s.symbol, closeSide, common.OrderTypeStopMarket, stop); perr != nil {
		e.logf("stop order failed for %s: %v", s.symbol, perr)
	}
	cancel()
	cctx, cancel = context.WithTimeout(ctx, e.gatewayTimeout)
	if _, perr := e.gateway.PlaceConditionalClose(cctx, s.symbol, closeSide, common.OrderTypeTakeProfit, take); perr != nil {
		e.logf("take order failed for %s: %v", s.symbol, perr)
	}
	cancel()

	pos := &Position{
		Symbol:     s.symbol,
		Side:       side,
		Qty:        res.FilledQty,
		EntryPrice: entry,
		StopPrice:  stop,
		TakePrice:  take,
		OrderID:    res.OrderID,
		OpenedAt:   time.Now().UTC(),
	}
	if pos.Qty == 0 {
		pos.Qty = *qty
	}

	e.mu.Lock()
	e.position = pos
	if e.state == StateScanning {
		e.state = StateInPosition
	}
	e.mu.Unlock()

	e.logf("opened %s %s qty=%v entry=%v stop=%v take=%v", side, s.symbol, pos.Qty, entry, stop, take)
	e.bus.Publish(events.EventPositionUpdate, pos)
	return nil
}

// closeOpenPosition cancels the protective children and market-closes
// whatever exposure the exchange still reports, then reconciles.
func (e *Engine) closeOpenPosition(ctx context.Context, symbol string) error {
	e.orderMu.Lock()
	defer e.orderMu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, e.gatewayTimeout)
	err := e.gateway.CancelAllOpenOrders(cctx, symbol)
	cancel()
	if err != nil {
		return fmt.Errorf("cancel open orders %s: %w", symbol, err)
	}

	cctx, cancel = context.WithTimeout(ctx, e.gatewayTimeout)
	exch, err := e.gateway.OpenPosition(cctx, symbol)
	cancel()
	if err != nil {
		return fmt.Errorf("query position %s: %w", symbol, err)
	}

	if exch != nil {
		cctx, cancel = context.WithTimeout(ctx, e.gatewayTimeout)
		_, err = e.gateway.PlaceMarketOrder(cctx, symbol, exch.Side.Opposite(), exch.Qty)
		cancel()
		if err != nil {
			return fmt.Errorf("close order %s: %w", symbol, err)
		}
		e.logf("closed %s exposure qty=%v", symbol, exch.Qty)
	}

	return e.finishClose(ctx, symbol)
}

// finishClose clears the local position, moves the state machine back
// to SCANNING and syncs the ledger with the exchange trade history.
func (e *Engine) finishClose(ctx context.Context, symbol string) error {
	e.mu.Lock()
	e.position = nil
	if e.state == StateInPosition {
		e.state = StateScanning
	}
	e.mu.Unlock()

	e.bus.Publish(events.EventPositionUpdate, nil)
	return e.reconcile(ctx, symbol)
}

func (e *Engine) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[bot] %s", msg)
	e.bus.Publish(events.EventLog, msg)
}

func normalizeSide(side string) (common.Side, error) {
	switch strings.ToUpper(side) {
	case "LONG", string(common.SideBuy):
		return common.SideBuy, nil
	case "SHORT", string(common.SideSell):
		return common.SideSell, nil
	default:
		return "", fmt.Errorf("invalid side %q", side)
	}
}
