package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"trading-terminal/internal/bot"
	"trading-terminal/internal/events"
	"trading-terminal/pkg/config"
	"trading-terminal/pkg/db"

	"github.com/gin-gonic/gin"
)

// stubController records control-surface calls.
type stubController struct {
	mu sync.Mutex

	running      bool
	leverage     int
	quantity     float64
	strategy     config.StrategyName
	riskMode     config.RiskMode
	manualSides  []string
	emergencies  int
	leverageErr  error
	updateSymbol string
}

func (s *stubController) Start(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *stubController) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.running = false
	return true
}

func (s *stubController) Status() bot.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := bot.StateIdle
	if s.running {
		state = bot.StateScanning
	}
	return bot.Status{State: state, Symbol: "XRPUSDT", Leverage: s.leverage}
}

func (s *stubController) SetLeverage(_ context.Context, leverage int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leverageErr != nil {
		return s.leverageErr
	}
	s.leverage = leverage
	return nil
}

func (s *stubController) SetQuantity(usd float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if usd < 5 {
		return fmt.Errorf("quantity %.2f below minimum", usd)
	}
	s.quantity = usd
	return nil
}

func (s *stubController) SetRiskMode(mode config.RiskMode, _ float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.riskMode = mode
	return nil
}

func (s *stubController) SetStrategy(name config.StrategyName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != config.StrategyMomentum && name != config.StrategyScalper {
		return fmt.Errorf("unknown strategy %q", name)
	}
	s.strategy = name
	return nil
}

func (s *stubController) UpdateSymbol(_ context.Context, _, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateSymbol = value
	return value, nil
}

func (s *stubController) ManualTrade(_ context.Context, side string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualSides = append(s.manualSides, side)
	return nil
}

func (s *stubController) EmergencyClose(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emergencies++
	return nil
}

func newTestServer(t *testing.T, ctrl Controller) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := db.ApplyMigrations(store); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		AppUsername: "operator",
		AppPassword: "hunter2",
	}
	return NewServer(context.Background(), events.NewBus(), store, ctrl, cfg)
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, s *Server) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "operator",
		"password": "hunter2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t, &stubController{})

	w := doJSON(t, s, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "operator",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, &stubController{})

	w := doJSON(t, s, http.MethodGet, "/api/bot/status", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/api/bot/status", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status with bad token = %d, want 401", w.Code)
	}
}

func TestStartStopRoundTrip(t *testing.T) {
	ctrl := &stubController{}
	s := newTestServer(t, ctrl)
	token := loginToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/bot/start", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d", w.Code)
	}
	var startResp struct {
		Started bool      `json:"started"`
		State   bot.State `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &startResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !startResp.Started || startResp.State != bot.StateScanning {
		t.Fatalf("start response = %+v", startResp)
	}

	// Second start is a no-op.
	w = doJSON(t, s, http.MethodPost, "/api/bot/start", token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &startResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if startResp.Started {
		t.Fatal("second start should report started=false")
	}

	w = doJSON(t, s, http.MethodPost, "/api/bot/stop", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stop status = %d", w.Code)
	}
}

func TestSetLeverageValidation(t *testing.T) {
	ctrl := &stubController{leverageErr: fmt.Errorf("leverage out of range")}
	s := newTestServer(t, ctrl)
	token := loginToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/settings/leverage", token, gin.H{"leverage": 500})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	ctrl.mu.Lock()
	ctrl.leverageErr = nil
	ctrl.mu.Unlock()

	w = doJSON(t, s, http.MethodPost, "/api/settings/leverage", token, gin.H{"leverage": 25})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	ctrl.mu.Lock()
	got := ctrl.leverage
	ctrl.mu.Unlock()
	if got != 25 {
		t.Fatalf("leverage = %d, want 25", got)
	}
}

func TestSetRiskModeRejectsUnknownMode(t *testing.T) {
	s := newTestServer(t, &stubController{})
	token := loginToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/settings/risk", token, gin.H{"mode": "martingale"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSetStrategy(t *testing.T) {
	ctrl := &stubController{}
	s := newTestServer(t, ctrl)
	token := loginToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/settings/strategy", token, gin.H{"name": "Scalper"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	ctrl.mu.Lock()
	got := ctrl.strategy
	ctrl.mu.Unlock()
	if got != config.StrategyScalper {
		t.Fatalf("strategy = %s, want Scalper", got)
	}

	w = doJSON(t, s, http.MethodPost, "/api/settings/strategy", token, gin.H{"name": "Arbitrage"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown strategy status = %d, want 400", w.Code)
	}
}

func TestManualTradeIsAsynchronous(t *testing.T) {
	ctrl := &stubController{}
	s := newTestServer(t, ctrl)
	token := loginToken(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/bot/manual-trade/LONG", token, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ctrl.mu.Lock()
		n := len(ctrl.manualSides)
		ctrl.mu.Unlock()
		if n == 1 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("manual trade never reached the engine")
}

func TestHistoryAndStats(t *testing.T) {
	s := newTestServer(t, &stubController{})
	token := loginToken(t, s)

	ctx := context.Background()
	for i, pnl := range []float64{1.5, -0.5} {
		if _, err := s.store.InsertTrade(ctx, db.TradeRecord{
			Symbol:    "XRPUSDT",
			TradeID:   int64(i + 1),
			Side:      "SELL",
			PnL:       pnl,
			Timestamp: int64(1700000000000 + i),
		}); err != nil {
			t.Fatalf("seed trade: %v", err)
		}
	}

	w := doJSON(t, s, http.MethodGet, "/api/history?limit=10", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}
	var histResp struct {
		Trades []db.TradeRecord `json:"trades"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &histResp); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(histResp.Trades) != 2 {
		t.Fatalf("history rows = %d, want 2", len(histResp.Trades))
	}

	w = doJSON(t, s, http.MethodGet, "/api/stats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	var stats db.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalTrades != 2 || stats.Wins != 1 || stats.Losses != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.TotalPnL != 1.0 {
		t.Fatalf("total pnl = %v, want 1.0", stats.TotalPnL)
	}
}
