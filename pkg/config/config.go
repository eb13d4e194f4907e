package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// RiskMode selects how protective exit prices are derived.
type RiskMode string

const (
	RiskModeATR      RiskMode = "atr"
	RiskModeFixedROI RiskMode = "fixed_roi"
)

// StrategyName identifies one of the built-in signal providers.
type StrategyName string

const (
	StrategyMomentum StrategyName = "Momentum"
	StrategyScalper  StrategyName = "Scalper"
)

// MomentumParams configures the EMA-cross momentum strategy.
type MomentumParams struct {
	Timeframe     string  `yaml:"timeframe"`
	EMAFast       int     `yaml:"ema_fast"`
	EMASlow       int     `yaml:"ema_slow"`
	RSILength     int     `yaml:"rsi_length"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
	ATRLength     int     `yaml:"atr_length"`
	ATRMultSL     float64 `yaml:"atr_mult_sl"`
	ATRMultTP     float64 `yaml:"atr_mult_tp"`
}

// ScalperParams configures the volume-spike scalping strategy.
type ScalperParams struct {
	Timeframe    string  `yaml:"timeframe"`
	VolumeMALen  int     `yaml:"volume_ma_length"`
	VolumeThresh float64 `yaml:"volume_threshold"`
	BodyRatio    float64 `yaml:"candle_body_ratio"`
	ATRLength    int     `yaml:"atr_length"`
	ATRMultSL    float64 `yaml:"atr_mult_sl"`
	ATRMultTP    float64 `yaml:"atr_mult_tp"`
}

// Config holds environment-driven settings for the trading terminal.
type Config struct {
	Port string

	// Binance futures credentials
	BinanceAPIKey    string
	BinanceAPISecret string
	BinanceTestnet   bool

	// Trading defaults (mutable at runtime through the engine)
	Leverage    int
	QuantityUSD float64
	Symbol      string
	RiskMode    RiskMode
	FixedROI    float64 // fractional, e.g. 0.02
	Strategy    StrategyName

	Momentum MomentumParams
	Scalper  ScalperParams

	// Loop timing
	TickInterval    time.Duration
	BackoffInterval time.Duration
	GatewayTimeout  time.Duration

	// Ledger
	DBPath string

	// Control-surface auth
	AppUsername string
	AppPassword string
	JWTSecret   string
}

// Load reads environment variables (optionally via .env) into Config.
// Missing exchange credentials are a fatal configuration error: the
// engine must not be constructed without them.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8000"),
		BinanceAPIKey:    os.Getenv("BINANCE_API_KEY"),
		BinanceAPISecret: os.Getenv("BINANCE_API_SECRET"),
		BinanceTestnet:   strings.Contains(getEnv("BINANCE_API_URL", "https://fapi.binance.com"), "testnet"),

		Leverage:    getEnvInt("TRADING_LEVERAGE", 10),
		QuantityUSD: getEnvFloat("TRADING_QUANTITY_USD", 20),
		Symbol:      getEnv("TRADING_SYMBOL", "XRPUSDT"),
		RiskMode:    RiskMode(getEnv("TRADING_RISK_MODE", string(RiskModeATR))),
		FixedROI:    getEnvFloat("TRADING_FIXED_ROI_TP", 2.0) / 100,
		Strategy:    StrategyName(getEnv("TRADING_ACTIVE_STRATEGY", string(StrategyMomentum))),

		Momentum: MomentumParams{
			Timeframe:     getEnv("MOMENTUM_TIMEFRAME", "5m"),
			EMAFast:       getEnvInt("MOMENTUM_EMA_FAST", 9),
			EMASlow:       getEnvInt("MOMENTUM_EMA_SLOW", 21),
			RSILength:     getEnvInt("MOMENTUM_RSI_LENGTH", 14),
			RSIOverbought: getEnvFloat("MOMENTUM_RSI_OB", 70),
			RSIOversold:   getEnvFloat("MOMENTUM_RSI_OS", 30),
			ATRLength:     getEnvInt("MOMENTUM_ATR_LEN", 14),
			ATRMultSL:     getEnvFloat("MOMENTUM_ATR_SL", 1.5),
			ATRMultTP:     getEnvFloat("MOMENTUM_ATR_TP", 3.0),
		},
		Scalper: ScalperParams{
			Timeframe:    getEnv("SCALPER_TIMEFRAME", "1m"),
			VolumeMALen:  getEnvInt("SCALPER_VOL_MA_LEN", 20),
			VolumeThresh: getEnvFloat("SCALPER_VOL_THRESHOLD", 2.0),
			BodyRatio:    getEnvFloat("SCALPER_BODY_RATIO", 0.6),
			ATRLength:    getEnvInt("SCALPER_ATR_LEN", 14),
			ATRMultSL:    getEnvFloat("SCALPER_ATR_SL", 1.0),
		},

		TickInterval:    time.Duration(getEnvInt("TICK_INTERVAL_SEC", 30)) * time.Second,
		BackoffInterval: time.Duration(getEnvInt("BACKOFF_INTERVAL_SEC", 60)) * time.Second,
		GatewayTimeout:  time.Duration(getEnvInt("GATEWAY_TIMEOUT_SEC", 10)) * time.Second,

		DBPath: getEnv("DB_PATH", "./data/trades.db"),

		AppUsername: os.Getenv("APP_USERNAME"),
		AppPassword: os.Getenv("APP_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
	}

	if cfg.BinanceAPIKey == "" || cfg.BinanceAPISecret == "" {
		return nil, errors.New("config: BINANCE_API_KEY and BINANCE_API_SECRET must be set")
	}
	if cfg.RiskMode != RiskModeATR && cfg.RiskMode != RiskModeFixedROI {
		return nil, fmt.Errorf("config: unknown risk mode %q", cfg.RiskMode)
	}
	if cfg.Strategy != StrategyMomentum && cfg.Strategy != StrategyScalper {
		return nil, fmt.Errorf("config: unknown strategy %q", cfg.Strategy)
	}

	if path := os.Getenv("STRATEGY_PRESETS"); path != "" {
		if err := cfg.applyPresets(path); err != nil {
			return nil, fmt.Errorf("config: load presets: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
