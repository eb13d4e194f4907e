package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyPresetsMergesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	content := []byte(`
momentum:
  ema_fast: 12
  atr_mult_sl: 2.0
scalper:
  timeframe: 3m
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}

	cfg := &Config{
		Momentum: MomentumParams{Timeframe: "5m", EMAFast: 9, EMASlow: 21, RSILength: 14, ATRMultSL: 1.5},
		Scalper:  ScalperParams{Timeframe: "1m", VolumeMALen: 20},
	}
	if err := cfg.applyPresets(path); err != nil {
		t.Fatalf("applyPresets: %v", err)
	}

	if cfg.Momentum.EMAFast != 12 {
		t.Fatalf("ema_fast = %d, want override 12", cfg.Momentum.EMAFast)
	}
	if cfg.Momentum.ATRMultSL != 2.0 {
		t.Fatalf("atr_mult_sl = %v, want override 2.0", cfg.Momentum.ATRMultSL)
	}
	if cfg.Momentum.EMASlow != 21 || cfg.Momentum.RSILength != 14 {
		t.Fatal("absent momentum fields must keep env-derived values")
	}
	if cfg.Scalper.Timeframe != "3m" {
		t.Fatalf("scalper timeframe = %s, want 3m", cfg.Scalper.Timeframe)
	}
	if cfg.Scalper.VolumeMALen != 20 {
		t.Fatal("absent scalper fields must keep env-derived values")
	}
}

func TestApplyPresetsMissingFile(t *testing.T) {
	cfg := &Config{}
	if err := cfg.applyPresets("/nonexistent/presets.yaml"); err == nil {
		t.Fatal("missing preset file should error")
	}
}
