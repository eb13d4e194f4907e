package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// presetFile is the top-level YAML structure for strategy parameter overrides.
// Only fields present in the file replace the env-derived values.
type presetFile struct {
	Momentum *MomentumParams `yaml:"momentum"`
	Scalper  *ScalperParams  `yaml:"scalper"`
}

// applyPresets merges parameter overrides from a YAML file into cfg.
func (c *Config) applyPresets(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	if file.Momentum != nil {
		mergeMomentum(&c.Momentum, file.Momentum)
	}
	if file.Scalper != nil {
		mergeScalper(&c.Scalper, file.Scalper)
	}
	return nil
}

func mergeMomentum(dst, src *MomentumParams) {
	if src.Timeframe != "" {
		dst.Timeframe = src.Timeframe
	}
	if src.EMAFast > 0 {
		dst.EMAFast = src.EMAFast
	}
	if src.EMASlow > 0 {
		dst.EMASlow = src.EMASlow
	}
	if src.RSILength > 0 {
		dst.RSILength = src.RSILength
	}
	if src.RSIOverbought > 0 {
		dst.RSIOverbought = src.RSIOverbought
	}
	if src.RSIOversold > 0 {
		dst.RSIOversold = src.RSIOversold
	}
	if src.ATRLength > 0 {
		dst.ATRLength = src.ATRLength
	}
	if src.ATRMultSL > 0 {
		dst.ATRMultSL = src.ATRMultSL
	}
	if src.ATRMultTP > 0 {
		dst.ATRMultTP = src.ATRMultTP
	}
}

func mergeScalper(dst, src *ScalperParams) {
	if src.Timeframe != "" {
		dst.Timeframe = src.Timeframe
	}
	if src.VolumeMALen > 0 {
		dst.VolumeMALen = src.VolumeMALen
	}
	if src.VolumeThresh > 0 {
		dst.VolumeThresh = src.VolumeThresh
	}
	if src.BodyRatio > 0 {
		dst.BodyRatio = src.BodyRatio
	}
	if src.ATRLength > 0 {
		dst.ATRLength = src.ATRLength
	}
	if src.ATRMultSL > 0 {
		dst.ATRMultSL = src.ATRMultSL
	}
	if src.ATRMultTP > 0 {
		dst.ATRMultTP = src.ATRMultTP
	}
}
