package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"priceActionBot/internal/domain"
)

// assetsFile is the on-disk layout of the asset configuration.
type assetsFile struct {
	Assets []domain.AssetConfig `yaml:"assets"`
}

// DefaultAssets is used when no assets file exists.
func DefaultAssets() []domain.AssetConfig {
	return []domain.AssetConfig{
		{
			Symbol:     "BTCUSDT",
			Session:    "24/7",
			TargetMode: domain.TargetModeMeasuredMove,
			ATRFilter:  1.0,
		},
		{
			Symbol:             "XAUUSD",
			Session:            "08:00-17:00_EST",
			TargetMode:         domain.TargetModeATR,
			ATRFilter:          1.0,
			CloseBeforeWeekend: true,
		},
	}
}

// LoadAssets reads the asset list from a YAML file. A missing file falls
// back to DefaultAssets; a malformed file is a hard error, since trading
// the wrong session or target mode is worse than not starting.
func LoadAssets(path string) ([]domain.AssetConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultAssets(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read assets file '%s': %w", path, err)
	}

	var f assetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse assets file '%s': %w", path, err)
	}
	if len(f.Assets) == 0 {
		return nil, fmt.Errorf("assets file '%s' lists no assets", path)
	}

	for i := range f.Assets {
		a := &f.Assets[i]
		if a.Symbol == "" {
			return nil, fmt.Errorf("assets file '%s': asset %d has no symbol", path, i)
		}
		if a.TargetMode == "" {
			a.TargetMode = domain.TargetModeATR
		}
		if a.TargetMode != domain.TargetModeATR && a.TargetMode != domain.TargetModeMeasuredMove {
			return nil, fmt.Errorf("assets file '%s': asset %s has unknown target mode %q", path, a.Symbol, a.TargetMode)
		}
		if a.ATRFilter <= 0 {
			a.ATRFilter = 1.0
		}
	}
	return f.Assets, nil
}
