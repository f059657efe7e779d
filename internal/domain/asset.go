package domain

// TargetMode selects how the target distance is derived.
type TargetMode string

const (
	TargetModeATR          TargetMode = "atr"
	TargetModeMeasuredMove TargetMode = "measured_move"
)

// AssetConfig is the read-only per-asset trading configuration.
// Session is either "24/7" or a window string like "08:00-17:00_EST";
// a malformed window fails open (trading allowed).
type AssetConfig struct {
	Symbol             string     `yaml:"symbol"`
	Session            string     `yaml:"session"`
	TargetMode         TargetMode `yaml:"target_mode"`
	ATRFilter          float64    `yaml:"atr_filter"`
	CloseBeforeWeekend bool       `yaml:"close_before_weekend"`
}

// Is247 reports whether the asset trades around the clock.
func (a AssetConfig) Is247() bool {
	return a.Session == "" || a.Session == "24/7"
}
