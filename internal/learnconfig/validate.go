package learnconfig

import "fmt"

// ValidationError 검증 실패 (해당 사이클 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Weights ===
	if cfg.Weights.MinSamples < 1 {
		return ValidationError{"weights.min_samples", "must be >= 1"}
	}
	if cfg.Weights.MaxAdjustmentPct <= 0 || cfg.Weights.MaxAdjustmentPct > 0.5 {
		return ValidationError{"weights.max_adjustment_pct", "must be in (0, 0.5]"}
	}
	if cfg.Weights.DisagreementBonus < 0 || cfg.Weights.DisagreementBonus > cfg.Weights.MaxAdjustmentPct {
		return ValidationError{"weights.disagreement_bonus", "must be in [0, max_adjustment_pct]"}
	}
	if cfg.Weights.Floor <= 0 || cfg.Weights.Floor >= 0.5 {
		return ValidationError{"weights.floor", "must be in (0, 0.5)"}
	}
	if cfg.Weights.HistoryCap < 1 {
		return ValidationError{"weights.history_cap", "must be >= 1"}
	}
	if cfg.Weights.PairWindow <= 0 {
		return ValidationError{"weights.pair_window", "must be > 0"}
	}

	// === Gates ===
	if cfg.Gates.MinSamples < 1 {
		return ValidationError{"gates.min_samples", "must be >= 1"}
	}
	if cfg.Gates.TightenWinRate >= cfg.Gates.LoosenWinRate {
		return ValidationError{"gates", "tighten_win_rate must be < loosen_win_rate"}
	}

	// === Kill combos ===
	if cfg.KillCombos.MinTrades < 1 {
		return ValidationError{"kill_combos.min_trades", "must be >= 1"}
	}
	if cfg.KillCombos.MaxWinRate <= 0 || cfg.KillCombos.MaxWinRate >= 1 {
		return ValidationError{"kill_combos.max_win_rate", "must be in (0, 1)"}
	}

	// === Sizing ===
	if cfg.Sizing.MinMultiplier < 0 {
		return ValidationError{"sizing.min_multiplier", "must be >= 0"}
	}
	if cfg.Sizing.MaxMultiplier <= cfg.Sizing.MinMultiplier {
		return ValidationError{"sizing.max_multiplier", "must be > min_multiplier"}
	}
	if cfg.Sizing.NudgeStep <= 0 {
		return ValidationError{"sizing.nudge_step", "must be > 0"}
	}

	// === Capture ===
	if cfg.Capture.LookbackDays < 1 {
		return ValidationError{"capture.lookback_days", "must be >= 1"}
	}

	// === Damping ===
	if cfg.Damping.Enable {
		if cfg.Damping.Multiplier <= 0 || cfg.Damping.Multiplier > 1 {
			return ValidationError{"damping.multiplier", "must be in (0, 1]"}
		}
		if cfg.Damping.Period <= 0 {
			return ValidationError{"damping.period", "must be > 0"}
		}
	}

	return nil
}
