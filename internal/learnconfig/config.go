package learnconfig

import "time"

// Config는 학습 루프의 전체 파라미터
// ⭐ SSOT: 학습 경계값/임계값은 이 파일에서만 정의
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Weights    Weights    `yaml:"weights" json:"weights"`
	Gates      Gates      `yaml:"gates" json:"gates"`
	KillCombos KillCombos `yaml:"kill_combos" json:"kill_combos"`
	Sizing     Sizing     `yaml:"sizing" json:"sizing"`
	Capture    Capture    `yaml:"capture" json:"capture"`
	Damping    Damping    `yaml:"damping" json:"damping"`
}

// Meta 메타 정보
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Weights Weight Learner 경계값
type Weights struct {
	MinSamples        int           `yaml:"min_samples" json:"min_samples"`               // 기본 50
	MaxAdjustmentPct  float64       `yaml:"max_adjustment_pct" json:"max_adjustment_pct"` // 사이클당 ±0.20
	DisagreementBonus float64       `yaml:"disagreement_bonus" json:"disagreement_bonus"` // ±0.05
	Floor             float64       `yaml:"floor" json:"floor"`                           // 0.05
	HistoryCap        int           `yaml:"history_cap" json:"history_cap"`               // 이전 벡터 보존 수
	EVScale           float64       `yaml:"ev_scale" json:"ev_scale"`                     // EV→조정률 배율
	PairWindow        time.Duration `yaml:"pair_window" json:"pair_window"`               // 불일치/조합 분석 시간창
}

// Gates 게이트 조정 경계값
type Gates struct {
	MinSamples     int     `yaml:"min_samples" json:"min_samples"`
	LoosenWinRate  float64 `yaml:"loosen_win_rate" json:"loosen_win_rate"`   // 이상이면 완화 권고
	TightenWinRate float64 `yaml:"tighten_win_rate" json:"tighten_win_rate"` // 미만이면 강화 권고
	StepPct        float64 `yaml:"step_pct" json:"step_pct"`
}

// KillCombos 억제 콤보 판정 기준
type KillCombos struct {
	MinTrades  int     `yaml:"min_trades" json:"min_trades"`   // ≥20
	MaxWinRate float64 `yaml:"max_win_rate" json:"max_win_rate"` // <0.35
}

// Sizing 사이징 캘리브레이션 경계값
type Sizing struct {
	MaxMultiplier float64 `yaml:"max_multiplier" json:"max_multiplier"` // 3.0
	MinMultiplier float64 `yaml:"min_multiplier" json:"min_multiplier"` // 0.0
	NudgeStep     float64 `yaml:"nudge_step" json:"nudge_step"`
	NegativeEVCut float64 `yaml:"negative_ev_cut" json:"negative_ev_cut"` // 강한 음수 EV 기준
}

// Capture 캡처 단계 설정
type Capture struct {
	LookbackDays int `yaml:"lookback_days" json:"lookback_days"` // 기본 7
}

// Damping 구조 변경(거래소 이전 등) 직후 초기 학습 기간 감쇠
type Damping struct {
	Enable     bool          `yaml:"enable" json:"enable"`
	Multiplier float64       `yaml:"multiplier" json:"multiplier"` // (0,1]
	Period     time.Duration `yaml:"period" json:"period"`
	StartedAt  time.Time     `yaml:"started_at" json:"started_at"` // 구조 변경 시각
}

// ActiveMultiplier returns the damping multiplier in effect at now,
// 1.0 outside the initial learning period.
func (d Damping) ActiveMultiplier(now time.Time) float64 {
	if !d.Enable || d.StartedAt.IsZero() {
		return 1.0
	}
	if now.Sub(d.StartedAt) > d.Period {
		return 1.0
	}
	return d.Multiplier
}

// Default returns the built-in parameter profile
func Default() *Config {
	return &Config{
		Meta: Meta{
			ProfileID: "adaptive_core_v1",
			Version:   "1.0",
		},
		Weights: Weights{
			MinSamples:        50,
			MaxAdjustmentPct:  0.20,
			DisagreementBonus: 0.05,
			Floor:             0.05,
			HistoryCap:        20,
			EVScale:           10,
			PairWindow:        time.Minute,
		},
		Gates: Gates{
			MinSamples:     30,
			LoosenWinRate:  0.60,
			TightenWinRate: 0.40,
			StepPct:        0.05,
		},
		KillCombos: KillCombos{
			MinTrades:  20,
			MaxWinRate: 0.35,
		},
		Sizing: Sizing{
			MaxMultiplier: 3.0,
			MinMultiplier: 0.0,
			NudgeStep:     0.10,
			NegativeEVCut: -0.01,
		},
		Capture: Capture{
			LookbackDays: 7,
		},
		Damping: Damping{
			Enable:     false,
			Multiplier: 0.5,
			Period:     72 * time.Hour,
		},
	}
}
