package contracts

import "time"

// TrendClass is the Hurst-derived base classification
type TrendClass string

const (
	TrendMeanReverting TrendClass = "RANGE" // H < 0.45
	TrendTrending      TrendClass = "TREND" // H > 0.55
	TrendRandomWalk    TrendClass = "CHOP"  // 그 외
)

// ClassifyHurst maps a Hurst exponent to its trend class
// ⭐ SSOT: 분류 경계값은 여기서만
func ClassifyHurst(h float64) TrendClass {
	switch {
	case h < 0.45:
		return TrendMeanReverting
	case h > 0.55:
		return TrendTrending
	default:
		return TrendRandomWalk
	}
}

// VolState is the optional secondary volatility label
type VolState string

const (
	VolLow  VolState = "LOW_VOL"
	VolHigh VolState = "HIGH_VOL"
)

// RegimeInfo is the per-symbol market-state classification
type RegimeInfo struct {
	Symbol string     `json:"symbol"`
	Hurst  float64    `json:"hurst"` // [0,1]로 클램프
	Trend  TrendClass `json:"trend"`

	// HMM 모델이 없으면 비어 있음 (graceful degradation)
	Volatility VolState `json:"volatility,omitempty"`

	// Trend와 Volatility의 순수 함수 (예: TREND_HIGH_VOL)
	Composite string `json:"composite"`

	Confidence float64   `json:"confidence"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CompositeLabel combines trend and volatility into the composite label.
// Volatility가 없으면 trend 라벨만 반환한다.
func CompositeLabel(trend TrendClass, vol VolState) string {
	if vol == "" {
		return string(trend)
	}
	return string(trend) + "_" + string(vol)
}

// RegimeTransition is one append-only history record of a regime change
type RegimeTransition struct {
	Symbol    string    `json:"symbol"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Hurst     float64   `json:"hurst"`
	ChangedAt time.Time `json:"changed_at"`
}
