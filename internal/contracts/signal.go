package contracts

import (
	"fmt"
	"strings"
	"time"
)

// SignalName identifies a predictive signal component
// ⭐ SSOT: 시그널 이름은 닫힌 집합이며 여기서만 정의
type SignalName string

const (
	SignalMomentum      SignalName = "momentum"
	SignalMeanReversion SignalName = "mean_reversion"
	SignalMACDCross     SignalName = "macd_cross"
	SignalRSIExtreme    SignalName = "rsi_extreme"
	SignalVolumeSpike   SignalName = "volume_spike"
	SignalOrderbookSkew SignalName = "orderbook_skew"
	SignalFundingSkew   SignalName = "funding_skew"
	SignalBreakout      SignalName = "breakout"
)

// AllSignalNames returns the closed signal set in canonical order
func AllSignalNames() []SignalName {
	return []SignalName{
		SignalMomentum,
		SignalMeanReversion,
		SignalMACDCross,
		SignalRSIExtreme,
		SignalVolumeSpike,
		SignalOrderbookSkew,
		SignalFundingSkew,
		SignalBreakout,
	}
}

// IsValid reports whether the name belongs to the closed set
func (s SignalName) IsValid() bool {
	for _, name := range AllSignalNames() {
		if s == name {
			return true
		}
	}
	return false
}

// Direction is the predicted price direction
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL" // 추적 대상 아님
)

// Opposite returns the opposing direction. NEUTRAL has no opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionLong:
		return DirectionShort
	case DirectionShort:
		return DirectionLong
	default:
		return DirectionNeutral
	}
}

// Horizon is a fixed forward offset at which a prediction is checked
type Horizon string

const (
	Horizon1m  Horizon = "1m"
	Horizon5m  Horizon = "5m"
	Horizon15m Horizon = "15m"
	Horizon30m Horizon = "30m"
	Horizon1h  Horizon = "1h"
)

// AllHorizons returns horizons in ascending order
// ⭐ SSOT: EV 동률 시 이 순서의 앞쪽이 우선
func AllHorizons() []Horizon {
	return []Horizon{Horizon1m, Horizon5m, Horizon15m, Horizon30m, Horizon1h}
}

// Duration returns the forward offset for the horizon
func (h Horizon) Duration() time.Duration {
	switch h {
	case Horizon1m:
		return time.Minute
	case Horizon5m:
		return 5 * time.Minute
	case Horizon15m:
		return 15 * time.Minute
	case Horizon30m:
		return 30 * time.Minute
	case Horizon1h:
		return time.Hour
	default:
		return 0
	}
}

// Weight returns the horizon importance used in the EV contribution blend.
// 짧은 호라이즌일수록 가중치가 낮고 1h가 가장 높다.
func (h Horizon) Weight() float64 {
	switch h {
	case Horizon1m:
		return 0.10
	case Horizon5m:
		return 0.15
	case Horizon15m:
		return 0.20
	case Horizon30m:
		return 0.25
	case Horizon1h:
		return 0.30
	default:
		return 0
	}
}

// ConvictionTier is a discrete confidence bucket used to scale size
type ConvictionTier string

const (
	TierUltra  ConvictionTier = "ULTRA"
	TierHigh   ConvictionTier = "HIGH"
	TierMedium ConvictionTier = "MEDIUM"
	TierLow    ConvictionTier = "LOW"
	TierReject ConvictionTier = "REJECT"
)

// AllTiers returns conviction tiers from strongest to weakest
func AllTiers() []ConvictionTier {
	return []ConvictionTier{TierUltra, TierHigh, TierMedium, TierLow, TierReject}
}

// TierForConfidence buckets a [0,1] confidence into a conviction tier
func TierForConfidence(confidence float64) ConvictionTier {
	switch {
	case confidence >= 0.85:
		return TierUltra
	case confidence >= 0.70:
		return TierHigh
	case confidence >= 0.55:
		return TierMedium
	case confidence >= 0.40:
		return TierLow
	default:
		return TierReject
	}
}

// ComboKey is a typed key for a symbol+direction pairing.
// 문자열 연결 키 대신 구조체를 사용해 컴파일 타임 검사를 받는다.
type ComboKey struct {
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
}

// String renders the key for log lines and artifact file names
func (k ComboKey) String() string {
	return k.Symbol + ":" + string(k.Direction)
}

// MarshalText lets ComboKey serve as a JSON map key
func (k ComboKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "SYMBOL:DIRECTION" form
func (k *ComboKey) UnmarshalText(text []byte) error {
	idx := strings.LastIndexByte(string(text), ':')
	if idx < 0 {
		return fmt.Errorf("invalid combo key %q", text)
	}
	k.Symbol = string(text[:idx])
	k.Direction = Direction(text[idx+1:])
	return nil
}
