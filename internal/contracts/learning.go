package contracts

import "time"

// ExecutedTrade is the minimum record the Learning Controller needs
// about a closed trade. 보존과 포맷은 호출자가 소유한다.
type ExecutedTrade struct {
	ID         string            `json:"id"`
	Symbol     string            `json:"symbol"`
	Direction  Direction         `json:"direction"`
	PnL        float64           `json:"pnl"`
	Confidence float64           `json:"confidence"`
	Tier       ConvictionTier    `json:"tier"`
	Regime     string            `json:"regime,omitempty"` // 분류기의 composite 라벨
	Signals    []SignalName      `json:"signals,omitempty"` // 진입에 동의한 시그널
	ClosedAt   time.Time         `json:"closed_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// BlockedSignal records an entry that the gate refused
type BlockedSignal struct {
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Reason    string    `json:"reason,omitempty"`
	BlockedAt time.Time `json:"blocked_at"`
}

// MissedOpportunity records an entry skipped that would have won
type MissedOpportunity struct {
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	MissedPnL float64   `json:"missed_pnl,omitempty"`
	MissedAt  time.Time `json:"missed_at"`
}

// BadDataWindow marks a time range excluded from capture
type BadDataWindow struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Reason string    `json:"reason,omitempty"`
}

// Contains reports whether t falls inside the window
func (w BadDataWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// SliceStats is the profitability aggregate for one analysis slice
type SliceStats struct {
	SampleCount int     `json:"sample_count"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
	TotalPnL    float64 `json:"total_pnl"`
	EV          float64 `json:"ev"`
}

// ProfitBreakdown is the full multi-dimensional slice analysis
type ProfitBreakdown struct {
	ByCombo     map[ComboKey]SliceStats       `json:"by_combo"`
	ByHour      map[int]SliceStats            `json:"by_hour"`
	BySession   map[TradingSession]SliceStats `json:"by_session"`
	ByRegime    map[string]SliceStats         `json:"by_regime"`
	ByTier      map[ConvictionTier]SliceStats `json:"by_tier"`
	ByAlignment map[SignalName]SliceStats     `json:"by_alignment"` // 시그널이 동의한 거래만
}

// TradingSession buckets hour-of-day into exchange sessions (UTC)
type TradingSession string

const (
	SessionAsia   TradingSession = "ASIA"
	SessionEurope TradingSession = "EUROPE"
	SessionUS     TradingSession = "US"
)

// SessionForHour maps a UTC hour to its session
func SessionForHour(hour int) TradingSession {
	switch {
	case hour >= 0 && hour < 8:
		return SessionAsia
	case hour >= 8 && hour < 14:
		return SessionEurope
	default:
		return SessionUS
	}
}

// AdjustmentTarget names the configuration artifact an adjustment touches
type AdjustmentTarget string

const (
	TargetGate   AdjustmentTarget = "gate"
	TargetWeight AdjustmentTarget = "weight"
	TargetKill   AdjustmentTarget = "kill_combo"
	TargetSizing AdjustmentTarget = "sizing"
)

// Adjustment is one generated configuration delta.
// 모든 조정은 사람이 읽을 수 있는 사유와 함께 기록된다.
type Adjustment struct {
	Target     AdjustmentTarget `json:"target"`
	Key        string           `json:"key"`    // 시그널명, 콤보키, 티어 등
	Change     float64          `json:"change"` // 부호 있는 델타 또는 새 값
	Reason     string           `json:"reason"`
	Confidence float64          `json:"confidence"`
	Applied    bool             `json:"applied"`
}

// Cadence is one of the independent update frequencies
type Cadence string

const (
	CadenceFast   Cadence = "fast"   // 30분
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

// AllCadences returns cadences fastest first
func AllCadences() []Cadence {
	return []Cadence{CadenceFast, CadenceDaily, CadenceWeekly}
}

// Interval returns the cadence period
func (c Cadence) Interval() time.Duration {
	switch c {
	case CadenceFast:
		return 30 * time.Minute
	case CadenceDaily:
		return 24 * time.Hour
	case CadenceWeekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// KillCombo is a suppressed symbol+direction pairing
type KillCombo struct {
	Combo    ComboKey  `json:"combo"`
	WinRate  float64   `json:"win_rate"`
	TotalPnL float64   `json:"total_pnl"`
	Trades   int       `json:"trades"`
	Reason   string    `json:"reason"`
	KilledAt time.Time `json:"killed_at"`
}

// SizingMap maps conviction tiers to size multipliers.
// 상한 3.0×, 하한 0.0×.
type SizingMap map[ConvictionTier]float64

// DefaultSizing returns the baseline tier multipliers
func DefaultSizing() SizingMap {
	return SizingMap{
		TierUltra:  1.50,
		TierHigh:   1.25,
		TierMedium: 1.00,
		TierLow:    0.50,
		TierReject: 0.00,
	}
}

// LearningState is the Learning Controller's per-cycle output
type LearningState struct {
	CycleID   string    `json:"cycle_id"`
	StartedAt time.Time `json:"started_at"`
	DoneAt    time.Time `json:"done_at"`
	DryRun    bool      `json:"dry_run"`

	// 캡처 단계 샘플 수
	TradeCount   int `json:"trade_count"`
	BlockedCount int `json:"blocked_count"`
	MissedCount  int `json:"missed_count"`

	Breakdown   *ProfitBreakdown `json:"breakdown,omitempty"`
	Adjustments []Adjustment     `json:"adjustments"`
	Sizing      SizingMap        `json:"sizing,omitempty"`

	// 케이던스별 마지막 실행 시각과 이번 사이클에 도래한 케이던스
	LastRun     map[Cadence]time.Time `json:"last_run"`
	DueCadences []Cadence             `json:"due_cadences,omitempty"`

	// 적용 직전 스냅샷 경로 (롤백용)
	SnapshotPath string `json:"snapshot_path,omitempty"`

	// 이번 사이클에 유효했던 학습 파라미터 해시
	ConfigHash string `json:"config_hash,omitempty"`
}
