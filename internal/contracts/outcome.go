package contracts

import "time"

// PendingSignal is a tracked signal awaiting horizon resolution
// ⭐ SSOT: 해결 전 시그널 상태는 이 구조체가 유일한 표현
type PendingSignal struct {
	ID         string             `json:"id"`
	EmittedAt  time.Time          `json:"emitted_at"` // epoch 기준, 타임존 독립
	Symbol     string             `json:"symbol"`
	Signal     SignalName         `json:"signal"`
	Direction  Direction          `json:"direction"`
	Confidence float64            `json:"confidence"` // [0,1]로 클램프됨
	EntryPrice float64            `json:"entry_price"`
	Metadata   map[string]string  `json:"metadata,omitempty"`

	// 호라이즌별 해결 가격. resolved set은 단조 증가하며
	// 한번 해결된 호라이즌은 재해결되지 않는다.
	ResolvedPrices map[Horizon]float64 `json:"resolved_prices"`
}

// IsResolved reports whether the horizon has already been resolved
func (p *PendingSignal) IsResolved(h Horizon) bool {
	_, ok := p.ResolvedPrices[h]
	return ok
}

// FullyResolved reports whether every horizon has a resolved price
func (p *PendingSignal) FullyResolved() bool {
	return len(p.ResolvedPrices) == len(AllHorizons())
}

// HorizonResult is the realized result at a single horizon
type HorizonResult struct {
	ResolvedPrice float64 `json:"resolved_price"`
	Return        float64 `json:"return"` // 방향 부호 보정된 수익률
	Hit           bool    `json:"hit"`    // 예측 방향으로 움직였는지
}

// Outcome is an immutable resolved-signal record.
// Outcome 로그에 기록된 후에는 절대 수정되지 않는다.
type Outcome struct {
	ID         string            `json:"id"`
	EmittedAt  time.Time         `json:"emitted_at"`
	ResolvedAt time.Time         `json:"resolved_at"`
	Symbol     string            `json:"symbol"`
	Signal     SignalName        `json:"signal"`
	Direction  Direction         `json:"direction"`
	Confidence float64           `json:"confidence"`
	EntryPrice float64           `json:"entry_price"`
	Metadata   map[string]string `json:"metadata,omitempty"`

	Results map[Horizon]HorizonResult `json:"results"`

	// 호라이즌 가중/적중 보정 EV 기여도 (confidence 곱 적용)
	EVContribution float64 `json:"ev_contribution"`

	// 2시간 staleness 한도로 강제 마감된 경우 true
	Partial bool `json:"partial"`
}

// HitAt returns the hit flag for a horizon, false when unresolved
func (o *Outcome) HitAt(h Horizon) (bool, bool) {
	r, ok := o.Results[h]
	if !ok {
		return false, false
	}
	return r.Hit, true
}

// HorizonStats is a per-horizon aggregate for one signal
type HorizonStats struct {
	SampleCount int     `json:"sample_count"`
	AvgReturn   float64 `json:"avg_return"`
	WinRate     float64 `json:"win_rate"`
	EV          float64 `json:"ev"` // win_rate×avg_win − loss_rate×avg_loss
}

// SignalStats is the fully-recomputable aggregate per signal name.
// Outcome 기록마다 전체 이력에서 통째로 재계산된다 (증분 패치 금지).
type SignalStats struct {
	Signal      SignalName               `json:"signal"`
	SampleCount int                      `json:"sample_count"`
	ByHorizon   map[Horizon]HorizonStats `json:"by_horizon"`
	BestHorizon Horizon                  `json:"best_horizon"`
	Recommended float64                  `json:"recommended_weight"`
	UpdatedAt   time.Time                `json:"updated_at"`
}
