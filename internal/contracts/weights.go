package contracts

import "time"

// WeightVector maps each signal to its entry-gating weight.
// 모든 가중치는 음수가 아니며 합은 1이다.
type WeightVector map[SignalName]float64

// Sum returns the vector total
func (w WeightVector) Sum() float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}

// Clone returns a deep copy
func (w WeightVector) Clone() WeightVector {
	out := make(WeightVector, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// DefaultWeights returns the uniform starting vector over the closed set
func DefaultWeights() WeightVector {
	names := AllSignalNames()
	w := make(WeightVector, len(names))
	for _, name := range names {
		w[name] = 1.0 / float64(len(names))
	}
	return w
}

// WeightHistoryEntry is one prior vector kept for audit
type WeightHistoryEntry struct {
	Weights   WeightVector `json:"weights"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// WeightState is the Weight Learner's owned output artifact
// ⭐ SSOT: 가중치 벡터의 단일 소유자는 Weight Learner
type WeightState struct {
	Weights   WeightVector          `json:"weights"`
	Reasoning map[SignalName]string `json:"reasoning"` // 시그널별 변경 사유

	// EV 테이블과 최적 호라이즌 (감사/디버깅용)
	EVByHorizon map[SignalName]map[Horizon]float64 `json:"ev_by_horizon,omitempty"`
	BestHorizon map[SignalName]Horizon             `json:"best_horizon,omitempty"`

	// 이번 사이클에 샘플이 부족해 건드리지 않은 시그널
	InsufficientData []SignalName `json:"insufficient_data,omitempty"`

	// 이번 사이클의 조합 분석 결과
	Combinations *CombinationReport `json:"combinations,omitempty"`

	// 길이 제한이 있는 이전 벡터 이력
	History []WeightHistoryEntry `json:"history,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// AgreementBucket labels how aligned a co-firing group was
type AgreementBucket string

const (
	BucketAllAgree AgreementBucket = "all_agree"
	BucketMajority AgreementBucket = "majority"
	BucketSplit    AgreementBucket = "split"
)

// ComboStats is a win-rate aggregate for one bucket or signal set
type ComboStats struct {
	SampleCount int     `json:"sample_count"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
}

// CombinationReport surfaces which signal combinations are synergistic
type CombinationReport struct {
	ByBucket map[AgreementBucket]ComboStats `json:"by_bucket"`
	BySet    map[string]ComboStats          `json:"by_set"` // 정렬된 시그널명 집합
}

// NewWeightState returns a fresh state with uniform weights
func NewWeightState() *WeightState {
	return &WeightState{
		Weights:   DefaultWeights(),
		Reasoning: make(map[SignalName]string),
		UpdatedAt: time.Now(),
	}
}
