package weights

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/learnconfig"
	"github.com/jaylee/argos/internal/outcome"
)

// OutcomeSource supplies the resolved-outcome history
type OutcomeSource interface {
	All() ([]contracts.Outcome, error)
}

// Learner converts the outcome log into a bounded, explainable
// update to the weight vector
// ⭐ SSOT: 가중치 벡터를 변경하는 유일한 컴포넌트
type Learner struct {
	outcomes OutcomeSource
	repo     Repository
	cfg      *learnconfig.Config

	now func() time.Time
	log zerolog.Logger
}

// NewLearner creates a weight learner
func NewLearner(outcomes OutcomeSource, repo Repository, cfg *learnconfig.Config, log zerolog.Logger) *Learner {
	return &Learner{
		outcomes: outcomes,
		repo:     repo,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("component", "weights.learner").Logger(),
	}
}

// CalculateSignalEV computes win_rate×avg_win − loss_rate×avg_loss for
// one signal at one horizon. Outcome이 아직 없으면 0.
func (l *Learner) CalculateSignalEV(signal contracts.SignalName, horizon contracts.Horizon) (float64, error) {
	history, err := l.outcomes.All()
	if err != nil {
		return 0, fmt.Errorf("read outcome history: %w", err)
	}

	stats := outcome.ComputeStats(history, l.now())
	s, ok := stats[signal]
	if !ok {
		return 0, nil
	}
	return s.ByHorizon[horizon].EV, nil
}

// DetermineBestHorizon returns the EV-maximizing horizon for a signal,
// favoring the first horizon in enumeration order on ties.
func (l *Learner) DetermineBestHorizon(signal contracts.SignalName) (contracts.Horizon, error) {
	history, err := l.outcomes.All()
	if err != nil {
		return "", fmt.Errorf("read outcome history: %w", err)
	}

	stats := outcome.ComputeStats(history, l.now())
	s, ok := stats[signal]
	if !ok {
		return "", nil
	}
	return s.BestHorizon, nil
}

// UpdateWeights recomputes the weight vector from the outcome history.
// 샘플이 임계치 미만인 시그널은 절대 움직이지 않는다 — 얇은 근거로는
// 가중치를 바꾸지 않는 의도적 보수성.
func (l *Learner) UpdateWeights(ctx context.Context) (*contracts.WeightState, error) {
	history, err := l.outcomes.All()
	if err != nil {
		return nil, fmt.Errorf("read outcome history: %w", err)
	}

	prev, err := l.repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load weight state: %w", err)
	}

	now := l.now()
	stats := outcome.ComputeStats(history, now)
	duels := AnalyzeDisagreements(history, l.cfg.Weights.PairWindow)
	combos := AnalyzeCombinations(history, l.cfg.Weights.PairWindow)
	damping := l.cfg.Damping.ActiveMultiplier(now)

	next := &contracts.WeightState{
		Weights:      prev.Weights.Clone(),
		Reasoning:    make(map[contracts.SignalName]string),
		EVByHorizon:  make(map[contracts.SignalName]map[contracts.Horizon]float64),
		BestHorizon:  make(map[contracts.SignalName]contracts.Horizon),
		Combinations: &combos,
		UpdatedAt:    now,
	}

	for _, signal := range contracts.AllSignalNames() {
		s, ok := stats[signal]
		if !ok || s.SampleCount < l.cfg.Weights.MinSamples {
			sampleCount := 0
			if ok {
				sampleCount = s.SampleCount
			}
			next.InsufficientData = append(next.InsufficientData, signal)
			next.Reasoning[signal] = fmt.Sprintf(
				"insufficient data: %d/%d samples, weight unchanged",
				sampleCount, l.cfg.Weights.MinSamples)
			continue
		}

		evTable := make(map[contracts.Horizon]float64)
		for h, hs := range s.ByHorizon {
			evTable[h] = hs.EV
		}
		next.EVByHorizon[signal] = evTable
		next.BestHorizon[signal] = s.BestHorizon

		bestEV := s.ByHorizon[s.BestHorizon].EV

		// EV에 비례한 조정률, 사이클당 ±MaxAdjustmentPct로 제한
		adjustment := clamp(bestEV*l.cfg.Weights.EVScale,
			-l.cfg.Weights.MaxAdjustmentPct, l.cfg.Weights.MaxAdjustmentPct)

		// 불일치 분석 보너스/페널티 (±DisagreementBonus)
		duelBonus := (duels[signal].WinRate() - 0.5) * 2 * l.cfg.Weights.DisagreementBonus
		adjustment += duelBonus

		// 구조 변경 직후에는 감쇠 배율로 축소한 뒤 최종 경계 검사
		adjustment *= damping
		adjustment = clamp(adjustment,
			-l.cfg.Weights.MaxAdjustmentPct, l.cfg.Weights.MaxAdjustmentPct)

		oldWeight := next.Weights[signal]
		newWeight := oldWeight * (1 + adjustment)
		if newWeight < l.cfg.Weights.Floor {
			newWeight = l.cfg.Weights.Floor
		}
		next.Weights[signal] = newWeight

		next.Reasoning[signal] = fmt.Sprintf(
			"ev=%.5f@%s samples=%d duels=%d/%d adj=%+.1f%% weight %.4f→%.4f",
			bestEV, s.BestHorizon, s.SampleCount,
			duels[signal].Wins, duels[signal].Wins+duels[signal].Losses,
			adjustment*100, oldWeight, newWeight)
	}

	normalizeWithFloor(next.Weights, l.cfg.Weights.Floor)

	// 이전 벡터 이력 (길이 제한)
	next.History = append(prev.History, contracts.WeightHistoryEntry{
		Weights:   prev.Weights.Clone(),
		UpdatedAt: prev.UpdatedAt,
	})
	if len(next.History) > l.cfg.Weights.HistoryCap {
		next.History = next.History[len(next.History)-l.cfg.Weights.HistoryCap:]
	}

	if err := l.repo.Save(next); err != nil {
		return nil, fmt.Errorf("save weight state: %w", err)
	}

	l.log.Info().
		Int("outcomes", len(history)).
		Int("insufficient", len(next.InsufficientData)).
		Float64("damping", damping).
		Msg("weights updated")

	return next, nil
}

// normalizeWithFloor rescales the vector to sum to 1 in place while
// keeping every weight at or above the floor. 바닥에 걸린 가중치는
// 고정하고 나머지만 다시 스케일한다: 합 1과 바닥 보장을 동시에 지킨다.
func normalizeWithFloor(w contracts.WeightVector, floor float64) {
	if floor*float64(len(w)) >= 1 {
		// 바닥 합이 1을 넘으면 균등 분배만 가능
		for name := range w {
			w[name] = 1.0 / float64(len(w))
		}
		return
	}

	pinned := make(map[contracts.SignalName]bool, len(w))
	for range w {
		var free, fixed float64
		for name, v := range w {
			if pinned[name] {
				fixed += v
			} else {
				free += v
			}
		}
		if free <= 0 {
			return
		}

		scale := (1 - fixed) / free
		clamped := false
		for name, v := range w {
			if pinned[name] {
				continue
			}
			scaled := v * scale
			if scaled < floor {
				scaled = floor
				pinned[name] = true
				clamped = true
			}
			w[name] = scaled
		}
		if !clamped {
			return
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
