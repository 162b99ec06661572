package outcome

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/pricefeed"
)

// StalenessCeiling is how long a signal may stay pending before it is
// force-closed with whatever horizons resolved so far.
const StalenessCeiling = 2 * time.Hour

// Tracker turns "a signal fired" into "how did price actually move"
// ⭐ SSOT: pending 시그널 집합의 유일한 소유자
type Tracker struct {
	// 단일 배타 락이 메모리 변경과 내구 상태 쓰기를 함께 보호한다
	// (프로듀서의 LogSignal과 해결기의 ResolvePending이 경합).
	mu      sync.Mutex
	pending map[string]*contracts.PendingSignal

	prices pricefeed.Source
	store  PendingStore
	log    OutcomeLog
	stats  StatsStore

	seq  atomic.Uint64
	now  func() time.Time
	zlog zerolog.Logger
}

// NewTracker loads durable pending state and returns a tracker
func NewTracker(prices pricefeed.Source, pendingStore PendingStore, outcomeLog OutcomeLog, statsStore StatsStore, log zerolog.Logger) (*Tracker, error) {
	t := &Tracker{
		pending: make(map[string]*contracts.PendingSignal),
		prices:  prices,
		store:   pendingStore,
		log:     outcomeLog,
		stats:   statsStore,
		now:     time.Now,
		zlog:    log.With().Str("component", "outcome.tracker").Logger(),
	}

	// 크래시 복구: 내구 스냅샷에서 pending 복원
	loaded, err := pendingStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load pending state: %w", err)
	}
	for i := range loaded {
		p := loaded[i]
		if p.ResolvedPrices == nil {
			p.ResolvedPrices = make(map[contracts.Horizon]float64)
		}
		t.pending[p.ID] = &p
	}

	if len(loaded) > 0 {
		t.zlog.Info().Int("pending", len(loaded)).Msg("restored pending signals from durable state")
	}

	return t, nil
}

// LogSignal registers a signal emission for tracking and returns its id.
// NEUTRAL은 추적하지 않고 빈 id를 반환한다.
func (t *Tracker) LogSignal(ctx context.Context, symbol string, signal contracts.SignalName, direction contracts.Direction, confidence, price float64, metadata map[string]string) (string, error) {
	if direction == contracts.DirectionNeutral {
		return "", nil
	}
	if !signal.IsValid() {
		return "", fmt.Errorf("unknown signal name %q", signal)
	}
	if price <= 0 {
		return "", fmt.Errorf("non-positive emission price %v for %s", price, symbol)
	}

	// confidence는 [0,1]로 클램프
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	now := t.now()
	id := fmt.Sprintf("%s_%s_%d_%d", signal, symbol, now.UnixNano(), t.seq.Add(1))

	p := &contracts.PendingSignal{
		ID:             id,
		EmittedAt:      now,
		Symbol:         symbol,
		Signal:         signal,
		Direction:      direction,
		Confidence:     confidence,
		EntryPrice:     price,
		Metadata:       metadata,
		ResolvedPrices: make(map[contracts.Horizon]float64),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending[id] = p
	if err := t.persistPendingLocked(); err != nil {
		delete(t.pending, id)
		return "", fmt.Errorf("persist pending state: %w", err)
	}

	t.zlog.Debug().
		Str("id", id).
		Str("symbol", symbol).
		Str("signal", string(signal)).
		Str("direction", string(direction)).
		Float64("confidence", confidence).
		Float64("price", price).
		Msg("signal logged for tracking")

	return id, nil
}

// ResolvePending resolves every due horizon of every pending signal and
// force-closes signals past the staleness ceiling as partial outcomes.
func (t *Tracker) ResolvePending(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var completed []*contracts.PendingSignal
	var resolvedAny bool

	for _, p := range t.pending {
		for _, h := range contracts.AllHorizons() {
			if p.IsResolved(h) {
				continue // 이미 해결된 호라이즌은 no-op
			}
			if now.Before(p.EmittedAt.Add(h.Duration())) {
				continue // 아직 목표 시각 전
			}

			price, err := t.prices.CurrentPrice(ctx, p.Symbol)
			if err != nil {
				// 조회 실패는 로컬 복구 대상: 다음 해결 주기에 재시도
				t.zlog.Warn().Err(err).
					Str("id", p.ID).
					Str("horizon", string(h)).
					Msg("price lookup failed, horizon left unresolved")
				continue
			}

			p.ResolvedPrices[h] = price
			resolvedAny = true
		}

		switch {
		case p.FullyResolved():
			completed = append(completed, p)
		case now.Sub(p.EmittedAt) > StalenessCeiling:
			// 2시간 한도: 부분 outcome으로 강제 마감
			completed = append(completed, p)
		}
	}

	for _, p := range completed {
		partial := !p.FullyResolved()
		o := buildOutcome(p, now, partial)

		if err := t.log.Append(o); err != nil {
			// 로그 쓰기 실패 시 pending에 남겨 다음 주기에 재시도.
			// Outcome은 pending 제거와 같은 주기에만 쓰이므로 중복 기록은 없다.
			t.zlog.Error().Err(err).Str("id", p.ID).Msg("outcome append failed")
			continue
		}

		delete(t.pending, p.ID)
		resolvedAny = true

		t.zlog.Info().
			Str("id", p.ID).
			Str("symbol", p.Symbol).
			Str("signal", string(p.Signal)).
			Bool("partial", partial).
			Float64("ev_contribution", o.EVContribution).
			Msg("outcome recorded")

		// 파생 파일은 매 기록마다 전체 이력에서 재계산
		if err := t.refreshStatsLocked(); err != nil {
			t.zlog.Error().Err(err).Msg("stats refresh failed")
		}
	}

	if resolvedAny {
		if err := t.persistPendingLocked(); err != nil {
			return fmt.Errorf("persist pending state: %w", err)
		}
	}

	return nil
}

// PendingCount returns the number of signals awaiting resolution
func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// persistPendingLocked snapshots the pending set. Caller holds mu.
func (t *Tracker) persistPendingLocked() error {
	snapshot := make([]contracts.PendingSignal, 0, len(t.pending))
	for _, p := range t.pending {
		snapshot = append(snapshot, *p)
	}
	return t.store.Save(snapshot)
}

// refreshStatsLocked recomputes SignalStats wholesale. Caller holds mu.
func (t *Tracker) refreshStatsLocked() error {
	outcomes, err := t.log.All()
	if err != nil {
		return fmt.Errorf("read outcome log: %w", err)
	}
	return t.stats.Save(ComputeStats(outcomes, t.now()))
}

// buildOutcome converts a pending signal into an immutable record
func buildOutcome(p *contracts.PendingSignal, resolvedAt time.Time, partial bool) contracts.Outcome {
	results := make(map[contracts.Horizon]contracts.HorizonResult, len(p.ResolvedPrices))

	var weightedSum, totalWeight float64
	for h, resolvedPrice := range p.ResolvedPrices {
		rawReturn := (resolvedPrice - p.EntryPrice) / p.EntryPrice

		// 방향 부호 보정: SHORT은 하락이 이익
		signed := rawReturn
		if p.Direction == contracts.DirectionShort {
			signed = -rawReturn
		}
		hit := signed > 0

		results[h] = contracts.HorizonResult{
			ResolvedPrice: resolvedPrice,
			Return:        signed,
			Hit:           hit,
		}

		w := h.Weight()
		abs := signed
		if abs < 0 {
			abs = -abs
		}
		if hit {
			weightedSum += w * abs
		} else {
			weightedSum -= w * abs
		}
		totalWeight += w
	}

	var ev float64
	if totalWeight > 0 {
		ev = weightedSum / totalWeight * p.Confidence
	}

	return contracts.Outcome{
		ID:             p.ID,
		EmittedAt:      p.EmittedAt,
		ResolvedAt:     resolvedAt,
		Symbol:         p.Symbol,
		Signal:         p.Signal,
		Direction:      p.Direction,
		Confidence:     p.Confidence,
		EntryPrice:     p.EntryPrice,
		Metadata:       p.Metadata,
		Results:        results,
		EVContribution: ev,
		Partial:        partial,
	}
}
