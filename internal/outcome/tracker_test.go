package outcome

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/store"
)

// scriptedPrices serves a settable price per symbol, or an error
type scriptedPrices struct {
	price float64
	err   error
}

func (s *scriptedPrices) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.price, nil
}

type trackerFixture struct {
	tracker *Tracker
	prices  *scriptedPrices
	log     *FileOutcomeLog
	pending *FilePendingStore
	clock   time.Time
}

func newFixture(t *testing.T) *trackerFixture {
	t.Helper()

	paths := store.NewPaths(t.TempDir())
	pendingStore := NewFilePendingStore(paths.PendingSignals())
	outcomeLog, err := NewFileOutcomeLog(paths.OutcomeLog())
	require.NoError(t, err)
	statsStore := NewFileStatsStore(paths.SignalStats())

	prices := &scriptedPrices{price: 100}
	tracker, err := NewTracker(prices, pendingStore, outcomeLog, statsStore, zerolog.Nop())
	require.NoError(t, err)

	f := &trackerFixture{
		tracker: tracker,
		prices:  prices,
		log:     outcomeLog,
		pending: pendingStore,
		clock:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	tracker.now = func() time.Time { return f.clock }
	return f
}

func (f *trackerFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func TestLogSignal_RejectsNeutral(t *testing.T) {
	f := newFixture(t)

	id, err := f.tracker.LogSignal(context.Background(), "BTCUSDT", contracts.SignalMomentum, contracts.DirectionNeutral, 0.9, 100, nil)
	require.NoError(t, err)
	assert.Empty(t, id, "NEUTRAL must not be tracked")
	assert.Zero(t, f.tracker.PendingCount())
}

func TestLogSignal_ClampsConfidence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.tracker.LogSignal(ctx, "BTCUSDT", contracts.SignalMomentum, contracts.DirectionLong, 1.7, 100, nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	pending, err := f.pending.Load()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1.0, pending[0].Confidence)
}

func TestLogSignal_RejectsUnknownSignal(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.LogSignal(context.Background(), "BTCUSDT", contracts.SignalName("astro"), contracts.DirectionLong, 0.5, 100, nil)
	require.Error(t, err)
}

// 스펙 시나리오: LONG AAAUSDT @100, conf 0.8, 각 호라이즌 가격 101..105.
// 다섯 호라이즌 모두 hit, 수익률 양수, ev_contribution > 0, 로그에 정확히 1건.
func TestResolvePending_FullScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.tracker.LogSignal(ctx, "AAAUSDT", contracts.SignalBreakout, contracts.DirectionLong, 0.8, 100, nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	forward := map[contracts.Horizon]float64{
		contracts.Horizon1m:  101,
		contracts.Horizon5m:  102,
		contracts.Horizon15m: 103,
		contracts.Horizon30m: 104,
		contracts.Horizon1h:  105,
	}

	base := f.clock
	for _, h := range contracts.AllHorizons() {
		f.clock = base.Add(h.Duration())
		f.prices.price = forward[h]
		require.NoError(t, f.tracker.ResolvePending(ctx))
	}

	outcomes, err := f.log.All()
	require.NoError(t, err)
	require.Len(t, outcomes, 1, "record must appear exactly once")

	o := outcomes[0]
	assert.Equal(t, id, o.ID)
	assert.False(t, o.Partial)
	require.Len(t, o.Results, 5)
	for h, r := range o.Results {
		assert.True(t, r.Hit, "horizon %s must be a hit", h)
		assert.Greater(t, r.Return, 0.0, "horizon %s return must be positive", h)
	}
	assert.Greater(t, o.EVContribution, 0.0)

	assert.Zero(t, f.tracker.PendingCount())
}

func TestResolvePending_ShortDirectionSignAdjusted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.LogSignal(ctx, "ETHUSDT", contracts.SignalMeanReversion, contracts.DirectionShort, 0.6, 100, nil)
	require.NoError(t, err)

	// 가격 하락: SHORT 예측 적중
	f.prices.price = 95
	f.advance(time.Hour + time.Minute)
	require.NoError(t, f.tracker.ResolvePending(ctx))

	outcomes, err := f.log.All()
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	for h, r := range outcomes[0].Results {
		assert.True(t, r.Hit, "horizon %s", h)
		assert.InDelta(t, 0.05, r.Return, 1e-9)
	}
	assert.Greater(t, outcomes[0].EVContribution, 0.0)
}

// 멱등성: 이미 해결된 호라이즌은 가격이 바뀐 뒤 재호출해도 재해결되지 않는다
func TestResolvePending_IdempotentResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.LogSignal(ctx, "BTCUSDT", contracts.SignalMomentum, contracts.DirectionLong, 0.5, 100, nil)
	require.NoError(t, err)

	f.advance(time.Minute + time.Second)
	f.prices.price = 110
	require.NoError(t, f.tracker.ResolvePending(ctx))

	f.prices.price = 50
	require.NoError(t, f.tracker.ResolvePending(ctx))

	pending, err := f.pending.Load()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 110.0, pending[0].ResolvedPrices[contracts.Horizon1m], "resolved horizon must not be re-resolved")
}

// 2시간 staleness: 일부 호라이즌만 해결된 시그널이 정확히 한 번
// 부분 outcome으로 강제 마감되고 pending에서 사라진다
func TestResolvePending_StalenessClosure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.LogSignal(ctx, "SOLUSDT", contracts.SignalVolumeSpike, contracts.DirectionLong, 0.7, 100, nil)
	require.NoError(t, err)

	// 1m, 5m만 해결
	f.prices.price = 101
	f.advance(5*time.Minute + time.Second)
	require.NoError(t, f.tracker.ResolvePending(ctx))

	// 이후 가격 조회 불가 상태로 2시간 경과
	f.prices.err = errors.New("feed down")
	f.advance(2*time.Hour + time.Minute)
	require.NoError(t, f.tracker.ResolvePending(ctx))

	outcomes, err := f.log.All()
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Partial)
	assert.Len(t, outcomes[0].Results, 2)
	assert.Zero(t, f.tracker.PendingCount())

	// 재호출해도 중복 기록 없음
	require.NoError(t, f.tracker.ResolvePending(ctx))
	outcomes, err = f.log.All()
	require.NoError(t, err)
	assert.Len(t, outcomes, 1)
}

// 조회 실패는 전파되지 않고 호라이즌이 미해결로 남는다
func TestResolvePending_LookupFailureLeavesPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.LogSignal(ctx, "BTCUSDT", contracts.SignalFundingSkew, contracts.DirectionLong, 0.5, 100, nil)
	require.NoError(t, err)

	f.prices.err = errors.New("timeout")
	f.advance(2 * time.Minute)
	require.NoError(t, f.tracker.ResolvePending(ctx))

	assert.Equal(t, 1, f.tracker.PendingCount())
}

// 크래시 복구: 새 Tracker가 내구 스냅샷에서 pending을 복원한다
func TestNewTracker_RestoresPendingState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tracker.LogSignal(ctx, "BTCUSDT", contracts.SignalMomentum, contracts.DirectionLong, 0.5, 100, nil)
	require.NoError(t, err)

	statsStore := NewFileStatsStore(f.pending.path + ".stats")
	restored, err := NewTracker(f.prices, f.pending, f.log, statsStore, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, restored.PendingCount())
}
