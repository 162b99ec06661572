package learning

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/learnconfig"
	"github.com/jaylee/argos/internal/store"
)

type fakeSource struct {
	trades  []contracts.ExecutedTrade
	blocked []contracts.BlockedSignal
	missed  []contracts.MissedOpportunity
}

func (f *fakeSource) TradesBetween(_ context.Context, from, to time.Time) ([]contracts.ExecutedTrade, error) {
	var out []contracts.ExecutedTrade
	for _, t := range f.trades {
		if !t.ClosedAt.Before(from) && !t.ClosedAt.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeSource) BlockedBetween(_ context.Context, _, _ time.Time) ([]contracts.BlockedSignal, error) {
	return f.blocked, nil
}

func (f *fakeSource) MissedBetween(_ context.Context, _, _ time.Time) ([]contracts.MissedOpportunity, error) {
	return f.missed, nil
}

type fakeUpdater struct {
	calls int
}

func (f *fakeUpdater) UpdateWeights(_ context.Context) (*contracts.WeightState, error) {
	f.calls++
	return contracts.NewWeightState(), nil
}

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// losingTrades builds count trades for one combo with the given number
// of winners, closed inside the capture window.
func losingTrades(symbol string, dir contracts.Direction, count, wins int) []contracts.ExecutedTrade {
	var out []contracts.ExecutedTrade
	for i := 0; i < count; i++ {
		pnl := -10.0
		if i < wins {
			pnl = 5.0
		}
		out = append(out, contracts.ExecutedTrade{
			ID:        symbol + string(rune('a'+i%26)),
			Symbol:    symbol,
			Direction: dir,
			PnL:       pnl,
			Tier:      contracts.TierMedium,
			ClosedAt:  testNow.Add(-time.Duration(i+1) * time.Hour),
		})
	}
	return out
}

func newTestController(t *testing.T, source TradeSource, updater WeightUpdater) (*Controller, store.Paths) {
	t.Helper()
	paths := store.NewPaths(t.TempDir())
	c, err := NewController(paths, source, updater, learnconfig.Default(), zerolog.Nop())
	require.NoError(t, err)
	c.now = func() time.Time { return testNow }
	return c, paths
}

func TestRunCycleFull(t *testing.T) {
	// BBBUSDT:SHORT은 25거래 승률 20%에 누적 손실이므로 억제 대상
	source := &fakeSource{trades: losingTrades("BBBUSDT", contracts.DirectionShort, 25, 5)}
	updater := &fakeUpdater{}
	c, paths := newTestController(t, source, updater)

	state, err := c.RunCycle(context.Background(), CycleOptions{Force: true})
	require.NoError(t, err)
	require.NotNil(t, state)

	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, 25, state.TradeCount)
	assert.False(t, state.DryRun)
	assert.NotEmpty(t, state.SnapshotPath)
	assert.NotEmpty(t, state.ConfigHash)
	assert.Equal(t, 1, updater.calls)

	for _, adj := range state.Adjustments {
		assert.True(t, adj.Applied, "adjustment %s/%s not applied", adj.Target, adj.Key)
	}

	var kills []contracts.KillCombo
	require.NoError(t, store.ReadJSON(paths.KillCombos(), &kills))
	require.Len(t, kills, 1)
	assert.Equal(t, contracts.ComboKey{Symbol: "BBBUSDT", Direction: contracts.DirectionShort}, kills[0].Combo)
	assert.Equal(t, 25, kills[0].Trades)

	// 사이클 상태와 감사 로그가 영속화된다
	persisted, err := c.LastState()
	require.NoError(t, err)
	assert.Equal(t, state.CycleID, persisted.CycleID)

	audit, err := store.NewAppendLog(paths.CycleAudit())
	require.NoError(t, err)
	count, err := audit.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunCycleDryRun(t *testing.T) {
	source := &fakeSource{trades: losingTrades("BBBUSDT", contracts.DirectionShort, 25, 5)}
	updater := &fakeUpdater{}
	c, paths := newTestController(t, source, updater)

	state, err := c.RunCycle(context.Background(), CycleOptions{DryRun: true, Force: true})
	require.NoError(t, err)
	require.NotNil(t, state)

	assert.True(t, state.DryRun)
	assert.Empty(t, state.SnapshotPath)
	assert.Zero(t, updater.calls)
	for _, adj := range state.Adjustments {
		assert.False(t, adj.Applied)
	}

	// 어떤 산출물도 갱신되지 않는다
	_, err = os.Stat(paths.KillCombos())
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(paths.Sizing())
	assert.True(t, os.IsNotExist(err))
}

func TestRunCycleRejectsConcurrent(t *testing.T) {
	c, _ := newTestController(t, &fakeSource{}, &fakeUpdater{})

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.RunCycle(context.Background(), CycleOptions{Force: true})
	assert.ErrorIs(t, err, ErrCycleInProgress)
	assert.ErrorIs(t, c.Rollback(""), ErrCycleInProgress)
}

func TestRunCycleSkipsWhenNothingDue(t *testing.T) {
	c, _ := newTestController(t, &fakeSource{}, &fakeUpdater{})

	state, err := c.RunCycle(context.Background(), CycleOptions{Force: true})
	require.NoError(t, err)
	require.NotNil(t, state)

	// 방금 전부 실행했으므로 같은 시각에는 아무 케이던스도 도래하지 않는다
	state, err = c.RunCycle(context.Background(), CycleOptions{})
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestRunCycleExcludesBadDataWindows(t *testing.T) {
	trades := losingTrades("CCCUSDT", contracts.DirectionLong, 10, 5)
	source := &fakeSource{trades: trades}
	c, _ := newTestController(t, source, &fakeUpdater{})

	// 최근 5시간을 불량 데이터 구간으로 지정 → 5건 제외
	c.ExcludeWindow(contracts.BadDataWindow{
		From:   testNow.Add(-5 * time.Hour),
		To:     testNow,
		Reason: "exchange outage",
	})

	state, err := c.RunCycle(context.Background(), CycleOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 5, state.TradeCount)
}

func TestExcludeWindowConcurrentWithCycle(t *testing.T) {
	source := &fakeSource{trades: losingTrades("CCCUSDT", contracts.DirectionLong, 10, 5)}
	c, _ := newTestController(t, source, &fakeUpdater{})

	// 사이클 도중에 구간을 추가해도 레이스 없이 동작해야 한다
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			from := testNow.Add(-time.Duration(i+30*24) * time.Hour)
			c.ExcludeWindow(contracts.BadDataWindow{
				From:   from,
				To:     from.Add(30 * time.Minute),
				Reason: "feed gap",
			})
		}
	}()

	_, err := c.RunCycle(context.Background(), CycleOptions{Force: true})
	wg.Wait()
	require.NoError(t, err)
}

func TestRollbackRestoresSnapshot(t *testing.T) {
	source := &fakeSource{trades: losingTrades("BBBUSDT", contracts.DirectionShort, 25, 5)}
	c, paths := newTestController(t, source, &fakeUpdater{})

	before := contracts.NewWeightState()
	require.NoError(t, store.WriteJSONAtomic(paths.Weights(), before))
	original, err := os.ReadFile(paths.Weights())
	require.NoError(t, err)

	state, err := c.RunCycle(context.Background(), CycleOptions{Force: true})
	require.NoError(t, err)
	require.NotEmpty(t, state.SnapshotPath)

	// 적용 후 가중치 파일이 바뀌었다고 가정
	require.NoError(t, os.WriteFile(paths.Weights(), []byte(`{"broken":true}`), 0o644))

	require.NoError(t, c.Rollback(""))

	restored, err := os.ReadFile(paths.Weights())
	require.NoError(t, err)
	assert.Equal(t, original, restored, "rollback must be bit-for-bit")
}

func TestCadenceTrackerPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.json")

	tracker, err := LoadCadenceTracker(path)
	require.NoError(t, err)
	assert.Len(t, tracker.Due(testNow), 3, "never-run cadences are all due")

	require.NoError(t, tracker.MarkRun(contracts.CadenceFast, testNow))
	assert.NotContains(t, tracker.Due(testNow.Add(10*time.Minute)), contracts.CadenceFast)
	assert.Contains(t, tracker.Due(testNow.Add(31*time.Minute)), contracts.CadenceFast)

	// 재시작해도 스케줄이 유지된다
	reloaded, err := LoadCadenceTracker(path)
	require.NoError(t, err)
	assert.NotContains(t, reloaded.Due(testNow.Add(10*time.Minute)), contracts.CadenceFast)
	assert.Contains(t, reloaded.Due(testNow.Add(10*time.Minute)), contracts.CadenceDaily)
}

func TestWeightUpdateOnlyOnDailyCadence(t *testing.T) {
	updater := &fakeUpdater{}
	c, _ := newTestController(t, &fakeSource{}, updater)

	// fast만 도래하도록 daily/weekly를 방금 실행된 것으로 기록
	require.NoError(t, c.cadence.MarkRun(contracts.CadenceDaily, testNow))
	require.NoError(t, c.cadence.MarkRun(contracts.CadenceWeekly, testNow))

	state, err := c.RunCycle(context.Background(), CycleOptions{})
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, []contracts.Cadence{contracts.CadenceFast}, state.DueCadences)
	assert.Zero(t, updater.calls)
}
