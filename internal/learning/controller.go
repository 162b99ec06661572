package learning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/learnconfig"
	"github.com/jaylee/argos/internal/store"
)

// Phase names the current stage of a learning cycle
type Phase string

const (
	PhaseIdle         Phase = "IDLE"
	PhaseCapturing    Phase = "CAPTURING"
	PhaseAnalyzing    Phase = "ANALYZING"
	PhaseGenerating   Phase = "GENERATING"
	PhaseSnapshotting Phase = "SNAPSHOTTING"
	PhaseApplying     Phase = "APPLYING"
	PhaseDone         Phase = "DONE"
)

// ErrCycleInProgress is returned when a cycle is requested while
// another one holds the exclusivity lock. 대기하지 않고 즉시 거부한다.
var ErrCycleInProgress = errors.New("learning cycle already in progress")

// TradeSource supplies the raw material of the capture phase
type TradeSource interface {
	TradesBetween(ctx context.Context, from, to time.Time) ([]contracts.ExecutedTrade, error)
	BlockedBetween(ctx context.Context, from, to time.Time) ([]contracts.BlockedSignal, error)
	MissedBetween(ctx context.Context, from, to time.Time) ([]contracts.MissedOpportunity, error)
}

// WeightUpdater runs the weight learner as part of a cycle
type WeightUpdater interface {
	UpdateWeights(ctx context.Context) (*contracts.WeightState, error)
}

// CycleOptions controls a single RunCycle invocation
type CycleOptions struct {
	// DryRun produces adjustments without applying them
	DryRun bool
	// Force runs every cadence regardless of its schedule
	Force bool
}

// Controller orchestrates the capture→analyze→generate→snapshot→apply
// learning cycle over the trade history.
// ⭐ SSOT: 학습 사이클의 진행과 산출물 적용은 이 컴포넌트만 수행
type Controller struct {
	mu sync.Mutex // 사이클 배타 락, TryLock으로 즉시 거부

	phaseMu sync.RWMutex
	phase   Phase

	paths   store.Paths
	snaps   *store.Snapshotter
	audit   *store.AppendLog
	cadence *CadenceTracker

	trades  TradeSource
	weights WeightUpdater
	cfg     *learnconfig.Config

	// 데이터 품질 문제로 캡처에서 제외할 시간 구간
	badDataMu sync.Mutex
	badData   []contracts.BadDataWindow

	now func() time.Time
	log zerolog.Logger
}

// NewController wires a learning controller over the artifact store
func NewController(paths store.Paths, trades TradeSource, weights WeightUpdater, cfg *learnconfig.Config, log zerolog.Logger) (*Controller, error) {
	cadence, err := LoadCadenceTracker(paths.Cadence())
	if err != nil {
		return nil, fmt.Errorf("load cadence tracker: %w", err)
	}
	audit, err := store.NewAppendLog(paths.CycleAudit())
	if err != nil {
		return nil, fmt.Errorf("open cycle audit log: %w", err)
	}
	return &Controller{
		phase:   PhaseIdle,
		paths:   paths,
		snaps:   store.NewSnapshotter(paths),
		audit:   audit,
		cadence: cadence,
		trades:  trades,
		weights: weights,
		cfg:     cfg,
		now:     time.Now,
		log:     log.With().Str("component", "learning.controller").Logger(),
	}, nil
}

// Phase returns the current cycle phase
func (c *Controller) Phase() Phase {
	c.phaseMu.RLock()
	defer c.phaseMu.RUnlock()
	return c.phase
}

func (c *Controller) setPhase(p Phase) {
	c.phaseMu.Lock()
	c.phase = p
	c.phaseMu.Unlock()
	c.log.Info().Str("phase", string(p)).Msg("learning cycle phase")
}

// ExcludeWindow marks a time range as bad data, excluded from capture.
// 진행 중인 사이클과 동시에 호출해도 안전하다.
func (c *Controller) ExcludeWindow(w contracts.BadDataWindow) {
	c.badDataMu.Lock()
	c.badData = append(c.badData, w)
	c.badDataMu.Unlock()
}

// badDataWindows returns a stable copy for one capture pass
func (c *Controller) badDataWindows() []contracts.BadDataWindow {
	c.badDataMu.Lock()
	defer c.badDataMu.Unlock()
	return append([]contracts.BadDataWindow(nil), c.badData...)
}

// RunCycle executes one full learning cycle. A second caller while a
// cycle is running gets ErrCycleInProgress immediately.
func (c *Controller) RunCycle(ctx context.Context, opts CycleOptions) (*contracts.LearningState, error) {
	if !c.mu.TryLock() {
		return nil, ErrCycleInProgress
	}
	defer c.mu.Unlock()
	defer c.setPhase(PhaseIdle)

	now := c.now()
	due := c.cadence.Due(now)
	if opts.Force {
		due = contracts.AllCadences()
	}
	if len(due) == 0 {
		c.log.Debug().Msg("no cadence due, skipping cycle")
		return nil, nil
	}

	configHash, err := learnconfig.Hash(c.cfg)
	if err != nil {
		return nil, fmt.Errorf("hash learning config: %w", err)
	}
	state := &contracts.LearningState{
		CycleID:     fmt.Sprintf("cycle_%s", now.UTC().Format("20060102_150405")),
		StartedAt:   now,
		DryRun:      opts.DryRun,
		DueCadences: due,
		LastRun:     c.cadence.Snapshot(),
		ConfigHash:  configHash,
	}

	// --- Capture -------------------------------------------------------
	c.setPhase(PhaseCapturing)
	captured, err := c.capture(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("capture phase: %w", err)
	}
	state.TradeCount = len(captured.Trades)
	state.BlockedCount = len(captured.Blocked)
	state.MissedCount = len(captured.Missed)

	// --- Analyze -------------------------------------------------------
	c.setPhase(PhaseAnalyzing)
	state.Breakdown = AnalyzeProfit(captured.Trades)

	// --- Generate ------------------------------------------------------
	c.setPhase(PhaseGenerating)
	generated, err := c.generate(ctx, state.Breakdown, due)
	if err != nil {
		return nil, fmt.Errorf("generate phase: %w", err)
	}
	state.Adjustments = generated.Adjustments
	state.Sizing = generated.Sizing

	if opts.DryRun {
		state.DoneAt = c.now()
		c.setPhase(PhaseDone)
		if err := c.finishCycle(state, now, due, false); err != nil {
			return nil, err
		}
		return state, nil
	}

	// --- Snapshot ------------------------------------------------------
	c.setPhase(PhaseSnapshotting)
	snapshotPath, err := c.snaps.Take()
	if err != nil {
		return nil, fmt.Errorf("snapshot phase: %w", err)
	}
	state.SnapshotPath = snapshotPath

	// --- Apply ---------------------------------------------------------
	c.setPhase(PhaseApplying)
	if err := c.apply(ctx, state, generated); err != nil {
		return nil, fmt.Errorf("apply phase: %w", err)
	}

	state.DoneAt = c.now()
	c.setPhase(PhaseDone)
	if err := c.finishCycle(state, now, due, true); err != nil {
		return nil, err
	}

	c.log.Info().
		Str("cycle_id", state.CycleID).
		Int("trades", state.TradeCount).
		Int("adjustments", len(state.Adjustments)).
		Str("snapshot", state.SnapshotPath).
		Msg("learning cycle complete")
	return state, nil
}

// finishCycle persists the cycle state, appends the audit record, and
// advances the cadence clock. Dry run도 감사 로그에는 남긴다.
func (c *Controller) finishCycle(state *contracts.LearningState, now time.Time, due []contracts.Cadence, applied bool) error {
	if err := store.WriteJSONAtomic(c.paths.LearningState(), state); err != nil {
		return fmt.Errorf("persist learning state: %w", err)
	}
	if err := c.audit.Append(state); err != nil {
		return fmt.Errorf("append cycle audit: %w", err)
	}
	if applied {
		for _, cad := range due {
			if err := c.cadence.MarkRun(cad, now); err != nil {
				return fmt.Errorf("mark cadence %s: %w", cad, err)
			}
		}
		state.LastRun = c.cadence.Snapshot()
	}
	return nil
}

// Rollback restores the artifacts from a snapshot, the most recent one
// when path is empty. 진행 중인 사이클과는 동시에 실행될 수 없다.
func (c *Controller) Rollback(path string) error {
	if !c.mu.TryLock() {
		return ErrCycleInProgress
	}
	defer c.mu.Unlock()

	if err := c.snaps.Restore(path); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	c.log.Warn().Str("snapshot", path).Msg("artifacts rolled back from snapshot")
	return nil
}

// LastState loads the most recently persisted cycle state
func (c *Controller) LastState() (*contracts.LearningState, error) {
	var state contracts.LearningState
	if err := store.ReadJSON(c.paths.LearningState(), &state); err != nil {
		return nil, err
	}
	return &state, nil
}
