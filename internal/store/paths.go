package store

import "path/filepath"

// Paths resolves every artifact location under the data directory
// ⭐ SSOT: 산출물 파일 경로는 여기서만 조립
type Paths struct {
	Root string
}

// NewPaths creates path resolution rooted at dataDir
func NewPaths(dataDir string) Paths {
	return Paths{Root: dataDir}
}

// Weights is the weight-vector artifact (WeightState)
func (p Paths) Weights() string {
	return filepath.Join(p.Root, "weights.json")
}

// KillCombos is the suppressed symbol+direction list
func (p Paths) KillCombos() string {
	return filepath.Join(p.Root, "kill_combos.json")
}

// LearningState is the latest learning-cycle state
func (p Paths) LearningState() string {
	return filepath.Join(p.Root, "learning_state.json")
}

// Sizing is the conviction-tier multiplier map
func (p Paths) Sizing() string {
	return filepath.Join(p.Root, "sizing.json")
}

// PendingSignals is the Outcome Tracker's durable pending snapshot
func (p Paths) PendingSignals() string {
	return filepath.Join(p.Root, "pending_signals.json")
}

// SignalStats is the derived per-signal aggregate file
func (p Paths) SignalStats() string {
	return filepath.Join(p.Root, "signal_stats.json")
}

// OutcomeLog is the append-only resolved-outcome log
func (p Paths) OutcomeLog() string {
	return filepath.Join(p.Root, "outcomes.jsonl")
}

// RegimeState is the classifier's persisted buffers+cache
func (p Paths) RegimeState() string {
	return filepath.Join(p.Root, "regime_state.json")
}

// RegimeTransitions is the append-only regime-change history
func (p Paths) RegimeTransitions() string {
	return filepath.Join(p.Root, "regime_transitions.jsonl")
}

// CycleAudit is the append-only learning-cycle audit log
func (p Paths) CycleAudit() string {
	return filepath.Join(p.Root, "cycle_audit.jsonl")
}

// Cadence is the persisted last-run timestamps
func (p Paths) Cadence() string {
	return filepath.Join(p.Root, "cadence.json")
}

// SnapshotDir is the root of apply-time snapshots
func (p Paths) SnapshotDir() string {
	return filepath.Join(p.Root, "snapshots")
}

// HistoryDir holds the file-backed trade history fallback
func (p Paths) HistoryDir() string {
	return filepath.Join(p.Root, "history")
}
