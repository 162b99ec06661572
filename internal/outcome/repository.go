package outcome

import (
	"os"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/store"
)

// PendingStore persists the pending-signal set as a complete snapshot.
// append-only가 아니라 항상 자기완결적 스냅샷으로 직렬화한다.
type PendingStore interface {
	Load() ([]contracts.PendingSignal, error)
	Save(pending []contracts.PendingSignal) error
}

// OutcomeLog is the append-only resolved-outcome stream
type OutcomeLog interface {
	Append(o contracts.Outcome) error
	All() ([]contracts.Outcome, error)
}

// StatsStore persists the derived per-signal aggregates
type StatsStore interface {
	Save(stats map[contracts.SignalName]contracts.SignalStats) error
	Load() (map[contracts.SignalName]contracts.SignalStats, error)
}

// =============================================================================
// File-backed implementations
// =============================================================================

// FilePendingStore stores pending signals as one atomic JSON file
type FilePendingStore struct {
	path string
}

// NewFilePendingStore creates a pending store at path
func NewFilePendingStore(path string) *FilePendingStore {
	return &FilePendingStore{path: path}
}

// Load reads the pending snapshot; a missing file is an empty set
func (s *FilePendingStore) Load() ([]contracts.PendingSignal, error) {
	var pending []contracts.PendingSignal
	if err := store.ReadJSON(s.path, &pending); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return pending, nil
}

// Save writes the full snapshot atomically
func (s *FilePendingStore) Save(pending []contracts.PendingSignal) error {
	if pending == nil {
		pending = []contracts.PendingSignal{}
	}
	return store.WriteJSONAtomic(s.path, pending)
}

// FileOutcomeLog is the JSONL-backed outcome stream
type FileOutcomeLog struct {
	log *store.AppendLog
}

// NewFileOutcomeLog opens the outcome log at path
func NewFileOutcomeLog(path string) (*FileOutcomeLog, error) {
	l, err := store.NewAppendLog(path)
	if err != nil {
		return nil, err
	}
	return &FileOutcomeLog{log: l}, nil
}

// Append writes one immutable outcome record
func (l *FileOutcomeLog) Append(o contracts.Outcome) error {
	return l.log.Append(o)
}

// All reads the entire outcome history
func (l *FileOutcomeLog) All() ([]contracts.Outcome, error) {
	return store.ReadAllInto[contracts.Outcome](l.log)
}

// FileStatsStore stores SignalStats as one atomic JSON file
type FileStatsStore struct {
	path string
}

// NewFileStatsStore creates a stats store at path
func NewFileStatsStore(path string) *FileStatsStore {
	return &FileStatsStore{path: path}
}

// Save writes the derived aggregates atomically
func (s *FileStatsStore) Save(stats map[contracts.SignalName]contracts.SignalStats) error {
	return store.WriteJSONAtomic(s.path, stats)
}

// Load reads the derived aggregates; missing file is an empty map
func (s *FileStatsStore) Load() (map[contracts.SignalName]contracts.SignalStats, error) {
	stats := make(map[contracts.SignalName]contracts.SignalStats)
	if err := store.ReadJSON(s.path, &stats); err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, err
	}
	return stats, nil
}
