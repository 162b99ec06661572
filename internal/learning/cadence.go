package learning

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/store"
)

// CadenceTracker persists per-cadence last-run timestamps so restarts
// do not reset the learning schedule.
// ⭐ SSOT: 케이던스 도래 판정은 이 컴포넌트만 수행
type CadenceTracker struct {
	mu      sync.Mutex
	path    string
	lastRun map[contracts.Cadence]time.Time
}

// LoadCadenceTracker restores the tracker from disk, empty when absent
func LoadCadenceTracker(path string) (*CadenceTracker, error) {
	t := &CadenceTracker{
		path:    path,
		lastRun: make(map[contracts.Cadence]time.Time),
	}
	if err := store.ReadJSON(path, &t.lastRun); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load cadence state: %w", err)
		}
	}
	return t, nil
}

// Due returns every cadence whose interval has elapsed since its last
// run. 한 번도 실행되지 않은 케이던스는 항상 도래 상태다.
func (t *CadenceTracker) Due(now time.Time) []contracts.Cadence {
	t.mu.Lock()
	defer t.mu.Unlock()

	var due []contracts.Cadence
	for _, c := range contracts.AllCadences() {
		last, ok := t.lastRun[c]
		if !ok || now.Sub(last) >= c.Interval() {
			due = append(due, c)
		}
	}
	return due
}

// MarkRun records a cadence execution and persists the schedule
func (t *CadenceTracker) MarkRun(c contracts.Cadence, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastRun[c] = at
	if err := store.WriteJSONAtomic(t.path, t.lastRun); err != nil {
		return fmt.Errorf("persist cadence state: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the last-run map
func (t *CadenceTracker) Snapshot() map[contracts.Cadence]time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[contracts.Cadence]time.Time, len(t.lastRun))
	for c, at := range t.lastRun {
		out[c] = at
	}
	return out
}
