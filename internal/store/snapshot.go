package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Snapshotter copies mutable configuration artifacts before apply
// and restores them verbatim on rollback.
// ⭐ SSOT: 스냅샷/롤백은 여기서만 수행
type Snapshotter struct {
	paths Paths
}

// NewSnapshotter creates a snapshotter over the artifact paths
func NewSnapshotter(paths Paths) *Snapshotter {
	return &Snapshotter{paths: paths}
}

// snapshotTargets are the artifacts covered by every snapshot
func (s *Snapshotter) snapshotTargets() []string {
	return []string{
		s.paths.Weights(),
		s.paths.KillCombos(),
		s.paths.LearningState(),
	}
}

// Take copies the current artifacts into a timestamped snapshot
// directory and returns its path. 존재하지 않는 파일은 건너뛴다
// (최초 사이클에는 아직 산출물이 없을 수 있음).
// 디렉토리명은 나노초 해상도라 같은 초의 연속 스냅샷도 충돌하지 않는다.
func (s *Snapshotter) Take() (string, error) {
	dir := filepath.Join(s.paths.SnapshotDir(), time.Now().UTC().Format("20060102_150405.000000000"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	for _, target := range s.snapshotTargets() {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			continue
		}
		dst := filepath.Join(dir, filepath.Base(target))
		if err := CopyFile(target, dst); err != nil {
			return "", fmt.Errorf("snapshot %s: %w", target, err)
		}
	}

	return dir, nil
}

// Restore copies every file in the snapshot dir back over the live
// artifacts, bit for bit. 빈 경로면 최신 스냅샷을 사용한다.
func (s *Snapshotter) Restore(snapshotPath string) error {
	if snapshotPath == "" {
		latest, err := s.Latest()
		if err != nil {
			return err
		}
		snapshotPath = latest
	}

	entries, err := os.ReadDir(snapshotPath)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(snapshotPath, entry.Name())
		dst := filepath.Join(s.paths.Root, entry.Name())
		if err := CopyFile(src, dst); err != nil {
			return fmt.Errorf("restore %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// Latest returns the most recent snapshot directory
func (s *Snapshotter) Latest() (string, error) {
	entries, err := os.ReadDir(s.paths.SnapshotDir())
	if err != nil {
		return "", fmt.Errorf("no snapshots available: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	if len(dirs) == 0 {
		return "", fmt.Errorf("no snapshots available")
	}

	// 디렉토리명이 타임스탬프이므로 사전순 정렬이 시간순
	sort.Strings(dirs)
	return filepath.Join(s.paths.SnapshotDir(), dirs[len(dirs)-1]), nil
}
