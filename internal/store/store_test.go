package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

func TestWriteJSONAtomic_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.json")

	in := testRecord{ID: "a", Value: 1.25}
	require.NoError(t, WriteJSONAtomic(path, in))

	// 임시 파일이 남아 있으면 안 됨
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")

	var out testRecord
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, in, out)
}

func TestAppendLog_AppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	log, err := NewAppendLog(filepath.Join(dir, "events.jsonl"))
	require.NoError(t, err)

	require.NoError(t, log.Append(testRecord{ID: "one", Value: 1}))
	require.NoError(t, log.Append(testRecord{ID: "two", Value: 2}))

	records, err := ReadAllInto[testRecord](log)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "one", records[0].ID)
	assert.Equal(t, "two", records[1].ID)

	n, err := log.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAppendLog_EmptyLog(t *testing.T) {
	dir := t.TempDir()
	log, err := NewAppendLog(filepath.Join(dir, "missing.jsonl"))
	require.NoError(t, err)

	records, err := ReadAllInto[testRecord](log)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSnapshotter_TakeAndRestore(t *testing.T) {
	dir := t.TempDir()
	paths := NewPaths(dir)
	snap := NewSnapshotter(paths)

	require.NoError(t, WriteJSONAtomic(paths.Weights(), testRecord{ID: "w", Value: 0.5}))
	require.NoError(t, WriteJSONAtomic(paths.KillCombos(), []testRecord{{ID: "k"}}))

	before, err := os.ReadFile(paths.Weights())
	require.NoError(t, err)

	snapDir, err := snap.Take()
	require.NoError(t, err)

	// 산출물을 변조한 뒤 롤백
	require.NoError(t, WriteJSONAtomic(paths.Weights(), testRecord{ID: "mutated", Value: 9}))
	require.NoError(t, snap.Restore(snapDir))

	after, err := os.ReadFile(paths.Weights())
	require.NoError(t, err)
	assert.Equal(t, before, after, "rollback must restore bit-for-bit")
}

func TestSnapshotter_RestoreLatest(t *testing.T) {
	dir := t.TempDir()
	paths := NewPaths(dir)
	snap := NewSnapshotter(paths)

	require.NoError(t, WriteJSONAtomic(paths.Weights(), testRecord{ID: "v1"}))
	_, err := snap.Take()
	require.NoError(t, err)

	require.NoError(t, WriteJSONAtomic(paths.Weights(), testRecord{ID: "v2"}))

	// 경로 생략 시 최신 스냅샷으로 복원
	require.NoError(t, snap.Restore(""))

	var got testRecord
	require.NoError(t, ReadJSON(paths.Weights(), &got))
	assert.Equal(t, "v1", got.ID)
}

func TestSnapshotter_RapidTakesGetDistinctDirs(t *testing.T) {
	dir := t.TempDir()
	paths := NewPaths(dir)
	snap := NewSnapshotter(paths)

	require.NoError(t, WriteJSONAtomic(paths.Weights(), testRecord{ID: "v1"}))
	first, err := snap.Take()
	require.NoError(t, err)

	require.NoError(t, WriteJSONAtomic(paths.Weights(), testRecord{ID: "v2"}))
	second, err := snap.Take()
	require.NoError(t, err)

	// 같은 초 안의 연속 스냅샷이 서로를 덮어쓰지 않는다
	require.NotEqual(t, first, second)

	require.NoError(t, snap.Restore(""))
	var got testRecord
	require.NoError(t, ReadJSON(paths.Weights(), &got))
	assert.Equal(t, "v2", got.ID)
}

func TestSnapshotter_NoSnapshots(t *testing.T) {
	paths := NewPaths(t.TempDir())
	snap := NewSnapshotter(paths)

	err := snap.Restore("")
	require.Error(t, err)
}
