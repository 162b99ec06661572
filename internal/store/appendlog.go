package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// AppendLog is an append-only JSONL log.
// 레코드 하나가 한 줄이며, 쓰기는 단일 원자적 append이므로
// 읽는 쪽이 반쯤 쓰인 레코드를 관찰하지 않는다.
type AppendLog struct {
	mu   sync.Mutex
	path string
}

// NewAppendLog opens (or prepares) the log at path
func NewAppendLog(path string) (*AppendLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir for %s: %w", path, err)
	}
	return &AppendLog{path: path}, nil
}

// Path returns the log file location
func (l *AppendLog) Path() string {
	return l.path
}

// Append writes one record as a single line
func (l *AppendLog) Append(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal log record: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append %s: %w", l.path, err)
	}

	return f.Sync()
}

// ReadAll decodes every record through decode, one call per line.
// decode가 에러를 반환하면 순회를 중단한다.
func (l *AppendLog) ReadAll(decode func(line []byte) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // 빈 로그
		}
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := decode(line); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// Count returns the number of records in the log
func (l *AppendLog) Count() (int, error) {
	n := 0
	err := l.ReadAll(func([]byte) error {
		n++
		return nil
	})
	return n, err
}

// ReadAllInto is a generic helper decoding every line into T
func ReadAllInto[T any](l *AppendLog) ([]T, error) {
	var out []T
	err := l.ReadAll(func(line []byte) error {
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("decode log record: %w", err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}
