package history

import (
	"context"
	"path/filepath"
	"time"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/store"
)

// FileSource is the JSONL-backed trade history used when the database
// is disabled. 같은 인터페이스를 구현하므로 상위 계층은 차이를 모른다.
type FileSource struct {
	trades  *store.AppendLog
	blocked *store.AppendLog
	missed  *store.AppendLog
}

// NewFileSource opens the history logs under dir
func NewFileSource(dir string) (*FileSource, error) {
	trades, err := store.NewAppendLog(filepath.Join(dir, "trades.jsonl"))
	if err != nil {
		return nil, err
	}
	blocked, err := store.NewAppendLog(filepath.Join(dir, "blocked.jsonl"))
	if err != nil {
		return nil, err
	}
	missed, err := store.NewAppendLog(filepath.Join(dir, "missed.jsonl"))
	if err != nil {
		return nil, err
	}
	return &FileSource{trades: trades, blocked: blocked, missed: missed}, nil
}

// SaveTrade 체결 거래 기록
func (f *FileSource) SaveTrade(_ context.Context, trade contracts.ExecutedTrade) error {
	return f.trades.Append(trade)
}

// SaveBlocked 차단된 시그널 기록
func (f *FileSource) SaveBlocked(_ context.Context, blocked contracts.BlockedSignal) error {
	return f.blocked.Append(blocked)
}

// SaveMissed 놓친 기회 기록
func (f *FileSource) SaveMissed(_ context.Context, missed contracts.MissedOpportunity) error {
	return f.missed.Append(missed)
}

// TradesBetween 기간 내 체결 거래 조회
func (f *FileSource) TradesBetween(_ context.Context, from, to time.Time) ([]contracts.ExecutedTrade, error) {
	all, err := store.ReadAllInto[contracts.ExecutedTrade](f.trades)
	if err != nil {
		return nil, err
	}
	return filterBetween(all, from, to, func(t contracts.ExecutedTrade) time.Time { return t.ClosedAt }), nil
}

// BlockedBetween 기간 내 차단 시그널 조회
func (f *FileSource) BlockedBetween(_ context.Context, from, to time.Time) ([]contracts.BlockedSignal, error) {
	all, err := store.ReadAllInto[contracts.BlockedSignal](f.blocked)
	if err != nil {
		return nil, err
	}
	return filterBetween(all, from, to, func(b contracts.BlockedSignal) time.Time { return b.BlockedAt }), nil
}

// MissedBetween 기간 내 놓친 기회 조회
func (f *FileSource) MissedBetween(_ context.Context, from, to time.Time) ([]contracts.MissedOpportunity, error) {
	all, err := store.ReadAllInto[contracts.MissedOpportunity](f.missed)
	if err != nil {
		return nil, err
	}
	return filterBetween(all, from, to, func(m contracts.MissedOpportunity) time.Time { return m.MissedAt }), nil
}

func filterBetween[T any](items []T, from, to time.Time, at func(T) time.Time) []T {
	var out []T
	for _, item := range items {
		ts := at(item)
		if !ts.Before(from) && !ts.After(to) {
			out = append(out, item)
		}
	}
	return out
}
