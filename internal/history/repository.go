package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaylee/argos/internal/contracts"
)

// Repository 거래 이력 저장소 (PostgreSQL)
// ⭐ SSOT: 체결/차단/기회비용 이력의 DB 접근은 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveTrade 체결 거래 저장
func (r *Repository) SaveTrade(ctx context.Context, trade contracts.ExecutedTrade) error {
	metadata, err := json.Marshal(trade.Metadata)
	if err != nil {
		return err
	}

	signals := make([]string, len(trade.Signals))
	for i, s := range trade.Signals {
		signals[i] = string(s)
	}

	query := `
		INSERT INTO trading.executed_trades
			(id, symbol, direction, pnl, confidence, tier, regime, signals, closed_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`

	_, err = r.pool.Exec(ctx, query,
		trade.ID, trade.Symbol, string(trade.Direction), trade.PnL,
		trade.Confidence, string(trade.Tier), trade.Regime,
		signals, trade.ClosedAt, metadata,
	)
	return err
}

// SaveBlocked 차단된 시그널 저장
func (r *Repository) SaveBlocked(ctx context.Context, blocked contracts.BlockedSignal) error {
	query := `
		INSERT INTO trading.blocked_signals (symbol, direction, reason, blocked_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query,
		blocked.Symbol, string(blocked.Direction), blocked.Reason, blocked.BlockedAt)
	return err
}

// SaveMissed 놓친 기회 저장
func (r *Repository) SaveMissed(ctx context.Context, missed contracts.MissedOpportunity) error {
	query := `
		INSERT INTO trading.missed_opportunities (symbol, direction, missed_pnl, missed_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query,
		missed.Symbol, string(missed.Direction), missed.MissedPnL, missed.MissedAt)
	return err
}

// TradesBetween 기간 내 체결 거래 조회
func (r *Repository) TradesBetween(ctx context.Context, from, to time.Time) ([]contracts.ExecutedTrade, error) {
	query := `
		SELECT id, symbol, direction, pnl, confidence, tier, regime, signals, closed_at, metadata
		FROM trading.executed_trades
		WHERE closed_at >= $1 AND closed_at <= $2
		ORDER BY closed_at`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.ExecutedTrade
	for rows.Next() {
		var t contracts.ExecutedTrade
		var direction, tier string
		var signals []string
		var metadata []byte

		if err := rows.Scan(&t.ID, &t.Symbol, &direction, &t.PnL, &t.Confidence,
			&tier, &t.Regime, &signals, &t.ClosedAt, &metadata); err != nil {
			return nil, err
		}
		t.Direction = contracts.Direction(direction)
		t.Tier = contracts.ConvictionTier(tier)
		for _, s := range signals {
			t.Signals = append(t.Signals, contracts.SignalName(s))
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// BlockedBetween 기간 내 차단 시그널 조회
func (r *Repository) BlockedBetween(ctx context.Context, from, to time.Time) ([]contracts.BlockedSignal, error) {
	query := `
		SELECT symbol, direction, reason, blocked_at
		FROM trading.blocked_signals
		WHERE blocked_at >= $1 AND blocked_at <= $2
		ORDER BY blocked_at`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTimed(rows, func(rows pgx.Rows) (contracts.BlockedSignal, error) {
		var b contracts.BlockedSignal
		var direction string
		err := rows.Scan(&b.Symbol, &direction, &b.Reason, &b.BlockedAt)
		b.Direction = contracts.Direction(direction)
		return b, err
	})
}

// MissedBetween 기간 내 놓친 기회 조회
func (r *Repository) MissedBetween(ctx context.Context, from, to time.Time) ([]contracts.MissedOpportunity, error) {
	query := `
		SELECT symbol, direction, missed_pnl, missed_at
		FROM trading.missed_opportunities
		WHERE missed_at >= $1 AND missed_at <= $2
		ORDER BY missed_at`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTimed(rows, func(rows pgx.Rows) (contracts.MissedOpportunity, error) {
		var m contracts.MissedOpportunity
		var direction string
		err := rows.Scan(&m.Symbol, &direction, &m.MissedPnL, &m.MissedAt)
		m.Direction = contracts.Direction(direction)
		return m, err
	})
}

func scanTimed[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
