package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaylee/argos/internal/contracts"
)

func TestFileSourceRoundTrip(t *testing.T) {
	src, err := NewFileSource(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, src.SaveTrade(ctx, contracts.ExecutedTrade{
			ID:       string(rune('a' + i)),
			Symbol:   "BTCUSDT",
			PnL:      float64(i),
			ClosedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}
	require.NoError(t, src.SaveBlocked(ctx, contracts.BlockedSignal{
		Symbol: "ETHUSDT", BlockedAt: base,
	}))
	require.NoError(t, src.SaveMissed(ctx, contracts.MissedOpportunity{
		Symbol: "ETHUSDT", MissedPnL: 4.2, MissedAt: base.Add(time.Hour),
	}))

	// 창 안의 두 거래만 반환된다
	trades, err := src.TradesBetween(ctx, base, base.Add(25*time.Hour))
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "a", trades[0].ID)
	assert.Equal(t, "b", trades[1].ID)

	blocked, err := src.BlockedBetween(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, blocked, 1)

	missed, err := src.MissedBetween(ctx, base.Add(2*time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, missed)
}

func TestFileSourceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	closedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	src, err := NewFileSource(dir)
	require.NoError(t, err)
	require.NoError(t, src.SaveTrade(ctx, contracts.ExecutedTrade{ID: "t1", ClosedAt: closedAt}))

	reopened, err := NewFileSource(dir)
	require.NoError(t, err)
	trades, err := reopened.TradesBetween(ctx, closedAt.Add(-time.Hour), closedAt.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "t1", trades[0].ID)
}
