package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/jaylee/argos/internal/contracts"
)

// captureResult is the filtered raw material of one cycle
type captureResult struct {
	From    time.Time
	To      time.Time
	Trades  []contracts.ExecutedTrade
	Blocked []contracts.BlockedSignal
	Missed  []contracts.MissedOpportunity
}

// capture pulls the lookback window of trades, blocked signals, and
// missed opportunities, dropping anything inside a bad-data window.
func (c *Controller) capture(ctx context.Context, now time.Time) (*captureResult, error) {
	to := now
	from := to.AddDate(0, 0, -c.cfg.Capture.LookbackDays)

	trades, err := c.trades.TradesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}
	blocked, err := c.trades.BlockedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch blocked signals: %w", err)
	}
	missed, err := c.trades.MissedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch missed opportunities: %w", err)
	}

	windows := c.badDataWindows()
	result := &captureResult{From: from, To: to}
	for _, t := range trades {
		if inBadWindow(windows, t.ClosedAt) {
			continue
		}
		result.Trades = append(result.Trades, t)
	}
	for _, b := range blocked {
		if inBadWindow(windows, b.BlockedAt) {
			continue
		}
		result.Blocked = append(result.Blocked, b)
	}
	for _, m := range missed {
		if inBadWindow(windows, m.MissedAt) {
			continue
		}
		result.Missed = append(result.Missed, m)
	}

	excluded := len(trades) - len(result.Trades)
	if excluded > 0 {
		c.log.Warn().
			Int("excluded_trades", excluded).
			Int("bad_windows", len(windows)).
			Msg("trades excluded by bad-data windows")
	}

	return result, nil
}

func inBadWindow(windows []contracts.BadDataWindow, t time.Time) bool {
	for _, w := range windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}
