package learning

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/store"
)

// generated is the output of the generate phase, not yet applied
type generated struct {
	Adjustments []contracts.Adjustment
	Kills       []contracts.KillCombo
	Sizing      contracts.SizingMap
}

// generate turns the profit breakdown into concrete adjustments for
// every cadence that is due this cycle.
func (c *Controller) generate(ctx context.Context, breakdown *contracts.ProfitBreakdown, due []contracts.Cadence) (*generated, error) {
	_ = ctx
	out := &generated{}

	fast := hasCadence(due, contracts.CadenceFast) || hasCadence(due, contracts.CadenceWeekly)
	daily := hasCadence(due, contracts.CadenceDaily) || hasCadence(due, contracts.CadenceWeekly)

	if fast {
		out.Adjustments = append(out.Adjustments, c.generateGateAdjustments(breakdown)...)

		kills := c.generateKillCombos(breakdown)
		out.Kills = kills
		for _, k := range kills {
			out.Adjustments = append(out.Adjustments, contracts.Adjustment{
				Target:     contracts.TargetKill,
				Key:        k.Combo.String(),
				Change:     k.TotalPnL,
				Reason:     k.Reason,
				Confidence: sampleConfidence(k.Trades),
			})
		}
	}

	if daily {
		sizing, adjustments, err := c.generateSizing(breakdown)
		if err != nil {
			return nil, err
		}
		out.Sizing = sizing
		out.Adjustments = append(out.Adjustments, adjustments...)
	}

	return out, nil
}

// generateGateAdjustments recommends loosening or tightening the entry
// gate per session, hour-of-day, and symbol+direction slice.
// 샘플이 적은 슬라이스는 건드리지 않는다.
func (c *Controller) generateGateAdjustments(breakdown *contracts.ProfitBreakdown) []contracts.Adjustment {
	var out []contracts.Adjustment

	for _, session := range []contracts.TradingSession{contracts.SessionAsia, contracts.SessionEurope, contracts.SessionUS} {
		if a, ok := c.gateAdjustment("session:"+string(session), breakdown.BySession[session]); ok {
			out = append(out, a)
		}
	}

	for hour := 0; hour < 24; hour++ {
		if a, ok := c.gateAdjustment(fmt.Sprintf("hour:%02d", hour), breakdown.ByHour[hour]); ok {
			out = append(out, a)
		}
	}

	combos := make([]contracts.ComboKey, 0, len(breakdown.ByCombo))
	for combo := range breakdown.ByCombo {
		combos = append(combos, combo)
	}
	sort.Slice(combos, func(i, j int) bool { return combos[i].String() < combos[j].String() })
	for _, combo := range combos {
		if a, ok := c.gateAdjustment("combo:"+combo.String(), breakdown.ByCombo[combo]); ok {
			out = append(out, a)
		}
	}

	return out
}

// gateAdjustment applies the win-rate thresholds to one slice
func (c *Controller) gateAdjustment(key string, s contracts.SliceStats) (contracts.Adjustment, bool) {
	if s.SampleCount < c.cfg.Gates.MinSamples {
		return contracts.Adjustment{}, false
	}

	var change float64
	var verdict string
	switch {
	case s.WinRate >= c.cfg.Gates.LoosenWinRate:
		change, verdict = -c.cfg.Gates.StepPct, "loosen gate"
	case s.WinRate < c.cfg.Gates.TightenWinRate:
		change, verdict = c.cfg.Gates.StepPct, "tighten gate"
	default:
		return contracts.Adjustment{}, false
	}

	return contracts.Adjustment{
		Target:     contracts.TargetGate,
		Key:        key,
		Change:     change,
		Reason:     fmt.Sprintf("win rate %.1f%% over %d trades, %s", s.WinRate*100, s.SampleCount, verdict),
		Confidence: sampleConfidence(s.SampleCount),
	}, true
}

// generateKillCombos finds symbol+direction pairings that are both
// unreliable and unprofitable. 세 조건을 모두 만족해야 억제된다:
// 충분한 표본, 낮은 승률, 누적 손실.
func (c *Controller) generateKillCombos(breakdown *contracts.ProfitBreakdown) []contracts.KillCombo {
	var out []contracts.KillCombo
	for combo, s := range breakdown.ByCombo {
		if s.SampleCount < c.cfg.KillCombos.MinTrades {
			continue
		}
		if s.WinRate >= c.cfg.KillCombos.MaxWinRate {
			continue
		}
		if s.TotalPnL >= 0 {
			continue
		}
		out = append(out, contracts.KillCombo{
			Combo:    combo,
			WinRate:  s.WinRate,
			TotalPnL: s.TotalPnL,
			Trades:   s.SampleCount,
			Reason: fmt.Sprintf("win rate %.1f%% and pnl %.2f over %d trades",
				s.WinRate*100, s.TotalPnL, s.SampleCount),
			KilledAt: c.now(),
		})
	}
	return out
}

// generateSizing nudges the per-tier size multipliers toward the
// realized per-tier EV, bounded to [MinMultiplier, MaxMultiplier].
func (c *Controller) generateSizing(breakdown *contracts.ProfitBreakdown) (contracts.SizingMap, []contracts.Adjustment, error) {
	sizing, err := c.loadSizing()
	if err != nil {
		return nil, nil, err
	}

	var adjustments []contracts.Adjustment
	for _, tier := range contracts.AllTiers() {
		s, ok := breakdown.ByTier[tier]
		if !ok || s.SampleCount < c.cfg.Gates.MinSamples {
			continue
		}

		current := sizing[tier]
		var nudge float64
		switch {
		case s.EV > 0:
			nudge = c.cfg.Sizing.NudgeStep
		case s.EV < c.cfg.Sizing.NegativeEVCut:
			nudge = -c.cfg.Sizing.NudgeStep
		default:
			continue
		}

		next := clampMultiplier(current+nudge, c.cfg.Sizing.MinMultiplier, c.cfg.Sizing.MaxMultiplier)
		if next == current {
			continue
		}
		sizing[tier] = next
		adjustments = append(adjustments, contracts.Adjustment{
			Target:     contracts.TargetSizing,
			Key:        string(tier),
			Change:     next - current,
			Reason:     fmt.Sprintf("tier ev %.4f over %d trades, multiplier %.2f→%.2f", s.EV, s.SampleCount, current, next),
			Confidence: sampleConfidence(s.SampleCount),
		})
	}

	return sizing, adjustments, nil
}

// loadSizing reads the live sizing map, baseline when absent
func (c *Controller) loadSizing() (contracts.SizingMap, error) {
	var sizing contracts.SizingMap
	if err := store.ReadJSON(c.paths.Sizing(), &sizing); err != nil {
		if os.IsNotExist(err) {
			return contracts.DefaultSizing(), nil
		}
		return nil, fmt.Errorf("load sizing map: %w", err)
	}
	return sizing, nil
}

func hasCadence(due []contracts.Cadence, want contracts.Cadence) bool {
	for _, c := range due {
		if c == want {
			return true
		}
	}
	return false
}

// sampleConfidence maps a sample count to [0,1], saturating at 100
func sampleConfidence(samples int) float64 {
	return math.Min(1.0, float64(samples)/100.0)
}

func clampMultiplier(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
