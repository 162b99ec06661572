package learning

import (
	"github.com/jaylee/argos/internal/contracts"
)

// AnalyzeProfit slices the captured trades along every analysis axis.
// 각 슬라이스는 전체 이력에서 통째로 재계산된다.
func AnalyzeProfit(trades []contracts.ExecutedTrade) *contracts.ProfitBreakdown {
	b := &contracts.ProfitBreakdown{
		ByCombo:     make(map[contracts.ComboKey]contracts.SliceStats),
		ByHour:      make(map[int]contracts.SliceStats),
		BySession:   make(map[contracts.TradingSession]contracts.SliceStats),
		ByRegime:    make(map[string]contracts.SliceStats),
		ByTier:      make(map[contracts.ConvictionTier]contracts.SliceStats),
		ByAlignment: make(map[contracts.SignalName]contracts.SliceStats),
	}

	for _, t := range trades {
		hour := t.ClosedAt.UTC().Hour()

		bumpSlice(b.ByCombo, contracts.ComboKey{Symbol: t.Symbol, Direction: t.Direction}, t.PnL)
		bumpSlice(b.ByHour, hour, t.PnL)
		bumpSlice(b.BySession, contracts.SessionForHour(hour), t.PnL)
		if t.Regime != "" {
			bumpSlice(b.ByRegime, t.Regime, t.PnL)
		}
		bumpSlice(b.ByTier, t.Tier, t.PnL)

		// 진입에 동의했던 시그널마다 그 거래를 귀속시킨다
		for _, signal := range t.Signals {
			bumpSlice(b.ByAlignment, signal, t.PnL)
		}
	}

	finalizeSlice(b.ByCombo)
	finalizeSlice(b.ByHour)
	finalizeSlice(b.BySession)
	finalizeSlice(b.ByRegime)
	finalizeSlice(b.ByTier)
	finalizeSlice(b.ByAlignment)
	return b
}

func bumpSlice[K comparable](m map[K]contracts.SliceStats, key K, pnl float64) {
	s := m[key]
	s.SampleCount++
	if pnl > 0 {
		s.Wins++
	}
	s.TotalPnL += pnl
	m[key] = s
}

// finalizeSlice derives win rate and per-trade EV once counting is done
func finalizeSlice[K comparable](m map[K]contracts.SliceStats) {
	for key, s := range m {
		if s.SampleCount > 0 {
			s.WinRate = float64(s.Wins) / float64(s.SampleCount)
			s.EV = s.TotalPnL / float64(s.SampleCount)
		}
		m[key] = s
	}
}
