package outcome

import (
	"time"

	"github.com/jaylee/argos/internal/contracts"
)

// ComputeStats derives SignalStats for every signal from the entire
// outcome history. 증분 패치 없이 통째로 재계산하므로 파생 파일이
// 로그와 어긋날 수 없다.
func ComputeStats(outcomes []contracts.Outcome, now time.Time) map[contracts.SignalName]contracts.SignalStats {
	stats := make(map[contracts.SignalName]contracts.SignalStats)

	bySignal := make(map[contracts.SignalName][]contracts.Outcome)
	for _, o := range outcomes {
		bySignal[o.Signal] = append(bySignal[o.Signal], o)
	}

	for signal, group := range bySignal {
		byHorizon := make(map[contracts.Horizon]contracts.HorizonStats)

		for _, h := range contracts.AllHorizons() {
			var count, wins int
			var sumReturn, sumWin, sumLoss float64

			for _, o := range group {
				r, ok := o.Results[h]
				if !ok {
					continue // 부분 outcome에서 미해결 호라이즌
				}
				count++
				sumReturn += r.Return
				if r.Hit {
					wins++
					sumWin += r.Return
				} else {
					sumLoss += -r.Return
				}
			}

			if count == 0 {
				continue
			}

			hs := contracts.HorizonStats{
				SampleCount: count,
				AvgReturn:   sumReturn / float64(count),
				WinRate:     float64(wins) / float64(count),
			}
			hs.EV = horizonEV(count, wins, sumWin, sumLoss)
			byHorizon[h] = hs
		}

		s := contracts.SignalStats{
			Signal:      signal,
			SampleCount: len(group),
			ByHorizon:   byHorizon,
			BestHorizon: bestHorizon(byHorizon),
			UpdatedAt:   now,
		}
		s.Recommended = recommendedWeight(s)
		stats[signal] = s
	}

	return stats
}

// horizonEV computes win_rate×avg_win − loss_rate×avg_loss
func horizonEV(count, wins int, sumWin, sumLoss float64) float64 {
	if count == 0 {
		return 0
	}

	losses := count - wins
	winRate := float64(wins) / float64(count)
	lossRate := float64(losses) / float64(count)

	var avgWin, avgLoss float64
	if wins > 0 {
		avgWin = sumWin / float64(wins)
	}
	if losses > 0 {
		avgLoss = sumLoss / float64(losses)
	}

	return winRate*avgWin - lossRate*avgLoss
}

// bestHorizon picks the EV-maximizing horizon; ties favor the first
// in enumeration order.
func bestHorizon(byHorizon map[contracts.Horizon]contracts.HorizonStats) contracts.Horizon {
	best := contracts.Horizon("")
	bestEV := 0.0
	first := true

	for _, h := range contracts.AllHorizons() {
		hs, ok := byHorizon[h]
		if !ok {
			continue
		}
		if first || hs.EV > bestEV {
			best = h
			bestEV = hs.EV
			first = false
		}
	}

	return best
}

// recommendedWeight scales a neutral weight by best-horizon EV.
// Weight Learner가 실제 경계 검사를 수행하므로 여기서는 힌트만 제공.
func recommendedWeight(s contracts.SignalStats) float64 {
	base := 1.0 / float64(len(contracts.AllSignalNames()))
	if s.BestHorizon == "" {
		return base
	}

	ev := s.ByHorizon[s.BestHorizon].EV
	w := base * (1 + ev*10)
	if w < 0.05 {
		w = 0.05
	}
	if w > 2*base {
		w = 2 * base
	}
	return w
}
