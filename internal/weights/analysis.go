package weights

import (
	"sort"
	"strings"
	"time"

	"github.com/jaylee/argos/internal/contracts"
)

// =============================================================================
// Disagreement analysis
// =============================================================================

// DisagreementRecord tallies how a signal fared against opposing signals
type DisagreementRecord struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// WinRate returns the share of disagreements won, 0.5 when untested
func (d DisagreementRecord) WinRate() float64 {
	total := d.Wins + d.Losses
	if total == 0 {
		return 0.5
	}
	return float64(d.Wins) / float64(total)
}

// AnalyzeDisagreements finds signal pairs that fired within window for
// the same symbol with opposite directions and records which one was
// actually correct by its 5-minute-horizon hit flag.
// 상대적 예측력을 포착한다: 단독 적중률이 아니라 맞붙었을 때 누가 이겼는가.
func AnalyzeDisagreements(outcomes []contracts.Outcome, window time.Duration) map[contracts.SignalName]DisagreementRecord {
	records := make(map[contracts.SignalName]DisagreementRecord)

	bySymbol := make(map[string][]contracts.Outcome)
	for _, o := range outcomes {
		bySymbol[o.Symbol] = append(bySymbol[o.Symbol], o)
	}

	for _, group := range bySymbol {
		sort.Slice(group, func(i, j int) bool {
			return group[i].EmittedAt.Before(group[j].EmittedAt)
		})

		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if b.EmittedAt.Sub(a.EmittedAt) > window {
					break // 정렬되어 있으므로 이후는 전부 창 밖
				}
				if a.Direction != b.Direction.Opposite() {
					continue
				}

				aHit, aOK := a.HitAt(contracts.Horizon5m)
				bHit, bOK := b.HitAt(contracts.Horizon5m)
				if !aOK || !bOK {
					continue // 5분 호라이즌 미해결이면 판정 불가
				}

				// 반대 방향이므로 정확히 한쪽만 이긴다
				switch {
				case aHit && !bHit:
					recordDuel(records, a.Signal, b.Signal)
				case bHit && !aHit:
					recordDuel(records, b.Signal, a.Signal)
				}
			}
		}
	}

	return records
}

func recordDuel(records map[contracts.SignalName]DisagreementRecord, winner, loser contracts.SignalName) {
	w := records[winner]
	w.Wins++
	records[winner] = w

	l := records[loser]
	l.Losses++
	records[loser] = l
}

// =============================================================================
// Combination analysis
// =============================================================================

// AnalyzeCombinations groups outcomes by symbol+time-window and
// computes win rates per agreement bucket and per co-firing signal set.
func AnalyzeCombinations(outcomes []contracts.Outcome, window time.Duration) contracts.CombinationReport {
	report := contracts.CombinationReport{
		ByBucket: make(map[contracts.AgreementBucket]contracts.ComboStats),
		BySet:    make(map[string]contracts.ComboStats),
	}
	if window <= 0 {
		return report
	}

	type groupKey struct {
		symbol string
		bucket int64
	}
	groups := make(map[groupKey][]contracts.Outcome)
	for _, o := range outcomes {
		key := groupKey{o.Symbol, o.EmittedAt.UnixNano() / int64(window)}
		groups[key] = append(groups[key], o)
	}

	for _, group := range groups {
		if len(group) < 2 {
			continue // 단독 발화는 조합이 아님
		}

		var longs, shorts int
		for _, o := range group {
			if o.Direction == contracts.DirectionLong {
				longs++
			} else {
				shorts++
			}
		}

		bucket := contracts.BucketSplit
		switch {
		case longs == 0 || shorts == 0:
			bucket = contracts.BucketAllAgree
		case longs != shorts:
			bucket = contracts.BucketMajority
		}

		for _, o := range group {
			hit, ok := o.HitAt(contracts.Horizon5m)
			if !ok {
				continue
			}
			bumpCombo(report.ByBucket, bucket, hit)
		}

		setKey := signalSetKey(group)
		for _, o := range group {
			hit, ok := o.HitAt(contracts.Horizon5m)
			if !ok {
				continue
			}
			bumpCombo(report.BySet, setKey, hit)
		}
	}

	finalizeCombo(report.ByBucket)
	finalizeCombo(report.BySet)
	return report
}

func bumpCombo[K comparable](m map[K]contracts.ComboStats, key K, hit bool) {
	s := m[key]
	s.SampleCount++
	if hit {
		s.Wins++
	}
	m[key] = s
}

func finalizeCombo[K comparable](m map[K]contracts.ComboStats) {
	for key, s := range m {
		if s.SampleCount > 0 {
			s.WinRate = float64(s.Wins) / float64(s.SampleCount)
		}
		m[key] = s
	}
}

// signalSetKey renders the sorted unique signal names of a group
func signalSetKey(group []contracts.Outcome) string {
	seen := make(map[contracts.SignalName]bool)
	var names []string
	for _, o := range group {
		if !seen[o.Signal] {
			seen[o.Signal] = true
			names = append(names, string(o.Signal))
		}
	}
	sort.Strings(names)
	return strings.Join(names, "+")
}
