package weights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaylee/argos/internal/contracts"
)

func TestAnalyzeDisagreementsDuel(t *testing.T) {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	outcomes := []contracts.Outcome{
		fullOutcome(contracts.SignalMomentum, "BTCUSDT", contracts.DirectionLong, base, 0.02),
		fullOutcome(contracts.SignalMeanReversion, "BTCUSDT", contracts.DirectionShort, base.Add(30*time.Second), -0.02),
	}

	records := AnalyzeDisagreements(outcomes, time.Minute)

	assert.Equal(t, DisagreementRecord{Wins: 1, Losses: 0}, records[contracts.SignalMomentum])
	assert.Equal(t, DisagreementRecord{Wins: 0, Losses: 1}, records[contracts.SignalMeanReversion])
	assert.Equal(t, 1.0, records[contracts.SignalMomentum].WinRate())
	assert.Equal(t, 0.0, records[contracts.SignalMeanReversion].WinRate())
}

func TestAnalyzeDisagreementsNoDuel(t *testing.T) {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("outside window", func(t *testing.T) {
		outcomes := []contracts.Outcome{
			fullOutcome(contracts.SignalMomentum, "BTCUSDT", contracts.DirectionLong, base, 0.02),
			fullOutcome(contracts.SignalMeanReversion, "BTCUSDT", contracts.DirectionShort, base.Add(2*time.Minute), -0.02),
		}
		assert.Empty(t, AnalyzeDisagreements(outcomes, time.Minute))
	})

	t.Run("same direction", func(t *testing.T) {
		outcomes := []contracts.Outcome{
			fullOutcome(contracts.SignalMomentum, "BTCUSDT", contracts.DirectionLong, base, 0.02),
			fullOutcome(contracts.SignalBreakout, "BTCUSDT", contracts.DirectionLong, base.Add(10*time.Second), 0.02),
		}
		assert.Empty(t, AnalyzeDisagreements(outcomes, time.Minute))
	})

	t.Run("different symbols", func(t *testing.T) {
		outcomes := []contracts.Outcome{
			fullOutcome(contracts.SignalMomentum, "BTCUSDT", contracts.DirectionLong, base, 0.02),
			fullOutcome(contracts.SignalMeanReversion, "ETHUSDT", contracts.DirectionShort, base.Add(10*time.Second), -0.02),
		}
		assert.Empty(t, AnalyzeDisagreements(outcomes, time.Minute))
	})

	t.Run("unresolved 5m horizon", func(t *testing.T) {
		a := fullOutcome(contracts.SignalMomentum, "BTCUSDT", contracts.DirectionLong, base, 0.02)
		b := fullOutcome(contracts.SignalMeanReversion, "BTCUSDT", contracts.DirectionShort, base.Add(10*time.Second), -0.02)
		delete(b.Results, contracts.Horizon5m)
		assert.Empty(t, AnalyzeDisagreements([]contracts.Outcome{a, b}, time.Minute))
	})

	t.Run("both hit", func(t *testing.T) {
		// 양쪽 다 적중이면 승패 판정이 없다
		a := fullOutcome(contracts.SignalMomentum, "BTCUSDT", contracts.DirectionLong, base, 0.02)
		b := fullOutcome(contracts.SignalMeanReversion, "BTCUSDT", contracts.DirectionShort, base.Add(10*time.Second), 0.02)
		assert.Empty(t, AnalyzeDisagreements([]contracts.Outcome{a, b}, time.Minute))
	})
}

func TestDisagreementWinRateUntested(t *testing.T) {
	var r DisagreementRecord
	assert.Equal(t, 0.5, r.WinRate())
}

func TestAnalyzeCombinationsAllAgree(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	outcomes := []contracts.Outcome{
		fullOutcome(contracts.SignalMomentum, "BTCUSDT", contracts.DirectionLong, base, 0.02),
		fullOutcome(contracts.SignalMACDCross, "BTCUSDT", contracts.DirectionLong, base.Add(10*time.Second), 0.02),
		fullOutcome(contracts.SignalBreakout, "BTCUSDT", contracts.DirectionLong, base.Add(20*time.Second), -0.02),
	}

	report := AnalyzeCombinations(outcomes, time.Minute)

	agree := report.ByBucket[contracts.BucketAllAgree]
	assert.Equal(t, 3, agree.SampleCount)
	assert.Equal(t, 2, agree.Wins)
	assert.InDelta(t, 2.0/3.0, agree.WinRate, 1e-9)

	set := report.BySet["breakout+macd_cross+momentum"]
	assert.Equal(t, 3, set.SampleCount)
	assert.Equal(t, 2, set.Wins)
}

func TestAnalyzeCombinationsSplit(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	outcomes := []contracts.Outcome{
		fullOutcome(contracts.SignalMomentum, "ETHUSDT", contracts.DirectionLong, base, 0.02),
		fullOutcome(contracts.SignalMeanReversion, "ETHUSDT", contracts.DirectionShort, base.Add(10*time.Second), -0.02),
	}

	report := AnalyzeCombinations(outcomes, time.Minute)

	split := report.ByBucket[contracts.BucketSplit]
	assert.Equal(t, 2, split.SampleCount)
	assert.Equal(t, 1, split.Wins)
	assert.NotContains(t, report.ByBucket, contracts.BucketAllAgree)
}

func TestAnalyzeCombinationsMajority(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	outcomes := []contracts.Outcome{
		fullOutcome(contracts.SignalMomentum, "ETHUSDT", contracts.DirectionLong, base, 0.02),
		fullOutcome(contracts.SignalBreakout, "ETHUSDT", contracts.DirectionLong, base.Add(5*time.Second), 0.02),
		fullOutcome(contracts.SignalMeanReversion, "ETHUSDT", contracts.DirectionShort, base.Add(10*time.Second), -0.02),
	}

	report := AnalyzeCombinations(outcomes, time.Minute)
	assert.Equal(t, 3, report.ByBucket[contracts.BucketMajority].SampleCount)
}

func TestAnalyzeCombinationsSoloIgnored(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	outcomes := []contracts.Outcome{
		fullOutcome(contracts.SignalMomentum, "BTCUSDT", contracts.DirectionLong, base, 0.02),
	}
	report := AnalyzeCombinations(outcomes, time.Minute)
	assert.Empty(t, report.ByBucket)
	assert.Empty(t, report.BySet)
}
