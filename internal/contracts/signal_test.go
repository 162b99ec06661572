package contracts

import (
	"testing"
	"time"
)

func TestSignalName_IsValid(t *testing.T) {
	for _, name := range AllSignalNames() {
		if !name.IsValid() {
			t.Errorf("IsValid() = false for %q, want true", name)
		}
	}

	if SignalName("astro_cycle").IsValid() {
		t.Error("IsValid() = true for unknown signal, want false")
	}
}

func TestDirection_Opposite(t *testing.T) {
	tests := []struct {
		dir  Direction
		want Direction
	}{
		{DirectionLong, DirectionShort},
		{DirectionShort, DirectionLong},
		{DirectionNeutral, DirectionNeutral},
	}

	for _, tt := range tests {
		if got := tt.dir.Opposite(); got != tt.want {
			t.Errorf("%s.Opposite() = %s, want %s", tt.dir, got, tt.want)
		}
	}
}

func TestHorizon_Ordering(t *testing.T) {
	horizons := AllHorizons()
	if len(horizons) != 5 {
		t.Fatalf("AllHorizons() length = %d, want 5", len(horizons))
	}

	// 오름차순이어야 함
	for i := 1; i < len(horizons); i++ {
		if horizons[i].Duration() <= horizons[i-1].Duration() {
			t.Errorf("horizon %s not after %s", horizons[i], horizons[i-1])
		}
	}

	if horizons[len(horizons)-1] != Horizon1h {
		t.Errorf("last horizon = %s, want 1h", horizons[len(horizons)-1])
	}
}

func TestHorizon_WeightsSumToOne(t *testing.T) {
	var total float64
	var prev float64
	for _, h := range AllHorizons() {
		w := h.Weight()
		if w < prev {
			t.Errorf("horizon %s weight %v lower than shorter horizon", h, w)
		}
		prev = w
		total += w
	}

	epsilon := 1e-9
	if diff := total - 1.0; diff > epsilon || diff < -epsilon {
		t.Errorf("horizon weights sum = %v, want 1.0", total)
	}
}

func TestTierForConfidence(t *testing.T) {
	tests := []struct {
		confidence float64
		want       ConvictionTier
	}{
		{0.95, TierUltra},
		{0.85, TierUltra},
		{0.75, TierHigh},
		{0.60, TierMedium},
		{0.45, TierLow},
		{0.10, TierReject},
	}

	for _, tt := range tests {
		if got := TierForConfidence(tt.confidence); got != tt.want {
			t.Errorf("TierForConfidence(%v) = %s, want %s", tt.confidence, got, tt.want)
		}
	}
}

func TestDefaultWeights_Normalized(t *testing.T) {
	w := DefaultWeights()
	if len(w) != len(AllSignalNames()) {
		t.Fatalf("DefaultWeights() covers %d signals, want %d", len(w), len(AllSignalNames()))
	}

	epsilon := 1e-9
	if diff := w.Sum() - 1.0; diff > epsilon || diff < -epsilon {
		t.Errorf("DefaultWeights().Sum() = %v, want 1.0", w.Sum())
	}
}

func TestCompositeLabel(t *testing.T) {
	if got := CompositeLabel(TrendTrending, VolHigh); got != "TREND_HIGH_VOL" {
		t.Errorf("CompositeLabel(TREND, HIGH_VOL) = %q", got)
	}

	// HMM 미사용 시 trend 라벨만
	if got := CompositeLabel(TrendRandomWalk, ""); got != "CHOP" {
		t.Errorf("CompositeLabel(CHOP, none) = %q", got)
	}
}

func TestClassifyHurst(t *testing.T) {
	tests := []struct {
		hurst float64
		want  TrendClass
	}{
		{0.30, TrendMeanReverting},
		{0.449, TrendMeanReverting},
		{0.45, TrendRandomWalk},
		{0.50, TrendRandomWalk},
		{0.55, TrendRandomWalk},
		{0.551, TrendTrending},
		{0.80, TrendTrending},
	}

	for _, tt := range tests {
		if got := ClassifyHurst(tt.hurst); got != tt.want {
			t.Errorf("ClassifyHurst(%v) = %s, want %s", tt.hurst, got, tt.want)
		}
	}
}

func TestBadDataWindow_Contains(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	w := BadDataWindow{From: from, To: to}

	if !w.Contains(from.Add(30 * time.Minute)) {
		t.Error("Contains() = false inside window")
	}
	if w.Contains(to.Add(time.Minute)) {
		t.Error("Contains() = true after window")
	}
}
