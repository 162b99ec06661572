package regime

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/store"
)

const (
	priceRingSize   = 100
	returnRingSize  = 500
	cacheTTL        = 60 * time.Second
	persistInterval = 5 * time.Minute
)

// symbolState holds the per-symbol buffers, model, and cached label
type symbolState struct {
	prices  *ring
	returns *ring

	model      *gaussianHMM
	sinceTrain int

	cached        *contracts.RegimeInfo
	cachedAt      time.Time
	lastComposite string
}

// Classifier labels each symbol's market state from its recent price
// stream: Hurst 지수 기반 추세 분류에 선택적 HMM 변동성 상태를 결합한다.
// ⭐ SSOT: 레짐 라벨은 이 컴포넌트만 발급
type Classifier struct {
	mu      sync.Mutex
	symbols map[string]*symbolState

	statePath   string
	transitions *store.AppendLog
	lastPersist time.Time

	now func() time.Time
	log zerolog.Logger
}

// NewClassifier restores the classifier from its persisted buffers
func NewClassifier(paths store.Paths, log zerolog.Logger) (*Classifier, error) {
	transitions, err := store.NewAppendLog(paths.RegimeTransitions())
	if err != nil {
		return nil, fmt.Errorf("open regime transition log: %w", err)
	}

	c := &Classifier{
		symbols:     make(map[string]*symbolState),
		statePath:   paths.RegimeState(),
		transitions: transitions,
		now:         time.Now,
		log:         log.With().Str("component", "regime.classifier").Logger(),
	}
	if err := c.restore(); err != nil {
		return nil, err
	}
	return c, nil
}

// ObservePrice feeds one price sample into the symbol's buffers.
// 모델 학습과 주기적 영속화도 여기서 일어난다.
func (c *Classifier) ObservePrice(symbol string, price float64) error {
	if price <= 0 {
		return fmt.Errorf("non-positive price %.8f for %s", price, symbol)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.symbols[symbol]
	if !ok {
		st = newSymbolState()
		c.symbols[symbol] = st
	}

	if last, ok := st.prices.Last(); ok {
		st.returns.Push((price - last) / last)
		st.sinceTrain++
	}
	st.prices.Push(price)

	c.maybeTrain(symbol, st)
	c.maybePersist()
	return nil
}

// maybeTrain fits the HMM once enough returns exist and refits it
// every hmmRetrainEvery new returns afterwards.
func (c *Classifier) maybeTrain(symbol string, st *symbolState) {
	switch {
	case st.model == nil && st.returns.Len() >= hmmMinSamples:
	case st.model != nil && st.sinceTrain >= hmmRetrainEvery:
	default:
		return
	}

	st.model = fitHMM(absValues(st.returns.Values()))
	st.sinceTrain = 0
	if st.model != nil {
		c.log.Debug().
			Str("symbol", symbol).
			Float64("low_mean", st.model.Means[1-st.model.HighVolState()]).
			Float64("high_mean", st.model.Means[st.model.HighVolState()]).
			Msg("volatility model trained")
	}
}

// Classify returns the symbol's regime, served from cache within the
// TTL. 라벨이 바뀌면 전이 로그에 기록한다.
func (c *Classifier) Classify(symbol string) (*contracts.RegimeInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.symbols[symbol]
	if !ok || st.prices.Len() == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	now := c.now()
	if st.cached != nil && now.Sub(st.cachedAt) < cacheTTL {
		cached := *st.cached
		return &cached, nil
	}

	returns := st.returns.Values()
	hurst := HurstExponent(returns)
	trend := contracts.ClassifyHurst(hurst)

	var vol contracts.VolState
	if st.model != nil {
		state := st.model.PredictState(absValues(st.returns.Tail(hmmPredictWindow)))
		if state == st.model.HighVolState() {
			vol = contracts.VolHigh
		} else {
			vol = contracts.VolLow
		}
	}

	// 버퍼 충전율이 곧 신뢰도, 변동성 모델이 있으면 소폭 가산
	confidence := float64(st.returns.Len()) / float64(st.returns.Cap())
	if st.model != nil && confidence < 0.9 {
		confidence += 0.1
	}

	info := &contracts.RegimeInfo{
		Symbol:     symbol,
		Hurst:      hurst,
		Trend:      trend,
		Volatility: vol,
		Composite:  contracts.CompositeLabel(trend, vol),
		Confidence: confidence,
		UpdatedAt:  now,
	}

	if st.lastComposite != "" && st.lastComposite != info.Composite {
		transition := contracts.RegimeTransition{
			Symbol:    symbol,
			From:      st.lastComposite,
			To:        info.Composite,
			Hurst:     hurst,
			ChangedAt: now,
		}
		if err := c.transitions.Append(transition); err != nil {
			c.log.Error().Err(err).Str("symbol", symbol).Msg("failed to append regime transition")
		} else {
			c.log.Info().
				Str("symbol", symbol).
				Str("from", transition.From).
				Str("to", transition.To).
				Float64("hurst", hurst).
				Msg("regime transition")
		}
	}

	st.lastComposite = info.Composite
	st.cached = info
	st.cachedAt = now

	cached := *info
	return &cached, nil
}

func newSymbolState() *symbolState {
	return &symbolState{
		prices:  newRing(priceRingSize),
		returns: newRing(returnRingSize),
	}
}

// =============================================================================
// Persistence
// =============================================================================

type persistedSymbol struct {
	Prices        []float64 `json:"prices"`
	Returns       []float64 `json:"returns"`
	LastComposite string    `json:"last_composite,omitempty"`
}

type persistedState struct {
	Symbols map[string]persistedSymbol `json:"symbols"`
	SavedAt time.Time                  `json:"saved_at"`
}

// maybePersist writes the buffers out at most every persistInterval.
// 호출자가 mu를 잡은 상태여야 한다.
func (c *Classifier) maybePersist() {
	now := c.now()
	if now.Sub(c.lastPersist) < persistInterval {
		return
	}
	if err := c.persistLocked(now); err != nil {
		c.log.Error().Err(err).Msg("failed to persist regime state")
	}
}

// Flush forces an immediate persistence pass (shutdown path)
func (c *Classifier) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistLocked(c.now())
}

func (c *Classifier) persistLocked(now time.Time) error {
	state := persistedState{
		Symbols: make(map[string]persistedSymbol, len(c.symbols)),
		SavedAt: now,
	}
	for symbol, st := range c.symbols {
		state.Symbols[symbol] = persistedSymbol{
			Prices:        st.prices.Values(),
			Returns:       st.returns.Values(),
			LastComposite: st.lastComposite,
		}
	}
	if err := store.WriteJSONAtomic(c.statePath, state); err != nil {
		return err
	}
	c.lastPersist = now
	return nil
}

// restore reloads the persisted buffers; the HMM is refit lazily as
// new prices arrive.
func (c *Classifier) restore() error {
	var state persistedState
	if err := store.ReadJSON(c.statePath, &state); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("restore regime state: %w", err)
	}

	for symbol, ps := range state.Symbols {
		st := newSymbolState()
		st.prices.Restore(ps.Prices)
		st.returns.Restore(ps.Returns)
		st.lastComposite = ps.LastComposite
		if st.returns.Len() >= hmmMinSamples {
			st.model = fitHMM(absValues(st.returns.Values()))
		}
		c.symbols[symbol] = st
	}

	c.log.Info().Int("symbols", len(state.Symbols)).Msg("regime state restored")
	return nil
}
