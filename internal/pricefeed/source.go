package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	pkgredis "github.com/jaylee/argos/pkg/redis"
)

// ErrNoPrice is returned when a lookup fails and no cached fallback exists
var ErrNoPrice = errors.New("pricefeed: no price available")

// Source is the synchronous "current price for symbol" capability
// ⭐ SSOT: 해결기의 유일한 네트워크 의존성
type Source interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

type cachedPrice struct {
	Price     float64   `json:"price"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CachedSource bounds lookup volume with a short-lived cache and a
// rate limiter, and falls back to the last cached price on failure.
// 조회 실패는 절대 호출자에게 전파되지 않고 폴백으로 복구된다
// (캐시조차 없는 최초 실패만 ErrNoPrice).
type CachedSource struct {
	upstream Source
	ttl      time.Duration
	timeout  time.Duration
	limiter  *rate.Limiter
	remote   *pkgredis.Cache // nil 가능 (Redis 비활성화)
	log      zerolog.Logger

	mu    sync.Mutex
	cache map[string]cachedPrice
}

// CachedSourceOptions configures the caching wrapper
type CachedSourceOptions struct {
	TTL           time.Duration
	LookupTimeout time.Duration
	RatePerSecond int
	RemoteCache   *pkgredis.Cache
}

// NewCachedSource wraps upstream with caching and rate limiting
func NewCachedSource(upstream Source, opts CachedSourceOptions, log zerolog.Logger) *CachedSource {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = 5 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 10
	}

	return &CachedSource{
		upstream: upstream,
		ttl:      opts.TTL,
		timeout:  opts.LookupTimeout,
		limiter:  rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RatePerSecond),
		remote:   opts.RemoteCache,
		log:      log.With().Str("component", "pricefeed").Logger(),
		cache:    make(map[string]cachedPrice),
	}
}

// CurrentPrice returns a fresh or cached price for symbol
func (s *CachedSource) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	// 신선한 캐시가 있으면 즉시 반환
	if price, ok := s.fromCache(symbol, s.ttl); ok {
		return price, nil
	}

	if s.remote != nil {
		var cached cachedPrice
		if hit, err := s.remote.Get(ctx, "price:"+symbol, &cached); err == nil && hit {
			if time.Since(cached.FetchedAt) <= s.ttl {
				s.put(symbol, cached)
				return cached.Price, nil
			}
		}
	}

	price, err := s.fetch(ctx, symbol)
	if err == nil {
		entry := cachedPrice{Price: price, FetchedAt: time.Now()}
		s.put(symbol, entry)
		if s.remote != nil {
			if cerr := s.remote.Set(ctx, "price:"+symbol, entry, s.ttl); cerr != nil {
				s.log.Debug().Err(cerr).Str("symbol", symbol).Msg("remote price cache write failed")
			}
		}
		return price, nil
	}

	// 폴백: TTL과 무관하게 마지막으로 알려진 가격
	if price, ok := s.fromCache(symbol, 0); ok {
		s.log.Warn().Err(err).
			Str("symbol", symbol).
			Float64("fallback_price", price).
			Msg("price lookup failed, using last cached price")
		return price, nil
	}

	return 0, fmt.Errorf("%w: %s: %v", ErrNoPrice, symbol, err)
}

// fetch performs one bounded upstream lookup
func (s *CachedSource) fetch(ctx context.Context, symbol string) (float64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	price, err := s.upstream.CurrentPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if price <= 0 {
		return 0, fmt.Errorf("non-positive price %v for %s", price, symbol)
	}

	return price, nil
}

// fromCache reads the in-memory cache. maxAge 0은 staleness 무시.
func (s *CachedSource) fromCache(symbol string, maxAge time.Duration) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[symbol]
	if !ok {
		return 0, false
	}
	if maxAge > 0 && time.Since(entry.FetchedAt) > maxAge {
		return 0, false
	}
	return entry.Price, true
}

func (s *CachedSource) put(symbol string, entry cachedPrice) {
	s.mu.Lock()
	s.cache[symbol] = entry
	s.mu.Unlock()
}
