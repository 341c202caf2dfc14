package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter keeps one token bucket per key (client address, ticker, ...).
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*bucket
	rps   rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time
}

type Option func(*Limiter)

// WithIdleTTL sets how long an unused key is kept before Evict drops it.
func WithIdleTTL(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.idle = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New allows rps requests per second per key with the given burst.
// rps <= 0 disables limiting.
func New(rps float64, burst int, opts ...Option) *Limiter {
	if burst < 1 {
		burst = 1
	}
	lim := rate.Limit(rps)
	if rps <= 0 {
		lim = rate.Inf
	}
	l := &Limiter{m: make(map[string]*bucket), rps: lim, burst: burst, idle: 10 * time.Minute, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	b, ok := l.m[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.m[key] = b
	}
	b.seen = now
	l.mu.Unlock()
	return b.lim.AllowN(now, 1)
}

// Evict drops keys idle longer than the idle TTL and returns the count.
func (l *Limiter) Evict() int {
	cutoff := l.now().Add(-l.idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, b := range l.m {
		if b.seen.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}

func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
