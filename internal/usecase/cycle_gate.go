package usecase

import (
	"errors"
	"sync"
)

// ErrSuperseded is returned when a newer cycle for the same key started
// before the current one finished.
var ErrSuperseded = errors.New("superseded by a newer cycle")

// CycleGate hands out monotonic sequence stamps per key and answers whether a
// stamp is still the latest. Keys are independent of each other.
type CycleGate struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewCycleGate() *CycleGate {
	return &CycleGate{latest: make(map[string]uint64)}
}

// Begin starts a new cycle for key and returns its stamp. Any earlier stamp
// for key becomes stale.
func (g *CycleGate) Begin(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest[key]++
	return g.latest[key]
}

// IsLatest reports whether seq is still the newest stamp issued for key.
func (g *CycleGate) IsLatest(key string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[key] == seq
}

// IsStale reports whether seq is not newer than the latest stamp for key.
func (g *CycleGate) IsStale(key string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return seq <= g.latest[key]
}

// Observe records an externally stamped seq for key. It returns false, and
// records nothing, when seq is not newer than what was already seen.
func (g *CycleGate) Observe(key string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq <= g.latest[key] {
		return false
	}
	g.latest[key] = seq
	return true
}
