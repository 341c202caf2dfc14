package usecase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCycleGate_BeginSupersedes(t *testing.T) {
	g := NewCycleGate()
	first := g.Begin("s1")
	second := g.Begin("s1")

	assert.Greater(t, second, first)
	assert.False(t, g.IsLatest("s1", first))
	assert.True(t, g.IsLatest("s1", second))

	// other keys are unaffected
	other := g.Begin("s2")
	assert.True(t, g.IsLatest("s2", other))
	assert.True(t, g.IsLatest("s1", second))
}

func TestCycleGate_Observe(t *testing.T) {
	g := NewCycleGate()
	assert.True(t, g.Observe("AAPL", 5))
	assert.False(t, g.Observe("AAPL", 5), "duplicate")
	assert.False(t, g.Observe("AAPL", 3), "out of order")
	assert.True(t, g.Observe("AAPL", 9))
	assert.True(t, g.IsLatest("AAPL", 9))
	assert.False(t, g.Observe("MSFT", 0))
}

func TestCycleGate_ConcurrentBegin(t *testing.T) {
	g := NewCycleGate()
	var wg sync.WaitGroup
	seen := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- g.Begin("k")
		}()
	}
	wg.Wait()
	close(seen)

	uniq := map[uint64]bool{}
	for s := range seen {
		uniq[s] = true
	}
	assert.Len(t, uniq, 100)
	assert.True(t, g.IsLatest("k", 100))
}

func TestCycleGate_IsStale(t *testing.T) {
	g := NewCycleGate()
	assert.True(t, g.IsStale("AAPL", 0))
	assert.False(t, g.IsStale("AAPL", 1))
	g.Observe("AAPL", 4)
	assert.True(t, g.IsStale("AAPL", 4))
	assert.False(t, g.IsStale("AAPL", 5))
}
