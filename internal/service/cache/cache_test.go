package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTTLCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache(WithClock(clk.now))

	require.NoError(t, c.SetBytes(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("2"), 0))

	b, ok, err := c.GetBytes(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", string(b))

	clk.advance(time.Minute)
	_, ok, _ = c.GetBytes(ctx, "a")
	assert.False(t, ok)

	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCache_Sweep(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(0, 0)}
	c := NewTTLCache(WithClock(clk.now))
	_ = c.SetBytes(ctx, "a", nil, time.Second)
	_ = c.SetBytes(ctx, "b", nil, time.Hour)

	clk.advance(2 * time.Second)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
}

type stubL2 struct {
	m    map[string][]byte
	gets int
	err  error
}

func (s *stubL2) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	s.gets++
	if s.err != nil {
		return nil, false, s.err
	}
	b, ok := s.m[key]
	return b, ok, nil
}

func (s *stubL2) SetBytes(_ context.Context, key string, v []byte, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.m[key] = v
	return nil
}

func TestLayered_ReadThrough(t *testing.T) {
	ctx := context.Background()
	l2 := &stubL2{m: map[string][]byte{"k": []byte("v")}}
	c := NewLayered(nil, l2, time.Minute)

	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(b))

	_, _, _ = c.GetBytes(ctx, "k")
	assert.Equal(t, 1, l2.gets, "second read served by L1")

	_, ok, err = c.GetBytes(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLayered_WriteThroughAndErrors(t *testing.T) {
	ctx := context.Background()
	l2 := &stubL2{m: map[string][]byte{}}
	c := NewLayered(nil, l2, time.Minute)

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Hour))
	assert.Equal(t, "v", string(l2.m["k"]))

	l2.err = errors.New("down")
	assert.Error(t, c.SetBytes(ctx, "x", []byte("y"), time.Hour))
	_, ok, _ := c.GetBytes(ctx, "x")
	assert.False(t, ok, "failed L2 write must not populate L1")

	// L1 still answers keys it already holds
	_, ok, err := c.GetBytes(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestLayered_NoL2(t *testing.T) {
	ctx := context.Background()
	c := NewLayered(nil, nil, 0)
	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := c.GetBytes(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, ok)
}
