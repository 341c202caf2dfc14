package cache

import (
	"context"
	"time"
)

// Layered reads through a local L1 in front of a shared L2. Writes go to L2
// first; an L2 read error is returned so callers can fall back to the source.
type Layered struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

// NewLayered keeps L1 copies for at most l1TTL (or the write ttl if shorter).
func NewLayered(l1 *TTLCache, l2 BytesCache, l1TTL time.Duration) *Layered {
	if l1 == nil {
		l1 = NewTTLCache()
	}
	return &Layered{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (c *Layered) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := c.l1.GetBytes(ctx, key); ok {
		return b, true, nil
	}
	if c.l2 == nil {
		return nil, false, nil
	}
	b, ok, err := c.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = c.l1.SetBytes(ctx, key, b, c.l1TTL)
	return b, true, nil
}

func (c *Layered) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.l2 != nil {
		if err := c.l2.SetBytes(ctx, key, value, ttl); err != nil {
			return err
		}
	}
	local := ttl
	if c.l1TTL > 0 && (local <= 0 || c.l1TTL < local) {
		local = c.l1TTL
	}
	return c.l1.SetBytes(ctx, key, value, local)
}
