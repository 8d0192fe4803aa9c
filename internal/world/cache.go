package world

import (
	"context"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// CachingPager keeps zstd-compressed copies of fetched volumes so that a
// region evicted from the renderer can be paged back in without asking the
// wrapped pager again. The cache is bounded and drops its oldest entries
// first.
type CachingPager struct {
	inner Pager
	enc   *zstd.Encoder
	dec   *zstd.Decoder

	mu         sync.Mutex
	entries    map[Region][]byte
	order      []Region
	maxEntries int
	hits       uint64
	misses     uint64
}

// NewCachingPager wraps inner with a cache of at most maxEntries volumes.
func NewCachingPager(inner Pager, maxEntries int) (*CachingPager, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, errors.Wrap(err, "page cache encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, errors.Wrap(err, "page cache decoder")
	}
	return &CachingPager{
		inner:      inner,
		enc:        enc,
		dec:        dec,
		entries:    make(map[Region][]byte),
		maxEntries: max(maxEntries, 1),
	}, nil
}

// Fetch implements Pager.
func (c *CachingPager) Fetch(ctx context.Context, r Region) (*Volume, error) {
	c.mu.Lock()
	packed, ok := c.entries[r]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	if ok {
		raw, err := c.dec.DecodeAll(packed, make([]byte, 0, r.VoxelCount()))
		if err == nil {
			return VolumeFromBytes(r, raw)
		}
		// corrupt entry, fall through to the wrapped pager
		c.forget(r)
	}

	vol, err := c.inner.Fetch(ctx, r)
	if err != nil {
		return nil, err
	}
	c.store(r, c.enc.EncodeAll(vol.Bytes(), nil))
	return vol, nil
}

// Evict forwards the hint; the compressed copy stays cached.
func (c *CachingPager) Evict(r Region) {
	c.inner.Evict(r)
}

func (c *CachingPager) store(r Region, packed []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[r]; !ok {
		c.order = append(c.order, r)
	}
	c.entries[r] = packed
	for len(c.order) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *CachingPager) forget(r Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, r)
	for i, o := range c.order {
		if o == r {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached volumes.
func (c *CachingPager) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// HitRatio returns cache hits and misses since creation.
func (c *CachingPager) HitRatio() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Close releases the codec resources.
func (c *CachingPager) Close() {
	c.enc.Close()
	c.dec.Close()
}
