package usage

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryTracker はプロセス内メモリに利用回数を保持します。エントリは翌日 0 時に失効します。
type MemoryTracker struct {
	mu    sync.Mutex
	cache *cache.Cache
	clock Clock
}

// NewMemoryTracker は MemoryTracker を生成します。clock が nil なら time.Now を使うのだ。
func NewMemoryTracker(clock Clock) *MemoryTracker {
	return &MemoryTracker{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
		clock: clock,
	}
}

func (t *MemoryTracker) key(clientID string, now time.Time) string {
	return clientID + ":" + DateKey(now)
}

// Count は今日の利用回数を返します。
func (t *MemoryTracker) Count(_ context.Context, clientID string) (int, error) {
	now := t.clock.now()
	if v, ok := t.cache.Get(t.key(clientID, now)); ok {
		return v.(int), nil
	}
	return 0, nil
}

// Increment は今日の利用回数を1つ増やします。
func (t *MemoryTracker) Increment(_ context.Context, clientID string) (int, error) {
	now := t.clock.now()
	key := t.key(clientID, now)

	t.mu.Lock()
	defer t.mu.Unlock()

	n := 1
	if v, ok := t.cache.Get(key); ok {
		n = v.(int) + 1
	}
	t.cache.Set(key, n, NextMidnight(now).Sub(now))
	return n, nil
}
