package session

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

// MemoryStore は go-cache を使ったプロセス内のセッションストアです。
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemoryStore は MemoryStore を生成します。最終保存から ttl 経過したセッションは消えるのだ。
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{cache: cache.New(ttl, ttl/2), ttl: ttl}
}

// Get はセッションのコピーを返します。
func (m *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v.(*domain.Session).Clone(), nil
}

// Save はセッションのコピーを保存し、有効期限を延長します。
func (m *MemoryStore) Save(_ context.Context, s *domain.Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("IDのないセッションは保存できません")
	}
	m.cache.Set(s.ID, s.Clone(), m.ttl)
	return nil
}

// Delete はセッションを削除します。存在しなくてもエラーにしません。
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

// Len は保持しているセッション数なのだ。
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}
