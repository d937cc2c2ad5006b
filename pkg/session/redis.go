package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

const sessionPrefix = "comic:session:"

// RedisStore はセッションを JSON として Redis に保存します。
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore は RedisStore を生成します。
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(id string) string {
	return sessionPrefix + id
}

// Get はセッションを読み込みます。
func (r *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}

	var s domain.Session
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, id, err)
	}
	return &s, nil
}

// Save はセッションを保存し、TTL を更新します。インライン画像のバイト列は保存されません。
func (r *RedisStore) Save(ctx context.Context, s *domain.Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("IDのないセッションは保存できません")
	}
	raw, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("セッションのエンコードに失敗しました: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}
	return nil
}

// Delete はセッションを削除します。
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}
	return nil
}
