package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const usagePrefix = "comic:usage:"

// RedisTracker は INCR と EXPIREAT で日毎のカウンタを Redis に保持します。
// 複数のサーバープロセスで上限を共有するときに使うのだ。
type RedisTracker struct {
	client redis.Cmdable
	clock  Clock
}

// NewRedisTracker は RedisTracker を生成します。
func NewRedisTracker(client redis.Cmdable, clock Clock) *RedisTracker {
	return &RedisTracker{client: client, clock: clock}
}

func (t *RedisTracker) key(clientID string, now time.Time) string {
	return usagePrefix + clientID + ":" + DateKey(now)
}

// Count は今日の利用回数を返します。
func (t *RedisTracker) Count(ctx context.Context, clientID string) (int, error) {
	n, err := t.client.Get(ctx, t.key(clientID, t.clock.now())).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("利用回数の取得に失敗しました: %w", err)
	}
	return n, nil
}

// Increment は今日の利用回数を1つ増やし、キーの期限を翌日 0 時に設定します。
func (t *RedisTracker) Increment(ctx context.Context, clientID string) (int, error) {
	now := t.clock.now()
	key := t.key(clientID, now)

	var incr *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireAt(ctx, key, NextMidnight(now))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("利用回数の更新に失敗しました: %w", err)
	}
	return int(incr.Val()), nil
}
