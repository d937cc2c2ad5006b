// Package usage は、クライアントごとの1日あたりの生成回数を記録し、上限を判定します。
package usage

import (
	"context"
	"time"
)

const (
	DefaultLimit = 100

	// DateLayout は日付キーの書式なのだ。
	DateLayout = "2006-01-02"
)

// Tracker は (clientID, 日付) ごとの利用回数を永続化する契約です。
type Tracker interface {
	// Count は今日の利用回数を返します。
	Count(ctx context.Context, clientID string) (int, error)
	// Increment は今日の利用回数を1つ増やし、新しい値を返します。
	Increment(ctx context.Context, clientID string) (int, error)
}

// Clock は現在時刻を返す関数です。テストで差し替えるために使います。
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// DateKey はローカル時刻での日付キーを返します。
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// NextMidnight は t の翌日 0 時（同じタイムゾーン）を返すのだ。
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
