package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

// ErrLimitExceeded は1日の生成上限に達したことを示します。
var ErrLimitExceeded = errors.New("usage: 1日の生成上限に達しました")

// LimitError は上限超過時の回数を保持するエラーです。errors.Is(err, ErrLimitExceeded) で判定できます。
type LimitError struct {
	Count int
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("🚫 오늘은 %d회까지만 생성할 수 있습니다. 내일 다시 이용해 주세요. (현재 사용량: %d/%d)", e.Limit, e.Count, e.Limit)
}

func (e *LimitError) Unwrap() error {
	return ErrLimitExceeded
}

// Status は現在の利用状況です。
type Status struct {
	Count int
	Limit int
}

// Remaining は残りの生成可能回数なのだ。
func (s Status) Remaining() int {
	if r := s.Limit - s.Count; r > 0 {
		return r
	}
	return 0
}

// Message は画面に表示する利用状況の文言です。
func (s Status) Message() string {
	return fmt.Sprintf("현재 사용량: %d/%d", s.Count, s.Limit)
}

// Limiter はセッションの回数と永続化された回数の大きい方で上限を判定します。
type Limiter struct {
	tracker Tracker
	limit   int
	clock   Clock
}

// NewLimiter は Limiter を生成します。limit が 0 以下なら DefaultLimit を使います。
func NewLimiter(tracker Tracker, limit int, clock Clock) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Limiter{tracker: tracker, limit: limit, clock: clock}
}

// Limit は1日の上限回数です。
func (l *Limiter) Limit() int {
	return l.limit
}

// Today は現在の日付キーを返します。
func (l *Limiter) Today() string {
	return DateKey(l.clock.now())
}

// Status は現在の利用回数を返します。永続層のエラーはログに残し、セッションの回数で代用するのだ。
func (l *Limiter) Status(ctx context.Context, clientID string, s *domain.Session) Status {
	count := 0
	if s != nil {
		count = s.UsageOn(l.Today())
	}
	if l.tracker != nil {
		persisted, err := l.tracker.Count(ctx, clientID)
		if err != nil {
			slog.WarnContext(ctx, "永続化された利用回数の取得に失敗しました", "error", err)
		} else if persisted > count {
			count = persisted
		}
	}
	return Status{Count: count, Limit: l.limit}
}

// Check は上限に達していれば *LimitError を返します。
func (l *Limiter) Check(ctx context.Context, clientID string, s *domain.Session) (Status, error) {
	st := l.Status(ctx, clientID, s)
	if st.Count >= l.limit {
		return st, &LimitError{Count: st.Count, Limit: l.limit}
	}
	return st, nil
}

// Record はセッションと永続層の両方の回数を1つ増やします。
func (l *Limiter) Record(ctx context.Context, clientID string, s *domain.Session) Status {
	count := 0
	if s != nil {
		count = s.AddUsage(l.Today())
	}
	if l.tracker != nil {
		persisted, err := l.tracker.Increment(ctx, clientID)
		if err != nil {
			slog.WarnContext(ctx, "利用回数の記録に失敗しました", "error", err)
		} else if persisted > count {
			count = persisted
		}
	}
	return Status{Count: count, Limit: l.limit}
}
