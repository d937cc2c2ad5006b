// Package session は、ウィザードのセッション状態を保存します。
package session

import (
	"context"
	"errors"
	"time"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

const DefaultTTL = 60 * time.Minute

// ErrNotFound はセッションが存在しないか期限切れであることを示します。
var ErrNotFound = errors.New("session: セッションが見つかりません")

// ErrCorrupt は保存されたセッションを復元できないことを示します。
var ErrCorrupt = errors.New("session: セッションが壊れています")

// Store はセッションの保存先の契約です。
// Get が返す値は呼び出し側で自由に変更でき、Save するまで保存内容には影響しません。
type Store interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
}
