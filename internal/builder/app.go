package builder

import (
	"github.com/redis/go-redis/v9"

	"github.com/shouni/go-emotion-comic/internal/config"
	"github.com/shouni/go-emotion-comic/pkg/catalog"
	"github.com/shouni/go-emotion-comic/pkg/session"
	"github.com/shouni/go-emotion-comic/pkg/usage"
	"github.com/shouni/go-emotion-comic/pkg/wizard"
	"github.com/shouni/go-emotion-comic/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config   *config.Config     // Configは、環境変数と CLI フラグから組み立てた設定です。
	Catalog  *catalog.Catalog   // Catalogは、ウィザードの選択肢です。
	Manager  *workflow.Manager  // Managerは、物語と画像の生成工程を束ねます。
	Machine  *wizard.Machine    // Machineは、5段階ウィザードの状態遷移です。
	Sessions session.Store      // Sessionsは、利用者ごとのウィザード状態の保存先です。
	Limiter  *usage.Limiter     // Limiterは、1日の生成回数の上限を管理します。
	redis    *redis.Client      // redis は redis バックエンドを使う場合のみ設定される共通クライアント
}

// Close は保持している外部接続を閉じます。
func (a *AppContext) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
