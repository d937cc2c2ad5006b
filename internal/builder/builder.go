package builder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shouni/go-emotion-comic/internal/config"
	"github.com/shouni/go-emotion-comic/pkg/catalog"
	"github.com/shouni/go-emotion-comic/pkg/session"
	"github.com/shouni/go-emotion-comic/pkg/usage"
	"github.com/shouni/go-emotion-comic/pkg/wizard"
	"github.com/shouni/go-emotion-comic/pkg/workflow"
)

const redisPingTimeout = 3 * time.Second

// BuildAppContext は設定から全ての依存関係を組み立てます。
// args の非 nil フィールドは Config から生成される値より優先されるのだ。
func BuildAppContext(ctx context.Context, cfg *config.Config, args workflow.ManagerArgs) (*AppContext, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("カタログの読み込みに失敗しました: %w", err)
	}

	args.Config = cfg.WorkflowConfig()
	args.Catalog = cat
	manager, err := workflow.New(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("ワークフローの初期化に失敗しました: %w", err)
	}

	checker, err := manager.BuildSafetyChecker()
	if err != nil {
		return nil, fmt.Errorf("安全性チェッカーの初期化に失敗しました: %w", err)
	}

	appCtx := &AppContext{
		Config:  cfg,
		Catalog: cat,
		Manager: manager,
		Machine: wizard.NewMachine(cat, checker),
	}

	if cfg.UsageBackend == config.BackendRedis || cfg.SessionBackend == config.BackendRedis {
		client, err := BuildRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		appCtx.redis = client
	}

	appCtx.Sessions = BuildSessionStore(cfg, appCtx.redis)
	tracker, err := BuildUsageTracker(cfg, appCtx.redis)
	if err != nil {
		appCtx.Close()
		return nil, err
	}
	appCtx.Limiter = usage.NewLimiter(tracker, cfg.DailyLimit, time.Now)

	slog.InfoContext(ctx, "アプリケーションを初期化しました",
		"llm", cfg.LLMProvider,
		"image", cfg.ImageProvider,
		"session_backend", cfg.SessionBackend,
		"usage_backend", cfg.UsageBackend,
		"daily_limit", cfg.DailyLimit,
	)
	return appCtx, nil
}

// BuildRedisClient は REDIS_URL から接続を作り、疎通を確認します。
func BuildRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL の解析に失敗しました: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis への接続に失敗しました: %w", err)
	}
	return client, nil
}

// BuildSessionStore は SESSION_BACKEND に応じたセッションストアを返します。
func BuildSessionStore(cfg *config.Config, client *redis.Client) session.Store {
	if cfg.SessionBackend == config.BackendRedis && client != nil {
		return session.NewRedisStore(client, cfg.SessionTTL)
	}
	return session.NewMemoryStore(cfg.SessionTTL)
}

// BuildUsageTracker は USAGE_BACKEND に応じた利用回数トラッカーを返します。
func BuildUsageTracker(cfg *config.Config, client *redis.Client) (usage.Tracker, error) {
	switch cfg.UsageBackend {
	case config.BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("redis クライアントが初期化されていません")
		}
		return usage.NewRedisTracker(client, time.Now), nil
	case config.BackendFile:
		t, err := usage.NewFileTracker(cfg.UsageDir, time.Now)
		if err != nil {
			return nil, fmt.Errorf("利用回数ファイルの初期化に失敗しました: %w", err)
		}
		return t, nil
	default:
		return usage.NewMemoryTracker(time.Now), nil
	}
}
