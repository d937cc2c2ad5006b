package imagegen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultCacheTTL    = 1 * time.Hour
	DefaultConcurrency = 2
)

// PanelGenerator は、レート制限を守りながら並列で複数パネルを生成します。
// 同じプロンプトとシードの結果はキャッシュから返すのだ。
type PanelGenerator struct {
	generator   ImageGenerator
	limiter     *rate.Limiter
	cache       *cache.Cache
	concurrency int
}

// NewPanelGenerator は PanelGenerator の新しいインスタンスを初期化します。
// interval は API 呼び出しの最小間隔で、0 以下なら制限しません。
func NewPanelGenerator(gen ImageGenerator, interval time.Duration, concurrency int) *PanelGenerator {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &PanelGenerator{
		generator:   gen,
		limiter:     rate.NewLimiter(limit, 1),
		cache:       cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		concurrency: concurrency,
	}
}

// Execute は、並列処理を用いてパネル群を生成します。
// 1枚の失敗は他のパネルに影響せず、結果は reqs と同じ順序で返ります。
func (pg *PanelGenerator) Execute(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))

	var eg errgroup.Group
	eg.SetLimit(pg.concurrency)

	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			results[i] = pg.generateOne(ctx, i, req)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

func (pg *PanelGenerator) generateOne(ctx context.Context, i int, req Request) Result {
	key := cacheKey(req)
	if v, ok := pg.cache.Get(key); ok {
		slog.DebugContext(ctx, "パネル画像をキャッシュから取得しました", "panel_index", i+1)
		return Result{Response: v.(*Response)}
	}

	if err := pg.limiter.Wait(ctx); err != nil {
		return Result{Err: fmt.Errorf("panel %d: レート制限の待機が中断されました: %w", i+1, err)}
	}

	logger := slog.With("panel_index", i+1)
	logger.InfoContext(ctx, "パネル画像の生成を開始します")
	start := time.Now()

	resp, err := pg.generator.Generate(ctx, req)
	if err != nil {
		logger.WarnContext(ctx, "パネル画像の生成に失敗しました", "error", err)
		return Result{Err: fmt.Errorf("panel %d generation failed: %w", i+1, err)}
	}
	if resp.Empty() {
		return Result{Err: fmt.Errorf("panel %d: %w", i+1, errNoImage)}
	}

	logger.InfoContext(ctx, "パネル画像の生成が完了しました", "duration", time.Since(start).Round(time.Millisecond))
	pg.cache.SetDefault(key, resp)
	return Result{Response: resp}
}

func cacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.Prompt))
	h.Write([]byte{0})
	h.Write([]byte(req.NegativePrompt))
	h.Write([]byte{0})
	h.Write([]byte(req.AspectRatio))
	if req.Seed != nil {
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(*req.Seed, 10)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
