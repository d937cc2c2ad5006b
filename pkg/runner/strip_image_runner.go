package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/imagegen"
	"github.com/shouni/go-emotion-comic/pkg/prompts"
)

// StripImageRunner は4コマ全体を1枚の画像として生成します。
type StripImageRunner struct {
	promptBuilder prompts.ImagePrompt
	generator     imagegen.ImageGenerator
}

// NewStripImageRunner は生成エンジンとプロンプトビルダーを注入して初期化するのだ。
func NewStripImageRunner(pb prompts.ImagePrompt, gen imagegen.ImageGenerator) *StripImageRunner {
	return &StripImageRunner{promptBuilder: pb, generator: gen}
}

// Run は comic のシーンから1枚絵の4コマ漫画を生成します。
// パネル単位の生成と違い、失敗はそのままエラーとして返します。
func (r *StripImageRunner) Run(ctx context.Context, comic *domain.Comic, pc prompts.PanelContext) (*imagegen.Response, error) {
	if r.generator == nil {
		return nil, fmt.Errorf("画像生成が無効です")
	}
	if len(comic.Panels) == 0 {
		return nil, fmt.Errorf("シーンがありません")
	}

	prompt, negative := r.promptBuilder.BuildStrip(comic, pc)
	seed := pc.Protagonist.Seed
	req := imagegen.Request{
		Prompt:         prompt,
		NegativePrompt: negative,
		AspectRatio:    imagegen.StripAspectRatio,
		Seed:           &seed,
	}

	slog.InfoContext(ctx, "4コマを1枚の画像として生成します", "panels", len(comic.Panels))
	start := time.Now()
	resp, err := r.generator.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("4コマ画像の生成に失敗しました: %w", err)
	}
	if resp.Empty() {
		return nil, fmt.Errorf("4コマ画像の応答に画像が含まれていません")
	}
	slog.InfoContext(ctx, "4コマ画像の生成が完了しました", "duration", time.Since(start).Round(time.Millisecond))
	return resp, nil
}
