package runner

import (
	"context"
	"log/slog"

	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/imagegen"
	"github.com/shouni/go-emotion-comic/pkg/prompts"
)

// 画像生成に関する警告文です。
const (
	WarnImagesDisabled = "이미지 생성이 비활성화되어 프롬프트만 제공합니다."
	WarnPanelFailed    = "%d번째 컷 이미지를 생성하지 못했습니다."
)

// PanelImageRunner は、各コマの画像プロンプトを組み立て、画像を並列生成します。
type PanelImageRunner struct {
	promptBuilder prompts.ImagePrompt
	generator     imagegen.PanelsImageGenerator
}

// NewPanelImageRunner は依存関係を注入して初期化します。
// generator が nil の場合はプロンプトのみを組み立てるのだ。
func NewPanelImageRunner(pb prompts.ImagePrompt, gen imagegen.PanelsImageGenerator) *PanelImageRunner {
	return &PanelImageRunner{promptBuilder: pb, generator: gen}
}

// Enabled は画像生成を行うかどうかを返します。
func (pr *PanelImageRunner) Enabled() bool {
	return pr.generator != nil
}

// Run は comic の各パネルにプロンプトと画像を設定します。
// 失敗したコマは画像なしのまま残し、警告として記録します。
func (pr *PanelImageRunner) Run(ctx context.Context, comic *domain.Comic, pc prompts.PanelContext) error {
	reqs := make([]imagegen.Request, len(comic.Panels))
	seed := pc.Protagonist.Seed
	for i := range comic.Panels {
		p := &comic.Panels[i]
		p.ImagePrompt, p.Negative = pr.promptBuilder.BuildPanel(p.Scene, i+1, pc)
		reqs[i] = imagegen.Request{
			Prompt:         p.ImagePrompt,
			NegativePrompt: p.Negative,
			AspectRatio:    imagegen.PanelAspectRatio,
			Seed:           &seed,
		}
	}

	if !pr.Enabled() {
		comic.Warn(WarnImagesDisabled)
		return nil
	}

	slog.InfoContext(ctx, "パネル画像の並列生成を開始します", "panels", len(reqs))
	results := pr.generator.Execute(ctx, reqs)
	for i, res := range results {
		if res.Err != nil || res.Response.Empty() {
			comic.Warn(WarnPanelFailed, i+1)
			continue
		}
		p := &comic.Panels[i]
		p.ImageURL = res.Response.URL
		p.Data = res.Response.Data
		p.MimeType = res.Response.MimeType
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	slog.InfoContext(ctx, "パネル画像の生成が完了しました", "images", comic.ImageCount(), "panels", len(comic.Panels))
	return nil
}
