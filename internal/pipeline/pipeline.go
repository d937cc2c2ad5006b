package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/go-emotion-comic/internal/builder"
	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/prompts"
	"github.com/shouni/go-emotion-comic/pkg/publisher"
	"github.com/shouni/go-emotion-comic/pkg/wizard"
)

// cliClientID は CLI 実行時の利用回数の集計キーなのだ。
const cliClientID = "cli"

const warnStripFailed = "한 장짜리 4컷 이미지를 만들지 못했습니다."

// ExecuteGenerate は、CLI フラグの入力で5つのステップを順に進め、
// 生成した漫画を出力ディレクトリにパブリッシュするのだ。
func ExecuteGenerate(ctx context.Context, appCtx *builder.AppContext) (publisher.PublishResult, error) {
	s, comic, err := runWizard(ctx, appCtx)
	if err != nil {
		return publisher.PublishResult{}, err
	}

	pc := appCtx.Manager.PanelContext(s, comic.Weather)
	opts := publisher.Options{OutputDir: appCtx.Config.OutputDir}
	if appCtx.Config.Options.Strip {
		opts.Strip = generateStrip(ctx, appCtx, comic, pc)
	}

	pr := appCtx.Manager.BuildPublishRunner()
	result, err := pr.Run(ctx, comic, pc, opts)
	if err != nil {
		return result, err
	}

	logWarnings(ctx, comic)
	slog.InfoContext(ctx, "漫画の生成と保存が完了したのだ！", "markdown", result.MarkdownPath, "images", comic.ImageCount())
	return result, nil
}

// ExecutePrompts は、画像を生成せずに外部ツール向けのプロンプトだけを w に書き出すのだ。
func ExecutePrompts(ctx context.Context, appCtx *builder.AppContext, w io.Writer) error {
	s, comic, err := runWizard(ctx, appCtx)
	if err != nil {
		return err
	}

	pc := appCtx.Manager.PanelContext(s, comic.Weather)
	sheet := appCtx.Manager.BuildPublishRunner().PromptSheet(comic, pc)
	if _, err := io.WriteString(w, sheet); err != nil {
		return fmt.Errorf("プロンプトの出力に失敗しました: %w", err)
	}
	logWarnings(ctx, comic)
	return nil
}

// runWizard はウィザードの各ステップを検証しながら進め、ステップ5で生成を行います。
func runWizard(ctx context.Context, appCtx *builder.AppContext) (*domain.Session, *domain.Comic, error) {
	opts := appCtx.Config.Options
	m := appCtx.Machine
	s := domain.NewSession(uuid.NewString(), time.Now())

	steps := []struct {
		name string
		fn   func() error
	}{
		{"profile", func() error {
			return m.SubmitProfile(ctx, s, domain.Profile{AgeGroup: opts.AgeGroup, Gender: opts.Gender, ArtStyle: opts.ArtStyle})
		}},
		{"situation", func() error { return m.SubmitSituation(ctx, s, opts.Situation) }},
		{"emotion", func() error { return m.SubmitEmotion(ctx, s, opts.Emotion) }},
		{"reason", func() error { return m.SubmitReason(ctx, s, opts.Reason) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return nil, nil, fmt.Errorf("%s: %s: %w", step.name, wizard.UserMessage(err), err)
		}
	}

	if _, err := appCtx.Limiter.Check(ctx, cliClientID, s); err != nil {
		return nil, nil, err
	}

	comic, err := appCtx.Manager.GenerateComic(ctx, s)
	if err != nil {
		return nil, nil, fmt.Errorf("漫画の生成に失敗しました: %w", err)
	}
	appCtx.Limiter.Record(ctx, cliClientID, s)

	if err := m.Complete(s, comic); err != nil {
		return nil, nil, err
	}
	return s, comic, nil
}

// generateStrip は1枚絵の4コマを生成します。失敗しても警告に留め、パネル単位の成果物は保存するのだ。
func generateStrip(ctx context.Context, appCtx *builder.AppContext, comic *domain.Comic, pc prompts.PanelContext) *publisher.StripImage {
	resp, err := appCtx.Manager.BuildStripImageRunner().Run(ctx, comic, pc)
	if err != nil {
		slog.WarnContext(ctx, "4コマ画像を生成できませんでした", "error", err)
		comic.Warn(warnStripFailed)
		return nil
	}
	if len(resp.Data) == 0 {
		// URL のみ返すプロバイダはファイルに保存できないのだ
		comic.Warn(warnStripFailed)
		return nil
	}
	return &publisher.StripImage{Data: resp.Data, MimeType: resp.MimeType}
}

func logWarnings(ctx context.Context, comic *domain.Comic) {
	for _, w := range comic.Warnings {
		slog.WarnContext(ctx, w)
	}
}
