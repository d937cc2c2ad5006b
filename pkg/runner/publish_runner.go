package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/prompts"
	"github.com/shouni/go-emotion-comic/pkg/publisher"
)

// ComicPublisher は成果物を保存する契約なのだ。
type ComicPublisher interface {
	Publish(ctx context.Context, comic *domain.Comic, opts publisher.Options) (publisher.PublishResult, error)
}

// PublishRunner は、漫画の成果物（Markdown、プロンプト一覧、画像）を出力します。
type PublishRunner struct {
	publisher     ComicPublisher
	promptBuilder prompts.ImagePrompt
}

// NewPublishRunner は依存関係を注入して初期化します。
func NewPublishRunner(pub ComicPublisher, pb prompts.ImagePrompt) *PublishRunner {
	return &PublishRunner{publisher: pub, promptBuilder: pb}
}

// Run は opts.OutputDir に成果物を書き出します。プロンプト一覧は常にここで組み立てるのだ。
func (pr *PublishRunner) Run(ctx context.Context, comic *domain.Comic, pc prompts.PanelContext, opts publisher.Options) (publisher.PublishResult, error) {
	opts.PromptSheet = pr.PromptSheet(comic, pc)
	result, err := pr.publisher.Publish(ctx, comic, opts)
	if err != nil {
		return result, fmt.Errorf("パブリッシュ処理に失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "パブリッシュが完了しました", "output_dir", opts.OutputDir)
	return result, nil
}

// ExternalPrompts は外部の画像ツール向けプロンプトをコマごとに返します。
func (pr *PublishRunner) ExternalPrompts(comic *domain.Comic, pc prompts.PanelContext) []string {
	return prompts.BuildExternalPrompts(comic, pr.promptBuilder, pc)
}

// PromptSheet は外部ツール向けプロンプトを1つのテキストにまとめます。
func (pr *PublishRunner) PromptSheet(comic *domain.Comic, pc prompts.PanelContext) string {
	return prompts.BuildPromptSheet(comic, pr.ExternalPrompts(comic, pc))
}

// BuildMarkdown は保存を伴わずに Markdown を生成します。
func (pr *PublishRunner) BuildMarkdown(comic *domain.Comic) string {
	return publisher.BuildMarkdown(comic, nil)
}
