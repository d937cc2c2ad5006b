package workflow

import (
	"context"

	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/imagegen"
	"github.com/shouni/go-emotion-comic/pkg/prompts"
	"github.com/shouni/go-emotion-comic/pkg/publisher"
)

// StoryRunner は、ウィザードの入力から4コマ分のシーンを生成する責務を持ちます。
type StoryRunner interface {
	Run(ctx context.Context, s *domain.Session) (*domain.Comic, error)
}

// PanelImageRunner は、シーンから画像プロンプトと画像を生成する責務を持ちます。
type PanelImageRunner interface {
	Run(ctx context.Context, comic *domain.Comic, pc prompts.PanelContext) error
	Enabled() bool
}

// StripImageRunner は、4コマ全体を1枚の画像として生成する責務を持ちます。
type StripImageRunner interface {
	Run(ctx context.Context, comic *domain.Comic, pc prompts.PanelContext) (*imagegen.Response, error)
}

// PublishRunner は、漫画データを Markdown とプロンプト一覧として出力する責務を持ちます。
type PublishRunner interface {
	Run(ctx context.Context, comic *domain.Comic, pc prompts.PanelContext, opts publisher.Options) (publisher.PublishResult, error)
	PromptSheet(comic *domain.Comic, pc prompts.PanelContext) string
	ExternalPrompts(comic *domain.Comic, pc prompts.PanelContext) []string
	BuildMarkdown(comic *domain.Comic) string
}
