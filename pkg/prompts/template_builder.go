package prompts

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	promptkit "github.com/shouni/go-prompt-kit/prompts"
	"github.com/shouni/go-prompt-kit/resource"
)

// TextPromptBuilder はテキストプロンプトのテンプレートを保持し、モードごとに描画します。
type TextPromptBuilder struct {
	builder *promptkit.Builder
	modes   []string
}

// NewTextPromptBuilder は埋め込みテンプレートで TextPromptBuilder を初期化します。
// overrides に同じモードがあれば、そちらの内容で上書きするのだ。
func NewTextPromptBuilder(overrides map[string]string) (*TextPromptBuilder, error) {
	sources, err := resource.Load(templateFS, templateDir, templatePrefix)
	if err != nil {
		return nil, fmt.Errorf("埋め込みプロンプトの読み込みに失敗しました: %w", err)
	}
	maps.Copy(sources, overrides)

	for mode, content := range sources {
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("プロンプトテンプレート '%s' の読み込みに失敗しました: 内容が空です", mode)
		}
	}

	builder, err := promptkit.NewBuilder(sources)
	if err != nil {
		return nil, err
	}

	return &TextPromptBuilder{
		builder: builder,
		modes:   slices.Sorted(maps.Keys(sources)),
	}, nil
}

// Build は、要求されたモードに応じて適切なテンプレートを実行します。
func (b *TextPromptBuilder) Build(mode string, data TemplateData) (string, error) {
	out, err := b.builder.Build(mode, data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Modes は登録済みのモード名をソートして返します。
func (b *TextPromptBuilder) Modes() []string {
	return slices.Clone(b.modes)
}
