package prompts

import "github.com/shouni/go-emotion-comic/pkg/domain"

// ScriptPrompt は、テキスト生成用のプロンプトを構築する契約です。
type ScriptPrompt interface {
	// Build は、指定されたモード（ModeStory, ModeSafety）とデータに基づいてプロンプト文字列を生成します。
	Build(mode string, data TemplateData) (string, error)
}

// ImagePrompt は、画像生成用のプロンプトを構築する契約です。
type ImagePrompt interface {
	// BuildPanel は、1コマ分のプロンプトとネガティブプロンプトを生成します。
	BuildPanel(scene string, index int, pc PanelContext) (prompt string, negative string)
	// BuildStrip は、4コマを1枚に収める画像用のプロンプトを生成します。
	BuildStrip(comic *domain.Comic, pc PanelContext) (prompt string, negative string)
}
