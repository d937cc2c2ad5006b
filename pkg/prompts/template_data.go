package prompts

import (
	"embed"
)

const (
	ModeStory  = "story"
	ModeSafety = "safety"
)

// TemplateData はテキストプロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	AgeGroup     string
	ReadingLevel string
	Gender       string
	Situation    string
	Emotion      string
	Reason       string
	Weather      string

	// InputText は安全性判定の対象テキストなのだ。
	InputText string
}

// テンプレートは templates/prompt_<mode>.md に置きます。
const (
	templateDir    = "templates"
	templatePrefix = "prompt_"
)

//go:embed templates/*.md
var templateFS embed.FS
