package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

// ExternalParams は Midjourney 等の外部画像ツール向けに付与するパラメータなのだ。
const ExternalParams = "--ar 1:1 --v 6 --style raw"

// BuildExternalPrompts は外部の画像生成ツールにそのまま貼り付けられるプロンプトをコマごとに返します。
// ImagePrompt が未設定のコマはシーン本文から組み立てます。
func BuildExternalPrompts(comic *domain.Comic, pb ImagePrompt, pc PanelContext) []string {
	out := make([]string, 0, len(comic.Panels))
	for i, p := range comic.Panels {
		prompt := p.ImagePrompt
		negative := p.Negative
		if prompt == "" && pb != nil {
			prompt, negative = pb.BuildPanel(p.Scene, i+1, pc)
		}
		line := fmt.Sprintf("%s %s", prompt, ExternalParams)
		if negative != "" {
			line += " --no " + negativeForExternal(negative)
		}
		out = append(out, line)
	}
	return out
}

// BuildPromptSheet は外部ツール用プロンプトを見出し付きのテキストにまとめます。
func BuildPromptSheet(comic *domain.Comic, prompts []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", comic.Title))
	for i, p := range prompts {
		scene := ""
		if i < len(comic.Panels) {
			scene = comic.Panels[i].Scene
		}
		sb.WriteString(fmt.Sprintf("[%d] %s\n%s\n\n", i+1, scene, p))
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// negativeForExternal は --no に渡す除外語を先頭の数語に絞るのだ。
func negativeForExternal(negative string) string {
	const maxTerms = 6
	terms := strings.Split(negative, ",")
	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}
	for i := range terms {
		terms[i] = strings.TrimSpace(terms[i])
	}
	return strings.Join(terms, ", ")
}
