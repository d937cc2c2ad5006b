package parser

import (
	"strings"
)

// Story は LLM の出力から抽出したタイトルとシーンの一覧です。
type Story struct {
	Title  string
	Scenes []string
}

// Parser は LLM の自由記述テキストを解析するためのインターフェースなのだ。
type Parser interface {
	Parse(input string) *Story
}

// SceneParser は番号付きリスト形式のテキストをシーンに分解する構造体です。
type SceneParser struct{}

// NewSceneParser は SceneParser を初期化するのだ。
func NewSceneParser() *SceneParser {
	return &SceneParser{}
}

// Parse は番号付きの行を出現順にシーンとして取り出します。
// 番号のない行は直前のシーンの続きとして連結します。空行で項目は閉じるので、
// 空行の後に続く番号のない行や最初の番号より前の行は無視するのだ。
func (p *SceneParser) Parse(input string) *Story {
	story := &Story{}
	var current *strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			story.Scenes = append(story.Scenes, s)
		}
		current = nil
	}

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		if m := TitleRegex.FindStringSubmatch(trimmed); m != nil && story.Title == "" && current == nil && len(story.Scenes) == 0 {
			story.Title = cleanLine(m[1])
			continue
		}

		cleaned := cleanLine(trimmed)
		if m := NumberedListRegex.FindStringSubmatch(cleaned); m != nil {
			flush()
			current = &strings.Builder{}
			current.WriteString(strings.TrimSpace(m[2]))
			continue
		}

		if current != nil && cleaned != "" {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(cleaned)
		}
	}
	flush()

	return story
}

// ParseScenes は input から番号付きのシーンを抽出します。
func ParseScenes(input string) []string {
	return NewSceneParser().Parse(input).Scenes
}

func cleanLine(s string) string {
	s = bulletRegex.ReplaceAllString(strings.TrimSpace(s), "")
	s = emphasisRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
