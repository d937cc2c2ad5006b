package prompts

import (
	"fmt"
	"strings"
)

const (
	// CinematicTags クオリティ向上のための共通タグ
	CinematicTags = "cinematic composition, high resolution, sharp focus"

	// NegativePanelPrompt 単体パネルでは「文字」や「フキダシ」を徹底排除します
	NegativePanelPrompt = "speech bubble, dialogue balloon, text, alphabet, letters, words, signatures, watermark, username, low quality, distorted, bad anatomy, violence, gore"

	// NegativeStripPrompt は4コマを1枚にまとめる場合の除外要素です。
	NegativeStripPrompt = NegativePanelPrompt + ", extra panels, more than four panels, split panels, monochrome"

	// NoTextRule は画像内に文字を描かせないための指示なのだ。
	NoTextRule = "no text, no letters, no speech bubbles"

	// StripStructureHeader は4コマ漫画の構造を定義します。
	StripStructureHeader = `### FORMAT RULES: FOUR-PANEL COMIC ###
- LAYOUT: Exactly four panels in a 2x2 grid.
- READING FLOW: Left-to-Right, Top-to-Bottom.
- BORDERS: Crisp black frame borders for EVERY panel, white gutters.`
)

// weatherMoods は天気の説明文に含まれる語と画像の雰囲気の対応表です。先頭から順に評価します。
var weatherMoods = []struct {
	keyword string
	mood    string
}{
	{"뇌우", "stormy sky with lightning"},
	{"천둥", "stormy sky with lightning"},
	{"눈", "gentle snowfall"},
	{"비", "rainy day, wet streets, raindrops"},
	{"안개", "misty foggy air"},
	{"박무", "misty foggy air"},
	{"흐림", "overcast gray sky"},
	{"구름", "soft clouds in the sky"},
	{"맑", "clear sunny sky"},
	{"rain", "rainy day, wet streets, raindrops"},
	{"snow", "gentle snowfall"},
	{"cloud", "soft clouds in the sky"},
	{"clear", "clear sunny sky"},
}

// WeatherMood は天気の説明文から背景の雰囲気タグを選びます。該当がなければ空文字なのだ。
func WeatherMood(description string) string {
	d := strings.ToLower(description)
	for _, wm := range weatherMoods {
		if strings.Contains(d, wm.keyword) {
			return wm.mood
		}
	}
	return ""
}

// BuildPanelHeader は各パネルの順序を示す見出しを生成します。
func BuildPanelHeader(current, total int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("### [PANEL %d OF %d] ###\n", current, total))
	switch current {
	case 1:
		sb.WriteString("- ROLE: introduction of the situation\n")
	case total:
		sb.WriteString("- ROLE: resolution, the character accepts the feeling\n")
	default:
		sb.WriteString("- ROLE: development of the feeling\n")
	}
	return sb.String()
}

// sanitizeInline は文字列をプロンプトに埋め込む前の最低限の正規化を行います。
func sanitizeInline(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}

func joinParts(parts []string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			clean = append(clean, s)
		}
	}
	return strings.Join(clean, ", ")
}
