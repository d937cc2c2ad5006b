package parser

import (
	"fmt"
	"strings"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

// FallbackData は既定シーンの組み立てに使う利用者の入力です。
type FallbackData struct {
	Situation string
	Emotion   string
	Reason    string
}

// fallbackTemplates は LLM の応答が使えないときのシーンの雛形です。
// 引数は順に 状況・感情・理由 なのだ。
var fallbackTemplates = [domain.PanelCount]string{
	"주인공이 %[1]s 상황에 놓여 있습니다.",
	"주인공은 %[2]s 감정을 느끼기 시작합니다.",
	"그 이유는 %[3]s 때문이라는 것을 깨닫습니다.",
	"주인공은 %[2]s 마음을 받아들이고 한 걸음 앞으로 나아갑니다.",
}

// FallbackScenes は入力値から既定の4シーンを組み立てます。
func FallbackScenes(data FallbackData) []string {
	situation := orDefault(data.Situation, "평범한 하루의")
	emotion := orDefault(data.Emotion, "복잡한")
	reason := orDefault(data.Reason, "말로 설명하기 어려운 일")

	scenes := make([]string, domain.PanelCount)
	for i, tmpl := range fallbackTemplates {
		scenes[i] = fmt.Sprintf(tmpl, situation, emotion, reason)
	}
	return scenes
}

// Scenes は常にちょうど4つのシーンを返します。
// 解析できたシーンが4つ未満なら、不足分を既定シーンの同じ位置で補います。
// 5つ以上なら先頭の4つを使うのだ。戻り値の bool は既定シーンを使ったかどうかです。
func Scenes(input string, data FallbackData) ([]string, bool) {
	parsed := ParseScenes(input)
	return fill(parsed, data)
}

func fill(parsed []string, data FallbackData) ([]string, bool) {
	if len(parsed) >= domain.PanelCount {
		return append([]string(nil), parsed[:domain.PanelCount]...), false
	}
	scenes := FallbackScenes(data)
	copy(scenes, parsed)
	return scenes, true
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
