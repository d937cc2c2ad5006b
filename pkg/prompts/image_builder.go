package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-emotion-comic/pkg/catalog"
	"github.com/shouni/go-emotion-comic/pkg/domain"
)

// PanelContext は全コマに共通する画像の文脈です。
type PanelContext struct {
	Protagonist domain.Character
	StyleSuffix string
	EmotionCue  string
	WeatherMood string
}

// NewPanelContext はプロフィールと感情、天気から PanelContext を組み立てます。
// カタログにない ID は無視するのだ。
func NewPanelContext(cat *catalog.Catalog, sessionID string, profile domain.Profile, emotionID, weather string) PanelContext {
	var cues []string
	pc := PanelContext{WeatherMood: WeatherMood(weather)}

	if cat != nil {
		if a, ok := cat.AgeGroup(profile.AgeGroup); ok {
			cues = append(cues, a.ImageCue)
		}
		if g, ok := cat.Gender(profile.Gender); ok {
			cues = append(cues, g.ImageCue)
		}
		if s, ok := cat.ArtStyle(profile.ArtStyle); ok {
			pc.StyleSuffix = s.StyleSuffix
		}
		if e, ok := cat.Emotion(emotionID); ok {
			pc.EmotionCue = e.ImageCue
		}
	}
	pc.Protagonist = domain.NewProtagonist(sessionID, cues)
	return pc
}

// ImagePromptBuilder は、主人公と画風を考慮して画像生成用のプロンプトを構築します。
type ImagePromptBuilder struct {
	defaultSuffix string // 画風が未選択のときの共通サフィックス
}

// NewImagePromptBuilder は新しい ImagePromptBuilder を生成します。
func NewImagePromptBuilder(suffix string) *ImagePromptBuilder {
	return &ImagePromptBuilder{defaultSuffix: suffix}
}

func (pb *ImagePromptBuilder) style(pc PanelContext) string {
	if pc.StyleSuffix != "" {
		return pc.StyleSuffix
	}
	return pb.defaultSuffix
}

// BuildPanel は1コマ分のプロンプトを生成します。
// シーン本文、主人公の外見、感情、天気、画風、文字禁止の順に連結します。
func (pb *ImagePromptBuilder) BuildPanel(scene string, index int, pc PanelContext) (string, string) {
	parts := []string{
		sanitizeInline(scene),
		pc.Protagonist.CueText(),
		pc.EmotionCue,
		pc.WeatherMood,
		pb.style(pc),
		CinematicTags,
		NoTextRule,
	}
	if index == domain.PanelCount {
		parts = append(parts, "hopeful ending")
	}
	return joinParts(parts), NegativePanelPrompt
}

// BuildStrip は4コマを1枚に描かせるためのプロンプトを生成します。
func (pb *ImagePromptBuilder) BuildStrip(comic *domain.Comic, pc PanelContext) (string, string) {
	var sb strings.Builder
	sb.WriteString(StripStructureHeader)
	sb.WriteString("\n\n")

	sb.WriteString("### CHARACTER (STRICT IDENTITY) ###\n")
	cues := pc.Protagonist.CueText()
	if cues == "" {
		cues = "None"
	}
	sb.WriteString(fmt.Sprintf("- SUBJECT [%s]: VISUAL_FEATURES: {%s}\n\n", pc.Protagonist.Name, cues))

	total := len(comic.Panels)
	for i, p := range comic.Panels {
		sb.WriteString(BuildPanelHeader(i+1, total))
		sb.WriteString(fmt.Sprintf("- SCENE: %s\n\n", sanitizeInline(p.Scene)))
	}

	sb.WriteString("### GLOBAL VISUAL STYLE ###\n")
	sb.WriteString(joinParts([]string{pb.style(pc), pc.EmotionCue, pc.WeatherMood, CinematicTags, NoTextRule}))

	return sb.String(), NegativeStripPrompt
}
