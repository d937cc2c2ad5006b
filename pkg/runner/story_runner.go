package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-emotion-comic/pkg/catalog"
	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/llm"
	"github.com/shouni/go-emotion-comic/pkg/parser"
	"github.com/shouni/go-emotion-comic/pkg/prompts"
	"github.com/shouni/go-emotion-comic/pkg/weather"
)

// 利用者に表示する警告文です。
const (
	WarnStoryFailed   = "이야기 생성에 실패하여 기본 장면을 사용했습니다."
	WarnStoryPartial  = "응답에서 4개의 장면을 찾지 못해 일부를 기본 장면으로 채웠습니다."
	WarnWeatherFailed = "날씨 정보를 가져오지 못했습니다."
)

// StoryRunner は、セッションの入力から4コマ分のシーン文を生成します。
type StoryRunner struct {
	catalog       *catalog.Catalog
	promptBuilder prompts.ScriptPrompt
	generator     llm.TextGenerator
	weather       weather.Provider
	city          string
}

// NewStoryRunner は依存関係を注入して初期化します。generator と wp は nil でも動くのだ。
func NewStoryRunner(cat *catalog.Catalog, pb prompts.ScriptPrompt, gen llm.TextGenerator, wp weather.Provider, city string) *StoryRunner {
	if city == "" {
		city = weather.DefaultCity
	}
	return &StoryRunner{
		catalog:       cat,
		promptBuilder: pb,
		generator:     gen,
		weather:       wp,
		city:          city,
	}
}

// Run は天気を取得し、LLM で物語を生成してシーンに分割します。
// 外部 API の失敗は既定値と警告に置き換えるため、エラーを返すのは入力が不正な場合のみです。
func (sr *StoryRunner) Run(ctx context.Context, s *domain.Session) (*domain.Comic, error) {
	if s == nil {
		return nil, fmt.Errorf("セッションが nil です")
	}
	comic := domain.NewComicFromSession(s)
	emotionLabel := sr.catalog.EmotionLabel(s.Emotion)
	comic.Title = domain.DefaultTitle(emotionLabel, s.Situation)
	comic.Labels = sr.catalog.Labels(s.Profile, s.Emotion)

	// 1. 天気
	comic.Weather = sr.describeWeather(ctx, comic)

	// 2. プロンプト
	data := sr.templateData(s, emotionLabel, comic.Weather)
	fallback := parser.FallbackData{Situation: s.Situation, Emotion: emotionLabel, Reason: s.Reason}

	// 3. 生成
	raw, err := sr.generate(ctx, data)
	if err != nil {
		slog.WarnContext(ctx, "物語の生成に失敗したため既定のシーンを使用します", "session_id", s.ID, "error", err)
		comic.Warn(WarnStoryFailed)
		raw = ""
	}

	// 4. パース
	scenes, usedFallback := parser.Scenes(raw, fallback)
	if usedFallback && err == nil {
		comic.Warn(WarnStoryPartial)
	}
	comic.UsedFallback = usedFallback

	comic.Panels = make([]domain.Panel, len(scenes))
	for i, scene := range scenes {
		comic.Panels[i] = domain.Panel{Index: i + 1, Scene: scene}
	}

	slog.InfoContext(ctx, "物語を生成しました", "session_id", s.ID, "scenes", len(scenes), "fallback", usedFallback)
	return comic, nil
}

func (sr *StoryRunner) describeWeather(ctx context.Context, comic *domain.Comic) string {
	desc := weather.Describe(ctx, sr.weather, sr.city)
	if desc == weather.FallbackDescription && sr.weather != nil {
		comic.Warn(WarnWeatherFailed)
	}
	return desc
}

func (sr *StoryRunner) templateData(s *domain.Session, emotionLabel, weatherDesc string) prompts.TemplateData {
	data := prompts.TemplateData{
		AgeGroup:  s.Profile.AgeGroup,
		Gender:    s.Profile.Gender,
		Situation: s.Situation,
		Emotion:   emotionLabel,
		Reason:    s.Reason,
		Weather:   weatherDesc,
	}
	if sr.catalog == nil {
		return data
	}
	if a, ok := sr.catalog.AgeGroup(s.Profile.AgeGroup); ok {
		data.AgeGroup = a.Label
		data.ReadingLevel = a.ReadingLevel
	}
	if g, ok := sr.catalog.Gender(s.Profile.Gender); ok {
		data.Gender = g.Label
	}
	return data
}

func (sr *StoryRunner) generate(ctx context.Context, data prompts.TemplateData) (string, error) {
	if sr.generator == nil {
		return "", fmt.Errorf("テキスト生成クライアントが設定されていません")
	}
	prompt, err := sr.promptBuilder.Build(prompts.ModeStory, data)
	if err != nil {
		return "", fmt.Errorf("プロンプト生成に失敗: %w", err)
	}
	text, err := sr.generator.Generate(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("物語の生成に失敗しました: %w", err)
	}
	return text, nil
}
