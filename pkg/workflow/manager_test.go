package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/imagegen"
	"github.com/shouni/go-emotion-comic/pkg/llm"
	"github.com/shouni/go-emotion-comic/pkg/runner"
	"github.com/shouni/go-emotion-comic/pkg/weather"
)

type stubWeather struct{}

func (stubWeather) Current(ctx context.Context, city string) (weather.Report, error) {
	return weather.Report{City: city, Description: "비", TempC: 12}, nil
}

func readySession() *domain.Session {
	s := domain.NewSession("abc", time.Now())
	s.Profile = domain.Profile{AgeGroup: "adult", Gender: "male", ArtStyle: "watercolor"}
	s.Situation = "회사에서 발표를 했다"
	s.Emotion = "anxiety"
	s.Reason = "실수할까 봐"
	s.Step = domain.StepComic
	return s
}

func TestManager_GenerateComic(t *testing.T) {
	text := llm.GeneratorFunc(func(ctx context.Context, req llm.Request) (string, error) {
		return "1. 발표 준비\n2. 손이 떨린다\n3. 실수가 두렵다\n4. 심호흡을 한다", nil
	})
	images := generatorFunc(func(ctx context.Context, req imagegen.Request) (*imagegen.Response, error) {
		return &imagegen.Response{Data: []byte("img"), MimeType: "image/png"}, nil
	})

	cfg := DefaultConfig()
	cfg.RateInterval = 0
	m, err := New(context.Background(), ManagerArgs{
		Config:         cfg,
		TextGenerator:  text,
		ImageGenerator: images,
		Weather:        stubWeather{},
	})
	require.NoError(t, err)

	comic, err := m.GenerateComic(context.Background(), readySession())
	require.NoError(t, err)
	assert.Empty(t, comic.Warnings)
	assert.Equal(t, 4, comic.ImageCount())
	assert.Contains(t, comic.Weather, "비")
	assert.Contains(t, comic.Panels[1].ImagePrompt, "손이 떨린다")
}

func TestManager_DegradesWithoutKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ImageProvider = imagegen.ProviderNone
	m, err := New(context.Background(), ManagerArgs{Config: cfg})
	require.NoError(t, err)

	assert.False(t, m.BuildPanelImageRunner().Enabled())

	comic, err := m.GenerateComic(context.Background(), readySession())
	require.NoError(t, err)
	require.Len(t, comic.Panels, domain.PanelCount)
	assert.True(t, comic.UsedFallback)
	assert.Contains(t, comic.Warnings, runner.WarnStoryFailed)
	assert.Contains(t, comic.Warnings, runner.WarnImagesDisabled)
	assert.Equal(t, weather.FallbackDescription, comic.Weather)

	sheet := m.BuildPublishRunner().PromptSheet(comic, m.PanelContext(readySession(), comic.Weather))
	assert.Contains(t, sheet, "[4]")
}

func TestManager_BuildSafetyChecker(t *testing.T) {
	calls := 0
	text := llm.GeneratorFunc(func(ctx context.Context, req llm.Request) (string, error) {
		calls++
		return "", errors.New("unavailable")
	})
	m, err := New(context.Background(), ManagerArgs{Config: DefaultConfig(), TextGenerator: text})
	require.NoError(t, err)

	checker, err := m.BuildSafetyChecker()
	require.NoError(t, err)
	v := checker.Check(context.Background(), "오늘 친구와 놀았다")
	assert.True(t, v.Safe, "LLM の失敗は安全側に倒さず通過させる")
	assert.Equal(t, 1, calls)
}

type generatorFunc func(ctx context.Context, req imagegen.Request) (*imagegen.Response, error)

func (f generatorFunc) Generate(ctx context.Context, req imagegen.Request) (*imagegen.Response, error) {
	return f(ctx, req)
}
