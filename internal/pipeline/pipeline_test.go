package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-emotion-comic/internal/builder"
	"github.com/shouni/go-emotion-comic/internal/config"
	"github.com/shouni/go-emotion-comic/pkg/imagegen"
	"github.com/shouni/go-emotion-comic/pkg/llm"
	"github.com/shouni/go-emotion-comic/pkg/prompts"
	"github.com/shouni/go-emotion-comic/pkg/session"
	"github.com/shouni/go-emotion-comic/pkg/usage"
	"github.com/shouni/go-emotion-comic/pkg/wizard"
	"github.com/shouni/go-emotion-comic/pkg/workflow"
)

func newAppContext(t *testing.T, imageProvider string, limit int) *builder.AppContext {
	t.Helper()
	cfg := &config.Config{
		LLMProvider:    "gemini",
		ImageProvider:  imageProvider,
		DailyLimit:     limit,
		UsageBackend:   config.BackendMemory,
		SessionBackend: config.BackendMemory,
		SessionTTL:     session.DefaultTTL,
		OutputDir:      t.TempDir(),
		Options: config.GenerateOptions{
			AgeGroup:  "child",
			Gender:    "unspecified",
			ArtStyle:  "crayon",
			Situation: "강아지를 잃어버렸다",
			Emotion:   "sadness",
			Reason:    "가장 친한 친구라서",
		},
	}
	text := llm.GeneratorFunc(func(ctx context.Context, req llm.Request) (string, error) {
		if req.Prompt == "" {
			return "", errors.New("empty prompt")
		}
		return "SAFE\n1. 강아지를 찾는다\n2. 눈물이 난다\n3. 추억을 떠올린다\n4. 전단지를 붙인다", nil
	})
	args := workflow.ManagerArgs{TextGenerator: text}
	if imageProvider != imagegen.ProviderNone {
		args.ImageGenerator = imageFunc(func(ctx context.Context, req imagegen.Request) (*imagegen.Response, error) {
			return &imagegen.Response{Data: []byte("png"), MimeType: "image/png"}, nil
		})
	}
	appCtx, err := builder.BuildAppContext(context.Background(), cfg, args)
	require.NoError(t, err)
	return appCtx
}

type imageFunc func(ctx context.Context, req imagegen.Request) (*imagegen.Response, error)

func (f imageFunc) Generate(ctx context.Context, req imagegen.Request) (*imagegen.Response, error) {
	return f(ctx, req)
}

func TestExecuteGenerate(t *testing.T) {
	appCtx := newAppContext(t, imagegen.ProviderGemini, 5)

	result, err := ExecuteGenerate(context.Background(), appCtx)
	require.NoError(t, err)
	assert.Len(t, result.ImagePaths, 4)

	md, err := os.ReadFile(result.MarkdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "강아지를 찾는다")
}

func TestExecutePrompts(t *testing.T) {
	appCtx := newAppContext(t, imagegen.ProviderNone, 5)

	var buf bytes.Buffer
	require.NoError(t, ExecutePrompts(context.Background(), appCtx, &buf))
	assert.Contains(t, buf.String(), prompts.ExternalParams)
	assert.Contains(t, buf.String(), "[4] 전단지를 붙인다")
}

func TestExecuteGenerate_Errors(t *testing.T) {
	t.Run("不正な入力", func(t *testing.T) {
		appCtx := newAppContext(t, imagegen.ProviderNone, 5)
		appCtx.Config.Options.Emotion = "boredom"
		_, err := ExecuteGenerate(context.Background(), appCtx)
		assert.ErrorIs(t, err, wizard.ErrInvalidInput)
	})

	t.Run("1日の上限", func(t *testing.T) {
		appCtx := newAppContext(t, imagegen.ProviderNone, 1)
		var buf bytes.Buffer
		require.NoError(t, ExecutePrompts(context.Background(), appCtx, &buf))
		err := ExecutePrompts(context.Background(), appCtx, &buf)
		assert.ErrorIs(t, err, usage.ErrLimitExceeded)
	})
}

func TestExecuteGenerate_Strip(t *testing.T) {
	appCtx := newAppContext(t, imagegen.ProviderGemini, 5)
	appCtx.Config.Options.Strip = true

	result, err := ExecuteGenerate(context.Background(), appCtx)
	require.NoError(t, err)
	require.NotEmpty(t, result.StripPath)

	md, err := os.ReadFile(result.MarkdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "images/strip.png")
}
