package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// jsonServer は受信したリクエストボディを記録し、固定のJSONを返すテストサーバーなのだ。
func jsonServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			m := map[string]any{}
			_ = json.Unmarshal(raw, &m)
			m["_path"] = r.URL.Path
			*captured = m
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{Provider: ProviderOpenAI})
	assert.Error(t, err, "APIキーなしはエラー")

	_, err = New(ctx, Config{Provider: "llama", APIKey: "k"})
	assert.Error(t, err)

	gen, err := New(ctx, Config{Provider: "OpenAI", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, gen)

	gen, err = New(ctx, Config{Provider: ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, gen)

	gen, err = New(ctx, Config{Provider: ProviderGemini, APIKey: "k", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, gen)
}

func TestOpenAIClient_Generate(t *testing.T) {
	var captured map[string]any
	srv := jsonServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "1. 하나\n2. 둘"}}]
	}`, &captured)

	c := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL}, srv.Client())
	out, err := c.Generate(context.Background(), Request{System: "sys", Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "1. 하나\n2. 둘", out)

	assert.Equal(t, DefaultOpenAIModel, captured["model"])
	msgs, ok := captured["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
	assert.True(t, strings.HasSuffix(captured["_path"].(string), "/chat/completions"))
}

func TestOpenAIClient_Empty(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"id": "x", "choices": []}`, nil)
	c := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL}, srv.Client())
	_, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestOpenAIClient_HTTPError(t *testing.T) {
	srv := jsonServer(t, http.StatusInternalServerError, `{"error": {"message": "boom"}}`, nil)
	c := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL}, srv.Client())
	_, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	assert.Error(t, err)
}

func TestAnthropicClient_Generate(t *testing.T) {
	var captured map[string]any
	srv := jsonServer(t, http.StatusOK, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-5-haiku-latest",
		"stop_reason": "end_turn",
		"content": [{"type": "text", "text": "SAFE"}],
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`, &captured)

	c := NewAnthropicClient(Config{APIKey: "k", BaseURL: srv.URL, Model: "claude-test"}, srv.Client())
	out, err := c.Generate(context.Background(), Request{System: "sys", Prompt: "check", MaxTokens: 10})
	require.NoError(t, err)
	assert.Equal(t, "SAFE", out)
	assert.Equal(t, "claude-test", captured["model"])
	assert.EqualValues(t, 10, captured["max_tokens"])
	assert.NotNil(t, captured["system"])
}

func TestAnthropicClient_Empty(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"id": "msg_1", "type": "message", "role": "assistant", "content": []}`, nil)
	c := NewAnthropicClient(Config{APIKey: "k", BaseURL: srv.URL}, srv.Client())
	_, err := c.Generate(context.Background(), Request{Prompt: "check"})
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

// fakeGemini は GenerateWithParts の呼び出しを記録する gemini.Generator なのだ。
type fakeGemini struct {
	text  string
	err   error
	model string
	parts []*genai.Part
	opts  gemini.GenerateOptions
}

func (f *fakeGemini) GenerateContent(ctx context.Context, model, prompt string) (*gemini.Response, error) {
	return f.GenerateWithParts(ctx, model, []*genai.Part{{Text: prompt}}, gemini.GenerateOptions{})
}

func (f *fakeGemini) GenerateWithParts(_ context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	f.model, f.parts, f.opts = model, parts, opts
	if f.err != nil {
		return nil, f.err
	}
	return &gemini.Response{Text: f.text}, nil
}

func (f *fakeGemini) IsVertexAI() bool { return false }

func TestGeminiClient_Generate(t *testing.T) {
	fake := &fakeGemini{text: " 1. 장면 "}
	var temps []float32
	c := NewGeminiClientWith("gemini-test", func(_ context.Context, temperature float32) (gemini.Generator, error) {
		temps = append(temps, temperature)
		return fake, nil
	})

	out, err := c.Generate(context.Background(), Request{System: "sys", Prompt: "story", MaxTokens: 16})
	require.NoError(t, err)
	assert.Equal(t, "1. 장면", out)
	assert.Equal(t, "gemini-test", fake.model)
	require.Len(t, fake.parts, 1)
	assert.Equal(t, "story", fake.parts[0].Text)
	assert.Equal(t, "sys", fake.opts.SystemPrompt)
	assert.False(t, fake.opts.HasImageConfig(), "テキスト生成に画像設定は付けない")

	_, err = c.Generate(context.Background(), Request{Prompt: "again"})
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), Request{Prompt: "classify", Temperature: Temp(0)})
	require.NoError(t, err)
	assert.Equal(t, []float32{DefaultTemperature, 0}, temps, "温度ごとに1回だけクライアントを作る")
}

func TestGeminiClient_Errors(t *testing.T) {
	t.Run("空の応答", func(t *testing.T) {
		c := NewGeminiClientWith("", func(context.Context, float32) (gemini.Generator, error) {
			return &fakeGemini{text: "  "}, nil
		})
		_, err := c.Generate(context.Background(), Request{Prompt: "p"})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("API エラー", func(t *testing.T) {
		c := NewGeminiClientWith("", func(context.Context, float32) (gemini.Generator, error) {
			return &fakeGemini{err: errors.New("quota")}, nil
		})
		_, err := c.Generate(context.Background(), Request{Prompt: "p"})
		assert.ErrorContains(t, err, DefaultGeminiModel)
	})

	t.Run("初期化エラー", func(t *testing.T) {
		c := NewGeminiClientWith("", func(context.Context, float32) (gemini.Generator, error) {
			return nil, errors.New("bad key")
		})
		_, err := c.Generate(context.Background(), Request{Prompt: "p"})
		assert.ErrorContains(t, err, "bad key")
	})
}

func TestGeneratorFunc(t *testing.T) {
	f := GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		return "echo " + req.Prompt, nil
	})
	out, err := f.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "echo x", out)

	assert.Equal(t, DefaultTemperature, Request{}.temperature())
	assert.Equal(t, float32(0), Request{Temperature: Temp(0)}.temperature())
	assert.Equal(t, DefaultMaxTokens, Request{}.maxTokens())
	assert.Equal(t, 5, Request{MaxTokens: 5}.maxTokens())
}
