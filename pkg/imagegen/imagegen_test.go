package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool
}

func (f *fakeGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[req.Prompt] {
		return nil, errors.New("quota exceeded")
	}
	return &Response{URL: "https://img.example/" + req.Prompt + ".png"}, nil
}

func TestPanelGenerator_Execute(t *testing.T) {
	fake := &fakeGenerator{fail: map[string]bool{"p3": true}}
	pg := NewPanelGenerator(fake, 0, 4)

	reqs := []Request{{Prompt: "p1"}, {Prompt: "p2"}, {Prompt: "p3"}, {Prompt: "p4"}}
	results := pg.Execute(context.Background(), reqs)

	require.Len(t, results, 4)
	assert.Equal(t, "https://img.example/p1.png", results[0].Response.URL)
	assert.Equal(t, "https://img.example/p4.png", results[3].Response.URL)
	assert.Error(t, results[2].Err, "失敗したパネルはエラーを記録する")
	assert.Nil(t, results[2].Response)
	assert.Contains(t, results[2].Err.Error(), "panel 3")

	t.Run("成功したパネルはキャッシュされる", func(t *testing.T) {
		before := fake.calls
		again := pg.Execute(context.Background(), reqs[:2])
		assert.NoError(t, again[0].Err)
		assert.Equal(t, before, fake.calls)
	})
}

func TestPanelGenerator_EmptyResponse(t *testing.T) {
	empty := generatorFunc(func(ctx context.Context, req Request) (*Response, error) {
		return &Response{}, nil
	})
	results := NewPanelGenerator(empty, 0, 1).Execute(context.Background(), []Request{{Prompt: "x"}})
	assert.ErrorIs(t, results[0].Err, errNoImage)
}

func TestPanelGenerator_CancelledContext(t *testing.T) {
	fake := &fakeGenerator{}
	pg := NewPanelGenerator(fake, time.Hour, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := pg.Execute(ctx, []Request{{Prompt: "a"}, {Prompt: "b"}})
	// 1枚目はバーストで通過できるが、2枚目は待機が中断されるのだ
	errs := 0
	for _, r := range results {
		if r.Err != nil {
			errs++
		}
	}
	assert.GreaterOrEqual(t, errs, 1)
}

type generatorFunc func(ctx context.Context, req Request) (*Response, error)

func (f generatorFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

func TestCacheKey(t *testing.T) {
	s1, s2 := int64(1), int64(2)
	assert.Equal(t, cacheKey(Request{Prompt: "a"}), cacheKey(Request{Prompt: "a"}))
	assert.NotEqual(t, cacheKey(Request{Prompt: "a", Seed: &s1}), cacheKey(Request{Prompt: "a", Seed: &s2}))
	assert.NotEqual(t, cacheKey(Request{Prompt: "ab"}), cacheKey(Request{Prompt: "a", NegativePrompt: "b"}))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	gen, err := New(ctx, Config{Provider: ProviderNone}, nil)
	assert.NoError(t, err)
	assert.Nil(t, gen)

	_, err = New(ctx, Config{Provider: ProviderOpenAI}, nil)
	assert.Error(t, err)

	_, err = New(ctx, Config{Provider: "midjourney", APIKey: "k"}, nil)
	assert.Error(t, err)

	gen, err = New(ctx, Config{Provider: ProviderOpenAI, APIKey: "k"}, http.DefaultClient)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, gen)

	gen, err = New(ctx, Config{Provider: ProviderGemini, APIKey: "k", Timeout: time.Second}, nil)
	require.NoError(t, err)
	assert.IsType(t, &GeminiGenerator{}, gen)
}

func captureServer(t *testing.T, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		m := map[string]any{}
		_ = json.Unmarshal(raw, &m)
		m["_path"] = r.URL.Path
		*captured = m
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	var captured map[string]any
	srv := captureServer(t, `{"created": 1, "data": [{"url": "https://cdn.example/panel.png"}]}`, &captured)

	g := NewOpenAIGenerator("k", "", srv.URL, srv.Client())
	resp, err := g.Generate(context.Background(), Request{Prompt: "a cat", NegativePrompt: "text"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/panel.png", resp.URL)
	assert.Equal(t, "dall-e-3", captured["model"])
	assert.Equal(t, "url", captured["response_format"])
	assert.Equal(t, "a cat. Avoid: text", captured["prompt"])
}

func TestOpenAIGenerator_Base64(t *testing.T) {
	var captured map[string]any
	srv := captureServer(t, `{"created": 1, "data": [{"b64_json": "aGVsbG8="}]}`, &captured)

	g := NewOpenAIGenerator("k", "gpt-image-1", srv.URL, srv.Client())
	resp, err := g.Generate(context.Background(), Request{Prompt: "a cat"})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), resp.Data)
	_, hasFormat := captured["response_format"]
	assert.False(t, hasFormat)
}

type fakeImageModel struct {
	model string
	parts []*genai.Part
	opts  gemini.GenerateOptions
	raw   *genai.GenerateContentResponse
	err   error
}

func (f *fakeImageModel) GenerateContent(ctx context.Context, model, prompt string) (*gemini.Response, error) {
	return nil, errors.New("not used")
}

func (f *fakeImageModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	f.model, f.parts, f.opts = model, parts, opts
	if f.err != nil {
		return nil, f.err
	}
	return &gemini.Response{RawResponse: f.raw}, nil
}

func (f *fakeImageModel) IsVertexAI() bool { return false }

func (f *fakeImageModel) UploadFile(ctx context.Context, r io.Reader, mimeType, displayName string) (string, string, error) {
	return "", "", errors.New("not used")
}

func (f *fakeImageModel) DeleteFile(ctx context.Context, name string) error { return nil }

func imageReply(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		FinishReason: genai.FinishReasonStop,
		Content:      &genai.Content{Role: "model", Parts: parts},
	}}}
}

func TestGeminiGenerator_Generate(t *testing.T) {
	fake := &fakeImageModel{raw: imageReply(
		&genai.Part{Text: "here you go"},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("hello")}},
	)}
	g, err := NewGeminiGenerator(fake, newDownloader(time.Second, nil), "gemini-image-test")
	require.NoError(t, err)

	seed := int64(42)
	resp, err := g.Generate(context.Background(), Request{
		Prompt:         "a cat",
		SystemPrompt:   "manga style",
		NegativePrompt: "text",
		Seed:           &seed,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), resp.Data)
	assert.Equal(t, "image/png", resp.MimeType)
	assert.Equal(t, int64(42), resp.UsedSeed)

	assert.Equal(t, "gemini-image-test", fake.model)
	require.Len(t, fake.parts, 1, "参照画像が無いのでテキストだけが送られる")
	assert.True(t, strings.HasPrefix(fake.parts[0].Text, "a cat"))
	assert.Contains(t, fake.parts[0].Text, "text")
	assert.Equal(t, "manga style", fake.opts.SystemPrompt)
	assert.Equal(t, PanelAspectRatio, fake.opts.AspectRatio)
	assert.Equal(t, ImageSize1K, fake.opts.ImageSize)
	require.NotNil(t, fake.opts.Seed)
	assert.Equal(t, int64(42), *fake.opts.Seed)
}

func TestGeminiGenerator_DefaultModelAndSeedMask(t *testing.T) {
	fake := &fakeImageModel{raw: imageReply(&genai.Part{InlineData: &genai.Blob{Data: []byte("x")}})}
	g, err := NewGeminiGenerator(fake, newDownloader(time.Second, nil), "")
	require.NoError(t, err)

	seed := int64(1<<40 | 7)
	resp, err := g.Generate(context.Background(), Request{Prompt: "a cat", Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiImageModel, fake.model)
	assert.Equal(t, int64(7), *fake.opts.Seed)
	assert.Equal(t, "image/png", resp.MimeType)
}

func TestGeminiGenerator_Errors(t *testing.T) {
	t.Run("画像が無い応答", func(t *testing.T) {
		fake := &fakeImageModel{raw: imageReply(&genai.Part{Text: "sorry"})}
		g, err := NewGeminiGenerator(fake, newDownloader(time.Second, nil), "")
		require.NoError(t, err)
		_, err = g.Generate(context.Background(), Request{Prompt: "a cat"})
		assert.ErrorContains(t, err, "画像生成に失敗しました")
	})

	t.Run("APIエラー", func(t *testing.T) {
		fake := &fakeImageModel{err: errors.New("quota exceeded")}
		g, err := NewGeminiGenerator(fake, newDownloader(time.Second, nil), "")
		require.NoError(t, err)
		_, err = g.Generate(context.Background(), Request{Prompt: "a cat"})
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("クライアント無し", func(t *testing.T) {
		_, err := NewGeminiGenerator(nil, newDownloader(time.Second, nil), "")
		assert.Error(t, err)
	})
}
