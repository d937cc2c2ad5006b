package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// geminiRetries は go-gemini-client が受け付ける最小のリトライ回数です。
const geminiRetries = 1

// GeminiFactory は温度ごとの Gemini クライアントを作る関数です。
type GeminiFactory func(ctx context.Context, temperature float32) (gemini.Generator, error)

// GeminiClient は go-gemini-client を使ったテキスト生成クライアントです。
// go-gemini-client の温度はクライアント単位なので、温度ごとにクライアントを1つ作って使い回すのだ。
// 出力トークンの上限は指定しません。2.5 系は思考トークンも上限に数えるため、短い上限だと本文が空になります。
type GeminiClient struct {
	model   string
	factory GeminiFactory

	mu      sync.Mutex
	clients map[float32]gemini.Generator
}

// NewGeminiClient は APIキーから Gemini クライアントを遅延生成する GeminiClient を返します。
func NewGeminiClient(cfg Config) *GeminiClient {
	apiKey := cfg.APIKey
	return NewGeminiClientWith(cfg.Model, func(ctx context.Context, temperature float32) (gemini.Generator, error) {
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:       apiKey,
			Temperature:  genai.Ptr(temperature),
			MaxRetries:   geminiRetries,
			InitialDelay: 2 * time.Second,
			MaxDelay:     5 * time.Second,
		})
	})
}

// NewGeminiClientWith は任意のファクトリで GeminiClient を組み立てます。
func NewGeminiClientWith(model string, factory GeminiFactory) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		model:   model,
		factory: factory,
		clients: make(map[float32]gemini.Generator),
	}
}

func (c *GeminiClient) clientFor(ctx context.Context, temperature float32) (gemini.Generator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.clients[temperature]; ok {
		return g, nil
	}
	g, err := c.factory(ctx, temperature)
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの初期化に失敗しました: %w", err)
	}
	c.clients[temperature] = g
	return g, nil
}

// Generate は GenerateWithParts を呼び、応答のテキスト部分を返します。
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	g, err := c.clientFor(ctx, req.temperature())
	if err != nil {
		return "", err
	}

	parts := []*genai.Part{{Text: req.Prompt}}
	resp, err := g.GenerateWithParts(ctx, c.model, parts, gemini.GenerateOptions{SystemPrompt: req.System})
	if err != nil {
		return "", fmt.Errorf("Gemini (%s) の呼び出しに失敗しました: %w", c.model, err)
	}
	return checkText("gemini", resp.Text)
}
