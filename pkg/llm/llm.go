// Package llm は、物語生成と安全性判定に使うテキスト生成クライアントを提供します。
// Gemini / OpenAI / Anthropic のいずれかを Provider 名で切り替えられるのだ。
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	DefaultTemperature = float32(0.8)
	DefaultMaxTokens   = 1024
)

// ErrEmptyResponse は API が空の応答を返したことを示します。
var ErrEmptyResponse = errors.New("llm: 空の応答が返されました")

// Request はテキスト生成の1回分の入力です。
type Request struct {
	System      string
	Prompt      string
	// Temperature が nil なら DefaultTemperature を使います。0 も指定できるのだ。
	Temperature *float32
	MaxTokens   int
}

// Temp は温度の値をポインタにするヘルパーです。
func Temp(v float32) *float32 {
	return &v
}

func (r Request) temperature() float32 {
	if r.Temperature == nil {
		return DefaultTemperature
	}
	return *r.Temperature
}

func (r Request) maxTokens() int {
	if r.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return r.MaxTokens
}

// TextGenerator はプロンプトからテキストを生成する契約です。
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config はクライアント生成に必要な設定です。
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string // テストや互換エンドポイント向けの上書き
	Timeout  time.Duration
}

// New は Provider 名に応じた TextGenerator を生成します。
func New(ctx context.Context, cfg Config) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s の APIキーが設定されていません", cfg.Provider)
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		return NewGeminiClient(cfg), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, httpClient), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("未対応のLLMプロバイダです: '%s'", cfg.Provider)
	}
}

// GeneratorFunc は関数を TextGenerator として扱うためのアダプタなのだ。
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate は f(ctx, req) を呼び出します。
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func checkText(provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", provider, ErrEmptyResponse)
	}
	return text, nil
}
