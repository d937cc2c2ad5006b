package imagegen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"github.com/shouni/go-http-kit/httpkit"
)

// geminiRetries は go-gemini-client が受け付ける最小のリトライ回数です。
const geminiRetries = 1

// Config は画像生成クライアントの設定です。
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New は Provider に応じた ImageGenerator を返します。
// ProviderNone の場合は (nil, nil) を返し、呼び出し側はプロンプトのみのモードで動作するのだ。
func New(ctx context.Context, cfg Config, httpClient *http.Client) (ImageGenerator, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == ProviderNone {
		return nil, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("画像生成 (%s) の APIキーが設定されていません", cfg.Provider)
	}

	switch provider {
	case ProviderGemini, "":
		aiClient, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:       cfg.APIKey,
			MaxRetries:   geminiRetries,
			InitialDelay: 2 * time.Second,
			MaxDelay:     5 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("Gemini画像クライアントの初期化に失敗しました: %w", err)
		}
		g, err := NewGeminiGenerator(aiClient, newDownloader(cfg.Timeout, httpClient), cfg.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model, cfg.BaseURL, httpClient), nil
	default:
		return nil, fmt.Errorf("未対応の画像プロバイダです: '%s'", cfg.Provider)
	}
}

// newDownloader は参照画像の取得に使う httpkit クライアントです。リトライはしないのだ。
func newDownloader(timeout time.Duration, httpClient *http.Client) *httpkit.Client {
	opts := []httpkit.ClientOption{httpkit.WithMaxRetries(0)}
	if httpClient != nil {
		opts = append(opts, httpkit.WithHTTPClient(httpClient))
	}
	return httpkit.New(timeout, opts...)
}
