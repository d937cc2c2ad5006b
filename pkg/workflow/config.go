package workflow

import (
	"time"

	"github.com/shouni/go-emotion-comic/pkg/imagegen"
	"github.com/shouni/go-emotion-comic/pkg/llm"
	"github.com/shouni/go-emotion-comic/pkg/weather"
)

// デフォルト値の定義なのだ
const (
	DefaultRateInterval   = 2 * time.Second
	DefaultConcurrency    = imagegen.DefaultConcurrency
	DefaultRequestTimeout = 60 * time.Second
	DefaultStyleSuffix    = "soft webtoon illustration, clean line art, gentle pastel colors, expressive faces, warm lighting"
)

// Config は各 Runner を動作させるための基本設定なのだ。
type Config struct {
	// --- Text Generation ---
	LLMProvider string
	LLMAPIKey   string
	LLMModel    string
	LLMBaseURL  string

	// --- Image Generation ---
	ImageProvider string
	ImageAPIKey   string
	ImageModel    string
	ImageBaseURL  string
	StyleSuffix   string
	RateInterval  time.Duration
	Concurrency   int

	// --- Weather ---
	WeatherAPIKey  string
	WeatherBaseURL string
	WeatherCity    string

	// --- Timeout ---
	RequestTimeout time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数なのだ。
func DefaultConfig() Config {
	return Config{
		LLMProvider:    llm.ProviderGemini,
		ImageProvider:  imagegen.ProviderGemini,
		StyleSuffix:    DefaultStyleSuffix,
		RateInterval:   DefaultRateInterval,
		Concurrency:    DefaultConcurrency,
		WeatherBaseURL: weather.DefaultBaseURL,
		WeatherCity:    weather.DefaultCity,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// ImagesEnabled は画像生成を行う設定かどうかを返します。
func (c Config) ImagesEnabled() bool {
	return c.ImageProvider != imagegen.ProviderNone
}
