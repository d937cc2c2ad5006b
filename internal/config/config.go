package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"
	"github.com/spf13/viper"

	"github.com/shouni/go-emotion-comic/pkg/imagegen"
	"github.com/shouni/go-emotion-comic/pkg/llm"
	"github.com/shouni/go-emotion-comic/pkg/session"
	"github.com/shouni/go-emotion-comic/pkg/usage"
	"github.com/shouni/go-emotion-comic/pkg/weather"
	"github.com/shouni/go-emotion-comic/pkg/workflow"
)

// デフォルト値の定義なのだ
const (
	DefaultLLMProvider     = llm.ProviderGemini
	DefaultImageProvider   = imagegen.ProviderGemini
	DefaultHTTPTimeout     = 60 * time.Second
	DefaultImageInterval   = workflow.DefaultRateInterval
	DefaultDailyLimit      = usage.DefaultLimit
	DefaultUsageBackend    = BackendMemory
	DefaultUsageDir        = "usage_data"
	DefaultSessionBackend  = BackendMemory
	DefaultSessionTTL      = session.DefaultTTL
	DefaultListenAddr      = ":8080"
	DefaultRateLimitPerMin = 60
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultOutputDir       = "output"
	DefaultEnvFile         = ".env"
)

// ストレージのバックエンド名です。
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config はアプリケーション全体の環境設定（APIキーや保存先）を保持する構造体なのだ。
type Config struct {
	LLMProvider   string
	ImageProvider string

	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiModel     string
	OpenAIModel     string
	AnthropicModel  string
	ImageModel      string
	StyleSuffix     string

	WeatherAPIKey  string
	WeatherBaseURL string
	WeatherCity    string

	DailyLimit     int
	UsageBackend   string
	UsageDir       string
	SessionBackend string
	SessionTTL     time.Duration
	RedisURL       string

	HTTPTimeout     time.Duration
	ImageInterval   time.Duration
	ListenAddr      string
	RateLimitPerMin int
	LogLevel        string
	LogFormat       string
	OutputDir       string

	Options GenerateOptions
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ウィザードの入力
	AgeGroup  string // --age
	Gender    string // --gender
	ArtStyle  string // --style
	Situation string // --situation
	Emotion   string // --emotion
	Reason    string // --reason

	// 上書き設定
	Model         string // --model: テキスト生成モデル
	ImageProvider string // --image-provider
	City          string // --city
	OutputDir     string // --output-dir
	Addr          string // --addr
	Strip         bool   // --strip: 4コマを1枚にまとめた画像も生成する
}

// LoadConfig は .env と環境変数から設定を読み込むのだ！
// 読み込むファイルは ENV_FILE で変えられます。ファイルが存在しないのはエラーではありません。
func LoadConfig() (*Config, error) {
	envFile := envutil.GetEnv("ENV_FILE", DefaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s の読み込みに失敗しました: %w", envFile, err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("llm_provider", DefaultLLMProvider)
	v.SetDefault("image_provider", DefaultImageProvider)
	// 画像モデルと画風の接尾辞は IMAGE_GEMINI_MODEL / IMAGE_PROMPT_SUFFIX でも指定できるのだ
	v.SetDefault("image_model", envutil.GetEnv("IMAGE_GEMINI_MODEL", ""))
	v.SetDefault("style_suffix", envutil.GetEnv("IMAGE_PROMPT_SUFFIX", workflow.DefaultStyleSuffix))
	v.SetDefault("weather_base_url", weather.DefaultBaseURL)
	v.SetDefault("weather_city", weather.DefaultCity)
	v.SetDefault("daily_limit", DefaultDailyLimit)
	v.SetDefault("usage_backend", DefaultUsageBackend)
	v.SetDefault("usage_dir", DefaultUsageDir)
	v.SetDefault("session_backend", DefaultSessionBackend)
	v.SetDefault("session_ttl", DefaultSessionTTL)
	v.SetDefault("http_timeout", DefaultHTTPTimeout)
	v.SetDefault("image_interval", DefaultImageInterval)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("rate_limit_per_min", DefaultRateLimitPerMin)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("output_dir", DefaultOutputDir)
	return v
}

// FromViper は viper の値から Config を組み立て、値を検証します。
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		LLMProvider:     strings.ToLower(v.GetString("llm_provider")),
		ImageProvider:   strings.ToLower(v.GetString("image_provider")),
		GeminiAPIKey:    v.GetString("gemini_api_key"),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		GeminiModel:     v.GetString("gemini_model"),
		OpenAIModel:     v.GetString("openai_model"),
		AnthropicModel:  v.GetString("anthropic_model"),
		ImageModel:      v.GetString("image_model"),
		StyleSuffix:     v.GetString("style_suffix"),
		WeatherAPIKey:   v.GetString("weather_api_key"),
		WeatherBaseURL:  v.GetString("weather_base_url"),
		WeatherCity:     v.GetString("weather_city"),
		DailyLimit:      v.GetInt("daily_limit"),
		UsageBackend:    strings.ToLower(v.GetString("usage_backend")),
		UsageDir:        v.GetString("usage_dir"),
		SessionBackend:  strings.ToLower(v.GetString("session_backend")),
		SessionTTL:      v.GetDuration("session_ttl"),
		RedisURL:        v.GetString("redis_url"),
		HTTPTimeout:     v.GetDuration("http_timeout"),
		ImageInterval:   v.GetDuration("image_interval"),
		ListenAddr:      v.GetString("listen_addr"),
		RateLimitPerMin: v.GetInt("rate_limit_per_min"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		OutputDir:       v.GetString("output_dir"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は列挙値と数値の範囲を検証します。
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case llm.ProviderGemini, llm.ProviderOpenAI, llm.ProviderAnthropic:
	default:
		return fmt.Errorf("LLM_PROVIDER が不正です: '%s'", c.LLMProvider)
	}
	switch c.ImageProvider {
	case imagegen.ProviderGemini, imagegen.ProviderOpenAI, imagegen.ProviderNone:
	default:
		return fmt.Errorf("IMAGE_PROVIDER が不正です: '%s'", c.ImageProvider)
	}
	switch c.UsageBackend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("USAGE_BACKEND が不正です: '%s'", c.UsageBackend)
	}
	switch c.SessionBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("SESSION_BACKEND が不正です: '%s'", c.SessionBackend)
	}
	if c.DailyLimit <= 0 {
		return fmt.Errorf("DAILY_LIMIT は1以上である必要があります: %d", c.DailyLimit)
	}
	if (c.UsageBackend == BackendRedis || c.SessionBackend == BackendRedis) && c.RedisURL == "" {
		return fmt.Errorf("redis バックエンドには REDIS_URL が必要です")
	}
	return nil
}

// ApplyOptions は CLI フラグで指定された値を設定に反映します。空の値は無視するのだ。
func (c *Config) ApplyOptions(opts GenerateOptions) {
	c.Options = opts
	if opts.ImageProvider != "" {
		c.ImageProvider = strings.ToLower(opts.ImageProvider)
	}
	if opts.City != "" {
		c.WeatherCity = opts.City
	}
	if opts.OutputDir != "" {
		c.OutputDir = opts.OutputDir
	}
	if opts.Addr != "" {
		c.ListenAddr = opts.Addr
	}
	if opts.Model != "" {
		switch c.LLMProvider {
		case llm.ProviderOpenAI:
			c.OpenAIModel = opts.Model
		case llm.ProviderAnthropic:
			c.AnthropicModel = opts.Model
		default:
			c.GeminiModel = opts.Model
		}
	}
}

// apiKeyFor はプロバイダ名に対応する APIキーを返します。
func (c *Config) apiKeyFor(provider string) string {
	switch provider {
	case llm.ProviderOpenAI:
		return c.OpenAIAPIKey
	case llm.ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

func (c *Config) llmModel() string {
	switch c.LLMProvider {
	case llm.ProviderOpenAI:
		return c.OpenAIModel
	case llm.ProviderAnthropic:
		return c.AnthropicModel
	default:
		return c.GeminiModel
	}
}

// WorkflowConfig は workflow.Manager 用の設定に変換します。
func (c *Config) WorkflowConfig() workflow.Config {
	wc := workflow.DefaultConfig()
	wc.LLMProvider = c.LLMProvider
	wc.LLMAPIKey = c.apiKeyFor(c.LLMProvider)
	wc.LLMModel = c.llmModel()

	wc.ImageProvider = c.ImageProvider
	wc.ImageAPIKey = c.apiKeyFor(c.ImageProvider)
	wc.ImageModel = c.ImageModel
	if c.StyleSuffix != "" {
		wc.StyleSuffix = c.StyleSuffix
	}
	wc.RateInterval = c.ImageInterval

	wc.WeatherAPIKey = c.WeatherAPIKey
	wc.WeatherBaseURL = c.WeatherBaseURL
	wc.WeatherCity = c.WeatherCity
	wc.RequestTimeout = c.HTTPTimeout
	return wc
}
