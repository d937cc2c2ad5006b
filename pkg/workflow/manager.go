package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shouni/go-http-kit/httpkit"

	"github.com/shouni/go-emotion-comic/pkg/catalog"
	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/imagegen"
	"github.com/shouni/go-emotion-comic/pkg/llm"
	"github.com/shouni/go-emotion-comic/pkg/prompts"
	"github.com/shouni/go-emotion-comic/pkg/publisher"
	"github.com/shouni/go-emotion-comic/pkg/runner"
	"github.com/shouni/go-emotion-comic/pkg/safety"
	"github.com/shouni/go-emotion-comic/pkg/weather"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
// nil のフィールドは Config から生成されます。
type ManagerArgs struct {
	Config     Config
	HTTPClient *http.Client
	Catalog    *catalog.Catalog
	Writer     publisher.OutputWriter

	ScriptPrompt   prompts.ScriptPrompt
	ImagePrompt    prompts.ImagePrompt
	TextGenerator  llm.TextGenerator
	ImageGenerator imagegen.ImageGenerator
	Weather        weather.Provider
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg          Config
	catalog      *catalog.Catalog
	writer       publisher.OutputWriter
	text         llm.TextGenerator
	images       imagegen.ImageGenerator
	panels       imagegen.PanelsImageGenerator
	weather      weather.Provider
	scriptPrompt prompts.ScriptPrompt
	imagePrompt  prompts.ImagePrompt
}

// New は、設定を基に新しい Manager を初期化します。
// APIキーの欠落は致命的ではなく、該当する工程が既定値で動くだけなのだ。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	cfg := args.Config
	httpClient := args.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	cat := args.Catalog
	if cat == nil {
		loaded, err := catalog.Load()
		if err != nil {
			return nil, fmt.Errorf("カタログの読み込みに失敗しました: %w", err)
		}
		cat = loaded
	}

	sPrompt, err := initializeScriptPrompt(args.ScriptPrompt)
	if err != nil {
		return nil, err
	}

	writer := args.Writer
	if writer == nil {
		writer = publisher.NewLocalWriter()
	}

	images := initializeImageGenerator(ctx, cfg, args.ImageGenerator, httpClient)
	var panels imagegen.PanelsImageGenerator
	if images != nil {
		panels = imagegen.NewPanelGenerator(images, cfg.RateInterval, cfg.Concurrency)
	}

	return &Manager{
		cfg:          cfg,
		catalog:      cat,
		writer:       writer,
		text:         initializeTextGenerator(ctx, cfg, args.TextGenerator),
		images:       images,
		panels:       panels,
		weather:      initializeWeather(cfg, args.Weather, httpClient),
		scriptPrompt: sPrompt,
		imagePrompt:  initializeImagePrompt(args.ImagePrompt, cfg.StyleSuffix),
	}, nil
}

// Catalog は選択肢のカタログを返します。
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// BuildStoryRunner は物語生成を担当する Runner を作成するのだ。
func (m *Manager) BuildStoryRunner() StoryRunner {
	return runner.NewStoryRunner(m.catalog, m.scriptPrompt, m.text, m.weather, m.cfg.WeatherCity)
}

// BuildPanelImageRunner はパネル並列生成を担当する Runner を作成するのだ。
func (m *Manager) BuildPanelImageRunner() PanelImageRunner {
	return runner.NewPanelImageRunner(m.imagePrompt, m.panels)
}

// BuildStripImageRunner は4コマを1枚にまとめた画像の生成を担当する Runner を作成するのだ。
func (m *Manager) BuildStripImageRunner() StripImageRunner {
	return runner.NewStripImageRunner(m.imagePrompt, m.images)
}

// BuildPublishRunner は成果物のパブリッシュを担当する Runner を作成するのだ。
func (m *Manager) BuildPublishRunner() PublishRunner {
	return runner.NewPublishRunner(publisher.NewComicPublisher(m.writer), m.imagePrompt)
}

// BuildSafetyChecker はキーワードと LLM による入力チェッカーを作成します。
// テキスト生成クライアントがなければキーワードのみで判定するのだ。
func (m *Manager) BuildSafetyChecker() (*safety.Checker, error) {
	kf, err := safety.LoadKeywordFilter(nil)
	if err != nil {
		return nil, err
	}
	var classifier safety.Classifier
	if m.text != nil {
		classifier = safety.NewLLMClassifier(m.text, m.scriptPrompt)
	}
	return safety.NewChecker(kf, classifier), nil
}

// PanelContext はセッションと天気からパネル共通の文脈を作ります。
func (m *Manager) PanelContext(s *domain.Session, weatherDesc string) prompts.PanelContext {
	return prompts.NewPanelContext(m.catalog, s.ID, s.Profile, s.Emotion, weatherDesc)
}

// GenerateComic は物語と画像を生成し、必ず Comic を返します。
// 外部 API の失敗は Comic.Warnings に記録されるのだ。
func (m *Manager) GenerateComic(ctx context.Context, s *domain.Session) (*domain.Comic, error) {
	comic, err := m.BuildStoryRunner().Run(ctx, s)
	if err != nil {
		return nil, err
	}

	pc := m.PanelContext(s, comic.Weather)
	if err := m.BuildPanelImageRunner().Run(ctx, comic, pc); err != nil {
		slog.WarnContext(ctx, "画像生成が中断されました", "session_id", s.ID, "error", err)
	}
	return comic, nil
}

func initializeTextGenerator(ctx context.Context, cfg Config, override llm.TextGenerator) llm.TextGenerator {
	if override != nil {
		return override
	}
	gen, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		Timeout:  cfg.RequestTimeout,
	})
	if err != nil {
		slog.Warn("テキスト生成クライアントを初期化できません。既定のシーンで動作します", "provider", cfg.LLMProvider, "error", err)
		return nil
	}
	return gen
}

// initializeImageGenerator は画像生成クライアントを返します。画像生成が無効なら nil なのだ。
func initializeImageGenerator(ctx context.Context, cfg Config, override imagegen.ImageGenerator, httpClient *http.Client) imagegen.ImageGenerator {
	if override != nil {
		return override
	}
	gen, err := imagegen.New(ctx, imagegen.Config{
		Provider: cfg.ImageProvider,
		APIKey:   cfg.ImageAPIKey,
		Model:    cfg.ImageModel,
		BaseURL:  cfg.ImageBaseURL,
		Timeout:  cfg.RequestTimeout,
	}, httpClient)
	if err != nil {
		slog.Warn("画像生成クライアントを初期化できません。プロンプトのみ出力します", "provider", cfg.ImageProvider, "error", err)
		return nil
	}
	return gen
}

func initializeWeather(cfg Config, override weather.Provider, httpClient *http.Client) weather.Provider {
	if override != nil {
		return override
	}
	if cfg.WeatherAPIKey == "" {
		return nil
	}
	fetcher := weather.NewHTTPFetcher(cfg.RequestTimeout, httpkit.WithHTTPClient(httpClient))
	return weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, fetcher, weather.DefaultCacheTTL)
}

// initializeScriptPrompt は ScriptPrompt ビルダーを初期化します。
// 引数として既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializeScriptPrompt(scriptPrompt prompts.ScriptPrompt) (prompts.ScriptPrompt, error) {
	if scriptPrompt != nil {
		return scriptPrompt, nil
	}
	pb, err := prompts.NewTextPromptBuilder(nil)
	if err != nil {
		return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
	}
	return pb, nil
}

// initializeImagePrompt は ImagePromptBuilder を初期化します。
func initializeImagePrompt(imagePrompt prompts.ImagePrompt, styleSuffix string) prompts.ImagePrompt {
	if imagePrompt != nil {
		return imagePrompt
	}
	return prompts.NewImagePromptBuilder(styleSuffix)
}
