package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	imagekit "github.com/shouni/gemini-image-kit/generator"
	"github.com/shouni/gemini-image-kit/ports"
	"github.com/shouni/go-gemini-client/gemini"
)

// assetCacheTTL は File API へのアップロード結果を覚えておく時間です。
const assetCacheTTL = 1 * time.Hour

var (
	errNoImage           = errors.New("imagegen: 応答に画像が含まれていません")
	errUnsupportedSource = errors.New("imagegen: クラウドストレージ上の参照画像には対応していません")
)

// noStorageReader は参照画像を使わないための ContentReader なのだ。
type noStorageReader struct{}

func (noStorageReader) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errUnsupportedSource
}

// GeminiGenerator は gemini-image-kit でパネル画像を生成します。
type GeminiGenerator struct {
	panels ports.ImageGenerator
	model  string
}

// NewGeminiGenerator は画像処理コアと生成器を組み立てます。
func NewGeminiGenerator(aiClient gemini.GenerativeModel, downloader ports.Downloader, model string) (*GeminiGenerator, error) {
	core, err := imagekit.NewGeminiImageCore(
		aiClient,
		noStorageReader{},
		downloader,
		cache.New(assetCacheTTL, 2*assetCacheTTL),
		assetCacheTTL,
		false,
	)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCoreの初期化に失敗したのだ: %w", err)
	}

	gen, err := imagekit.NewGeminiGenerator(core)
	if err != nil {
		return nil, fmt.Errorf("GeminiGeneratorの初期化に失敗したのだ: %w", err)
	}
	if model == "" {
		model = DefaultGeminiImageModel
	}
	return &GeminiGenerator{panels: gen, model: model}, nil
}

// Generate は1枚の画像を生成します。
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	var seed *int64
	if req.Seed != nil {
		// go-gemini-client は int32 に収まらないシードを捨てるのだ
		s := *req.Seed & 0x7FFFFFFF
		seed = &s
	}

	resp, err := g.panels.GenerateMangaPanel(ctx, ports.ImagePanelRequest{
		GenerationOptions: ports.GenerationOptions{
			Model:          g.model,
			Prompt:         req.Prompt,
			SystemPrompt:   req.SystemPrompt,
			NegativePrompt: req.NegativePrompt,
			AspectRatio:    aspectRatio(req.AspectRatio),
			ImageSize:      ImageSize1K,
			Seed:           seed,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini (%s) の画像生成に失敗しました: %w", g.model, err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, errNoImage
	}
	return &Response{
		Data:     resp.Data,
		MimeType: mimeOrPNG(resp.MimeType),
		UsedSeed: resp.UsedSeed,
	}, nil
}

func aspectRatio(v string) string {
	if v == "" {
		return PanelAspectRatio
	}
	return v
}

func mimeOrPNG(m string) string {
	if m == "" {
		return "image/png"
	}
	return m
}
