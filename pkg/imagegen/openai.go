package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIGenerator は Images API で画像を生成します。
// dall-e 系は URL、gpt-image 系は base64 の画像データを返すのだ。
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator は OpenAIGenerator を初期化します。
func NewOpenAIGenerator(apiKey, model, baseURL string, httpClient *http.Client) *OpenAIGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultOpenAIImageModel
	}
	return &OpenAIGenerator{client: openai.NewClient(opts...), model: model}
}

func (g *OpenAIGenerator) isGPTImage() bool {
	return strings.HasPrefix(g.model, "gpt-image")
}

// Generate は1枚の画像を生成します。OpenAI にはネガティブプロンプトがないため本文に追記します。
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	prompt := req.Prompt
	if req.NegativePrompt != "" {
		prompt += ". Avoid: " + req.NegativePrompt
	}

	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(g.model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	}
	if !g.isGPTImage() {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatURL
	}

	resp, err := g.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI (%s) の画像生成に失敗しました: %w", g.model, err)
	}

	for _, img := range resp.Data {
		if img.URL != "" {
			return &Response{URL: img.URL, MimeType: "image/png"}, nil
		}
		if img.B64JSON != "" {
			data, err := base64.StdEncoding.DecodeString(img.B64JSON)
			if err != nil {
				return nil, fmt.Errorf("画像データのデコードに失敗しました: %w", err)
			}
			return &Response{Data: data, MimeType: "image/png"}, nil
		}
	}
	return nil, errNoImage
}
