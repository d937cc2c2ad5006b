package imagegen

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	// ProviderNone は画像を生成せず、外部ツール用のプロンプトのみを出力するモードです。
	ProviderNone = "none"

	// PanelAspectRatio は単体パネル（1コマ）の推奨アスペクト比です。
	PanelAspectRatio = "1:1"
	// StripAspectRatio は4コマを1枚にまとめる場合のアスペクト比です。
	StripAspectRatio = "1:1"

	// ImageSize1K は標準的な解像度の設定（1024x1024相当）です。
	ImageSize1K = "1K"

	DefaultGeminiImageModel = "gemini-2.5-flash-image"
	DefaultOpenAIImageModel = "dall-e-3"
)

// Request は単一の画像生成要求です。
type Request struct {
	Prompt         string
	SystemPrompt   string
	NegativePrompt string
	AspectRatio    string
	Seed           *int64
}

// Response は生成された画像データとそのメタデータです。
// URL を返す API では Data は空、インライン画像を返す API では URL が空になります。
type Response struct {
	URL      string
	Data     []byte
	MimeType string
	UsedSeed int64
}

// Empty は画像を1枚も含まないかどうかを返すのだ。
func (r *Response) Empty() bool {
	return r == nil || (r.URL == "" && len(r.Data) == 0)
}
