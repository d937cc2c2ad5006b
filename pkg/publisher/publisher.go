package publisher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
	// PromptSheet は外部ツール向けのプロンプト一覧。空なら prompts.txt を書き出しません。
	PromptSheet string
	// Strip は4コマを1枚にまとめた画像。nil なら書き出しません。
	Strip *StripImage
}

// StripImage は1枚絵の4コマ画像です。
type StripImage struct {
	Data     []byte
	MimeType string
}

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	MarkdownPath string
	PromptsPath  string
	StripPath    string
	ImagePaths   []string
}

const (
	defaultComicName    = "comic.md"
	defaultPromptsName  = "prompts.txt"
	defaultImageDirName = "images"
	defaultStripName    = "strip"
)

// ComicPublisher は成果物の永続化を担います。
type ComicPublisher struct {
	writer OutputWriter
}

// NewComicPublisher は ComicPublisher を生成します。
func NewComicPublisher(writer OutputWriter) *ComicPublisher {
	return &ComicPublisher{writer: writer}
}

// Publish は画像の保存、Markdown とプロンプト一覧の書き出しを一括して実行します。
func (p *ComicPublisher) Publish(ctx context.Context, comic *domain.Comic, opts Options) (PublishResult, error) {
	result := PublishResult{}

	markdownPath, err := ResolveOutputPath(opts.OutputDir, defaultComicName)
	if err != nil {
		return result, err
	}
	imgDir, err := ResolveOutputPath(opts.OutputDir, defaultImageDirName)
	if err != nil {
		return result, err
	}

	// 1. インライン画像の保存。URL の画像は Markdown から直接参照するのだ
	relativePaths := make([]string, len(comic.Panels))
	for i, panel := range comic.Panels {
		if len(panel.Data) == 0 {
			relativePaths[i] = panel.ImageURL
			if strings.HasPrefix(panel.ImageURL, "data:") {
				relativePaths[i] = ""
			}
			continue
		}
		name := fmt.Sprintf("panel_%d%s", i+1, extensionFor(panel.MimeType))
		fullPath, err := ResolveOutputPath(imgDir, name)
		if err != nil {
			return result, err
		}
		if err := p.writer.Write(ctx, fullPath, bytes.NewReader(panel.Data), panel.MimeType); err != nil {
			return result, fmt.Errorf("画像の書き込みに失敗しました %s: %w", fullPath, err)
		}
		result.ImagePaths = append(result.ImagePaths, fullPath)
		relativePaths[i] = path.Join(defaultImageDirName, filepath.Base(fullPath))
	}

	// 2. 1枚絵の保存
	content := BuildMarkdown(comic, relativePaths)
	if opts.Strip != nil && len(opts.Strip.Data) > 0 {
		name := defaultStripName + extensionFor(opts.Strip.MimeType)
		stripPath, err := ResolveOutputPath(imgDir, name)
		if err != nil {
			return result, err
		}
		if err := p.writer.Write(ctx, stripPath, bytes.NewReader(opts.Strip.Data), opts.Strip.MimeType); err != nil {
			return result, fmt.Errorf("4コマ画像の書き込みに失敗しました %s: %w", stripPath, err)
		}
		result.StripPath = stripPath
		content += fmt.Sprintf("\n## 한 장으로 보기\n\n![4컷 만화](%s)\n", path.Join(defaultImageDirName, name))
	}

	// 3. Markdown の書き出し
	if err := p.writer.Write(ctx, markdownPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}
	result.MarkdownPath = markdownPath

	// 4. 外部ツール向けプロンプトの書き出し
	if opts.PromptSheet != "" {
		promptsPath, err := ResolveOutputPath(opts.OutputDir, defaultPromptsName)
		if err != nil {
			return result, err
		}
		if err := p.writer.Write(ctx, promptsPath, strings.NewReader(opts.PromptSheet), "text/plain; charset=utf-8"); err != nil {
			return result, fmt.Errorf("プロンプトファイルの書き込みに失敗しました: %w", err)
		}
		result.PromptsPath = promptsPath
	}

	slog.InfoContext(ctx, "成果物を保存しました", "markdown", result.MarkdownPath, "images", len(result.ImagePaths))
	return result, nil
}
