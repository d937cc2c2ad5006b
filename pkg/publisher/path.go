package publisher

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveOutputPath は、ベースディレクトリとファイル名から出力パスを生成します。
// ファイル名がベースディレクトリの外を指す場合はエラーなのだ。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	if fileName == "" {
		return "", fmt.Errorf("ファイル名が空です")
	}
	if baseDir == "" {
		baseDir = "."
	}
	full := filepath.Join(baseDir, fileName)
	rel, err := filepath.Rel(baseDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("出力先がベースディレクトリの外を指しています: %s", fileName)
	}
	return full, nil
}

// extensionFor は MIME タイプから画像の拡張子を決めます。
func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
