package publisher

import (
	"fmt"
	"strings"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

const noImageText = "(이미지 없음)"

// BuildMarkdown は保存処理を行わず、Comic から Markdown 文字列のみを生成します。
// imagePaths が nil の場合は、各パネルの ImageURL をそのまま使います。
func BuildMarkdown(comic *domain.Comic, imagePaths []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", comic.Title))

	sb.WriteString("| 항목 | 내용 |\n|---|---|\n")
	rows := [][2]string{
		{"연령층", labelOr(comic.Labels.AgeGroup, comic.Profile.AgeGroup)},
		{"성별", labelOr(comic.Labels.Gender, comic.Profile.Gender)},
		{"그림체", labelOr(comic.Labels.ArtStyle, comic.Profile.ArtStyle)},
		{"상황", comic.Situation},
		{"감정", labelOr(comic.Labels.Emotion, comic.Emotion)},
		{"이유", comic.Reason},
		{"날씨", comic.Weather},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", r[0], escapeCell(r[1])))
	}
	sb.WriteString("\n")

	for i, p := range comic.Panels {
		sb.WriteString(fmt.Sprintf("## %d컷\n\n", i+1))

		img := p.ImageURL
		if imagePaths != nil {
			img = ""
			if i < len(imagePaths) {
				img = imagePaths[i]
			}
		}
		switch {
		case img == "":
			sb.WriteString(noImageText + "\n\n")
		case strings.HasPrefix(img, "data:"):
			// data URI は巨大になるので Markdown には埋め込まないのだ
			sb.WriteString("(인라인 이미지)\n\n")
		default:
			sb.WriteString(fmt.Sprintf("![%d컷](%s)\n\n", i+1, img))
		}
		sb.WriteString(p.Scene + "\n\n")
	}

	if len(comic.Warnings) > 0 {
		sb.WriteString("---\n\n")
		for _, w := range comic.Warnings {
			sb.WriteString(fmt.Sprintf("> ⚠️ %s\n", w))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func labelOr(label, id string) string {
	if label != "" {
		return label
	}
	return id
}
