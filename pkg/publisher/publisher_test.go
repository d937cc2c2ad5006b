package publisher

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

type memoryWriter struct {
	files map[string][]byte
}

func (w *memoryWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	if w.files == nil {
		w.files = map[string][]byte{}
	}
	w.files[path] = buf.Bytes()
	return nil
}

func testComic() *domain.Comic {
	return &domain.Comic{
		Title:     "기쁨: 친구를 만났다",
		Profile:   domain.Profile{AgeGroup: "child"},
		Situation: "친구를 만났다",
		Emotion:   "기쁨",
		Reason:    "오랜만이라서",
		Weather:   "맑음, 20.0°C",
		Panels: []domain.Panel{
			{Index: 1, Scene: "놀이터에 간다", ImageURL: "https://img/1.png"},
			{Index: 2, Scene: "친구를 발견한다", Data: []byte("jpeg"), MimeType: "image/jpeg"},
			{Index: 3, Scene: "함께 웃는다", ImageURL: "data:image/png;base64,AAAA"},
			{Index: 4, Scene: "손을 흔든다"},
		},
		Warnings: []string{"4번째 컷 이미지를 생성하지 못했습니다."},
	}
}

func TestComicPublisher_Publish(t *testing.T) {
	w := &memoryWriter{}
	pub := NewComicPublisher(w)

	result, err := pub.Publish(context.Background(), testComic(), Options{OutputDir: "out", PromptSheet: "sheet"})
	require.NoError(t, err)

	imgPath := filepath.Join("out", "images", "panel_2.jpg")
	assert.Equal(t, []string{imgPath}, result.ImagePaths)
	assert.Equal(t, []byte("jpeg"), w.files[imgPath])
	assert.Equal(t, "sheet", string(w.files[filepath.Join("out", "prompts.txt")]))

	md := string(w.files[result.MarkdownPath])
	assert.Contains(t, md, "# 기쁨: 친구를 만났다")
	assert.Contains(t, md, "![1컷](https://img/1.png)")
	assert.Contains(t, md, "![2컷](images/panel_2.jpg)")
	assert.Contains(t, md, "## 4컷\n\n"+noImageText)
	assert.NotContains(t, md, "base64")
	assert.Contains(t, md, "> ⚠️ 4번째 컷")

	t.Run("プロンプト一覧なし", func(t *testing.T) {
		w := &memoryWriter{}
		result, err := NewComicPublisher(w).Publish(context.Background(), testComic(), Options{OutputDir: "out"})
		require.NoError(t, err)
		assert.Empty(t, result.PromptsPath)
		_, ok := w.files[filepath.Join("out", "prompts.txt")]
		assert.False(t, ok)
	})
}

func TestComicPublisher_PublishStrip(t *testing.T) {
	w := &memoryWriter{}
	opts := Options{OutputDir: "out", Strip: &StripImage{Data: []byte("strip"), MimeType: "image/png"}}
	result, err := NewComicPublisher(w).Publish(context.Background(), testComic(), opts)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("out", "images", "strip.png"), result.StripPath)
	assert.Equal(t, []byte("strip"), w.files[result.StripPath])
	assert.Contains(t, string(w.files[result.MarkdownPath]), "![4컷 만화](images/strip.png)")
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(testComic(), nil)
	assert.Contains(t, md, "| 상황 | 친구를 만났다 |")
	assert.Contains(t, md, "(인라인 이미지)")
	assert.NotContains(t, md, "data:image")

	t.Run("表示名があればIDの代わりに使う", func(t *testing.T) {
		comic := testComic()
		comic.Emotion = "joy"
		comic.Labels = domain.Labels{AgeGroup: "어린이 (7-12세)", Emotion: "기쁨"}
		md := BuildMarkdown(comic, nil)
		assert.Contains(t, md, "| 연령층 | 어린이 (7-12세) |")
		assert.Contains(t, md, "| 감정 | 기쁨 |")
		assert.NotContains(t, md, "| 감정 | joy |")
		assert.NotContains(t, md, "| 연령층 | child |")
	})
}

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		file    string
		want    string
		wantErr bool
	}{
		{"通常", "out", "comic.md", filepath.Join("out", "comic.md"), false},
		{"ベースなし", "", "comic.md", "comic.md", false},
		{"親ディレクトリへの脱出", "out", "../x.md", "", true},
		{"空のファイル名", "out", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutputPath(tt.base, tt.file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "a.txt")
	require.NoError(t, NewLocalWriter().Write(context.Background(), path, bytes.NewReader([]byte("hi")), "text/plain"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(b))
}
