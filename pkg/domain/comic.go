package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Panel は4コマ漫画の1コマ分の台本と画像を保持します。
type Panel struct {
	Index       int    `json:"index"`
	Scene       string `json:"scene"`
	ImagePrompt string `json:"image_prompt"`
	Negative    string `json:"negative_prompt,omitempty"`

	// ImageURL は画像APIが返したURL、またはインライン画像の data URI です。
	ImageURL string `json:"image_url,omitempty"`
	MimeType string `json:"mime_type,omitempty"`

	// Data は生成された画像のバイト列。セッションには保存しないのだ。
	Data []byte `json:"-"`
}

// Clone はバイト列を含めたコピーを返します。
func (p Panel) Clone() Panel {
	c := p
	if p.Data != nil {
		c.Data = append([]byte(nil), p.Data...)
	}
	return c
}

// HasImage は表示可能な画像を持っているかどうかを返します。
func (p Panel) HasImage() bool {
	return p.ImageURL != "" || len(p.Data) > 0
}

// DataURI はインライン画像を data URI に変換します。画像がなければ空文字なのだ。
func (p Panel) DataURI() string {
	if len(p.Data) == 0 {
		return ""
	}
	mime := p.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(p.Data))
}

// DisplayURL は画面表示に使うURLを返します。
func (p Panel) DisplayURL() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	return p.DataURI()
}

// Comic は生成工程全体の成果物です。
type Comic struct {
	Title     string   `json:"title"`
	Profile   Profile  `json:"profile"`
	Labels    Labels   `json:"labels"`
	Situation string   `json:"situation"`
	Emotion   string   `json:"emotion"`
	Reason    string   `json:"reason"`
	Weather   string   `json:"weather"`
	Panels    []Panel  `json:"panels"`
	Warnings  []string `json:"warnings,omitempty"`

	// UsedFallback は LLM の応答が使えず既定のシーンを使ったことを示します。
	UsedFallback bool `json:"used_fallback"`
}

// Labels は選択肢IDの表示名です。空のフィールドは ID のまま表示するのだ。
type Labels struct {
	AgeGroup string `json:"age_group,omitempty"`
	Gender   string `json:"gender,omitempty"`
	ArtStyle string `json:"art_style,omitempty"`
	Emotion  string `json:"emotion,omitempty"`
}

// NewComicFromSession はセッションの入力値から空の Comic を組み立てます。
func NewComicFromSession(s *Session) *Comic {
	return &Comic{
		Profile:   s.Profile,
		Situation: s.Situation,
		Emotion:   s.Emotion,
		Reason:    s.Reason,
	}
}

// Scenes は各コマのシーン文をスライスで返します。
func (c *Comic) Scenes() []string {
	scenes := make([]string, len(c.Panels))
	for i, p := range c.Panels {
		scenes[i] = p.Scene
	}
	return scenes
}

// Warn は利用者に伝える警告を追加します。
func (c *Comic) Warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// ImageCount は画像を持つコマの数なのだ。
func (c *Comic) ImageCount() int {
	n := 0
	for _, p := range c.Panels {
		if p.HasImage() {
			n++
		}
	}
	return n
}

// ApplyTo は生成結果をセッションへ書き戻します。
// インライン画像は data URI に変換してからセッションに残します。
func (c *Comic) ApplyTo(s *Session) {
	s.Scenes = c.Scenes()
	s.Weather = c.Weather
	s.Warnings = append([]string(nil), c.Warnings...)
	s.Panels = make([]Panel, len(c.Panels))
	for i, p := range c.Panels {
		cp := p.Clone()
		if cp.ImageURL == "" && len(cp.Data) > 0 {
			cp.ImageURL = cp.DataURI()
		}
		cp.Data = nil
		s.Panels[i] = cp
	}
}

// ComicFromSession は保存済みのセッションから Comic を復元します。
func ComicFromSession(s *Session) *Comic {
	c := NewComicFromSession(s)
	c.Weather = s.Weather
	c.Warnings = append([]string(nil), s.Warnings...)
	c.Panels = make([]Panel, len(s.Panels))
	for i, p := range s.Panels {
		c.Panels[i] = p.Clone()
	}
	if len(c.Panels) == 0 {
		for i, scene := range s.Scenes {
			c.Panels = append(c.Panels, Panel{Index: i + 1, Scene: scene})
		}
	}
	c.Title = DefaultTitle(s.Emotion, s.Situation)
	return c
}

// DefaultTitle は感情と状況から漫画のタイトルを作るのだ。
func DefaultTitle(emotion, situation string) string {
	situation = strings.TrimSpace(situation)
	if r := []rune(situation); len(r) > 20 {
		situation = string(r[:20]) + "…"
	}
	switch {
	case emotion == "" && situation == "":
		return "나의 감정 이야기"
	case situation == "":
		return fmt.Sprintf("%s 이야기", emotion)
	default:
		return fmt.Sprintf("%s: %s", emotion, situation)
	}
}
