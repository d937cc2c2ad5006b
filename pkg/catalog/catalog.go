// Package catalog は、ウィザードで選択できる選択肢（年齢層・性別・画風・感情）を提供します。
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// AgeGroup は年齢層の選択肢です。ReadingLevel は物語の文体の指示に使います。
type AgeGroup struct {
	ID           string `yaml:"id"`
	Label        string `yaml:"label"`
	ReadingLevel string `yaml:"reading_level"`
	ImageCue     string `yaml:"image_cue"`
}

// Gender は性別の選択肢です。
type Gender struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	ImageCue string `yaml:"image_cue"`
}

// ArtStyle は画風の選択肢です。
type ArtStyle struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	StyleSuffix string `yaml:"style_suffix"`
}

// Emotion は感情の選択肢なのだ。
type Emotion struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	Emoji    string `yaml:"emoji"`
	ImageCue string `yaml:"image_cue"`
}

// Catalog は選択肢一式を保持します。
type Catalog struct {
	AgeGroups []AgeGroup `yaml:"age_groups"`
	Genders   []Gender   `yaml:"genders"`
	ArtStyles []ArtStyle `yaml:"art_styles"`
	Emotions  []Emotion  `yaml:"emotions"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Load は埋め込みの catalog.yaml を一度だけパースして返します。
func Load() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultCatalogYAML)
	})
	return defaultCatalog, defaultErr
}

// MustLoad は Load の失敗時に panic します。埋め込みデータ専用です。
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse は YAML バイト列からカタログを組み立て、ID の重複や欠落を検証します。
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("カタログのデコードに失敗しました: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	groups := map[string][]string{
		"age_groups": ids(c.AgeGroups, func(v AgeGroup) string { return v.ID }),
		"genders":    ids(c.Genders, func(v Gender) string { return v.ID }),
		"art_styles": ids(c.ArtStyles, func(v ArtStyle) string { return v.ID }),
		"emotions":   ids(c.Emotions, func(v Emotion) string { return v.ID }),
	}
	for name, list := range groups {
		if len(list) == 0 {
			return fmt.Errorf("カタログの %s が空です", name)
		}
		seen := make(map[string]struct{}, len(list))
		for _, id := range list {
			if id == "" {
				return fmt.Errorf("カタログの %s に ID のない項目があります", name)
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("カタログの %s で ID '%s' が重複しています", name, id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

func ids[T any](items []T, key func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = key(it)
	}
	return out
}

func find[T any](items []T, id string, key func(T) string) (T, bool) {
	for _, it := range items {
		if key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// AgeGroup は ID から年齢層を検索します。
func (c *Catalog) AgeGroup(id string) (AgeGroup, bool) {
	return find(c.AgeGroups, id, func(v AgeGroup) string { return v.ID })
}

// Gender は ID から性別を検索します。
func (c *Catalog) Gender(id string) (Gender, bool) {
	return find(c.Genders, id, func(v Gender) string { return v.ID })
}

// ArtStyle は ID から画風を検索します。
func (c *Catalog) ArtStyle(id string) (ArtStyle, bool) {
	return find(c.ArtStyles, id, func(v ArtStyle) string { return v.ID })
}

// Emotion は ID から感情を検索します。
func (c *Catalog) Emotion(id string) (Emotion, bool) {
	return find(c.Emotions, id, func(v Emotion) string { return v.ID })
}

// EmotionLabel は感情IDを表示名に変換します。未知のIDはそのまま返すのだ。
func (c *Catalog) EmotionLabel(id string) string {
	if c == nil {
		return id
	}
	if e, ok := c.Emotion(id); ok {
		return e.Label
	}
	return id
}

// Labels はプロフィールと感情のIDを表示名に変換します。未知のIDは空のままなのだ。
func (c *Catalog) Labels(p domain.Profile, emotionID string) domain.Labels {
	var l domain.Labels
	if c == nil {
		return l
	}
	if a, ok := c.AgeGroup(p.AgeGroup); ok {
		l.AgeGroup = a.Label
	}
	if g, ok := c.Gender(p.Gender); ok {
		l.Gender = g.Label
	}
	if s, ok := c.ArtStyle(p.ArtStyle); ok {
		l.ArtStyle = s.Label
	}
	if e, ok := c.Emotion(emotionID); ok {
		l.Emotion = e.Label
	}
	return l
}
