package server

import (
	"html/template"
	"strings"

	"github.com/shouni/go-emotion-comic/pkg/catalog"
	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/usage"
	"github.com/shouni/go-emotion-comic/pkg/wizard"
)

var stepTitles = map[domain.Step]string{
	domain.StepProfile:   "1단계: 나에 대해 알려 주세요",
	domain.StepSituation: "2단계: 어떤 상황이었나요?",
	domain.StepEmotion:   "3단계: 어떤 감정이 들었나요?",
	domain.StepReason:    "4단계: 왜 그런 감정이 들었나요?",
	domain.StepComic:     "5단계: 나의 감정 4컷 만화",
}

var templateFuncs = template.FuncMap{
	"stepTitle": func(s domain.Step) string { return stepTitles[s] },
}

// panelView は1コマ分の表示データです。
type panelView struct {
	Index    int
	Scene    string
	ImageURL template.URL
	Prompt   string
}

// pageData はテンプレートに渡す画面全体のデータです。
type pageData struct {
	Step      domain.Step
	Session   *domain.Session
	Catalog   *catalog.Catalog
	MaxLength int
	Error     string
	Value     string

	Usage        usage.Status
	LimitReached bool

	Title           string
	EmotionLabel    string
	Panels          []panelView
	Warnings        []string
	ExternalPrompts []string
	ImagesEnabled   bool
}

func newPageData(cat *catalog.Catalog, sess *domain.Session) *pageData {
	return &pageData{
		Step:         sess.Step,
		Session:      sess,
		Catalog:      cat,
		MaxLength:    wizard.MaxTextLength,
		EmotionLabel: cat.EmotionLabel(sess.Emotion),
	}
}

// safeImageURL は http(s) と data:image の URL のみを表示用に通します。
func safeImageURL(u string) template.URL {
	switch {
	case strings.HasPrefix(u, "https://"), strings.HasPrefix(u, "http://"):
		return template.URL(u)
	case strings.HasPrefix(u, "data:image/"):
		return template.URL(u)
	default:
		return ""
	}
}

func panelViews(panels []domain.Panel) []panelView {
	out := make([]panelView, len(panels))
	for i, p := range panels {
		out[i] = panelView{
			Index:    p.Index,
			Scene:    p.Scene,
			ImageURL: safeImageURL(p.DisplayURL()),
			Prompt:   p.ImagePrompt,
		}
	}
	return out
}
