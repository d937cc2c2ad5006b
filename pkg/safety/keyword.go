package safety

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultKeywordsYAML []byte

// KeywordFilter は禁止キーワードで入力を判定します。
// 英字のキーワードは単語の先頭からの一致、それ以外は部分一致なのだ。
// allow に含まれる語は判定の前に取り除きます。
type KeywordFilter struct {
	keywords []string
	patterns []*regexp.Regexp
	allow    []string
}

// NewKeywordFilter は与えられたキーワードで KeywordFilter を作ります。空文字は無視するのだ。
func NewKeywordFilter(keywords []string, allow ...string) *KeywordFilter {
	kf := &KeywordFilter{}
	for _, k := range keywords {
		k = normalizeKeyword(k)
		if k == "" {
			continue
		}
		var re *regexp.Regexp
		if isASCII(k) {
			re = regexp.MustCompile(`\b` + regexp.QuoteMeta(k))
		}
		kf.keywords = append(kf.keywords, k)
		kf.patterns = append(kf.patterns, re)
	}
	for _, a := range allow {
		if a = normalizeKeyword(a); a != "" {
			kf.allow = append(kf.allow, a)
		}
	}
	return kf
}

// LoadKeywordFilter は YAML のキーワードリストを読み込みます。data が空なら埋め込みのリストを使います。
func LoadKeywordFilter(data []byte) (*KeywordFilter, error) {
	if len(data) == 0 {
		data = defaultKeywordsYAML
	}
	var doc struct {
		Keywords []string `yaml:"keywords"`
		Allow    []string `yaml:"allow"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("禁止キーワードのデコードに失敗しました: %w", err)
	}
	return NewKeywordFilter(doc.Keywords, doc.Allow...), nil
}

// Match は最初に一致したキーワードを返します。
func (f *KeywordFilter) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, a := range f.allow {
		lower = strings.ReplaceAll(lower, a, " ")
	}
	for i, k := range f.keywords {
		if re := f.patterns[i]; re != nil {
			if re.MatchString(lower) {
				return k, true
			}
			continue
		}
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

// Len は登録されているキーワード数です。
func (f *KeywordFilter) Len() int {
	return len(f.keywords)
}

func normalizeKeyword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
