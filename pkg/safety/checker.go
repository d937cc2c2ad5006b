// Package safety は、利用者の自由記述をキーワードと LLM の2段階で検査します。
package safety

import (
	"context"
	"log/slog"
)

const (
	SourceKeyword = "keyword"
	SourceLLM     = "llm"
)

// Verdict は安全性検査の結果です。
type Verdict struct {
	Safe   bool
	Reason string
	Source string
}

// Classifier は LLM 等による追加の判定器の契約なのだ。
type Classifier interface {
	Classify(ctx context.Context, text string) (bool, error)
}

// Checker はキーワード検査の後に分類器を呼び出します。
type Checker struct {
	keywords   *KeywordFilter
	classifier Classifier
}

// NewChecker は Checker を生成します。classifier が nil ならキーワード検査のみ行います。
func NewChecker(keywords *KeywordFilter, classifier Classifier) *Checker {
	if keywords == nil {
		keywords = NewKeywordFilter(nil)
	}
	return &Checker{keywords: keywords, classifier: classifier}
}

// Check は text を検査します。分類器のエラーはログに残して安全とみなすのだ。
func (c *Checker) Check(ctx context.Context, text string) Verdict {
	if kw, hit := c.keywords.Match(text); hit {
		slog.InfoContext(ctx, "禁止キーワードを検出しました", "keyword", kw)
		return Verdict{Safe: false, Reason: kw, Source: SourceKeyword}
	}

	if c.classifier == nil {
		return Verdict{Safe: true}
	}

	safe, err := c.classifier.Classify(ctx, text)
	if err != nil {
		slog.WarnContext(ctx, "LLMによる安全性判定に失敗しました。キーワード検査の結果を採用します", "error", err)
		return Verdict{Safe: true}
	}
	if !safe {
		return Verdict{Safe: false, Reason: "llm", Source: SourceLLM}
	}
	return Verdict{Safe: true, Source: SourceLLM}
}
