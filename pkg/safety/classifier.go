package safety

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shouni/go-emotion-comic/pkg/llm"
	"github.com/shouni/go-emotion-comic/pkg/prompts"
)

// Answer は LLM 判定の結果です。
type Answer int

const (
	AnswerAmbiguous Answer = iota
	AnswerSafe
	AnswerUnsafe
)

// classifierMaxTokens は判定の応答に許す出力トークン数です。
// 思考するモデルでも1語の答えが切れない程度の余裕を持たせるのだ。
const classifierMaxTokens = 256

var (
	// 指示どおりの1語の答え
	contractAnswerRegex = regexp.MustCompile(`(?i)^[\s*"'\x60]*(unsafe|safe)\b`)
	// 否定された「不適切」は安全
	negatedUnsafeRegex = regexp.MustCompile(`(?i)\bnot\s+(?:unsafe|inappropriate)\b|부적절하지\s*않`)
	// 否定された「安全」は不適切
	negatedSafeRegex = regexp.MustCompile(`(?i)(?:\bnot|n't)\s+(?:safe|appropriate)\b|안전하지\s*않|적절하지\s*않`)

	unsafeAnswerRegex = regexp.MustCompile(`(?i)\bunsafe\b|부적절|^\s*(?:yes\b|예|네)`)
	safeAnswerRegex   = regexp.MustCompile(`(?i)\bsafe\b|적절|^\s*(?:no\b|아니)`)
)

// ParseAnswer は LLM の自由記述の応答を判定結果に変換します。
// 先頭の SAFE / UNSAFE を最優先し、次に否定表現、最後に単語の出現で判定するのだ。
func ParseAnswer(raw string) Answer {
	s := strings.TrimSpace(raw)
	if m := contractAnswerRegex.FindStringSubmatch(s); m != nil {
		if strings.EqualFold(m[1], "unsafe") {
			return AnswerUnsafe
		}
		return AnswerSafe
	}
	switch {
	case s == "":
		return AnswerAmbiguous
	case negatedUnsafeRegex.MatchString(s):
		return AnswerSafe
	case negatedSafeRegex.MatchString(s):
		return AnswerUnsafe
	case unsafeAnswerRegex.MatchString(s):
		return AnswerUnsafe
	case safeAnswerRegex.MatchString(s):
		return AnswerSafe
	default:
		return AnswerAmbiguous
	}
}

// LLMClassifier は LLM に安全性を問い合わせる分類器です。
type LLMClassifier struct {
	generator llm.TextGenerator
	prompt    prompts.ScriptPrompt
}

// NewLLMClassifier は LLMClassifier を生成します。
func NewLLMClassifier(generator llm.TextGenerator, prompt prompts.ScriptPrompt) *LLMClassifier {
	return &LLMClassifier{generator: generator, prompt: prompt}
}

// Classify は text が安全かどうかを返します。
// 曖昧な応答は安全とみなします。エラー時も safe=true を返し、判断は呼び出し元に委ねるのだ。
func (c *LLMClassifier) Classify(ctx context.Context, text string) (bool, error) {
	p, err := c.prompt.Build(prompts.ModeSafety, prompts.TemplateData{InputText: text})
	if err != nil {
		return true, fmt.Errorf("安全性判定プロンプトの構築に失敗しました: %w", err)
	}

	out, err := c.generator.Generate(ctx, llm.Request{Prompt: p, Temperature: llm.Temp(0), MaxTokens: classifierMaxTokens})
	if err != nil {
		return true, fmt.Errorf("安全性判定の呼び出しに失敗しました: %w", err)
	}
	return ParseAnswer(out) != AnswerUnsafe, nil
}
