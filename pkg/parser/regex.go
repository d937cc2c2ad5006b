package parser

import "regexp"

var (
	// TitleRegex は "# タイトル" 形式のタイトル行をキャプチャします。
	TitleRegex = regexp.MustCompile(`^#\s+(.+)`)

	// NumberedListRegex は番号付きの行をキャプチャします。
	// "1." "1)" "1:" "1번" "Scene 1:" "장면 1:" の各形式に対応するのだ。
	NumberedListRegex = regexp.MustCompile(`^(?i:(?:scene|panel|장면|씬|컷)\s*)?([1-9][0-9]?)\s*(?:번\s*[.):]?|[.):：])\s*(.*)$`)

	// emphasisRegex は Markdown の強調記号を取り除くために使います。
	emphasisRegex = regexp.MustCompile(`\*\*|__|\*|` + "`")

	// bulletRegex は行頭の箇条書き記号や見出し記号に一致します。
	bulletRegex = regexp.MustCompile(`^(?:[-•>]+|#{2,})\s*`)
)
