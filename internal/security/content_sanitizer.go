package security

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は外部プロバイダから受け取った文字列をプレーンテキスト化する。
// ニュースのタイトル・要約とAIインサイトの本文に適用する。
type TextSanitizerService interface {
	// Plain はHTMLタグをすべて除去し、エンティティを復元したテキストを返す。
	// 連続する空白は1つに詰める。改行は保持しない。
	Plain(raw string) string

	// PlainLines はPlainと同じ処理を行単位で適用し、改行を保持する。
	PlainLines(raw string) string
}

var spaceRun = regexp.MustCompile(`[ \t\f\v]+`)

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyは並行利用に対して安全。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Plain はHTMLを除去した1行のテキストを返す。
func (s *textSanitizer) Plain(raw string) string {
	if raw == "" {
		return ""
	}
	text := s.strip(raw)
	text = strings.Join(strings.Fields(text), " ")
	return text
}

// PlainLines はHTMLを除去し、行ごとに空白を正規化したテキストを返す。
func (s *textSanitizer) PlainLines(raw string) string {
	if raw == "" {
		return ""
	}
	text := s.strip(raw)
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	return strings.Join(lines, "\n")
}

func (s *textSanitizer) strip(raw string) string {
	// StrictPolicyはタグを除去したうえで&などをエスケープするため元に戻す
	return html.UnescapeString(s.policy.Sanitize(raw))
}

var _ TextSanitizerService = (*textSanitizer)(nil)
