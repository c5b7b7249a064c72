package insight

import (
	"regexp"
	"strings"
)

// BulletCount は正規化後の箇条書きの行数。
const BulletCount = 4

const (
	bulletPrefix = "- "
	riskPrefix   = "Risk: "

	defaultRisk = "Crypto markets are highly volatile; only risk what you can afford to lose."
)

// fillerBullets はAIの出力が4行に満たない場合の補完用。
var fillerBullets = []string{
	"Stay diversified across your tracked assets.",
	"Review your plan before reacting to short-term moves.",
	"Keep an eye on market-wide news and liquidity.",
	"Focus on fundamentals rather than hype.",
}

var (
	thinkBlock     = regexp.MustCompile(`(?is)<think>.*?</think>`)
	unclosedThink  = regexp.MustCompile(`(?is)^.*</think>`)
	listMarker     = regexp.MustCompile(`^(?:[-*•+]\s*|\d+[.)]\s*)+`)
	emphasisMarker = regexp.MustCompile(`\*\*|__`)
	riskLabel      = regexp.MustCompile(`(?i)^risks?(?:\s+warning)?\s*[:：\-]\s*`)
)

// Sanitizer は行構造を保ったままHTMLを除去する。
type Sanitizer interface {
	PlainLines(raw string) string
}

// Normalize はAIの出力を4行の箇条書きと1行のリスク注記に整形する。
// 推論ブロックとHTMLを除去し、行頭の記号・番号と強調記号を取り除く。
// "risk"で始まる最初の行をリスク行とし、それ以外の先頭4行を箇条書きにする。
func Normalize(raw string, sanitizer Sanitizer) string {
	text := thinkBlock.ReplaceAllString(raw, "")
	text = unclosedThink.ReplaceAllString(text, "")
	text = sanitizer.PlainLines(text)

	bullets := make([]string, 0, BulletCount)
	risk := ""
	for _, line := range strings.Split(text, "\n") {
		line = cleanLine(line)
		if line == "" {
			continue
		}
		if risk == "" && strings.HasPrefix(strings.ToLower(line), "risk") {
			if r := strings.TrimSpace(riskLabel.ReplaceAllString(line, "")); r != "" {
				risk = r
			} else {
				risk = defaultRisk
			}
			continue
		}
		if len(bullets) < BulletCount {
			bullets = append(bullets, line)
		}
	}

	for i := 0; len(bullets) < BulletCount; i++ {
		bullets = append(bullets, fillerBullets[i%len(fillerBullets)])
	}
	if risk == "" {
		risk = defaultRisk
	}

	var b strings.Builder
	for _, bullet := range bullets {
		b.WriteString(bulletPrefix)
		b.WriteString(bullet)
		b.WriteByte('\n')
	}
	b.WriteString(riskPrefix)
	b.WriteString(risk)
	return b.String()
}

func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = listMarker.ReplaceAllString(line, "")
	line = emphasisMarker.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// FallbackText はAIプロバイダ失敗時に返す固定テキスト。永続化しない。
const FallbackText = "- Today's AI insight is temporarily unavailable.\n" +
	"- Review your tracked assets and the latest headlines.\n" +
	"- Keep position sizes within your own risk tolerance.\n" +
	"- Check back later for a personalized insight.\n" +
	"Risk: " + defaultRisk
