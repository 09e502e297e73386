package telegramutil

import (
	"regexp"
	"strings"
)

var markdownV2Escapes = map[byte]bool{
	'\\': true,
	'_':  true,
	'*':  true,
	'[':  true,
	']':  true,
	'(':  true,
	')':  true,
	'~':  true,
	'`':  true,
	'>':  true,
	'#':  true,
	'+':  true,
	'-':  true,
	'=':  true,
	'|':  true,
	'{':  true,
	'}':  true,
	'.':  true,
	'!':  true,
}

func EscapeMarkdownV2(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if markdownV2Escapes[ch] {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	return b.String()
}

var (
	boldRe      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe    = regexp.MustCompile(`\*(.*?)\*`)
	headingRe   = regexp.MustCompile(`#+\s*(.*)`)
	bulletRe    = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
	numberedRe  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	blankRunsRe = regexp.MustCompile(`\n\s*\n`)
	spaceRunsRe = regexp.MustCompile(` +`)
)

// CleanAnswer strips Markdown decoration from a model answer so it reads as
// plain text in Telegram: bold/italic markers, headings, list bullets and
// numbering, plus runs of blank lines and spaces.
func CleanAnswer(text string) string {
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = headingRe.ReplaceAllString(text, "$1")
	text = bulletRe.ReplaceAllString(text, "")
	text = numberedRe.ReplaceAllString(text, "")
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	text = spaceRunsRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
