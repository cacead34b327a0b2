package resume

import (
	"regexp"
	"strings"
)

var (
	newlineRuns    = regexp.MustCompile(`\n+`)
	whitespaceRuns = regexp.MustCompile(`[\s\v\p{Zs}\x{85}\x{2028}\x{2029}]+`)
)

// CleanText collapses newline and whitespace runs, swaps non-breaking spaces for
// plain ones and trims. CleanText(CleanText(s)) == CleanText(s).
func CleanText(text string) string {
	text = newlineRuns.ReplaceAllString(text, "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
