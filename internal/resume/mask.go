package resume

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	PlaceholderEmail   = "[EMAIL]"
	PlaceholderPhone   = "[PHONE]"
	PlaceholderAddress = "[ADDRESS]"
	PlaceholderCity    = "[CITY]"
	PlaceholderState   = "[STATE]"
)

var (
	Cities = []string{"sydney", "melbourne", "brisbane", "perth", "adelaide", "hobart", "canberra", "darwin"}
	States = []string{"NSW", "VIC", "QLD", "SA", "WA", "TAS", "ACT", "NT"}
)

type maskRule struct {
	pattern     *regexp.Regexp
	placeholder string
	// wholeWord rejects matches touching a letter, digit or underscore.
	// RE2's \b only knows ASCII word characters.
	wholeWord bool
}

// word characters for address parts, including accented letters
const addressWord = `[\p{L}\p{N}_\s]+`

// Order matters: placeholders contain no digits, @ or commas, so later rules
// cannot match them.
var maskRules = buildMaskRules()

func buildMaskRules() []maskRule {
	states := strings.Join(States, "|")
	rules := []maskRule{
		{pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`), placeholder: PlaceholderEmail},
		{pattern: regexp.MustCompile(`(\+61[\s\-]?|0)?4\d{2}[\s\-]?\d{3}[\s\-]?\d{3}`), placeholder: PlaceholderPhone},
		{pattern: regexp.MustCompile(`(?i)\d+\s` + addressWord + `,\s*` + addressWord + `,\s*(` + states + `)[\s\-]*\d{4}`), placeholder: PlaceholderAddress, wholeWord: true},
		// street + suburb without postcode; broad enough to catch "5 years, python"
		{pattern: regexp.MustCompile(`(?i)\d+\s` + addressWord + `,\s*` + addressWord), placeholder: PlaceholderAddress, wholeWord: true},
	}
	for _, city := range Cities {
		rules = append(rules, maskRule{pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(city)), placeholder: PlaceholderCity, wholeWord: true})
	}
	for _, state := range States {
		rules = append(rules, maskRule{pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(state)), placeholder: PlaceholderState, wholeWord: true})
	}
	return rules
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r)
}

func (m maskRule) apply(text string) string {
	if !m.wholeWord {
		return m.pattern.ReplaceAllLiteralString(text, m.placeholder)
	}

	var b strings.Builder
	last, pos := 0, 0
	for pos < len(text) {
		loc := m.pattern.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start > 0 && isWordRune(before)) || (end < len(text) && isWordRune(after)) {
			// retry one rune further on, a later start may still be a whole word
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(m.placeholder)
		last, pos = end, end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// MaskPII replaces emails, Australian mobile numbers, street addresses, capital
// cities and state abbreviations with fixed placeholders.
func MaskPII(text string) string {
	masked := text
	for _, rule := range maskRules {
		masked = rule.apply(masked)
	}
	return masked
}
