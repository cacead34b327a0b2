package skills

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	quotedSubstring = regexp.MustCompile(`'(.*?)'`)
	noSkillPhrases  = []string{"no skills can be extracted", "no valid skill section"}
)

// ParseReply turns a model reply into a deduplicated list of lowercase skills.
//
// The reply is first read as a list literal ('python' or JSON style); only string
// elements are kept and a literal that is not a list yields nothing. Replies that
// are not literals are checked for a "no skills" statement, and failing that every
// single-quoted substring is taken as a skill.
func ParseReply(reply string) []string {
	content := stripCodeFences(reply)

	value, err := parseLiteral(content)
	if err == nil {
		list, ok := value.([]any)
		if !ok {
			return []string{}
		}
		found := make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := v.(string); ok {
				found = append(found, s)
			}
		}
		return Normalize(found)
	}

	lowered := strings.ToLower(content)
	for _, phrase := range noSkillPhrases {
		if strings.Contains(lowered, phrase) {
			return []string{}
		}
	}

	matches := quotedSubstring.FindAllStringSubmatch(content, -1)
	found := make([]string, 0, len(matches))
	for _, m := range matches {
		found = append(found, m[1])
	}
	return Normalize(found)
}

// stripCodeFences removes a surrounding ```lang ... ``` block.
func stripCodeFences(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
		if nl := strings.IndexAny(clean, "\r\n"); nl >= 0 && !strings.ContainsAny(clean[:nl], "[('\"") {
			clean = clean[nl:]
		}
		clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	}
	return strings.TrimSpace(clean)
}

type (
	tupleValue []any
	dictValue  struct{}
	numValue   string
)

type literalParser struct {
	src string
	pos int
}

// parseLiteral accepts the literal subset a model plausibly returns: strings,
// numbers, True/False/None, lists, tuples, dicts and sets.
func parseLiteral(src string) (any, error) {
	p := &literalParser{src: src}
	p.skipSpace()
	if p.eof() {
		return nil, errors.New("empty literal")
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, errors.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
	}
	return v, nil
}

func (p *literalParser) eof() bool { return p.pos >= len(p.src) }

func (p *literalParser) peek() byte { return p.src[p.pos] }

func (p *literalParser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) value() (any, error) {
	if p.eof() {
		return nil, errors.New("unexpected end of literal")
	}
	c := p.peek()
	switch {
	case c == '[':
		p.pos++
		items, _, err := p.sequence(']')
		return items, err
	case c == '(':
		p.pos++
		items, sawComma, err := p.sequence(')')
		if err != nil {
			return nil, err
		}
		if len(items) == 1 && !sawComma {
			return items[0], nil
		}
		return tupleValue(items), nil
	case c == '{':
		p.pos++
		return p.dict()
	case c == '\'' || c == '"':
		return p.strings()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.number()
	case isIdentStart(c):
		start := p.pos
		for !p.eof() && isIdentPart(p.peek()) {
			p.pos++
		}
		word := p.src[start:p.pos]
		if !p.eof() && (p.peek() == '\'' || p.peek() == '"') && isStringPrefix(word) {
			p.pos = start
			return p.strings()
		}
		switch word {
		case "True":
			return true, nil
		case "False":
			return false, nil
		case "None":
			return nil, nil
		}
		return nil, errors.Errorf("name %q is not a literal", word)
	}
	return nil, errors.Errorf("unexpected %q at offset %d", c, p.pos)
}

// sequence parses comma separated values up to closer. The opening bracket has
// already been consumed.
func (p *literalParser) sequence(closer byte) ([]any, bool, error) {
	items := []any{}
	sawComma := false
	for {
		p.skipSpace()
		if p.eof() {
			return nil, false, errors.New("unterminated sequence")
		}
		if p.peek() == closer {
			p.pos++
			return items, sawComma, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, false, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.eof() {
			return nil, false, errors.New("unterminated sequence")
		}
		switch p.peek() {
		case ',':
			sawComma = true
			p.pos++
		case closer:
		default:
			return nil, false, errors.Errorf("expected ',' at offset %d", p.pos)
		}
	}
}

func (p *literalParser) dict() (any, error) {
	for {
		p.skipSpace()
		if p.eof() {
			return nil, errors.New("unterminated dict")
		}
		if p.peek() == '}' {
			p.pos++
			return dictValue{}, nil
		}
		if _, err := p.value(); err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.eof() && p.peek() == ':' {
			p.pos++
			p.skipSpace()
			if _, err := p.value(); err != nil {
				return nil, err
			}
			p.skipSpace()
		}
		if p.eof() {
			return nil, errors.New("unterminated dict")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			return nil, errors.Errorf("expected ',' at offset %d", p.pos)
		}
	}
}

func (p *literalParser) number() (any, error) {
	start := p.pos
	if p.peek() == '-' || p.peek() == '+' {
		p.pos++
	}
	for !p.eof() && strings.IndexByte("0123456789abcdefABCDEFxXoO_.jJ+-", p.peek()) >= 0 {
		// a sign only continues the number right after an exponent
		if (p.peek() == '+' || p.peek() == '-') && !strings.ContainsAny(p.src[p.pos-1:p.pos], "eE") {
			break
		}
		p.pos++
	}
	raw := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	num := strings.TrimRight(raw, "jJ")
	if _, err := strconv.ParseFloat(num, 64); err == nil {
		return numValue(raw), nil
	}
	if _, err := strconv.ParseInt(num, 0, 64); err == nil {
		return numValue(raw), nil
	}
	return nil, errors.Errorf("invalid number %q", raw)
}

// strings parses one or more adjacent string literals and concatenates them.
func (p *literalParser) strings() (any, error) {
	var b strings.Builder
	for {
		s, err := p.stringLiteral()
		if err != nil {
			return nil, err
		}
		b.WriteString(s)

		save := p.pos
		p.skipSpace()
		if p.eof() {
			break
		}
		c := p.peek()
		if c == '\'' || c == '"' {
			continue
		}
		if isIdentStart(c) {
			start := p.pos
			for !p.eof() && isIdentPart(p.peek()) {
				p.pos++
			}
			if !p.eof() && (p.peek() == '\'' || p.peek() == '"') && isStringPrefix(p.src[start:p.pos]) {
				p.pos = start
				continue
			}
		}
		p.pos = save
		break
	}
	return b.String(), nil
}

func (p *literalParser) stringLiteral() (string, error) {
	raw := false
	for !p.eof() && isIdentStart(p.peek()) {
		switch p.peek() {
		case 'r', 'R':
			raw = true
		}
		p.pos++
	}
	if p.eof() {
		return "", errors.New("unterminated string")
	}
	quote := p.peek()
	triple := strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(quote), 3))
	if triple {
		p.pos += 3
	} else {
		p.pos++
	}

	var b strings.Builder
	for {
		if p.eof() {
			return "", errors.New("unterminated string")
		}
		c := p.peek()
		switch {
		case triple && strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(quote), 3)):
			p.pos += 3
			return b.String(), nil
		case !triple && c == quote:
			p.pos++
			return b.String(), nil
		case !triple && c == '\n':
			return "", errors.New("newline in single-quoted string")
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return "", errors.New("unterminated string")
			}
			if raw {
				b.WriteString(p.src[p.pos : p.pos+2])
				p.pos += 2
				continue
			}
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *literalParser) escape(b *strings.Builder) error {
	c := p.src[p.pos+1]
	p.pos += 2
	simple := map[byte]string{
		'\\': "\\", '\'': "'", '"': "\"", 'n': "\n", 't': "\t", 'r': "\r",
		'a': "\a", 'b': "\b", 'f': "\f", 'v': "\v", '0': "\x00", '\n': "",
	}
	if s, ok := simple[c]; ok {
		b.WriteString(s)
		return nil
	}
	width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
	if width == 0 {
		// unknown escapes are kept verbatim
		b.WriteByte('\\')
		b.WriteByte(c)
		return nil
	}
	if p.pos+width > len(p.src) {
		return errors.New("truncated escape")
	}
	code, err := strconv.ParseUint(p.src[p.pos:p.pos+width], 16, 32)
	if err != nil {
		return errors.Wrap(err, "invalid escape")
	}
	p.pos += width
	b.WriteRune(rune(code))
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "u", "b", "br", "rb":
		return true
	}
	return false
}
