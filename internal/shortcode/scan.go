package shortcode

import (
	"html"
	"strings"
)

// Token is one shortcode occurrence in a text.
type Token struct {
	Name string
	// RawAttrs is everything between the name and the closing bracket,
	// exactly as found.
	RawAttrs string
	// Start and End are byte offsets of the whole token, End exclusive.
	Start int
	End   int
}

// Scan finds every shortcode token in s, left to right. Both the literal
// form `{{< name a="b" >}}` and the escaped form `{{&lt; name &gt;}}` that
// markdown rendering produces are recognized. Tokens never overlap.
func Scan(s string) []Token {
	var tokens []Token
	for pos := 0; pos < len(s); {
		open := strings.Index(s[pos:], "{{")
		if open < 0 {
			break
		}
		start := pos + open
		tok, ok, unclosed := scanAt(s, start)
		if unclosed {
			// No closing bracket remains, so no later opener can close.
			break
		}
		if !ok {
			pos = start + 1
			continue
		}
		tokens = append(tokens, tok)
		pos = tok.End
	}
	return tokens
}

// scanAt parses a token that begins with "{{" at start. unclosed reports
// that the search for the closing bracket ran to the end of s.
func scanAt(s string, start int) (tok Token, ok, unclosed bool) {
	i := skipSpace(s, start+2)
	i, ok = consumeBracket(s, i, "<", "&lt;")
	if !ok {
		return Token{}, false, false
	}
	i = skipSpace(s, i)

	nameStart := i
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	if i == nameStart {
		return Token{}, false, false
	}
	name := s[nameStart:i]

	// The attributes end at the first closing bracket that is followed by
	// optional space and "}}".
	for j := i; j < len(s); j++ {
		k, ok := consumeBracket(s, j, ">", "&gt;")
		if !ok {
			continue
		}
		k = skipSpace(s, k)
		if strings.HasPrefix(s[k:], "}}") {
			return Token{Name: name, RawAttrs: s[i:j], Start: start, End: k + 2}, true, false
		}
	}
	return Token{}, false, true
}

func consumeBracket(s string, i int, literal, escaped string) (int, bool) {
	switch {
	case strings.HasPrefix(s[i:], literal):
		return i + len(literal), true
	case strings.HasPrefix(s[i:], escaped):
		return i + len(escaped), true
	}
	return i, false
}

// ParseAttrs decodes HTML entities in raw and collects key="value" pairs.
// Text that is not a pair is skipped; a repeated key keeps its last value.
func ParseAttrs(raw string) map[string]string {
	s := html.UnescapeString(raw)
	attrs := make(map[string]string)

	for i := 0; i < len(s); {
		if !isNameByte(s[i]) {
			i++
			continue
		}
		keyStart := i
		for i < len(s) && isNameByte(s[i]) {
			i++
		}
		key := s[keyStart:i]

		j := skipSpace(s, i)
		if j >= len(s) || s[j] != '=' {
			continue
		}
		j = skipSpace(s, j+1)
		if j >= len(s) || s[j] != '"' {
			continue
		}
		end := strings.IndexByte(s[j+1:], '"')
		if end < 0 {
			break
		}
		attrs[key] = s[j+1 : j+1+end]
		i = j + end + 2
	}
	return attrs
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
