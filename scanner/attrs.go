package scanner

import (
	"strings"
	"unicode"
)

// splitAttrs tokenizes an entity attribute body. Tokens are separated by
// whitespace or ';' outside double quotes. Whitespace around '=' is
// dropped so "key = value" reads as one token.
func splitAttrs(body string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		escaped bool
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if inQuote {
			cur.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inQuote = false
			}
			continue
		}

		switch {
		case r == '"':
			inQuote = true
			cur.WriteRune(r)
		case r == '=':
			cur.WriteRune(r)
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
		case r == ';' || unicode.IsSpace(r):
			j := i
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if r != ';' && j < len(runes) && runes[j] == '=' {
				i = j - 1
				continue
			}
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// splitOutsideQuotes splits s on sep, ignoring separators inside double
// quotes.
func splitOutsideQuotes(s string, sep rune) []string {
	var (
		parts   []string
		cur     strings.Builder
		inQuote bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case inQuote && escaped:
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case !inQuote && r == sep:
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	return append(parts, cur.String())
}

// parseAttr splits "key=value". The key must be non-empty and the value
// must be non-empty or an explicit empty string.
func parseAttr(tok string) (Attr, bool) {
	i := strings.IndexByte(tok, '=')
	if i <= 0 {
		return Attr{}, false
	}
	return makeAttr(tok[:i], tok[i+1:])
}

// parseAnnotation splits "key:value". A quoted value is split at the colon
// that precedes its opening quote so prefixed keys such as ex:note work;
// otherwise the first colon separates key and value.
func parseAnnotation(part string) (Attr, bool) {
	if q := strings.IndexByte(part, '"'); q >= 0 {
		head := strings.TrimSpace(part[:q])
		if !strings.HasSuffix(head, ":") {
			return Attr{}, false
		}
		return makeAttr(strings.TrimSuffix(head, ":"), part[q:])
	}
	i := strings.IndexByte(part, ':')
	if i <= 0 {
		return Attr{}, false
	}
	return makeAttr(part[:i], part[i+1:])
}

func makeAttr(key, value string) (Attr, bool) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return Attr{}, false
	}
	if isQuoted(value) {
		return Attr{Key: key, Value: unquote(value), Quoted: true}, true
	}
	if value == "" || strings.ContainsRune(value, '"') {
		return Attr{}, false
	}
	return Attr{Key: key, Value: value}, true
}

func isQuoted(s string) bool {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return false
	}
	// The closing quote must not be escaped.
	n := 0
	for i := len(s) - 2; i > 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 0
}

// unquote strips surrounding quotes and resolves backslash escapes.
func unquote(s string) string {
	s = s[1 : len(s)-1]
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			switch r {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
