package types

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"unicode/utf8"
)

// A String is a sequence of characters consisting of letters, numbers, or
// symbols.
type String string

// Equal returns true if the input represents the same string.
func (s String) Equal(v Value) bool {
	other, ok := v.(String)
	return ok && s == other
}

// String returns the value unquoted. Use MarshalCedar for the quoted form.
func (s String) String() string { return string(s) }

// MarshalCedar renders the String as quoted Cedar source text.
func (s String) MarshalCedar() []byte { return []byte(QuoteString(string(s))) }

// MarshalJSON marshals the String as a JSON string.
func (s String) MarshalJSON() ([]byte, error) { return json.Marshal(string(s)) }

func (s String) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// QuoteString renders s as a double-quoted Cedar string literal.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// UnquoteString parses a double-quoted Cedar string literal, including the
// surrounding quotes. It understands the escapes \n \r \t \\ \0 \' \" and
// \u{hex}.
func UnquoteString(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("string literal must be double-quoted: %q", s)
	}
	body := s[1 : len(s)-1]
	var sb strings.Builder
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			if c == '"' {
				return "", fmt.Errorf("unescaped quote in string literal: %q", s)
			}
			r, size := utf8.DecodeRuneInString(body[i:])
			sb.WriteRune(r)
			i += size
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("truncated escape in string literal: %q", s)
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\':
			sb.WriteByte('\\')
		case '0':
			sb.WriteByte(0)
		case '\'':
			sb.WriteByte('\'')
		case '"':
			sb.WriteByte('"')
		case '*':
			// Only meaningful inside pattern literals, accepted here so
			// patterns and strings share one unquoter.
			sb.WriteByte('*')
		case 'u':
			if i+1 >= len(body) || body[i+1] != '{' {
				return "", fmt.Errorf("malformed unicode escape in %q", s)
			}
			end := strings.IndexByte(body[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("malformed unicode escape in %q", s)
			}
			code, err := strconv.ParseUint(body[i+2:i+end], 16, 32)
			if err != nil || !utf8.ValidRune(rune(code)) {
				return "", fmt.Errorf("malformed unicode escape in %q", s)
			}
			sb.WriteRune(rune(code))
			i += end
		default:
			return "", fmt.Errorf("unknown escape \\%c in string literal", body[i])
		}
		i++
	}
	return sb.String(), nil
}
