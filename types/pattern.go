package types

import (
	"strings"
)

// A Pattern is the right-hand side of a `like` expression: a sequence of
// literal chunks separated by `*` wildcards.
type Pattern struct {
	comps []patternComponent
	raw   string
}

type patternComponent struct {
	star  bool
	chunk string
}

// A PatternComponent is either a wildcard or a literal chunk.
type PatternComponent struct {
	Star  bool
	Chunk string
}

// Components returns the pattern as a wildcard/literal sequence.
func (p Pattern) Components() []PatternComponent {
	res := make([]PatternComponent, len(p.comps))
	for i, c := range p.comps {
		res[i] = PatternComponent{Star: c.star, Chunk: c.chunk}
	}
	return res
}

// NewPatternFromComponents builds a Pattern from a wildcard/literal
// sequence.
func NewPatternFromComponents(comps []PatternComponent) Pattern {
	var p Pattern
	var raw strings.Builder
	for _, c := range comps {
		if c.Star {
			p.comps = append(p.comps, patternComponent{star: true})
			raw.WriteByte('*')
			continue
		}
		p.comps = append(p.comps, patternComponent{chunk: c.Chunk})
		quoted := QuoteString(c.Chunk)
		raw.WriteString(strings.ReplaceAll(quoted[1:len(quoted)-1], "*", `\*`))
	}
	p.raw = raw.String()
	return p
}

// ParsePattern parses the body of a pattern literal (without quotes).
// A `\*` escape matches a literal star; other escapes follow string
// literal rules.
func ParsePattern(raw string) (Pattern, error) {
	p := Pattern{raw: raw}
	var chunk strings.Builder
	flush := func(star bool) {
		if star || chunk.Len() > 0 {
			p.comps = append(p.comps, patternComponent{star: star, chunk: chunk.String()})
			chunk.Reset()
		}
	}
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '*':
			flush(false)
			// Collapse adjacent stars.
			if len(p.comps) == 0 || !p.comps[len(p.comps)-1].star {
				flush(true)
			}
		case '\\':
			if i+1 < len(raw) && raw[i+1] == '*' {
				chunk.WriteByte('*')
				i++
				continue
			}
			unquoted, err := UnquoteString(`"` + raw[i:min(i+2, len(raw))] + `"`)
			if err != nil {
				return Pattern{}, err
			}
			chunk.WriteString(unquoted)
			i++
		default:
			chunk.WriteByte(raw[i])
		}
	}
	flush(false)
	return p, nil
}

// Match reports whether s matches the pattern.
func (p Pattern) Match(s string) bool {
	return matchComponents(p.comps, s)
}

func matchComponents(comps []patternComponent, s string) bool {
	if len(comps) == 0 {
		return s == ""
	}
	c := comps[0]
	if c.star {
		if len(comps) == 1 {
			return true
		}
		for i := 0; i <= len(s); i++ {
			if matchComponents(comps[1:], s[i:]) {
				return true
			}
		}
		return false
	}
	if !strings.HasPrefix(s, c.chunk) {
		return false
	}
	return matchComponents(comps[1:], s[len(c.chunk):])
}

// MarshalCedar renders the pattern as a quoted literal, preserving the
// original escapes.
func (p Pattern) MarshalCedar() []byte {
	return []byte(`"` + p.raw + `"`)
}

func (p Pattern) String() string { return string(p.MarshalCedar()) }
