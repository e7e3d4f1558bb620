package cedar

import (
	"github.com/charbonnierg/cedar/internal/parser"
)

// FormatConfig holds the two pretty-printer knobs. Zero or negative
// values fall back to the defaults: a line width of 88 columns and an
// indent width of 2 spaces.
type FormatConfig struct {
	// LineWidth is the column the formatter tries to stay within.
	LineWidth int
	// IndentWidth is the number of spaces per indentation level.
	IndentWidth int
}

// FormatPolicies parses a Cedar policy document and renders it
// pretty-printed. The output parses back to the same policies.
func FormatPolicies(document []byte, cfg FormatConfig) ([]byte, error) {
	asts, err := parser.ParsePolicies(document)
	if err != nil {
		return nil, err
	}
	return parser.PrettyPrintPolicies(asts, parser.Config{
		LineWidth:   cfg.LineWidth,
		IndentWidth: cfg.IndentWidth,
	}), nil
}
