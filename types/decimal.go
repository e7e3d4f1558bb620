package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const decimalPrecision = 10000

// A Decimal is a Cedar fixed-point number with exactly four digits of
// fractional precision, stored as the value multiplied by 10^4.
type Decimal int64

// ParseDecimal converts a string like `12.34` into a Decimal. Between one
// and four fractional digits are required.
func ParseDecimal(s string) (Decimal, error) {
	intPart, fracPart, found := strings.Cut(s, ".")
	if !found {
		return 0, fmt.Errorf("error parsing decimal value %q: missing decimal point", s)
	}
	if len(fracPart) < 1 || len(fracPart) > 4 {
		return 0, fmt.Errorf("error parsing decimal value %q: fractional part must have 1 to 4 digits", s)
	}
	i, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing decimal value %q: %w", s, err)
	}
	f, err := strconv.ParseUint(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing decimal value %q: %w", s, err)
	}
	for n := 0; n < 4-len(fracPart); n++ {
		f *= 10
	}

	negative := strings.HasPrefix(intPart, "-")
	if i > (1<<63-1)/decimalPrecision || i < -(1<<63-1)/decimalPrecision-1 {
		return 0, fmt.Errorf("error parsing decimal value %q: overflow", s)
	}
	d := i * decimalPrecision
	if negative {
		d -= int64(f)
	} else {
		d += int64(f)
	}
	if (negative && d > 0) || (!negative && f > 0 && d < 0) {
		return 0, fmt.Errorf("error parsing decimal value %q: overflow", s)
	}
	return Decimal(d), nil
}

// Equal returns true if the input represents the same decimal.
func (d Decimal) Equal(v Value) bool {
	other, ok := v.(Decimal)
	return ok && d == other
}

// LessThan compares two Decimals.
func (d Decimal) LessThan(other Decimal) bool { return d < other }

// String produces the decimal in its canonical text form, e.g. `12.34`.
func (d Decimal) String() string {
	integer := int64(d) / decimalPrecision
	frac := int64(d) % decimalPrecision
	if frac < 0 {
		frac = -frac
	}
	sign := ""
	if int64(d) < 0 && integer == 0 {
		sign = "-"
	}
	s := fmt.Sprintf("%s%d.%04d", sign, integer, frac)
	// Trim trailing zeros down to one fractional digit.
	for strings.HasSuffix(s, "0") && !strings.HasSuffix(s, ".0") {
		s = s[:len(s)-1]
	}
	return s
}

// MarshalCedar renders the Decimal as a Cedar extension literal, e.g.
// `decimal("12.34")`.
func (d Decimal) MarshalCedar() []byte {
	return []byte(`decimal(` + QuoteString(d.String()) + `)`)
}

// MarshalJSON marshals the Decimal using the `__extn` escape.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(entityEscapeJSON{Extn: &extnJSON{Fn: "decimal", Arg: d.String()}})
}

func (d Decimal) Hash() uint64 { return uint64(d) }
