package analysis

import (
	"strconv"
	"strings"
)

// Options controls how a delimited source is parsed and how cells are typed.
type Options struct {
	// Delimiter for CSV. If 0, sniffed from the file extension and header line.
	Delimiter rune
	// DecimalSeparator used by numeric cells; '.' when 0.
	DecimalSeparator rune
	// ThousandsSeparator is stripped before parsing; 0 means numbers carry no grouping.
	ThousandsSeparator rune
	// MissingValues are tokens treated as missing in addition to blank cells.
	MissingValues []string
}

// DefaultOptions returns the parsing defaults: comma-or-sniffed delimiter, '.' decimals,
// no grouping, and the usual NA spellings.
func DefaultOptions() Options {
	return Options{
		DecimalSeparator: '.',
		MissingValues: []string{
			"NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan", "null", "NULL", "None", "#N/A", "<NA>", "-",
		},
	}
}

func (o Options) decimal() rune {
	if o.DecimalSeparator == 0 {
		return '.'
	}
	return o.DecimalSeparator
}

func (o Options) missingSet() map[string]struct{} {
	set := make(map[string]struct{}, len(o.MissingValues))
	for _, v := range o.MissingValues {
		set[strings.TrimSpace(v)] = struct{}{}
	}
	return set
}

func isMissing(cell string, tokens map[string]struct{}) bool {
	v := strings.TrimSpace(cell)
	if v == "" {
		return true
	}
	_, ok := tokens[v]
	return ok
}

// parseNumeric parses an optionally signed integer or decimal, with an optional exponent,
// under the configured separators. Infinity, NaN and hex forms are rejected.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	dec := opt.decimal()
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.ContainsRune(raw, '.') {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	if !numericLiteral(raw) {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// numericLiteral matches [+-]? digits [. digits] ([eE] [+-]? digits)?, where at least one
// mantissa digit is present on either side of the point.
func numericLiteral(s string) bool {
	i, n := 0, len(s)
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < n && isDigit(s[i]) {
		i++
		digits++
	}
	if i < n && s[i] == '.' {
		i++
		for i < n && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < n && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < n && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == n
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
