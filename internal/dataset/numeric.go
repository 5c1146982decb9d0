package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NumericOptions controls cell coercion. The zero value accepts plain numbers
// with '.' as the decimal point and no grouping.
type NumericOptions struct {
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Auto detects unset separators per value (e.g. "1.234,5" and "1,234.5").
	Auto bool
}

// naTokens are the cell values treated as missing, in addition to the empty string.
var naTokens = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {},
	"#N/A N/A": {}, "-1.#IND": {}, "1.#IND": {}, "-1.#QNAN": {}, "1.#QNAN": {},
}

func isNA(s string) bool {
	if s == "" {
		return true
	}
	_, ok := naTokens[s]
	return ok
}

// plainNumber is the accepted shape after separator normalization: optional
// sign, decimal digits with at most one '.', optional exponent.
var plainNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Coerce converts a raw cell to a float. It reports false for missing cells,
// unparseable text and non-finite results. With zero options only plain
// '.'-decimal numbers are accepted; Auto enables per-value separator detection.
func Coerce(s string, opt NumericOptions) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if isNA(raw) {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 && opt.Auto {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if dec == 0 {
		dec = '.'
	}
	if thou == 0 && opt.Auto {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	if !plainNumber.MatchString(raw) {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
