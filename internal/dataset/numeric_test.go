package dataset

import "testing"

func TestCoerce(t *testing.T) {
	cases := []struct {
		name string
		in   string
		opt  NumericOptions
		want float64
		ok   bool
	}{
		{"plain", "0.6", NumericOptions{}, 0.6, true},
		{"spaces", "  2.5 ", NumericOptions{}, 2.5, true},
		{"exponent", "1e-3", NumericOptions{}, 0.001, true},
		{"negative", "-0.25", NumericOptions{}, -0.25, true},
		{"leading dot", ".5", NumericOptions{}, 0.5, true},
		{"lone comma is not a decimal", "1,234", NumericOptions{}, 0, false},
		{"comma decimal needs opt-in", "0,8", NumericOptions{}, 0, false},
		{"embedded space", "0 8", NumericOptions{}, 0, false},
		{"embedded nbsp", "1\u00a0000", NumericOptions{}, 0, false},
		{"hex float", "0x1p-1", NumericOptions{}, 0, false},
		{"grouped without thousands option", "1,234.5", NumericOptions{}, 0, false},
		{"two points", "1.2.3", NumericOptions{}, 0, false},
		{"explicit comma decimal", "1.234,5", NumericOptions{DecimalSeparator: ',', ThousandsSeparator: '.'}, 1234.5, true},
		{"explicit comma decimal rejects point", "1.5", NumericOptions{DecimalSeparator: ','}, 0, false},
		{"explicit thousands", "1,234.5", NumericOptions{ThousandsSeparator: ','}, 1234.5, true},
		{"auto comma decimal", "0,8", NumericOptions{Auto: true}, 0.8, true},
		{"auto eu thousands", "1.234,5", NumericOptions{Auto: true}, 1234.5, true},
		{"auto us thousands", "1,234.5", NumericOptions{Auto: true}, 1234.5, true},
		{"auto nbsp grouping", "1\u00a0000", NumericOptions{Auto: true}, 1000, true},
		{"auto still rejects hex", "0x1p-1", NumericOptions{Auto: true}, 0, false},
		{"empty", "", NumericOptions{}, 0, false},
		{"na token", "N/A", NumericOptions{}, 0, false},
		{"nan token", "nan", NumericOptions{}, 0, false},
		{"text", "abc", NumericOptions{}, 0, false},
		{"infinity", "Inf", NumericOptions{}, 0, false},
	}
	for _, c := range cases {
		got, ok := Coerce(c.in, c.opt)
		if ok != c.ok {
			t.Errorf("%s: ok = %v, want %v", c.name, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}
