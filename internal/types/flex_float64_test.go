package types

import (
	"encoding/json"
	"testing"
)

func TestFlexFloat64Unmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`120`, 120},
		{`120.5`, 120.5},
		{`"120.5"`, 120.5},
		{`"$1,200.50"`, 1200.5},
		{`"  300 "`, 300},
		{`"not a number"`, 0},
		{`null`, 0},
		{`{"nested":true}`, 0},
	}

	for _, tc := range cases {
		var f FlexFloat64
		if err := json.Unmarshal([]byte(tc.in), &f); err != nil {
			t.Errorf("Unmarshal(%s) returned error: %v", tc.in, err)
			continue
		}
		if f.Float64() != tc.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tc.in, f.Float64(), tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"100", 100},
		{"$100", 100},
		{"$1,234.56", 1234.56},
		{"", 0},
		{"TBD", 0},
	}

	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
