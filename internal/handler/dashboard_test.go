package handler

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTrendPercent(t *testing.T) {
	cases := []struct {
		name     string
		current  string
		previous string
		want     string
	}{
		{"growth", "150", "100", "50"},
		{"decline", "50", "100", "-50"},
		{"flat", "100", "100", "0"},
		{"from zero with activity", "42", "0", "100"},
		{"from zero without activity", "0", "0", "0"},
		{"fractional", "105", "100", "5"},
	}

	for _, tc := range cases {
		cur, _ := decimal.NewFromString(tc.current)
		prev, _ := decimal.NewFromString(tc.previous)
		want, _ := decimal.NewFromString(tc.want)

		got := trendPercent(cur, prev)
		if !got.Equal(want) {
			t.Errorf("%s: trendPercent(%s, %s) = %s, want %s", tc.name, tc.current, tc.previous, got, want)
		}
	}
}
