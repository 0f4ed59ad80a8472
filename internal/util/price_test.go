package util

import "testing"

func TestParsePrice(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain", input: "120", want: 120},
		{name: "decimal dot", input: "99.5", want: 99.5},
		{name: "decimal comma", input: "99,5", want: 99.5},
		{name: "thousand with space", input: "1 200", want: 1200},
		{name: "thousand comma", input: "1,200", want: 1200},
		{name: "thousand dot", input: "1.200", want: 1200},
		{name: "mixed us", input: "1,200.50", want: 1200.5},
		{name: "mixed eu", input: "1.200,50", want: 1200.5},
		{name: "currency", input: "₪350", want: 350},
		{name: "nbsp", input: "2\u00a0500", want: 2500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParsePrice(tc.input)
			if got == nil {
				t.Fatalf("price is nil")
			}
			if *got != tc.want {
				t.Fatalf("got %v want %v", *got, tc.want)
			}
		})
	}
}

func TestParsePriceRejectsText(t *testing.T) {
	for _, input := range []string{"", "  ", "not a number", "12abc", "NaN", "--"} {
		if got := ParsePrice(input); got != nil {
			t.Fatalf("input %q: got %v want nil", input, *got)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	for _, input := range []string{"Price (Small)", "price_small", "PriceSmall", "PRICE-SMALL"} {
		if got := NormalizeKey(input); got != "pricesmall" {
			t.Fatalf("input %q: got %q", input, got)
		}
	}
}

func TestParseBool(t *testing.T) {
	cases := map[string]struct {
		value bool
		ok    bool
	}{
		"true":  {true, true},
		"YES":   {true, true},
		" 1 ":   {true, true},
		"off":   {false, true},
		"n":     {false, true},
		"maybe": {false, false},
	}
	for input, want := range cases {
		value, ok := ParseBool(input)
		if value != want.value || ok != want.ok {
			t.Fatalf("input %q: got (%v,%v) want (%v,%v)", input, value, ok, want.value, want.ok)
		}
	}
}

func TestNormalizeKeyKeepsNonASCIILetters(t *testing.T) {
	if got := NormalizeKey("מחיר בינוני"); got != "מחירבינוני" {
		t.Fatalf("got %q", got)
	}
}
