package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"450,00", "450"},
		{"1.234,56", "1234.56"},
		{"€ 1234,56", "1234.56"},
		{"  90 ", "90"},
		{"abc", "0"},
		{"", "0"},
		{"-50", "0"},
		{"1 200", "1200"},
		{"1.234.567", "1234567"},
		{"12.5", "12.5"},
		{"1.2345", "1.2345"},
		{"450€", "450"},
		{"1,5,0", "1.5"},
		{"-", "0"},
		{"   ", "0"},
		{",5", "0.5"},
	}
	for _, tt := range tests {
		got := Parse(tt.in)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParse_NeverNegative(t *testing.T) {
	for _, in := range []string{"-0,01", "- 12", "-1.000,00", "--5"} {
		if got := Parse(in); got.IsNegative() {
			t.Fatalf("Parse(%q) = %s, want >= 0", in, got)
		}
	}
}

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		in       string
		fallback int
		want     int
	}{
		{"3", 1, 3},
		{" 4 ", 1, 4},
		{"0", 1, 1},
		{"-2", 1, 1},
		{"two", 2, 2},
		{"", 1, 1},
	}
	for _, tt := range tests {
		if got := ParsePositiveInt(tt.in, tt.fallback); got != tt.want {
			t.Errorf("ParsePositiveInt(%q, %d) = %d, want %d", tt.in, tt.fallback, got, tt.want)
		}
	}
}

func TestCeilTo(t *testing.T) {
	got := CeilTo(decimal.RequireFromString("41.67"), decimal.NewFromInt(10))
	if !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("CeilTo = %s, want 50", got)
	}
	got = CeilTo(decimal.NewFromInt(40), decimal.NewFromInt(10))
	if !got.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("CeilTo exact = %s, want 40", got)
	}
	got = CeilTo(decimal.RequireFromString("3.2"), decimal.Zero)
	if !got.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("CeilTo zero step = %s, want 4", got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0,00 €"},
		{"450", "450,00 €"},
		{"1234.56", "1 234,56 €"},
		{"1234567.891", "1 234 567,89 €"},
		{"-12.5", "-12,50 €"},
	}
	for _, tt := range tests {
		if got := Format(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("Format(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatWhole(t *testing.T) {
	if got := FormatWhole(decimal.RequireFromString("1234.56")); got != "1 235 €" {
		t.Fatalf("FormatWhole = %q, want %q", got, "1 235 €")
	}
	if got := FormatWhole(decimal.RequireFromString("-0.2")); got != "0 €" {
		t.Fatalf("FormatWhole(-0.2) = %q, want %q", got, "0 €")
	}
}
