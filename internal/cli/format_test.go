package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/palmvoyage/tripfund/internal/planner"
)

func TestFormatDaysLeft(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day := func(n int) *time.Time { d := today.AddDate(0, 0, n); return &d }

	tests := []struct {
		in   *time.Time
		want string
	}{
		{nil, "no date"},
		{day(0), "today"},
		{day(1), "tomorrow"},
		{day(40), "in 40 days"},
		{day(-1), "yesterday"},
		{day(-3), "3 days ago"},
	}
	for _, tt := range tests {
		if got := FormatDaysLeft(today, tt.in); got != tt.want {
			t.Errorf("FormatDaysLeft(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatHorizonAndProjection(t *testing.T) {
	if got := FormatHorizon(planner.UndefinedHorizon()); got != "no departure date" {
		t.Errorf("undefined horizon = %q", got)
	}
	if got := FormatHorizon(planner.KnownHorizon(1)); got != "1 month" {
		t.Errorf("one month = %q", got)
	}
	if got := FormatProjection(planner.NeverFunded()); !strings.HasPrefix(got, "never") {
		t.Errorf("never funded = %q", got)
	}
	p := planner.FundedOn(3, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC))
	if got := FormatProjection(p); got != "2025-06-08 (3 months)" {
		t.Errorf("projection = %q", got)
	}
}

func TestRenderTable_AlignsMultiByteCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Trip", "Cost"},
		Rows: [][]string{
			{"Lisbon → Porto", "1 200,00 €"},
			{"Oslo", "40,00 €"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != width {
			t.Errorf("line %d width %d, want %d: %q", i, lipgloss.Width(l), width, l)
		}
	}
}

func TestSavingsCurve(t *testing.T) {
	got := SavingsCurve(1000, 400, 3)
	want := []float64{400, 800, 1000}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month %d = %v, want %v", i+1, got[i], want[i])
		}
	}
	if SavingsCurve(1000, 0, 3) != nil {
		t.Error("zero rate should give no curve")
	}
}
