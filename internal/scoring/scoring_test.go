package scoring

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func in(total, monthly string, months int) Inputs {
	return Inputs{
		TotalCost:      decimal.RequireFromString(total),
		MonthlyAmount:  decimal.RequireFromString(monthly),
		MonthsToTarget: months,
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want int
	}{
		{"comfortable", in("2000", "300", 10), 100},
		{"everything tight", in("6000", "1200", 2), 30},
		{"long horizon bonus clamped", in("1000", "50", 24), 100},
		{"mid tiers", in("4000", "600", 4), 65},
		{"boundaries are exclusive", in("3000", "500", 6), 100},
		{"upper boundaries", in("5000", "1000", 12), 75},
		{"just over", in("5000.01", "1000.01", 13), 60},
		{"worst case", in("99999", "99999", 0), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.in); got != tt.want {
				t.Fatalf("Score(%+v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestScore_StaysInRange(t *testing.T) {
	totals := []string{"0", "3000.01", "5000.01", "1000000"}
	monthlies := []string{"0", "500.01", "1000.01", "1000000"}
	for _, total := range totals {
		for _, monthly := range monthlies {
			for months := -1; months <= 40; months++ {
				got := Score(in(total, monthly, months))
				if got < 0 || got > 100 {
					t.Fatalf("Score(%s, %s, %d) = %d out of range", total, monthly, months, got)
				}
			}
		}
	}
}

func TestClamp(t *testing.T) {
	if clamp(-10, 0, 100) != 0 || clamp(110, 0, 100) != 100 || clamp(42, 0, 100) != 42 {
		t.Fatal("clamp does not bound values")
	}
}

func TestInputsFor_NoDeadlineScoresAsImminent(t *testing.T) {
	today := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got := InputsFor(decimal.NewFromInt(2000), nil, today)
	if got.MonthsToTarget != 0 || !got.MonthlyAmount.IsZero() {
		t.Fatalf("InputsFor without deadline = %+v, want zero months and amount", got)
	}
	// A trip without any date is scored like one departing within three
	// months.
	if s := Score(got); s != 80 {
		t.Fatalf("Score = %d, want 80", s)
	}
}

func TestInputsFor_Deadline(t *testing.T) {
	today := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := today.AddDate(0, 0, 100)
	got := InputsFor(decimal.NewFromInt(2000), &deadline, today)
	if got.MonthsToTarget != 4 {
		t.Fatalf("MonthsToTarget = %d, want 4", got.MonthsToTarget)
	}
	if !got.MonthlyAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("MonthlyAmount = %s, want 500", got.MonthlyAmount)
	}

	past := today.AddDate(0, 0, -40)
	got = InputsFor(decimal.NewFromInt(2000), &past, today)
	if got.MonthsToTarget != 1 {
		t.Fatalf("past deadline MonthsToTarget = %d, want 1", got.MonthsToTarget)
	}
}

func TestTierOf(t *testing.T) {
	cases := map[int]Tier{100: TierGood, 70: TierGood, 69: TierFair, 40: TierFair, 39: TierPoor, 0: TierPoor}
	for score, want := range cases {
		if got := TierOf(score); got != want {
			t.Errorf("TierOf(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestRank_StableDescending(t *testing.T) {
	type trip struct {
		name string
		in   Inputs
	}
	trips := []trip{
		{"a", in("6000", "1200", 2)}, // 30
		{"b", in("2000", "300", 10)}, // 100
		{"c", in("4000", "600", 4)},  // 65
		{"d", in("1000", "100", 8)},  // 100
		{"e", in("4000", "600", 4)},  // 65
	}
	ranked := Rank(trips, func(t trip) Inputs { return t.in })

	var order string
	for _, r := range ranked {
		order += r.Item.name
	}
	if order != "bdcea" {
		t.Fatalf("rank order = %q, want %q", order, "bdcea")
	}
	if ranked[0].Score != 100 || ranked[4].Score != 30 {
		t.Fatalf("scores = %d..%d, want 100..30", ranked[0].Score, ranked[4].Score)
	}
}
