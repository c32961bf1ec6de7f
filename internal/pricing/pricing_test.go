package pricing

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysInclusive(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"single day", date(2024, 1, 1), date(2024, 1, 1), 1},
		{"full week", date(2024, 1, 1), date(2024, 1, 7), 7},
		{"month boundary", date(2024, 1, 31), date(2024, 2, 1), 2},
		{"leap february", date(2024, 2, 1), date(2024, 2, 29), 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysInclusive(tt.start, tt.end)
			if got != tt.want {
				t.Fatalf("DaysInclusive(%v, %v) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestNormalizeStripsTime(t *testing.T) {
	in := time.Date(2024, 3, 15, 23, 45, 12, 999, time.FixedZone("IST", 5*3600+1800))
	got := Normalize(in)

	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.Location())
	}
}

func TestComputeWeeklyBeatsDaily(t *testing.T) {
	rates := Rates{Daily: 100, Weekly: 600, Monthly: 2000}

	quote, err := Compute(date(2024, 1, 1), date(2024, 1, 7), rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Days != 7 {
		t.Fatalf("expected 7 days, got %d", quote.Days)
	}
	if quote.Tier != PeriodWeekly {
		t.Fatalf("expected WEEKLY tier, got %s", quote.Tier)
	}
	if quote.Amount != 600 {
		t.Fatalf("expected amount 600, got %v", quote.Amount)
	}
}

func TestComputeShortRangeStaysDaily(t *testing.T) {
	rates := Rates{Daily: 100, Weekly: 600, Monthly: 2000}

	quote, err := Compute(date(2024, 1, 1), date(2024, 1, 3), rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Tier != PeriodDaily {
		t.Fatalf("expected DAILY tier, got %s", quote.Tier)
	}
	if quote.Amount != 300 {
		t.Fatalf("expected amount 300, got %v", quote.Amount)
	}
}

func TestComputeWeeklyNotApplicableUnderSevenDays(t *testing.T) {
	// Weekly is cheap enough to win on price but the range is too short
	rates := Rates{Daily: 100, Weekly: 150, Monthly: 10000}

	quote, err := Compute(date(2024, 1, 1), date(2024, 1, 6), rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Days != 6 {
		t.Fatalf("expected 6 days, got %d", quote.Days)
	}
	if quote.Tier != PeriodDaily {
		t.Fatalf("expected DAILY tier for 6 days, got %s", quote.Tier)
	}
	if quote.Amount != 600 {
		t.Fatalf("expected amount 600, got %v", quote.Amount)
	}
}

func TestComputeTieResolvesToShorterTier(t *testing.T) {
	// 7 days: daily total 700, weekly total 700. Tie keeps the shorter tier.
	rates := Rates{Daily: 100, Weekly: 700, Monthly: 10000}

	quote, err := Compute(date(2024, 1, 1), date(2024, 1, 7), rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Tier != PeriodDaily {
		t.Fatalf("expected DAILY on tie, got %s", quote.Tier)
	}
	if quote.Amount != 700 {
		t.Fatalf("expected amount 700, got %v", quote.Amount)
	}
}

func TestComputePartialWeekCeiling(t *testing.T) {
	// 10 days needs 2 weekly units
	rates := Rates{Daily: 100, Weekly: 400, Monthly: 10000}

	quote, err := Compute(date(2024, 1, 1), date(2024, 1, 10), rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Tier != PeriodWeekly {
		t.Fatalf("expected WEEKLY tier, got %s", quote.Tier)
	}
	if quote.Amount != 800 {
		t.Fatalf("expected 2 weekly units = 800, got %v", quote.Amount)
	}
}

func TestComputeMonthlyTier(t *testing.T) {
	rates := Rates{Daily: 100, Weekly: 600, Monthly: 2000}

	quote, err := Compute(date(2024, 1, 1), date(2024, 1, 30), rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Days != 30 {
		t.Fatalf("expected 30 days, got %d", quote.Days)
	}
	if quote.Tier != PeriodMonthly {
		t.Fatalf("expected MONTHLY tier, got %s", quote.Tier)
	}
	if quote.Amount != 2000 {
		t.Fatalf("expected amount 2000, got %v", quote.Amount)
	}
}

func TestComputeMonthlyCeiling(t *testing.T) {
	// 45 days needs 2 monthly units; weekly needs 7 units
	rates := Rates{Daily: 100, Weekly: 600, Monthly: 2000}

	quote, err := Compute(date(2024, 1, 1), date(2024, 2, 14), rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Days != 45 {
		t.Fatalf("expected 45 days, got %d", quote.Days)
	}
	if quote.Tier != PeriodMonthly {
		t.Fatalf("expected MONTHLY tier, got %s", quote.Tier)
	}
	if quote.Amount != 4000 {
		t.Fatalf("expected amount 4000, got %v", quote.Amount)
	}
}

func TestComputeZeroRateTiersSkipped(t *testing.T) {
	// Venue without a weekly price: weekly must never win with amount 0
	rates := Rates{Daily: 100, Weekly: 0, Monthly: 0}

	quote, err := Compute(date(2024, 1, 1), date(2024, 1, 14), rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Tier != PeriodDaily {
		t.Fatalf("expected DAILY when other tiers unpriced, got %s", quote.Tier)
	}
	if quote.Amount != 1400 {
		t.Fatalf("expected amount 1400, got %v", quote.Amount)
	}
}

func TestComputeInvalidRange(t *testing.T) {
	_, err := Compute(date(2024, 1, 10), date(2024, 1, 5), Rates{Daily: 100})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestPeriodValidation(t *testing.T) {
	valid := []Period{PeriodDaily, PeriodWeekly, PeriodMonthly}
	for _, p := range valid {
		if !p.IsValid() {
			t.Fatalf("expected %s to be valid", p)
		}
	}
	if Period("HOURLY").IsValid() {
		t.Fatalf("expected HOURLY to be invalid")
	}
}
