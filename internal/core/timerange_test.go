package core

import (
	"testing"
	"time"
)

func TestResolveRangeToday(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)
	got := ResolveRange(RangeSelection{Mode: RangeToday}, now)
	if got.Start != "2025-03-14" || got.End != "2025-03-14" {
		t.Fatalf("today: got %+v, want start == end == 2025-03-14", got)
	}
}

func TestResolveRangeWeekSpan(t *testing.T) {
	// Week is an 8-day inclusive span: today plus the 7 preceding days.
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	got := ResolveRange(RangeSelection{Mode: RangeWeek}, now)
	if got.Start != "2025-03-07" {
		t.Errorf("week start = %s, want 2025-03-07", got.Start)
	}
	if got.End != "2025-03-14" {
		t.Errorf("week end = %s, want 2025-03-14", got.End)
	}
	assertInclusiveDays(t, got, 8)
}

func TestResolveRangeMonthSpan(t *testing.T) {
	// Month is a 31-day inclusive span, same off-by-one pattern as Week.
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	got := ResolveRange(RangeSelection{Mode: RangeMonth}, now)
	if got.Start != "2025-02-12" {
		t.Errorf("month start = %s, want 2025-02-12", got.Start)
	}
	if got.End != "2025-03-14" {
		t.Errorf("month end = %s, want 2025-03-14", got.End)
	}
	assertInclusiveDays(t, got, 31)
}

func TestResolveRangeWeekCrossesMonthAndYear(t *testing.T) {
	now := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	got := ResolveRange(RangeSelection{Mode: RangeWeek}, now)
	if got.Start != "2024-12-27" || got.End != "2025-01-03" {
		t.Fatalf("got %+v, want 2024-12-27..2025-01-03", got)
	}
}

func TestResolveRangeCustomPassThrough(t *testing.T) {
	now := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name       string
		start, end string
	}{
		{"well formed", "2025-01-01", "2025-01-31"},
		{"inverted window passes through untouched", "2025-02-10", "2025-01-10"},
		{"malformed strings pass through untouched", "not-a-date", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveRange(RangeSelection{
				Mode:        RangeCustom,
				CustomStart: tc.start,
				CustomEnd:   tc.end,
			}, now)
			if got.Start != tc.start || got.End != tc.end {
				t.Errorf("got %+v, want verbatim %q..%q", got, tc.start, tc.end)
			}
		})
	}
}

func TestResolveRangeUnknownModeFallsBackToWeek(t *testing.T) {
	now := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	got := ResolveRange(RangeSelection{Mode: RangeMode("fortnight")}, now)
	want := ResolveRange(RangeSelection{Mode: RangeWeek}, now)
	if got != want {
		t.Fatalf("unknown mode: got %+v, want week fallback %+v", got, want)
	}
}

func assertInclusiveDays(t *testing.T, r ResolvedRange, want int) {
	t.Helper()
	start, err := time.Parse(dateLayout, r.Start)
	if err != nil {
		t.Fatalf("parse start %q: %v", r.Start, err)
	}
	end, err := time.Parse(dateLayout, r.End)
	if err != nil {
		t.Fatalf("parse end %q: %v", r.End, err)
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days != want {
		t.Errorf("inclusive span = %d days, want %d", days, want)
	}
}
