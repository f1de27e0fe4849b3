package core

import (
	"reflect"
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }

func recordsWithCalories(start Date, calories []float64) []DailyNutritionRecord {
	records := make([]DailyNutritionRecord, len(calories))
	for i, c := range calories {
		records[i] = DailyNutritionRecord{
			Date:     DateOf(start.AddDate(0, 0, i)),
			Calories: fptr(c),
		}
	}
	return records
}

func TestBuildTrendSeriesLastSeven(t *testing.T) {
	records := recordsWithCalories(NewDate(2025, 3, 1),
		[]float64{1800, 1900, 2000, 1700, 2100, 1950, 1850, 2200, 1800, 1750})

	series, ok := BuildTrendSeries(records, nil)
	if !ok {
		t.Fatal("expected a series for non-empty input")
	}

	wantValues := []float64{1700, 2100, 1950, 1850, 2200, 1800, 1750}
	if !reflect.DeepEqual(series.Values, wantValues) {
		t.Errorf("values = %v, want %v", series.Values, wantValues)
	}
	if len(series.Labels) != len(series.Values) {
		t.Fatalf("labels/values length mismatch: %d vs %d", len(series.Labels), len(series.Values))
	}

	// Labels must match the weekdays of the last 7 record dates, in order.
	for i, r := range records[3:] {
		want := r.Date.Format("Mon")
		if series.Labels[i] != want {
			t.Errorf("label[%d] = %q, want %q", i, series.Labels[i], want)
		}
	}
}

func TestBuildTrendSeriesShortInput(t *testing.T) {
	records := recordsWithCalories(NewDate(2025, 3, 1), []float64{1500, 1600, 1700})
	series, ok := BuildTrendSeries(records, nil)
	if !ok {
		t.Fatal("expected a series")
	}
	if len(series.Values) != 3 || len(series.Labels) != 3 {
		t.Fatalf("got %d values / %d labels, want 3 / 3", len(series.Values), len(series.Labels))
	}
}

func TestBuildTrendSeriesEmptyInput(t *testing.T) {
	if _, ok := BuildTrendSeries(nil, nil); ok {
		t.Fatal("empty input must yield the absent sentinel, not a series")
	}
}

func TestBuildTrendSeriesAbsentCaloriesDefaultToZero(t *testing.T) {
	records := []DailyNutritionRecord{
		{Date: NewDate(2025, 3, 1), Calories: fptr(2000)},
		{Date: NewDate(2025, 3, 2)}, // never recorded
		{Date: NewDate(2025, 3, 3), Calories: fptr(1800)},
	}
	series, ok := BuildTrendSeries(records, nil)
	if !ok {
		t.Fatal("expected a series")
	}
	want := []float64{2000, 0, 1800}
	if !reflect.DeepEqual(series.Values, want) {
		t.Errorf("values = %v, want %v", series.Values, want)
	}
}

func TestBuildTrendSeriesInjectedFormatter(t *testing.T) {
	records := recordsWithCalories(NewDate(2025, 3, 3), []float64{1000}) // a Monday
	upper := func(tm time.Time) string { return tm.Format("Monday") }
	series, ok := BuildTrendSeries(records, upper)
	if !ok {
		t.Fatal("expected a series")
	}
	if series.Labels[0] != "Monday" {
		t.Errorf("label = %q, want %q from the injected formatter", series.Labels[0], "Monday")
	}
}

func TestBuildTrendSeriesDoesNotMutateInput(t *testing.T) {
	records := recordsWithCalories(NewDate(2025, 3, 1),
		[]float64{1, 2, 3, 4, 5, 6, 7, 8})
	snapshot := make([]DailyNutritionRecord, len(records))
	copy(snapshot, records)

	BuildTrendSeries(records, nil)

	for i := range records {
		if records[i].Date != snapshot[i].Date || ValueOrZero(records[i].Calories) != ValueOrZero(snapshot[i].Calories) {
			t.Fatalf("input mutated at index %d", i)
		}
	}
}
