package core

import (
	"testing"
	"time"
)

var filterNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func sampleMenus() []MenuAggregate {
	return []MenuAggregate{
		{
			ID: 1, Title: "Mediterranean Week", Description: "Fish and olive oil",
			Category: "balanced", TotalCalories: 14000, TotalProtein: 600,
			DaysCount: 7, CreatedAt: filterNow.AddDate(0, 0, -2),
		},
		{
			ID: 2, Title: "Bulk Plan", Description: "High protein meals",
			Category: "muscle", TotalCalories: 800, TotalProtein: 50,
			DaysCount: 1, CreatedAt: filterNow.AddDate(0, 0, -30),
		},
		{
			ID: 3, Title: "Light Days", Description: "Low calorie dinners",
			Category: "cut", TotalCalories: 5000, TotalProtein: 200,
			DaysCount: 3, CreatedAt: filterNow.AddDate(0, 0, -10),
		},
	}
}

func TestFilterMenusIdentityLaw(t *testing.T) {
	menus := sampleMenus()
	got := FilterMenus(menus, FilterCriteria{SearchText: "", Category: FilterAll{}}, filterNow)
	if len(got) != len(menus) {
		t.Fatalf("got %d menus, want all %d", len(got), len(menus))
	}
	for i := range got {
		if got[i].ID != menus[i].ID {
			t.Fatalf("order changed at %d: got ID %d, want %d", i, got[i].ID, menus[i].ID)
		}
	}
}

func TestFilterMenusNilCategoryBehavesLikeAll(t *testing.T) {
	got := FilterMenus(sampleMenus(), FilterCriteria{}, filterNow)
	if len(got) != 3 {
		t.Fatalf("got %d menus, want 3", len(got))
	}
}

func TestFilterMenusNoMatchReturnsEmpty(t *testing.T) {
	got := FilterMenus(sampleMenus(), FilterCriteria{SearchText: "zzz-no-match"}, filterNow)
	if len(got) != 0 {
		t.Fatalf("got %d menus, want 0", len(got))
	}
}

func TestFilterMenusTextStage(t *testing.T) {
	cases := []struct {
		name    string
		search  string
		wantIDs []int64
	}{
		{"title match case-insensitive", "MEDITERRANEAN", []int64{1}},
		{"description match", "olive", []int64{1}},
		{"category match", "muscle", []int64{2}},
		{"surrounding whitespace trimmed", "  light  ", []int64{3}},
		{"substring across menus", "plan", []int64{2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterMenus(sampleMenus(), FilterCriteria{SearchText: tc.search}, filterNow)
			assertMenuIDs(t, got, tc.wantIDs)
		})
	}
}

func TestFilterRecentWindow(t *testing.T) {
	menus := []MenuAggregate{
		{ID: 1, Title: "a", CreatedAt: filterNow.Add(-6 * 24 * time.Hour)},
		{ID: 2, Title: "b", CreatedAt: filterNow.Add(-7 * 24 * time.Hour)},
		{ID: 3, Title: "c", CreatedAt: filterNow.Add(-8 * 24 * time.Hour)},
		{ID: 4, Title: "d", CreatedAt: filterNow.Add(24 * time.Hour)}, // future
	}
	got := FilterMenus(menus, FilterCriteria{Category: FilterRecent{}}, filterNow)
	assertMenuIDs(t, got, []int64{1, 2})
}

func TestFilterHighProteinBoundary(t *testing.T) {
	cases := []struct {
		name     string
		protein  float64
		calories float64
		want     bool
	}{
		// (50*4)/800 = 0.25 exactly: boundary is inclusive.
		{"ratio exactly 0.25 passes", 50, 800, true},
		{"ratio 0.24 excluded", 48, 800, false},
		{"ratio above threshold", 100, 800, true},
		// Zero calories guarded by substituting 1, not a fault.
		{"zero calories with protein", 1, 0, true},
		{"zero calories zero protein", 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := MenuAggregate{ID: 9, Title: "x", TotalProtein: tc.protein, TotalCalories: tc.calories}
			got := FilterMenus([]MenuAggregate{m}, FilterCriteria{Category: FilterHighProtein{}}, filterNow)
			if (len(got) == 1) != tc.want {
				t.Errorf("pass = %v, want %v", len(got) == 1, tc.want)
			}
		})
	}
}

func TestFilterLowCalorieBoundary(t *testing.T) {
	cases := []struct {
		name     string
		calories float64
		days     int
		want     bool
	}{
		{"exactly 1800 per day passes", 1800 * 3, 3, true},
		{"just above per-day cap excluded", 1801 * 3, 3, false},
		// Zero days guarded by substituting 1.
		{"zero days treated as one day", 1500, 0, true},
		{"zero days over cap", 2000, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := MenuAggregate{ID: 9, Title: "x", TotalCalories: tc.calories, DaysCount: tc.days}
			got := FilterMenus([]MenuAggregate{m}, FilterCriteria{Category: FilterLowCalorie{}}, filterNow)
			if (len(got) == 1) != tc.want {
				t.Errorf("pass = %v, want %v", len(got) == 1, tc.want)
			}
		})
	}
}

func TestFilterMenusStagesAreConjunctive(t *testing.T) {
	// Menu 2 matches "protein" in its description but fails LowCalorie
	// (800 kcal / 1 day passes); menu 3 matches "low calorie" and passes.
	criteria := FilterCriteria{SearchText: "protein", Category: FilterLowCalorie{}}
	got := FilterMenus(sampleMenus(), criteria, filterNow)
	assertMenuIDs(t, got, []int64{2})

	criteria = FilterCriteria{SearchText: "protein", Category: FilterRecent{}}
	got = FilterMenus(sampleMenus(), criteria, filterNow)
	assertMenuIDs(t, got, nil)
}

func TestFilterMenusIsPure(t *testing.T) {
	menus := sampleMenus()
	criteria := FilterCriteria{SearchText: "week", Category: FilterRecent{}}
	first := FilterMenus(menus, criteria, filterNow)
	second := FilterMenus(menus, criteria, filterNow)
	if len(first) != len(second) {
		t.Fatalf("identical inputs produced different lengths: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("identical inputs produced different order at %d", i)
		}
	}
}

func assertMenuIDs(t *testing.T, got []MenuAggregate, want []int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d menus, want %d", len(got), len(want))
	}
	for i, m := range got {
		if m.ID != want[i] {
			t.Errorf("menu[%d].ID = %d, want %d", i, m.ID, want[i])
		}
	}
}
