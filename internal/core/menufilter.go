// Menu filtering implements the Strategy Pattern for the category stage:
// each filter kind carries its own predicate, so adding a kind is a
// compile-time-checked addition rather than a string-matching fallthrough.

package core

import (
	"strings"
	"time"
)

// Category-stage thresholds.
const (
	// recentWindow bounds the Recent filter to the 7 days preceding now.
	recentWindow = 7 * 24 * time.Hour
	// highProteinRatio is the minimum protein-calorie share, inclusive.
	highProteinRatio = 0.25
	// lowCaloriePerDay is the maximum calories per plan day, inclusive.
	lowCaloriePerDay = 1800
)

// CategoryFilter is the sealed strategy interface for the category stage.
// The match method is unexported so the set of kinds is closed to this
// package.
type CategoryFilter interface {
	match(m MenuAggregate, now time.Time) bool
}

// FilterAll passes every menu.
type FilterAll struct{}

func (FilterAll) match(MenuAggregate, time.Time) bool { return true }

// FilterRecent passes menus created within the 7 days preceding now.
type FilterRecent struct{}

func (FilterRecent) match(m MenuAggregate, now time.Time) bool {
	age := now.Sub(m.CreatedAt)
	return age >= 0 && age <= recentWindow
}

// FilterHighProtein passes menus whose protein-derived calories are at
// least 25% of total calories. The ratio is derived on the fly, never
// stored. A zero calorie total counts as 1 so the ratio is defined.
type FilterHighProtein struct{}

func (FilterHighProtein) match(m MenuAggregate, _ time.Time) bool {
	calories := m.TotalCalories
	if calories == 0 {
		calories = 1
	}
	ratio := m.TotalProtein * KcalPerGramProtein / calories
	return ratio >= highProteinRatio
}

// FilterLowCalorie passes menus averaging at most 1800 kcal per plan day.
// A zero days count counts as 1 so the division is defined.
type FilterLowCalorie struct{}

func (FilterLowCalorie) match(m MenuAggregate, _ time.Time) bool {
	days := m.DaysCount
	if days == 0 {
		days = 1
	}
	perDay := m.TotalCalories / float64(days)
	return perDay <= lowCaloriePerDay
}

// FilterCriteria is the caller-owned filter state, recomputed per
// keystroke or selection. A nil Category behaves like FilterAll.
type FilterCriteria struct {
	SearchText string
	Category   CategoryFilter
}

// FilterMenus applies a two-stage conjunctive predicate over the menu
// collection, short-circuiting on the first failing stage:
//
//  1. Text stage: a trimmed, non-empty search text must match
//     case-insensitively as a substring of title, description or category.
//  2. Category stage: the selected CategoryFilter's predicate.
//
// The result is stable: surviving menus keep their input order. The
// function is pure, so recomputing it on every keystroke is safe.
func FilterMenus(menus []MenuAggregate, c FilterCriteria, now time.Time) []MenuAggregate {
	search := strings.ToLower(strings.TrimSpace(c.SearchText))
	category := c.Category
	if category == nil {
		category = FilterAll{}
	}

	out := make([]MenuAggregate, 0, len(menus))
	for _, m := range menus {
		if search != "" && !matchesText(m, search) {
			continue
		}
		if !category.match(m, now) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesText(m MenuAggregate, search string) bool {
	return strings.Contains(strings.ToLower(m.Title), search) ||
		strings.Contains(strings.ToLower(m.Description), search) ||
		strings.Contains(strings.ToLower(m.Category), search)
}
