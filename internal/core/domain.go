package core

import (
	"errors"
	"strings"
	"time"
)

const (
	MealBreakfast MealTiming = "breakfast"
	MealLunch     MealTiming = "lunch"
	MealDinner    MealTiming = "dinner"
	MealSnack     MealTiming = "snack"
)

type (
	MealTiming string

	Date struct {
		time.Time
	}

	// DailyNutritionRecord is one day's aggregated intake, produced by the
	// rollup layer. Nutrient fields are optional: a nil pointer means the
	// value was never recorded for that day. The default-to-zero policy is
	// applied exactly once, at the point where a consumer reads the field.
	DailyNutritionRecord struct {
		Date     Date
		Calories *float64
		Protein  *float64
		Carbs    *float64
		Fat      *float64
		Fiber    *float64
		Sugar    *float64
		Sodium   *float64
		Fluids   *float64
	}

	// MenuAggregate is a multi-day meal plan with summed nutrition totals.
	// Fetched from storage and read-only to this package.
	MenuAggregate struct {
		ID            int64
		Title         string
		Description   string
		Category      string
		TotalCalories float64
		TotalProtein  float64
		TotalCarbs    float64
		TotalFat      float64
		DaysCount     int
		MealCount     int
		BudgetCents   int64
		CreatedAt     time.Time
		StartedAt     *time.Time
	}

	// Product is a scanned or looked-up food product with per-100g values.
	Product struct {
		Barcode         string
		Name            string
		Brand           string
		CaloriesPer100g float64
		ProteinPer100g  float64
		CarbsPer100g    float64
		FatPer100g      float64
	}

	// FoodLogEntry is a single logged consumption of a product.
	FoodLogEntry struct {
		ID        int64
		Barcode   string
		Name      string
		QuantityG float64
		Meal      MealTiming
		Calories  float64
		Protein   float64
		Carbs     float64
		Fat       float64
		LoggedAt  time.Time
	}

	ScanHistoryEntry struct {
		ProductName string
		ScannedAt   time.Time
	}

	// NutritionGoals holds the user's daily targets.
	NutritionGoals struct {
		Calories float64
		Protein  float64
		Carbs    float64
		Fat      float64
		Fluids   float64
	}
)

var (
	ErrEmptyName        = errors.New("empty product name")
	ErrEmptyBarcode     = errors.New("empty barcode")
	ErrNegativeNutrient = errors.New("negative nutrient value")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidMeal      = errors.New("invalid meal timing")
	ErrEmptyTitle       = errors.New("empty menu title")
	ErrInvalidDays      = errors.New("invalid days count")
	ErrInvalidGoals     = errors.New("invalid nutrition goals")
)

// NewDate creates a Date from year, month, day (UTC midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// IsEmpty returns true if the date is zero.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (mt MealTiming) Validate() error {
	switch mt {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return nil
	}
	return ErrInvalidMeal
}

func (e FoodLogEntry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if e.QuantityG <= 0 {
		return ErrInvalidQuantity
	}
	return e.Meal.Validate()
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Barcode) == "" {
		return ErrEmptyBarcode
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.CaloriesPer100g < 0 || p.ProteinPer100g < 0 || p.CarbsPer100g < 0 || p.FatPer100g < 0 {
		return ErrNegativeNutrient
	}
	return nil
}

// Validate rejects goals that cannot be scored against: targets must be
// non-negative and the calorie goal positive.
func (g NutritionGoals) Validate() error {
	if g.Calories <= 0 {
		return ErrInvalidGoals
	}
	if g.Protein < 0 || g.Carbs < 0 || g.Fat < 0 || g.Fluids < 0 {
		return ErrInvalidGoals
	}
	return nil
}

func (m MenuAggregate) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return ErrEmptyTitle
	}
	if m.DaysCount < 1 {
		return ErrInvalidDays
	}
	return nil
}

// ValueOrZero applies the documented default-to-zero policy for optional
// nutrient readings. It belongs at the boundary where a record is read;
// values that passed through it must not have it re-applied downstream.
func ValueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
