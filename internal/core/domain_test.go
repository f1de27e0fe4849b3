package core

import (
	"testing"
	"time"
)

func TestMealTimingValidate(t *testing.T) {
	for _, mt := range []MealTiming{MealBreakfast, MealLunch, MealDinner, MealSnack} {
		if err := mt.Validate(); err != nil {
			t.Errorf("%s: expected ok, got %v", mt, err)
		}
	}
	if err := MealTiming("brunch").Validate(); err == nil {
		t.Error("expected error for unknown meal timing")
	}
}

func TestFoodLogEntryValidate(t *testing.T) {
	good := FoodLogEntry{Name: "oats", QuantityG: 80, Meal: MealBreakfast}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []FoodLogEntry{
		{Name: "  ", QuantityG: 80, Meal: MealBreakfast},
		{Name: "oats", QuantityG: 0, Meal: MealBreakfast},
		{Name: "oats", QuantityG: -5, Meal: MealBreakfast},
		{Name: "oats", QuantityG: 80, Meal: MealTiming("elevenses")},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestProductValidate(t *testing.T) {
	good := Product{Barcode: "4012345678901", Name: "Oats", CaloriesPer100g: 372}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name    string
		product Product
		want    error
	}{
		{"blank barcode", Product{Barcode: " ", Name: "Oats"}, ErrEmptyBarcode},
		{"blank name", Product{Barcode: "1", Name: "  "}, ErrEmptyName},
		{"negative calories", Product{Barcode: "1", Name: "Oats", CaloriesPer100g: -1}, ErrNegativeNutrient},
		{"negative fat", Product{Barcode: "1", Name: "Oats", FatPer100g: -0.1}, ErrNegativeNutrient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.product.Validate(); err != tt.want {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNutritionGoalsValidate(t *testing.T) {
	good := NutritionGoals{Calories: 2000, Protein: 120, Carbs: 250, Fat: 70}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []NutritionGoals{
		{},
		{Calories: -100},
		{Calories: 2000, Protein: -1},
		{Calories: 2000, Fluids: -500},
	}
	for i, g := range bads {
		if err := g.Validate(); err != ErrInvalidGoals {
			t.Errorf("case %d: err = %v, want ErrInvalidGoals", i, err)
		}
	}
}

func TestMenuAggregateValidate(t *testing.T) {
	good := MenuAggregate{Title: "Weekly Plan", DaysCount: 7}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (MenuAggregate{Title: "", DaysCount: 7}).Validate(); err == nil {
		t.Error("expected error for empty title")
	}
	if err := (MenuAggregate{Title: "x", DaysCount: 0}).Validate(); err == nil {
		t.Error("expected error for zero days")
	}
}

func TestDateHelpers(t *testing.T) {
	d := NewDate(2025, 3, 14)
	if d.ISO() != "2025-03-14" {
		t.Errorf("ISO() = %q, want 2025-03-14", d.ISO())
	}
	stamp := time.Date(2025, 3, 14, 23, 59, 1, 0, time.UTC)
	if got := DateOf(stamp); got != d {
		t.Errorf("DateOf truncation: got %v, want %v", got, d)
	}
	if (Date{}).IsEmpty() != true {
		t.Error("zero date should be empty")
	}
}
