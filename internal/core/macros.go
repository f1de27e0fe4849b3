package core

import "math"

// Energy densities used to convert macro grams to calories.
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

// Fixed display color tags, one per slice. Derived 1:1 from the slice name
// so rendering never configures them independently.
const (
	ColorProtein = "teal"
	ColorCarbs   = "amber"
	ColorFat     = "purple"
)

// MacroSlice is one macronutrient's share of total macro-derived calories.
type MacroSlice struct {
	Name       string
	Percentage float64
	ColorTag   string
}

// ComputeMacroDistribution converts average daily macro grams into a
// percentage breakdown, always in the order protein, carbs, fat.
//
// Each percentage is rounded independently, so the three values sum to
// 100 +/- 2 rather than exactly 100. The drift is accepted and must not be
// corrected by adjusting a slice; tests pin this down.
//
// The second return value is false when the macro total is zero: no
// distribution is meaningful and there is nothing to divide by.
func ComputeMacroDistribution(protein, carbs, fat float64) ([]MacroSlice, bool) {
	proteinKcal := protein * KcalPerGramProtein
	carbsKcal := carbs * KcalPerGramCarbs
	fatKcal := fat * KcalPerGramFat

	total := proteinKcal + carbsKcal + fatKcal
	if total == 0 {
		return nil, false
	}

	return []MacroSlice{
		{Name: "protein", Percentage: math.Round(proteinKcal / total * 100), ColorTag: ColorProtein},
		{Name: "carbs", Percentage: math.Round(carbsKcal / total * 100), ColorTag: ColorCarbs},
		{Name: "fat", Percentage: math.Round(fatKcal / total * 100), ColorTag: ColorFat},
	}, true
}
