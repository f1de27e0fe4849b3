package core

// NutrientAverages holds average daily values over a resolved range.
// These are already defaulted; no optional handling remains at this level.
type NutrientAverages struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
	Sugar    float64
	Sodium   float64
	Fluids   float64
}

// StreakInfo counts consecutive days with at least one logged intake.
type StreakInfo struct {
	Current int
	Best    int
}

// Progression is the gamified level/XP pair shown on the stats screen.
type Progression struct {
	Level int
	XP    int
}

// StatsSummary is the complete statistics payload for a resolved range.
type StatsSummary struct {
	Range           ResolvedRange
	Averages        NutrientAverages
	GoalAchievement float64 // percent of the calorie goal reached, 0-capped
	Streak          StreakInfo
	Progression     Progression
	Insights        []string
	DailyBreakdown  []DailyNutritionRecord
}
