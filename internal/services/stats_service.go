package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"nutritrack/internal/core"
	"nutritrack/internal/storage"
)

// recordedDatesLimit bounds how far back streak computation looks.
const recordedDatesLimit = 366

// StatsStore is the storage surface the statistics service reads from.
type StatsStore interface {
	ListDailyRecords(ctx context.Context, start, end string) ([]core.DailyNutritionRecord, error)
	RecordedDates(ctx context.Context, limit int) ([]string, error)
	Goals(ctx context.Context) (core.NutritionGoals, error)
	SaveGoals(ctx context.Context, g core.NutritionGoals) error
}

// StatsService assembles the statistics screen payload for a range.
type StatsService struct {
	store        StatsStore
	defaultGoals core.NutritionGoals
}

func NewStatsService(store StatsStore, defaultGoals core.NutritionGoals) *StatsService {
	return &StatsService{store: store, defaultGoals: defaultGoals}
}

// Summary resolves the range selection and builds the complete summary:
// averages, goal achievement, streaks, progression, insights and the
// ordered daily breakdown. The three storage reads run concurrently.
func (s *StatsService) Summary(ctx context.Context, sel core.RangeSelection, now time.Time) (core.StatsSummary, error) {
	resolved := core.ResolveRange(sel, now)

	var (
		records []core.DailyNutritionRecord
		dates   []string
		goals   core.NutritionGoals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.ListDailyRecords(gctx, resolved.Start, resolved.End)
		if err != nil {
			return fmt.Errorf("list daily records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		dates, err = s.store.RecordedDates(gctx, recordedDatesLimit)
		if err != nil {
			return fmt.Errorf("list recorded dates: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		goals, err = s.store.Goals(gctx)
		if errors.Is(err, storage.ErrNotFound) {
			goals = s.defaultGoals
			return nil
		}
		if err != nil {
			return fmt.Errorf("load goals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.StatsSummary{}, err
	}

	averages := averageNutrients(records)
	streak := computeStreaks(dates, core.DateOf(now).ISO())

	return core.StatsSummary{
		Range:           resolved,
		Averages:        averages,
		GoalAchievement: goalAchievement(averages.Calories, goals.Calories),
		Streak:          streak,
		Progression:     progressionFor(len(dates)),
		Insights:        buildInsights(averages, goals, len(records)),
		DailyBreakdown:  records,
	}, nil
}

// UpdateGoals persists the user's daily targets. Once saved they replace
// the config defaults for goal achievement, insights and compatibility.
func (s *StatsService) UpdateGoals(ctx context.Context, g core.NutritionGoals) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveGoals(ctx, g); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// averageNutrients computes mean daily values over the records, reading
// each optional field through the default-to-zero policy exactly once.
func averageNutrients(records []core.DailyNutritionRecord) core.NutrientAverages {
	if len(records) == 0 {
		return core.NutrientAverages{}
	}

	var sum core.NutrientAverages
	for _, r := range records {
		sum.Calories += core.ValueOrZero(r.Calories)
		sum.Protein += core.ValueOrZero(r.Protein)
		sum.Carbs += core.ValueOrZero(r.Carbs)
		sum.Fat += core.ValueOrZero(r.Fat)
		sum.Fiber += core.ValueOrZero(r.Fiber)
		sum.Sugar += core.ValueOrZero(r.Sugar)
		sum.Sodium += core.ValueOrZero(r.Sodium)
		sum.Fluids += core.ValueOrZero(r.Fluids)
	}

	n := float64(len(records))
	return core.NutrientAverages{
		Calories: sum.Calories / n,
		Protein:  sum.Protein / n,
		Carbs:    sum.Carbs / n,
		Fat:      sum.Fat / n,
		Fiber:    sum.Fiber / n,
		Sugar:    sum.Sugar / n,
		Sodium:   sum.Sodium / n,
		Fluids:   sum.Fluids / n,
	}
}

// goalAchievement is the percentage of the calorie goal reached by the
// average daily intake. Never negative; a missing goal yields 0 rather
// than a division error.
func goalAchievement(avgCalories, goalCalories float64) float64 {
	if goalCalories <= 0 || avgCalories <= 0 {
		return 0
	}
	return avgCalories / goalCalories * 100
}

// computeStreaks derives current and best consecutive-day runs from the
// recorded dates (YYYY-MM-DD, newest first). The current streak counts
// back from today, or from yesterday when today has no record yet.
func computeStreaks(dates []string, today string) core.StreakInfo {
	if len(dates) == 0 {
		return core.StreakInfo{}
	}

	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	if len(days) == 0 {
		return core.StreakInfo{}
	}

	var info core.StreakInfo

	// Current: anchored on today or yesterday.
	anchor, err := time.Parse("2006-01-02", today)
	if err == nil {
		expect := anchor
		if !days[0].Equal(expect) {
			expect = anchor.AddDate(0, 0, -1)
		}
		for _, d := range days {
			if !d.Equal(expect) {
				break
			}
			info.Current++
			expect = expect.AddDate(0, 0, -1)
		}
	}

	// Best: longest consecutive run anywhere in the history.
	run := 1
	info.Best = 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > info.Best {
			info.Best = run
		}
	}
	if info.Current > info.Best {
		info.Best = info.Current
	}
	return info
}

// progressionFor turns the number of tracked days into level and XP.
// Every tracked day is worth 25 XP and each level spans 500 XP.
func progressionFor(trackedDays int) core.Progression {
	xp := trackedDays * 25
	return core.Progression{
		Level: xp/500 + 1,
		XP:    xp,
	}
}

// buildInsights derives short coaching strings from averages vs goals.
// Empty ranges produce a single neutral message instead of silence.
func buildInsights(avg core.NutrientAverages, goals core.NutritionGoals, recordCount int) []string {
	if recordCount == 0 {
		return []string{"No meals logged in this period yet."}
	}

	var insights []string
	if goals.Protein > 0 && avg.Protein < goals.Protein*0.8 {
		insights = append(insights, fmt.Sprintf(
			"Protein is averaging %.0fg, below your %.0fg goal.", avg.Protein, goals.Protein))
	}
	if goals.Calories > 0 && avg.Calories > goals.Calories*1.1 {
		insights = append(insights, fmt.Sprintf(
			"Calories are averaging %.0f kcal, above your %.0f kcal goal.", avg.Calories, goals.Calories))
	}
	if goals.Fluids > 0 && avg.Fluids > 0 && avg.Fluids < goals.Fluids*0.8 {
		insights = append(insights, fmt.Sprintf(
			"Fluid intake is averaging %.0fml, try to reach %.0fml.", avg.Fluids, goals.Fluids))
	}
	if len(insights) == 0 {
		insights = append(insights, "You are on track with your goals. Keep it up!")
	}
	return insights
}
