package core

import "time"

// trendWindow is how many trailing days the calorie trend chart shows.
const trendWindow = 7

// WeekdayFormatter renders a weekday abbreviation for a chart label.
// It is injected so the core stays free of any particular locale library;
// the presentation layer decides how "Mon" looks in the user's language.
type WeekdayFormatter func(t time.Time) string

// EnglishWeekday is the fallback formatter ("Mon", "Tue", ...).
func EnglishWeekday(t time.Time) string {
	return t.Format("Mon")
}

// TrendSeries pairs chart labels with calorie values positionally.
// Labels and Values always have equal length.
type TrendSeries struct {
	Labels []string
	Values []float64
}

// BuildTrendSeries shapes the trailing records into a labeled calorie
// series for the trend chart. It takes the last 7 records of the input
// (fewer if the input is shorter), preserving their order, and substitutes
// 0 for any absent calorie reading. The input slice is not mutated.
//
// The second return value is false when there is nothing to chart; an
// empty input is not an error.
func BuildTrendSeries(records []DailyNutritionRecord, format WeekdayFormatter) (TrendSeries, bool) {
	if len(records) == 0 {
		return TrendSeries{}, false
	}
	if format == nil {
		format = EnglishWeekday
	}

	start := 0
	if len(records) > trendWindow {
		start = len(records) - trendWindow
	}
	window := records[start:]

	series := TrendSeries{
		Labels: make([]string, 0, len(window)),
		Values: make([]float64, 0, len(window)),
	}
	for _, r := range window {
		series.Labels = append(series.Labels, format(r.Date.Time))
		series.Values = append(series.Values, ValueOrZero(r.Calories))
	}
	return series, true
}
