package http

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"nutritrack/internal/core"
	"nutritrack/internal/log"
)

type trendView struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type macroSliceView struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

type dailyRecordView struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Sodium   float64 `json:"sodium"`
	Fluids   float64 `json:"fluids"`
}

type statsResponse struct {
	Range struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"range"`
	Averages struct {
		Calories float64 `json:"calories"`
		Protein  float64 `json:"protein"`
		Carbs    float64 `json:"carbs"`
		Fat      float64 `json:"fat"`
		Fiber    float64 `json:"fiber"`
		Sugar    float64 `json:"sugar"`
		Sodium   float64 `json:"sodium"`
		Fluids   float64 `json:"fluids"`
	} `json:"averages"`
	GoalAchievement float64           `json:"goal_achievement"`
	Streak          struct {
		Current int `json:"current"`
		Best    int `json:"best"`
	} `json:"streak"`
	Progression struct {
		Level int `json:"level"`
		XP    int `json:"xp"`
	} `json:"progression"`
	Insights []string          `json:"insights"`
	Trend    *trendView        `json:"trend"`
	Macros   []macroSliceView  `json:"macros"`
	Daily    []dailyRecordView `json:"daily_breakdown"`
}

// handleStats serves the statistics screen payload: summary, the trailing
// calorie trend and the macro distribution, for the selected range.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sel := parseRangeSelection(r.URL.Query())
	now := time.Now()

	key := statsCacheKey(sel, now)
	if resp, ok := s.statsCache.Get(key); ok {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
		slog.DebugContext(r.Context(), "Stats cache hit", "key", key)
		writeJSON(w, http.StatusOK, resp)
		return
	}
	atomic.AddInt64(&s.metrics.cacheMisses, 1)

	summary, err := s.stats.Summary(r.Context(), sel, now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Stats summary failed",
			log.FieldRangeMode, string(sel.Mode), log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "statistics unavailable")
		return
	}

	resp := buildStatsResponse(summary)
	s.statsCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func buildStatsResponse(sum core.StatsSummary) statsResponse {
	var resp statsResponse
	resp.Range.Start = sum.Range.Start
	resp.Range.End = sum.Range.End
	resp.Averages.Calories = sum.Averages.Calories
	resp.Averages.Protein = sum.Averages.Protein
	resp.Averages.Carbs = sum.Averages.Carbs
	resp.Averages.Fat = sum.Averages.Fat
	resp.Averages.Fiber = sum.Averages.Fiber
	resp.Averages.Sugar = sum.Averages.Sugar
	resp.Averages.Sodium = sum.Averages.Sodium
	resp.Averages.Fluids = sum.Averages.Fluids
	resp.GoalAchievement = sum.GoalAchievement
	resp.Streak.Current = sum.Streak.Current
	resp.Streak.Best = sum.Streak.Best
	resp.Progression.Level = sum.Progression.Level
	resp.Progression.XP = sum.Progression.XP
	resp.Insights = sum.Insights

	// Absent chart data stays null in the payload; the client renders an
	// empty state instead of a zeroed chart.
	if series, ok := core.BuildTrendSeries(sum.DailyBreakdown, nil); ok {
		resp.Trend = &trendView{Labels: series.Labels, Values: series.Values}
	}
	if slices, ok := core.ComputeMacroDistribution(
		sum.Averages.Protein, sum.Averages.Carbs, sum.Averages.Fat); ok {
		for _, sl := range slices {
			resp.Macros = append(resp.Macros, macroSliceView{
				Name: sl.Name, Percentage: sl.Percentage, Color: sl.ColorTag,
			})
		}
	}

	resp.Daily = make([]dailyRecordView, 0, len(sum.DailyBreakdown))
	for _, rec := range sum.DailyBreakdown {
		resp.Daily = append(resp.Daily, dailyRecordView{
			Date:     rec.Date.ISO(),
			Calories: core.ValueOrZero(rec.Calories),
			Protein:  core.ValueOrZero(rec.Protein),
			Carbs:    core.ValueOrZero(rec.Carbs),
			Fat:      core.ValueOrZero(rec.Fat),
			Fiber:    core.ValueOrZero(rec.Fiber),
			Sugar:    core.ValueOrZero(rec.Sugar),
			Sodium:   core.ValueOrZero(rec.Sodium),
			Fluids:   core.ValueOrZero(rec.Fluids),
		})
	}
	return resp
}

type goalsView struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fluids   float64 `json:"fluids"`
}

// handleUpdateGoals replaces the user's daily targets. Saved goals take
// precedence over the config defaults everywhere goals are read.
func (s *Server) handleUpdateGoals(w http.ResponseWriter, r *http.Request) {
	var req goalsView
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goals := core.NutritionGoals{
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		Fluids:   req.Fluids,
	}
	err := s.stats.UpdateGoals(r.Context(), goals)
	if errors.Is(err, core.ErrInvalidGoals) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Goals update failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not save goals")
		return
	}

	// Goal achievement and insights change with the targets.
	s.invalidateReadCaches()
	writeJSON(w, http.StatusOK, req)
}

// statsCacheKey keys on the resolved window, so symbolic modes share an
// entry within the same day and custom windows key on their bounds.
func statsCacheKey(sel core.RangeSelection, now time.Time) string {
	resolved := core.ResolveRange(sel, now)
	return resolved.Start + ".." + resolved.End
}
