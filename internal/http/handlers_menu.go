package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"nutritrack/internal/core"
	"nutritrack/internal/log"
	"nutritrack/internal/storage"
)

type menuView struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFat      float64 `json:"total_fat"`
	DaysCount     int     `json:"days_count"`
	MealCount     int     `json:"meal_count"`
	BudgetCents   int64   `json:"budget_cents"`
	CreatedAt     string  `json:"created_at"`
	StartedAt     string  `json:"started_at,omitempty"`
}

func menuToView(m core.MenuAggregate) menuView {
	v := menuView{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Category:      m.Category,
		TotalCalories: m.TotalCalories,
		TotalProtein:  m.TotalProtein,
		TotalCarbs:    m.TotalCarbs,
		TotalFat:      m.TotalFat,
		DaysCount:     m.DaysCount,
		MealCount:     m.MealCount,
		BudgetCents:   m.BudgetCents,
		CreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.StartedAt != nil {
		v.StartedAt = m.StartedAt.UTC().Format(time.RFC3339)
	}
	return v
}

// handleListMenus serves the filtered menu collection. The q and filter
// query parameters map onto the two filter stages.
func (s *Server) handleListMenus(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	criteria := core.FilterCriteria{
		SearchText: query.Get("q"),
		Category:   parseCategoryFilter(query.Get("filter")),
	}
	now := time.Now()

	key := menusCacheKey(criteria)
	if views, ok := s.menusCache.Get(key); ok {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
		slog.DebugContext(r.Context(), "Menus cache hit", "key", key)
		writeJSON(w, http.StatusOK, map[string]any{"menus": views})
		return
	}
	atomic.AddInt64(&s.metrics.cacheMisses, 1)

	menus, err := s.menus.List(r.Context(), criteria, now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Menu list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "menus unavailable")
		return
	}

	views := make([]menuView, 0, len(menus))
	for _, m := range menus {
		views = append(views, menuToView(m))
	}
	s.menusCache.Set(key, views)
	writeJSON(w, http.StatusOK, map[string]any{"menus": views})
}

// handleGenerateMenu creates the default 7-day balanced menu.
func (s *Server) handleGenerateMenu(w http.ResponseWriter, r *http.Request) {
	m, err := s.menus.GenerateDefault(r.Context(), time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Menu generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "menu generation failed")
		return
	}
	s.invalidateReadCaches()
	writeJSON(w, http.StatusCreated, menuToView(m))
}

type customMenuRequest struct {
	Description string `json:"description"`
	Days        int    `json:"days"`
	BudgetCents int64  `json:"budget_cents"`
}

// handleCustomMenu creates a menu from a free-text description.
func (s *Server) handleCustomMenu(w http.ResponseWriter, r *http.Request) {
	var req customMenuRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := s.menus.GenerateCustom(r.Context(), req.Description, req.Days, req.BudgetCents, time.Now())
	if errors.Is(err, core.ErrInvalidDays) || errors.Is(err, core.ErrEmptyTitle) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Custom menu generation failed",
			"days", req.Days, "error", err)
		writeError(w, http.StatusInternalServerError, "menu generation failed")
		return
	}
	s.invalidateReadCaches()
	writeJSON(w, http.StatusCreated, menuToView(m))
}

// handleStartMenu marks a menu as started now.
func (s *Server) handleStartMenu(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu id")
		return
	}

	m, err := s.menus.Start(r.Context(), id, time.Now())
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "menu not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Menu start failed", log.FieldMenuID, id, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "menu start failed")
		return
	}
	s.invalidateReadCaches()
	writeJSON(w, http.StatusOK, menuToView(m))
}

func menusCacheKey(c core.FilterCriteria) string {
	return c.SearchText + "|" + categoryFilterName(c.Category)
}
