package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"nutritrack/internal/core"
)

// MenuStore is the storage surface the menu service works against.
type MenuStore interface {
	ListMenus(ctx context.Context) ([]core.MenuAggregate, error)
	InsertMenu(ctx context.Context, m core.MenuAggregate) (int64, error)
	GetMenu(ctx context.Context, id int64) (core.MenuAggregate, error)
	MarkMenuStarted(ctx context.Context, id int64, startedAt time.Time) error
}

// menuTemplate is a per-day nutrition profile used for deterministic
// menu composition. Totals scale linearly with the day count.
type menuTemplate struct {
	category    string
	title       string
	description string
	calories    float64 // per day
	protein     float64
	carbs       float64
	fat         float64
	meals       int // per day
	budgetCents int64
}

// Keyword-selected templates. Matching is first-hit over the free-text
// description, falling back to the balanced profile.
var menuTemplates = []struct {
	keywords []string
	tpl      menuTemplate
}{
	{
		keywords: []string{"protein", "muscle", "strength"},
		tpl: menuTemplate{
			category:    "high-protein",
			title:       "High Protein Plan",
			description: "Protein-forward meals built around lean meat, fish, eggs and legumes.",
			calories:    2200, protein: 160, carbs: 180, fat: 75,
			meals: 4, budgetCents: 1400,
		},
	},
	{
		keywords: []string{"light", "low calorie", "cut", "deficit", "weight loss"},
		tpl: menuTemplate{
			category:    "light",
			title:       "Light Plan",
			description: "Lighter meals with generous vegetables, aimed below 1800 kcal per day.",
			calories:    1600, protein: 110, carbs: 160, fat: 55,
			meals: 3, budgetCents: 1100,
		},
	},
	{
		keywords: []string{"vegetarian", "veggie", "plant"},
		tpl: menuTemplate{
			category:    "vegetarian",
			title:       "Vegetarian Plan",
			description: "Meat-free days around grains, legumes, dairy and eggs.",
			calories:    2000, protein: 95, carbs: 260, fat: 65,
			meals: 3, budgetCents: 1200,
		},
	},
}

// balancedTemplate is the default profile, also used by GenerateDefault.
var balancedTemplate = menuTemplate{
	category:    "balanced",
	title:       "Balanced Week",
	description: "A balanced rotation of everyday meals covering all macros.",
	calories:    2000, protein: 120, carbs: 250, fat: 70,
	meals: 3, budgetCents: 1250,
}

// MenuService owns the menu action surface: listing with filters,
// deterministic generation and starting a plan.
type MenuService struct {
	store MenuStore
}

func NewMenuService(store MenuStore) *MenuService {
	return &MenuService{store: store}
}

// List fetches all menus and applies the filter criteria in memory.
func (s *MenuService) List(ctx context.Context, c core.FilterCriteria, now time.Time) ([]core.MenuAggregate, error) {
	menus, err := s.store.ListMenus(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return core.FilterMenus(menus, c, now), nil
}

// GenerateDefault creates a 7-day balanced menu and returns it.
func (s *MenuService) GenerateDefault(ctx context.Context, now time.Time) (core.MenuAggregate, error) {
	return s.compose(ctx, balancedTemplate, balancedTemplate.title, 7, 0, now)
}

// GenerateCustom creates a menu from a free-text description, a day count
// and an optional budget (0 means template default). Template selection is
// keyword-based; generation is deterministic composition, not AI.
func (s *MenuService) GenerateCustom(ctx context.Context, description string, days int, budgetCents int64, now time.Time) (core.MenuAggregate, error) {
	if days < 1 {
		return core.MenuAggregate{}, core.ErrInvalidDays
	}

	tpl := pickTemplate(description)
	title := tpl.title
	if t := strings.TrimSpace(description); t != "" {
		title = titleFrom(t)
	}
	return s.compose(ctx, tpl, title, days, budgetCents, now)
}

// Start marks the menu as started today. Storage reports a missing menu
// through its not-found error, which callers translate at the boundary.
func (s *MenuService) Start(ctx context.Context, id int64, now time.Time) (core.MenuAggregate, error) {
	if err := s.store.MarkMenuStarted(ctx, id, now); err != nil {
		return core.MenuAggregate{}, fmt.Errorf("start menu %d: %w", id, err)
	}
	m, err := s.store.GetMenu(ctx, id)
	if err != nil {
		return core.MenuAggregate{}, fmt.Errorf("reload menu %d: %w", id, err)
	}
	return m, nil
}

func (s *MenuService) compose(ctx context.Context, tpl menuTemplate, title string, days int, budgetCents int64, now time.Time) (core.MenuAggregate, error) {
	if budgetCents <= 0 {
		budgetCents = tpl.budgetCents * int64(days)
	}

	m := core.MenuAggregate{
		Title:         title,
		Description:   tpl.description,
		Category:      tpl.category,
		TotalCalories: tpl.calories * float64(days),
		TotalProtein:  tpl.protein * float64(days),
		TotalCarbs:    tpl.carbs * float64(days),
		TotalFat:      tpl.fat * float64(days),
		DaysCount:     days,
		MealCount:     tpl.meals * days,
		BudgetCents:   budgetCents,
		CreatedAt:     now,
	}
	if err := m.Validate(); err != nil {
		return core.MenuAggregate{}, err
	}

	id, err := s.store.InsertMenu(ctx, m)
	if err != nil {
		return core.MenuAggregate{}, fmt.Errorf("insert menu: %w", err)
	}
	m.ID = id
	return m, nil
}

func pickTemplate(description string) menuTemplate {
	lower := strings.ToLower(description)
	for _, entry := range menuTemplates {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.tpl
			}
		}
	}
	return balancedTemplate
}

// titleFrom shapes a free-text description into a short menu title.
// Truncation backs up to a rune boundary so multi-byte text stays intact.
func titleFrom(description string) string {
	const maxTitle = 60
	title := strings.Join(strings.Fields(description), " ")
	if len(title) > maxTitle {
		cut := maxTitle
		for !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = strings.TrimSpace(title[:cut])
	}
	first, size := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(first)) + title[size:]
}
