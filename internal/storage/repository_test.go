package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nutritrack/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestGoalsRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.Goals(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first save, got %v", err)
	}

	want := core.NutritionGoals{Calories: 1900, Protein: 130, Carbs: 220, Fat: 65, Fluids: 2500}
	if err := repo.SaveGoals(ctx, want); err != nil {
		t.Fatalf("save goals: %v", err)
	}
	got, err := repo.Goals(ctx)
	if err != nil {
		t.Fatalf("get goals: %v", err)
	}
	if got != want {
		t.Errorf("goals = %+v, want %+v", got, want)
	}

	// Saving again overwrites the singleton row.
	want.Calories = 2100
	if err := repo.SaveGoals(ctx, want); err != nil {
		t.Fatalf("re-save goals: %v", err)
	}
	got, _ = repo.Goals(ctx)
	if got.Calories != 2100 {
		t.Errorf("updated calories = %v, want 2100", got.Calories)
	}
}

func TestProductLookup(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.GetProduct(ctx, "000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown barcode, got %v", err)
	}

	p := core.Product{
		Barcode: "4006381333931", Name: "Oat Drink", Brand: "Hafer",
		CaloriesPer100g: 46, ProteinPer100g: 1.1, CarbsPer100g: 6.7, FatPer100g: 1.5,
	}
	if err := repo.UpsertProduct(ctx, p); err != nil {
		t.Fatalf("upsert product: %v", err)
	}
	got, err := repo.GetProduct(ctx, p.Barcode)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got != p {
		t.Errorf("product = %+v, want %+v", got, p)
	}

	p.Name = "Oat Drink Barista"
	if err := repo.UpsertProduct(ctx, p); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	got, _ = repo.GetProduct(ctx, p.Barcode)
	if got.Name != "Oat Drink Barista" {
		t.Errorf("name after upsert = %q", got.Name)
	}
}

func TestFoodLogAppendAndSync(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	entry := core.FoodLogEntry{
		Barcode: "123", Name: "Yogurt", QuantityG: 150, Meal: core.MealBreakfast,
		Calories: 90, Protein: 15, Carbs: 6, Fat: 0.3,
		LoggedAt: time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC),
	}
	id, err := repo.AppendFoodLog(ctx, entry)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.GetFoodLogEntry(ctx, id)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if got.Name != "Yogurt" || got.Meal != core.MealBreakfast || got.QuantityG != 150 {
		t.Errorf("entry = %+v", got)
	}

	pending, err := repo.PendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("pending = %+v, want entry %d", pending, id)
	}

	if err := repo.MarkSynced(ctx, id); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, _ = repo.PendingSyncEntries(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("pending after sync = %d, want 0", len(pending))
	}
}

func TestRollupDay(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	meals := []core.FoodLogEntry{
		{Name: "Oats", QuantityG: 80, Meal: core.MealBreakfast, Calories: 300, Protein: 11, Carbs: 54, Fat: 6, LoggedAt: day.Add(8 * time.Hour)},
		{Name: "Chicken", QuantityG: 200, Meal: core.MealLunch, Calories: 330, Protein: 62, Carbs: 0, Fat: 7, LoggedAt: day.Add(13 * time.Hour)},
	}
	for _, m := range meals {
		if _, err := repo.AppendFoodLog(ctx, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	dates, err := repo.UnrolledDates(ctx)
	if err != nil {
		t.Fatalf("unrolled dates: %v", err)
	}
	if len(dates) != 1 || dates[0] != "2025-03-14" {
		t.Fatalf("unrolled dates = %v, want [2025-03-14]", dates)
	}

	if err := repo.RollupDay(ctx, "2025-03-14"); err != nil {
		t.Fatalf("rollup: %v", err)
	}

	records, err := repo.ListDailyRecords(ctx, "2025-03-14", "2025-03-14")
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Calories == nil || *rec.Calories != 630 {
		t.Errorf("calories = %v, want 630", rec.Calories)
	}
	if rec.Protein == nil || *rec.Protein != 73 {
		t.Errorf("protein = %v, want 73", rec.Protein)
	}
	// Columns the rollup never writes stay NULL and surface as nil.
	if rec.Fiber != nil || rec.Fluids != nil {
		t.Errorf("expected nil fiber/fluids, got %v / %v", rec.Fiber, rec.Fluids)
	}

	dates, _ = repo.UnrolledDates(ctx)
	if len(dates) != 0 {
		t.Fatalf("unrolled after rollup = %v, want empty", dates)
	}
}

func TestMenuLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	id, err := repo.InsertMenu(ctx, core.MenuAggregate{
		Title: "Cut Week", Description: "Low calorie week", Category: "cut",
		TotalCalories: 11200, TotalProtein: 700, DaysCount: 7, MealCount: 21,
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("insert menu: %v", err)
	}

	menus, err := repo.ListMenus(ctx)
	if err != nil {
		t.Fatalf("list menus: %v", err)
	}
	if len(menus) != 1 || menus[0].Title != "Cut Week" || menus[0].StartedAt != nil {
		t.Fatalf("menus = %+v", menus)
	}

	startedAt := created.AddDate(0, 0, 4)
	if err := repo.MarkMenuStarted(ctx, id, startedAt); err != nil {
		t.Fatalf("mark started: %v", err)
	}
	m, err := repo.GetMenu(ctx, id)
	if err != nil {
		t.Fatalf("get menu: %v", err)
	}
	if m.StartedAt == nil || !m.StartedAt.Equal(startedAt) {
		t.Errorf("started_at = %v, want %v", m.StartedAt, startedAt)
	}

	if err := repo.MarkMenuStarted(ctx, 9999, startedAt); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown menu, got %v", err)
	}
}

func TestRecentScansOrder(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		if err := repo.RecordScan(ctx, name, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("record scan: %v", err)
		}
	}

	scans, err := repo.RecentScans(ctx, 2)
	if err != nil {
		t.Fatalf("recent scans: %v", err)
	}
	if len(scans) != 2 {
		t.Fatalf("got %d scans, want 2", len(scans))
	}
	if scans[0].ProductName != "third" || scans[1].ProductName != "second" {
		t.Errorf("order = [%s %s], want newest first", scans[0].ProductName, scans[1].ProductName)
	}
}
