package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nutritrack/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- settings ---

// Goals returns the stored daily targets, or ErrNotFound before first save.
func (r *SQLiteRepository) Goals(ctx context.Context) (core.NutritionGoals, error) {
	var g core.NutritionGoals
	err := r.db.QueryRowContext(ctx,
		`SELECT goal_calories, goal_protein, goal_carbs, goal_fat, goal_fluids FROM settings WHERE id = 1`,
	).Scan(&g.Calories, &g.Protein, &g.Carbs, &g.Fat, &g.Fluids)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NutritionGoals{}, ErrNotFound
	}
	if err != nil {
		return core.NutritionGoals{}, fmt.Errorf("get goals: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) SaveGoals(ctx context.Context, g core.NutritionGoals) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, goal_calories, goal_protein, goal_carbs, goal_fat, goal_fluids, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
		   goal_calories = excluded.goal_calories,
		   goal_protein = excluded.goal_protein,
		   goal_carbs = excluded.goal_carbs,
		   goal_fat = excluded.goal_fat,
		   goal_fluids = excluded.goal_fluids,
		   updated_at = CURRENT_TIMESTAMP`,
		g.Calories, g.Protein, g.Carbs, g.Fat, g.Fluids)
	if err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// --- products ---

func (r *SQLiteRepository) UpsertProduct(ctx context.Context, p core.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (barcode, name, brand, calories_per_100g, protein_per_100g, carbs_per_100g, fat_per_100g)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(barcode) DO UPDATE SET
		   name = excluded.name,
		   brand = excluded.brand,
		   calories_per_100g = excluded.calories_per_100g,
		   protein_per_100g = excluded.protein_per_100g,
		   carbs_per_100g = excluded.carbs_per_100g,
		   fat_per_100g = excluded.fat_per_100g,
		   last_updated = CURRENT_TIMESTAMP`,
		p.Barcode, p.Name, p.Brand, p.CaloriesPer100g, p.ProteinPer100g, p.CarbsPer100g, p.FatPer100g)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.Barcode, err)
	}
	return nil
}

func (r *SQLiteRepository) GetProduct(ctx context.Context, barcode string) (core.Product, error) {
	var p core.Product
	err := r.db.QueryRowContext(ctx,
		`SELECT barcode, name, brand, calories_per_100g, protein_per_100g, carbs_per_100g, fat_per_100g
		 FROM products WHERE barcode = ?`, barcode,
	).Scan(&p.Barcode, &p.Name, &p.Brand, &p.CaloriesPer100g, &p.ProteinPer100g, &p.CarbsPer100g, &p.FatPer100g)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Product{}, ErrNotFound
	}
	if err != nil {
		return core.Product{}, fmt.Errorf("get product %s: %w", barcode, err)
	}
	return p, nil
}

// --- food log ---

func (r *SQLiteRepository) AppendFoodLog(ctx context.Context, e core.FoodLogEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO food_log (barcode, name, quantity_g, meal, calories, protein, carbs, fat, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Barcode, e.Name, e.QuantityG, string(e.Meal), e.Calories, e.Protein, e.Carbs, e.Fat, e.LoggedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("append food log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("food log insert id: %w", err)
	}

	slog.InfoContext(ctx, "Food log entry saved",
		"id", id,
		"product_name", e.Name,
		"quantity_g", e.QuantityG,
		"meal_timing", string(e.Meal))

	return id, nil
}

func (r *SQLiteRepository) GetFoodLogEntry(ctx context.Context, id int64) (core.FoodLogEntry, error) {
	var e core.FoodLogEntry
	var meal string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, barcode, name, quantity_g, meal, calories, protein, carbs, fat, logged_at
		 FROM food_log WHERE id = ?`, id,
	).Scan(&e.ID, &e.Barcode, &e.Name, &e.QuantityG, &meal, &e.Calories, &e.Protein, &e.Carbs, &e.Fat, &e.LoggedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FoodLogEntry{}, ErrNotFound
	}
	if err != nil {
		return core.FoodLogEntry{}, fmt.Errorf("get food log entry %d: %w", id, err)
	}
	e.Meal = core.MealTiming(meal)
	return e, nil
}

// PendingSyncEntries returns unsynced entries, oldest first.
func (r *SQLiteRepository) PendingSyncEntries(ctx context.Context, limit int) ([]core.FoodLogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, barcode, name, quantity_g, meal, calories, protein, carbs, fat, logged_at
		 FROM food_log WHERE synced = 0 ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	defer rows.Close()

	var entries []core.FoodLogEntry
	for rows.Next() {
		var e core.FoodLogEntry
		var meal string
		if err := rows.Scan(&e.ID, &e.Barcode, &e.Name, &e.QuantityG, &meal,
			&e.Calories, &e.Protein, &e.Carbs, &e.Fat, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		e.Meal = core.MealTiming(meal)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE food_log SET synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry %d synced: %w", id, err)
	}
	return nil
}

// --- daily records ---

// ListDailyRecords returns records for start <= date <= end, ascending.
// NULL nutrient columns become nil pointers; the default-to-zero policy
// belongs to the core, not here.
func (r *SQLiteRepository) ListDailyRecords(ctx context.Context, start, end string) ([]core.DailyNutritionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, calories, protein, carbs, fat, fiber, sugar, sodium, fluids
		 FROM daily_records WHERE date >= ? AND date <= ? ORDER BY date ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list daily records: %w", err)
	}
	defer rows.Close()

	var records []core.DailyNutritionRecord
	for rows.Next() {
		var dateISO string
		var cols [8]sql.NullFloat64
		if err := rows.Scan(&dateISO, &cols[0], &cols[1], &cols[2], &cols[3],
			&cols[4], &cols[5], &cols[6], &cols[7]); err != nil {
			return nil, fmt.Errorf("scan daily record: %w", err)
		}
		date, err := time.Parse("2006-01-02", dateISO)
		if err != nil {
			return nil, fmt.Errorf("parse record date %q: %w", dateISO, err)
		}
		records = append(records, core.DailyNutritionRecord{
			Date:     core.DateOf(date),
			Calories: nullableFloat(cols[0]),
			Protein:  nullableFloat(cols[1]),
			Carbs:    nullableFloat(cols[2]),
			Fat:      nullableFloat(cols[3]),
			Fiber:    nullableFloat(cols[4]),
			Sugar:    nullableFloat(cols[5]),
			Sodium:   nullableFloat(cols[6]),
			Fluids:   nullableFloat(cols[7]),
		})
	}
	return records, rows.Err()
}

// RecordedDates returns the dates that have a daily record, newest first.
func (r *SQLiteRepository) RecordedDates(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date FROM daily_records ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recorded dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan recorded date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// --- rollup ---

// UnrolledDates returns the calendar dates that have food-log entries not
// yet folded into daily_records.
func (r *SQLiteRepository) UnrolledDates(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT date(logged_at) FROM food_log WHERE rolled = 0 ORDER BY 1 ASC`)
	if err != nil {
		return nil, fmt.Errorf("list unrolled dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan unrolled date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// RollupDay recomputes the daily record for one calendar date from the
// food log and marks that day's entries as rolled, in one transaction.
func (r *SQLiteRepository) RollupDay(ctx context.Context, dateISO string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rollup tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO daily_records (date, calories, protein, carbs, fat, updated_at)
		 SELECT date(logged_at), SUM(calories), SUM(protein), SUM(carbs), SUM(fat), CURRENT_TIMESTAMP
		 FROM food_log WHERE date(logged_at) = ?
		 GROUP BY date(logged_at)
		 ON CONFLICT(date) DO UPDATE SET
		   calories = excluded.calories,
		   protein = excluded.protein,
		   carbs = excluded.carbs,
		   fat = excluded.fat,
		   updated_at = CURRENT_TIMESTAMP`, dateISO)
	if err != nil {
		return fmt.Errorf("rollup day %s: %w", dateISO, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE food_log SET rolled = 1 WHERE date(logged_at) = ?`, dateISO); err != nil {
		return fmt.Errorf("mark day %s rolled: %w", dateISO, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rollup %s: %w", dateISO, err)
	}

	slog.InfoContext(ctx, "Daily record rolled up", "date", dateISO)
	return nil
}

// --- menus ---

func (r *SQLiteRepository) InsertMenu(ctx context.Context, m core.MenuAggregate) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menus (title, description, category, total_calories, total_protein, total_carbs, total_fat,
		                    days_count, meal_count, budget_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Title, m.Description, m.Category, m.TotalCalories, m.TotalProtein, m.TotalCarbs, m.TotalFat,
		m.DaysCount, m.MealCount, m.BudgetCents, m.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert menu: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("menu insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListMenus(ctx context.Context) ([]core.MenuAggregate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, category, total_calories, total_protein, total_carbs, total_fat,
		        days_count, meal_count, budget_cents, created_at, started_at
		 FROM menus ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	defer rows.Close()

	var menus []core.MenuAggregate
	for rows.Next() {
		var m core.MenuAggregate
		var startedAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Category,
			&m.TotalCalories, &m.TotalProtein, &m.TotalCarbs, &m.TotalFat,
			&m.DaysCount, &m.MealCount, &m.BudgetCents, &m.CreatedAt, &startedAt); err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		if startedAt.Valid {
			t := startedAt.Time
			m.StartedAt = &t
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

func (r *SQLiteRepository) GetMenu(ctx context.Context, id int64) (core.MenuAggregate, error) {
	var m core.MenuAggregate
	var startedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, category, total_calories, total_protein, total_carbs, total_fat,
		        days_count, meal_count, budget_cents, created_at, started_at
		 FROM menus WHERE id = ?`, id,
	).Scan(&m.ID, &m.Title, &m.Description, &m.Category,
		&m.TotalCalories, &m.TotalProtein, &m.TotalCarbs, &m.TotalFat,
		&m.DaysCount, &m.MealCount, &m.BudgetCents, &m.CreatedAt, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MenuAggregate{}, ErrNotFound
	}
	if err != nil {
		return core.MenuAggregate{}, fmt.Errorf("get menu %d: %w", id, err)
	}
	if startedAt.Valid {
		t := startedAt.Time
		m.StartedAt = &t
	}
	return m, nil
}

func (r *SQLiteRepository) MarkMenuStarted(ctx context.Context, id int64, startedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menus SET started_at = ? WHERE id = ?`, startedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark menu %d started: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark menu %d started: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- scan history ---

func (r *SQLiteRepository) RecordScan(ctx context.Context, productName string, scannedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scan_history (product_name, scanned_at) VALUES (?, ?)`,
		productName, scannedAt.UTC())
	if err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	return nil
}

// RecentScans returns the latest scans, newest first.
func (r *SQLiteRepository) RecentScans(ctx context.Context, limit int) ([]core.ScanHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_name, scanned_at FROM scan_history ORDER BY scanned_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent scans: %w", err)
	}
	defer rows.Close()

	var entries []core.ScanHistoryEntry
	for rows.Next() {
		var e core.ScanHistoryEntry
		if err := rows.Scan(&e.ProductName, &e.ScannedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
