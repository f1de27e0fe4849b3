package backend

import (
	"context"
	"sort"
	"sync"
	"time"

	"nutritrack/internal/core"
	"nutritrack/internal/storage"
)

// MemoryStore is an in-memory Store for development and tests. It mirrors
// the SQLite repository's behavior, including its not-found sentinel.
type MemoryStore struct {
	mu sync.RWMutex

	goals    *core.NutritionGoals
	products map[string]core.Product
	records  map[string]core.DailyNutritionRecord // keyed by ISO date
	foodLog  []core.FoodLogEntry
	menus    []core.MenuAggregate
	scans    []core.ScanHistoryEntry

	nextEntryID int64
	nextMenuID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]core.Product),
		records:  make(map[string]core.DailyNutritionRecord),
	}
}

// seedProducts is the starter catalog loaded into the memory backend so
// barcode scans resolve without a prior upsert.
var seedProducts = []core.Product{
	{Barcode: "4099200179193", Name: "Rolled Oats", Brand: "Crownfield",
		CaloriesPer100g: 372, ProteinPer100g: 13.5, CarbsPer100g: 58.7, FatPer100g: 7},
	{Barcode: "4056489066514", Name: "Greek Yogurt", Brand: "Milbona",
		CaloriesPer100g: 97, ProteinPer100g: 9, CarbsPer100g: 4, FatPer100g: 5},
	{Barcode: "2050000013508", Name: "Chicken Breast",
		CaloriesPer100g: 165, ProteinPer100g: 31, CarbsPer100g: 0, FatPer100g: 3.6},
	{Barcode: "4311501043622", Name: "Whole Milk", Brand: "Ja!",
		CaloriesPer100g: 64, ProteinPer100g: 3.3, CarbsPer100g: 4.7, FatPer100g: 3.6},
	{Barcode: "8718906124066", Name: "Peanut Butter", Brand: "Calve",
		CaloriesPer100g: 619, ProteinPer100g: 27, CarbsPer100g: 12, FatPer100g: 50},
}

// Seed loads the starter product catalog.
func (m *MemoryStore) Seed(ctx context.Context) error {
	for _, p := range seedProducts {
		if err := m.UpsertProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// --- stats ---

func (m *MemoryStore) ListDailyRecords(_ context.Context, start, end string) ([]core.DailyNutritionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.DailyNutritionRecord
	for date, r := range m.records {
		if date >= start && date <= end {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out, nil
}

func (m *MemoryStore) RecordedDates(_ context.Context, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dates := make([]string, 0, len(m.records))
	for date := range m.records {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if limit < len(dates) {
		dates = dates[:limit]
	}
	return dates, nil
}

func (m *MemoryStore) Goals(_ context.Context) (core.NutritionGoals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.goals == nil {
		return core.NutritionGoals{}, storage.ErrNotFound
	}
	return *m.goals, nil
}

func (m *MemoryStore) SaveGoals(_ context.Context, g core.NutritionGoals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals = &g
	return nil
}

// SetDailyRecord installs or replaces the record for its date.
func (m *MemoryStore) SetDailyRecord(r core.DailyNutritionRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.Date.ISO()] = r
}

// --- menus ---

func (m *MemoryStore) ListMenus(_ context.Context) ([]core.MenuAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.MenuAggregate, len(m.menus))
	copy(out, m.menus)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) InsertMenu(_ context.Context, menu core.MenuAggregate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextMenuID++
	menu.ID = m.nextMenuID
	m.menus = append(m.menus, menu)
	return menu.ID, nil
}

func (m *MemoryStore) GetMenu(_ context.Context, id int64) (core.MenuAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, menu := range m.menus {
		if menu.ID == id {
			return menu, nil
		}
	}
	return core.MenuAggregate{}, storage.ErrNotFound
}

func (m *MemoryStore) MarkMenuStarted(_ context.Context, id int64, startedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.menus {
		if m.menus[i].ID == id {
			t := startedAt
			m.menus[i].StartedAt = &t
			return nil
		}
	}
	return storage.ErrNotFound
}

// --- products and food log ---

func (m *MemoryStore) UpsertProduct(_ context.Context, p core.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.Barcode] = p
	return nil
}

func (m *MemoryStore) GetProduct(_ context.Context, barcode string) (core.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[barcode]
	if !ok {
		return core.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) AppendFoodLog(_ context.Context, e core.FoodLogEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextEntryID++
	e.ID = m.nextEntryID
	m.foodLog = append(m.foodLog, e)
	return e.ID, nil
}

func (m *MemoryStore) RecordScan(_ context.Context, productName string, scannedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scans = append(m.scans, core.ScanHistoryEntry{
		ProductName: productName,
		ScannedAt:   scannedAt,
	})
	return nil
}

func (m *MemoryStore) RecentScans(_ context.Context, limit int) ([]core.ScanHistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.ScanHistoryEntry, len(m.scans))
	copy(out, m.scans)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScannedAt.After(out[j].ScannedAt)
	})
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
