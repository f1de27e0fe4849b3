package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"nutritrack/internal/core"
	"nutritrack/internal/storage"
)

type stubScanStore struct {
	products  map[string]core.Product
	goals     core.NutritionGoals
	goalErr   error
	upsertErr error

	entries  []core.FoodLogEntry
	scans    []core.ScanHistoryEntry
	scansErr error
	nextID   int64
}

func newStubScanStore() *stubScanStore {
	return &stubScanStore{
		products: make(map[string]core.Product),
		goals:    core.NutritionGoals{Calories: 2000, Protein: 120, Carbs: 250, Fat: 70},
	}
}

func (s *stubScanStore) GetProduct(_ context.Context, barcode string) (core.Product, error) {
	p, ok := s.products[barcode]
	if !ok {
		return core.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *stubScanStore) UpsertProduct(_ context.Context, p core.Product) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.products[p.Barcode] = p
	return nil
}

func (s *stubScanStore) AppendFoodLog(_ context.Context, e core.FoodLogEntry) (int64, error) {
	s.nextID++
	e.ID = s.nextID
	s.entries = append(s.entries, e)
	return s.nextID, nil
}

func (s *stubScanStore) RecordScan(_ context.Context, productName string, scannedAt time.Time) error {
	s.scans = append([]core.ScanHistoryEntry{{ProductName: productName, ScannedAt: scannedAt}}, s.scans...)
	return nil
}

func (s *stubScanStore) RecentScans(_ context.Context, limit int) ([]core.ScanHistoryEntry, error) {
	if s.scansErr != nil {
		return nil, s.scansErr
	}
	if limit > len(s.scans) {
		limit = len(s.scans)
	}
	return s.scans[:limit], nil
}

func (s *stubScanStore) Goals(_ context.Context) (core.NutritionGoals, error) {
	if s.goalErr != nil {
		return core.NutritionGoals{}, s.goalErr
	}
	return s.goals, nil
}

type stubPublisher struct {
	published []int64
	err       error
}

func (p *stubPublisher) PublishFoodLogSync(_ context.Context, entryID int64) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, entryID)
	return nil
}

func TestResolveBarcodeUnknown(t *testing.T) {
	svc := NewScanService(newStubScanStore(), nil, nil, core.NutritionGoals{})
	_, err := svc.ResolveBarcode(context.Background(), "4001234567890")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestResolveBarcodeAnalysis(t *testing.T) {
	store := newStubScanStore()
	store.products["1"] = core.Product{
		Barcode: "1", Name: "Chicken Breast",
		CaloriesPer100g: 165, ProteinPer100g: 31, FatPer100g: 3.6,
	}
	svc := NewScanService(store, nil, nil, core.NutritionGoals{})

	res, err := svc.ResolveBarcode(context.Background(), "1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Product.Name != "Chicken Breast" {
		t.Errorf("product = %+v", res.Product)
	}
	c := res.Compatibility
	if c.Score < 0 || c.Score > 100 {
		t.Errorf("score = %v, want 0-100", c.Score)
	}
	if c.Band != core.ClassifyCompatibility(c.Score) {
		t.Errorf("band %q inconsistent with score %v", c.Band, c.Score)
	}
	if c.Color != c.Band.Color() {
		t.Errorf("color %q inconsistent with band %q", c.Color, c.Band)
	}
}

func TestCompatibilityScore(t *testing.T) {
	goals := core.NutritionGoals{Protein: 120, Carbs: 250, Fat: 70}

	t.Run("macro shares matching goals score 100", func(t *testing.T) {
		p := core.Product{ProteinPer100g: 12, CarbsPer100g: 25, FatPer100g: 7}
		if got := compatibilityScore(p, goals); got != 100 {
			t.Errorf("score = %v, want 100", got)
		}
	})

	t.Run("zero-energy product scores 100", func(t *testing.T) {
		if got := compatibilityScore(core.Product{Name: "Water"}, goals); got != 100 {
			t.Errorf("score = %v, want 100", got)
		}
	})

	t.Run("no goals set is neutral", func(t *testing.T) {
		p := core.Product{ProteinPer100g: 10}
		if got := compatibilityScore(p, core.NutritionGoals{}); got != 60 {
			t.Errorf("score = %v, want 60", got)
		}
	})

	t.Run("skewed shares scale linearly", func(t *testing.T) {
		// Goal shares 0.5/0.5/0, product shares 0.25/0.75/0:
		// L1 distance 0.5 maps to 75.
		skewedGoals := core.NutritionGoals{Protein: 100, Carbs: 100}
		p := core.Product{ProteinPer100g: 10, CarbsPer100g: 30}
		if got := compatibilityScore(p, skewedGoals); got != 75 {
			t.Errorf("score = %v, want 75", got)
		}
	})
}

func TestResolveImageWithoutRecognizer(t *testing.T) {
	svc := NewScanService(newStubScanStore(), nil, nil, core.NutritionGoals{})
	_, err := svc.ResolveImage(context.Background(), []byte{0xff, 0xd8})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

type stubRecognizer struct {
	product core.Product
	err     error
}

func (r *stubRecognizer) Recognize(context.Context, []byte) (core.Product, error) {
	return r.product, r.err
}

func TestResolveImageWithRecognizer(t *testing.T) {
	rec := &stubRecognizer{product: core.Product{Name: "Apple", CarbsPer100g: 14, CaloriesPer100g: 52}}
	svc := NewScanService(newStubScanStore(), nil, rec, core.NutritionGoals{})

	res, err := svc.ResolveImage(context.Background(), []byte{0x01})
	if err != nil {
		t.Fatalf("resolve image: %v", err)
	}
	if res.Product.Name != "Apple" {
		t.Errorf("product = %+v", res.Product)
	}
}

func TestAddToLogScalesNutrition(t *testing.T) {
	store := newStubScanStore()
	pub := &stubPublisher{}
	svc := NewScanService(store, pub, nil, core.NutritionGoals{})

	p := core.Product{
		Barcode: "2", Name: "Greek Yogurt",
		CaloriesPer100g: 97, ProteinPer100g: 9, CarbsPer100g: 4, FatPer100g: 5,
	}
	now := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

	entry, err := svc.AddToLog(context.Background(), p, 150, core.MealBreakfast, now)
	if err != nil {
		t.Fatalf("add to log: %v", err)
	}
	if entry.ID != 1 {
		t.Errorf("id = %d, want 1", entry.ID)
	}
	if entry.Calories != 145.5 || entry.Protein != 13.5 {
		t.Errorf("scaled nutrition = %+v", entry)
	}

	if len(store.scans) != 1 || store.scans[0].ProductName != "Greek Yogurt" {
		t.Errorf("scan history = %+v", store.scans)
	}
	if len(pub.published) != 1 || pub.published[0] != 1 {
		t.Errorf("published = %v, want [1]", pub.published)
	}
}

func TestAddToLogRejectsInvalidEntry(t *testing.T) {
	store := newStubScanStore()
	svc := NewScanService(store, nil, nil, core.NutritionGoals{})

	_, err := svc.AddToLog(context.Background(),
		core.Product{Name: "Rice"}, 0, core.MealLunch, time.Now())
	if !errors.Is(err, core.ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
	if len(store.entries) != 0 {
		t.Fatal("invalid entry must not reach storage")
	}
}

func TestAddToLogSurvivesPublishFailure(t *testing.T) {
	store := newStubScanStore()
	pub := &stubPublisher{err: errors.New("broker down")}
	svc := NewScanService(store, pub, nil, core.NutritionGoals{})

	_, err := svc.AddToLog(context.Background(),
		core.Product{Name: "Oats", CaloriesPer100g: 389}, 50, core.MealBreakfast, time.Now())
	if err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
	if len(store.entries) != 1 {
		t.Fatal("entry must be saved locally")
	}
}

func TestRecentScansSnapshot(t *testing.T) {
	store := newStubScanStore()
	svc := NewScanService(store, nil, nil, core.NutritionGoals{})
	now := time.Now()

	store.RecordScan(context.Background(), "Milk", now.Add(-2*time.Minute))
	store.RecordScan(context.Background(), "Bread", now.Add(-1*time.Minute))

	got, err := svc.RecentScans(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent scans: %v", err)
	}
	if len(got) != 2 || got[0].ProductName != "Bread" {
		t.Fatalf("scans = %+v, want Bread first", got)
	}

	// Storage failure serves the last good snapshot instead of erroring.
	store.scansErr = errors.New("db locked")
	stale, err := svc.RecentScans(context.Background(), 5)
	if err != nil {
		t.Fatalf("stale read: %v", err)
	}
	if len(stale) != 2 {
		t.Fatalf("stale scans = %+v, want previous snapshot", stale)
	}
}

func TestRecentScansBeyondDefaultWindow(t *testing.T) {
	store := newStubScanStore()
	svc := NewScanService(store, nil, nil, core.NutritionGoals{})
	now := time.Now()

	for i := 0; i < 8; i++ {
		store.RecordScan(context.Background(),
			fmt.Sprintf("Product %d", i), now.Add(time.Duration(i)*time.Minute))
	}

	got, err := svc.RecentScans(context.Background(), 8)
	if err != nil {
		t.Fatalf("recent scans: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("len = %d, want all 8 entries", len(got))
	}
	if got[0].ProductName != "Product 7" {
		t.Errorf("first = %q, want newest scan", got[0].ProductName)
	}
}

func TestSaveProductResolvesOnNextScan(t *testing.T) {
	store := newStubScanStore()
	svc := NewScanService(store, nil, nil, core.NutritionGoals{})

	p := core.Product{
		Barcode: "8718906124066", Name: "Peanut Butter", Brand: "Calve",
		CaloriesPer100g: 619, ProteinPer100g: 27, CarbsPer100g: 12, FatPer100g: 50,
	}
	if err := svc.SaveProduct(context.Background(), p); err != nil {
		t.Fatalf("save product: %v", err)
	}

	res, err := svc.ResolveBarcode(context.Background(), p.Barcode)
	if err != nil {
		t.Fatalf("resolve after save: %v", err)
	}
	if res.Product.Name != "Peanut Butter" {
		t.Errorf("product = %+v", res.Product)
	}
}

func TestSaveProductRejectsInvalid(t *testing.T) {
	store := newStubScanStore()
	svc := NewScanService(store, nil, nil, core.NutritionGoals{})

	tests := []struct {
		name    string
		product core.Product
		wantErr error
	}{
		{"missing barcode", core.Product{Name: "Rice"}, core.ErrEmptyBarcode},
		{"missing name", core.Product{Barcode: "5"}, core.ErrEmptyName},
		{"negative nutrient", core.Product{Barcode: "5", Name: "Rice", FatPer100g: -1}, core.ErrNegativeNutrient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.SaveProduct(context.Background(), tt.product); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if len(store.products) != 0 {
		t.Error("invalid products must not reach storage")
	}
}

func TestAnalyzeFallsBackToDefaultGoals(t *testing.T) {
	store := newStubScanStore()
	store.goalErr = storage.ErrNotFound
	store.products["3"] = core.Product{Barcode: "3", Name: "Lentils", ProteinPer100g: 9, CarbsPer100g: 20}
	svc := NewScanService(store, nil, nil,
		core.NutritionGoals{Protein: 120, Carbs: 250, Fat: 70})

	res, err := svc.ResolveBarcode(context.Background(), "3")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Compatibility.Score <= 0 {
		t.Errorf("score = %v, want positive score against default goals", res.Compatibility.Score)
	}
}
