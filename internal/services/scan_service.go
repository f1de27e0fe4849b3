package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"nutritrack/internal/core"
	"nutritrack/internal/storage"
)

// ErrProductNotFound signals an unknown barcode or unrecognized image.
// Transport maps it to a distinct not-found state, never an empty result.
var ErrProductNotFound = errors.New("product not found")

// ScanStore is the storage surface the scan service works against.
type ScanStore interface {
	GetProduct(ctx context.Context, barcode string) (core.Product, error)
	UpsertProduct(ctx context.Context, p core.Product) error
	AppendFoodLog(ctx context.Context, e core.FoodLogEntry) (int64, error)
	RecordScan(ctx context.Context, productName string, scannedAt time.Time) error
	RecentScans(ctx context.Context, limit int) ([]core.ScanHistoryEntry, error)
	Goals(ctx context.Context) (core.NutritionGoals, error)
}

// SyncPublisher publishes a food-log sync message after a local append.
type SyncPublisher interface {
	PublishFoodLogSync(ctx context.Context, entryID int64) error
}

// ImageRecognizer resolves a photo to a product. Recognition itself is an
// external concern; the service only owns the port.
type ImageRecognizer interface {
	Recognize(ctx context.Context, image []byte) (core.Product, error)
}

// CompatibilityAnalysis is the scored verdict for a scanned product.
type CompatibilityAnalysis struct {
	Score float64
	Band  core.CompatibilityBand
	Color string
}

// ScanResult pairs a resolved product with its compatibility verdict.
type ScanResult struct {
	Product       core.Product
	Compatibility CompatibilityAnalysis
}

// ScanService orchestrates barcode/image resolution, add-to-log and the
// scan-history snapshot. Writes go to storage first; the AMQP publish is
// best-effort and never fails the request.
type ScanService struct {
	store        ScanStore
	publisher    SyncPublisher   // nil when AMQP is not configured
	recognizer   ImageRecognizer // nil when no recognizer is wired
	defaultGoals core.NutritionGoals
	history      *core.ScanHistorySnapshot
}

func NewScanService(store ScanStore, publisher SyncPublisher, recognizer ImageRecognizer, defaultGoals core.NutritionGoals) *ScanService {
	return &ScanService{
		store:        store,
		publisher:    publisher,
		recognizer:   recognizer,
		defaultGoals: defaultGoals,
		history:      &core.ScanHistorySnapshot{},
	}
}

// ResolveBarcode looks up a product and scores it against the user goals.
// Unknown barcodes return ErrProductNotFound.
func (s *ScanService) ResolveBarcode(ctx context.Context, barcode string) (ScanResult, error) {
	p, err := s.store.GetProduct(ctx, barcode)
	if errors.Is(err, storage.ErrNotFound) {
		return ScanResult{}, ErrProductNotFound
	}
	if err != nil {
		return ScanResult{}, fmt.Errorf("resolve barcode %s: %w", barcode, err)
	}
	return s.analyze(ctx, p)
}

// ResolveImage delegates to the recognizer port. Without a recognizer the
// answer is the same not-found state an unknown barcode produces.
func (s *ScanService) ResolveImage(ctx context.Context, image []byte) (ScanResult, error) {
	if s.recognizer == nil {
		return ScanResult{}, ErrProductNotFound
	}
	p, err := s.recognizer.Recognize(ctx, image)
	if err != nil {
		return ScanResult{}, ErrProductNotFound
	}
	return s.analyze(ctx, p)
}

// SaveProduct upserts a product into the local catalog so later barcode
// scans resolve it. The client submits products it learned elsewhere,
// typically from a public food database lookup.
func (s *ScanService) SaveProduct(ctx context.Context, p core.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.UpsertProduct(ctx, p); err != nil {
		return fmt.Errorf("upsert product %s: %w", p.Barcode, err)
	}
	return nil
}

// AddToLog appends a consumption of the product to the food log, records
// the scan in history and publishes a sync message. Entry nutrition is
// scaled from the product's per-100g values.
func (s *ScanService) AddToLog(ctx context.Context, p core.Product, quantityG float64, meal core.MealTiming, now time.Time) (core.FoodLogEntry, error) {
	factor := quantityG / 100
	entry := core.FoodLogEntry{
		Barcode:   p.Barcode,
		Name:      p.Name,
		QuantityG: quantityG,
		Meal:      meal,
		Calories:  p.CaloriesPer100g * factor,
		Protein:   p.ProteinPer100g * factor,
		Carbs:     p.CarbsPer100g * factor,
		Fat:       p.FatPer100g * factor,
		LoggedAt:  now,
	}
	if err := entry.Validate(); err != nil {
		return core.FoodLogEntry{}, err
	}

	id, err := s.store.AppendFoodLog(ctx, entry)
	if err != nil {
		return core.FoodLogEntry{}, fmt.Errorf("append food log: %w", err)
	}
	entry.ID = id

	if err := s.store.RecordScan(ctx, entry.Name, now); err != nil {
		// History is a convenience; the logged entry is what matters.
		slog.WarnContext(ctx, "Failed to record scan history",
			"product_name", entry.Name, "error", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishFoodLogSync(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"entry_id", id, "error", err)
			// Don't fail the request - the entry is saved locally.
		}
	}

	return entry, nil
}

// RecentScans refreshes the scan-history snapshot from storage and
// returns a window of at most n entries, newest first. The fetch never
// goes below the default window so the snapshot stays useful for stale
// serving even after a small request.
func (s *ScanService) RecentScans(ctx context.Context, n int) ([]core.ScanHistoryEntry, error) {
	fetch := n
	if fetch < core.DefaultScanWindow {
		fetch = core.DefaultScanWindow
	}
	entries, err := s.store.RecentScans(ctx, fetch)
	if err != nil {
		// Serve the last good snapshot when storage is unavailable.
		slog.WarnContext(ctx, "Serving stale scan history", "error", err)
		return s.history.Window(n), nil
	}
	s.history.Replace(entries)
	return s.history.Window(n), nil
}

func (s *ScanService) analyze(ctx context.Context, p core.Product) (ScanResult, error) {
	goals, err := s.store.Goals(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		goals = s.defaultGoals
	} else if err != nil {
		return ScanResult{}, fmt.Errorf("load goals: %w", err)
	}

	score := compatibilityScore(p, goals)
	band := core.ClassifyCompatibility(score)
	return ScanResult{
		Product: p,
		Compatibility: CompatibilityAnalysis{
			Score: score,
			Band:  band,
			Color: band.Color(),
		},
	}, nil
}

// compatibilityScore compares the product's macro energy shares with the
// shares implied by the user's goals and maps the L1 distance onto 0-100.
// A product with no macro energy at all (water, black coffee) scores 100:
// there is nothing to conflict with.
func compatibilityScore(p core.Product, goals core.NutritionGoals) float64 {
	prodP := p.ProteinPer100g * core.KcalPerGramProtein
	prodC := p.CarbsPer100g * core.KcalPerGramCarbs
	prodF := p.FatPer100g * core.KcalPerGramFat
	prodTotal := prodP + prodC + prodF
	if prodTotal == 0 {
		return 100
	}

	goalP := goals.Protein * core.KcalPerGramProtein
	goalC := goals.Carbs * core.KcalPerGramCarbs
	goalF := goals.Fat * core.KcalPerGramFat
	goalTotal := goalP + goalC + goalF
	if goalTotal == 0 {
		// No macro goals set: nothing to score against, call it neutral.
		return 60
	}

	dist := math.Abs(prodP/prodTotal-goalP/goalTotal) +
		math.Abs(prodC/prodTotal-goalC/goalTotal) +
		math.Abs(prodF/prodTotal-goalF/goalTotal)

	// dist ranges over [0, 2]; map linearly onto [100, 0].
	return math.Round((1 - dist/2) * 100)
}
