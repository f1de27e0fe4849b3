package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nutritrack/internal/cache"
	"nutritrack/internal/core"
	"nutritrack/internal/middleware/ratelimit"
	"nutritrack/internal/middleware/security"
	"nutritrack/internal/middleware/trace"
	"nutritrack/internal/services"
)

// StatsProvider produces the statistics payload for a range selection
// and owns the user's nutrition targets.
type StatsProvider interface {
	Summary(ctx context.Context, sel core.RangeSelection, now time.Time) (core.StatsSummary, error)
	UpdateGoals(ctx context.Context, g core.NutritionGoals) error
}

// MenuProvider owns the menu listing and action surface.
type MenuProvider interface {
	List(ctx context.Context, c core.FilterCriteria, now time.Time) ([]core.MenuAggregate, error)
	GenerateDefault(ctx context.Context, now time.Time) (core.MenuAggregate, error)
	GenerateCustom(ctx context.Context, description string, days int, budgetCents int64, now time.Time) (core.MenuAggregate, error)
	Start(ctx context.Context, id int64, now time.Time) (core.MenuAggregate, error)
}

// ScanProvider resolves products, maintains the product catalog and
// appends food-log entries.
type ScanProvider interface {
	ResolveBarcode(ctx context.Context, barcode string) (services.ScanResult, error)
	ResolveImage(ctx context.Context, image []byte) (services.ScanResult, error)
	SaveProduct(ctx context.Context, p core.Product) error
	AddToLog(ctx context.Context, p core.Product, quantityG float64, meal core.MealTiming, now time.Time) (core.FoodLogEntry, error)
	RecentScans(ctx context.Context, n int) ([]core.ScanHistoryEntry, error)
}

// appMetrics are the process-local counters exposed on /metrics.
type appMetrics struct {
	uptime      time.Time
	logEntries  int64
	cacheHits   int64
	cacheMisses int64
}

// Server is the JSON API the mobile client talks to.
type Server struct {
	http.Server

	stats StatsProvider
	menus MenuProvider
	scans ScanProvider

	// Read-side caches, invalidated on writes.
	statsCache   *cache.LRUCache[statsResponse]
	menusCache   *cache.LRUCache[[]menuView]
	cacheManager *cache.Manager

	limiter      *ratelimit.Limiter
	detector     *security.Detector
	traceMw      *trace.Middleware
	metrics      appMetrics
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, stats StatsProvider, menus MenuProvider, scans ScanProvider) *Server {
	mux := http.NewServeMux()

	s := &Server{
		stats:        stats,
		menus:        menus,
		scans:        scans,
		statsCache:   cache.NewLRUCache[statsResponse](100, 1*time.Minute),
		menusCache:   cache.NewLRUCache[[]menuView](50, 1*time.Minute),
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
		metrics:      appMetrics{uptime: time.Now()},
	}
	s.cacheManager.Register(s.statsCache)
	s.cacheManager.Register(s.menusCache)
	s.cacheManager.StartCleanup(5 * time.Minute)

	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/menus", s.handleListMenus)
	mux.HandleFunc("POST /api/v1/menus/generate", s.handleGenerateMenu)
	mux.HandleFunc("POST /api/v1/menus/custom", s.handleCustomMenu)
	mux.HandleFunc("POST /api/v1/menus/{id}/start", s.handleStartMenu)
	mux.HandleFunc("PUT /api/v1/goals", s.handleUpdateGoals)
	mux.HandleFunc("POST /api/v1/products", s.handleUpsertProduct)
	mux.HandleFunc("POST /api/v1/scan/barcode", s.handleScanBarcode)
	mux.HandleFunc("POST /api/v1/scan/image", s.handleScanImage)
	mux.HandleFunc("POST /api/v1/log", s.handleAddToLog)
	mux.HandleFunc("GET /api/v1/scans/recent", s.handleRecentScans)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	s.traceMw = trace.NewMiddleware(s.detector.ExtractClientIP)
	headersMw := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limitMw := s.limiter.Middleware(s.detector.ExtractClientIP, nil)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      s.traceMw.Middleware(headersMw.Middleware(s.detector.Middleware(limitMw(mux)))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Shutdown stops the background cleanup goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// invalidateReadCaches drops cached read-side responses after any write.
// Entries are few and short-lived, so a full flush is simpler than keying.
func (s *Server) invalidateReadCaches() {
	s.statsCache.Clear()
	s.menusCache.Clear()
	slog.Debug("Read caches invalidated")
}
