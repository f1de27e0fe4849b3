package http

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"nutritrack/internal/core"
	"nutritrack/internal/log"
	"nutritrack/internal/services"
)

type productView struct {
	Barcode         string  `json:"barcode"`
	Name            string  `json:"name"`
	Brand           string  `json:"brand"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
	ProteinPer100g  float64 `json:"protein_per_100g"`
	CarbsPer100g    float64 `json:"carbs_per_100g"`
	FatPer100g      float64 `json:"fat_per_100g"`
}

type scanResultView struct {
	Product       productView `json:"product"`
	Compatibility struct {
		Score float64 `json:"score"`
		Band  string  `json:"band"`
		Color string  `json:"color"`
	} `json:"compatibility"`
}

func scanResultToView(res services.ScanResult) scanResultView {
	var v scanResultView
	v.Product = productView{
		Barcode:         res.Product.Barcode,
		Name:            res.Product.Name,
		Brand:           res.Product.Brand,
		CaloriesPer100g: res.Product.CaloriesPer100g,
		ProteinPer100g:  res.Product.ProteinPer100g,
		CarbsPer100g:    res.Product.CarbsPer100g,
		FatPer100g:      res.Product.FatPer100g,
	}
	v.Compatibility.Score = res.Compatibility.Score
	v.Compatibility.Band = string(res.Compatibility.Band)
	v.Compatibility.Color = res.Compatibility.Color
	return v
}

func productFromView(v productView) core.Product {
	return core.Product{
		Barcode:         v.Barcode,
		Name:            v.Name,
		Brand:           v.Brand,
		CaloriesPer100g: v.CaloriesPer100g,
		ProteinPer100g:  v.ProteinPer100g,
		CarbsPer100g:    v.CarbsPer100g,
		FatPer100g:      v.FatPer100g,
	}
}

type scanBarcodeRequest struct {
	Barcode string `json:"barcode"`
}

// handleUpsertProduct stores a product in the local catalog. The mobile
// client submits products it resolved elsewhere so the next scan of the
// same barcode answers locally.
func (s *Server) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	var req productView
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.scans.SaveProduct(r.Context(), productFromView(req))
	if errors.Is(err, core.ErrEmptyBarcode) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrNegativeNutrient) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Product upsert failed",
			log.FieldBarcode, req.Barcode, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not save product")
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// handleScanBarcode resolves a barcode to a product with its
// compatibility verdict. An unknown barcode is a distinct 404 state, not
// an empty result.
func (s *Server) handleScanBarcode(w http.ResponseWriter, r *http.Request) {
	var req scanBarcodeRequest
	if err := decodeJSON(r, &req); err != nil || req.Barcode == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.scans.ResolveBarcode(r.Context(), req.Barcode)
	if errors.Is(err, services.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Barcode resolution failed",
			log.FieldBarcode, req.Barcode, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, scanResultToView(res))
}

type scanImageRequest struct {
	Image []byte `json:"image"` // base64 in the JSON payload
}

// handleScanImage resolves a photo through the recognizer port. Without a
// configured recognizer every image is a not-found state.
func (s *Server) handleScanImage(w http.ResponseWriter, r *http.Request) {
	var req scanImageRequest
	if err := decodeJSON(r, &req); err != nil || len(req.Image) == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.scans.ResolveImage(r.Context(), req.Image)
	if errors.Is(err, services.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "product not recognized")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Image recognition failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, scanResultToView(res))
}

type addToLogRequest struct {
	Product   productView `json:"product"`
	QuantityG float64     `json:"quantity_g"`
	Meal      string      `json:"meal"`
}

type foodLogEntryView struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	QuantityG float64 `json:"quantity_g"`
	Meal      string  `json:"meal"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	LoggedAt  string  `json:"logged_at"`
}

// handleAddToLog appends a consumption of a product to the food log.
func (s *Server) handleAddToLog(w http.ResponseWriter, r *http.Request) {
	var req addToLogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.scans.AddToLog(r.Context(), productFromView(req.Product), req.QuantityG,
		core.MealTiming(req.Meal), time.Now())
	if errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrInvalidQuantity) ||
		errors.Is(err, core.ErrInvalidMeal) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Add to log failed",
			log.FieldProductName, req.Product.Name, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not save entry")
		return
	}

	atomic.AddInt64(&s.metrics.logEntries, 1)
	s.invalidateReadCaches()
	writeJSON(w, http.StatusCreated, foodLogEntryView{
		ID:        entry.ID,
		Name:      entry.Name,
		QuantityG: entry.QuantityG,
		Meal:      string(entry.Meal),
		Calories:  entry.Calories,
		Protein:   entry.Protein,
		Carbs:     entry.Carbs,
		Fat:       entry.Fat,
		LoggedAt:  entry.LoggedAt.UTC().Format(time.RFC3339),
	})
}

type scanHistoryView struct {
	ProductName string `json:"product_name"`
	ScannedAt   string `json:"scanned_at"`
}

// handleRecentScans serves the scan-history window, newest first.
func (s *Server) handleRecentScans(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), core.DefaultScanWindow)

	entries, err := s.scans.RecentScans(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent scans failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "scan history unavailable")
		return
	}

	views := make([]scanHistoryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, scanHistoryView{
			ProductName: e.ProductName,
			ScannedAt:   e.ScannedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"scans": views})
}
