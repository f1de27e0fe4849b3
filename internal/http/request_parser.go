// Request parsing helpers: query-parameter mapping onto core types and
// bounded JSON body decoding.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nutritrack/internal/core"
)

// maxBodySize bounds request bodies. Image payloads are the largest
// legitimate input; anything beyond this is rejected outright.
const maxBodySize = 4 << 20

// parseRangeSelection maps stats query parameters onto a range selection.
// Unknown modes are passed through; the core's fallback rule owns them.
func parseRangeSelection(query url.Values) core.RangeSelection {
	return core.RangeSelection{
		Mode:        core.RangeMode(strings.ToLower(strings.TrimSpace(query.Get("range")))),
		CustomStart: strings.TrimSpace(query.Get("start")),
		CustomEnd:   strings.TrimSpace(query.Get("end")),
	}
}

// parseCategoryFilter maps the filter query parameter onto a category
// filter kind. Unknown or empty values behave like "all".
func parseCategoryFilter(name string) core.CategoryFilter {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "recent":
		return core.FilterRecent{}
	case "high_protein":
		return core.FilterHighProtein{}
	case "low_calorie":
		return core.FilterLowCalorie{}
	default:
		return core.FilterAll{}
	}
}

// categoryFilterName is the inverse of parseCategoryFilter, used for
// cache keys.
func categoryFilterName(f core.CategoryFilter) string {
	switch f.(type) {
	case core.FilterRecent:
		return "recent"
	case core.FilterHighProtein:
		return "high_protein"
	case core.FilterLowCalorie:
		return "low_calorie"
	default:
		return "all"
	}
}

// parsePositiveInt parses a positive integer query parameter, falling
// back to def when absent or invalid.
func parsePositiveInt(v string, def int) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// decodeJSON decodes the request body into dst, rejecting unknown fields
// and oversized or trailing payloads.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}
