package http

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"nutritrack/internal/core"
)

func TestParseRangeSelection(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  core.RangeSelection
	}{
		{
			name:  "week mode",
			query: "range=week",
			want:  core.RangeSelection{Mode: core.RangeWeek},
		},
		{
			name:  "mode is case-insensitive",
			query: "range=ToDaY",
			want:  core.RangeSelection{Mode: core.RangeToday},
		},
		{
			name:  "custom passes bounds through",
			query: "range=custom&start=2025-01-01&end=2025-01-31",
			want: core.RangeSelection{
				Mode: core.RangeCustom, CustomStart: "2025-01-01", CustomEnd: "2025-01-31",
			},
		},
		{
			name:  "unknown mode is handed to the core untouched",
			query: "range=quarterly",
			want:  core.RangeSelection{Mode: "quarterly"},
		},
		{
			name:  "empty query",
			query: "",
			want:  core.RangeSelection{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			if got := parseRangeSelection(values); got != tt.want {
				t.Errorf("parseRangeSelection() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseCategoryFilter(t *testing.T) {
	tests := []struct {
		in   string
		want core.CategoryFilter
	}{
		{"all", core.FilterAll{}},
		{"recent", core.FilterRecent{}},
		{"high_protein", core.FilterHighProtein{}},
		{"low_calorie", core.FilterLowCalorie{}},
		{"RECENT", core.FilterRecent{}},
		{"", core.FilterAll{}},
		{"bogus", core.FilterAll{}},
	}
	for _, tt := range tests {
		if got := parseCategoryFilter(tt.in); got != tt.want {
			t.Errorf("parseCategoryFilter(%q) = %T, want %T", tt.in, got, tt.want)
		}
	}
}

func TestCategoryFilterNameRoundTrip(t *testing.T) {
	for _, name := range []string{"all", "recent", "high_protein", "low_calorie"} {
		if got := categoryFilterName(parseCategoryFilter(name)); got != name {
			t.Errorf("round trip %q = %q", name, got)
		}
	}
}

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"3", 5, 3},
		{"", 5, 5},
		{"0", 5, 5},
		{"-2", 5, 5},
		{"abc", 5, 5},
		{" 7 ", 5, 7},
	}
	for _, tt := range tests {
		if got := parsePositiveInt(tt.in, tt.def); got != tt.want {
			t.Errorf("parsePositiveInt(%q, %d) = %d, want %d", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Oats"}`))
		var p payload
		if err := decodeJSON(r, &p); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if p.Name != "Oats" {
			t.Errorf("name = %q", p.Name)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Oats","extra":1}`))
		var p payload
		if err := decodeJSON(r, &p); err == nil {
			t.Fatal("expected error for unknown field")
		}
	})

	t.Run("trailing data rejected", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
		var p payload
		if err := decodeJSON(r, &p); err == nil {
			t.Fatal("expected error for trailing data")
		}
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{`))
		var p payload
		if err := decodeJSON(r, &p); err == nil {
			t.Fatal("expected error for malformed body")
		}
	})
}
