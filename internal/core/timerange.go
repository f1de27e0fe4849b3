package core

import "time"

const (
	RangeToday  RangeMode = "today"
	RangeWeek   RangeMode = "week"
	RangeMonth  RangeMode = "month"
	RangeCustom RangeMode = "custom"
)

type (
	RangeMode string

	// RangeSelection is the caller's symbolic choice of a reporting window.
	// CustomStart/CustomEnd are only consulted for RangeCustom.
	RangeSelection struct {
		Mode        RangeMode
		CustomStart string
		CustomEnd   string
	}

	// ResolvedRange is a concrete start/end pair of YYYY-MM-DD date strings
	// handed to the fetch layer. For the symbolic modes start <= end holds
	// by construction; for RangeCustom nothing is enforced.
	ResolvedRange struct {
		Start string
		End   string
	}
)

const dateLayout = "2006-01-02"

// ResolveRange maps a symbolic range selection to a concrete date window
// relative to the injected reference time.
//
// Week covers today plus the 7 preceding days (an 8-day inclusive span) and
// Month covers today plus the 30 preceding days (31 days inclusive).
// Callers that need an exact 7-day or 30-day window must adjust themselves.
//
// Custom bounds pass through verbatim: no parsing, no ordering check. An
// inverted or malformed custom window is handed to the fetch layer as-is;
// validating it is the input boundary's job, not this function's.
//
// Unrecognized modes fall back to the Week rule. Never returns an error and
// is safe to call concurrently.
func ResolveRange(sel RangeSelection, now time.Time) ResolvedRange {
	switch sel.Mode {
	case RangeToday:
		d := now.Format(dateLayout)
		return ResolvedRange{Start: d, End: d}
	case RangeMonth:
		return ResolvedRange{
			Start: now.AddDate(0, 0, -30).Format(dateLayout),
			End:   now.Format(dateLayout),
		}
	case RangeCustom:
		return ResolvedRange{Start: sel.CustomStart, End: sel.CustomEnd}
	default:
		// RangeWeek and anything unknown.
		return ResolvedRange{
			Start: now.AddDate(0, 0, -7).Format(dateLayout),
			End:   now.Format(dateLayout),
		}
	}
}
