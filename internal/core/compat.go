package core

const (
	BandGood     CompatibilityBand = "good"
	BandModerate CompatibilityBand = "moderate"
	BandPoor     CompatibilityBand = "poor"
)

// CompatibilityBand is the discrete display band for a compatibility score.
type CompatibilityBand string

// ClassifyCompatibility maps a continuous compatibility score to a band:
// score >= 80 is good, 60 <= score < 80 is moderate, below 60 is poor.
// The score is conventionally 0-100 but out-of-range values are not
// rejected; they fall through to the nearest boundary rule. Total function,
// no error cases.
func ClassifyCompatibility(score float64) CompatibilityBand {
	switch {
	case score >= 80:
		return BandGood
	case score >= 60:
		return BandModerate
	default:
		return BandPoor
	}
}

// Color returns the display color for a band. The mapping is 1:1 and
// derived from the band, never configured independently by rendering.
func (b CompatibilityBand) Color() string {
	switch b {
	case BandGood:
		return "green"
	case BandModerate:
		return "orange"
	default:
		return "red"
	}
}
