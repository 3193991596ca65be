package domain

import "math"

const (
	// kmPerMile converts the threat formula's miles to kilometers.
	kmPerMile = 1.6

	// Depth thresholds in km.
	thresholdIntermediate = 70.0
	thresholdDeep         = 300.0

	// Magnitude thresholds.
	thresholdLight    = 4.0
	thresholdModerate = 5.0
)

// DepthTier buckets an event by hypocenter depth.
type DepthTier int

const (
	Shallow DepthTier = iota
	Intermediate
	Deep
)

func (t DepthTier) String() string {
	switch t {
	case Shallow:
		return "shallow"
	case Intermediate:
		return "intermediate"
	case Deep:
		return "deep"
	default:
		return "unknown"
	}
}

// MarshalText encodes the tier by name.
func (t DepthTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// MagnitudeBand buckets an event by magnitude.
type MagnitudeBand int

const (
	Minor MagnitudeBand = iota
	Light
	Moderate
)

func (b MagnitudeBand) String() string {
	switch b {
	case Minor:
		return "minor"
	case Light:
		return "light"
	case Moderate:
		return "moderate"
	default:
		return "unknown"
	}
}

// ThreatCircleKm returns the radius in km within which an earthquake of the
// given magnitude is considered to affect nearby places. The formula is
// illustrative and strictly increasing in magnitude; it must not be used for
// safety decisions.
func ThreatCircleKm(magnitude float64) float64 {
	miles := 20.0 * math.Pow(1.8, 2*magnitude-5)
	return miles * kmPerMile
}

// DepthTierOf maps a non-negative depth in km to its tier:
//   - shallow: < 70
//   - intermediate: 70 to < 300
//   - deep: ≥ 300
func DepthTierOf(depth float64) DepthTier {
	switch {
	case depth < thresholdIntermediate:
		return Shallow
	case depth < thresholdDeep:
		return Intermediate
	default:
		return Deep
	}
}

// MagnitudeBandOf maps a magnitude to minor (< 4), light (< 5) or moderate.
func MagnitudeBandOf(magnitude float64) MagnitudeBand {
	switch {
	case magnitude < thresholdLight:
		return Minor
	case magnitude < thresholdModerate:
		return Light
	default:
		return Moderate
	}
}
