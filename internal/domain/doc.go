// Package domain models earthquake feed data and the geography it is
// classified against.
//
// # Data Source
//
// Earthquakes come from the USGS summary feeds, published as Atom documents
// with GeoRSS extensions at https://earthquake.usgs.gov/earthquakes/feed/v1.0/.
// Country outlines and cities come from GeoJSON files loaded by the host.
// Parsing lives in package feed; this package only holds the records and the
// pure functions that operate on them.
//
// # Feed Conventions
//
// Location format:
//
//	<georss:point>"<lat> <lon>"</georss:point>  →  e.g. "38.8 -122.8"
//	Entries without a point (feed summaries) carry no event and are skipped.
//
// Magnitude:
//
//	Encoded in the title, e.g. "M 5.2 - 10km SSW of Idyllwild, CA".
//	Characters 2–4 hold the value for single-digit magnitudes. Anything else
//	falls back to the first numeric token of the title.
//
// Depth:
//
//	<georss:elev> is a signed elevation in meters, negative below sea level.
//	Depth in km is abs(trunc(elev/100)/10): quantized to 0.1 km before the
//	sign is dropped, so -10000 and 10000 both give 10.0.
//
// Age:
//
//	<category label="Age" term="Past Day"/>. Terms seen in the feed are
//	"Past Hour", "Past Day", "Past Week" and "Past Month".
//
// # Classification
//
// An event is on land when its location falls inside a country boundary.
// Boundaries are tested in the order they were loaded and the first match
// wins. The result is recorded in a write-once [Tags] ledger that is joined
// back onto the immutable events with [Join]; a second, conflicting write is
// a programming error and panics.
//
// Threat model:
//
//	ThreatCircleKm(m) = 20 · 1.8^(2m−5) · 1.6
//
//	Illustrative only. It is a proximity cutoff for filtering co-displayed
//	markers, not a hazard estimate.
//
// Depth tiers:
//
//	Shallow < 70 km ≤ Intermediate < 300 km ≤ Deep
package domain
