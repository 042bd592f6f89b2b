package loom

import (
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

// MarkerID is the stable handle external systems use to mutate or remove a
// marker. IDs are uuid-based (rather than incrementing integers) so a stale
// handle held across a buffer close/reopen can never alias a fresh marker.
type MarkerID uuid.UUID

func newMarkerID() MarkerID { return MarkerID(uuid.New()) }

func (id MarkerID) String() string { return uuid.UUID(id).String() }

// Affinity governs what happens when an insertion lands exactly on one of
// a marker's endpoints. AffinityRight means that endpoint moves forward
// with the insertion; AffinityLeft means it stays put and effectively
// absorbs the new material. Deletions ignore affinity.
type Affinity int

const (
	AffinityLeft Affinity = iota
	AffinityRight
)

// Confidence describes how trustworthy a LineIndex anchor's line number is.
type Confidence int

const (
	// Exact means the line number is known to be correct.
	Exact Confidence = iota
	// Estimated means the line number was derived from an average line
	// length and may be off by a bounded local error.
	Estimated
)

// MarkerPayload is the tagged-sum payload a Marker carries. The IntervalTree
// is generic over this interface, never over a payload class hierarchy.
type MarkerPayload interface {
	markerPayload()
}

// PositionPayload marks a bare byte position — the representation used for
// cursors and other position handles that do not need their own styling.
type PositionPayload struct {
	// OverlayID optionally names an Overlay marker this position is
	// logically attached to (e.g. a diagnostic's reported location).
	OverlayID *MarkerID
}

func (PositionPayload) markerPayload() {}

// LinePayload tags a marker with a line number and its confidence. The
// LineIndex keeps its own anchor list and does not create these markers.
type LinePayload struct {
	LineNumber int64
	Confidence Confidence
}

func (LinePayload) markerPayload() {}

// OverlayPayload marks a styled range such as a diagnostic, a search hit,
// or a highlighter-emitted span. Style uses tcell's styled-cell vocabulary
// so the Renderer can apply it to the output grid without translation.
type OverlayPayload struct {
	Style    tcell.Style
	Kind     string
	Priority int // later/higher-priority overlays win ties when merged
}

func (OverlayPayload) markerPayload() {}

// Marker is a single entry in the IntervalTree: a half-open byte interval
// with independent affinities for its two endpoints and a typed payload.
type Marker struct {
	ID            MarkerID
	Start, End    int64
	StartAffinity Affinity
	EndAffinity   Affinity
	Payload       MarkerPayload
}

// IsPoint reports whether the marker's interval is degenerate (a single
// position rather than a true range), as is typical for cursors and line
// markers.
func (m Marker) IsPoint() bool { return m.Start == m.End }
