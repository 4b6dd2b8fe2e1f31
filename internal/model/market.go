package model

import "strings"

// SlotRole names the four fixed positions of a per-region competitive
// matrix. Indirect candidates fill king/adjacent; direct candidates fill
// the two direct slots.
type SlotRole string

const (
	SlotCategoryKing SlotRole = "category_king"
	SlotAdjacent     SlotRole = "adjacent"
	SlotThemeMatch   SlotRole = "theme_match"
	SlotDirectLocal  SlotRole = "direct_local"
)

// MatrixSlot is one populated role in a region's competitive matrix.
// Unfilled roles are simply absent from the matrix; placeholder synthesis
// belongs to the presentation layer, never here.
type MatrixSlot struct {
	Role      SlotRole  `json:"role"`
	Candidate Candidate `json:"candidate"`
}

// AxisPosition is a point on the synthetic positioning plane
// (x = accessibility/price, y = production quality).
type AxisPosition struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Quadrant string `json:"quadrant"`
}

// RegionMarket is the per-region competitive view, computed once per run
// from the aggregated candidate set and immutable afterward.
//
// DirectCount counts direct candidates visible in this region's filtered
// view (GLOBAL inclusion counts); LocalDirectCount counts only direct
// candidates whose region set names this specific region.
type RegionMarket struct {
	Region           string       `json:"region"`
	Matrix           []MatrixSlot `json:"matrix"`
	UserPosition     AxisPosition `json:"user_position"`
	DirectCount      int          `json:"direct_count"`
	IndirectCount    int          `json:"indirect_count"`
	LocalDirectCount int          `json:"local_direct_count"`
	GapDetected      bool         `json:"gap_detected"`
}

// Slot returns the candidate filling role, if populated.
func (m *RegionMarket) Slot(role SlotRole) (Candidate, bool) {
	for _, s := range m.Matrix {
		if s.Role == role {
			return s.Candidate, true
		}
	}
	return Candidate{}, false
}

// Verdict is the traffic-light opportunity signal of a white-space report.
type Verdict string

const (
	VerdictGreen  Verdict = "GREEN"
	VerdictYellow Verdict = "YELLOW"
	VerdictRed    Verdict = "RED"
)

// ParseVerdict validates a model-provided verdict, ignoring case and
// defaulting to YELLOW.
func ParseVerdict(s string) Verdict {
	switch v := Verdict(strings.ToUpper(strings.TrimSpace(s))); v {
	case VerdictGreen, VerdictRed:
		return v
	default:
		return VerdictYellow
	}
}

// WhiteSpaceReport is the gap/opportunity narrative derived from all
// region markets at the end of a run.
type WhiteSpaceReport struct {
	GlobalSummary             string            `json:"global_summary"`
	PerRegionOpportunity      map[string]string `json:"per_region_opportunity"`
	PositioningRecommendation string            `json:"positioning_recommendation"`
	UnmetNeeds                []string          `json:"unmet_needs"`
	Verdict                   Verdict           `json:"verdict"`
}
