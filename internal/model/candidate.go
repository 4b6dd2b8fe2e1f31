package model

import "strings"

// RegionGlobal is the sentinel region representing the worldwide view.
const RegionGlobal = "GLOBAL"

// SizeBucket is a coarse, model-asserted audience size for a competitor.
type SizeBucket string

const (
	SizeSmall  SizeBucket = "small"
	SizeMedium SizeBucket = "medium"
	SizeLarge  SizeBucket = "large"
)

// ParseSizeBucket normalizes a model-provided size string. Unknown values
// fall back to medium.
func ParseSizeBucket(s string) SizeBucket {
	switch SizeBucket(strings.ToLower(strings.TrimSpace(s))) {
	case SizeSmall:
		return SizeSmall
	case SizeLarge:
		return SizeLarge
	default:
		return SizeMedium
	}
}

// CompetitorCategory classifies a competitor relative to the evaluated
// brand's niche.
type CompetitorCategory string

const (
	// CategoryDirect competes in the same niche/theme as the brand.
	CategoryDirect CompetitorCategory = "direct"
	// CategoryIndirect shares the broad category but not the niche.
	CategoryIndirect CompetitorCategory = "indirect"
)

// Axis score defaults and bounds. Unscored candidates sit at the neutral
// midpoint (5,5).
const (
	AxisMin     = 1
	AxisMax     = 10
	AxisDefault = 5
)

// ClampAxis forces a raw score into the valid [1,10] range. Zero (the
// missing-value case in model output) maps to the neutral default.
func ClampAxis(v int) int {
	if v == 0 {
		return AxisDefault
	}
	if v < AxisMin {
		return AxisMin
	}
	if v > AxisMax {
		return AxisMax
	}
	return v
}

// Candidate is a named competitor discovered by the region search.
// Regions tracks every region whose search surfaced this name; it grows
// via aggregation and never shrinks.
type Candidate struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	SizeBucket  SizeBucket         `json:"size_bucket"`
	Regions     []string           `json:"regions"`
	Category    CompetitorCategory `json:"category"`
	X           int                `json:"x"`
	Y           int                `json:"y"`
	Reasoning   string             `json:"reasoning,omitempty"`
}

// NewCandidate constructs a Candidate with the unscored defaults
// (indirect, neutral axes) enforced at construction time.
func NewCandidate(name, description string, size SizeBucket, region string) Candidate {
	return Candidate{
		Name:        strings.TrimSpace(name),
		Description: description,
		SizeBucket:  size,
		Regions:     []string{region},
		Category:    CategoryIndirect,
		X:           AxisDefault,
		Y:           AxisDefault,
	}
}

// HasRegion reports whether this candidate was surfaced in region.
func (c *Candidate) HasRegion(region string) bool {
	for _, r := range c.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// AddRegion unions region into the candidate's region set.
func (c *Candidate) AddRegion(region string) {
	if !c.HasRegion(region) {
		c.Regions = append(c.Regions, region)
	}
}

// Score applies a classification result, clamping axes to the valid range.
func (c *Candidate) Score(category CompetitorCategory, x, y int, reasoning string) {
	if category == CategoryDirect {
		c.Category = CategoryDirect
	} else {
		c.Category = CategoryIndirect
	}
	c.X = ClampAxis(x)
	c.Y = ClampAxis(y)
	c.Reasoning = reasoning
}
