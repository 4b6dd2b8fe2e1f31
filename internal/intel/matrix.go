package intel

import (
	"sort"
	"strings"

	"github.com/brandscope/brandscope-cli/internal/model"
)

// positioningAxis maps a caller-supplied positioning label to the brand's
// point on the accessibility/quality plane.
var positioningAxis = map[string]model.AxisPosition{
	"budget":    {X: 2, Y: 5},
	"value":     {X: 3, Y: 5},
	"mid-range": {X: 5, Y: 7},
	"premium":   {X: 7, Y: 8},
	"luxury":    {X: 9, Y: 9},
}

// quadrantMidpoint splits the 1-10 plane into the four quadrant labels.
const quadrantMidpoint = 6

// QuadrantLabel names the quadrant for an axis position.
func QuadrantLabel(x, y int) string {
	switch {
	case x >= quadrantMidpoint && y >= quadrantMidpoint:
		return "Premium Quality"
	case x < quadrantMidpoint && y >= quadrantMidpoint:
		return "Accessible Premium"
	case x >= quadrantMidpoint && y < quadrantMidpoint:
		return "Value Premium"
	default:
		return "Mass Market"
	}
}

// UserPosition resolves a positioning label into an axis position with its
// quadrant label. Unknown labels default to (5,7).
func UserPosition(positioning string) model.AxisPosition {
	pos, ok := positioningAxis[strings.ToLower(strings.TrimSpace(positioning))]
	if !ok {
		pos = model.AxisPosition{X: 5, Y: 7}
	}
	pos.Quadrant = QuadrantLabel(pos.X, pos.Y)
	return pos
}

// BuildMatrix filters the aggregated candidate set into one region's
// competitive matrix. Pure and synchronous: no I/O, no mutation of the
// input slice.
//
// Slot assignment: the two highest-quality indirect candidates take the
// category-king and adjacent slots; the two highest-quality direct
// candidates take the theme-match and direct-local slots. Ties keep
// aggregation order. Absent candidates leave slots unpopulated.
func BuildMatrix(candidates []model.Candidate, region string, userPos model.AxisPosition) model.RegionMarket {
	market := model.RegionMarket{
		Region:       region,
		UserPosition: userPos,
	}

	var direct, indirect []model.Candidate
	for _, c := range candidates {
		if region != model.RegionGlobal && !c.HasRegion(region) {
			continue
		}
		if c.Category == model.CategoryDirect {
			direct = append(direct, c)
			if c.HasRegion(region) {
				market.LocalDirectCount++
			}
		} else {
			indirect = append(indirect, c)
		}
	}

	sort.SliceStable(direct, func(i, j int) bool { return direct[i].Y > direct[j].Y })
	sort.SliceStable(indirect, func(i, j int) bool { return indirect[i].Y > indirect[j].Y })

	market.DirectCount = len(direct)
	market.IndirectCount = len(indirect)

	if len(indirect) > 0 {
		market.Matrix = append(market.Matrix, model.MatrixSlot{Role: model.SlotCategoryKing, Candidate: indirect[0]})
	}
	if len(indirect) > 1 {
		market.Matrix = append(market.Matrix, model.MatrixSlot{Role: model.SlotAdjacent, Candidate: indirect[1]})
	}
	if len(direct) > 0 {
		market.Matrix = append(market.Matrix, model.MatrixSlot{Role: model.SlotThemeMatch, Candidate: direct[0]})
	}
	if len(direct) > 1 {
		market.Matrix = append(market.Matrix, model.MatrixSlot{Role: model.SlotDirectLocal, Candidate: direct[1]})
	}

	market.GapDetected = market.DirectCount == 0 || market.LocalDirectCount == 0
	return market
}
