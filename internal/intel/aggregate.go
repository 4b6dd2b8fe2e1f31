package intel

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/brandscope/brandscope-cli/internal/model"
)

// NormalizeName produces the case-insensitive deduplication key for a
// candidate name. Unicode case folding rather than ASCII lowering, since
// brand names in non-Latin markets are common inputs.
func NormalizeName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Aggregate merges per-region candidate lists into one deduplicated set.
// Pure function: walks the lists in input order, keeps the first occurrence
// of each normalized name as the canonical record, and unions region
// membership from later occurrences. Candidates with empty names are
// dropped. Output order is first-seen order.
func Aggregate(resultsPerRegion [][]model.Candidate) []model.Candidate {
	var out []model.Candidate
	index := make(map[string]int)

	for _, regionList := range resultsPerRegion {
		for _, c := range regionList {
			key := NormalizeName(c.Name)
			if key == "" {
				continue
			}

			if i, seen := index[key]; seen {
				for _, r := range c.Regions {
					out[i].AddRegion(r)
				}
				continue
			}

			canonical := c
			canonical.Regions = append([]string(nil), c.Regions...)
			index[key] = len(out)
			out = append(out, canonical)
		}
	}

	return out
}
