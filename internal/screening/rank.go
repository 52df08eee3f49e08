package screening

import (
	"sort"

	"github.com/parcelworks/sitescreen/internal/model"
)

// Rank orders results best-first: 9% score descending, then 4% score
// descending, then federally eligible sites first, then site ID ascending.
// The final key is unique per batch, so ranking is fully deterministic.
func Rank(results []*model.ScoringResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score9Pct != b.Score9Pct {
			return a.Score9Pct > b.Score9Pct
		}
		if a.Score4Pct != b.Score4Pct {
			return a.Score4Pct > b.Score4Pct
		}
		if a.FederalEligible != b.FederalEligible {
			return a.FederalEligible
		}
		return a.SiteID < b.SiteID
	})
}
