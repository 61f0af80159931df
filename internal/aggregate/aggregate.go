// Package aggregate computes per-entity audio feature means.
package aggregate

import (
	"slices"
	"strings"

	"github.com/justestif/spotify-history-warehouse/internal/db"
)

// MeanByOwner groups feature vectors by owner and averages every column.
// Owners appear once, sorted by id. Owners without rows are absent.
func MeanByOwner(rows []db.OwnedFeatures) []db.FeatureAggregate {
	type acc struct {
		sums  []float64
		count int
	}

	groups := make(map[string]*acc)
	for _, r := range rows {
		g, ok := groups[r.OwnerID]
		if !ok {
			g = &acc{sums: make([]float64, len(r.Values))}
			groups[r.OwnerID] = g
		}
		for i, v := range r.Values {
			if i < len(g.sums) {
				g.sums[i] += v
			}
		}
		g.count++
	}

	out := make([]db.FeatureAggregate, 0, len(groups))
	for owner, g := range groups {
		means := make([]float64, len(g.sums))
		for i, s := range g.sums {
			means[i] = s / float64(g.count)
		}
		out = append(out, db.FeatureAggregate{OwnerID: owner, Means: means})
	}

	slices.SortFunc(out, func(a, b db.FeatureAggregate) int {
		return strings.Compare(a.OwnerID, b.OwnerID)
	})
	return out
}
