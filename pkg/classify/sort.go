package classify

import (
	"sort"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
	"github.com/cncf/landscape2/go/explorer/pkg/facets"
)

// sortEntries orders a card leaf list. Entries lacking the sort metric go
// after those having it regardless of direction; ties break on name and id.
func sortEntries(entries []*catalog.Entry, s facets.Sort) {
	desc := s.Direction == facets.Desc
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if s.Field != facets.SortName && s.Field != "" {
			va, oka := metric(a, s.Field)
			vb, okb := metric(b, s.Field)
			if oka != okb {
				return oka
			}
			if va != vb {
				if desc {
					return va > vb
				}
				return va < vb
			}
		} else if a.Name != b.Name {
			if desc {
				return facets.FoldLess(b.Name, a.Name)
			}
			return facets.FoldLess(a.Name, b.Name)
		}
		if a.Name != b.Name {
			return facets.FoldLess(a.Name, b.Name)
		}
		return a.ID < b.ID
	})
}

func metric(e *catalog.Entry, field facets.SortField) (int64, bool) {
	switch field {
	case facets.SortStars:
		return e.Stars()
	case facets.SortContributors:
		return e.Contributors()
	case facets.SortFunding:
		return e.Funding()
	case facets.SortDate:
		if e.AcceptedAt == nil {
			return 0, false
		}
		return e.AcceptedAt.Unix(), true
	}
	return 0, false
}
