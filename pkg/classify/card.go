package classify

import (
	"sort"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
	"github.com/cncf/landscape2/go/explorer/pkg/facets"
)

// Card is the card view projection. Its depth depends on the dimension:
// none yields a flat Entries list; category yields two levels of Sections;
// maturity and tag yield one level.
type Card struct {
	Dimension facets.Dimension
	Entries   []*catalog.Entry
	Sections  []Section
}

// Section is a bucket of the card projection. Leaf sections carry entries,
// category sections carry subsections.
type Section struct {
	Key         string
	Entries     []*catalog.Entry
	Subsections []Section
}

// MenuItem is a table of contents entry: a top level key and the second
// level keys present below it.
type MenuItem struct {
	Title     string   `json:"title" yaml:"title"`
	Subtitles []string `json:"subtitles" yaml:"subtitles"`
}

// Menu is the ordered navigation menu of a card projection.
type Menu []MenuItem

// First returns the default navigation target.
func (m Menu) First() (title, subtitle string, ok bool) {
	if len(m) == 0 {
		return "", "", false
	}
	if len(m[0].Subtitles) > 0 {
		subtitle = m[0].Subtitles[0]
	}
	return m[0].Title, subtitle, true
}

// CardResult bundles a card projection with its menu and entry count, all
// computed in the same pass.
type CardResult struct {
	Card  *Card
	Menu  Menu
	Count int
}

// BuildCard arranges admitted entries into the card shape for dim, sorting
// each leaf list with s. An unknown dimension is treated as category.
func BuildCard(idx *catalog.Index, admitted []*catalog.Entry, dim facets.Dimension, s facets.Sort) CardResult {
	switch dim {
	case facets.DimensionNone:
		entries := append(make([]*catalog.Entry, 0, len(admitted)), admitted...)
		sortEntries(entries, s)
		return CardResult{
			Card:  &Card{Dimension: dim, Entries: entries, Sections: []Section{}},
			Menu:  Menu{},
			Count: len(entries),
		}
	case facets.DimensionMaturity:
		return buildFlatSections(admitted, dim, s, func(e *catalog.Entry) string { return e.Maturity },
			func(keys []string) { sortMaturityKeys(idx, keys) })
	case facets.DimensionTag:
		return buildFlatSections(admitted, dim, s, func(e *catalog.Entry) string { return e.Tag },
			sortAlphabetical)
	default:
		return buildCategorySections(admitted, s)
	}
}

func buildFlatSections(admitted []*catalog.Entry, dim facets.Dimension, s facets.Sort,
	keyOf func(*catalog.Entry) string, sortKeys func([]string)) CardResult {
	buckets := make(map[string][]*catalog.Entry)
	var keys []string
	for _, e := range admitted {
		key := keyOf(e)
		if key == "" {
			key = catalog.Undefined
		}
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], e)
	}
	sortKeys(keys)

	res := CardResult{Card: &Card{Dimension: dim, Sections: []Section{}}, Menu: Menu{}}
	for _, key := range keys {
		entries := buckets[key]
		sortEntries(entries, s)
		res.Card.Sections = append(res.Card.Sections, Section{Key: key, Entries: entries})
		res.Menu = append(res.Menu, MenuItem{Title: key, Subtitles: []string{}})
		res.Count += len(entries)
	}
	return res
}

func buildCategorySections(admitted []*catalog.Entry, s facets.Sort) CardResult {
	buckets := make(map[string]map[string][]*catalog.Entry)
	for _, e := range admitted {
		subs, ok := buckets[e.Category]
		if !ok {
			subs = make(map[string][]*catalog.Entry)
			buckets[e.Category] = subs
		}
		subs[e.Subcategory] = append(subs[e.Subcategory], e)
	}

	categories := make([]string, 0, len(buckets))
	for name := range buckets {
		categories = append(categories, name)
	}
	sortAlphabetical(categories)

	res := CardResult{Card: &Card{Dimension: facets.DimensionCategory, Sections: []Section{}}, Menu: Menu{}}
	for _, name := range categories {
		subs := buckets[name]
		subNames := make([]string, 0, len(subs))
		for sub := range subs {
			subNames = append(subNames, sub)
		}
		sortAlphabetical(subNames)

		section := Section{Key: name}
		item := MenuItem{Title: name, Subtitles: make([]string, 0, len(subNames))}
		for _, sub := range subNames {
			entries := subs[sub]
			sortEntries(entries, s)
			section.Subsections = append(section.Subsections, Section{Key: sub, Entries: entries})
			item.Subtitles = append(item.Subtitles, sub)
			res.Count += len(entries)
		}
		res.Card.Sections = append(res.Card.Sections, section)
		res.Menu = append(res.Menu, item)
	}
	return res
}

// Count returns the number of entries in the leaves of the projection.
func (c *Card) Count() int {
	if c.Dimension == facets.DimensionNone {
		return len(c.Entries)
	}
	return countSections(c.Sections)
}

func countSections(sections []Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Entries) + countSections(s.Subsections)
	}
	return n
}

func sortAlphabetical(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := facets.LastRank(keys[i]), facets.LastRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return facets.FoldLess(keys[i], keys[j])
	})
}

// sortMaturityKeys follows the lifecycle order; archived and then the
// undefined bucket go last.
func sortMaturityKeys(idx *catalog.Index, keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := facets.LastRank(keys[i]), facets.LastRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		mi, mj := idx.MaturityRank(keys[i]), idx.MaturityRank(keys[j])
		if mi != mj {
			return mi < mj
		}
		return keys[i] < keys[j]
	})
}
