// Package classify arranges an admitted subset of the catalog into the nested
// shapes the grid and card views render, and synthesizes the card menu.
package classify

import "github.com/cncf/landscape2/go/explorer/pkg/catalog"

// Grid is the grid view projection: always category, subcategory, entries.
// Categories follow the group's declared order and subcategories the tree's
// (possibly overridden) order. Entry order is left untouched.
type Grid struct {
	Categories []GridCategory
}

type GridCategory struct {
	Name          string
	Subcategories []GridSubcategory
}

type GridSubcategory struct {
	Name    string
	Entries []*catalog.Entry
}

type gridKey struct {
	category    string
	subcategory string
}

// BuildGrid arranges the admitted entries of a group into the grid shape.
// Empty subcategories and categories are omitted.
func BuildGrid(idx *catalog.Index, group catalog.GroupRef, admitted []*catalog.Entry) *Grid {
	buckets := make(map[gridKey][]*catalog.Entry)
	for _, e := range admitted {
		key := gridKey{e.Category, e.Subcategory}
		buckets[key] = append(buckets[key], e)
	}

	grid := &Grid{Categories: []GridCategory{}}
	for _, name := range idx.CategoriesForGroup(group) {
		cat, ok := idx.Category(name)
		if !ok {
			continue
		}
		gc := GridCategory{Name: name}
		for _, sub := range cat.Subcategories {
			entries := buckets[gridKey{name, sub}]
			if len(entries) == 0 {
				continue
			}
			gc.Subcategories = append(gc.Subcategories, GridSubcategory{Name: sub, Entries: entries})
		}
		if len(gc.Subcategories) > 0 {
			grid.Categories = append(grid.Categories, gc)
		}
	}
	return grid
}

// Count returns the number of entries in the grid.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.Categories {
		for _, s := range c.Subcategories {
			n += len(s.Entries)
		}
	}
	return n
}
