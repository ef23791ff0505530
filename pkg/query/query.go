// Package query coordinates the filter evaluator and the classifier: one
// call filters every group once and builds both the grid and the card
// projections, so switching view mode never requires recomputation.
package query

import (
	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
	"github.com/cncf/landscape2/go/explorer/pkg/classify"
	"github.com/cncf/landscape2/go/explorer/pkg/facets"
	"github.com/cncf/landscape2/go/explorer/pkg/filters"
)

// View is the layout the user is looking at.
type View string

const (
	ViewGrid View = "grid"
	ViewCard View = "card"
)

// ParseView returns the view named s, defaulting to the grid.
func ParseView(s string) View {
	if View(s) == ViewCard {
		return ViewCard
	}
	return ViewGrid
}

// Request is a snapshot of the host's view state.
type Request struct {
	Filters  filters.Active
	Group    catalog.GroupRef
	Classify facets.Dimension
	Sort     facets.Sort

	// FiltersFor, when set, supplies the filters of each group and Filters
	// is ignored. Selections whose values depend on the group, like an
	// aggregate expanded against the group's licenses, go through it so that
	// every group is counted with its own expansion.
	FiltersFor func(catalog.GroupRef) filters.Active
}

// GroupResult holds everything a group's views need.
type GroupResult struct {
	Group    catalog.GroupRef
	Count    int
	Grid     *classify.Grid
	Card     *classify.Card
	Menu     classify.Menu
	Classify facets.Dimension
	Sort     facets.Sort
}

// Result is the coordinated output of Query. Groups follows the catalog's
// group order; NumItems carries the same counts keyed by group.
type Result struct {
	Active   catalog.GroupRef
	Groups   []GroupResult
	NumItems map[catalog.GroupRef]int
}

// Group returns the result of a single group.
func (r *Result) Group(g catalog.GroupRef) (*GroupResult, bool) {
	for i := range r.Groups {
		if r.Groups[i].Group == g {
			return &r.Groups[i], true
		}
	}
	return nil, false
}

// Selected returns the result of the active group.
func (r *Result) Selected() *GroupResult {
	gr, _ := r.Group(r.Active)
	return gr
}

// Engine runs queries against one catalog index. It only reads the index and
// memoizes facets, so it is safe to share.
type Engine struct {
	idx    *catalog.Index
	facets *facets.Cache
}

func New(idx *catalog.Index) *Engine {
	return &Engine{idx: idx, facets: facets.NewCache()}
}

// NewWithCache shares a facet cache across engines built on successive
// indexes.
func NewWithCache(idx *catalog.Index, cache *facets.Cache) *Engine {
	return &Engine{idx: idx, facets: cache}
}

func (e *Engine) Index() *catalog.Index {
	return e.idx
}

// Facets returns the facet options of a group.
func (e *Engine) Facets(group catalog.GroupRef) *facets.Options {
	return e.facets.Get(e.idx, group)
}

// ResolveGroup returns g when the catalog knows it and the default group
// otherwise.
func (e *Engine) ResolveGroup(g catalog.GroupRef) catalog.GroupRef {
	for _, known := range e.idx.Groups() {
		if known == g {
			return g
		}
	}
	return e.idx.DefaultGroup()
}

// ChangeGroup returns the filters to keep when switching to group: values the
// group's facets do not recognize are dropped.
func (e *Engine) ChangeGroup(active filters.Active, group catalog.GroupRef) filters.Active {
	return filters.Clean(active, e.Facets(e.ResolveGroup(group)))
}

// Query filters every group once and projects the admitted entries into the
// grid shape and the requested card shape. Classify and sort requests a
// group cannot honor fall back to the group defaults.
func (e *Engine) Query(req Request) *Result {
	shared := filters.Compile(req.Filters)
	groups := e.idx.Groups()

	res := &Result{
		Active:   e.ResolveGroup(req.Group),
		Groups:   make([]GroupResult, 0, len(groups)),
		NumItems: make(map[catalog.GroupRef]int, len(groups)),
	}
	for _, g := range groups {
		opts := e.Facets(g)
		dim := opts.ResolveClassify(req.Classify)
		sort := opts.ResolveSort(req.Sort)

		matcher := shared
		if req.FiltersFor != nil {
			matcher = filters.Compile(req.FiltersFor(g))
		}
		admitted := matcher.Apply(e.idx.EntriesForGroup(g))
		card := classify.BuildCard(e.idx, admitted, dim, sort)

		res.Groups = append(res.Groups, GroupResult{
			Group:    g,
			Count:    len(admitted),
			Grid:     classify.BuildGrid(e.idx, g, admitted),
			Card:     card.Card,
			Menu:     card.Menu,
			Classify: dim,
			Sort:     sort,
		})
		res.NumItems[g] = len(admitted)
	}
	return res
}
