package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"k8s.io/klog/v2"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
	"github.com/cncf/landscape2/go/explorer/pkg/facets"
	"github.com/cncf/landscape2/go/explorer/pkg/loader"
	"github.com/cncf/landscape2/go/explorer/pkg/query"
	"github.com/cncf/landscape2/go/explorer/pkg/search"
	"github.com/cncf/landscape2/go/explorer/pkg/urlcodec"
)

var errItemNotFound = errors.New("item not found")

// session answers explorer requests against the catalog of one loader. The
// CLI commands and the MCP tools share it.
type session struct {
	loader      *loader.Loader
	facets      *facets.Cache
	searchLimit int

	mu       sync.Mutex
	searcher *search.Searcher
	indexed  uint64
}

func newSessionWithLoader(l *loader.Loader, searchLimit int) *session {
	return &session{
		loader:      l,
		facets:      facets.NewCache(),
		searchLimit: searchLimit,
	}
}

// index returns the index to answer with. A failed promotion is logged and
// the request is answered from the tier already loaded.
func (s *session) index(ctx context.Context, view query.View, attrs []catalog.Attribute) (*catalog.Index, error) {
	idx, err := s.loader.Resolve(ctx, view, attrs)
	if idx == nil {
		return nil, err
	}
	if err != nil {
		klog.FromContext(ctx).Error(err, "full catalog unavailable, answering from the base tier")
	}
	return idx, nil
}

func (s *session) tierOf(idx *catalog.Index) loader.Tier {
	if current, tier, ok := s.loader.Current(); ok && current == idx {
		return tier
	}
	return loader.Base
}

// buildQuery parses a query string and applies the explicit overrides on
// top of it. Empty overrides are ignored.
func buildQuery(raw string, overrides map[string]string) (url.Values, error) {
	q, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", raw, err)
	}
	for key, value := range overrides {
		if value != "" {
			q.Set(key, value)
		}
	}
	return q, nil
}

// query runs a view state encoded as query parameters. Filter values the
// selected group cannot match are dropped first; aggregates survive and are
// expanded for every group on its own.
func (s *session) query(ctx context.Context, q url.Values) (*queryView, error) {
	view := query.ParseView(q.Get(urlcodec.ParamView))
	idx, err := s.index(ctx, view, urlcodec.Requested(q))
	if err != nil {
		return nil, err
	}

	engine := query.NewWithCache(idx, s.facets)
	q = urlcodec.CleanFilters(q, engine.Facets(urlcodec.Group(q, idx)))
	state := urlcodec.Decode(q, idx)
	req := state.Request()
	req.FiltersFor = urlcodec.Scoped(q, idx)
	res := engine.Query(req)

	sel := res.Selected()
	state.Group = res.Active
	state.Classify = sel.Classify
	state.Sort = sel.Sort
	return newQueryView(idx, s.tierOf(idx), state, res), nil
}

// listFacets returns the filter options of a group; an empty name selects
// the default group.
func (s *session) listFacets(ctx context.Context, group string) (*facets.Options, error) {
	idx, err := s.index(ctx, query.ViewCard, nil)
	if err != nil {
		return nil, err
	}
	engine := query.NewWithCache(idx, s.facets)
	ref := idx.DefaultGroup()
	if group != "" {
		ref = engine.ResolveGroup(catalog.NamedGroup(group))
	}
	return engine.Facets(ref), nil
}

func (s *session) search(ctx context.Context, text string, limit int) ([]searchResultView, error) {
	idx, err := s.index(ctx, query.ViewCard, nil)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.searchLimit
	}

	s.mu.Lock()
	if s.searcher == nil || s.indexed != idx.Version() {
		s.searcher = search.New(idx)
		s.indexed = idx.Version()
	}
	searcher := s.searcher
	s.mu.Unlock()

	results := searcher.Search(text, limit)
	out := make([]searchResultView, 0, len(results))
	for _, r := range results {
		out = append(out, searchResultView{entrySummary: summarize(r.Entry), Score: r.Score})
	}
	return out, nil
}

func (s *session) item(ctx context.Context, id string) (*itemView, error) {
	idx, err := s.index(ctx, query.ViewCard, nil)
	if err != nil {
		return nil, err
	}
	e, ok := idx.Entry(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errItemNotFound, id)
	}
	return newItemView(e), nil
}
