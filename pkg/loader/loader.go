// Package loader implements staged catalog loading. A lightweight base tier
// answers most grid queries; the full tier is fetched on demand. Promotion is
// one-way, each tier is fetched at most once at a time, and a failed tier is
// not retried.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
	"k8s.io/klog/v2"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
	"github.com/cncf/landscape2/go/explorer/pkg/query"
)

// Tier is the size of a catalog payload.
type Tier int

const (
	Base Tier = iota
	Full
)

func (t Tier) String() string {
	if t == Full {
		return "full"
	}
	return "base"
}

// ErrTierUnavailable is returned when a tier has no source or failed to load.
var ErrTierUnavailable = errors.New("catalog tier unavailable")

// BaseAttributes are the filter attributes the base tier carries.
var BaseAttributes = map[catalog.Attribute]bool{
	catalog.AttrMaturity: true,
	catalog.AttrTag:      true,
}

// NeedsFull reports whether a view state requires the full tier: the card
// view always does, and so does a filter on any attribute missing from the
// base tier. attrs are the filtered attributes, see filters.Active.Attributes.
func NeedsFull(view query.View, attrs []catalog.Attribute) bool {
	if view == query.ViewCard {
		return true
	}
	for _, attr := range attrs {
		if !BaseAttributes[attr] {
			return true
		}
	}
	return false
}

type tierState struct {
	idx *catalog.Index
	err error
}

// Loader owns the catalog indexes of a session.
type Loader struct {
	sources [2]Source
	flight  singleflight.Group

	mu    sync.Mutex
	tiers [2]tierState
}

// New creates a loader. Either source may be nil; a missing base tier is
// served by the full one.
func New(base, full Source) *Loader {
	return &Loader{sources: [2]Source{base, full}}
}

// Current returns the most complete index loaded so far.
func (l *Loader) Current() (*catalog.Index, Tier, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx := l.tiers[Full].idx; idx != nil {
		return idx, Full, true
	}
	if idx := l.tiers[Base].idx; idx != nil {
		return idx, Base, true
	}
	return nil, Base, false
}

// Ensure returns an index at least as complete as tier, fetching it if
// needed. Concurrent callers share a single fetch per tier. A failure is
// remembered and returned to every later caller without retrying, except
// when the fetch was abandoned because its context was cancelled.
func (l *Loader) Ensure(ctx context.Context, tier Tier) (*catalog.Index, error) {
	if idx, loaded, ok := l.Current(); ok && loaded >= tier {
		return idx, nil
	}
	if tier == Base && l.sources[Base] == nil {
		tier = Full
	}

	l.mu.Lock()
	err := l.tiers[tier].err
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if l.sources[tier] == nil {
		return nil, fmt.Errorf("%w: no %s source configured", ErrTierUnavailable, tier)
	}

	v, err, _ := l.flight.Do(tier.String(), func() (interface{}, error) {
		return l.load(ctx, tier)
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalog.Index), nil
}

func (l *Loader) load(ctx context.Context, tier Tier) (*catalog.Index, error) {
	log := klog.FromContext(ctx)

	l.mu.Lock()
	if st := l.tiers[tier]; st.idx != nil || st.err != nil {
		l.mu.Unlock()
		return st.idx, st.err
	}
	l.mu.Unlock()

	src := l.sources[tier]
	log.Info("fetching catalog", "tier", tier, "source", src.String())
	idx, err := fetchIndex(ctx, src)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrTierUnavailable, tier, err)
		if ctx.Err() != nil {
			return nil, err
		}
		log.Error(err, "catalog tier failed, it will not be retried", "tier", tier)
	} else {
		log.Info("catalog loaded", "tier", tier, "entries", len(idx.Entries()), "version", idx.Version())
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tiers[tier] = tierState{idx: idx, err: err}
	return idx, err
}

func fetchIndex(ctx context.Context, src Source) (*catalog.Index, error) {
	raw, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load data source: %w", err)
	}
	c, err := catalog.Parse(raw)
	if err != nil {
		return nil, err
	}
	return catalog.Build(c)
}

// Resolve returns the index to run a query for the given view state with,
// promoting to the full tier when NeedsFull says so. When promotion fails the
// best index already loaded is returned together with the promotion error,
// so the host can keep working on it.
func (l *Loader) Resolve(ctx context.Context, view query.View, attrs []catalog.Attribute) (*catalog.Index, error) {
	tier := Base
	if NeedsFull(view, attrs) {
		tier = Full
	}
	idx, err := l.Ensure(ctx, tier)
	if err == nil || tier == Base {
		return idx, err
	}
	if fallback, _, ok := l.Current(); ok {
		return fallback, err
	}
	if base, baseErr := l.Ensure(ctx, Base); baseErr == nil {
		return base, err
	}
	return nil, err
}

// Overlay replaces the session's catalog with a different payload. The new
// index is treated as complete.
func (l *Loader) Overlay(ctx context.Context, data []byte) (*catalog.Index, error) {
	c, err := catalog.Parse(data)
	if err != nil {
		return nil, err
	}
	idx, err := catalog.Build(c)
	if err != nil {
		return nil, err
	}
	klog.FromContext(ctx).Info("catalog overlay loaded", "entries", len(idx.Entries()), "version", idx.Version())

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tiers[Base] = tierState{}
	l.tiers[Full] = tierState{idx: idx}
	return idx, nil
}
