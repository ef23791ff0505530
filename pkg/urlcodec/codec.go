// Package urlcodec maps the explorer view state to and from URL query
// parameters so a view can be bookmarked and shared.
//
// Aggregate filter values live here and nowhere else: "foundation" stands for
// every maturity value of the catalog and "oss" for every license observed in
// the group. A selection exactly equal to the aggregate's expansion is written
// back as the aggregate.
package urlcodec

import (
	"net/url"
	"sort"
	"strings"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
	"github.com/cncf/landscape2/go/explorer/pkg/facets"
	"github.com/cncf/landscape2/go/explorer/pkg/filters"
	"github.com/cncf/landscape2/go/explorer/pkg/query"
)

// Parameter names besides the filter attributes.
const (
	ParamGroup         = "group"
	ParamView          = "view"
	ParamClassify      = "classify"
	ParamSort          = "sort"
	ParamSortDirection = "sort-direction"
)

// Aggregate values.
const (
	Foundation    = "foundation"
	NonFoundation = "non-foundation"
	OSS           = "oss"
	NonOSS        = "non-oss"
)

// State is everything a shareable explorer URL carries.
type State struct {
	Group    catalog.GroupRef
	View     query.View
	Classify facets.Dimension
	Sort     facets.Sort
	Filters  filters.Active
}

// Request turns the state into a query request.
func (s State) Request() query.Request {
	return query.Request{
		Filters:  s.Filters,
		Group:    s.Group,
		Classify: s.Classify,
		Sort:     s.Sort,
	}
}

// Parse decodes a raw query string, with or without the leading "?".
func Parse(raw string, idx *catalog.Index) (State, error) {
	q, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return State{}, err
	}
	return Decode(q, idx), nil
}

// Decode reads a view state. Missing or unknown parameters fall back to the
// defaults; an unknown group resolves to the catalog's default group.
func Decode(q url.Values, idx *catalog.Index) State {
	s := State{
		Group:    idx.DefaultGroup(),
		View:     query.ParseView(q.Get(ParamView)),
		Classify: facets.DefaultDimension,
		Sort:     facets.DefaultSort,
	}
	s.Group = Group(q, idx)
	if d, ok := facets.ParseDimension(q.Get(ParamClassify)); ok {
		s.Classify = d
	}
	if f, ok := facets.ParseSortField(q.Get(ParamSort)); ok {
		s.Sort.Field = f
	}
	if facets.SortDirection(q.Get(ParamSortDirection)) == facets.Desc {
		s.Sort.Direction = facets.Desc
	}
	s.Filters = DecodeFilters(q, idx, s.Group)
	return s
}

// Group returns the group the parameters select, or the catalog's default
// group when the name is missing or unknown.
func Group(q url.Values, idx *catalog.Index) catalog.GroupRef {
	if name := q.Get(ParamGroup); name != "" {
		if g := catalog.NamedGroup(name); idx.HasGroup(g) {
			return g
		}
	}
	return idx.DefaultGroup()
}

// Encode writes a view state. Defaults are omitted, so the empty state
// encodes to no parameter at all.
func Encode(s State, idx *catalog.Index) url.Values {
	q := EncodeFilters(s.Filters, idx, s.Group)
	if !s.Group.IsAll() {
		q.Set(ParamGroup, s.Group.Name())
	}
	if s.View == query.ViewCard {
		q.Set(ParamView, string(query.ViewCard))
	}
	if s.Classify != "" && s.Classify != facets.DefaultDimension {
		q.Set(ParamClassify, string(s.Classify))
	}
	if s.Sort.Field != "" && s.Sort.Field != facets.DefaultSort.Field {
		q.Set(ParamSort, string(s.Sort.Field))
	}
	if s.Sort.Direction == facets.Desc {
		q.Set(ParamSortDirection, string(facets.Desc))
	}
	return q
}

// String encodes the state as a query string with sorted keys.
func String(s State, idx *catalog.Index) string {
	return Encode(s, idx).Encode()
}

// DecodeFilters reads the filter parameters, expanding aggregates against the
// group. One parameter per attribute, repeated for several values. An empty
// value selects entries without the attribute. The bare "specification" and
// "enduser" flags fold into the extra attribute.
func DecodeFilters(q url.Values, idx *catalog.Index, group catalog.GroupRef) filters.Active {
	active := filters.Active{}
	for _, attr := range catalog.Attributes {
		var sel filters.Selection
		for _, v := range q[attr.String()] {
			v = strings.TrimSpace(v)
			switch {
			case v == "":
				sel.Absent = true
			case attr == catalog.AttrMaturity && v == Foundation:
				sel.Values = append(sel.Values, idx.AllMaturityValues()...)
			case attr == catalog.AttrMaturity && v == NonFoundation:
				sel.Absent = true
			case attr == catalog.AttrLicense && v == OSS:
				sel.Values = append(sel.Values, idx.LicenseValuesForGroup(group)...)
			case attr == catalog.AttrLicense && v == NonOSS:
				sel.Absent = true
			default:
				sel.Values = append(sel.Values, v)
			}
		}
		if attr == catalog.AttrExtra {
			for _, flag := range extraFlags {
				if flagSet(q, flag) {
					sel.Values = append(sel.Values, flag)
				}
			}
		}
		if !sel.IsEmpty() {
			active[attr] = sel
		}
	}
	return active.Normalize()
}

// EncodeFilters writes the filter parameters in a deterministic form, the
// inverse of DecodeFilters for the same group.
func EncodeFilters(active filters.Active, idx *catalog.Index, group catalog.GroupRef) url.Values {
	q := url.Values{}
	active = active.Normalize()
	for _, attr := range active.Attributes() {
		sel := active[attr]
		values := sel.Values
		key := attr.String()

		switch attr {
		case catalog.AttrMaturity:
			if sameSet(values, idx.AllMaturityValues()) {
				values = []string{Foundation}
			}
			if sel.Absent {
				values = append(values, NonFoundation)
			}
		case catalog.AttrLicense:
			if sameSet(values, idx.LicenseValuesForGroup(group)) {
				values = []string{OSS}
			}
			if sel.Absent {
				values = append(values, NonOSS)
			}
		case catalog.AttrExtra:
			var rest []string
			for _, v := range values {
				if v == catalog.ExtraSpecification || v == catalog.ExtraEndUser {
					q.Set(v, "true")
					continue
				}
				rest = append(rest, v)
			}
			values = rest
			if sel.Absent {
				values = append(values, "")
			}
		default:
			if sel.Absent {
				values = append(values, "")
			}
		}
		for _, v := range values {
			q.Add(key, v)
		}
	}
	return q
}

// Scoped returns the filters of q as seen by any group, aggregates expanded
// against that group. It is meant for query.Request.FiltersFor.
func Scoped(q url.Values, idx *catalog.Index) func(catalog.GroupRef) filters.Active {
	return func(g catalog.GroupRef) filters.Active {
		return DecodeFilters(q, idx, g)
	}
}

// CleanFilters drops the filter parameters a group cannot match: values its
// facets do not recognize and attributes it does not carry at all. Aggregate
// values are kept as written, they expand when decoded. Other parameters are
// copied unchanged.
func CleanFilters(q url.Values, opts *facets.Options) url.Values {
	out := make(url.Values, len(q))
	for key, values := range q {
		out[key] = append([]string(nil), values...)
	}
	for _, attr := range catalog.Attributes {
		if attr == catalog.AttrExtra {
			for _, flag := range extraFlags {
				if !opts.Recognizes(attr, flag) {
					delete(out, flag)
				}
			}
		}

		key := attr.String()
		values, ok := out[key]
		if !ok {
			continue
		}
		if !opts.HasAttribute(attr) {
			delete(out, key)
			continue
		}
		var kept []string
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" || isAggregate(attr, v) || opts.Recognizes(attr, v) {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			delete(out, key)
			continue
		}
		out[key] = kept
	}
	return out
}

var extraFlags = []string{catalog.ExtraSpecification, catalog.ExtraEndUser}

func isAggregate(attr catalog.Attribute, v string) bool {
	switch attr {
	case catalog.AttrMaturity:
		return v == Foundation || v == NonFoundation
	case catalog.AttrLicense:
		return v == OSS || v == NonOSS
	}
	return false
}

// Requested returns the attributes the parameters filter on, before any
// expansion. It lets a host pick the catalog tier before decoding, since an
// aggregate expands to nothing on a tier lacking the attribute.
func Requested(q url.Values) []catalog.Attribute {
	var attrs []catalog.Attribute
	for _, attr := range catalog.Attributes {
		_, ok := q[attr.String()]
		if !ok && attr == catalog.AttrExtra {
			ok = flagSet(q, catalog.ExtraSpecification) || flagSet(q, catalog.ExtraEndUser)
		}
		if ok {
			attrs = append(attrs, attr)
		}
	}
	return attrs
}

func flagSet(q url.Values, name string) bool {
	values, ok := q[name]
	if !ok {
		return false
	}
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "true", "1", "yes":
			return true
		}
	}
	return false
}

// sameSet compares a normalized selection with an expansion. Empty sets are
// never equal so that an empty catalog does not turn into an aggregate.
func sameSet(values, expansion []string) bool {
	if len(values) == 0 || len(values) != len(expansion) {
		return false
	}
	sorted := append([]string(nil), expansion...)
	sort.Strings(sorted)
	for i := range values {
		if values[i] != sorted[i] {
			return false
		}
	}
	return true
}
