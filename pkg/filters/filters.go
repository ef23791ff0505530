// Package filters holds the active filter selections and evaluates them
// against catalog entries. Values within an attribute are ORed, attributes
// are ANDed. Aggregate values (foundation projects, open source licenses)
// are expanded to literal values before they reach this package.
package filters

import (
	"sort"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
	"github.com/cncf/landscape2/go/explorer/pkg/facets"
)

// Selection is the accepted value set of one attribute. Absent accepts
// entries that have no value at all for the attribute.
type Selection struct {
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
	Absent bool     `json:"absent,omitempty" yaml:"absent,omitempty"`
}

// IsEmpty reports whether the selection constrains nothing.
func (s Selection) IsEmpty() bool {
	return len(s.Values) == 0 && !s.Absent
}

// Active maps an attribute to its accepted values. A missing key leaves the
// attribute unconstrained; an empty selection is equivalent to a missing key.
type Active map[catalog.Attribute]Selection

// Normalize drops empty selections and sorts and de-duplicates values.
func (a Active) Normalize() Active {
	out := make(Active, len(a))
	for attr, sel := range a {
		if sel.IsEmpty() {
			continue
		}
		out[attr] = Selection{Values: uniqueSorted(sel.Values), Absent: sel.Absent}
	}
	return out
}

// Attributes returns the constrained attributes, sorted.
func (a Active) Attributes() []catalog.Attribute {
	attrs := make([]catalog.Attribute, 0, len(a))
	for attr, sel := range a {
		if !sel.IsEmpty() {
			attrs = append(attrs, attr)
		}
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i] < attrs[j] })
	return attrs
}

// IsEmpty reports whether no attribute is constrained.
func (a Active) IsEmpty() bool {
	for _, sel := range a {
		if !sel.IsEmpty() {
			return false
		}
	}
	return true
}

type clause struct {
	attr   catalog.Attribute
	known  bool
	values map[string]struct{}
	absent bool
}

// Matcher is a compiled form of Active, reusable across groups.
type Matcher struct {
	clauses []clause
}

// Compile prepares the selections for evaluation.
func Compile(active Active) *Matcher {
	m := &Matcher{}
	for _, attr := range active.Attributes() {
		sel := active[attr]
		c := clause{
			attr:   attr,
			known:  attr.Known(),
			values: make(map[string]struct{}, len(sel.Values)),
			absent: sel.Absent,
		}
		for _, v := range sel.Values {
			c.values[v] = struct{}{}
		}
		m.clauses = append(m.clauses, c)
	}
	return m
}

// Admits reports whether the entry satisfies every clause. An attribute this
// package does not know matches no entry.
func (m *Matcher) Admits(e *catalog.Entry) bool {
	for _, c := range m.clauses {
		if !c.known {
			return false
		}
		values := e.Values(c.attr)
		if len(values) == 0 {
			if !c.absent {
				return false
			}
			continue
		}
		matched := false
		for _, v := range values {
			if _, ok := c.values[v]; ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Apply returns the admitted entries, preserving their order. The result is
// never nil.
func (m *Matcher) Apply(entries []*catalog.Entry) []*catalog.Entry {
	admitted := make([]*catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if m.Admits(e) {
			admitted = append(admitted, e)
		}
	}
	return admitted
}

// Apply filters entries with the given selections.
func Apply(entries []*catalog.Entry, active Active) []*catalog.Entry {
	return Compile(active).Apply(entries)
}

// Admits reports whether a single entry satisfies the selections.
func Admits(e *catalog.Entry, active Active) bool {
	return Compile(active).Admits(e)
}

// Clean drops every value the group's facets do not recognize, and every
// attribute the group does not offer. It runs when the user switches group,
// so that no filter chip is left matching nothing.
func Clean(active Active, opts *facets.Options) Active {
	out := make(Active, len(active))
	for attr, sel := range active {
		if !opts.HasAttribute(attr) {
			continue
		}
		kept := Selection{Absent: sel.Absent}
		for _, v := range sel.Values {
			if opts.Recognizes(attr, v) {
				kept.Values = append(kept.Values, v)
			}
		}
		if !kept.IsEmpty() {
			out[attr] = kept
		}
	}
	return out.Normalize()
}

func uniqueSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
