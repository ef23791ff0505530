// Package facets derives, per group, which filter sections and which
// classify/sort dimensions are worth presenting. Facets are computed from the
// group's unfiltered entries, so selecting a filter value never hides an
// unrelated facet.
package facets

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
)

// Option is a selectable filter value.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Section is the list of options for one filter attribute.
type Section struct {
	Attribute catalog.Attribute `json:"attribute" yaml:"attribute"`
	Options   []Option          `json:"options" yaml:"options"`
}

// Options is the facet builder's output for one group.
type Options struct {
	Group    catalog.GroupRef `json:"group" yaml:"group"`
	Sections []Section        `json:"sections" yaml:"sections"`
	Classify []Dimension      `json:"classify" yaml:"classify"`
	Sort     []SortField      `json:"sort" yaml:"sort"`

	recognized map[catalog.Attribute]map[string]struct{}
}

// Casers keep state and must not be shared between goroutines.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// Build computes the facet options of a group in a single pass over its
// unfiltered entries. Attributes without any value are omitted.
func Build(idx *catalog.Index, group catalog.GroupRef) *Options {
	values := make(map[catalog.Attribute]map[string]struct{}, len(catalog.Attributes))
	for _, attr := range catalog.Attributes {
		values[attr] = make(map[string]struct{})
	}
	var hasStars, hasContributors, hasFunding, hasDate bool

	for _, e := range idx.EntriesForGroup(group) {
		for _, attr := range catalog.Attributes {
			for _, v := range e.Values(attr) {
				values[attr][v] = struct{}{}
			}
		}
		if _, ok := e.Stars(); ok {
			hasStars = true
		}
		if _, ok := e.Contributors(); ok {
			hasContributors = true
		}
		if _, ok := e.Funding(); ok {
			hasFunding = true
		}
		if e.AcceptedAt != nil {
			hasDate = true
		}
	}

	opts := &Options{
		Group:      group,
		Sections:   []Section{},
		Classify:   []Dimension{DimensionNone, DimensionCategory},
		Sort:       []SortField{SortName},
		recognized: values,
	}
	for _, attr := range catalog.Attributes {
		set := values[attr]
		if len(set) == 0 {
			continue
		}
		section := Section{Attribute: attr, Options: make([]Option, 0, len(set))}
		for v := range set {
			section.Options = append(section.Options, Option{Value: v, Label: Label(attr, v)})
		}
		sortOptions(attr, section.Options)
		opts.Sections = append(opts.Sections, section)
	}

	if len(values[catalog.AttrMaturity]) > 0 {
		opts.Classify = append(opts.Classify, DimensionMaturity)
	}
	if len(values[catalog.AttrTag]) > 0 {
		opts.Classify = append(opts.Classify, DimensionTag)
	}
	if hasStars {
		opts.Sort = append(opts.Sort, SortStars)
	}
	if hasContributors {
		opts.Sort = append(opts.Sort, SortContributors)
	}
	if hasFunding {
		opts.Sort = append(opts.Sort, SortFunding)
	}
	if hasDate {
		opts.Sort = append(opts.Sort, SortDate)
	}
	return opts
}

// Label renders a display label for an attribute value.
func Label(attr catalog.Attribute, value string) string {
	switch attr {
	case catalog.AttrMaturity, catalog.AttrOrgType:
		return title(strings.ReplaceAll(value, "_", " "))
	case catalog.AttrTag:
		return title(strings.ReplaceAll(value, "-", " "))
	case catalog.AttrExtra:
		if value == catalog.ExtraEndUser {
			return "End User"
		}
		return title(value)
	}
	return value
}

// Empty reports whether the group offers no filter at all.
func (o *Options) Empty() bool {
	return len(o.Sections) == 0
}

// Section returns the section for an attribute, if the group has one.
func (o *Options) Section(attr catalog.Attribute) (Section, bool) {
	for _, s := range o.Sections {
		if s.Attribute == attr {
			return s, true
		}
	}
	return Section{}, false
}

// Recognizes reports whether value occurs for attr in the group.
func (o *Options) Recognizes(attr catalog.Attribute, value string) bool {
	set, ok := o.recognized[attr]
	if !ok {
		return false
	}
	_, ok = set[value]
	return ok
}

// HasAttribute reports whether the group offers a section for attr.
func (o *Options) HasAttribute(attr catalog.Attribute) bool {
	return len(o.recognized[attr]) > 0
}

// SupportsClassify reports whether d is meaningful for the group.
func (o *Options) SupportsClassify(d Dimension) bool {
	for _, c := range o.Classify {
		if c == d {
			return true
		}
	}
	return false
}

// SupportsSort reports whether f is meaningful for the group.
func (o *Options) SupportsSort(f SortField) bool {
	for _, s := range o.Sort {
		if s == f {
			return true
		}
	}
	return false
}

// ResolveClassify returns d when supported and the group default otherwise.
func (o *Options) ResolveClassify(d Dimension) Dimension {
	if o.SupportsClassify(d) {
		return d
	}
	return DefaultDimension
}

// ResolveSort returns s when supported and the default sort otherwise.
func (o *Options) ResolveSort(s Sort) Sort {
	if !o.SupportsSort(s.Field) {
		return DefaultSort
	}
	if s.Direction != Desc {
		s.Direction = Asc
	}
	return s
}

// LastRank pushes the archived and undefined buckets after everything else.
func LastRank(key string) int {
	switch strings.ToLower(key) {
	case catalog.MaturityArchived:
		return 1
	case catalog.Undefined:
		return 2
	}
	return 0
}

// FoldLess compares two strings ignoring case, falling back to a byte
// comparison so that the order is total.
func FoldLess(a, b string) bool {
	fa, fb := fold(a), fold(b)
	if fa != fb {
		return fa < fb
	}
	return a < b
}

// sortOptions orders options by label. Only the maturity and tag sections
// carry the archived and undefined buckets, which go last.
func sortOptions(attr catalog.Attribute, options []Option) {
	bucketed := attr == catalog.AttrMaturity || attr == catalog.AttrTag
	sort.Slice(options, func(i, j int) bool {
		if bucketed {
			ri, rj := LastRank(options[i].Value), LastRank(options[j].Value)
			if ri != rj {
				return ri < rj
			}
		}
		return FoldLess(options[i].Label, options[j].Label)
	})
}
