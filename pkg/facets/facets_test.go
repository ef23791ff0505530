package facets

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
)

func int64p(v int64) *int64 { return &v }

func buildIndex(t *testing.T) *catalog.Index {
	t.Helper()
	c := &catalog.Catalog{
		Categories: []catalog.Category{
			{Name: "Runtime", Subcategories: []string{"Container Runtime"}},
			{Name: "Members", Subcategories: []string{"Gold"}},
		},
		Groups: []catalog.Group{
			{Name: "projects", Categories: []string{"Runtime"}},
			{Name: "members", Categories: []string{"Members"}},
		},
		Entries: []*catalog.Entry{
			{ID: "a", Name: "a", Category: "Runtime", Subcategory: "Container Runtime", Maturity: "archived", Tag: "runtime",
				Repositories: []catalog.Repository{{URL: "u1", License: "Apache-2.0", Stars: int64p(3)}}},
			{ID: "b", Name: "b", Category: "Runtime", Subcategory: "Container Runtime", Maturity: "graduated",
				Repositories: []catalog.Repository{{URL: "u2", License: "Apache-2.0"}, {URL: "u3", License: "MIT"}}},
			{ID: "c", Name: "c", Category: "Runtime", Subcategory: "Container Runtime", Maturity: "incubating", Specification: true},
			{ID: "m", Name: "m", Category: "Members", Subcategory: "Gold",
				Organization: &catalog.Organization{Name: "acme", Country: "Spain", Kind: "non_profit"}},
			{ID: "n", Name: "n", Category: "Members", Subcategory: "Gold",
				Organization: &catalog.Organization{Name: "Beta", Country: "france"}},
		},
	}
	idx, err := catalog.Build(c)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return idx
}

func TestBuildSections(t *testing.T) {
	idx := buildIndex(t)
	opts := Build(idx, catalog.NamedGroup("projects"))

	want := []Section{
		{Attribute: catalog.AttrMaturity, Options: []Option{
			{Value: "graduated", Label: "Graduated"},
			{Value: "incubating", Label: "Incubating"},
			{Value: "archived", Label: "Archived"},
		}},
		{Attribute: catalog.AttrTag, Options: []Option{{Value: "runtime", Label: "Runtime"}}},
		{Attribute: catalog.AttrLicense, Options: []Option{
			{Value: "Apache-2.0", Label: "Apache-2.0"},
			{Value: "MIT", Label: "MIT"},
		}},
		{Attribute: catalog.AttrExtra, Options: []Option{{Value: "specification", Label: "Specification"}}},
	}
	if diff := cmp.Diff(want, opts.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}

	wantClassify := []Dimension{DimensionNone, DimensionCategory, DimensionMaturity, DimensionTag}
	if diff := cmp.Diff(wantClassify, opts.Classify); diff != "" {
		t.Errorf("classify mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]SortField{SortName, SortStars}, opts.Sort); diff != "" {
		t.Errorf("sort mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSortsLabelsIgnoringCase(t *testing.T) {
	idx := buildIndex(t)
	opts := Build(idx, catalog.NamedGroup("members"))

	orgs, ok := opts.Section(catalog.AttrOrganization)
	if !ok {
		t.Fatal("expected organization section")
	}
	if diff := cmp.Diff([]Option{{Value: "acme", Label: "acme"}, {Value: "Beta", Label: "Beta"}}, orgs.Options); diff != "" {
		t.Errorf("organization options mismatch (-want +got):\n%s", diff)
	}
	countries, _ := opts.Section(catalog.AttrCountry)
	if countries.Options[0].Value != "france" {
		t.Errorf("expected france first, got %v", countries.Options)
	}
	kinds, _ := opts.Section(catalog.AttrOrgType)
	if kinds.Options[0].Label != "Non Profit" {
		t.Errorf("expected title cased org type, got %q", kinds.Options[0].Label)
	}

	if opts.HasAttribute(catalog.AttrMaturity) {
		t.Error("members have no maturity")
	}
	if opts.SupportsClassify(DimensionMaturity) {
		t.Error("maturity classify should not be offered without maturity values")
	}
	if got := opts.ResolveClassify(DimensionTag); got != DimensionCategory {
		t.Errorf("expected fallback to category, got %q", got)
	}
	if got := opts.ResolveSort(Sort{Field: SortStars, Direction: Desc}); got != DefaultSort {
		t.Errorf("expected fallback to default sort, got %+v", got)
	}
}

func TestBuildEmptyGroup(t *testing.T) {
	c := &catalog.Catalog{
		Categories: []catalog.Category{{Name: "A", Subcategories: []string{"x"}}},
		Entries:    []*catalog.Entry{{ID: "1", Name: "one", Category: "A", Subcategory: "x"}},
	}
	idx, err := catalog.Build(c)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	opts := Build(idx, catalog.AllGroups())
	if !opts.Empty() {
		t.Errorf("expected no filters available, got %v", opts.Sections)
	}
	if opts.Sections == nil {
		t.Error("sections should be defined even when empty")
	}
}

func TestCacheIsKeyedByVersionAndGroup(t *testing.T) {
	idx := buildIndex(t)
	cache := NewCache()

	first := cache.Get(idx, catalog.NamedGroup("projects"))
	if again := cache.Get(idx, catalog.NamedGroup("projects")); again != first {
		t.Error("expected cached options for the same version and group")
	}
	if other := cache.Get(idx, catalog.NamedGroup("members")); other == first {
		t.Error("expected distinct options per group")
	}

	rebuilt := buildIndex(t)
	fresh := cache.Get(rebuilt, catalog.NamedGroup("projects"))
	if fresh == first {
		t.Error("expected a rebuild for a new index version")
	}
	if diff := cmp.Diff(first, fresh, cmpopts.IgnoreUnexported(Options{})); diff != "" {
		t.Errorf("same payload should produce the same facets (-first +fresh):\n%s", diff)
	}
}

func TestSortOptionsBuckets(t *testing.T) {
	tests := []struct {
		name string
		attr catalog.Attribute
		want []string
	}{
		{
			name: "maturity pushes archived and undefined last",
			attr: catalog.AttrMaturity,
			want: []string{"Alpha", "sandbox", "archived", "undefined"},
		},
		{
			name: "tag pushes archived and undefined last",
			attr: catalog.AttrTag,
			want: []string{"Alpha", "sandbox", "archived", "undefined"},
		},
		{
			name: "country sorts every value by label",
			attr: catalog.AttrCountry,
			want: []string{"Alpha", "archived", "sandbox", "undefined"},
		},
		{
			name: "organization sorts every value by label",
			attr: catalog.AttrOrganization,
			want: []string{"Alpha", "archived", "sandbox", "undefined"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := []Option{
				{Value: "undefined", Label: "Undefined"},
				{Value: "archived", Label: "Archived"},
				{Value: "sandbox", Label: "Sandbox"},
				{Value: "Alpha", Label: "Alpha"},
			}
			sortOptions(tt.attr, options)
			var got []string
			for _, o := range options {
				got = append(got, o.Value)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildKeepsLiteralArchivedOrganization(t *testing.T) {
	c := &catalog.Catalog{
		Categories: []catalog.Category{{Name: "Members", Subcategories: []string{"Gold"}}},
		Entries: []*catalog.Entry{
			{ID: "a", Name: "a", Category: "Members", Subcategory: "Gold", Organization: &catalog.Organization{Name: "Archived Inc"}},
			{ID: "b", Name: "b", Category: "Members", Subcategory: "Gold", Organization: &catalog.Organization{Name: "Undefined"}},
			{ID: "c", Name: "c", Category: "Members", Subcategory: "Gold", Organization: &catalog.Organization{Name: "Zeta"}},
			{ID: "d", Name: "d", Category: "Members", Subcategory: "Gold", Organization: &catalog.Organization{Name: "archived"}},
		},
	}
	idx, err := catalog.Build(c)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	section, ok := Build(idx, catalog.AllGroups()).Section(catalog.AttrOrganization)
	if !ok {
		t.Fatal("expected an organization section")
	}
	var got []string
	for _, o := range section.Options {
		got = append(got, o.Value)
	}
	want := []string{"archived", "Archived Inc", "Undefined", "Zeta"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("organization order mismatch (-want +got):\n%s", diff)
	}
}
