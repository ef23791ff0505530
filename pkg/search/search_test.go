package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
)

func testSearcher(t *testing.T) *Searcher {
	t.Helper()
	c := &catalog.Catalog{
		Categories: []catalog.Category{{Name: "A", Subcategories: []string{"x"}}},
		Entries: []*catalog.Entry{
			{ID: "envoy-gateway", Name: "Envoy Gateway", Category: "A", Subcategory: "x"},
			{ID: "envoy", Name: "Envoy", Category: "A", Subcategory: "x", Maturity: "graduated",
				Repositories: []catalog.Repository{{URL: "https://github.com/envoyproxy/envoy", Topics: []string{"networking", "proxy"}}}},
			{ID: "linkerd", Name: "Linkerd", Description: "Ultralight service mesh", Category: "A", Subcategory: "x"},
			{ID: "argo", Name: "Argo", Description: "GitOps tool", Category: "A", Subcategory: "x", Featured: &catalog.Featured{Order: 1}},
			{ID: "flux", Name: "Flux", Description: "GitOps toolkit", Category: "A", Subcategory: "x"},
			{ID: "weave", Name: "Weave", Description: "GitOps engine", Category: "A", Subcategory: "x", Maturity: "archived"},
		},
	}
	idx, err := catalog.Build(c)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return New(idx)
}

func resultIDs(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Entry.ID)
	}
	return out
}

func TestSearch(t *testing.T) {
	s := testSearcher(t)
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"exact name first", "envoy", []string{"envoy", "envoy-gateway"}},
		{"case insensitive", "LINKERD", []string{"linkerd"}},
		{"description match", "service mesh", []string{"linkerd"}},
		{"topic match", "networking", []string{"envoy"}},
		{"featured and active boosts", "gitops", []string{"argo", "flux", "weave"}},
		{"no match", "zzzz", []string{}},
		{"empty text", "  ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, resultIDs(s.Search(tt.text, 0))); diff != "" {
				t.Errorf("results mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchLimit(t *testing.T) {
	s := testSearcher(t)
	if got := s.Search("gitops", 2); len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}
