package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testPayload = `{
  "categories": [
    {"name": "Runtime", "subcategories": [{"name": "Container Runtime"}, {"name": "Cloud Native Storage"}]},
    {"name": "Provisioning", "subcategories": [{"name": "Automation"}, {"name": "Security"}], "subcategories_order": ["Security"]},
    {"name": "Members", "subcategories": [{"name": "Gold"}]}
  ],
  "groups": [
    {"name": "projects", "categories": ["Runtime", "Provisioning"]},
    {"name": "members", "categories": ["Members"]}
  ],
  "items": [
    {"id": "containerd", "name": "containerd", "category": "Runtime", "subcategory": "Container Runtime",
     "maturity": "Graduated", "tag": "runtime", "accepted_at": "2017-03-29",
     "repositories": [{"url": "https://github.com/containerd/containerd", "primary": true}]},
    {"id": "rook", "name": "Rook", "category": "Runtime", "subcategory": "Cloud Native Storage",
     "maturity": "graduated", "repositories": [{"url": "https://github.com/rook/rook", "license": "Apache-2.0"}]},
    {"id": "falco", "name": "Falco", "category": "Provisioning", "subcategory": "Security", "maturity": "archived"},
    {"id": "acme", "name": "Acme", "category": "Members", "subcategory": "Gold",
     "crunchbase_url": "https://www.crunchbase.com/organization/acme", "unknown_field": true}
  ],
  "crunchbase_data": {
    "https://www.crunchbase.com/organization/acme": {
      "name": "Acme Inc", "country": "Spain", "kind": "company", "categories": ["Software", "Cloud"],
      "funding": 1500.4,
      "funding_rounds": [{"amount": 100.6, "announced_on": "2024-02-01", "kind": "seed"}]
    }
  },
  "github_data": {
    "https://github.com/containerd/containerd": {"license": "Apache-2.0", "stars": 10, "contributors": {"count": 4}, "topics": ["containers"]}
  }
}`

func mustBuild(t *testing.T, data string) *Index {
	t.Helper()
	c, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	idx, err := Build(c)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return idx
}

func TestParseResolvesSideData(t *testing.T) {
	idx := mustBuild(t, testPayload)

	containerd, ok := idx.Entry("containerd")
	if !ok {
		t.Fatal("expected containerd entry")
	}
	if containerd.Maturity != "graduated" {
		t.Errorf("expected normalized maturity, got %q", containerd.Maturity)
	}
	if got := containerd.Values(AttrLicense); !cmp.Equal(got, []string{"Apache-2.0"}) {
		t.Errorf("unexpected licenses %v", got)
	}
	if stars, ok := containerd.Stars(); !ok || stars != 10 {
		t.Errorf("expected 10 stars, got %d (%v)", stars, ok)
	}
	if containerd.AcceptedAt == nil || containerd.AcceptedAt.Year() != 2017 {
		t.Errorf("expected accepted_at to be parsed, got %v", containerd.AcceptedAt)
	}

	acme, _ := idx.Entry("acme")
	if acme.Organization == nil {
		t.Fatal("expected organization resolved from crunchbase data")
	}
	if *acme.Organization.Funding != 1500 {
		t.Errorf("expected rounded funding, got %d", *acme.Organization.Funding)
	}
	if len(acme.Organization.FundingRounds) != 1 || *acme.Organization.FundingRounds[0].Amount != 101 {
		t.Errorf("unexpected funding rounds %+v", acme.Organization.FundingRounds)
	}
}

func TestParseYAML(t *testing.T) {
	data := `
categories:
  - name: App Definition
    subcategories:
      - name: Database
items:
  - id: vitess
    name: Vitess
    category: App Definition
    subcategory: Database
    maturity: graduated
`
	idx := mustBuild(t, data)
	if _, ok := idx.Entry("vitess"); !ok {
		t.Fatal("expected vitess entry")
	}
	if got := idx.Groups(); len(got) != 1 || !got[0].IsAll() {
		t.Errorf("expected implicit all group, got %v", got)
	}
}

const landscapeYAML = `
landscape:
  - category: App Definition and Development
    subcategories:
      - subcategory: Database
        items:
          - name: TiKV
            description: Distributed transactional key-value database
            repo_url: https://github.com/tikv/tikv
            project: Graduated
            crunchbase: https://www.crunchbase.com/organization/pingcap
            additional_repos:
              - repo_url: https://github.com/tikv/pd
            extra:
              accepted: "2018-08-28"
          - name: Vitess
            repo_url: https://github.com/vitessio/vitess
            project: graduated
  - category: CNCF Members
    subcategories:
      - subcategory: End User Supporter
        items:
          - name: Acme
            enduser: true
crunchbase_data:
  https://www.crunchbase.com/organization/pingcap:
    name: PingCAP
    country: China
github_data:
  https://github.com/tikv/tikv:
    license: Apache-2.0
    stars: 15000
`

func TestParseLandscapeTree(t *testing.T) {
	idx := mustBuild(t, landscapeYAML)

	tikv, ok := idx.Entry("app-definition-and-development--database--tikv")
	if !ok {
		t.Fatalf("expected a slugged id, got %v", idx.Entries())
	}
	if tikv.Maturity != "graduated" || tikv.Organization == nil || tikv.Organization.Name != "PingCAP" {
		t.Errorf("unexpected entry %+v", tikv)
	}
	if len(tikv.Repositories) != 2 || !tikv.Repositories[0].Primary || tikv.Repositories[1].Primary {
		t.Errorf("unexpected repositories %+v", tikv.Repositories)
	}
	if stars, ok := tikv.Stars(); !ok || stars != 15000 {
		t.Errorf("expected github data to be merged, got %d (%v)", stars, ok)
	}
	if tikv.AcceptedAt == nil || tikv.AcceptedAt.Year() != 2018 {
		t.Errorf("expected the accepted date, got %v", tikv.AcceptedAt)
	}

	acme, ok := idx.Entry("cncf-members--end-user-supporter--acme")
	if !ok || !acme.EndUser {
		t.Errorf("expected the end user member, got %+v", acme)
	}
	if got := idx.CategoriesForGroup(AllGroups()); !cmp.Equal(got, []string{"App Definition and Development", "CNCF Members"}) {
		t.Errorf("unexpected categories %v", got)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Container Runtime":     "container-runtime",
		"  Kubernetes (K8s)!  ": "kubernetes-k8s",
		"App Definition & Dev":  "app-definition-dev",
		"cri-o":                 "cri-o",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSubcategoryOrderOverride(t *testing.T) {
	idx := mustBuild(t, testPayload)
	cat, ok := idx.Category("Provisioning")
	if !ok {
		t.Fatal("expected Provisioning category")
	}
	if diff := cmp.Diff([]string{"Security", "Automation"}, cat.Subcategories); diff != "" {
		t.Errorf("subcategory order mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexGroups(t *testing.T) {
	idx := mustBuild(t, testPayload)

	projects := NamedGroup("projects")
	if got := len(idx.EntriesForGroup(projects)); got != 3 {
		t.Errorf("expected 3 project entries, got %d", got)
	}
	if got := len(idx.EntriesForGroup(AllGroups())); got != 4 {
		t.Errorf("expected 4 entries overall, got %d", got)
	}
	if idx.EntriesForGroup(NamedGroup("unknown")) != nil {
		t.Error("expected nil for an unknown group")
	}
	if idx.DefaultGroup() != projects {
		t.Errorf("expected projects as default group, got %v", idx.DefaultGroup())
	}

	if diff := cmp.Diff([]string{"graduated", "archived"}, idx.AllMaturityValues()); diff != "" {
		t.Errorf("maturity values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Apache-2.0"}, idx.LicenseValuesForGroup(projects)); diff != "" {
		t.Errorf("license values mismatch (-want +got):\n%s", diff)
	}
	if got := idx.LicenseValuesForGroup(NamedGroup("members")); len(got) != 0 {
		t.Errorf("expected no licenses for members, got %v", got)
	}
	if diff := cmp.Diff([]string{"Cloud", "Software"}, idx.IndustriesForGroup(NamedGroup("members"))); diff != "" {
		t.Errorf("industries mismatch (-want +got):\n%s", diff)
	}
}

func TestLicenseValuesSkipPlaceholders(t *testing.T) {
	c := &Catalog{
		Categories: []Category{{Name: "Runtime", Subcategories: []string{"Container Runtime"}}},
		Entries: []*Entry{
			{ID: "a", Name: "a", Category: "Runtime", Subcategory: "Container Runtime",
				Repositories: []Repository{{URL: "u1", License: "Apache-2.0"}, {URL: "u2", License: "NOASSERTION"}}},
			{ID: "b", Name: "b", Category: "Runtime", Subcategory: "Container Runtime",
				Repositories: []Repository{{URL: "u3", License: "Other"}}},
			{ID: "c", Name: "c", Category: "Runtime", Subcategory: "Container Runtime",
				Repositories: []Repository{{URL: "u4", License: "MIT"}, {URL: "u5", License: "none"}}},
		},
	}
	idx, err := Build(c)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]string{"Apache-2.0", "MIT"}, idx.LicenseValuesForGroup(AllGroups())); diff != "" {
		t.Errorf("license values mismatch (-want +got):\n%s", diff)
	}

	tests := map[string]bool{
		"Apache-2.0":  true,
		"NOASSERTION": false,
		" Other ":     false,
		"none":        false,
	}
	for license, want := range tests {
		if got := IsOpenSourceLicense(license); got != want {
			t.Errorf("IsOpenSourceLicense(%q) = %v, want %v", license, got, want)
		}
	}
}

func TestNamedGroupDoesNotCollideWithAll(t *testing.T) {
	if NamedGroup("all") == AllGroups() {
		t.Fatal("a group named all must differ from the implicit group")
	}
	var zero GroupRef
	if !zero.IsAll() {
		t.Error("zero value should be AllGroups")
	}
}

func TestBuildRejectsMalformedCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "empty",
			payload: "",
			want:    "empty payload",
		},
		{
			name:    "missing id",
			payload: `{"categories":[{"name":"A","subcategories":[{"name":"x"}]}],"items":[{"name":"n","category":"A","subcategory":"x"}]}`,
			want:    "missing required fields [id]",
		},
		{
			name:    "unknown subcategory",
			payload: `{"categories":[{"name":"A","subcategories":[{"name":"x"}]}],"items":[{"id":"i","name":"n","category":"A","subcategory":"y"}]}`,
			want:    `unknown subcategory "y"`,
		},
		{
			name:    "duplicated id",
			payload: `{"categories":[{"name":"A","subcategories":[{"name":"x"}]}],"items":[{"id":"i","name":"n","category":"A","subcategory":"x"},{"id":"i","name":"m","category":"A","subcategory":"x"}]}`,
			want:    "duplicated id",
		},
		{
			name:    "group with unknown category",
			payload: `{"categories":[{"name":"A","subcategories":[{"name":"x"}]}],"groups":[{"name":"g","categories":["B"]}],"items":[]}`,
			want:    `unknown category "B"`,
		},
		{
			name:    "bad date",
			payload: `{"categories":[{"name":"A","subcategories":[{"name":"x"}]}],"items":[{"id":"i","name":"n","category":"A","subcategory":"x","accepted_at":"yesterday"}]}`,
			want:    "invalid accepted_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.payload))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("expected ErrInvalidCatalog, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestBuildVersionsAreUnique(t *testing.T) {
	a := mustBuild(t, testPayload)
	b := mustBuild(t, testPayload)
	if a.Version() == b.Version() {
		t.Error("expected distinct versions for separate builds")
	}
}

func TestMaturityRank(t *testing.T) {
	idx := mustBuild(t, testPayload)
	got := idx.SortMaturities([]string{"archived", "sandbox", "emeritus", "graduated", "incubating"})
	want := []string{"graduated", "incubating", "sandbox", "emeritus", "archived"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("maturity order mismatch (-want +got):\n%s", diff)
	}
}
