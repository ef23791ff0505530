package catalog

import (
	"fmt"
	"strings"
	"unicode"
)

// landscapeCategory and the types below describe the landscape.yml source
// format maintained by hand in the landscape repositories:
//
//	landscape:
//	  - category: Runtime
//	    subcategories:
//	      - subcategory: Container Runtime
//	        items:
//	          - name: containerd
//	            repo_url: https://github.com/containerd/containerd
//	            project: graduated
type landscapeCategory struct {
	Category      string                 `json:"category" yaml:"category"`
	Subcategories []landscapeSubcategory `json:"subcategories" yaml:"subcategories"`
}

type landscapeSubcategory struct {
	Subcategory string          `json:"subcategory" yaml:"subcategory"`
	Items       []landscapeItem `json:"items" yaml:"items"`
}

type landscapeItem struct {
	Name            string              `json:"name" yaml:"name"`
	Description     string              `json:"description" yaml:"description"`
	HomepageURL     string              `json:"homepage_url" yaml:"homepage_url"`
	RepoURL         string              `json:"repo_url" yaml:"repo_url"`
	Project         string              `json:"project" yaml:"project"`
	Crunchbase      string              `json:"crunchbase" yaml:"crunchbase"`
	EndUser         bool                `json:"enduser" yaml:"enduser"`
	AdditionalRepos []landscapeRepo     `json:"additional_repos" yaml:"additional_repos"`
	Extra           landscapeItemExtras `json:"extra" yaml:"extra"`
}

type landscapeRepo struct {
	RepoURL string `json:"repo_url" yaml:"repo_url"`
}

type landscapeItemExtras struct {
	Accepted      string `json:"accepted" yaml:"accepted"`
	Specification bool   `json:"specification" yaml:"specification"`
	Tag           string `json:"tag" yaml:"tag"`
}

// fromLandscape converts the landscape.yml tree. Entry ids follow the
// category--subcategory--name slug convention; organizations resolve through
// the crunchbase data when the payload carries it.
func fromLandscape(tree []landscapeCategory, orgs map[string]*Organization, repos map[string]payloadRepoData) (*Catalog, error) {
	c := &Catalog{}
	for _, lc := range tree {
		cat := Category{Name: strings.TrimSpace(lc.Category)}
		for _, ls := range lc.Subcategories {
			sub := strings.TrimSpace(ls.Subcategory)
			cat.Subcategories = append(cat.Subcategories, sub)
			for _, li := range ls.Items {
				e, err := li.toEntry(cat.Name, sub, orgs, repos)
				if err != nil {
					return nil, fmt.Errorf("%w: %s/%s/%s: %v", ErrInvalidCatalog, cat.Name, sub, li.Name, err)
				}
				c.Entries = append(c.Entries, e)
			}
		}
		c.Categories = append(c.Categories, cat)
	}
	return c, nil
}

func (li *landscapeItem) toEntry(category, subcategory string, orgs map[string]*Organization, repos map[string]payloadRepoData) (*Entry, error) {
	accepted, err := parseDate(li.Extra.Accepted)
	if err != nil {
		return nil, fmt.Errorf("invalid accepted date: %w", err)
	}
	name := strings.TrimSpace(li.Name)
	item := payloadItem{
		ID:            slug(category) + "--" + slug(subcategory) + "--" + slug(name),
		Name:          name,
		Description:   li.Description,
		Category:      category,
		Subcategory:   subcategory,
		Maturity:      li.Project,
		Tag:           li.Extra.Tag,
		CrunchbaseURL: li.Crunchbase,
		Specification: li.Extra.Specification,
		EndUser:       li.EndUser,
	}
	if url := strings.TrimSpace(li.RepoURL); url != "" {
		item.Repositories = append(item.Repositories, payloadRepository{URL: url, Primary: true})
	}
	for _, r := range li.AdditionalRepos {
		if url := strings.TrimSpace(r.RepoURL); url != "" {
			item.Repositories = append(item.Repositories, payloadRepository{URL: url})
		}
	}

	e, err := item.toEntry(orgs, repos)
	if err != nil {
		return nil, err
	}
	e.AcceptedAt = accepted
	return e, nil
}

// slug lowercases s and collapses every run of other characters than letters
// and digits into a single dash.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
