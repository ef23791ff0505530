package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Parse decodes a catalog payload. JSON payloads (as published by landscape2
// as base.json / full.json) and YAML payloads with the same keys are both
// accepted, as is the landscape.yml source tree under the "landscape" key;
// unknown fields are ignored. The result is validated before being
// returned.
func Parse(data []byte) (*Catalog, error) {
	var raw payload
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidCatalog)
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: parse json: %v", ErrInvalidCatalog, err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalidCatalog, err)
		}
	}

	c, err := raw.toCatalog()
	if err != nil {
		return nil, err
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *payload) toCatalog() (*Catalog, error) {
	c := &Catalog{
		Categories:    make([]Category, 0, len(p.Categories)),
		Groups:        make([]Group, 0, len(p.Groups)),
		MaturityOrder: trimAll(p.MaturityOrder),
		Entries:       make([]*Entry, 0, len(p.Items)),
	}

	for _, cat := range p.Categories {
		declared := make([]string, 0, len(cat.Subcategories))
		for _, sub := range cat.Subcategories {
			declared = append(declared, strings.TrimSpace(sub.Name))
		}
		c.Categories = append(c.Categories, Category{
			Name:          strings.TrimSpace(cat.Name),
			Subcategories: applyOrder(declared, trimAll(cat.SubcategoriesOrder)),
		})
	}

	for _, g := range p.Groups {
		c.Groups = append(c.Groups, Group{
			Name:       strings.TrimSpace(g.Name),
			Categories: trimAll(g.Categories),
		})
	}

	orgs := make(map[string]*Organization, len(p.CrunchbaseData))
	for url, org := range p.CrunchbaseData {
		o, err := org.toOrganization()
		if err != nil {
			return nil, fmt.Errorf("%w: crunchbase data %s: %v", ErrInvalidCatalog, url, err)
		}
		orgs[url] = o
	}

	if len(p.Landscape) > 0 {
		tree, err := fromLandscape(p.Landscape, orgs, p.GithubData)
		if err != nil {
			return nil, err
		}
		c.Categories = append(c.Categories, tree.Categories...)
		c.Entries = append(c.Entries, tree.Entries...)
	}

	for i, it := range p.Items {
		entry, err := it.toEntry(orgs, p.GithubData)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d (%s): %v", ErrInvalidCatalog, i, it.Name, err)
		}
		c.Entries = append(c.Entries, entry)
	}
	return c, nil
}

func (it *payloadItem) toEntry(orgs map[string]*Organization, repos map[string]payloadRepoData) (*Entry, error) {
	accepted, err := parseDate(it.AcceptedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid accepted_at: %w", err)
	}

	e := &Entry{
		ID:            strings.TrimSpace(it.ID),
		Name:          strings.TrimSpace(it.Name),
		Description:   strings.TrimSpace(it.Description),
		Category:      strings.TrimSpace(it.Category),
		Subcategory:   strings.TrimSpace(it.Subcategory),
		Maturity:      strings.ToLower(strings.TrimSpace(it.Maturity)),
		Tag:           strings.TrimSpace(it.Tag),
		AcceptedAt:    accepted,
		Specification: it.Specification,
		EndUser:       it.EndUser,
	}
	if it.Featured != nil {
		e.Featured = &Featured{Order: it.Featured.Order, Label: strings.TrimSpace(it.Featured.Label)}
	}

	if it.Organization != nil {
		o, err := it.Organization.toOrganization()
		if err != nil {
			return nil, err
		}
		e.Organization = o
	} else if url := strings.TrimSpace(it.CrunchbaseURL); url != "" {
		if o, ok := orgs[url]; ok {
			e.Organization = o
		}
	}

	for _, r := range it.Repositories {
		repo := Repository{
			URL:     strings.TrimSpace(r.URL),
			Primary: r.Primary,
			License: strings.TrimSpace(r.License),
		}
		if data, ok := repos[repo.URL]; ok {
			if repo.License == "" {
				repo.License = strings.TrimSpace(data.License)
			}
			repo.Stars = data.Stars
			if data.Contributors != nil {
				repo.Contributors = data.Contributors.Count
			}
			repo.Topics = trimAll(data.Topics)
		}
		e.Repositories = append(e.Repositories, repo)
	}
	return e, nil
}

func (o *payloadOrganization) toOrganization() (*Organization, error) {
	org := &Organization{
		Name:       strings.TrimSpace(o.Name),
		Country:    strings.TrimSpace(o.Country),
		Region:     strings.TrimSpace(o.Region),
		Industries: trimAll(o.Categories),
		Kind:       strings.TrimSpace(o.Kind),
	}
	if o.Funding != nil {
		amt := int64(math.Round(*o.Funding))
		org.Funding = &amt
	}
	for _, round := range o.FundingRounds {
		date, err := parseDate(round.AnnouncedOn)
		if err != nil {
			return nil, fmt.Errorf("invalid announced_on: %w", err)
		}
		var amountPtr *int64
		if round.Amount != nil {
			amt := int64(math.Round(*round.Amount))
			amountPtr = &amt
		}
		org.FundingRounds = append(org.FundingRounds, FundingRound{
			Amount:      amountPtr,
			AnnouncedOn: date,
			Kind:        strings.TrimSpace(round.Kind),
		})
	}
	return org, nil
}

// applyOrder puts the names listed in override first, in that order, followed
// by the remaining declared names. Override names that are not declared are
// ignored.
func applyOrder(declared, override []string) []string {
	if len(override) == 0 {
		return declared
	}
	known := make(map[string]bool, len(declared))
	for _, name := range declared {
		known[name] = true
	}
	ordered := make([]string, 0, len(declared))
	used := make(map[string]bool, len(declared))
	for _, name := range override {
		if known[name] && !used[name] {
			ordered = append(ordered, name)
			used[name] = true
		}
	}
	for _, name := range declared {
		if !used[name] {
			ordered = append(ordered, name)
			used[name] = true
		}
	}
	return ordered
}

func parseDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	tt := t
	return &tt, nil
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type payload struct {
	Categories     []payloadCategory              `json:"categories" yaml:"categories"`
	Groups         []payloadGroup                 `json:"groups" yaml:"groups"`
	MaturityOrder  []string                       `json:"maturity_order" yaml:"maturity_order"`
	Items          []payloadItem                  `json:"items" yaml:"items"`
	CrunchbaseData map[string]payloadOrganization `json:"crunchbase_data" yaml:"crunchbase_data"`
	GithubData     map[string]payloadRepoData     `json:"github_data" yaml:"github_data"`
	Landscape      []landscapeCategory            `json:"landscape" yaml:"landscape"`
}

type payloadCategory struct {
	Name               string               `json:"name" yaml:"name"`
	Subcategories      []payloadSubcategory `json:"subcategories" yaml:"subcategories"`
	SubcategoriesOrder []string             `json:"subcategories_order" yaml:"subcategories_order"`
}

type payloadSubcategory struct {
	Name string `json:"name" yaml:"name"`
}

type payloadGroup struct {
	Name       string   `json:"name" yaml:"name"`
	Categories []string `json:"categories" yaml:"categories"`
}

type payloadItem struct {
	ID            string               `json:"id" yaml:"id"`
	Name          string               `json:"name" yaml:"name"`
	Description   string               `json:"description" yaml:"description"`
	Category      string               `json:"category" yaml:"category"`
	Subcategory   string               `json:"subcategory" yaml:"subcategory"`
	Maturity      string               `json:"maturity" yaml:"maturity"`
	Tag           string               `json:"tag" yaml:"tag"`
	AcceptedAt    string               `json:"accepted_at" yaml:"accepted_at"`
	CrunchbaseURL string               `json:"crunchbase_url" yaml:"crunchbase_url"`
	Featured      *payloadFeatured     `json:"featured" yaml:"featured"`
	Organization  *payloadOrganization `json:"organization" yaml:"organization"`
	Repositories  []payloadRepository  `json:"repositories" yaml:"repositories"`
	Specification bool                 `json:"specification" yaml:"specification"`
	EndUser       bool                 `json:"enduser" yaml:"enduser"`
}

type payloadFeatured struct {
	Order int    `json:"order" yaml:"order"`
	Label string `json:"label" yaml:"label"`
}

type payloadRepository struct {
	URL     string `json:"url" yaml:"url"`
	Primary bool   `json:"primary" yaml:"primary"`
	License string `json:"license" yaml:"license"`
}

type payloadRepoData struct {
	License      string               `json:"license" yaml:"license"`
	Stars        *int64               `json:"stars" yaml:"stars"`
	Contributors *payloadContributors `json:"contributors" yaml:"contributors"`
	Topics       []string             `json:"topics" yaml:"topics"`
}

type payloadContributors struct {
	Count *int64 `json:"count" yaml:"count"`
}

type payloadOrganization struct {
	Name          string                `json:"name" yaml:"name"`
	Country       string                `json:"country" yaml:"country"`
	Region        string                `json:"region" yaml:"region"`
	Categories    []string              `json:"categories" yaml:"categories"`
	Kind          string                `json:"kind" yaml:"kind"`
	Funding       *float64              `json:"funding" yaml:"funding"`
	FundingRounds []payloadFundingRound `json:"funding_rounds" yaml:"funding_rounds"`
}

type payloadFundingRound struct {
	Amount      *float64 `json:"amount" yaml:"amount"`
	AnnouncedOn string   `json:"announced_on" yaml:"announced_on"`
	Kind        string   `json:"kind" yaml:"kind"`
}
