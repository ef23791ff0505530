package main

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
	"github.com/cncf/landscape2/go/explorer/pkg/classify"
	"github.com/cncf/landscape2/go/explorer/pkg/facets"
	"github.com/cncf/landscape2/go/explorer/pkg/loader"
	"github.com/cncf/landscape2/go/explorer/pkg/query"
	"github.com/cncf/landscape2/go/explorer/pkg/urlcodec"
)

const dateLayout = "2006-01-02"

type entrySummary struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Subcategory string `json:"subcategory" yaml:"subcategory"`
	Maturity    string `json:"maturity,omitempty" yaml:"maturity,omitempty"`
	Tag         string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Stars       *int64 `json:"stars,omitempty" yaml:"stars,omitempty"`
	Featured    bool   `json:"featured,omitempty" yaml:"featured,omitempty"`
}

func summarize(e *catalog.Entry) entrySummary {
	s := entrySummary{
		ID:          e.ID,
		Name:        e.Name,
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Maturity:    e.Maturity,
		Tag:         e.Tag,
		Featured:    e.IsFeatured(),
	}
	if stars, ok := e.Stars(); ok {
		s.Stars = &stars
	}
	return s
}

func summarizeAll(entries []*catalog.Entry) []entrySummary {
	out := make([]entrySummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, summarize(e))
	}
	return out
}

type searchResultView struct {
	entrySummary `yaml:",inline"`
	Score        int `json:"score" yaml:"score"`
}

type repositoryView struct {
	URL          string   `json:"url" yaml:"url"`
	Primary      bool     `json:"primary,omitempty" yaml:"primary,omitempty"`
	License      string   `json:"license,omitempty" yaml:"license,omitempty"`
	Stars        *int64   `json:"stars,omitempty" yaml:"stars,omitempty"`
	Contributors *int64   `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	Topics       []string `json:"topics,omitempty" yaml:"topics,omitempty"`
}

type organizationView struct {
	Name       string   `json:"name" yaml:"name"`
	Country    string   `json:"country,omitempty" yaml:"country,omitempty"`
	Region     string   `json:"region,omitempty" yaml:"region,omitempty"`
	Industries []string `json:"industries,omitempty" yaml:"industries,omitempty"`
	Kind       string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Funding    *int64   `json:"funding,omitempty" yaml:"funding,omitempty"`
}

type itemView struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Category      string            `json:"category" yaml:"category"`
	Subcategory   string            `json:"subcategory" yaml:"subcategory"`
	Maturity      string            `json:"maturity,omitempty" yaml:"maturity,omitempty"`
	Tag           string            `json:"tag,omitempty" yaml:"tag,omitempty"`
	AcceptedAt    string            `json:"accepted_at,omitempty" yaml:"accepted_at,omitempty"`
	Featured      string            `json:"featured,omitempty" yaml:"featured,omitempty"`
	Specification bool              `json:"specification,omitempty" yaml:"specification,omitempty"`
	EndUser       bool              `json:"enduser,omitempty" yaml:"enduser,omitempty"`
	Organization  *organizationView `json:"organization,omitempty" yaml:"organization,omitempty"`
	Repositories  []repositoryView  `json:"repositories,omitempty" yaml:"repositories,omitempty"`
}

func newItemView(e *catalog.Entry) *itemView {
	v := &itemView{
		ID:            e.ID,
		Name:          e.Name,
		Description:   e.Description,
		Category:      e.Category,
		Subcategory:   e.Subcategory,
		Maturity:      e.Maturity,
		Tag:           e.Tag,
		Specification: e.Specification,
		EndUser:       e.EndUser,
	}
	if e.AcceptedAt != nil {
		v.AcceptedAt = e.AcceptedAt.Format(dateLayout)
	}
	if e.Featured != nil {
		v.Featured = e.Featured.Label
		if v.Featured == "" {
			v.Featured = "featured"
		}
	}
	if o := e.Organization; o != nil {
		v.Organization = &organizationView{
			Name:       o.Name,
			Country:    o.Country,
			Region:     o.Region,
			Industries: o.Industries,
			Kind:       o.Kind,
			Funding:    o.Funding,
		}
	}
	for _, r := range e.Repositories {
		v.Repositories = append(v.Repositories, repositoryView{
			URL:          r.URL,
			Primary:      r.Primary,
			License:      r.License,
			Stars:        r.Stars,
			Contributors: r.Contributors,
			Topics:       r.Topics,
		})
	}
	return v
}

type gridSubcategoryView struct {
	Name    string         `json:"name" yaml:"name"`
	Entries []entrySummary `json:"entries" yaml:"entries"`
}

type gridCategoryView struct {
	Name          string                `json:"name" yaml:"name"`
	Subcategories []gridSubcategoryView `json:"subcategories" yaml:"subcategories"`
}

type cardSectionView struct {
	Key         string            `json:"key" yaml:"key"`
	Count       int               `json:"count" yaml:"count"`
	Entries     []entrySummary    `json:"entries,omitempty" yaml:"entries,omitempty"`
	Subsections []cardSectionView `json:"subsections,omitempty" yaml:"subsections,omitempty"`
}

type cardView struct {
	Entries  []entrySummary    `json:"entries,omitempty" yaml:"entries,omitempty"`
	Sections []cardSectionView `json:"sections" yaml:"sections"`
}

type queryView struct {
	Group    string             `json:"group" yaml:"group"`
	View     query.View         `json:"view" yaml:"view"`
	Tier     string             `json:"tier" yaml:"tier"`
	Query    string             `json:"query" yaml:"query"`
	Count    int                `json:"count" yaml:"count"`
	NumItems map[string]int     `json:"num_items" yaml:"num_items"`
	Classify facets.Dimension   `json:"classify" yaml:"classify"`
	Sort     facets.Sort        `json:"sort" yaml:"sort"`
	Menu     classify.Menu      `json:"menu" yaml:"menu"`
	Grid     []gridCategoryView `json:"grid,omitempty" yaml:"grid,omitempty"`
	Card     *cardView          `json:"card,omitempty" yaml:"card,omitempty"`
}

func newQueryView(idx *catalog.Index, tier loader.Tier, state urlcodec.State, res *query.Result) *queryView {
	sel := res.Selected()
	v := &queryView{
		Group:    res.Active.String(),
		View:     state.View,
		Tier:     tier.String(),
		Query:    urlcodec.String(state, idx),
		Count:    sel.Count,
		NumItems: make(map[string]int, len(res.NumItems)),
		Classify: sel.Classify,
		Sort:     sel.Sort,
		Menu:     sel.Menu,
	}
	for g, n := range res.NumItems {
		v.NumItems[g.String()] = n
	}

	if state.View == query.ViewCard {
		v.Card = &cardView{Sections: sectionViews(sel.Card.Sections)}
		if sel.Card.Dimension == facets.DimensionNone {
			v.Card.Entries = summarizeAll(sel.Card.Entries)
		}
		return v
	}

	v.Grid = make([]gridCategoryView, 0, len(sel.Grid.Categories))
	for _, c := range sel.Grid.Categories {
		gc := gridCategoryView{Name: c.Name, Subcategories: make([]gridSubcategoryView, 0, len(c.Subcategories))}
		for _, sub := range c.Subcategories {
			gc.Subcategories = append(gc.Subcategories, gridSubcategoryView{Name: sub.Name, Entries: summarizeAll(sub.Entries)})
		}
		v.Grid = append(v.Grid, gc)
	}
	return v
}

func sectionViews(sections []classify.Section) []cardSectionView {
	out := make([]cardSectionView, 0, len(sections))
	for _, s := range sections {
		sv := cardSectionView{Key: s.Key}
		if len(s.Subsections) > 0 {
			sv.Subsections = sectionViews(s.Subsections)
			for _, sub := range sv.Subsections {
				sv.Count += sub.Count
			}
		} else {
			sv.Entries = summarizeAll(s.Entries)
			sv.Count = len(sv.Entries)
		}
		out = append(out, sv)
	}
	return out
}

// write renders v in the requested format.
func write(w io.Writer, format string, v interface{}) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
