// Package search implements free-text lookup over a catalog index. It never
// looks at the active filters.
package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
)

// DefaultLimit caps the number of results when the caller does not.
const DefaultLimit = 20

// Score components.
const (
	nameMatch     = 1000
	exactName     = 500
	namePrefix    = 200
	textMatch     = 100
	activeBoost   = 50
	featuredBoost = 25
)

// Result is a ranked match.
type Result struct {
	Entry *catalog.Entry
	Score int
}

type names []*catalog.Entry

func (n names) String(i int) string { return n[i].Name }
func (n names) Len() int            { return len(n) }

// Searcher holds the lowercased text of every entry of one index.
type Searcher struct {
	entries names
	lower   []string
	text    []string
}

// New indexes names, descriptions and repository topics.
func New(idx *catalog.Index) *Searcher {
	entries := idx.Entries()
	s := &Searcher{
		entries: names(entries),
		lower:   make([]string, len(entries)),
		text:    make([]string, len(entries)),
	}
	for i, e := range entries {
		s.lower[i] = strings.ToLower(e.Name)
		s.text[i] = strings.ToLower(e.Description + "\n" + strings.Join(e.Topics(), "\n"))
	}
	return s
}

// Search returns the entries matching text, best first. Name matches rank
// above description and topic matches; non-archived and featured entries get
// a boost. A non-positive limit means DefaultLimit.
func (s *Searcher) Search(text string, limit int) []Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Result{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	needle := strings.ToLower(text)

	scores := make(map[int]int)
	for _, m := range fuzzy.FindFrom(text, s.entries) {
		score := nameMatch + m.Score
		switch {
		case s.lower[m.Index] == needle:
			score += exactName
		case strings.HasPrefix(s.lower[m.Index], needle):
			score += namePrefix
		}
		scores[m.Index] = score
	}
	for i, t := range s.text {
		if strings.Contains(t, needle) {
			scores[i] += textMatch
		}
	}

	results := make([]Result, 0, len(scores))
	for i, score := range scores {
		e := s.entries[i]
		if !e.IsArchived() {
			score += activeBoost
		}
		if e.IsFeatured() {
			score += featuredBoost
		}
		results = append(results, Result{Entry: e, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Entry.Name != b.Entry.Name {
			return a.Entry.Name < b.Entry.Name
		}
		return a.Entry.ID < b.Entry.ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
