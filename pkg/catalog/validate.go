package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidCatalog is returned when a payload is structurally malformed or
// references categories missing from the tree.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Validate checks the catalog's structure: required fields are present,
// names are unique and every reference resolves to a tree node. All problems
// are reported together.
func Validate(c *Catalog) error {
	var problems []error
	if c == nil {
		return fmt.Errorf("%w: nil catalog", ErrInvalidCatalog)
	}

	tree := make(map[string]map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Name == "" {
			problems = append(problems, fmt.Errorf("category %d: name is required", i))
			continue
		}
		if _, dup := tree[cat.Name]; dup {
			problems = append(problems, fmt.Errorf("category %q: duplicated", cat.Name))
			continue
		}
		subs := make(map[string]bool, len(cat.Subcategories))
		for j, sub := range cat.Subcategories {
			switch {
			case sub == "":
				problems = append(problems, fmt.Errorf("category %q: subcategory %d: name is required", cat.Name, j))
			case subs[sub]:
				problems = append(problems, fmt.Errorf("category %q: subcategory %q: duplicated", cat.Name, sub))
			default:
				subs[sub] = true
			}
		}
		tree[cat.Name] = subs
	}

	groups := make(map[string]bool, len(c.Groups))
	for i, g := range c.Groups {
		if g.Name == "" {
			problems = append(problems, fmt.Errorf("group %d: name is required", i))
			continue
		}
		if groups[g.Name] {
			problems = append(problems, fmt.Errorf("group %q: duplicated", g.Name))
			continue
		}
		groups[g.Name] = true
		listed := make(map[string]bool, len(g.Categories))
		for _, name := range g.Categories {
			if _, ok := tree[name]; !ok {
				problems = append(problems, fmt.Errorf("group %q: unknown category %q", g.Name, name))
			}
			if listed[name] {
				problems = append(problems, fmt.Errorf("group %q: category %q listed twice", g.Name, name))
			}
			listed[name] = true
		}
	}

	ids := make(map[string]bool, len(c.Entries))
	for i, e := range c.Entries {
		if e == nil {
			problems = append(problems, fmt.Errorf("item %d: missing", i))
			continue
		}
		var missing []string
		if e.ID == "" {
			missing = append(missing, "id")
		}
		if e.Name == "" {
			missing = append(missing, "name")
		}
		if e.Category == "" {
			missing = append(missing, "category")
		}
		if e.Subcategory == "" {
			missing = append(missing, "subcategory")
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Errorf("item %d (%s): missing required fields %v", i, e.Name, missing))
			continue
		}
		if ids[e.ID] {
			problems = append(problems, fmt.Errorf("item %q: duplicated id", e.ID))
		}
		ids[e.ID] = true

		subs, ok := tree[e.Category]
		if !ok {
			problems = append(problems, fmt.Errorf("item %q: unknown category %q", e.ID, e.Category))
			continue
		}
		if !subs[e.Subcategory] {
			problems = append(problems, fmt.Errorf("item %q: unknown subcategory %q in category %q", e.ID, e.Subcategory, e.Category))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(problems...))
	}
	return nil
}
