package catalog

import (
	"sort"
	"strings"
	"sync/atomic"
)

// DefaultMaturityOrder is the lifecycle order used when the payload does not
// declare one.
var DefaultMaturityOrder = []string{"graduated", "incubating", "sandbox"}

var versions atomic.Uint64

// licensePlaceholders are values repository metadata reports when no license
// could be detected. They never count as open source.
var licensePlaceholders = map[string]bool{
	"NOASSERTION": true,
	"NONE":        true,
	"OTHER":       true,
}

// IsOpenSourceLicense reports whether a license value names an actual license.
func IsOpenSourceLicense(license string) bool {
	return !licensePlaceholders[strings.ToUpper(strings.TrimSpace(license))]
}

type placement struct {
	category    string
	subcategory string
}

// attrSets holds the distinct values observed for the per-group dimensions.
type attrSets struct {
	licenses      map[string]struct{}
	organizations map[string]struct{}
	countries     map[string]struct{}
	industries    map[string]struct{}
	orgTypes      map[string]struct{}
}

func newAttrSets() *attrSets {
	return &attrSets{
		licenses:      make(map[string]struct{}),
		organizations: make(map[string]struct{}),
		countries:     make(map[string]struct{}),
		industries:    make(map[string]struct{}),
		orgTypes:      make(map[string]struct{}),
	}
}

// Index is the read-only lookup structure built once per loaded catalog.
// It is safe for concurrent readers.
type Index struct {
	version uint64

	categories     []Category
	categoryByName map[string]*Category
	groups         []GroupRef
	groupCats      map[GroupRef][]string
	maturityOrder  []string
	maturityRank   map[string]int

	entries     []*Entry
	byID        map[string]*Entry
	byPlacement map[placement][]*Entry
	byGroup     map[GroupRef][]*Entry

	maturityValues []string
	tagValues      []string
	sets           map[GroupRef]*attrSets
}

// Build validates the catalog and indexes it. It refuses to build on a
// malformed catalog.
func Build(c *Catalog) (*Index, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}

	idx := &Index{
		version:        versions.Add(1),
		categories:     c.Categories,
		categoryByName: make(map[string]*Category, len(c.Categories)),
		groupCats:      make(map[GroupRef][]string),
		entries:        c.Entries,
		byID:           make(map[string]*Entry, len(c.Entries)),
		byPlacement:    make(map[placement][]*Entry),
		byGroup:        make(map[GroupRef][]*Entry),
		sets:           make(map[GroupRef]*attrSets),
	}
	for i := range idx.categories {
		idx.categoryByName[idx.categories[i].Name] = &idx.categories[i]
	}

	idx.maturityOrder = c.MaturityOrder
	if len(idx.maturityOrder) == 0 {
		idx.maturityOrder = DefaultMaturityOrder
	}
	idx.maturityRank = make(map[string]int, len(idx.maturityOrder))
	for i, m := range idx.maturityOrder {
		idx.maturityRank[m] = i
	}

	all := AllGroups()
	allCats := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		allCats = append(allCats, cat.Name)
	}
	idx.groupCats[all] = allCats
	idx.sets[all] = newAttrSets()

	categoryGroups := make(map[string][]GroupRef)
	for _, g := range c.Groups {
		ref := NamedGroup(g.Name)
		idx.groups = append(idx.groups, ref)
		idx.groupCats[ref] = g.Categories
		idx.sets[ref] = newAttrSets()
		idx.byGroup[ref] = []*Entry{}
		for _, cat := range g.Categories {
			categoryGroups[cat] = append(categoryGroups[cat], ref)
		}
	}
	if len(idx.groups) == 0 {
		idx.groups = []GroupRef{all}
	}

	maturities := make(map[string]struct{})
	tags := make(map[string]struct{})
	idx.byGroup[all] = make([]*Entry, 0, len(c.Entries))
	for _, e := range c.Entries {
		idx.byID[e.ID] = e
		key := placement{e.Category, e.Subcategory}
		idx.byPlacement[key] = append(idx.byPlacement[key], e)

		if e.Maturity != "" {
			maturities[e.Maturity] = struct{}{}
		}
		if e.Tag != "" {
			tags[e.Tag] = struct{}{}
		}

		idx.byGroup[all] = append(idx.byGroup[all], e)
		idx.sets[all].add(e)
		for _, ref := range categoryGroups[e.Category] {
			idx.byGroup[ref] = append(idx.byGroup[ref], e)
			idx.sets[ref].add(e)
		}
	}

	idx.maturityValues = idx.SortMaturities(keys(maturities))
	idx.tagValues = sortedKeys(tags)
	return idx, nil
}

func (s *attrSets) add(e *Entry) {
	for _, l := range e.Values(AttrLicense) {
		if IsOpenSourceLicense(l) {
			s.licenses[l] = struct{}{}
		}
	}
	for _, o := range e.Values(AttrOrganization) {
		s.organizations[o] = struct{}{}
	}
	for _, c := range e.Values(AttrCountry) {
		s.countries[c] = struct{}{}
	}
	for _, i := range e.Values(AttrIndustry) {
		s.industries[i] = struct{}{}
	}
	for _, k := range e.Values(AttrOrgType) {
		s.orgTypes[k] = struct{}{}
	}
}

// Version identifies this build; two indexes never share a version.
func (idx *Index) Version() uint64 {
	return idx.version
}

// Entry looks an entry up by id.
func (idx *Index) Entry(id string) (*Entry, bool) {
	e, ok := idx.byID[id]
	return e, ok
}

// Entries returns every entry in payload order.
func (idx *Index) Entries() []*Entry {
	return idx.entries
}

// Groups returns the declared groups in order, or AllGroups alone when the
// catalog declares none.
func (idx *Index) Groups() []GroupRef {
	return idx.groups
}

// HasGroup reports whether entries can be listed for the group.
func (idx *Index) HasGroup(g GroupRef) bool {
	_, ok := idx.groupCats[g]
	return ok
}

// DefaultGroup is the first declared group, or AllGroups.
func (idx *Index) DefaultGroup() GroupRef {
	return idx.groups[0]
}

// EntriesForGroup returns the flat list of entries belonging to the group in
// payload order. AllGroups returns every entry; unknown groups return nil.
func (idx *Index) EntriesForGroup(g GroupRef) []*Entry {
	return idx.byGroup[g]
}

// CategoriesForGroup returns the names of the group's categories in
// declaration order.
func (idx *Index) CategoriesForGroup(g GroupRef) []string {
	return idx.groupCats[g]
}

// Category returns the tree node for a category name.
func (idx *Index) Category(name string) (*Category, bool) {
	c, ok := idx.categoryByName[name]
	return c, ok
}

// EntriesIn returns the entries placed in a subcategory, in payload order.
func (idx *Index) EntriesIn(category, subcategory string) []*Entry {
	return idx.byPlacement[placement{category, subcategory}]
}

// AllMaturityValues returns every maturity value present, in lifecycle order.
// It is the expansion of the foundation aggregate filter.
func (idx *Index) AllMaturityValues() []string {
	return idx.maturityValues
}

// TagValues returns every tag present, sorted.
func (idx *Index) TagValues() []string {
	return idx.tagValues
}

// LicenseValuesForGroup returns the open source licenses observed in the
// group, sorted. It is the expansion of the open source aggregate filter.
// Placeholders such as NOASSERTION are left out.
func (idx *Index) LicenseValuesForGroup(g GroupRef) []string {
	return idx.setValues(g, func(s *attrSets) map[string]struct{} { return s.licenses })
}

func (idx *Index) OrganizationsForGroup(g GroupRef) []string {
	return idx.setValues(g, func(s *attrSets) map[string]struct{} { return s.organizations })
}

func (idx *Index) CountriesForGroup(g GroupRef) []string {
	return idx.setValues(g, func(s *attrSets) map[string]struct{} { return s.countries })
}

func (idx *Index) IndustriesForGroup(g GroupRef) []string {
	return idx.setValues(g, func(s *attrSets) map[string]struct{} { return s.industries })
}

func (idx *Index) OrgTypesForGroup(g GroupRef) []string {
	return idx.setValues(g, func(s *attrSets) map[string]struct{} { return s.orgTypes })
}

func (idx *Index) setValues(g GroupRef, pick func(*attrSets) map[string]struct{}) []string {
	s, ok := idx.sets[g]
	if !ok {
		return nil
	}
	return sortedKeys(pick(s))
}

// MaturityRank orders maturity values: declared lifecycle values first, then
// unknown values, then archived.
func (idx *Index) MaturityRank(m string) int {
	if m == MaturityArchived {
		return len(idx.maturityOrder) + 2
	}
	if r, ok := idx.maturityRank[m]; ok {
		return r
	}
	return len(idx.maturityOrder) + 1
}

// SortMaturities sorts values in lifecycle order, alphabetically within the
// same rank.
func (idx *Index) SortMaturities(values []string) []string {
	sort.SliceStable(values, func(i, j int) bool {
		ri, rj := idx.MaturityRank(values[i]), idx.MaturityRank(values[j])
		if ri != rj {
			return ri < rj
		}
		return values[i] < values[j]
	})
	return values
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := keys(set)
	sort.Strings(out)
	return out
}
