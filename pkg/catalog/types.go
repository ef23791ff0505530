package catalog

import "time"

// Catalog is the decoded landscape payload: the category tree, the optional
// groups partitioning it and the entries placed in it.
type Catalog struct {
	Categories    []Category
	Groups        []Group
	MaturityOrder []string
	Entries       []*Entry
}

// Category is a top level node of the landscape tree.
type Category struct {
	Name          string
	Subcategories []string
}

// Group is a named partition of the top level categories.
type Group struct {
	Name       string
	Categories []string
}

// Entry captures a single project or organization in the landscape. Optional
// data is modelled with nil pointers and empty slices; callers should go
// through Values or the Has* helpers rather than inspect fields directly.
type Entry struct {
	ID          string
	Name        string
	Description string
	Category    string
	Subcategory string

	// Maturity is empty when the entry is not governed by the foundation.
	Maturity string
	Tag      string

	AcceptedAt    *time.Time
	Featured      *Featured
	Organization  *Organization
	Repositories  []Repository
	Specification bool
	EndUser       bool
}

// Featured marks an entry for visual emphasis.
type Featured struct {
	Order int
	Label string
}

// Repository is a source repository attached to an entry.
type Repository struct {
	URL          string
	Primary      bool
	License      string
	Stars        *int64
	Contributors *int64
	Topics       []string
}

// Organization describes the entity behind an entry.
type Organization struct {
	Name          string
	Country       string
	Region        string
	Industries    []string
	Kind          string
	Funding       *int64
	FundingRounds []FundingRound
}

// FundingRound captures a single funding event.
type FundingRound struct {
	Amount      *int64
	AnnouncedOn *time.Time
	Kind        string
}

func (e *Entry) HasMaturity() bool {
	return e.Maturity != ""
}

func (e *Entry) IsArchived() bool {
	return e.Maturity == MaturityArchived
}

func (e *Entry) IsFeatured() bool {
	return e.Featured != nil
}

// PrimaryRepository returns the repository flagged as primary, falling back
// to the first one listed.
func (e *Entry) PrimaryRepository() (Repository, bool) {
	if len(e.Repositories) == 0 {
		return Repository{}, false
	}
	for _, repo := range e.Repositories {
		if repo.Primary {
			return repo, true
		}
	}
	return e.Repositories[0], true
}

// Stars sums the stars of every repository carrying the metric.
func (e *Entry) Stars() (int64, bool) {
	return sumMetric(e.Repositories, func(r Repository) *int64 { return r.Stars })
}

// Contributors sums the contributors of every repository carrying the metric.
func (e *Entry) Contributors() (int64, bool) {
	return sumMetric(e.Repositories, func(r Repository) *int64 { return r.Contributors })
}

// Funding returns the organization's total funding, if known.
func (e *Entry) Funding() (int64, bool) {
	if e.Organization == nil || e.Organization.Funding == nil {
		return 0, false
	}
	return *e.Organization.Funding, true
}

// Topics returns the de-duplicated topics of every repository.
func (e *Entry) Topics() []string {
	var topics []string
	seen := make(map[string]struct{})
	for _, repo := range e.Repositories {
		for _, topic := range repo.Topics {
			if _, ok := seen[topic]; ok {
				continue
			}
			seen[topic] = struct{}{}
			topics = append(topics, topic)
		}
	}
	return topics
}

func sumMetric(repos []Repository, metric func(Repository) *int64) (int64, bool) {
	var total int64
	found := false
	for _, repo := range repos {
		if v := metric(repo); v != nil {
			total += *v
			found = true
		}
	}
	return total, found
}
