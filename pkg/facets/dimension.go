package facets

// Dimension is the attribute used to group entries in the card view.
type Dimension string

const (
	DimensionNone     Dimension = "none"
	DimensionCategory Dimension = "category"
	DimensionMaturity Dimension = "maturity"
	DimensionTag      Dimension = "tag"
)

// DefaultDimension is used when the requested dimension is not available.
const DefaultDimension = DimensionCategory

// SortField orders the entries of a card view bucket.
type SortField string

const (
	SortName         SortField = "name"
	SortStars        SortField = "stars"
	SortContributors SortField = "contributors"
	SortFunding      SortField = "funding"
	SortDate         SortField = "date"
)

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

type Sort struct {
	Field     SortField     `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}

// DefaultSort is name ascending, always available.
var DefaultSort = Sort{Field: SortName, Direction: Asc}

// ParseDimension returns the dimension named s, or false.
func ParseDimension(s string) (Dimension, bool) {
	switch d := Dimension(s); d {
	case DimensionNone, DimensionCategory, DimensionMaturity, DimensionTag:
		return d, true
	}
	return "", false
}

// ParseSortField returns the sort field named s, or false.
func ParseSortField(s string) (SortField, bool) {
	switch f := SortField(s); f {
	case SortName, SortStars, SortContributors, SortFunding, SortDate:
		return f, true
	}
	return "", false
}
