package catalog

// Attribute names a filterable dimension of an entry.
type Attribute string

const (
	AttrMaturity     Attribute = "maturity"
	AttrTag          Attribute = "tag"
	AttrOrganization Attribute = "organization"
	AttrLicense      Attribute = "license"
	AttrCountry      Attribute = "country"
	AttrIndustry     Attribute = "industry"
	AttrOrgType      Attribute = "org_type"
	AttrExtra        Attribute = "extra"
)

// Well known values.
const (
	MaturityArchived = "archived"
	// Undefined is the bucket key used for entries lacking a classify value.
	Undefined = "undefined"

	ExtraSpecification = "specification"
	ExtraEndUser       = "enduser"
)

// Attributes lists every filterable attribute in presentation order.
var Attributes = []Attribute{
	AttrMaturity,
	AttrTag,
	AttrOrganization,
	AttrLicense,
	AttrCountry,
	AttrIndustry,
	AttrOrgType,
	AttrExtra,
}

func (a Attribute) Known() bool {
	switch a {
	case AttrMaturity, AttrTag, AttrOrganization, AttrLicense,
		AttrCountry, AttrIndustry, AttrOrgType, AttrExtra:
		return true
	}
	return false
}

func (a Attribute) String() string {
	return string(a)
}

// Values returns the entry's values for the attribute. Multi-valued
// attributes (licenses, industries, extra flags) may return several values;
// an absent attribute returns nil. Unknown attributes have no values.
func (e *Entry) Values(attr Attribute) []string {
	switch attr {
	case AttrMaturity:
		return single(e.Maturity)
	case AttrTag:
		return single(e.Tag)
	case AttrOrganization:
		if e.Organization == nil {
			return nil
		}
		return single(e.Organization.Name)
	case AttrLicense:
		var licenses []string
		for _, repo := range e.Repositories {
			if repo.License != "" {
				licenses = appendUnique(licenses, repo.License)
			}
		}
		return licenses
	case AttrCountry:
		if e.Organization == nil {
			return nil
		}
		return single(e.Organization.Country)
	case AttrIndustry:
		if e.Organization == nil {
			return nil
		}
		var industries []string
		for _, industry := range e.Organization.Industries {
			if industry != "" {
				industries = appendUnique(industries, industry)
			}
		}
		return industries
	case AttrOrgType:
		if e.Organization == nil {
			return nil
		}
		return single(e.Organization.Kind)
	case AttrExtra:
		var extra []string
		if e.Specification {
			extra = append(extra, ExtraSpecification)
		}
		if e.EndUser {
			extra = append(extra, ExtraEndUser)
		}
		return extra
	}
	return nil
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
