package catalog

// GroupRef identifies either a named group or the implicit group holding the
// whole catalog. The zero value is AllGroups. Named groups never collide with
// the implicit one, even if a group is literally called "all".
type GroupRef struct {
	name  string
	named bool
}

// AllGroups refers to every category of the catalog.
func AllGroups() GroupRef {
	return GroupRef{}
}

// NamedGroup refers to a declared group.
func NamedGroup(name string) GroupRef {
	return GroupRef{name: name, named: true}
}

func (g GroupRef) IsAll() bool {
	return !g.named
}

// Name returns the group name; empty for AllGroups.
func (g GroupRef) Name() string {
	return g.name
}

func (g GroupRef) String() string {
	if !g.named {
		return "all"
	}
	return g.name
}

// MarshalText renders the group for use as a JSON/YAML map key.
func (g GroupRef) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// Equal reports whether both refer to the same group.
func (g GroupRef) Equal(o GroupRef) bool {
	return g == o
}
