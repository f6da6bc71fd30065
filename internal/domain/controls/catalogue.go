package controls

// Catalogue is an immutable, insertion-ordered lookup table of controls.
// It is safe for concurrent use because nothing mutates it after construction.
type Catalogue struct {
	ordered []Control
	byID    map[string]Control
}

// NewCatalogue builds a catalogue from the given controls. Later duplicates
// of an ID are ignored so the first declaration wins.
func NewCatalogue(list ...Control) *Catalogue {
	c := &Catalogue{
		ordered: make([]Control, 0, len(list)),
		byID:    make(map[string]Control, len(list)),
	}
	for _, ctl := range list {
		if _, dup := c.byID[ctl.ID]; dup {
			continue
		}
		c.ordered = append(c.ordered, ctl)
		c.byID[ctl.ID] = ctl
	}
	return c
}

// Lookup returns the control with the given id.
func (c *Catalogue) Lookup(id string) (Control, bool) {
	ctl, ok := c.byID[id]
	return ctl, ok
}

// List returns every control in declaration order. The slice is a copy.
func (c *Catalogue) List() []Control {
	out := make([]Control, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of controls.
func (c *Catalogue) Len() int { return len(c.ordered) }

var annexA = NewCatalogue(
	Control{ID: "A.5.1", Name: "Policies for information security", Category: CategoryOrganizational},
	Control{ID: "A.5.2", Name: "Information security roles and responsibilities", Category: CategoryOrganizational},
	Control{ID: "A.6.1", Name: "Screening", Category: CategoryPeople},
	Control{ID: "A.6.2", Name: "Terms and conditions of employment", Category: CategoryPeople},
	Control{ID: "A.7.1", Name: "Physical security perimeters", Category: CategoryPhysical},
	Control{ID: "A.7.2", Name: "Physical entry", Category: CategoryPhysical},
	Control{ID: "A.8.1", Name: "User endpoint devices", Category: CategoryTechnological},
	Control{ID: "A.8.2", Name: "Privileged access rights", Category: CategoryTechnological},
	Control{ID: "A.8.3", Name: "Information access restriction", Category: CategoryTechnological},
)

// Default returns the Annex A subset shipped with the service.
func Default() *Catalogue { return annexA }
