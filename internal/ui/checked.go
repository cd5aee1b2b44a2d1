package ui

// CheckedLeads is the set of checked leads. After CheckAll every lead is
// checked, including leads loaded later, except the ones unchecked since.
type CheckedLeads struct {
	all bool
	// ids holds checked leads, or the exceptions while all is set
	ids map[string]bool
}

// NewCheckedLeads creates an empty set
func NewCheckedLeads() *CheckedLeads {
	return &CheckedLeads{ids: make(map[string]bool)}
}

// IsChecked reports whether the lead with id is checked
func (c *CheckedLeads) IsChecked(id string) bool {
	return c.all != c.ids[id]
}

// Toggle flips one lead and reports whether it is now checked
func (c *CheckedLeads) Toggle(id string) bool {
	if c.ids[id] {
		delete(c.ids, id)
	} else {
		c.ids[id] = true
	}
	return c.IsChecked(id)
}

// ToggleAll checks every lead, or clears the set when all are checked
func (c *CheckedLeads) ToggleAll() bool {
	c.all = !c.all
	clear(c.ids)
	return c.all
}

// AllChecked reports whether every lead is checked
func (c *CheckedLeads) AllChecked() bool {
	return c.all && len(c.ids) == 0
}

// Count returns how many of the loaded leads are checked
func (c *CheckedLeads) Count(loaded int, isLoaded func(id string) bool) int {
	n := 0
	for id := range c.ids {
		if isLoaded(id) {
			n++
		}
	}
	if c.all {
		return loaded - n
	}
	return n
}
