package dashboard

import "github.com/azurescope/explorer/pkg/inventory"

// FilterState is a single-select category filter. The zero value means no
// filter. States are values: Toggle and Reset return the next state instead
// of mutating, so concurrent readers can each hold their own without
// coordination.
type FilterState struct {
	category inventory.Category
	active   bool
}

// Toggle selects a category; toggling the already-active category clears
// the filter. Selecting a new category replaces the previous one, so at
// most one category is ever active.
func (f FilterState) Toggle(c inventory.Category) FilterState {
	if f.active && f.category == c {
		return FilterState{}
	}

	return FilterState{category: c, active: true}
}

// Reset returns the empty filter.
func (f FilterState) Reset() FilterState {
	return FilterState{}
}

// Category returns the active category, if any.
func (f FilterState) Category() (inventory.Category, bool) {
	return f.category, f.active
}

// Allows reports whether resources of the given category are visible.
func (f FilterState) Allows(c inventory.Category) bool {
	return !f.active || f.category == c
}
