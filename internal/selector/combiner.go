package selector

import (
	"fmt"

	"github.com/codyswanson/vcselect/internal/mesh"
)

// SelectPolicy decides how a match set merges into the existing selection.
type SelectPolicy string

const (
	// SelectReplace overwrites the whole selection with the match set.
	SelectReplace SelectPolicy = "replace"
	// SelectAdd selects the match set and leaves every other flag untouched.
	SelectAdd SelectPolicy = "add"
)

// ParseSelectPolicy maps a user-facing string to a select policy.
func ParseSelectPolicy(s string) (SelectPolicy, error) {
	switch SelectPolicy(s) {
	case SelectReplace, SelectAdd:
		return SelectPolicy(s), nil
	}
	return "", fmt.Errorf("invalid select mode %q (expected %q or %q)", s, SelectReplace, SelectAdd)
}

// Apply merges matches into the mesh's selection state. This is the only
// place that writes Face.Selected. It cannot fail: any validation happens
// before the match set is computed, so by the time Apply runs the whole
// operation is committed.
func Apply(m *mesh.Mesh, matches []*mesh.Face, policy SelectPolicy) {
	if policy == SelectReplace {
		m.ClearSelection()
	}
	for _, f := range matches {
		f.Selected = true
	}
}
