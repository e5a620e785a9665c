package selector

import "fmt"

// InvalidSelectionCountError reports a sampling precondition failure: the
// mesh must have exactly one selected face to sample from.
type InvalidSelectionCountError struct {
	Required int
	Got      int
}

func (e *InvalidSelectionCountError) Error() string {
	return fmt.Sprintf("sampling requires exactly %d selected face, got %d", e.Required, e.Got)
}

// MissingColorDataError reports that the mesh carries no per-corner color
// layer at all. Distinct from an empty match set, which is a valid outcome.
type MissingColorDataError struct{}

func (e *MissingColorDataError) Error() string {
	return "mesh has no vertex color layer"
}
