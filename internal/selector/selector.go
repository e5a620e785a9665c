// Package selector implements selecting mesh faces by vertex color: sampling
// a reference color from the active face, matching faces against it within a
// threshold, and merging the result into the selection state.
package selector

import (
	"fmt"

	"github.com/codyswanson/vcselect/internal/mesh"
)

// Selector is one editing session's selection state: the held reference
// color plus the two user-facing operations, Sample and Select. The shell
// (CLI or a web session) owns a Selector per user; the mesh stays owned by
// the caller.
//
// A single sample or select call runs synchronously and either completes or
// fails without partial mutation; the Selector assumes no concurrent writes
// to the mesh during a call.
type Selector struct {
	reference mesh.Color
	reduction SampleReduction
}

// New returns a Selector with the reference color initialized to opaque
// white and the first-corner sample reduction.
func New() *Selector {
	return &Selector{
		reference: mesh.White,
		reduction: ReduceFirstCorner,
	}
}

// Reference returns the currently held reference color.
func (s *Selector) Reference() mesh.Color {
	return s.reference
}

// SetReference overwrites the held reference color. The shell uses this when
// the reference comes from somewhere other than sampling, e.g. a stored
// palette swatch.
func (s *Selector) SetReference(c mesh.Color) {
	s.reference = c
}

// Reduction returns the active sample reduction.
func (s *Selector) Reduction() SampleReduction {
	return s.reduction
}

// SetReduction changes how sampled faces reduce to one color.
func (s *Selector) SetReduction(r SampleReduction) {
	s.reduction = r
}

// Sample reads the reference color from the mesh's single selected face and
// holds it for subsequent Select calls. On error the held reference is left
// unchanged.
func (s *Selector) Sample(m *mesh.Mesh) (mesh.Color, error) {
	c, err := Sample(m, s.reduction)
	if err != nil {
		return mesh.Color{}, err
	}
	s.reference = c
	return c, nil
}

// SelectOptions carries the settings surface of a select action.
type SelectOptions struct {
	Threshold    float64
	MatchPolicy  MatchPolicy
	SelectPolicy SelectPolicy

	// OnProgress, when set, receives per-face progress during matching.
	OnProgress func(done, total int)
}

// SelectResult reports what a select action did.
type SelectResult struct {
	// Matched is the number of faces within the threshold.
	Matched int
	// Selected is the number of selected faces after combining.
	Selected int
}

// Select matches every face against the held reference color and merges the
// result into the mesh's selection according to the select policy. Matching
// failures surface before any flag is written, so a failed call leaves the
// mesh exactly as it was.
func (s *Selector) Select(m *mesh.Mesh, opts SelectOptions) (*SelectResult, error) {
	if opts.SelectPolicy != SelectReplace && opts.SelectPolicy != SelectAdd {
		return nil, fmt.Errorf("invalid select policy %q", opts.SelectPolicy)
	}

	matches, err := Match(m, s.reference, opts.Threshold, opts.MatchPolicy, MatchOptions{
		OnProgress: opts.OnProgress,
	})
	if err != nil {
		return nil, err
	}

	Apply(m, matches, opts.SelectPolicy)

	return &SelectResult{
		Matched:  len(matches),
		Selected: m.SelectedCount(),
	}, nil
}
