package selector

import (
	"fmt"

	"github.com/codyswanson/vcselect/internal/mesh"
)

// MatchPolicy aggregates per-corner match booleans into a per-face decision.
type MatchPolicy string

const (
	// MatchAllVertices selects a face only when every corner is within the
	// threshold of the reference color.
	MatchAllVertices MatchPolicy = "all"
	// MatchAnyVertex selects a face when at least one corner is within the
	// threshold.
	MatchAnyVertex MatchPolicy = "any"
)

// ParseMatchPolicy maps a user-facing string to a match policy.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(s) {
	case MatchAllVertices, MatchAnyVertex:
		return MatchPolicy(s), nil
	}
	return "", fmt.Errorf("invalid match mode %q (expected %q or %q)", s, MatchAllVertices, MatchAnyVertex)
}

// MatchOptions tunes a Match run without changing its semantics. OnProgress,
// when set, is called after each face so callers can drive a progress bar.
type MatchOptions struct {
	OnProgress func(done, total int)
}

// Match evaluates every face against the reference color and returns the
// matching faces in mesh order. A corner matches when the Chebyshev distance
// of its color to the reference is at most threshold, so threshold 0 means
// exact equality and growing the threshold only ever adds faces.
//
// Match is a pure read: it never touches Selected flags. It fails with
// *MissingColorDataError when the mesh has no color layer.
func Match(m *mesh.Mesh, reference mesh.Color, threshold float64, policy MatchPolicy, opts MatchOptions) ([]*mesh.Face, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("threshold must be non-negative, got %g", threshold)
	}
	if policy != MatchAllVertices && policy != MatchAnyVertex {
		return nil, fmt.Errorf("invalid match policy %q", policy)
	}
	if !m.HasColorLayer() {
		return nil, &MissingColorDataError{}
	}

	var matches []*mesh.Face
	total := len(m.Faces)
	for i, f := range m.Faces {
		if faceMatches(f, reference, threshold, policy) {
			matches = append(matches, f)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, total)
		}
	}
	return matches, nil
}

func faceMatches(f *mesh.Face, reference mesh.Color, threshold float64, policy MatchPolicy) bool {
	if len(f.Corners) == 0 {
		panic("selector: face with zero corners")
	}
	for _, c := range f.Corners {
		within := mesh.Distance(c.Color, reference) <= threshold
		if policy == MatchAnyVertex && within {
			return true
		}
		if policy == MatchAllVertices && !within {
			return false
		}
	}
	// Every corner agreed: all matched under MatchAllVertices, none under
	// MatchAnyVertex.
	return policy == MatchAllVertices
}
