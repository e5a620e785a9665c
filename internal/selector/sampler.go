package selector

import (
	"fmt"

	"github.com/codyswanson/vcselect/internal/mesh"
)

// SampleReduction decides how a multi-corner face collapses to one color.
type SampleReduction string

const (
	// ReduceFirstCorner takes the first corner in winding order. The default.
	ReduceFirstCorner SampleReduction = "first"
	// ReduceAverage averages all corner colors channel-wise.
	ReduceAverage SampleReduction = "average"
)

// ParseSampleReduction maps a user-facing string to a reduction policy.
func ParseSampleReduction(s string) (SampleReduction, error) {
	switch SampleReduction(s) {
	case ReduceFirstCorner, ReduceAverage:
		return SampleReduction(s), nil
	}
	return "", fmt.Errorf("invalid reduction %q (expected %q or %q)", s, ReduceFirstCorner, ReduceAverage)
}

// Sample reads the reference color from the mesh's single selected face.
// It fails with *InvalidSelectionCountError unless exactly one face is
// selected, and with *MissingColorDataError when the mesh has no color
// layer. It mutates nothing.
func Sample(m *mesh.Mesh, reduction SampleReduction) (mesh.Color, error) {
	if !m.HasColorLayer() {
		return mesh.Color{}, &MissingColorDataError{}
	}

	face, count := m.ActiveFace()
	if face == nil {
		return mesh.Color{}, &InvalidSelectionCountError{Required: 1, Got: count}
	}

	return SampleFace(face, reduction), nil
}

// SampleFace reduces one face's corner colors to a single color.
func SampleFace(f *mesh.Face, reduction SampleReduction) mesh.Color {
	if len(f.Corners) == 0 {
		panic("selector: face with zero corners")
	}
	if reduction == ReduceAverage {
		var r, g, b, a float64
		for _, c := range f.Corners {
			r += float64(c.Color.R)
			g += float64(c.Color.G)
			b += float64(c.Color.B)
			a += float64(c.Color.A)
		}
		n := float64(len(f.Corners))
		return mesh.Color{
			R: float32(r / n),
			G: float32(g / n),
			B: float32(b / n),
			A: float32(a / n),
		}
	}
	return f.Corners[0].Color
}
