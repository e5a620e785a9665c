// Package mesh holds the polygon mesh model vcselect operates on: faces made
// of ordered corners, per-corner vertex colors, and a per-face selection flag.
package mesh

// Vec3 is a vertex position. Only the preview renderer looks at it; the
// selection core never touches geometry.
type Vec3 struct {
	X, Y, Z float64
}

// Corner is a face's reference to one of its vertices, carrying the
// per-face-instance color for that vertex (a "loop" in modeling terms).
type Corner struct {
	Vertex int // index into Mesh.Vertices
	Color  Color
}

// Face is an ordered sequence of corners in winding order plus the
// selection flag the combiner writes.
type Face struct {
	Corners  []Corner
	Selected bool
}

// Mesh is an ordered collection of faces owned by the caller. The selection
// core only reads corner colors and flips Selected flags; it never adds or
// removes geometry.
type Mesh struct {
	Vertices []Vec3
	Faces    []*Face

	hasColors bool
}

// New returns an empty mesh without a color layer.
func New() *Mesh {
	return &Mesh{}
}

// SetColorLayer marks whether per-corner color data is present. Loaders call
// this once; matching against a mesh without a color layer fails rather than
// comparing zero values.
func (m *Mesh) SetColorLayer(present bool) {
	m.hasColors = present
}

// HasColorLayer reports whether the mesh carries per-corner color data.
func (m *Mesh) HasColorLayer() bool {
	return m.hasColors
}

// AddFace appends a face built from vertex indices, all corners colored c.
func (m *Mesh) AddFace(c Color, vertices ...int) *Face {
	f := &Face{Corners: make([]Corner, len(vertices))}
	for i, v := range vertices {
		f.Corners[i] = Corner{Vertex: v, Color: c}
	}
	m.Faces = append(m.Faces, f)
	return f
}

// SelectedCount returns the number of currently selected faces.
func (m *Mesh) SelectedCount() int {
	n := 0
	for _, f := range m.Faces {
		if f.Selected {
			n++
		}
	}
	return n
}

// SelectedIndices returns the indices of selected faces in mesh order.
func (m *Mesh) SelectedIndices() []int {
	var out []int
	for i, f := range m.Faces {
		if f.Selected {
			out = append(out, i)
		}
	}
	return out
}

// ActiveFace returns the single selected face when exactly one face is
// selected. Otherwise it returns nil and the observed selection count.
func (m *Mesh) ActiveFace() (*Face, int) {
	var active *Face
	count := 0
	for _, f := range m.Faces {
		if f.Selected {
			active = f
			count++
		}
	}
	if count != 1 {
		return nil, count
	}
	return active, 1
}

// ClearSelection deselects every face.
func (m *Mesh) ClearSelection() {
	for _, f := range m.Faces {
		f.Selected = false
	}
}

// SelectOnly selects exactly the faces at the given indices. Indices outside
// the mesh are ignored.
func (m *Mesh) SelectOnly(indices ...int) {
	m.ClearSelection()
	for _, i := range indices {
		if i >= 0 && i < len(m.Faces) {
			m.Faces[i].Selected = true
		}
	}
}
