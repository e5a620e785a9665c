package selector

import (
	"testing"

	"github.com/codyswanson/vcselect/internal/mesh"
)

func assertSelection(t *testing.T, m *mesh.Mesh, want ...int) {
	t.Helper()
	got := m.SelectedIndices()
	if len(got) != len(want) {
		t.Fatalf("expected selection %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected selection %v, got %v", want, got)
		}
	}
}

func TestApply_ReplaceOverwritesSelection(t *testing.T) {
	m := threeFaceMesh()
	m.SelectOnly(2)

	Apply(m, []*mesh.Face{m.Faces[0]}, SelectReplace)

	assertSelection(t, m, 0)
}

func TestApply_ReplaceIdempotent(t *testing.T) {
	m := threeFaceMesh()
	m.SelectOnly(1, 2)
	matches := []*mesh.Face{m.Faces[0], m.Faces[1]}

	Apply(m, matches, SelectReplace)
	first := m.SelectedIndices()

	Apply(m, matches, SelectReplace)
	second := m.SelectedIndices()

	if len(first) != len(second) {
		t.Fatalf("replace not idempotent: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("replace not idempotent: %v vs %v", first, second)
		}
	}
	assertSelection(t, m, 0, 1)
}

func TestApply_AddKeepsExistingSelection(t *testing.T) {
	m := threeFaceMesh()
	m.SelectOnly(2)

	Apply(m, []*mesh.Face{m.Faces[0]}, SelectAdd)

	assertSelection(t, m, 0, 2)
}

func TestApply_AddIsMonotoneUnion(t *testing.T) {
	m := threeFaceMesh()
	m.SelectOnly(2)

	Apply(m, []*mesh.Face{m.Faces[0]}, SelectAdd)
	Apply(m, []*mesh.Face{m.Faces[1]}, SelectAdd)

	// previously selected {2} union {0} union {1}
	assertSelection(t, m, 0, 1, 2)
}

func TestApply_EmptyMatches(t *testing.T) {
	m := threeFaceMesh()
	m.SelectOnly(1)

	Apply(m, nil, SelectAdd)
	assertSelection(t, m, 1)

	Apply(m, nil, SelectReplace)
	assertSelection(t, m)
}
