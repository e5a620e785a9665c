// Package colorindex provides nearest-color lookups over a mesh's faces
// using an in-memory HNSW graph keyed by face index.
package colorindex

import (
	"errors"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/codyswanson/vcselect/internal/mesh"
	"github.com/codyswanson/vcselect/internal/selector"
)

const maxNeighbors = 16

// Result is one nearest-color hit.
type Result struct {
	FaceIndex int     `json:"face_index"`
	Color     string  `json:"color"`
	Distance  float64 `json:"distance"`
}

// Index maps face colors into an HNSW graph for approximate nearest-color
// search. One index serves one mesh; rebuild after the mesh changes.
type Index struct {
	graph *hnsw.Graph[int]
	color map[int]mesh.Color
	mu    sync.RWMutex
}

// chebyshev is the same per-channel distance the matcher uses, in the shape
// the graph wants.
func chebyshev(a, b []float32) float32 {
	var d float32
	for i := range a {
		v := a[i] - b[i]
		if v < 0 {
			v = -v
		}
		if v > d {
			d = v
		}
	}
	return d
}

// New returns an empty index.
func New() *Index {
	return &Index{color: make(map[int]mesh.Color)}
}

// Build indexes every face of the mesh by its reduced color. Fails with
// *selector.MissingColorDataError when the mesh has no color layer.
func (idx *Index) Build(m *mesh.Mesh, reduction selector.SampleReduction) error {
	if !m.HasColorLayer() {
		return &selector.MissingColorDataError{}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	g := hnsw.NewGraph[int]()
	g.M = maxNeighbors
	g.Ml = 1.0 / float64(maxNeighbors)
	g.Distance = chebyshev

	idx.color = make(map[int]mesh.Color, len(m.Faces))
	for i, f := range m.Faces {
		c := selector.SampleFace(f, reduction)
		g.Add(hnsw.MakeNode(i, c.Vector()))
		idx.color[i] = c
	}

	idx.graph = g
	return nil
}

// Count returns the number of indexed faces.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.color)
}

// Nearest returns up to k faces whose colors are closest to the query,
// ordered by distance. Exact distances are recomputed from the node vectors
// since graph traversal order is approximate.
func (idx *Index) Nearest(query mesh.Color, k int) ([]Result, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.graph == nil {
		return nil, errors.New("color index not built")
	}
	if k <= 0 {
		return nil, nil
	}

	neighbors := idx.graph.Search(query.Vector(), k)

	results := make([]Result, 0, len(neighbors))
	for _, n := range neighbors {
		c := idx.color[n.Key]
		results = append(results, Result{
			FaceIndex: n.Key,
			Color:     c.Hex(),
			Distance:  mesh.Distance(query, c),
		})
	}
	// Search order is approximate; the recomputed distances are not.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance == results[j].Distance {
			return results[i].FaceIndex < results[j].FaceIndex
		}
		return results[i].Distance < results[j].Distance
	})
	return results, nil
}
