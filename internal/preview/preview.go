// Package preview renders a flat-shaded orthographic snapshot of a mesh with
// its current selection highlighted, for quick visual checks of a select run.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sort"

	"golang.org/x/image/draw"

	"github.com/codyswanson/vcselect/internal/mesh"
)

const (
	// DefaultSize is the output edge length in pixels.
	DefaultSize = 512

	// oversample factor before the final scale-down pass; CatmullRom then
	// smooths the hard triangle edges.
	oversample = 2

	margin = 0.05
)

// highlight is the tint mixed into selected faces.
var highlight = mesh.Color{R: 1.0, G: 0.55, B: 0.1, A: 1}

// Options tunes the render.
type Options struct {
	Size int // output edge length, DefaultSize when zero
}

// Render projects the mesh orthographically onto the XY plane and fills each
// face with its first corner color, tinting selected faces. Faces are drawn
// back to front by mean depth.
func Render(m *mesh.Mesh, opts Options) (*image.RGBA, error) {
	if len(m.Vertices) == 0 || len(m.Faces) == 0 {
		return nil, errors.New("mesh has no geometry to render")
	}

	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}

	canvas := size * oversample
	img := image.NewRGBA(image.Rect(0, 0, canvas, canvas))
	fill(img, color.RGBA{R: 24, G: 24, B: 30, A: 255})

	project := projector(m, canvas)

	order := make([]int, len(m.Faces))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return meanDepth(m, m.Faces[order[a]]) < meanDepth(m, m.Faces[order[b]])
	})

	for _, fi := range order {
		face := m.Faces[fi]
		if len(face.Corners) < 3 {
			continue
		}

		c := face.Corners[0].Color
		if !m.HasColorLayer() {
			c = mesh.Color{R: 0.6, G: 0.6, B: 0.6, A: 1}
		}
		if face.Selected {
			c = mix(c, highlight, 0.55)
		}
		fc := toRGBA(c)

		// fan triangulation around the first corner
		p0 := project(m.Vertices[face.Corners[0].Vertex])
		for i := 1; i < len(face.Corners)-1; i++ {
			p1 := project(m.Vertices[face.Corners[i].Vertex])
			p2 := project(m.Vertices[face.Corners[i+1].Vertex])
			fillTriangle(img, p0, p1, p2, fc)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Over, nil)
	return out, nil
}

// EncodePNG renders the mesh and writes it as PNG.
func EncodePNG(w io.Writer, m *mesh.Mesh, opts Options) error {
	img, err := Render(m, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding preview PNG: %w", err)
	}
	return nil
}

type point struct {
	x, y float64
}

// projector maps mesh XY coordinates into canvas pixels, preserving aspect
// ratio and flipping Y so +Y points up in the image.
func projector(m *mesh.Mesh, canvas int) func(mesh.Vec3) point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range m.Vertices {
		minX = math.Min(minX, v.X)
		maxX = math.Max(maxX, v.X)
		minY = math.Min(minY, v.Y)
		maxY = math.Max(maxY, v.Y)
	}

	spanX := maxX - minX
	spanY := maxY - minY
	span := math.Max(spanX, spanY)
	if span <= 0 {
		span = 1
	}

	usable := float64(canvas) * (1 - 2*margin)
	scale := usable / span
	offX := (float64(canvas) - spanX*scale) / 2
	offY := (float64(canvas) - spanY*scale) / 2

	return func(v mesh.Vec3) point {
		return point{
			x: offX + (v.X-minX)*scale,
			y: float64(canvas) - (offY + (v.Y-minY)*scale),
		}
	}
}

func meanDepth(m *mesh.Mesh, f *mesh.Face) float64 {
	var z float64
	for _, c := range f.Corners {
		z += m.Vertices[c.Vertex].Z
	}
	return z / float64(len(f.Corners))
}

func mix(a, b mesh.Color, t float32) mesh.Color {
	return mesh.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: 1,
	}
}

func toRGBA(c mesh.Color) color.RGBA {
	r, g, b, _ := c.To8Bit()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// fillTriangle rasterizes one triangle with edge functions over its
// bounding box. Winding order doesn't matter; both signs are accepted.
func fillTriangle(img *image.RGBA, p0, p1, p2 point, c color.RGBA) {
	minX := int(math.Floor(math.Min(p0.x, math.Min(p1.x, p2.x))))
	maxX := int(math.Ceil(math.Max(p0.x, math.Max(p1.x, p2.x))))
	minY := int(math.Floor(math.Min(p0.y, math.Min(p1.y, p2.y))))
	maxY := int(math.Ceil(math.Max(p0.y, math.Max(p1.y, p2.y))))

	bounds := img.Bounds()
	minX = max(minX, bounds.Min.X)
	minY = max(minY, bounds.Min.Y)
	maxX = min(maxX, bounds.Max.X-1)
	maxY = min(maxY, bounds.Max.Y-1)

	area := edge(p0, p1, p2)
	if area == 0 {
		return
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := point{x: float64(x) + 0.5, y: float64(y) + 0.5}
			w0 := edge(p1, p2, p)
			w1 := edge(p2, p0, p)
			w2 := edge(p0, p1, p)
			if (w0 >= 0 && w1 >= 0 && w2 >= 0) || (w0 <= 0 && w1 <= 0 && w2 <= 0) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func edge(a, b, p point) float64 {
	return (b.x-a.x)*(p.y-a.y) - (b.y-a.y)*(p.x-a.x)
}
