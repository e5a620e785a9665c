package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/codyswanson/vcselect/internal/mesh"
)

// quadMesh builds two side-by-side triangles, the left one red and the
// right one blue.
func quadMesh() *mesh.Mesh {
	m := mesh.New()
	m.SetColorLayer(true)
	m.Vertices = []mesh.Vec3{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
		{X: 2, Y: 0}, {X: 3, Y: 0}, {X: 2, Y: 1},
	}
	m.AddFace(mesh.Color{R: 1, A: 1}, 0, 1, 2)
	m.AddFace(mesh.Color{B: 1, A: 1}, 3, 4, 5)
	return m
}

func TestRender_SizeAndContent(t *testing.T) {
	m := quadMesh()

	img, err := Render(m, Options{Size: 64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 64 {
		t.Errorf("expected 64x64 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	// at least one clearly red and one clearly blue pixel must survive
	var sawRed, sawBlue bool
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.R > 200 && c.G < 80 && c.B < 80 {
				sawRed = true
			}
			if c.B > 200 && c.R < 80 && c.G < 80 {
				sawBlue = true
			}
		}
	}
	if !sawRed || !sawBlue {
		t.Errorf("expected red and blue faces in render, sawRed=%v sawBlue=%v", sawRed, sawBlue)
	}
}

func TestRender_DefaultSize(t *testing.T) {
	img, err := Render(quadMesh(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != DefaultSize {
		t.Errorf("expected default size %d, got %d", DefaultSize, img.Bounds().Dx())
	}
}

func TestRender_SelectionChangesPixels(t *testing.T) {
	plain := quadMesh()

	selected := quadMesh()
	selected.SelectOnly(0)

	a, err := Render(plain, Options{Size: 64})
	if err != nil {
		t.Fatalf("render plain: %v", err)
	}
	b, err := Render(selected, Options{Size: 64})
	if err != nil {
		t.Fatalf("render selected: %v", err)
	}

	if bytes.Equal(a.Pix, b.Pix) {
		t.Error("selecting a face did not change the rendered image")
	}
}

func TestRender_EmptyMesh(t *testing.T) {
	if _, err := Render(mesh.New(), Options{}); err == nil {
		t.Error("expected error for empty mesh")
	}
}

func TestRender_NoColorLayerStillRenders(t *testing.T) {
	m := quadMesh()
	m.SetColorLayer(false)

	if _, err := Render(m, Options{Size: 32}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, quadMesh(), Options{Size: 32}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("expected 32px PNG, got %d", img.Bounds().Dx())
	}
}
