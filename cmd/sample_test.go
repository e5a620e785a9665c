package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// samplePLY has three single-color faces: 0 red, 1 blue, 2 green.
const samplePLY = `ply
format ascii 1.0
element vertex 9
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
property uchar alpha
element face 3
property list uchar int vertex_indices
end_header
0 0 0 255 0 0 255
1 0 0 255 0 0 255
1 1 0 255 0 0 255
2 0 0 0 0 255 255
3 0 0 0 0 255 255
3 1 0 0 0 255 255
4 0 0 0 255 0 255
5 0 0 0 255 0 255
5 1 0 0 255 0 255
3 0 1 2
3 3 4 5
3 6 7 8
`

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	runErr := fn()
	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured output: %v", err)
	}
	if runErr != nil {
		t.Fatalf("command failed: %v\n%s", runErr, out)
	}
	return string(out)
}

func TestSampleCommand_ReportsSampledFace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.ply")
	if err := os.WriteFile(path, []byte(samplePLY), 0o644); err != nil {
		t.Fatalf("writing mesh: %v", err)
	}

	out := captureStdout(t, func() error {
		rootCmd.SetArgs([]string{"sample", path, "--face", "2", "--json"})
		return rootCmd.Execute()
	})

	var got SampleOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding output %q: %v", out, err)
	}
	if got.Face != 2 {
		t.Errorf("expected face 2, got %d", got.Face)
	}
	if got.Color != "#00ff00" {
		t.Errorf("expected color #00ff00, got %s", got.Color)
	}
	// With --reduction unset the configured default applies.
	if got.Reduction != "first" {
		t.Errorf("expected default reduction 'first', got %q", got.Reduction)
	}
}
