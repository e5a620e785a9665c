package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// PLY support. Reading handles ascii and binary_little_endian meshes with
// optional per-vertex red/green/blue[/alpha] color properties; writing emits
// ascii. A nonstandard per-face "uchar selected" property round-trips the
// selection state so select runs can be chained through files.

const plySelectedProp = "selected"

type plyProperty struct {
	name      string
	typ       string // scalar type, empty for lists
	list      bool
	countType string
	itemType  string
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

type plyHeader struct {
	format   string // "ascii" or "binary_little_endian"
	elements []plyElement
}

var plyTypeSize = map[string]int{
	"char": 1, "int8": 1,
	"uchar": 1, "uint8": 1,
	"short": 2, "int16": 2,
	"ushort": 2, "uint16": 2,
	"int": 4, "int32": 4,
	"uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

// ReadPLYFile loads a mesh from a PLY file on disk.
func ReadPLYFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mesh file: %w", err)
	}
	defer f.Close()

	m, err := ReadPLY(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}

// ReadPLY parses a PLY mesh from r.
func ReadPLY(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)

	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, err
	}

	m := New()
	var vertexColors []Color

	for _, elem := range header.elements {
		switch elem.name {
		case "vertex":
			vertexColors, err = readPLYVertices(br, header.format, elem, m)
		case "face":
			err = readPLYFaces(br, header.format, elem, m, vertexColors)
		default:
			err = skipPLYElement(br, header.format, elem)
		}
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", elem.name, err)
		}
	}

	return m, nil
}

func parsePLYHeader(br *bufio.Reader) (*plyHeader, error) {
	magic, err := readHeaderLine(br)
	if err != nil {
		return nil, err
	}
	if magic != "ply" {
		return nil, fmt.Errorf("not a PLY file (got %q)", magic)
	}

	h := &plyHeader{}
	for {
		line, err := readHeaderLine(br)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return nil, fmt.Errorf("malformed format line %q", line)
			}
			h.format = fields[1]
			if h.format != "ascii" && h.format != "binary_little_endian" {
				return nil, fmt.Errorf("unsupported PLY format %q", h.format)
			}
		case "comment", "obj_info":
			// ignored
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("malformed element line %q", line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("bad element count in %q", line)
			}
			h.elements = append(h.elements, plyElement{name: fields[1], count: count})
		case "property":
			if len(h.elements) == 0 {
				return nil, fmt.Errorf("property before any element: %q", line)
			}
			prop, err := parsePLYProperty(fields)
			if err != nil {
				return nil, err
			}
			elem := &h.elements[len(h.elements)-1]
			elem.props = append(elem.props, prop)
		case "end_header":
			if h.format == "" {
				return nil, fmt.Errorf("missing format line in header")
			}
			return h, nil
		default:
			return nil, fmt.Errorf("unexpected header line %q", line)
		}
	}
}

func parsePLYProperty(fields []string) (plyProperty, error) {
	if len(fields) >= 2 && fields[1] == "list" {
		if len(fields) != 5 {
			return plyProperty{}, fmt.Errorf("malformed list property %q", strings.Join(fields, " "))
		}
		for _, t := range []string{fields[2], fields[3]} {
			if _, ok := plyTypeSize[t]; !ok {
				return plyProperty{}, fmt.Errorf("unknown PLY type %q", t)
			}
		}
		return plyProperty{name: fields[4], list: true, countType: fields[2], itemType: fields[3]}, nil
	}
	if len(fields) != 3 {
		return plyProperty{}, fmt.Errorf("malformed property %q", strings.Join(fields, " "))
	}
	if _, ok := plyTypeSize[fields[1]]; !ok {
		return plyProperty{}, fmt.Errorf("unknown PLY type %q", fields[1])
	}
	return plyProperty{name: fields[2], typ: fields[1]}, nil
}

func readHeaderLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("truncated PLY header: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// plyRow reads one element row as named scalar values plus at most one list.
type plyRow struct {
	scalars map[string]float64
	list    []int
}

func readPLYRow(br *bufio.Reader, format string, elem plyElement) (plyRow, error) {
	if format == "ascii" {
		return readPLYRowASCII(br, elem)
	}
	return readPLYRowBinary(br, elem)
}

func readPLYRowASCII(br *bufio.Reader, elem plyElement) (plyRow, error) {
	line, err := br.ReadString('\n')
	if err != nil && strings.TrimSpace(line) == "" {
		return plyRow{}, fmt.Errorf("truncated body: %w", err)
	}
	fields := strings.Fields(line)
	row := plyRow{scalars: make(map[string]float64, len(elem.props))}

	pos := 0
	next := func() (string, error) {
		if pos >= len(fields) {
			return "", fmt.Errorf("row %q: too few values", strings.TrimSpace(line))
		}
		v := fields[pos]
		pos++
		return v, nil
	}

	for _, p := range elem.props {
		if p.list {
			raw, err := next()
			if err != nil {
				return plyRow{}, err
			}
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return plyRow{}, fmt.Errorf("bad list count %q", raw)
			}
			row.list = make([]int, n)
			for i := range n {
				raw, err := next()
				if err != nil {
					return plyRow{}, err
				}
				idx, err := strconv.Atoi(raw)
				if err != nil {
					return plyRow{}, fmt.Errorf("bad list value %q", raw)
				}
				row.list[i] = idx
			}
			continue
		}
		raw, err := next()
		if err != nil {
			return plyRow{}, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return plyRow{}, fmt.Errorf("bad value %q for property %s", raw, p.name)
		}
		row.scalars[p.name] = v
	}
	return row, nil
}

func readPLYRowBinary(br *bufio.Reader, elem plyElement) (plyRow, error) {
	row := plyRow{scalars: make(map[string]float64, len(elem.props))}
	for _, p := range elem.props {
		if p.list {
			count, err := readPLYScalar(br, p.countType)
			if err != nil {
				return plyRow{}, err
			}
			n := int(count)
			if n < 0 {
				return plyRow{}, fmt.Errorf("negative list count for %s", p.name)
			}
			row.list = make([]int, n)
			for i := range n {
				v, err := readPLYScalar(br, p.itemType)
				if err != nil {
					return plyRow{}, err
				}
				row.list[i] = int(v)
			}
			continue
		}
		v, err := readPLYScalar(br, p.typ)
		if err != nil {
			return plyRow{}, err
		}
		row.scalars[p.name] = v
	}
	return row, nil
}

func readPLYScalar(br *bufio.Reader, typ string) (float64, error) {
	buf := make([]byte, plyTypeSize[typ])
	if _, err := io.ReadFull(br, buf); err != nil {
		return 0, fmt.Errorf("truncated body reading %s: %w", typ, err)
	}
	switch typ {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(binary.LittleEndian.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(binary.LittleEndian.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(binary.LittleEndian.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(binary.LittleEndian.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf))), nil
	case "double", "float64":
		return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
	}
	return 0, fmt.Errorf("unknown PLY type %q", typ)
}

// colorChannel normalizes a raw channel value by its declared storage type.
func colorChannel(v float64, typ string) float32 {
	switch typ {
	case "uchar", "uint8", "char", "int8":
		return float32(v / 255.0)
	case "ushort", "uint16", "short", "int16":
		return float32(v / 65535.0)
	default:
		return float32(v)
	}
}

func readPLYVertices(br *bufio.Reader, format string, elem plyElement, m *Mesh) ([]Color, error) {
	propType := make(map[string]string, len(elem.props))
	for _, p := range elem.props {
		if !p.list {
			propType[p.name] = p.typ
		}
	}
	_, hasRed := propType["red"]
	_, hasGreen := propType["green"]
	_, hasBlue := propType["blue"]
	_, hasAlpha := propType["alpha"]
	hasColors := hasRed && hasGreen && hasBlue
	m.SetColorLayer(hasColors)

	m.Vertices = make([]Vec3, 0, elem.count)
	var colors []Color
	if hasColors {
		colors = make([]Color, 0, elem.count)
	}

	for i := range elem.count {
		row, err := readPLYRow(br, format, elem)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		m.Vertices = append(m.Vertices, Vec3{
			X: row.scalars["x"],
			Y: row.scalars["y"],
			Z: row.scalars["z"],
		})
		if hasColors {
			c := Color{
				R: colorChannel(row.scalars["red"], propType["red"]),
				G: colorChannel(row.scalars["green"], propType["green"]),
				B: colorChannel(row.scalars["blue"], propType["blue"]),
				A: 1,
			}
			if hasAlpha {
				c.A = colorChannel(row.scalars["alpha"], propType["alpha"])
			}
			colors = append(colors, c)
		}
	}
	return colors, nil
}

func readPLYFaces(br *bufio.Reader, format string, elem plyElement, m *Mesh, vertexColors []Color) error {
	hasList := false
	hasSelected := false
	for _, p := range elem.props {
		if p.list && (p.name == "vertex_indices" || p.name == "vertex_index") {
			hasList = true
		}
		if !p.list && p.name == plySelectedProp {
			hasSelected = true
		}
	}
	if !hasList {
		return fmt.Errorf("face element has no vertex_indices property")
	}

	m.Faces = make([]*Face, 0, elem.count)
	for i := range elem.count {
		row, err := readPLYRow(br, format, elem)
		if err != nil {
			return fmt.Errorf("face %d: %w", i, err)
		}
		if len(row.list) < 3 {
			return fmt.Errorf("face %d: only %d vertices", i, len(row.list))
		}

		f := &Face{Corners: make([]Corner, len(row.list))}
		for j, vi := range row.list {
			if vi < 0 || vi >= len(m.Vertices) {
				return fmt.Errorf("face %d: vertex index %d out of range", i, vi)
			}
			corner := Corner{Vertex: vi}
			if vertexColors != nil {
				corner.Color = vertexColors[vi]
			}
			f.Corners[j] = corner
		}
		if hasSelected {
			f.Selected = row.scalars[plySelectedProp] != 0
		}
		m.Faces = append(m.Faces, f)
	}
	return nil
}

func skipPLYElement(br *bufio.Reader, format string, elem plyElement) error {
	for i := range elem.count {
		if _, err := readPLYRow(br, format, elem); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// WritePLYFile writes the mesh as ascii PLY to path.
func WritePLYFile(m *Mesh, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating mesh file: %w", err)
	}
	defer f.Close()

	if err := WritePLY(m, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WritePLY writes the mesh as ascii PLY, including vertex colors when the
// mesh has a color layer and the per-face selected flag always.
//
// Corner colors are written back per vertex (first corner referencing each
// vertex wins), matching the per-vertex storage the format offers.
func WritePLY(m *Mesh, w io.Writer) error {
	// The vertex list's count is declared uchar; refuse faces it can't hold
	// before emitting anything.
	for i, f := range m.Faces {
		if len(f.Corners) > 255 {
			return fmt.Errorf("face %d has %d corners, more than the 255 a PLY face list can hold", i, len(f.Corners))
		}
	}

	bw := bufio.NewWriter(w)

	vertexColors := make([]Color, len(m.Vertices))
	seen := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		for _, c := range f.Corners {
			if c.Vertex >= 0 && c.Vertex < len(seen) && !seen[c.Vertex] {
				vertexColors[c.Vertex] = c.Color
				seen[c.Vertex] = true
			}
		}
	}

	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintln(bw, "comment exported by vcselect")
	fmt.Fprintf(bw, "element vertex %d\n", len(m.Vertices))
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	if m.HasColorLayer() {
		fmt.Fprintln(bw, "property uchar red")
		fmt.Fprintln(bw, "property uchar green")
		fmt.Fprintln(bw, "property uchar blue")
		fmt.Fprintln(bw, "property uchar alpha")
	}
	fmt.Fprintf(bw, "element face %d\n", len(m.Faces))
	fmt.Fprintln(bw, "property list uchar int vertex_indices")
	fmt.Fprintf(bw, "property uchar %s\n", plySelectedProp)
	fmt.Fprintln(bw, "end_header")

	for i, v := range m.Vertices {
		fmt.Fprintf(bw, "%g %g %g", v.X, v.Y, v.Z)
		if m.HasColorLayer() {
			r, g, b, a := vertexColors[i].To8Bit()
			fmt.Fprintf(bw, " %d %d %d %d", r, g, b, a)
		}
		fmt.Fprintln(bw)
	}

	for _, f := range m.Faces {
		fmt.Fprintf(bw, "%d", len(f.Corners))
		for _, c := range f.Corners {
			fmt.Fprintf(bw, " %d", c.Vertex)
		}
		sel := 0
		if f.Selected {
			sel = 1
		}
		fmt.Fprintf(bw, " %d\n", sel)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing PLY output: %w", err)
	}
	return nil
}
