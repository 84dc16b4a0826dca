package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/kiln/pkg/math"
)

// OBJ parse errors.
var (
	ErrMalformedNumber = errors.New("malformed number")
	ErrTooFewVertices  = errors.New("face needs at least 3 vertices")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// ParseError locates a failure inside a geometry file.
type ParseError struct {
	Path      string
	Line      int
	Directive string
	Err       error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s: %v", e.Path, e.Line, e.Directive, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string, opts ImportOptions) (*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	return ParseOBJ(f, path, opts)
}

// ParseOBJ parses OBJ text from r. name is used in error messages only.
func ParseOBJ(r io.Reader, name string, opts ImportOptions) (*Geometry, error) {
	p := objParser{name: name, opts: opts, geom: &Geometry{}}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Path: name, Line: p.line, Err: err}
	}

	p.closeGroup()
	p.geom.Bounds = computeBounds(p.geom.Positions)
	return p.geom, nil
}

type objParser struct {
	name string
	opts ImportOptions
	line int
	geom *Geometry

	group   Group
	started bool
}

func (p *objParser) fail(directive string, err error) error {
	return &ParseError{Path: p.name, Line: p.line, Directive: directive, Err: err}
}

func (p *objParser) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := p.floats(fields, 3)
		if err != nil {
			return err
		}
		p.geom.Positions = append(p.geom.Positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})

	case "vt":
		// A third (w) component is allowed and ignored.
		v, err := p.floats(fields, 2)
		if err != nil {
			return err
		}
		uv := math.Vec2{X: v[0], Y: v[1]}
		if p.opts.FlipV {
			uv.Y = 1 - uv.Y
		}
		p.geom.TexCoords = append(p.geom.TexCoords, uv)

	case "vn":
		v, err := p.floats(fields, 3)
		if err != nil {
			return err
		}
		p.geom.Normals = append(p.geom.Normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})

	case "f":
		return p.parseFace(fields)

	case "o", "g":
		p.startGroup(strings.Join(fields[1:], " "), p.group.Material)

	case "usemtl":
		p.startGroup(p.group.Name, strings.Join(fields[1:], " "))
	}
	return nil
}

// floats parses exactly n leading numeric arguments; extra arguments are ignored.
func (p *objParser) floats(fields []string, n int) ([]float32, error) {
	if len(fields)-1 < n {
		return nil, p.fail(fields[0], fmt.Errorf("%w: want %d values, got %d", ErrMalformedNumber, n, len(fields)-1))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return nil, p.fail(fields[0], fmt.Errorf("%w: %q", ErrMalformedNumber, fields[i+1]))
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (p *objParser) parseFace(fields []string) error {
	if len(fields) < 4 {
		return p.fail("f", ErrTooFewVertices)
	}

	corners := make([]Corner, 0, len(fields)-1)
	for _, tok := range fields[1:] {
		c, err := p.parseCorner(tok)
		if err != nil {
			return err
		}
		corners = append(corners, c)
	}

	if !p.started {
		p.started = true
		p.group.FaceStart = len(p.geom.Faces)
	}

	// Fan around the first corner.
	for i := 1; i < len(corners)-1; i++ {
		p.geom.Faces = append(p.geom.Faces, Face{corners[0], corners[i], corners[i+1]})
	}
	return nil
}

// parseCorner handles v, v/vt, v//vn and v/vt/vn.
func (p *objParser) parseCorner(tok string) (Corner, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 || parts[0] == "" {
		return Corner{}, p.fail("f", fmt.Errorf("%w: bad vertex %q", ErrMalformedNumber, tok))
	}

	c := Corner{Position: NoIndex, TexCoord: NoIndex, Normal: NoIndex}
	var err error
	if c.Position, err = p.resolve(parts[0], len(p.geom.Positions)); err != nil {
		return Corner{}, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.TexCoord, err = p.resolve(parts[1], len(p.geom.TexCoords)); err != nil {
			return Corner{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.Normal, err = p.resolve(parts[2], len(p.geom.Normals)); err != nil {
			return Corner{}, err
		}
	}
	return c, nil
}

// resolve converts a 1-based or negative OBJ index to 0-based. Negative
// indices count back from the end of the list as parsed so far.
func (p *objParser) resolve(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.fail("f", fmt.Errorf("%w: index %q", ErrMalformedNumber, s))
	}

	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return 0, p.fail("f", fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, n, count))
	}
	return idx, nil
}

func (p *objParser) startGroup(name, material string) {
	p.closeGroup()
	p.group = Group{Name: name, Material: material}
	p.started = false
}

// closeGroup records the current group if it received any faces.
func (p *objParser) closeGroup() {
	if !p.started {
		return
	}
	p.group.FaceCount = len(p.geom.Faces) - p.group.FaceStart
	if p.group.FaceCount > 0 {
		p.geom.Groups = append(p.geom.Groups, p.group)
	}
	p.started = false
}
