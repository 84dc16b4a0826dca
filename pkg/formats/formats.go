// Package formats imports geometry files into an intermediate, GPU-agnostic
// representation that the mesh builder turns into vertex and index buffers.
package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/kiln/pkg/math"
)

// NoIndex marks a face corner that has no texture coordinate or normal.
const NoIndex = -1

// Corner references one vertex of a face by 0-based attribute indices.
type Corner struct {
	Position int
	TexCoord int // NoIndex if absent
	Normal   int // NoIndex if absent
}

// Face is a triangle.
type Face [3]Corner

// Group is a contiguous run of faces started by an o, g or usemtl directive,
// or by a glTF primitive.
type Group struct {
	Name      string
	Material  string
	FaceStart int
	FaceCount int
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the box midpoint.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent on each axis.
func (b AABB) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Geometry is the importer output: attribute lists plus triangulated faces.
type Geometry struct {
	Positions []math.Vec3
	TexCoords []math.Vec2
	Normals   []math.Vec3
	Faces     []Face
	Groups    []Group
	Bounds    AABB
}

// ImportOptions controls conversions applied while importing.
type ImportOptions struct {
	// FlipV stores v' = 1 - v for text geometry. Images are uploaded top row
	// first while GL samples from the bottom-left, so this is on by default.
	FlipV bool
}

// DefaultImportOptions returns the options used by Load callers that pass nil.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{FlipV: true}
}

// Load imports a geometry file, choosing the importer by extension.
// .gltf and .glb go through the glTF importer; everything else is parsed as
// Wavefront text.
func Load(path string, opts *ImportOptions) (*Geometry, error) {
	o := DefaultImportOptions()
	if opts != nil {
		o = *opts
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return LoadOBJ(path, o)
	}
}

// computeBounds derives the AABB of the raw positions.
func computeBounds(positions []math.Vec3) AABB {
	if len(positions) == 0 {
		return AABB{}
	}
	b := AABB{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// String summarises the geometry for logs.
func (g *Geometry) String() string {
	return fmt.Sprintf("%d positions, %d uvs, %d normals, %d faces, %d groups",
		len(g.Positions), len(g.TexCoords), len(g.Normals), len(g.Faces), len(g.Groups))
}
