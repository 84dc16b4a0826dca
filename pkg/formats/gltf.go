package formats

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/kiln/pkg/math"
)

// LoadGLTF imports every triangle primitive of a .gltf or .glb file.
// Each primitive becomes one group. Node transforms are not applied; the
// result is the meshes in their local space.
//
// glTF already stores UVs with a top-left origin, so no V flip is applied.
func LoadGLTF(path string) (*Geometry, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	geom := &Geometry{}
	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			if err := appendPrimitive(doc, geom, m.Name, prim); err != nil {
				return nil, &ParseError{
					Path:      path,
					Directive: fmt.Sprintf("mesh %d primitive %d", mi, pi),
					Err:       err,
				}
			}
		}
	}

	geom.Bounds = computeBounds(geom.Positions)
	return geom, nil
}

func appendPrimitive(doc *gltf.Document, geom *Geometry, meshName string, prim *gltf.Primitive) error {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("texcoords: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrTooFewVertices, len(indices))
	}

	posBase := len(geom.Positions)
	uvBase := len(geom.TexCoords)
	nBase := len(geom.Normals)

	for _, p := range positions {
		geom.Positions = append(geom.Positions, math.Vec3{X: p[0], Y: p[1], Z: p[2]})
	}
	for _, n := range normals {
		geom.Normals = append(geom.Normals, math.Vec3{X: n[0], Y: n[1], Z: n[2]})
	}
	for _, uv := range uvs {
		geom.TexCoords = append(geom.TexCoords, math.Vec2{X: uv[0], Y: uv[1]})
	}

	corner := func(i uint32) (Corner, error) {
		if int(i) >= len(positions) {
			return Corner{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(positions))
		}
		c := Corner{Position: posBase + int(i), TexCoord: NoIndex, Normal: NoIndex}
		if int(i) < len(uvs) {
			c.TexCoord = uvBase + int(i)
		}
		if int(i) < len(normals) {
			c.Normal = nBase + int(i)
		}
		return c, nil
	}

	group := Group{Name: meshName, FaceStart: len(geom.Faces)}
	if prim.Material != nil && int(*prim.Material) < len(doc.Materials) {
		group.Material = doc.Materials[*prim.Material].Name
	}

	for t := 0; t < len(indices); t += 3 {
		var f Face
		for k := 0; k < 3; k++ {
			c, err := corner(indices[t+k])
			if err != nil {
				return err
			}
			f[k] = c
		}
		geom.Faces = append(geom.Faces, f)
	}

	group.FaceCount = len(geom.Faces) - group.FaceStart
	if group.FaceCount > 0 {
		geom.Groups = append(geom.Groups, group)
	}
	return nil
}
