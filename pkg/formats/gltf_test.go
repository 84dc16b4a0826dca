package formats

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writeTestGLTF writes a single indexed quad (two triangles) with positions
// and texture coordinates stored in an embedded buffer.
func writeTestGLTF(t *testing.T) string {
	t.Helper()

	buf := new(bytes.Buffer)
	positions := []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}
	uvs := []float32{0, 1, 1, 1, 1, 0, 0, 0}
	indices := []uint16{0, 1, 2, 0, 2, 3}
	binary.Write(buf, binary.LittleEndian, positions)
	binary.Write(buf, binary.LittleEndian, uvs)
	binary.Write(buf, binary.LittleEndian, indices)

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 48},
    {"buffer": 0, "byteOffset": 48, "byteLength": 32},
    {"buffer": 0, "byteOffset": 80, "byteLength": 12}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5126, "count": 4, "type": "VEC2"},
    {"bufferView": 2, "componentType": 5123, "count": 6, "type": "SCALAR"}
  ],
  "materials": [{"name": "stone"}],
  "meshes": [{"name": "quad", "primitives": [{"attributes": {"POSITION": 0, "TEXCOORD_0": 1}, "indices": 2, "material": 0}]}]
}`, buf.Len(), base64.StdEncoding.EncodeToString(buf.Bytes()))

	path := filepath.Join(t.TempDir(), "quad.gltf")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGLTF_Quad(t *testing.T) {
	g, err := Load(writeTestGLTF(t), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(g.Positions) != 4 || len(g.TexCoords) != 4 || len(g.Normals) != 0 {
		t.Fatalf("counts: %s", g)
	}
	if len(g.Faces) != 2 {
		t.Fatalf("Faces = %d, want 2", len(g.Faces))
	}
	if len(g.Groups) != 1 || g.Groups[0].Name != "quad" || g.Groups[0].Material != "stone" {
		t.Errorf("Groups = %+v", g.Groups)
	}

	c := g.Faces[1][2]
	if c.Position != 3 || c.TexCoord != 3 || c.Normal != NoIndex {
		t.Errorf("corner = %+v, want position 3, uv 3, no normal", c)
	}
	// glTF UVs are stored as-is even though FlipV defaults on.
	if g.TexCoords[0].Y != 1 {
		t.Errorf("uv0.v = %v, want 1 (unflipped)", g.TexCoords[0].Y)
	}
	if g.Bounds.Max.X != 1 || g.Bounds.Max.Y != 1 {
		t.Errorf("Bounds = %+v", g.Bounds)
	}
}

func TestLoadGLTF_MissingFile(t *testing.T) {
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "none.glb")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
