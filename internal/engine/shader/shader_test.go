package shader

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kiln/internal/engine/gpu/gputest"
)

func writeSources(t *testing.T, dir, vs, fs string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vertex.glsl"), []byte(vs), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fragment.glsl"), []byte(fs), 0o644))
}

func TestBuiltinsCompile(t *testing.T) {
	for _, name := range []string{Lit, Simple, Skybox} {
		t.Run(name, func(t *testing.T) {
			dev := gputest.New()
			s, err := Builtin(dev, name)
			require.NoError(t, err)
			assert.Equal(t, name, s.Name)
			assert.NotZero(t, s.Program())
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "void main() {}", "void main() {}")

	dev := gputest.New("transform")
	s, err := LoadDir(dev, dir)
	require.NoError(t, err)

	assert.Equal(t, int32(0), s.UniformLocation("transform"))
	assert.Equal(t, int32(-1), s.UniformLocation("missing"))
	vs, fs := s.Sources()
	assert.Equal(t, filepath.Join(dir, "vertex.glsl"), vs)
	assert.Equal(t, filepath.Join(dir, "fragment.glsl"), fs)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(gputest.New(), filepath.Join(dir, "a.vert"), filepath.Join(dir, "a.frag"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "a.vert")
}

func TestLoad_CompileErrorNamesFiles(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "void main() {}", gputest.FailMarker)

	_, err := LoadDir(gputest.New(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, gputest.ErrCompile)
	assert.Contains(t, err.Error(), "fragment.glsl")
	assert.Contains(t, err.Error(), "fragment shader")
}

func TestFromSource(t *testing.T) {
	dev := gputest.New()
	s, err := FromSource(dev, "inline", "void main() {}", "void main() {}")
	require.NoError(t, err)

	assert.Error(t, s.Reload(), "in-memory shaders have nothing to reload")

	_, err = FromSource(dev, "broken", gputest.FailMarker, "")
	assert.ErrorIs(t, err, gputest.ErrCompile)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"p.vert": {Data: []byte("void main() {}")},
		"p.frag": {Data: []byte("void main() {}")},
	}
	s, err := LoadFS(gputest.New(), fsys, "p.vert", "p.frag")
	require.NoError(t, err)
	vs, fs := s.Sources()
	assert.Empty(t, vs)
	assert.Empty(t, fs)
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "void main() {}", "void main() {}")

	dev := gputest.New("a")
	s, err := LoadDir(dev, dir)
	require.NoError(t, err)
	first := s.Program()
	s.UniformLocation("a")

	t.Run("failure keeps previous program", func(t *testing.T) {
		writeSources(t, dir, "void main() {}", gputest.FailMarker)
		require.Error(t, s.Reload())
		assert.Equal(t, first, s.Program())
		assert.Equal(t, 1, dev.Live("program"))
	})

	t.Run("success swaps program", func(t *testing.T) {
		writeSources(t, dir, "void main() {}", "void main() { }")
		require.NoError(t, s.Reload())
		assert.NotEqual(t, first, s.Program())
		assert.Equal(t, 1, dev.Live("program"), "old program deleted")
		assert.Equal(t, int32(0), s.UniformLocation("a"))
	})
}

func TestActiveUniforms(t *testing.T) {
	dev := gputest.New()
	dev.SetUniforms("baseColor:vec3", "baseMap:sampler2D")
	s, err := FromSource(dev, "r", "", "")
	require.NoError(t, err)

	u := s.ActiveUniforms()
	require.Len(t, u, 2)
	assert.Equal(t, "baseMap", u[1].Name)
	assert.Equal(t, "sampler2D", u[1].Type)
}

func TestDestroy(t *testing.T) {
	dev := gputest.New()
	s, err := Builtin(dev, Simple)
	require.NoError(t, err)

	s.Destroy()
	s.Destroy()
	assert.Equal(t, 0, dev.Live("program"))
	assert.Equal(t, 1, dev.Count("DeleteProgram"))
}
