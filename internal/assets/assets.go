// Package assets loads engine resources from an asset root and caches them
// by path.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/engine/mesh"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/internal/engine/skybox"
	"github.com/Faultbox/kiln/internal/engine/texture"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/formats"
)

// ShaderDir is the directory under the root searched by NamedShader.
const ShaderDir = "shaders"

// Manager owns every GPU resource it loads. All methods must be called on
// the thread that owns the GL context.
type Manager struct {
	dev  gpu.Device
	root string

	shaders  *Cache[*shader.Shader]
	textures *Cache[*texture.Texture]
	meshes   *Cache[*mesh.Mesh]
	skyboxes *Cache[*skybox.Skybox]

	// source file -> shaders compiled from it
	sources map[string][]*shader.Shader
}

// NewManager creates a manager resolving relative paths against root.
func NewManager(dev gpu.Device, root string) *Manager {
	return &Manager{
		dev:      dev,
		root:     root,
		shaders:  NewCache[*shader.Shader](),
		textures: NewCache[*texture.Texture](),
		meshes:   NewCache[*mesh.Mesh](),
		skyboxes: NewCache[*skybox.Skybox](),
		sources:  make(map[string][]*shader.Shader),
	}
}

// Root returns the asset root directory.
func (m *Manager) Root() string { return m.root }

// Path resolves p against the root. Absolute paths are returned cleaned.
func (m *Manager) Path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.root, p)
}

// Shader compiles a program from two source files, or returns the cached
// program for the same pair.
func (m *Manager) Shader(vertexPath, fragmentPath string) (*shader.Shader, error) {
	vert, frag := m.Path(vertexPath), m.Path(fragmentPath)
	key := vert + "|" + frag
	if s, ok := m.shaders.Get(key); ok {
		return s, nil
	}

	s, err := shader.Load(m.dev, vert, frag)
	if err != nil {
		return nil, err
	}
	m.addShader(key, s, vert, frag)
	return s, nil
}

// NamedShader returns the program called name. A directory
// <root>/shaders/<name> holding vertex.glsl and fragment.glsl wins over the
// embedded program of the same name.
func (m *Manager) NamedShader(name string) (*shader.Shader, error) {
	key := "named:" + name
	if s, ok := m.shaders.Get(key); ok {
		return s, nil
	}

	dir := m.Path(filepath.Join(ShaderDir, name))
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		s, err := shader.LoadDir(m.dev, dir)
		if err != nil {
			return nil, err
		}
		m.addShader(key, s, filepath.Join(dir, "vertex.glsl"), filepath.Join(dir, "fragment.glsl"))
		return s, nil
	}

	s, err := shader.Builtin(m.dev, name)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}
	m.addShader(key, s)
	return s, nil
}

func (m *Manager) addShader(key string, s *shader.Shader, files ...string) {
	m.shaders.Set(key, s)
	for _, f := range files {
		m.sources[f] = append(m.sources[f], s)
	}
	logger.Debug("shader loaded", zap.String("key", key), zap.Strings("files", files))
}

// ShaderFiles lists the source files of every reloadable shader.
func (m *Manager) ShaderFiles() []string {
	files := make([]string, 0, len(m.sources))
	for f := range m.sources {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}

// Reload recompiles every shader built from path. A failed program keeps its
// previous version; the errors are joined. It returns how many shaders were
// rebuilt successfully.
func (m *Manager) Reload(path string) (int, error) {
	var errs []error
	n := 0
	for _, s := range m.sources[filepath.Clean(path)] {
		if err := s.Reload(); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// Texture decodes and uploads an image file.
func (m *Manager) Texture(path string) (*texture.Texture, error) {
	p := m.Path(path)
	if t, ok := m.textures.Get(p); ok {
		return t, nil
	}
	t, err := texture.Load(m.dev, p)
	if err != nil {
		return nil, err
	}
	m.textures.Set(p, t)
	return t, nil
}

// Mesh imports a geometry file and builds a mesh from it. The same file
// with and without tangents are distinct meshes.
func (m *Manager) Mesh(path string, generateTangents bool) (*mesh.Mesh, error) {
	p := m.Path(path)
	key := fmt.Sprintf("%s|tangents=%t", p, generateTangents)
	if mm, ok := m.meshes.Get(key); ok {
		return mm, nil
	}

	geom, err := formats.Load(p, nil)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", path, err)
	}
	mm := mesh.FromGeometry(m.dev, filepath.Base(p), geom, generateTangents)
	m.meshes.Set(key, mm)
	logger.Debug("mesh built",
		zap.String("path", p),
		zap.Int("vertices", mm.VertexCount()),
		zap.Int("indices", mm.IndexCount()),
		zap.Int("submeshes", mm.SubmeshCount()),
	)
	return mm, nil
}

// MeshFromReader parses OBJ text from r and caches the mesh under name.
// The manager owns the result like any file-backed mesh.
func (m *Manager) MeshFromReader(name string, r io.Reader, generateTangents bool) (*mesh.Mesh, error) {
	key := fmt.Sprintf("reader:%s|tangents=%t", name, generateTangents)
	if mm, ok := m.meshes.Get(key); ok {
		return mm, nil
	}

	geom, err := formats.ParseOBJ(r, name, formats.DefaultImportOptions())
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", name, err)
	}
	mm := mesh.FromGeometry(m.dev, name, geom, generateTangents)
	m.meshes.Set(key, mm)
	return mm, nil
}

// Skybox loads the six faces in dir with the named "skybox" program. On
// failure it returns an unloaded skybox together with the error, and
// nothing is cached.
func (m *Manager) Skybox(dir string) (*skybox.Skybox, error) {
	p := m.Path(dir)
	if s, ok := m.skyboxes.Get(p); ok {
		return s, nil
	}

	sh, err := m.NamedShader(shader.Skybox)
	if err != nil {
		return &skybox.Skybox{}, fmt.Errorf("skybox: %w", err)
	}
	s, err := skybox.LoadDir(m.dev, sh, p)
	if err != nil {
		return s, err
	}
	m.skyboxes.Set(p, s)
	return s, nil
}

// Stats sums hits and misses over every cache.
func (m *Manager) Stats() (hits, misses int) {
	for _, s := range []func() (int, int){m.shaders.Stats, m.textures.Stats, m.meshes.Stats, m.skyboxes.Stats} {
		h, mi := s()
		hits += h
		misses += mi
	}
	return hits, misses
}

// Close destroys everything the manager created. Skyboxes go before the
// shaders they draw with.
func (m *Manager) Close() {
	m.skyboxes.Each(func(_ string, s *skybox.Skybox) { s.Destroy() })
	m.meshes.Each(func(_ string, mm *mesh.Mesh) { mm.Destroy() })
	m.textures.Each(func(_ string, t *texture.Texture) { t.Destroy() })
	m.shaders.Each(func(_ string, s *shader.Shader) { s.Destroy() })

	m.skyboxes.Clear()
	m.meshes.Clear()
	m.textures.Clear()
	m.shaders.Clear()
	clear(m.sources)
}
