// Package skybox draws a cube-mapped background behind the scene.
package skybox

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/internal/engine/texture"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/math"
)

// FaceFiles are the per-face file names LoadDir looks for, in cube map order.
var FaceFiles = [6]string{"right.png", "left.png", "top.png", "bottom.png", "front.png", "back.png"}

// cube is a unit cube seen from inside, 36 vertices.
var cube = []float32{
	-1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
	-1, -1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1,
	1, -1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1,
	-1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1, 1,
	-1, 1, -1, 1, 1, -1, 1, 1, 1, 1, 1, 1, -1, 1, 1, -1, 1, -1,
	-1, -1, -1, -1, -1, 1, 1, -1, -1, 1, -1, -1, -1, -1, 1, 1, -1, 1,
}

// Skybox is a cube map drawn at the far plane. The zero value and any
// skybox whose construction failed are unloaded; Render on them reports
// false so callers can fall back to a solid clear.
type Skybox struct {
	dev    gpu.Device
	shader *shader.Shader
	cube   *texture.Texture
	vao    uint32
	vbo    uint32

	viewLoc, projLoc, samplerLoc int32
}

// New builds a skybox from six face images ordered +X, -X, +Y, -Y, +Z, -Z.
// On failure it returns an unloaded skybox together with the error.
func New(dev gpu.Device, sh *shader.Shader, faces [6]string) (*Skybox, error) {
	sky := &Skybox{dev: dev}
	if sh == nil {
		return sky, fmt.Errorf("skybox: no shader")
	}

	view, proj, sampler := sh.UniformLocation("view"), sh.UniformLocation("projection"), sh.UniformLocation("skybox")
	if view < 0 || proj < 0 || sampler < 0 {
		return sky, fmt.Errorf("skybox: shader %s lacks view, projection or skybox uniform", sh.Name)
	}

	tex, err := texture.LoadCubemap(dev, faces)
	if err != nil {
		return sky, fmt.Errorf("skybox: %w", err)
	}

	sky.shader = sh
	sky.cube = tex
	sky.viewLoc, sky.projLoc, sky.samplerLoc = view, proj, sampler

	sky.vao = dev.CreateVertexArray()
	sky.vbo = dev.CreateBuffer()
	dev.BindVertexArray(sky.vao)
	dev.VertexData(sky.vbo, cube)
	dev.VertexLayout(3*4, []gpu.Attrib{{Location: 0, Components: 3}})
	dev.BindVertexArray(0)

	logger.Debug("skybox created", zap.String("face", faces[0]))
	return sky, nil
}

// LoadDir builds a skybox from the FaceFiles inside dir.
func LoadDir(dev gpu.Device, sh *shader.Shader, dir string) (*Skybox, error) {
	var faces [6]string
	for i, name := range FaceFiles {
		faces[i] = filepath.Join(dir, name)
	}
	return New(dev, sh, faces)
}

// Loaded reports whether the skybox can be drawn.
func (s *Skybox) Loaded() bool {
	return s != nil && s.vao != 0
}

// Render draws the cube with the translation stripped from view so the sky
// stays centred on the camera. Depth uses LEQUAL because the shader places
// every fragment exactly on the far plane.
func (s *Skybox) Render(view, projection math.Mat4) bool {
	if !s.Loaded() {
		return false
	}
	dev := s.dev

	dev.SetDepthFunc(gpu.DepthLessEqual)
	dev.SetDepthWrite(false)
	dev.SetCull(gpu.CullNone)

	s.shader.Use()
	dev.UniformMatrix4(s.viewLoc, view.WithoutTranslation())
	dev.UniformMatrix4(s.projLoc, projection)
	s.cube.Bind(0)
	dev.Uniform1i(s.samplerLoc, 0)

	dev.BindVertexArray(s.vao)
	dev.DrawArrays(gpu.Triangles, 0, len(cube)/3)
	dev.BindVertexArray(0)

	dev.SetDepthWrite(true)
	dev.SetDepthFunc(gpu.DepthLess)
	return true
}

// Destroy releases the GPU resources. The shader is not owned and stays.
func (s *Skybox) Destroy() {
	if s == nil || s.vao == 0 {
		return
	}
	s.cube.Destroy()
	s.dev.DeleteBuffer(s.vbo)
	s.dev.DeleteVertexArray(s.vao)
	s.vao, s.vbo = 0, 0
}
