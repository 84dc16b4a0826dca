// Package renderer draws a scene through its main camera.
package renderer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/engine/material"
	"github.com/Faultbox/kiln/internal/engine/scene"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/math"
)

// Per-frame uniforms the renderer offers every material. Shaders that do
// not declare one simply never receive it.
const (
	UniformTransform  = "transform"
	UniformView       = "view"
	UniformProjection = "projection"
	UniformViewPos    = "viewPos"
)

// Stats describes one rendered frame.
type Stats struct {
	Objects   int // objects with a mesh
	DrawCalls int
	Skipped   int // submeshes without a usable material
}

// Renderer issues the draw calls for a scene.
type Renderer struct {
	dev       gpu.Device
	wireframe bool

	view       math.Mat4
	projection math.Mat4
	last       Stats
	noCamera   bool // warned about the current camera loss
}

func New(dev gpu.Device) *Renderer {
	return &Renderer{dev: dev, view: math.Identity(), projection: math.Identity()}
}

// SetWireframe switches polygon fill for the scene geometry.
func (r *Renderer) SetWireframe(on bool) {
	r.wireframe = on
	logger.Debug("wireframe", zap.Bool("enabled", on))
}

func (r *Renderer) ToggleWireframe()   { r.SetWireframe(!r.wireframe) }
func (r *Renderer) Wireframe() bool    { return r.wireframe }
func (r *Renderer) LastStats() Stats   { return r.last }
func (r *Renderer) Device() gpu.Device { return r.dev }

// Matrices returns the view and projection of the last rendered frame.
func (r *Renderer) Matrices() (view, projection math.Mat4) {
	return r.view, r.projection
}

// resetState restores the fixed-function defaults materials may change.
func resetState(dev gpu.Device) {
	dev.SetBlend(gpu.BlendOpaque)
	dev.SetDepthTest(true)
	dev.SetDepthWrite(true)
	dev.SetCull(gpu.CullBack)
}

// Render draws s into a width x height target. It returns false, drawing
// nothing, when the scene has no main camera.
func (r *Renderer) Render(s *scene.Scene, width, height int) (Stats, bool) {
	var stats Stats
	camObj := s.MainCamera()
	if camObj == nil {
		if !r.noCamera {
			logger.Warn("scene has no main camera, skipping frames", zap.String("scene", s.Name))
			r.noCamera = true
		}
		r.last = stats
		return stats, false
	}
	r.noCamera = false
	cam := camObj.Camera()
	camT := camObj.Transform()
	dev := r.dev

	cam.SetViewport(dev, width, height)
	view := cam.ViewMatrix(camT)
	projection := cam.ProjectionMatrix(cam.Aspect(width, height))
	r.view, r.projection = view, projection

	// glClear honours the depth mask, and the previous frame's last
	// material may have turned it off.
	resetState(dev)
	cam.Clear(dev, view, projection)

	dev.SetWireframe(r.wireframe)
	eye := camT.Position()
	light := s.Light.Uniforms()

	for _, obj := range s.Objects() {
		rm := obj.RenderMesh()
		if rm == nil || rm.Mesh() == nil {
			continue
		}
		stats.Objects++

		m := rm.Mesh()
		m.Upload()
		if !m.Bind() {
			stats.Skipped += m.SubmeshCount()
			continue
		}
		model := obj.Transform().Matrix()

		for i := 0; i < m.SubmeshCount(); i++ {
			mat := rm.Material(i)
			if mat == nil {
				stats.Skipped++
				continue
			}
			mat.TrySetUniform(UniformTransform, material.Mat4(model))
			mat.TrySetUniform(UniformView, material.Mat4(view))
			mat.TrySetUniform(UniformProjection, material.Mat4(projection))
			mat.TrySetUniform(UniformViewPos, material.Vec3(eye))
			for _, p := range light {
				mat.TrySetUniform(p.Name, material.Vec3(p.Value))
			}
			if !mat.Apply() {
				stats.Skipped++
				continue
			}
			if m.DrawSubmesh(i) {
				stats.DrawCalls++
			}
		}
	}
	dev.BindVertexArray(0)
	if r.wireframe {
		dev.SetWireframe(false)
	}

	r.last = stats
	return stats, true
}
