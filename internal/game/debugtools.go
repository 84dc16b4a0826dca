package game

import (
	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/engine/debug"
	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/engine/input"
	"github.com/Faultbox/kiln/internal/engine/material"
	"github.com/Faultbox/kiln/internal/engine/mesh"
	"github.com/Faultbox/kiln/internal/engine/picking"
	"github.com/Faultbox/kiln/internal/engine/renderer"
	"github.com/Faultbox/kiln/internal/engine/scene"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/math"
)

// Overlay colours.
var (
	normalColor = math.Vec3{X: 1, Y: 1}
	boundsColor = math.Vec3{Y: 1}
)

const normalLength = 0.2

// debugTools holds the state behind the debug keys.
type debugTools struct {
	dev   gpu.Device
	lines *shader.Shader

	showNormals bool
	showBounds  bool
	normals     map[*mesh.Mesh]*debug.Lines
	box         *debug.Lines

	screenshots   *debug.ScreenshotCapture
	screenshotDue bool
	quit          bool
}

func newDebugTools(dev gpu.Device, lines *shader.Shader, screenshotDir string) *debugTools {
	return &debugTools{
		dev:         dev,
		lines:       lines,
		normals:     make(map[*mesh.Mesh]*debug.Lines),
		screenshots: debug.NewScreenshotCapture(screenshotDir, "kiln"),
	}
}

// handleKeys reacts to the debug keys pressed since the previous step.
// viewW and viewH are the window size the mouse position refers to.
func (d *debugTools) handleKeys(in *input.Snapshot, r *renderer.Renderer, s *scene.Scene, viewW, viewH int) {
	if in.JustPressed(input.KeyEscape) {
		d.quit = true
	}
	if in.JustPressed(input.KeyF1) {
		r.ToggleWireframe()
		logger.Info("wireframe", zap.Bool("on", r.Wireframe()))
	}
	if in.JustPressed(input.KeyF2) {
		checkUniforms(s)
	}
	if in.JustPressed(input.KeyF3) {
		d.showNormals = !d.showNormals
	}
	if in.JustPressed(input.KeyF4) {
		d.showBounds = !d.showBounds
	}
	if in.JustPressed(input.KeyF12) {
		d.screenshotDue = true
	}
	if in.ButtonJustPressed(input.MouseMiddle) && viewW > 0 && viewH > 0 {
		pick(in, r, s, viewW, viewH)
	}
}

// checkUniforms logs, per material, the shader uniforms nothing sets.
// It returns the number of materials with gaps.
func checkUniforms(s *scene.Scene) int {
	n := 0
	seen := make(map[*material.Material]bool)
	for _, obj := range s.Objects() {
		rm := obj.RenderMesh()
		if rm == nil {
			continue
		}
		for _, m := range rm.Materials() {
			if m == nil || seen[m] {
				continue
			}
			seen[m] = true
			if len(m.CheckUniforms()) > 0 {
				n++
			}
		}
	}
	logger.Info("uniform check done", zap.Int("materials_with_gaps", n))
	return n
}

func pick(in *input.Snapshot, r *renderer.Renderer, s *scene.Scene, viewW, viewH int) (picking.Hit, bool) {
	view, proj := r.Matrices()
	p := in.MousePosition()
	ray := picking.ScreenToRay(p.X, p.Y, float32(viewW), float32(viewH), view, proj)
	hit, ok := picking.Pick(s, ray)
	if !ok {
		logger.Debug("pick: nothing under cursor")
		return hit, false
	}
	logger.Info("picked",
		zap.String("object", hit.Object.Name),
		zap.Float32("distance", hit.Distance),
		zap.Float32s("point", hit.Point.Array()[:]),
	)
	return hit, true
}

// drawOverlays draws normals and bounds on top of the rendered frame
// using the renderer's last matrices.
func (d *debugTools) drawOverlays(r *renderer.Renderer, s *scene.Scene) {
	if !d.showNormals && !d.showBounds {
		return
	}
	view, proj := r.Matrices()
	for _, obj := range s.Objects() {
		rm := obj.RenderMesh()
		if rm == nil || rm.Mesh() == nil {
			continue
		}
		model := obj.Transform().Matrix()

		if d.showNormals {
			if l := d.normalLines(rm.Mesh()); l != nil {
				l.Draw(model, view, proj, normalColor)
			}
		}
		if d.showBounds {
			if l := d.boxLines(); l != nil {
				l.SetVertices(debug.BoxLines(rm.Mesh().Bounds(), 0.01))
				l.Draw(model, view, proj, boundsColor)
			}
		}
	}
}

func (d *debugTools) normalLines(m *mesh.Mesh) *debug.Lines {
	if l, ok := d.normals[m]; ok {
		return l
	}
	l, err := debug.NewLines(d.dev, d.lines)
	if err != nil {
		logger.Warn("normal overlay disabled", zap.Error(err))
		d.showNormals = false
		return nil
	}
	l.SetVertices(debug.NormalLines(m, normalLength))
	d.normals[m] = l
	return l
}

func (d *debugTools) boxLines() *debug.Lines {
	if d.box != nil {
		return d.box
	}
	l, err := debug.NewLines(d.dev, d.lines)
	if err != nil {
		logger.Warn("bounds overlay disabled", zap.Error(err))
		d.showBounds = false
		return nil
	}
	d.box = l
	return l
}

// captureIfDue writes a screenshot when one was requested.
func (d *debugTools) captureIfDue(width, height int) {
	if !d.screenshotDue {
		return
	}
	d.screenshotDue = false
	if _, err := d.screenshots.Capture(d.dev, width, height); err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
	}
}

func (d *debugTools) destroy() {
	for _, l := range d.normals {
		l.Destroy()
	}
	clear(d.normals)
	if d.box != nil {
		d.box.Destroy()
		d.box = nil
	}
}
