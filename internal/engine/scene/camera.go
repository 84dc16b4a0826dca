package scene

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/engine/skybox"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/math"
)

// ClearFlags selects what a camera wipes before drawing.
type ClearFlags int

const (
	ClearSkybox ClearFlags = iota
	ClearSolidColor
	ClearDepthOnly
	ClearNothing
)

func (c ClearFlags) String() string {
	switch c {
	case ClearSkybox:
		return "skybox"
	case ClearSolidColor:
		return "solid"
	case ClearDepthOnly:
		return "depth"
	case ClearNothing:
		return "nothing"
	default:
		return "unknown"
	}
}

// Projection is the camera lens model.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

// FOVAxis says which screen axis FieldOfView spans.
type FOVAxis int

const (
	FOVVertical FOVAxis = iota
	FOVHorizontal
)

// Rect is a viewport in normalised screen units.
type Rect struct {
	X, Y, W, H float32
}

// Camera describes how the scene is viewed. Its position and orientation
// come from the owning object's Transform.
type Camera struct {
	passive

	ClearFlags ClearFlags
	Projection Projection
	FOVAxis    FOVAxis
	// FieldOfView is in degrees for perspective and is the half-extent along
	// FOVAxis for orthographic.
	FieldOfView float32
	Near, Far   float32
	Background  math.Vec4
	Viewport    Rect
	CullingMask uint32

	// Skybox is drawn when ClearFlags is ClearSkybox.
	Skybox *skybox.Skybox
}

// NewCamera returns a 45 degree perspective camera with a blue background.
func NewCamera() *Camera {
	return &Camera{
		ClearFlags:  ClearSkybox,
		Projection:  Perspective,
		FOVAxis:     FOVVertical,
		FieldOfView: 45,
		Near:        0.1,
		Far:         100,
		Background:  math.Vec4{X: 0.2, Y: 0.3, Z: 1, W: 1},
		Viewport:    Rect{X: 0, Y: 0, W: 1, H: 1},
		CullingMask: 0xFFFFFFFF,
	}
}

func (c *Camera) Kind() Kind { return KindCamera }

// ViewMatrix looks from the transform's position along its front vector.
func (c *Camera) ViewMatrix(t *Transform) math.Mat4 {
	pos := t.Position()
	return math.LookAt(pos, pos.Add(t.Front()), t.Up())
}

// VerticalFOV returns the vertical field of view in degrees for the given
// aspect ratio, converting a horizontal one if needed.
func (c *Camera) VerticalFOV(aspect float32) float32 {
	if c.FOVAxis == FOVVertical || aspect <= 0 {
		return c.FieldOfView
	}
	h := math.Radians(c.FieldOfView)
	return math.Degrees(2 * math32.Atan(math32.Tan(h/2)/aspect))
}

// ProjectionMatrix builds the lens matrix for a width/height aspect ratio.
func (c *Camera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	if c.Projection == Orthographic {
		halfH := c.FieldOfView
		if c.FOVAxis == FOVHorizontal {
			halfH = c.FieldOfView / aspect
		}
		halfW := halfH * aspect
		return math.Ortho(-halfW, halfW, -halfH, halfH, c.Near, c.Far)
	}
	return math.Perspective(math.Radians(c.VerticalFOV(aspect)), aspect, c.Near, c.Far)
}

// PixelViewport maps the normalised viewport onto a width x height target.
func (c *Camera) PixelViewport(width, height int) (x, y, w, h int32) {
	fw, fh := float32(width), float32(height)
	return int32(c.Viewport.X * fw), int32(c.Viewport.Y * fh),
		int32(c.Viewport.W * fw), int32(c.Viewport.H * fh)
}

// Aspect returns the aspect ratio of the camera's viewport on the target.
func (c *Camera) Aspect(width, height int) float32 {
	_, _, w, h := c.PixelViewport(width, height)
	if h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}

// SetViewport applies the camera's viewport to the device.
func (c *Camera) SetViewport(dev gpu.Device, width, height int) {
	dev.Viewport(c.PixelViewport(width, height))
}

// Clear prepares the target according to ClearFlags. A camera asking for a
// skybox it cannot draw switches itself to ClearSolidColor.
func (c *Camera) Clear(dev gpu.Device, view, projection math.Mat4) {
	switch c.ClearFlags {
	case ClearSkybox:
		dev.ClearColor(c.Background)
		dev.Clear(true, true)
		if c.Skybox.Render(view, projection) {
			return
		}
		if logger.Once("camera-skybox-fallback") {
			logger.Warn("skybox not available, clearing with background colour",
				zap.Bool("assigned", c.Skybox != nil))
		}
		c.ClearFlags = ClearSolidColor
	case ClearSolidColor:
		dev.ClearColor(c.Background)
		dev.Clear(true, true)
	case ClearDepthOnly:
		dev.Clear(false, true)
	case ClearNothing:
	}
}
