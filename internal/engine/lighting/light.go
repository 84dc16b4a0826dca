// Package lighting holds the scene light model shared by the renderer and
// the lit shader.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/kiln/pkg/math"
)

// Uniform names of the lit shader's light struct.
const (
	UniformDirection = "light.direction"
	UniformAmbient   = "light.ambient"
	UniformDiffuse   = "light.diffuse"
	UniformSpecular  = "light.specular"
)

// DirectionalLight is a light infinitely far away. Direction is the way the
// light travels, so a sun overhead points down (-Y).
type DirectionalLight struct {
	Direction math.Vec3
	Ambient   math.Vec3
	Diffuse   math.Vec3
	Specular  math.Vec3
}

// DefaultDirectional returns a high, slightly tilted white sun.
func DefaultDirectional() DirectionalLight {
	return DirectionalLight{
		Direction: math.Vec3{X: 1.2, Y: -15, Z: 2},
		Ambient:   math.Vec3{X: 0.2, Y: 0.2, Z: 0.2},
		Diffuse:   math.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
		Specular:  math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// SunDirection converts azimuth (rotation around Y from +Z) and elevation
// above the horizon, both in degrees, to the normalized direction the
// sunlight travels.
func SunDirection(azimuth, elevation float32) math.Vec3 {
	az := math.Radians(azimuth)
	el := math.Radians(elevation)

	// Vector towards the sun, then flipped.
	toSun := math.Vec3{
		X: math32.Cos(el) * math32.Sin(az),
		Y: math32.Sin(el),
		Z: math32.Cos(el) * math32.Cos(az),
	}
	return toSun.Scale(-1).Normalize()
}

// Param is one named light uniform.
type Param struct {
	Name  string
	Value math.Vec3
}

// Uniforms returns the light as name/value pairs in the lit shader's layout.
func (l DirectionalLight) Uniforms() [4]Param {
	return [4]Param{
		{UniformDirection, l.Direction},
		{UniformAmbient, l.Ambient},
		{UniformDiffuse, l.Diffuse},
		{UniformSpecular, l.Specular},
	}
}
