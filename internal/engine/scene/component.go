// Package scene holds game objects, their components and the scene that
// owns them.
package scene

import "github.com/Faultbox/kiln/internal/engine/input"

// Kind identifies what a component contributes to its object.
type Kind int

const (
	KindTransform Kind = iota
	KindCamera
	KindRenderMesh
	KindMaterial
	KindScript

	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindTransform:
		return "transform"
	case KindCamera:
		return "camera"
	case KindRenderMesh:
		return "render-mesh"
	case KindMaterial:
		return "material"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// Component is a unit of state or behaviour attached to a GameObject. The
// owning object is passed on every call; components keep no back-reference.
type Component interface {
	Kind() Kind
	Start(obj *GameObject)
	Update(obj *GameObject, dt float32, in *input.Snapshot)
}

// passive gives data-only components empty lifecycle hooks.
type passive struct{}

func (passive) Start(*GameObject)                            {}
func (passive) Update(*GameObject, float32, *input.Snapshot) {}

// BaseScript is embedded by behaviours that need only some hooks.
//
//	type Spinner struct {
//		scene.BaseScript
//		Speed float32
//	}
//
//	func (s *Spinner) Update(obj *scene.GameObject, dt float32, _ *input.Snapshot) { ... }
type BaseScript struct{}

func (BaseScript) Kind() Kind                                   { return KindScript }
func (BaseScript) Start(*GameObject)                            {}
func (BaseScript) Update(*GameObject, float32, *input.Snapshot) {}

// ScriptFunc adapts plain functions to a script component. Either hook may
// be nil.
type ScriptFunc struct {
	OnStart  func(obj *GameObject)
	OnUpdate func(obj *GameObject, dt float32, in *input.Snapshot)
}

func (f ScriptFunc) Kind() Kind { return KindScript }

func (f ScriptFunc) Start(obj *GameObject) {
	if f.OnStart != nil {
		f.OnStart(obj)
	}
}

func (f ScriptFunc) Update(obj *GameObject, dt float32, in *input.Snapshot) {
	if f.OnUpdate != nil {
		f.OnUpdate(obj, dt, in)
	}
}
