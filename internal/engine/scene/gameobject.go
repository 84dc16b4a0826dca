package scene

import (
	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/engine/input"
	"github.com/Faultbox/kiln/internal/logger"
)

// GameObject is a named bag of components. Every object has exactly one
// Transform, attached at construction.
type GameObject struct {
	// Name is a display label and need not be unique.
	Name string

	components []Component
	byKind     [numKinds][]Component
	started    bool
}

// NewGameObject creates an object holding a default Transform.
func NewGameObject(name string) *GameObject {
	g := &GameObject{Name: name}
	g.attach(NewTransform())
	return g
}

func (g *GameObject) attach(c Component) {
	g.components = append(g.components, c)
	k := c.Kind()
	if k >= 0 && k < numKinds {
		g.byKind[k] = append(g.byKind[k], c)
	}
}

// AddComponent attaches c. Nil components and a second Transform are
// rejected and leave the object unchanged. A component added after Start
// is started immediately.
func (g *GameObject) AddComponent(c Component) bool {
	if c == nil {
		return false
	}
	if c.Kind() == KindTransform {
		logger.Warn("object already has a transform", zap.String("object", g.Name))
		return false
	}
	if c.Kind() < 0 || c.Kind() >= numKinds {
		logger.Warn("component of unknown kind", zap.String("object", g.Name), zap.Int("kind", int(c.Kind())))
		return false
	}
	g.attach(c)
	if g.started {
		c.Start(g)
	}
	return true
}

// Component returns the first attached component of kind, or nil.
func (g *GameObject) Component(kind Kind) Component {
	if kind < 0 || kind >= numKinds || len(g.byKind[kind]) == 0 {
		return nil
	}
	return g.byKind[kind][0]
}

// ComponentsOf returns every component of kind in attachment order.
func (g *GameObject) ComponentsOf(kind Kind) []Component {
	if kind < 0 || kind >= numKinds {
		return nil
	}
	return g.byKind[kind]
}

// Components returns all components in attachment order.
func (g *GameObject) Components() []Component {
	return g.components
}

func (g *GameObject) Transform() *Transform {
	t, _ := g.Component(KindTransform).(*Transform)
	return t
}

func (g *GameObject) Camera() *Camera {
	c, _ := g.Component(KindCamera).(*Camera)
	return c
}

func (g *GameObject) RenderMesh() *RenderMesh {
	r, _ := g.Component(KindRenderMesh).(*RenderMesh)
	return r
}

func (g *GameObject) Material() *MaterialComponent {
	m, _ := g.Component(KindMaterial).(*MaterialComponent)
	return m
}

func (g *GameObject) Scripts() []Component {
	return g.byKind[KindScript]
}

// Started reports whether Start has run.
func (g *GameObject) Started() bool { return g.started }

// Start runs every component's Start once, in attachment order.
func (g *GameObject) Start() {
	if g.started {
		return
	}
	g.started = true
	for i := 0; i < len(g.components); i++ {
		g.components[i].Start(g)
	}
}

// Update steps every component in attachment order.
func (g *GameObject) Update(dt float32, in *input.Snapshot) {
	for i := 0; i < len(g.components); i++ {
		g.components[i].Update(g, dt, in)
	}
}
