package scene

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/engine/input"
	"github.com/Faultbox/kiln/internal/engine/lighting"
	"github.com/Faultbox/kiln/internal/logger"
)

// Handle addresses an object in a Scene. A handle goes stale when its
// object is removed, even if the slot is later reused. The zero Handle is
// never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

type slot struct {
	obj *GameObject
	gen uint32
}

// Scene owns game objects and the directional light.
type Scene struct {
	Name  string
	Light lighting.DirectionalLight

	slots []slot
	free  []uint32
	order []uint32 // live slot indices in insertion order

	mainCamera Handle
	started    bool
}

func New(name string) *Scene {
	return &Scene{Name: name, Light: lighting.DefaultDirectional()}
}

// Add stores obj and returns its handle. A nil object, or one already in
// the scene, is rejected. Objects added after Start are started straight
// away.
func (s *Scene) Add(obj *GameObject) (Handle, bool) {
	if obj == nil {
		return Handle{}, false
	}
	if _, live := s.Handle(obj); live {
		logger.Warn("object already in scene", zap.String("scene", s.Name), zap.String("object", obj.Name))
		return Handle{}, false
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}
	sl := &s.slots[idx]
	sl.gen++
	sl.obj = obj
	s.order = append(s.order, idx)

	if s.started {
		obj.Start()
	}
	return Handle{index: idx, gen: sl.gen}, true
}

// Create adds a fresh object with a default Transform.
func (s *Scene) Create(name string) (*GameObject, Handle) {
	obj := NewGameObject(name)
	h, _ := s.Add(obj)
	return obj, h
}

// Get resolves h, returning nil for stale handles.
func (s *Scene) Get(h Handle) *GameObject {
	if h.gen == 0 || int(h.index) >= len(s.slots) {
		return nil
	}
	sl := s.slots[h.index]
	if sl.gen != h.gen {
		return nil
	}
	return sl.obj
}

// Remove drops the scene's reference to the object. Pointers held
// elsewhere stay usable; only the handle goes stale.
func (s *Scene) Remove(h Handle) bool {
	if s.Get(h) == nil {
		return false
	}
	sl := &s.slots[h.index]
	sl.obj = nil
	sl.gen++ // invalidate outstanding handles now, not on reuse
	s.free = append(s.free, h.index)
	if i := slices.Index(s.order, h.index); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// Handle returns the handle of obj, if it is in the scene.
func (s *Scene) Handle(obj *GameObject) (Handle, bool) {
	for _, idx := range s.order {
		if s.slots[idx].obj == obj {
			return Handle{index: idx, gen: s.slots[idx].gen}, true
		}
	}
	return Handle{}, false
}

// Find returns the first live object labelled name.
func (s *Scene) Find(name string) (*GameObject, Handle) {
	for _, idx := range s.order {
		if sl := s.slots[idx]; sl.obj.Name == name {
			return sl.obj, Handle{index: idx, gen: sl.gen}
		}
	}
	return nil, Handle{}
}

// FindAll returns every live object labelled name.
func (s *Scene) FindAll(name string) []*GameObject {
	var out []*GameObject
	for _, idx := range s.order {
		if obj := s.slots[idx].obj; obj.Name == name {
			out = append(out, obj)
		}
	}
	return out
}

func (s *Scene) Len() int { return len(s.order) }

// Objects returns the live objects in insertion order.
func (s *Scene) Objects() []*GameObject {
	out := make([]*GameObject, len(s.order))
	for i, idx := range s.order {
		out[i] = s.slots[idx].obj
	}
	return out
}

// Start starts every object once.
func (s *Scene) Start() {
	s.started = true
	for _, obj := range s.Objects() {
		obj.Start()
	}
}

// Update steps every live object. Objects added during the step wait for
// the next one; objects removed during it are skipped.
func (s *Scene) Update(dt float32, in *input.Snapshot) {
	for _, h := range s.handles() {
		if obj := s.Get(h); obj != nil {
			obj.Update(dt, in)
		}
	}
}

func (s *Scene) handles() []Handle {
	out := make([]Handle, len(s.order))
	for i, idx := range s.order {
		out[i] = Handle{index: idx, gen: s.slots[idx].gen}
	}
	return out
}

// SetMainCamera makes the object behind h the rendering camera. It fails,
// keeping the current choice, when h is stale or the object has no Camera.
func (s *Scene) SetMainCamera(h Handle) bool {
	obj := s.Get(h)
	if obj == nil {
		logger.Warn("main camera handle is stale")
		return false
	}
	if obj.Camera() == nil {
		logger.Warn("main camera object has no camera component", zap.String("object", obj.Name))
		return false
	}
	s.mainCamera = h
	return true
}

// MainCamera returns the object rendering the scene, or nil when none is
// set or it has been removed.
func (s *Scene) MainCamera() *GameObject {
	return s.Get(s.mainCamera)
}
