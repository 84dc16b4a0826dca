// Package gputest provides an in-memory gpu.Device that records what the
// engine asks of it.
package gputest

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/pkg/math"
)

// ErrCompile is returned by CompileProgram when a source contains FailMarker.
var ErrCompile = errors.New("compile failed")

// FailMarker makes CompileProgram fail when present in either shader source.
const FailMarker = "#error"

// Call is one recorded device call.
type Call struct {
	Op   string
	Args []any
}

// UniformPush is one recorded uniform upload, resolved back to its name.
type UniformPush struct {
	Program  uint32
	Location int32
	Name     string
	Value    any
}

// Device is a recording fake. The zero value is not usable; use New.
type Device struct {
	mu sync.Mutex

	// Uniforms is the reflection table served for programs compiled after it
	// is set. Locations are assigned by position.
	Uniforms []gpu.UniformInfo

	nextID   uint32
	current  uint32
	programs map[uint32][]gpu.UniformInfo
	live     map[string]map[uint32]bool
	counts   map[string]int

	Calls  []Call
	Pushes []UniformPush

	Blend      gpu.BlendMode
	DepthTest  bool
	DepthWrite bool
	DepthFunc  gpu.DepthFunc
	Cull       gpu.CullMode
	Wireframe  bool
	Background math.Vec4
	View       [4]int32
	Bound      map[int]uint32 // texture unit -> texture
}

// New returns a device serving the given uniforms as "float" uniforms.
// Use SetUniforms for typed entries.
func New(uniforms ...string) *Device {
	d := &Device{
		programs:   make(map[uint32][]gpu.UniformInfo),
		live:       make(map[string]map[uint32]bool),
		counts:     make(map[string]int),
		Bound:      make(map[int]uint32),
		DepthTest:  true,
		DepthWrite: true,
	}
	for _, u := range uniforms {
		d.Uniforms = append(d.Uniforms, gpu.UniformInfo{Name: u, Type: "float", Size: 1})
	}
	return d
}

// SetUniforms replaces the reflection table with typed entries given as
// "name:type" pairs, e.g. "baseMap:sampler2D".
func (d *Device) SetUniforms(entries ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Uniforms = d.Uniforms[:0]
	for _, e := range entries {
		name, typ, ok := strings.Cut(e, ":")
		if !ok {
			typ = "float"
		}
		d.Uniforms = append(d.Uniforms, gpu.UniformInfo{Name: name, Type: typ, Size: 1})
	}
}

func (d *Device) record(op string, args ...any) {
	d.Calls = append(d.Calls, Call{Op: op, Args: args})
	d.counts[op]++
}

func (d *Device) alloc(kind string) uint32 {
	d.nextID++
	if d.live[kind] == nil {
		d.live[kind] = make(map[uint32]bool)
	}
	d.live[kind][d.nextID] = true
	return d.nextID
}

func (d *Device) free(kind string, id uint32) {
	delete(d.live[kind], id)
}

// Count returns how many times op was called.
func (d *Device) Count(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[op]
}

// Live returns how many objects of kind ("vao", "buffer", "program",
// "texture") are allocated and not yet deleted.
func (d *Device) Live(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live[kind])
}

// Ops returns the recorded op names in order.
func (d *Device) Ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.Calls))
	for i, c := range d.Calls {
		out[i] = c.Op
	}
	return out
}

// PushedNames returns the names of uniforms pushed, in order.
func (d *Device) PushedNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.Pushes))
	for i, p := range d.Pushes {
		out[i] = p.Name
	}
	return out
}

// LastPush returns the most recent value pushed for name.
func (d *Device) LastPush(name string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.Pushes) - 1; i >= 0; i-- {
		if d.Pushes[i].Name == name {
			return d.Pushes[i].Value, true
		}
	}
	return nil, false
}

// Reset forgets recorded calls and pushes but keeps allocations.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = nil
	d.Pushes = nil
	d.counts = make(map[string]int)
}

var _ gpu.Device = (*Device)(nil)

func (d *Device) CreateVertexArray() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateVertexArray")
	return d.alloc("vao")
}

func (d *Device) DeleteVertexArray(vao uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteVertexArray", vao)
	d.free("vao", vao)
}

func (d *Device) BindVertexArray(vao uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BindVertexArray", vao)
}

func (d *Device) CreateBuffer() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateBuffer")
	return d.alloc("buffer")
}

func (d *Device) DeleteBuffer(buf uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteBuffer", buf)
	d.free("buffer", buf)
}

func (d *Device) VertexData(buf uint32, data []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("VertexData", buf, len(data))
}

func (d *Device) IndexData(buf uint32, data []uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("IndexData", buf, len(data))
}

func (d *Device) VertexLayout(stride int32, attribs []gpu.Attrib) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("VertexLayout", stride, slices.Clone(attribs))
}

func (d *Device) DrawElements(mode gpu.Primitive, count, offset int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DrawElements", mode, count, offset)
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DrawArrays", mode, first, count)
}

func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CompileProgram")
	if strings.Contains(vertexSrc, FailMarker) {
		return 0, fmt.Errorf("vertex shader: 0:1: %w", ErrCompile)
	}
	if strings.Contains(fragmentSrc, FailMarker) {
		return 0, fmt.Errorf("fragment shader: 0:1: %w", ErrCompile)
	}
	id := d.alloc("program")
	d.programs[id] = slices.Clone(d.Uniforms)
	return id, nil
}

func (d *Device) DeleteProgram(program uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteProgram", program)
	d.free("program", program)
	delete(d.programs, program)
}

func (d *Device) UseProgram(program uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UseProgram", program)
	d.current = program
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, u := range d.programs[program] {
		if u.Name == name {
			return int32(i)
		}
	}
	return -1
}

func (d *Device) ActiveUniforms(program uint32) []gpu.UniformInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.programs[program])
}

func (d *Device) push(op string, loc int32, v any) {
	d.record(op, loc, v)
	name := ""
	if table := d.programs[d.current]; loc >= 0 && int(loc) < len(table) {
		name = table[loc].Name
	}
	d.Pushes = append(d.Pushes, UniformPush{Program: d.current, Location: loc, Name: name, Value: v})
}

func (d *Device) Uniform1f(loc int32, v float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.push("Uniform1f", loc, v)
}

func (d *Device) Uniform1i(loc int32, v int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.push("Uniform1i", loc, v)
}

func (d *Device) Uniform3f(loc int32, v math.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.push("Uniform3f", loc, v)
}

func (d *Device) Uniform4f(loc int32, v math.Vec4) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.push("Uniform4f", loc, v)
}

func (d *Device) UniformMatrix4(loc int32, m math.Mat4) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.push("UniformMatrix4", loc, m)
}

func (d *Device) CreateTexture(kind gpu.TextureKind) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateTexture", kind)
	return d.alloc("texture")
}

func (d *Device) TextureImage(kind gpu.TextureKind, tex uint32, face, width, height int, rgba []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("TextureImage", kind, tex, face, width, height, len(rgba))
}

func (d *Device) FinishTexture(kind gpu.TextureKind, tex uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("FinishTexture", kind, tex)
}

func (d *Device) DeleteTexture(tex uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeleteTexture", tex)
	d.free("texture", tex)
}

func (d *Device) BindTexture(kind gpu.TextureKind, unit int, tex uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BindTexture", kind, unit, tex)
	d.Bound[unit] = tex
}

func (d *Device) SetBlend(mode gpu.BlendMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SetBlend", mode)
	d.Blend = mode
}

func (d *Device) SetDepthTest(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SetDepthTest", enabled)
	d.DepthTest = enabled
}

func (d *Device) SetDepthWrite(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SetDepthWrite", enabled)
	d.DepthWrite = enabled
}

func (d *Device) SetDepthFunc(fn gpu.DepthFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SetDepthFunc", fn)
	d.DepthFunc = fn
}

func (d *Device) SetCull(mode gpu.CullMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SetCull", mode)
	d.Cull = mode
}

func (d *Device) SetWireframe(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SetWireframe", enabled)
	d.Wireframe = enabled
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Viewport", x, y, width, height)
	d.View = [4]int32{x, y, width, height}
}

func (d *Device) ClearColor(c math.Vec4) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ClearColor", c)
	d.Background = c
}

func (d *Device) Clear(color, depth bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Clear", color, depth)
}

func (d *Device) ReadPixels(width, height int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ReadPixels", width, height)
	pixels := make([]byte, width*height*4)
	// Bottom row red, everything else black, so flips are observable.
	for x := 0; x < width && height > 0; x++ {
		pixels[x*4] = 255
		pixels[x*4+3] = 255
	}
	return pixels
}
