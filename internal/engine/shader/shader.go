// Package shader compiles GLSL programs and exposes their uniforms.
package shader

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/logger"
)

//go:embed shaders/*.vert shaders/*.frag
var builtin embed.FS

// Built-in program names usable with Builtin.
const (
	Lit    = "lit"
	Simple = "simple"
	Skybox = "skybox"
)

// Shader is a linked GPU program.
type Shader struct {
	Name string

	dev      gpu.Device
	program  uint32
	fsys     fs.FS // nil when loaded from disk
	vertPath string
	fragPath string

	locations map[string]int32
}

// Load compiles the program from a vertex and a fragment source file.
func Load(dev gpu.Device, vertexPath, fragmentPath string) (*Shader, error) {
	s := &Shader{
		Name:     filepath.Base(vertexPath),
		dev:      dev,
		vertPath: vertexPath,
		fragPath: fragmentPath,
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadDir compiles vertex.glsl and fragment.glsl from dir.
func LoadDir(dev gpu.Device, dir string) (*Shader, error) {
	s, err := Load(dev, filepath.Join(dir, "vertex.glsl"), filepath.Join(dir, "fragment.glsl"))
	if err != nil {
		return nil, err
	}
	s.Name = filepath.Base(dir)
	return s, nil
}

// LoadFS compiles the program from files inside fsys.
func LoadFS(dev gpu.Device, fsys fs.FS, vertexPath, fragmentPath string) (*Shader, error) {
	s := &Shader{
		Name:     vertexPath,
		dev:      dev,
		fsys:     fsys,
		vertPath: vertexPath,
		fragPath: fragmentPath,
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Builtin compiles one of the embedded programs (Lit, Simple, Skybox).
func Builtin(dev gpu.Device, name string) (*Shader, error) {
	s, err := LoadFS(dev, builtin, "shaders/"+name+".vert", "shaders/"+name+".frag")
	if err != nil {
		return nil, err
	}
	s.Name = name
	return s, nil
}

// FromSource compiles the program from in-memory sources. The result cannot
// be reloaded.
func FromSource(dev gpu.Device, name, vertexSrc, fragmentSrc string) (*Shader, error) {
	program, err := dev.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	return &Shader{Name: name, dev: dev, program: program, locations: make(map[string]int32)}, nil
}

func (s *Shader) readFile(path string) (string, error) {
	var data []byte
	var err error
	if s.fsys != nil {
		data, err = fs.ReadFile(s.fsys, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read shader %s: %w", path, err)
	}
	return string(data), nil
}

// compile builds a new program from the source paths and swaps it in.
// On failure the current program stays in place.
func (s *Shader) compile() error {
	vs, err := s.readFile(s.vertPath)
	if err != nil {
		return err
	}
	fsrc, err := s.readFile(s.fragPath)
	if err != nil {
		return err
	}

	program, err := s.dev.CompileProgram(vs, fsrc)
	if err != nil {
		return fmt.Errorf("shader %s (%s, %s): %w", s.Name, s.vertPath, s.fragPath, err)
	}

	if s.program != 0 {
		s.dev.DeleteProgram(s.program)
	}
	s.program = program
	s.locations = make(map[string]int32)
	return nil
}

// Reload recompiles from the original source files. It fails for shaders
// built with FromSource, and keeps the previous program on error.
func (s *Shader) Reload() error {
	if s.vertPath == "" {
		return fmt.Errorf("shader %s: no source files to reload", s.Name)
	}
	if err := s.compile(); err != nil {
		logger.Warn("shader reload failed, keeping previous program",
			zap.String("shader", s.Name),
			zap.Error(err),
		)
		return err
	}
	logger.Info("shader reloaded", zap.String("shader", s.Name), zap.Uint32("program", s.program))
	return nil
}

// Use activates the program.
func (s *Shader) Use() {
	s.dev.UseProgram(s.program)
}

// Program returns the GPU program id. It changes after a successful Reload.
func (s *Shader) Program() uint32 {
	return s.program
}

// Device returns the device the program lives on.
func (s *Shader) Device() gpu.Device {
	return s.dev
}

// UniformLocation returns the location of name, or -1 if the program has no
// such active uniform. Lookups are cached per program.
func (s *Shader) UniformLocation(name string) int32 {
	if loc, ok := s.locations[name]; ok {
		return loc
	}
	loc := s.dev.UniformLocation(s.program, name)
	s.locations[name] = loc
	return loc
}

// ActiveUniforms reflects the uniforms the linker kept.
func (s *Shader) ActiveUniforms() []gpu.UniformInfo {
	return s.dev.ActiveUniforms(s.program)
}

// Sources returns the on-disk vertex and fragment paths. Both are empty for
// in-memory and embedded shaders.
func (s *Shader) Sources() (vertex, fragment string) {
	if s.fsys != nil {
		return "", ""
	}
	return s.vertPath, s.fragPath
}

// Destroy deletes the program. Safe to call more than once.
func (s *Shader) Destroy() {
	if s.program == 0 {
		return
	}
	s.dev.DeleteProgram(s.program)
	s.program = 0
	s.locations = make(map[string]int32)
}
