// Package game wires the engine together: window, GPU device, assets,
// scene and the fixed-step main loop.
package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/assets"
	"github.com/Faultbox/kiln/internal/config"
	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/engine/input"
	"github.com/Faultbox/kiln/internal/engine/picking"
	"github.com/Faultbox/kiln/internal/engine/renderer"
	"github.com/Faultbox/kiln/internal/engine/scene"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/internal/engine/timestep"
	"github.com/Faultbox/kiln/internal/engine/window"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/formats"
)

const title = "kiln"

// Game is the running engine instance.
type Game struct {
	cfg *config.Config

	window   *window.Window
	dev      gpu.Device
	assets   *assets.Manager
	scene    *scene.Scene
	renderer *renderer.Renderer
	watcher  *assets.Watcher
	debug    *debugTools

	poller *window.Poller
	snap   input.Snapshot
	loop   timestep.Loop

	running  bool
	captured bool
	// window size in screen coordinates, for mouse picking
	viewW, viewH int
}

// New runs the setup phases in order: window and GL context, GPU device,
// assets, scene. A failed phase releases what the earlier ones created.
func New(cfg *config.Config) (*Game, error) {
	logger.Info("initializing",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("rate", cfg.Simulation.TargetRate),
		zap.Bool("debug", cfg.Debug.Enabled),
	)

	g := &Game{cfg: cfg}
	var err error

	g.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	g.viewW, g.viewH = g.window.Size()

	dev, err := gpu.NewGL()
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("gl context: %w", err)
	}

	if err := g.setup(dev); err != nil {
		g.Close()
		return nil, err
	}
	g.poller = window.NewPoller(g.window, &g.snap)

	logger.Info("initialized", zap.Int("objects", g.scene.Len()))
	return g, nil
}

// setup runs every phase after the GL context exists. It needs only a
// device, so it also serves headless callers.
func (g *Game) setup(dev gpu.Device) error {
	cfg := g.cfg
	g.dev = dev
	g.renderer = renderer.New(dev)
	g.renderer.SetWireframe(cfg.Graphics.Wireframe)
	g.assets = assets.NewManager(dev, cfg.Assets.Root)

	if err := g.buildScene(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}

	if cfg.Debug.Enabled {
		lines, err := g.assets.NamedShader(shader.Simple)
		if err != nil {
			return fmt.Errorf("debug tools: %w", err)
		}
		g.debug = newDebugTools(dev, lines, cfg.Debug.ScreenshotDir)

		if cfg.Debug.HotReload {
			g.watcher, err = assets.NewWatcher(g.assets.ShaderFiles())
			if err != nil {
				logger.Warn("shader hot reload disabled", zap.Error(err))
			}
		}
	}

	step := timestep.FromRate(cfg.Simulation.TargetRate, cfg.Simulation.MaxStepsPerFrame)
	g.loop = timestep.Loop{
		Clock:  step,
		Update: timestep.StepFunc(g.step),
	}
	return nil
}

// buildScene loads the configured scene file, or the demo scene when none
// is set, then attaches the camera controller and starts the scene.
func (g *Game) buildScene() error {
	if path := g.cfg.Assets.Scene; path != "" {
		s, err := scene.LoadFile(g.assets.Path(path), g.assets)
		if err != nil {
			return err
		}
		g.scene = s
	} else {
		g.scene = scene.New("demo")
		if err := BuildDemo(g.scene, g.assets); err != nil {
			return err
		}
	}

	if cam := g.scene.MainCamera(); cam != nil {
		cam.AddComponent(g.cameraController())
	} else {
		logger.Warn("scene has no main camera, nothing will be drawn", zap.String("scene", g.scene.Name))
	}
	g.scene.Start()
	return nil
}

func (g *Game) cameraController() scene.Component {
	if g.cfg.Debug.Camera != "orbit" {
		return NewFlyCam()
	}
	orbit := NewOrbitCam()
	if box, ok := sceneBounds(g.scene); ok {
		orbit.Controller.FitToBounds(box)
	}
	return orbit
}

// sceneBounds is the union of every render mesh's world-space bounds.
func sceneBounds(s *scene.Scene) (formats.AABB, bool) {
	var box formats.AABB
	found := false
	for _, obj := range s.Objects() {
		rm := obj.RenderMesh()
		if rm == nil || rm.Mesh() == nil {
			continue
		}
		b := picking.TransformAABB(rm.Mesh().Bounds(), obj.Transform().Matrix())
		if !found {
			box, found = b, true
			continue
		}
		box.Min = box.Min.Min(b.Min)
		box.Max = box.Max.Max(b.Max)
	}
	return box, found
}

// step is one fixed update.
func (g *Game) step(dt float32) {
	if g.debug != nil {
		g.debug.handleKeys(&g.snap, g.renderer, g.scene, g.viewW, g.viewH)
		if g.debug.quit {
			g.running = false
		}
	}
	g.scene.Update(dt, &g.snap)
	g.snap.Advance()
}

// renderFrame draws the scene and the debug overlays into a width x height
// drawable.
func (g *Game) renderFrame(width, height int) renderer.Stats {
	stats, _ := g.renderer.Render(g.scene, width, height)
	if g.debug != nil {
		g.debug.drawOverlays(g.renderer, g.scene)
		g.debug.captureIfDue(width, height)
	}
	return stats
}

// reloadShaders recompiles shaders whose files changed since the last call.
func (g *Game) reloadShaders() {
	if g.watcher == nil {
		return
	}
	for _, path := range g.watcher.Drain() {
		n, err := g.assets.Reload(path)
		if err != nil {
			logger.Warn("shader reload failed", zap.String("file", path), zap.Error(err))
			continue
		}
		logger.Info("shaders reloaded", zap.String("file", path), zap.Int("count", n))
	}
}

// Run drives the main loop until the window closes or Escape is pressed
// in debug mode.
func (g *Game) Run() error {
	g.running = true
	logger.Info("starting main loop")

	last := time.Now()
	frames := 0
	fpsTimer := last

	for g.running {
		ev := g.poller.Poll()
		if ev.Quit {
			break
		}
		if ev.Resized {
			g.viewW, g.viewH = g.window.Size()
			logger.Debug("resized", zap.Int("width", ev.Width), zap.Int("height", ev.Height))
		}
		if look := g.snap.ButtonPressed(input.MouseRight); look != g.captured {
			g.window.CaptureMouse(look)
			g.captured = look
		}
		g.reloadShaders()

		now := time.Now()
		delta := now.Sub(last)
		last = now

		g.loop.Frame(delta)
		w, h := g.window.DrawableSize()
		stats := g.renderFrame(w, h)
		g.window.SwapBuffers()

		frames++
		if since := now.Sub(fpsTimer); since >= time.Second {
			fps := float64(frames) / since.Seconds()
			g.window.SetTitle(fmt.Sprintf("%s - %.0f fps", title, fps))
			logger.Debug("frame",
				zap.Float64("fps", fps),
				zap.Int("objects", stats.Objects),
				zap.Int("draw_calls", stats.DrawCalls),
				zap.Int("skipped", stats.Skipped),
			)
			frames = 0
			fpsTimer = now
		}
	}

	g.running = false
	logger.Info("main loop stopped")
	return nil
}

// Close releases everything in reverse setup order. It is safe on a
// partially constructed Game.
func (g *Game) Close() {
	logger.Info("shutting down")

	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			logger.Warn("closing watcher", zap.Error(err))
		}
		g.watcher = nil
	}
	if g.debug != nil {
		g.debug.destroy()
		g.debug = nil
	}
	if g.assets != nil {
		g.assets.Close()
		g.assets = nil
	}
	g.scene = nil
	g.renderer = nil
	g.dev = nil
	if g.window != nil {
		g.window.Close()
		g.window = nil
	}
}
