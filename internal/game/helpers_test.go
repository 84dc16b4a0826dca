package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/kiln/internal/config"
	"github.com/Faultbox/kiln/internal/engine/gpu/gputest"
)

var litUniforms = []string{
	"transform:mat4", "view:mat4", "projection:mat4",
	"light.direction:vec3", "light.ambient:vec3", "light.diffuse:vec3", "light.specular:vec3",
	"viewPos:vec3", "baseColor:vec3",
	"baseMap:sampler2D", "useBaseMap:float",
	"normalMap:sampler2D", "useNormalMap:float",
	"smoothness:float",
	"skybox:samplerCube",
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.Root = t.TempDir()
	cfg.Debug.ScreenshotDir = t.TempDir()
	return cfg
}

// headless builds a Game on the recording device, skipping the window.
func headless(t *testing.T, cfg *config.Config) (*Game, *gputest.Device) {
	t.Helper()
	dev := newDevice()
	g := &Game{cfg: cfg, viewW: cfg.Graphics.Width, viewH: cfg.Graphics.Height}
	require.NoError(t, g.setup(dev))
	t.Cleanup(g.Close)
	return g, dev
}

func newDevice() *gputest.Device {
	return gputest.New(litUniforms...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
