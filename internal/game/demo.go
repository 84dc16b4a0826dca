package game

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/assets"
	"github.com/Faultbox/kiln/internal/engine/input"
	"github.com/Faultbox/kiln/internal/engine/material"
	"github.com/Faultbox/kiln/internal/engine/scene"
	"github.com/Faultbox/kiln/internal/engine/shader"
	"github.com/Faultbox/kiln/internal/logger"
	"github.com/Faultbox/kiln/pkg/math"
)

//go:embed demo/cube.obj
var cubeOBJ []byte

// SkyboxDir is the directory under the asset root the demo scene takes its
// skybox from.
const SkyboxDir = "skybox"

// Spinner rotates its object around the Y axis.
type Spinner struct {
	scene.BaseScript

	Speed float32 // degrees per second
}

func (s *Spinner) Update(obj *scene.GameObject, dt float32, _ *input.Snapshot) {
	t := obj.Transform()
	turn := math.QuatFromAxisAngle(math.Vec3Up, math.Radians(s.Speed*dt))
	t.SetRotation(turn.Mul(t.Rotation()))
}

// BuildDemo fills s with a lit spinning cube on a flat floor, seen by a main
// camera. The skybox is used when <root>/skybox holds the six faces;
// otherwise the camera clears to a solid colour.
func BuildDemo(s *scene.Scene, a *assets.Manager) error {
	cube, err := a.MeshFromReader("cube.obj", bytes.NewReader(cubeOBJ), true)
	if err != nil {
		return err
	}
	lit, err := a.NamedShader(shader.Lit)
	if err != nil {
		return err
	}
	simple, err := a.NamedShader(shader.Simple)
	if err != nil {
		return err
	}

	cam := scene.NewBuilder("Main Camera").
		WithTransform(math.Vec3{Y: 1.5, Z: 5}, math.QuatLookRotation(math.Vec3{Y: -1.5, Z: -5}, math.Vec3Up), math.Vec3{X: 1, Y: 1, Z: 1}).
		WithCamera(nil).
		AsMainCamera()
	if _, err := os.Stat(a.Path(SkyboxDir)); err == nil {
		sky, err := a.Skybox(SkyboxDir)
		if err != nil {
			logger.Warn("demo skybox unavailable", zap.Error(err))
		}
		cam.WithSkybox(sky)
	} else {
		cam.WithBackground(math.Vec4{X: 0.2, Y: 0.3, Z: 1, W: 1})
	}
	if _, _, err := cam.Build(s); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	cubeMat, err := material.PresetLit(lit, nil, math.Vec3{X: 1, Y: 0.5, Z: 0.31}, 0.5).
		WithName("cube").
		Build()
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	props := scene.DefaultMaterialProperties()
	props.BaseColor = math.Vec3{X: 1, Y: 0.5, Z: 0.31}
	if _, _, err := scene.NewBuilder("Cube").
		WithRenderMesh(cube).
		WithMaterial(cubeMat).
		WithMaterialProperties(props).
		WithScript(&Spinner{Speed: 45}).
		WithScript(&SmoothnessControl{}).
		Build(s); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	floorMat, err := material.PresetSimple(simple, math.Vec3{X: 0.35, Y: 0.35, Z: 0.35}).
		WithName("floor").
		Build()
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if _, _, err := scene.NewBuilder("Floor").
		WithTransform(math.Vec3{Y: -1}, math.QuatIdentity(), math.Vec3{X: 10, Y: 0.1, Z: 10}).
		WithRenderMesh(cube).
		WithMaterial(floorMat).
		Build(s); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	logger.Info("demo scene built", zap.Int("objects", s.Len()))
	return nil
}
