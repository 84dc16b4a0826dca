// Package config handles engine configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all engine settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Simulation SimulationConfig `yaml:"simulation"`
	Debug      DebugConfig      `yaml:"debug"`
	Assets     AssetsConfig     `yaml:"assets"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Wireframe  bool `yaml:"wireframe"`
}

// SimulationConfig controls the fixed update step.
type SimulationConfig struct {
	TargetRate       int `yaml:"target_rate"`         // updates per second
	MaxStepsPerFrame int `yaml:"max_steps_per_frame"` // 0 = unlimited
}

// Step returns the fixed update interval.
func (s SimulationConfig) Step() time.Duration {
	if s.TargetRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(s.TargetRate)
}

// DebugConfig holds developer-only settings.
type DebugConfig struct {
	Enabled       bool   `yaml:"enabled"`
	HotReload     bool   `yaml:"hot_reload"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	Camera        string `yaml:"camera"` // fly or orbit
}

// AssetsConfig locates the files the engine loads.
type AssetsConfig struct {
	Root  string `yaml:"root"`
	Scene string `yaml:"scene"` // optional, relative to Root
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:  1000,
			Height: 800,
			VSync:  true,
		},
		Simulation: SimulationConfig{
			TargetRate: 120,
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
			Camera:        "fly",
		},
		Assets: AssetsConfig{
			Root: "assets",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports every setting the engine cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: window size %dx%d must be positive",
			c.Graphics.Width, c.Graphics.Height))
	}
	if c.Simulation.TargetRate <= 0 {
		errs = append(errs, fmt.Errorf("simulation: target_rate %d must be positive", c.Simulation.TargetRate))
	}
	if c.Simulation.MaxStepsPerFrame < 0 {
		errs = append(errs, fmt.Errorf("simulation: max_steps_per_frame %d must not be negative",
			c.Simulation.MaxStepsPerFrame))
	}
	switch c.Debug.Camera {
	case "", "fly", "orbit":
	default:
		errs = append(errs, fmt.Errorf("debug: unknown camera %q", c.Debug.Camera))
	}
	return errors.Join(errs...)
}
