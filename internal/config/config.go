// Package config loads the renderer configuration and scene files.
package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/raster"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	ResourceDir string `json:"resource_dir" yaml:"resource_dir"`
	MeshDir     string `json:"mesh_dir" yaml:"mesh_dir"`
	TextureDir  string `json:"texture_dir" yaml:"texture_dir"`
	SceneFile   string `json:"scene_file" yaml:"scene_file"`
	OutputDir   string `json:"output_dir" yaml:"output_dir"`

	// Render settings
	Width       int     `json:"width" yaml:"width"`
	Height      int     `json:"height" yaml:"height"`
	Supersample int     `json:"supersample" yaml:"supersample"`
	FovDeg      float64 `json:"fov_deg" yaml:"fov_deg"`
	Frames      int     `json:"frames" yaml:"frames"`
	Animate     bool    `json:"animate" yaml:"animate"`   // also write all frames as one animated WebP
	FrameMs     int     `json:"frame_ms" yaml:"frame_ms"` // animation frame duration
	Workers     int     `json:"workers" yaml:"workers"`
	ClearColor  [3]int  `json:"clear_color" yaml:"clear_color"`
	Light       Light   `json:"light" yaml:"light"`

	// Logging
	LogLevel    string `json:"log_level" yaml:"log_level"`
	LogEncoding string `json:"log_encoding" yaml:"log_encoding"`

	// Controls
	MouseSensitivity float64 `json:"mouse_sensitivity" yaml:"mouse_sensitivity"`
	MoveSpeed        float64 `json:"move_speed" yaml:"move_speed"`
	PitchLimitDeg    float64 `json:"pitch_limit_deg" yaml:"pitch_limit_deg"`
}

// Light overrides the default point light. A zero Exposure keeps the
// default light entirely.
type Light struct {
	Pos      [3]float64 `json:"pos" yaml:"pos"`
	Ambient  [3]float64 `json:"ambient" yaml:"ambient"`
	Diffuse  [3]float64 `json:"diffuse" yaml:"diffuse"`
	Exposure float64    `json:"exposure" yaml:"exposure"`
}

// Load reads a .json, .yaml or .yml config file.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	var cfg Config
	if err := decodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported format %s", path)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	ResourceDir string
	SceneFile   string
	OutputDir   string
	Width       int
	Height      int
	Animate     bool
	Workers     int
	Frames      int
	LogLevel    string
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.ResourceDir != "" {
		c.ResourceDir = flags.ResourceDir
	}
	if flags.SceneFile != "" {
		c.SceneFile = flags.SceneFile
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Animate {
		c.Animate = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	// Auto-detect resource dir if still empty
	if c.ResourceDir == "" {
		c.ResourceDir = detectResourceDir()
	}

	// Resolve relative paths against the resource dir
	if c.ResourceDir != "" {
		c.MeshDir = under(c.ResourceDir, c.MeshDir, "mesh")
		c.TextureDir = under(c.ResourceDir, c.TextureDir, "texture")
		if c.SceneFile != "" && !filepath.IsAbs(c.SceneFile) {
			if _, err := os.Stat(c.SceneFile); err != nil {
				c.SceneFile = filepath.Join(c.ResourceDir, c.SceneFile)
			}
		}
	}
	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.FovDeg <= 0 {
		c.FovDeg = 60
	}
	if c.Frames <= 0 {
		c.Frames = 24
	}
	if c.FrameMs <= 0 {
		c.FrameMs = 80
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ClearColor == [3]int{} {
		c.ClearColor = [3]int{40, 44, 52}
	}
	if c.LogEncoding == "" {
		c.LogEncoding = "console"
	}
	if c.MouseSensitivity <= 0 {
		c.MouseSensitivity = 0.003
	}
	if c.MoveSpeed <= 0 {
		c.MoveSpeed = 3
	}
	// PitchLimitDeg stays 0 (unclamped) unless set.
}

func under(base, p, def string) string {
	if p == "" {
		return filepath.Join(base, def)
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Background is ClearColor as an opaque colour.
func (c Config) Background() color.NRGBA {
	return color.NRGBA{clamp8(c.ClearColor[0]), clamp8(c.ClearColor[1]), clamp8(c.ClearColor[2]), 255}
}

// RasterLight converts the light section, falling back to the default
// light when Exposure is unset.
func (c Config) RasterLight() raster.Light {
	l := raster.DefaultLight()
	if c.Light.Exposure <= 0 {
		return l
	}
	l.Pos = mathutil.Vec3(c.Light.Pos)
	l.Ambient = mathutil.Vec3(c.Light.Ambient)
	l.Diffuse = mathutil.Vec3(c.Light.Diffuse)
	l.Exposure = c.Light.Exposure
	return l
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func detectResourceDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir)} {
			if isDir(filepath.Join(base, "res")) {
				return filepath.Join(base, "res")
			}
		}
	}

	// Try current working directory
	cwd, _ := os.Getwd()
	if isDir(filepath.Join(cwd, "res")) {
		return filepath.Join(cwd, "res")
	}
	return ""
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
