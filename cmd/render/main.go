package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portal-renderer/internal/batch"
	"portal-renderer/internal/config"
	"portal-renderer/internal/logging"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/mesh"
	"portal-renderer/internal/texture"
	"portal-renderer/internal/world"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	sceneFile := flag.String("scene", "", "Scene file (default: built-in example world)")
	resDir := flag.String("res", "", "Resource directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	width := flag.Int("width", 0, "Frame width (default: 800)")
	height := flag.Int("height", 0, "Frame height (default: 600)")
	frames := flag.Int("frames", 0, "Orbit frames when the scene has no shots (default: 24)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	animate := flag.Bool("animate", false, "Also write all frames as animation.webp")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		ResourceDir: *resDir,
		SceneFile:   *sceneFile,
		OutputDir:   *outputDir,
		Width:       *width,
		Height:      *height,
		Animate:     *animate,
		Workers:     *workers,
		Frames:      *frames,
		LogLevel:    *logLevel,
	})

	log, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("render failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runID := uuid.New()
	log = log.With(zap.String("run", runID.String()))

	newWorld, shots, err := loadShots(cfg, log)
	if err != nil {
		return err
	}
	if len(shots) == 0 {
		log.Info("no shots to render")
		return nil
	}

	meshes := mesh.NewBank(cfg.MeshDir, log)
	texIndex := texture.BuildIndex(cfg.TextureDir)
	textures := texture.NewCache(texIndex, log)
	if err := textures.Preload(ctx); err != nil {
		return err
	}
	log.Info("resources ready",
		zap.String("meshes", cfg.MeshDir),
		zap.Int("textures", textures.Len()))

	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Animate:     cfg.Animate,
		FrameMs:     cfg.FrameMs,
		Background:  cfg.Background(),
		Light:       cfg.RasterLight(),
	}

	log.Info("rendering",
		zap.Int("frames", len(shots)),
		zap.Int("workers", cfg.Workers),
		zap.String("output", cfg.OutputDir))
	start := time.Now()

	results, err := batch.Run(ctx, batchCfg, newWorld, shots, meshes, textures, log)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		log.Debug("frame",
			zap.String("frame", r.Shot.Name),
			zap.Int("draw_calls", r.Stats.DrawCalls),
			zap.Int("skipped", r.Stats.Skipped),
			zap.Int("stencil_marks", r.Stats.StencilMarks))
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, batch.NewManifest(runID, batchCfg, results)); err != nil {
		log.Warn("manifest write failed", zap.Error(err))
	}

	log.Info("done",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("rendered", len(results)-failed),
		zap.Int("failed", failed),
		zap.String("manifest", manifestPath))
	if failed > 0 {
		return fmt.Errorf("%d of %d frames failed", failed, len(results))
	}
	return nil
}

// loadShots returns the world factory and the shots: the scene's own, or
// an orbit around the starting camera. A scene's own fov beats the config.
func loadShots(cfg config.Config, log *zap.Logger) (batch.WorldFactory, []batch.Shot, error) {
	if cfg.SceneFile == "" {
		fovY := mathutil.Deg2Rad(cfg.FovDeg)
		factory := func() (*world.World, error) {
			w := world.ExampleWorld()
			cam := w.Camera()
			cam.FovY = fovY
			w.SetCamera(cam)
			return w, nil
		}
		cam := world.ExampleWorld().Camera()
		return factory, batch.Orbit(cam.Pos, cam.AngX, cam.AngY, cfg.Frames), nil
	}

	sc, err := config.LoadScene(cfg.SceneFile)
	if err != nil {
		return nil, nil, err
	}
	if sc.Camera.FovDeg <= 0 {
		sc.Camera.FovDeg = cfg.FovDeg
	}
	factory := func() (*world.World, error) { return world.FromScene(sc, log) }
	if len(sc.Shots) > 0 {
		return factory, batch.FromScene(sc.Shots), nil
	}
	return factory, batch.Orbit(mathutil.Vec3(sc.Camera.Pos),
		mathutil.Deg2Rad(sc.Camera.Yaw), mathutil.Deg2Rad(sc.Camera.Pitch), cfg.Frames), nil
}
