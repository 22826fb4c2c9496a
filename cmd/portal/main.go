package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"portal-renderer/internal/config"
	"portal-renderer/internal/control"
	"portal-renderer/internal/logging"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/mesh"
	"portal-renderer/internal/render"
	"portal-renderer/internal/texture"
	"portal-renderer/internal/world"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	sceneFile := flag.String("scene", "", "Scene file (default: built-in example world)")
	resDir := flag.String("res", "", "Resource directory (default: auto-detect)")
	width := flag.Int("width", 0, "Window width (default: 800)")
	height := flag.Int("height", 0, "Window height (default: 600)")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		ResourceDir: *resDir,
		SceneFile:   *sceneFile,
		Width:       *width,
		Height:      *height,
		LogLevel:    *logLevel,
	})

	log, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	w, err := loadWorld(cfg, log)
	if err != nil {
		log.Error("scene load failed", zap.Error(err))
		os.Exit(1)
	}

	r := render.New(
		mesh.NewBank(cfg.MeshDir, log),
		texture.NewCache(texture.BuildIndex(cfg.TextureDir), log),
		render.WithLogger(log),
		render.WithClearColor(cfg.Background()),
		render.WithLight(cfg.RasterLight()))

	set := control.DefaultSettings()
	set.MoveSpeed = cfg.MoveSpeed
	set.MouseSensitivity = cfg.MouseSensitivity
	set.PitchLimit = mathutil.Deg2Rad(cfg.PitchLimitDeg)

	g := newGame(w, r, control.NewController(set), cfg.Width, cfg.Height, log)

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("Portal")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("game loop", zap.Error(err))
		os.Exit(1)
	}
}

func loadWorld(cfg config.Config, log *zap.Logger) (*world.World, error) {
	if cfg.SceneFile == "" {
		w := world.ExampleWorld()
		cam := w.Camera()
		cam.FovY = mathutil.Deg2Rad(cfg.FovDeg)
		w.SetCamera(cam)
		return w, nil
	}
	sc, err := config.LoadScene(cfg.SceneFile)
	if err != nil {
		return nil, err
	}
	if sc.Camera.FovDeg <= 0 {
		sc.Camera.FovDeg = cfg.FovDeg
	}
	return world.FromScene(sc, log)
}
