package batch

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portal-renderer/internal/postprocess"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/render"
	"portal-renderer/internal/world"
)

// Config holds the shared settings for a batch run.
type Config struct {
	OutputDir   string
	Width       int
	Height      int
	Supersample int
	Workers     int
	Animate     bool
	FrameMs     int
	Background  color.NRGBA
	Light       raster.Light
}

// WorldFactory builds a fresh world. Each frame gets its own.
type WorldFactory func() (*world.World, error)

// Result holds the outcome of rendering one shot.
type Result struct {
	Shot   Shot
	Image  string // path relative to the output dir
	Digest uint64
	Stats  render.Stats
	Err    error

	frame *image.NRGBA
}

// Run renders every shot on a pool of workers. Each worker owns its
// renderer and framebuffer, and each frame its own world, so frames are
// independent of scheduling. Per-frame failures land in the results; the
// returned error is only set when ctx is cancelled or the output
// directory cannot be created.
func Run(ctx context.Context, cfg Config, newWorld WorldFactory, shots []Shot,
	meshes render.MeshProvider, textures render.TextureProvider, log *zap.Logger) ([]Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Supersample < 1 {
		cfg.Supersample = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	results := make([]Result, len(shots))
	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("progress",
						zap.Int64("done", p),
						zap.Int("total", len(shots)),
						zap.Float64("frames_per_sec", rate))
				}
			}
		}
	}()
	defer close(done)

	work := make(chan int)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(work)
		for i := range shots {
			select {
			case work <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			r := render.New(meshes, textures,
				render.WithLogger(log),
				render.WithClearColor(cfg.Background),
				render.WithLight(cfg.Light))
			fb := raster.NewFrameBuffer(cfg.Width*cfg.Supersample, cfg.Height*cfg.Supersample)
			for idx := range work {
				results[idx] = renderShot(cfg, newWorld, shots[idx], r, fb)
				if err := results[idx].Err; err != nil {
					log.Warn("frame failed", zap.String("frame", shots[idx].Name), zap.Error(err))
				}
				processed.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	if cfg.Animate {
		if err := writeAnimation(filepath.Join(cfg.OutputDir, "animation.webp"), results, cfg); err != nil {
			log.Warn("animation not written", zap.Error(err))
		}
	}
	for i := range results {
		results[i].frame = nil
	}
	return results, nil
}

func renderShot(cfg Config, newWorld WorldFactory, shot Shot, r *render.Renderer, fb *raster.FrameBuffer) Result {
	res := Result{Shot: shot}

	w, err := newWorld()
	if err != nil {
		res.Err = err
		return res
	}
	dt := float64(cfg.FrameMs) / 1000
	for i := 0; i < shot.Step; i++ {
		w.Tick(dt)
	}

	cam := w.Camera()
	cam.Pos = shot.Pos
	cam.AngX = shot.Yaw
	cam.AngY = shot.Pitch
	w.SetCamera(cam)

	r.BeginFrame(fb)
	w.Render(r, fb)
	res.Stats = r.Stats()

	img := postprocess.Downsample(fb.Image(), cfg.Width, cfg.Height)
	res.Digest = xxhash.Sum64(img.Pix)
	res.frame = img

	res.Image = shot.Name + ".webp"
	if err := writeWebP(filepath.Join(cfg.OutputDir, res.Image), img); err != nil {
		res.Err = err
	}
	return res
}

func writeWebP(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return f.Close()
}

// writeAnimation strings the successful frames together in shot order.
func writeAnimation(path string, results []Result, cfg Config) error {
	ani := &nativewebp.Animation{}
	for _, res := range results {
		if res.frame == nil || res.Err != nil {
			continue
		}
		ani.Images = append(ani.Images, res.frame)
		ani.Durations = append(ani.Durations, uint(cfg.FrameMs))
		ani.Disposals = append(ani.Disposals, 0)
	}
	if len(ani.Images) == 0 {
		return fmt.Errorf("no frames")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := nativewebp.EncodeAll(f, ani, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return f.Close()
}
