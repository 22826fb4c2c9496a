package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"portal-renderer/internal/control"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/render"
	"portal-renderer/internal/world"
)

var keyMap = [...]struct {
	key  control.Key
	keys []ebiten.Key
}{
	{control.KeyW, []ebiten.Key{ebiten.KeyW}},
	{control.KeyA, []ebiten.Key{ebiten.KeyA}},
	{control.KeyS, []ebiten.Key{ebiten.KeyS}},
	{control.KeyD, []ebiten.Key{ebiten.KeyD}},
	{control.KeyQ, []ebiten.Key{ebiten.KeyQ}},
	{control.KeyE, []ebiten.Key{ebiten.KeyE}},
	{control.KeyShift, []ebiten.Key{ebiten.KeyShiftLeft, ebiten.KeyShiftRight}},
	{control.KeyEscape, []ebiten.Key{ebiten.KeyEscape}},
	{control.KeyPortalLeft, []ebiten.Key{ebiten.KeyBracketLeft}},
	{control.KeyPortalRight, []ebiten.Key{ebiten.KeyBracketRight}},
	{control.KeyTogglePortals, []ebiten.Key{ebiten.KeyP}},
}

// game renders the world on the CPU each frame and uploads the colour
// buffer to the window.
type game struct {
	world *world.World
	r     *render.Renderer
	ctl   *control.Controller
	log   *zap.Logger

	fb     *raster.FrameBuffer
	screen *ebiten.Image

	prevX, prevY int
	frames       int
}

func newGame(w *world.World, r *render.Renderer, ctl *control.Controller, width, height int, log *zap.Logger) *game {
	return &game{
		world: w,
		r:     r,
		ctl:   ctl,
		log:   log,
		fb:    raster.NewFrameBuffer(width, height),
	}
}

func (g *game) snapshot() control.State {
	s := control.State{
		Clicked:        inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		CloseRequested: ebiten.IsWindowBeingClosed(),
		Focused:        g.ctl.Focused,
		Dt:             1 / float64(ebiten.TPS()),
	}
	for _, m := range keyMap {
		for _, k := range m.keys {
			if ebiten.IsKeyPressed(k) {
				s.Down[m.key] = true
			}
			if inpututil.IsKeyJustPressed(k) {
				s.Pressed[m.key] = true
			}
		}
	}

	x, y := ebiten.CursorPosition()
	s.MouseDX = float64(x - g.prevX)
	s.MouseDY = float64(y - g.prevY)
	g.prevX, g.prevY = x, y
	return s
}

func (g *game) Update() error {
	s := g.snapshot()
	wasFocused := g.ctl.Focused
	if g.ctl.Apply(g.world, control.Collect(s, g.ctl.Settings)) {
		return ebiten.Termination
	}

	if g.ctl.Focused != wasFocused {
		if g.ctl.Focused {
			ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		} else {
			ebiten.SetCursorMode(ebiten.CursorModeVisible)
		}
		// Capturing moves the cursor; don't turn that into a look.
		g.prevX, g.prevY = ebiten.CursorPosition()
	}

	g.world.Tick(s.Dt)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.r.BeginFrame(g.fb)
	g.world.Render(g.r, g.fb)

	if g.screen == nil {
		g.screen = ebiten.NewImage(g.fb.Width, g.fb.Height)
	}
	g.screen.WritePixels(g.fb.Color)
	screen.DrawImage(g.screen, nil)

	g.frames++
	if g.frames%300 == 0 {
		st := g.r.Stats()
		g.log.Debug("frame stats",
			zap.Float64("fps", ebiten.ActualFPS()),
			zap.Int("draw_calls", st.DrawCalls),
			zap.Int("skipped", st.Skipped),
			zap.Int("triangles", st.Triangles))
	}
}

// Layout resizes the framebuffer to the window so rendering stays 1:1.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth < 1 || outsideHeight < 1 {
		return g.fb.Width, g.fb.Height
	}
	if outsideWidth != g.fb.Width || outsideHeight != g.fb.Height {
		g.fb = raster.NewFrameBuffer(outsideWidth, outsideHeight)
		if g.screen != nil {
			g.screen.Deallocate()
			g.screen = nil
		}
	}
	return outsideWidth, outsideHeight
}
