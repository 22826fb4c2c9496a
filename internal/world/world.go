// Package world holds the scene entities, the player camera and the
// portal pair, and drives the per-frame render passes.
package world

import (
	"portal-renderer/internal/camera"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/render"
	"portal-renderer/internal/scene"
)

// PortalPair is the single linked pair: looking into A shows the world
// beyond B and vice versa.
type PortalPair struct {
	A, B scene.Portal
}

// Side selects one portal of the pair.
type Side int

const (
	SideA Side = iota
	SideB
)

type World struct {
	camera   camera.Camera
	entities []Entity
	pair     *PortalPair
}

func New(cam camera.Camera, entities []Entity, pair *PortalPair) *World {
	w := &World{camera: cam, entities: entities}
	if pair != nil {
		w.SetPair(*pair)
	}
	return w
}

func (w *World) Camera() camera.Camera     { return w.camera }
func (w *World) SetCamera(c camera.Camera) { w.camera = c }
func (w *World) Entities() []Entity        { return w.entities }

func (w *World) AddEntity(e Entity) {
	w.entities = append(w.entities, e)
}

// MovePlayer moves in the player's yawed frame.
func (w *World) MovePlayer(v mathutil.Vec3) {
	w.camera.MoveCamera(v)
}

func (w *World) RotatePlayer(yaw, pitch float64) {
	w.camera.RotatePlayer(yaw, pitch)
}

// ClampPitch limits the player's pitch to ±limit. A non-positive limit
// leaves it unclamped.
func (w *World) ClampPitch(limit float64) {
	if limit <= 0 {
		return
	}
	if w.camera.AngY > limit {
		w.camera.AngY = limit
	} else if w.camera.AngY < -limit {
		w.camera.AngY = -limit
	}
}

// Pair returns a copy of the linked pair, if any.
func (w *World) Pair() (PortalPair, bool) {
	if w.pair == nil {
		return PortalPair{}, false
	}
	return *w.pair, true
}

func (w *World) SetPair(p PortalPair) {
	w.pair = &p
}

func (w *World) ClearPair() {
	w.pair = nil
}

// RotatePortal turns one side of the pair. It reports false when there is
// no pair.
func (w *World) RotatePortal(side Side, dyaw, dpitch float64) bool {
	if w.pair == nil {
		return false
	}
	p := &w.pair.A
	if side == SideB {
		p = &w.pair.B
	}
	p.Rotate(dyaw, dpitch)
	return true
}

// Tick advances every entity once.
func (w *World) Tick(dt float64) {
	for _, e := range w.entities {
		e.Tick(dt)
	}
}

// Render draws one frame into fb, which the caller has begun with
// r.BeginFrame. With a pair the scene is drawn three times, in order:
// through A, through B, then plainly. Without one it is drawn once.
func (w *World) Render(r *render.Renderer, fb *raster.FrameBuffer) {
	r.SetCamera(w.camera)
	if w.pair != nil {
		a, b := &w.pair.A, &w.pair.B
		r.Enter(fb, a, b)
		w.drawScene(r, fb)
		r.Enter(fb, b, a)
		w.drawScene(r, fb)
	}
	r.Exit(fb)
	w.drawScene(r, fb)
}

func (w *World) drawScene(r *render.Renderer, fb *raster.FrameBuffer) {
	for _, e := range w.entities {
		e.Render(r, fb)
	}
	if w.pair != nil {
		r.DrawPortal(fb, &w.pair.A)
		r.DrawPortal(fb, &w.pair.B)
	}
}
