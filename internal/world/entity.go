package world

import (
	"math"

	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/render"
	"portal-renderer/internal/scene"
)

// Entity is anything the world draws each pass and advances each frame.
// Static, Rotating and RandomRotating are the only implementations.
type Entity interface {
	Render(r *render.Renderer, fb *raster.FrameBuffer)
	Tick(dt float64)
}

// Static never moves.
type Static struct {
	Trans scene.Transform
	Mesh  string
}

func NewStatic(trans scene.Transform, mesh string) *Static {
	return &Static{Trans: trans, Mesh: mesh}
}

func (e *Static) Render(r *render.Renderer, fb *raster.FrameBuffer) {
	r.Draw(fb, e.Mesh, e.Trans.Mat())
}

func (e *Static) Tick(float64) {}

// Rotating spins about a fixed local axis at Speed radians per second.
type Rotating struct {
	Trans scene.Transform
	Mesh  string
	Axis  mathutil.Vec3
	Speed float64
}

func NewRotating(trans scene.Transform, mesh string, axis mathutil.Vec3, speed float64) *Rotating {
	return &Rotating{Trans: trans, Mesh: mesh, Axis: axis, Speed: speed}
}

func (e *Rotating) Render(r *render.Renderer, fb *raster.FrameBuffer) {
	r.Draw(fb, e.Mesh, e.Trans.Mat())
}

func (e *Rotating) Tick(dt float64) {
	step := mathutil.QuatFromAxisAngle(e.Axis, e.Speed*dt)
	e.Trans.SetRot(e.Trans.Rot().Mul(step).Normalize())
}

// RandomRotating eases toward a target orientation that wanders with time.
type RandomRotating struct {
	Trans scene.Transform
	Mesh  string
	time  float64
}

func NewRandomRotating(trans scene.Transform, mesh string) *RandomRotating {
	return &RandomRotating{Trans: trans, Mesh: mesh}
}

func (e *RandomRotating) Render(r *render.Renderer, fb *raster.FrameBuffer) {
	r.Draw(fb, e.Mesh, e.Trans.Mat())
}

// Tick slerps a fraction dt/0.5 of the way to the current target, capped
// at the target itself.
func (e *RandomRotating) Tick(dt float64) {
	e.time += dt
	axis := mathutil.Vec3{
		math.Cos(e.time/1.51 - 65.124),
		math.Sin(e.time*1.44 - 12.145),
		math.Cos(e.time*1.14 - 41.624),
	}.Normalize()
	target := mathutil.QuatFromAxisAngle(axis, e.time)
	e.Trans.SetRot(e.Trans.Rot().Slerp(target, math.Min(dt/0.5, 1)))
}
