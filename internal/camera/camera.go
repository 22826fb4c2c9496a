// Package camera holds the first-person viewer and the portal transform.
package camera

import (
	"math"

	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/scene"
)

// Camera is a first-person viewer. Matrices are pure functions of the
// fields and are never cached.
type Camera struct {
	FovY  float64 // vertical field of view, radians
	Pos   mathutil.Vec3
	AngX  float64 // yaw, applied first, around the global vertical axis
	AngY  float64 // pitch, applied second, around the global horizontal axis
	ZNear float64
	ZFar  float64
}

// New returns the default camera: 60° fovy at the origin looking down -Z.
func New() Camera {
	return Camera{
		FovY:  mathutil.Deg2Rad(60),
		ZNear: 0.01,
		ZFar:  1000,
	}
}

// ViewMatrix is RotX(angy)·RotY(angx)·T(-pos).
func (c Camera) ViewMatrix() mathutil.Mat4 {
	trans := mathutil.Translation(c.Pos.Neg())
	rotX := mathutil.FromMat3(mathutil.RotY(c.AngX))
	rotY := mathutil.FromMat3(mathutil.RotX(c.AngY))
	return rotY.Mul(rotX).Mul(trans)
}

// ProjectionMatrix is a perspective projection for a w×h viewport.
// h must be positive.
func (c Camera) ProjectionMatrix(w, h int) mathutil.Mat4 {
	return mathutil.Perspective(c.FovY, float64(w)/float64(h), c.ZNear, c.ZFar)
}

// Forward is the world-space look direction.
func (c Camera) Forward() mathutil.Vec3 {
	inv := mathutil.RotY(-c.AngX).Mul(mathutil.RotX(-c.AngY))
	return inv.MulVec3(mathutil.Vec3{0, 0, -1})
}

// MoveCamera moves by v expressed in the yawed frame; pitch is ignored so
// forward and strafe stay horizontal.
func (c *Camera) MoveCamera(v mathutil.Vec3) {
	c.Pos = c.Pos.Add(mathutil.RotY(-c.AngX).MulVec3(v))
}

// RotatePlayer accumulates look deltas. Pitch is not clamped here.
func (c *Camera) RotatePlayer(yaw, pitch float64) {
	c.AngX += yaw
	c.AngY += pitch
}

// TransformByPortal returns the camera as seen from the far side of the
// pair: orientation shifted by the portals' angle delta, position
// re-expressed relative to to after a half-turn so the result looks out of
// to instead of back into it. Both portals must use the canonical quad
// convention (facing +Z, no roll).
func (c Camera) TransformByPortal(from, to *scene.Portal) Camera {
	dyaw := to.AngX - from.AngX
	dpitch := to.AngY - from.AngY

	out := c
	out.AngX += dyaw
	out.AngY += dpitch

	v := c.Pos.Sub(from.Pos)
	v = mathutil.RotY(dyaw + math.Pi).MulVec3(v)
	v = mathutil.RotX(dpitch).MulVec3(v)
	out.Pos = to.Pos.Add(v)
	return out
}
