package scene

import "portal-renderer/internal/mathutil"

// Portal is one surface of a linked pair. Its mesh is the canonical unit
// quad (origin-centred, facing local +Z); Pos, AngX, AngY and Size are the
// only parameters placing it in the world. Roll is not representable.
type Portal struct {
	Pos  mathutil.Vec3
	AngX float64 // yaw, around the global vertical axis
	AngY float64 // pitch, around the global horizontal axis
	Size mathutil.Vec2
}

func NewPortal(pos mathutil.Vec3, angx, angy float64, size mathutil.Vec2) Portal {
	return Portal{Pos: pos, AngX: angx, AngY: angy, Size: size}
}

// Rotation returns RotY(angx)·RotX(angy).
func (p *Portal) Rotation() mathutil.Mat3 {
	return mathutil.RotY(p.AngX).Mul(mathutil.RotX(p.AngY))
}

// ModelMatrix places the unit quad: T(pos)·R(angx, angy)·S(size.x, size.y, 1).
func (p *Portal) ModelMatrix() mathutil.Mat4 {
	return mathutil.Translation(p.Pos).
		Mul(mathutil.FromMat3(p.Rotation())).
		Mul(mathutil.Scale(mathutil.Vec3{p.Size[0], p.Size[1], 1}))
}

// Normal is the world-space facing direction.
func (p *Portal) Normal() mathutil.Vec3 {
	return p.Rotation().MulVec3(mathutil.Vec3{0, 0, 1})
}

// Rotate changes the surface orientation at runtime.
func (p *Portal) Rotate(dyaw, dpitch float64) {
	p.AngX += dyaw
	p.AngY += dpitch
}

// Corners returns the world-space corners of the quad, counter-clockwise
// from bottom-left as seen from the front.
func (p *Portal) Corners() [4]mathutil.Vec3 {
	m := p.ModelMatrix()
	return [4]mathutil.Vec3{
		m.MulPoint(mathutil.Vec3{-0.5, -0.5, 0}),
		m.MulPoint(mathutil.Vec3{0.5, -0.5, 0}),
		m.MulPoint(mathutil.Vec3{0.5, 0.5, 0}),
		m.MulPoint(mathutil.Vec3{-0.5, 0.5, 0}),
	}
}
