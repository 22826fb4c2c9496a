package scene

import "portal-renderer/internal/mathutil"

// Transform places an object in the world. The model matrix is
// recomputed on every setter, so Mat is never stale.
type Transform struct {
	pos   mathutil.Vec3
	rot   mathutil.Quat
	scale mathutil.Vec3
	mat   mathutil.Mat4
}

// NewTransform builds a transform from position, unit rotation and scale.
func NewTransform(pos mathutil.Vec3, rot mathutil.Quat, scale mathutil.Vec3) Transform {
	t := Transform{pos: pos, rot: rot, scale: scale}
	t.recalc()
	return t
}

// TransformFromPos is an unrotated, unit-scale transform at pos.
func TransformFromPos(pos mathutil.Vec3) Transform {
	return NewTransform(pos, mathutil.QuatIdentity(), mathutil.Vec3{1, 1, 1})
}

func (t *Transform) recalc() {
	t.mat = mathutil.Translation(t.pos).
		Mul(t.rot.Mat4()).
		Mul(mathutil.Scale(t.scale))
}

func (t Transform) Pos() mathutil.Vec3   { return t.pos }
func (t Transform) Rot() mathutil.Quat   { return t.rot }
func (t Transform) Scale() mathutil.Vec3 { return t.scale }
func (t Transform) Mat() mathutil.Mat4   { return t.mat }

func (t *Transform) SetPos(pos mathutil.Vec3) {
	t.pos = pos
	t.recalc()
}

func (t *Transform) SetRot(rot mathutil.Quat) {
	t.rot = rot
	t.recalc()
}

func (t *Transform) SetScale(scale mathutil.Vec3) {
	t.scale = scale
	t.recalc()
}
