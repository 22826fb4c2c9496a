package raster

// DepthFunc selects the depth comparison against the stored value.
type DepthFunc uint8

const (
	DepthAlways DepthFunc = iota
	DepthLess
	DepthLessOrEqual
)

func (f DepthFunc) pass(z, stored float64) bool {
	switch f {
	case DepthLess:
		return z < stored
	case DepthLessOrEqual:
		return z <= stored
	default:
		return true
	}
}

// StencilFunc selects the stencil comparison against Ref.
type StencilFunc uint8

const (
	StencilAlways StencilFunc = iota
	StencilEqual
)

// StencilOp is applied when both the stencil and depth tests pass.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilReplace
)

type StencilState struct {
	Func   StencilFunc
	Ref    uint8
	PassOp StencilOp
}

// Enabled reports whether the state reads or writes the stencil plane.
func (s StencilState) Enabled() bool {
	return s.Func != StencilAlways || s.PassOp != StencilKeep
}

// DrawParams is the fixed-function state of one draw call.
type DrawParams struct {
	Depth      DepthFunc
	DepthWrite bool
	ColorWrite bool
	Stencil    StencilState
	CullBack   bool
}

// DefaultDrawParams is an ordinary opaque draw: nearer-or-equal depth test
// with depth and colour writes, no stencil.
func DefaultDrawParams() DrawParams {
	return DrawParams{
		Depth:      DepthLessOrEqual,
		DepthWrite: true,
		ColorWrite: true,
	}
}
