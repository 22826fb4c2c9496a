package raster

import (
	"errors"
	"fmt"
	"math"

	"portal-renderer/internal/mathutil"
)

// Draw-call errors. The caller decides whether to skip or abort.
var (
	ErrNoStencil   = errors.New("raster: stencil state on a target without a stencil plane")
	ErrIndexRange  = errors.New("raster: index out of range")
	ErrIndexCount  = errors.New("raster: index count is not a multiple of 3")
	ErrEmptyTarget = errors.New("raster: zero-sized target")
)

// DrawTriangles runs the vertex stage over verts, assembles triangles from
// indices, clips them against the near plane and rasterizes them into fb.
//
// Per fragment the order is: shader discard, stencil test, depth test,
// stencil pass-op, depth write, colour write.
func DrawTriangles(fb *FrameBuffer, params *DrawParams, prog Program, verts []VertexIn, indices []uint32) error {
	if fb.Width <= 0 || fb.Height <= 0 {
		return ErrEmptyTarget
	}
	if params.Stencil.Enabled() && !fb.HasStencil() {
		return ErrNoStencil
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d", ErrIndexCount, len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(verts) {
			return fmt.Errorf("%w: %d >= %d", ErrIndexRange, idx, len(verts))
		}
	}

	out := make([]Varying, len(verts))
	for i, v := range verts {
		out[i] = prog.Vertex(v)
	}

	var poly [4]Varying
	for t := 0; t < len(indices); t += 3 {
		tri := [3]Varying{out[indices[t]], out[indices[t+1]], out[indices[t+2]]}
		if outsideFrustum(&tri) {
			continue
		}
		n := clipNear(&tri, &poly)
		// Fan-triangulate the clipped polygon (3 or 4 vertices).
		for k := 1; k+1 < n; k++ {
			rasterize(fb, params, prog, &poly[0], &poly[k], &poly[k+1])
		}
	}
	return nil
}

// outsideFrustum rejects triangles entirely beyond one clip plane.
func outsideFrustum(tri *[3]Varying) bool {
	for axis := 0; axis < 3; axis++ {
		below, above := 0, 0
		for i := 0; i < 3; i++ {
			c := tri[i].Clip
			if c[axis] < -c[3] {
				below++
			}
			if c[axis] > c[3] {
				above++
			}
		}
		if below == 3 || above == 3 {
			return true
		}
	}
	return false
}

// clipNear clips against z >= -w (Sutherland–Hodgman, one plane) and
// returns the vertex count written to out.
func clipNear(tri *[3]Varying, out *[4]Varying) int {
	n := 0
	for i := 0; i < 3; i++ {
		a := tri[i]
		b := tri[(i+1)%3]
		da := a.Clip[2] + a.Clip[3]
		db := b.Clip[2] + b.Clip[3]
		if da >= 0 {
			out[n] = a
			n++
		}
		if (da >= 0) != (db >= 0) {
			out[n] = a.lerp(b, da/(da-db))
			n++
		}
	}
	return n
}

type screenVert struct {
	x, y, z float64
	invW    float64
}

func toScreen(fb *FrameBuffer, v *Varying) screenVert {
	invW := 1 / v.Clip[3]
	return screenVert{
		x:    (v.Clip[0]*invW*0.5 + 0.5) * float64(fb.Width),
		y:    (1 - (v.Clip[1]*invW*0.5 + 0.5)) * float64(fb.Height),
		z:    v.Clip[2]*invW*0.5 + 0.5,
		invW: invW,
	}
}

// rasterize fills one clipped triangle. This is the hot path.
func rasterize(fb *FrameBuffer, params *DrawParams, prog Program, a, b, c *Varying) {
	if a.Clip[3] <= 0 || b.Clip[3] <= 0 || c.Clip[3] <= 0 {
		return
	}
	s0, s1, s2 := toScreen(fb, a), toScreen(fb, b), toScreen(fb, c)

	// Barycentric setup
	det := (s1.y-s2.y)*(s0.x-s2.x) + (s2.x-s1.x)*(s0.y-s2.y)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	// Counter-clockwise in NDC is clockwise in Y-down screen space.
	if params.CullBack && det > 0 {
		return
	}
	invDet := 1.0 / det

	minX := int(math.Floor(math.Min(math.Min(s0.x, s1.x), s2.x)))
	maxX := int(math.Ceil(math.Max(math.Max(s0.x, s1.x), s2.x)))
	minY := int(math.Floor(math.Min(math.Min(s0.y, s1.y), s2.y)))
	maxY := int(math.Ceil(math.Max(math.Max(s0.y, s1.y), s2.y)))
	if minX < 0 {
		minX = 0
	}
	if maxX > fb.Width-1 {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > fb.Height-1 {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Precompute edge deltas
	dy12 := s1.y - s2.y
	dx21 := s2.x - s1.x
	dy20 := s2.y - s0.y
	dx02 := s0.x - s2.x

	stencil := params.Stencil
	var frag Varying
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - s2.y
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - s2.x
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*s0.z + w1*s1.z + w2*s2.z
			if z < 0 || z > 1 {
				continue
			}

			// Perspective-correct varyings
			p0, p1, p2 := w0*s0.invW, w1*s1.invW, w2*s2.invW
			norm := 1 / (p0 + p1 + p2)
			p0, p1, p2 = p0*norm, p1*norm, p2*norm
			frag.World = blend3(a.World, b.World, c.World, p0, p1, p2)
			frag.Normal = blend3(a.Normal, b.Normal, c.Normal, p0, p1, p2)
			frag.UV = mathutil.Vec2{
				a.UV[0]*p0 + b.UV[0]*p1 + c.UV[0]*p2,
				a.UV[1]*p0 + b.UV[1]*p1 + c.UV[1]*p2,
			}

			col, keep := prog.Fragment(&frag)
			if !keep {
				continue
			}

			idx := rowOff + sx
			if stencil.Func == StencilEqual && fb.Stencil[idx] != stencil.Ref {
				continue
			}
			if !params.Depth.pass(z, fb.Depth[idx]) {
				continue
			}
			if stencil.PassOp == StencilReplace {
				fb.Stencil[idx] = stencil.Ref
			}
			if params.DepthWrite {
				fb.Depth[idx] = z
			}
			if params.ColorWrite {
				px := idx * 4
				fb.Color[px] = col.R
				fb.Color[px+1] = col.G
				fb.Color[px+2] = col.B
				fb.Color[px+3] = col.A
			}
		}
	}
}

func blend3(a, b, c mathutil.Vec3, wa, wb, wc float64) mathutil.Vec3 {
	return mathutil.Vec3{
		a[0]*wa + b[0]*wb + c[0]*wc,
		a[1]*wa + b[1]*wb + c[1]*wc,
		a[2]*wa + b[2]*wb + c[2]*wc,
	}
}
