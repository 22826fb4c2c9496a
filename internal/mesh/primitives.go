package mesh

import "portal-renderer/internal/mathutil"

// Quad is the canonical portal quad: unit size, centred on the origin,
// facing +Z, counter-clockwise from the front.
func Quad() *Mesh {
	n := mathutil.Vec3{0, 0, 1}
	return &Mesh{
		Name: "quad",
		Positions: []mathutil.Vec3{
			{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0},
		},
		Normals:  []mathutil.Vec3{n, n, n, n},
		UVs:      []mathutil.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
		Material: DefaultMaterial(),
	}
}

// boxFaces lists each face as normal, u, v with u×v = normal, so corners
// walked (-u-v, +u-v, +u+v, -u+v) are counter-clockwise from outside.
var boxFaces = [6][3]mathutil.Vec3{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},  // right
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},  // left
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},  // top
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},  // bottom
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},   // front
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}}, // back
}

// Box is an axis-aligned w×h×d box centred on the origin with one UV
// square per face.
func Box(w, h, d float64) *Mesh {
	half := mathutil.Vec3{w / 2, h / 2, d / 2}
	m := &Mesh{Name: "box", Material: DefaultMaterial()}

	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range boxFaces {
		n, u, v := f[0], f[1], f[2]
		base := uint32(len(m.Positions))
		for _, c := range corners {
			p := n.Add(u.Scale(c[0])).Add(v.Scale(c[1])).Mul(half)
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, n)
			m.UVs = append(m.UVs, mathutil.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// Plane is a w×d horizontal plane at y=0 facing +Y. UVs run one unit per
// world unit so textures tile.
func Plane(w, d float64) *Mesh {
	hw, hd := w/2, d/2
	n := mathutil.Vec3{0, 1, 0}
	return &Mesh{
		Name: "plane",
		Positions: []mathutil.Vec3{
			{-hw, 0, hd}, {hw, 0, hd}, {hw, 0, -hd}, {-hw, 0, -hd},
		},
		Normals:  []mathutil.Vec3{n, n, n, n},
		UVs:      []mathutil.Vec2{{0, 0}, {w, 0}, {w, d}, {0, d}},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
		Material: DefaultMaterial(),
	}
}
