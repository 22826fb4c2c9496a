// Package mesh provides triangle meshes, their materials and the bank that
// serves them to the renderer by ID.
package mesh

import (
	"fmt"
	"math"
	"sync"

	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/raster"
)

// Material holds the MTL colour terms used by the lit program.
type Material struct {
	Ambient   mathutil.Vec3
	Diffuse   mathutil.Vec3
	Specular  mathutil.Vec3
	Emissive  mathutil.Vec3
	Shininess float64
	Dissolve  float64 // 1 = opaque
	// DiffuseMap is a texture ID, "" for untextured.
	DiffuseMap string
}

// DefaultMaterial is white, opaque and untextured.
func DefaultMaterial() Material {
	return Material{
		Ambient:   mathutil.Vec3{1, 1, 1},
		Diffuse:   mathutil.Vec3{1, 1, 1},
		Shininess: 10,
		Dissolve:  1,
	}
}

// Mesh is an indexed triangle list. Positions, Normals and UVs are
// parallel slices.
type Mesh struct {
	Name      string
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
	UVs       []mathutil.Vec2
	Indices   []uint32
	Material  Material

	once  sync.Once
	verts []raster.VertexIn
}

// Vertices returns the interleaved vertex stream, built on first use.
// The mesh must not be modified afterwards.
func (m *Mesh) Vertices() []raster.VertexIn {
	m.once.Do(func() {
		m.verts = make([]raster.VertexIn, len(m.Positions))
		for i, p := range m.Positions {
			v := raster.VertexIn{Pos: p}
			if i < len(m.Normals) {
				v.Normal = m.Normals[i]
			}
			if i < len(m.UVs) {
				v.UV = m.UVs[i]
			}
			m.verts[i] = v
		}
	})
	return m.verts
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Empty reports whether the mesh draws nothing.
func (m *Mesh) Empty() bool {
	return len(m.Indices) == 0
}

// Bounds returns the axis-aligned extents of the positions. An empty mesh
// yields two zero vectors.
func (m *Mesh) Bounds() (lo, hi mathutil.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	lo = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range m.Positions {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	return
}

// Validate checks that the attribute slices line up and every index is in
// range.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("mesh %s: %d normals for %d positions", m.Name, len(m.Normals), n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != n {
		return fmt.Errorf("mesh %s: %d uvs for %d positions", m.Name, len(m.UVs), n)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %s: index count %d is not a multiple of 3", m.Name, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("mesh %s: index %d at %d out of range", m.Name, idx, i)
		}
	}
	return nil
}
