package raster

import (
	"image"
	"image/color"
	"math"

	"portal-renderer/internal/mathutil"
)

// VertexIn is one mesh vertex as fed to the vertex stage.
type VertexIn struct {
	Pos    mathutil.Vec3
	Normal mathutil.Vec3
	UV     mathutil.Vec2
}

// Varying is the vertex stage output, interpolated per fragment.
type Varying struct {
	Clip   mathutil.Vec4
	World  mathutil.Vec3
	Normal mathutil.Vec3
	UV     mathutil.Vec2
}

func (a Varying) lerp(b Varying, t float64) Varying {
	return Varying{
		Clip:   a.Clip.Lerp(b.Clip, t),
		World:  a.World.Lerp(b.World, t),
		Normal: a.Normal.Lerp(b.Normal, t),
		UV:     mathutil.Vec2{a.UV[0] + (b.UV[0]-a.UV[0])*t, a.UV[1] + (b.UV[1]-a.UV[1])*t},
	}
}

// Program is a vertex/fragment shader pair. Fragment returns false to
// discard the fragment before any buffer test.
type Program interface {
	Vertex(in VertexIn) Varying
	Fragment(v *Varying) (color.NRGBA, bool)
}

// PhongProgram is the lit program: one point light, per-fragment Lambert
// term, material diffuse/ambient colours and a diffuse texture.
type PhongProgram struct {
	MVP     mathutil.Mat4
	Model   mathutil.Mat4
	Light   Light
	Diffuse mathutil.Vec3
	Ambient mathutil.Vec3
	Texture *image.NRGBA

	normalMat mathutil.Mat3
}

// NewPhongProgram precomputes the normal matrix from model.
func NewPhongProgram(mvp, model mathutil.Mat4, light Light, diffuse, ambient mathutil.Vec3, tex *image.NRGBA) *PhongProgram {
	return &PhongProgram{
		MVP:       mvp,
		Model:     model,
		Light:     light,
		Diffuse:   diffuse,
		Ambient:   ambient,
		Texture:   tex,
		normalMat: mathutil.NormalMatrix(model),
	}
}

func (p *PhongProgram) Vertex(in VertexIn) Varying {
	return Varying{
		Clip:   p.MVP.MulVec4(in.Pos.Extend(1)),
		World:  p.Model.MulPoint(in.Pos),
		Normal: p.normalMat.MulVec3(in.Normal),
		UV:     in.UV,
	}
}

func (p *PhongProgram) Fragment(v *Varying) (color.NRGBA, bool) {
	texel := color.NRGBA{255, 255, 255, 255}
	if p.Texture != nil {
		texel = SampleTexture(p.Texture, v.UV[0], 1-v.UV[1])
	}
	// Skip transparent texels
	if texel.A < 8 {
		return color.NRGBA{}, false
	}

	n := v.Normal.Normalize()
	l := p.Light.Pos.Sub(v.World).Normalize()
	// abs for double-sided surfaces
	ndl := math.Abs(n.Dot(l))

	shade := p.Ambient.Mul(p.Light.Ambient).Add(p.Diffuse.Mul(p.Light.Diffuse).Scale(ndl))
	exp := p.Light.Exposure
	return color.NRGBA{
		R: encode(srgbToLinear[texel.R]*shade[0]*exp, p.Light.InvGamma),
		G: encode(srgbToLinear[texel.G]*shade[1]*exp, p.Light.InvGamma),
		B: encode(srgbToLinear[texel.B]*shade[2]*exp, p.Light.InvGamma),
		A: texel.A,
	}, true
}

// UnlitProgram draws a flat colour modulated by one texture sample. It is
// used for the portal quads.
type UnlitProgram struct {
	MVP     mathutil.Mat4
	Model   mathutil.Mat4
	Color   color.NRGBA
	Texture *image.NRGBA
}

func (p *UnlitProgram) Vertex(in VertexIn) Varying {
	return Varying{
		Clip:   p.MVP.MulVec4(in.Pos.Extend(1)),
		World:  p.Model.MulPoint(in.Pos),
		Normal: in.Normal,
		UV:     in.UV,
	}
}

func (p *UnlitProgram) Fragment(v *Varying) (color.NRGBA, bool) {
	c := p.Color
	if p.Texture != nil {
		t := SampleTexture(p.Texture, v.UV[0], 1-v.UV[1])
		c.R = uint8(uint16(c.R) * uint16(t.R) / 255)
		c.G = uint8(uint16(c.G) * uint16(t.G) / 255)
		c.B = uint8(uint16(c.B) * uint16(t.B) / 255)
		c.A = uint8(uint16(c.A) * uint16(t.A) / 255)
	}
	return c, true
}
