package raster

import (
	"image"
	"image/color"
)

// FrameBuffer holds the colour, depth and stencil attachments as flat
// slices for cache locality. Depth follows the OpenGL convention: 0 is the
// near plane, 1 the far plane, and nearer-or-equal passes.
type FrameBuffer struct {
	Width   int
	Height  int
	Color   []uint8   // RGBA interleaved, len = W*H*4
	Depth   []float64 // len = W*H
	Stencil []uint8   // len = W*H; nil when the target has no stencil plane
}

// NewFrameBuffer allocates a transparent colour buffer, depth cleared to
// the far plane and a zeroed stencil plane.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	fb := &FrameBuffer{
		Width:   w,
		Height:  h,
		Color:   make([]uint8, n*4),
		Depth:   make([]float64, n),
		Stencil: make([]uint8, n),
	}
	fb.ClearDepth(1)
	return fb
}

// Clear resets all three attachments.
func (fb *FrameBuffer) Clear(c color.NRGBA) {
	fb.ClearColor(c)
	fb.ClearDepth(1)
	fb.ClearStencil(0)
}

func (fb *FrameBuffer) ClearColor(c color.NRGBA) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = c.R
		fb.Color[i+1] = c.G
		fb.Color[i+2] = c.B
		fb.Color[i+3] = c.A
	}
}

func (fb *FrameBuffer) ClearDepth(d float64) {
	for i := range fb.Depth {
		fb.Depth[i] = d
	}
}

func (fb *FrameBuffer) ClearStencil(v uint8) {
	for i := range fb.Stencil {
		fb.Stencil[i] = v
	}
}

// HasStencil reports whether the target carries a stencil plane.
func (fb *FrameBuffer) HasStencil() bool {
	return len(fb.Stencil) == fb.Width*fb.Height && fb.Width*fb.Height > 0
}

func (fb *FrameBuffer) ColorAt(x, y int) color.NRGBA {
	i := (y*fb.Width + x) * 4
	return color.NRGBA{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
}

func (fb *FrameBuffer) DepthAt(x, y int) float64 {
	return fb.Depth[y*fb.Width+x]
}

func (fb *FrameBuffer) StencilAt(x, y int) uint8 {
	return fb.Stencil[y*fb.Width+x]
}

// Image copies the colour attachment into a new NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}
