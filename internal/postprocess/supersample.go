// Package postprocess resolves supersampled frames to their output size.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample resolves a supersampled frame to w×h with a CatmullRom filter.
// Filtering runs on premultiplied colour so transparent texels never bleed
// black into covered ones. A frame already at w×h is returned as is.
func Downsample(frame *image.NRGBA, w, h int) *image.NRGBA {
	b := frame.Bounds()
	if w <= 0 || h <= 0 || (b.Dx() == w && b.Dy() == h) {
		return frame
	}

	src := &image.RGBA{Pix: make([]uint8, len(frame.Pix)), Stride: frame.Stride, Rect: b}
	premultiply(src.Pix, frame.Pix)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	out := image.NewNRGBA(dst.Bounds())
	unpremultiply(out.Pix, dst.Pix)
	return out
}

func premultiply(dst, src []uint8) {
	for i := 0; i+3 < len(src); i += 4 {
		a := uint32(src[i+3])
		dst[i] = uint8((uint32(src[i])*a + 127) / 255)
		dst[i+1] = uint8((uint32(src[i+1])*a + 127) / 255)
		dst[i+2] = uint8((uint32(src[i+2])*a + 127) / 255)
		dst[i+3] = src[i+3]
	}
}

// unpremultiply leaves nearly transparent pixels black.
func unpremultiply(dst, src []uint8) {
	for i := 0; i+3 < len(src); i += 4 {
		a := uint32(src[i+3])
		dst[i+3] = src[i+3]
		if a <= 1 {
			continue
		}
		dst[i] = div(src[i], a)
		dst[i+1] = div(src[i+1], a)
		dst[i+2] = div(src[i+2], a)
	}
}

func div(c uint8, a uint32) uint8 {
	v := (uint32(c)*255 + a/2) / a
	if v > 255 {
		return 255
	}
	return uint8(v)
}
