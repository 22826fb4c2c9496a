package raster

import (
	"math"

	"portal-renderer/internal/mathutil"
)

// Light is the single point light fed to the lit program.
type Light struct {
	Pos      mathutil.Vec3
	Ambient  mathutil.Vec3
	Diffuse  mathutil.Vec3
	Exposure float64
	InvGamma float64
}

// DefaultLight sits above the play area with a soft ambient fill.
func DefaultLight() Light {
	return Light{
		Pos:      mathutil.Vec3{0, 6, -2},
		Ambient:  mathutil.Vec3{0.35, 0.35, 0.38},
		Diffuse:  mathutil.Vec3{1.1, 1.05, 1.0},
		Exposure: 1.05,
		InvGamma: 1.0 / 2.2,
	}
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// encode maps a linear channel through tone mapping and gamma to 8 bits.
func encode(lin, invGamma float64) uint8 {
	return clamp255(math.Pow(ACESTonemap(lin), invGamma) * 255)
}

func clamp255(v float64) uint8 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
