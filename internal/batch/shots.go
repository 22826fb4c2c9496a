package batch

import (
	"fmt"
	"math"

	"portal-renderer/internal/config"
	"portal-renderer/internal/mathutil"
)

// Shot is one camera pose to render. Angles are radians. Step is the
// number of fixed animation steps the world is advanced before rendering.
type Shot struct {
	Name  string
	Pos   mathutil.Vec3
	Yaw   float64
	Pitch float64
	Step  int
}

// FromScene converts the scene's shots (degrees) into render shots, one
// animation step apart.
func FromScene(shots []config.Shot) []Shot {
	out := make([]Shot, len(shots))
	for i, s := range shots {
		out[i] = Shot{
			Name:  s.Name,
			Pos:   mathutil.Vec3(s.Pos),
			Yaw:   mathutil.Deg2Rad(s.Yaw),
			Pitch: mathutil.Deg2Rad(s.Pitch),
			Step:  i,
		}
	}
	return out
}

// Orbit turns in place at pos through a full circle of yaw in n frames,
// starting from yaw.
func Orbit(pos mathutil.Vec3, yaw, pitch float64, n int) []Shot {
	out := make([]Shot, n)
	for i := range out {
		out[i] = Shot{
			Name:  fmt.Sprintf("frame_%03d", i),
			Pos:   pos,
			Yaw:   yaw + 2*math.Pi*float64(i)/float64(n),
			Pitch: pitch,
			Step:  i,
		}
	}
	return out
}
