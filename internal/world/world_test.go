package world

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal-renderer/internal/camera"
	"portal-renderer/internal/config"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/mesh"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/render"
	"portal-renderer/internal/scene"
	"portal-renderer/internal/texture"
)

type pass struct {
	state render.State
	cam   camera.Camera
}

// recorder notes the sequencer state each time it is drawn.
type recorder struct {
	passes []pass
	ticks  []float64
}

func (e *recorder) Render(r *render.Renderer, _ *raster.FrameBuffer) {
	e.passes = append(e.passes, pass{state: r.State(), cam: r.CameraTrans()})
}

func (e *recorder) Tick(dt float64) { e.ticks = append(e.ticks, dt) }

func newRenderer() *render.Renderer {
	return render.New(mesh.NewBank("", nil), texture.NewCache(texture.BuildIndex(""), nil))
}

func testPair() PortalPair {
	return PortalPair{
		A: scene.NewPortal(mathutil.Vec3{0, 1, -7}, 0, 0, mathutil.Vec2{1, 2}),
		B: scene.NewPortal(mathutil.Vec3{2, 1, -5}, math.Pi/2, 0, mathutil.Vec2{1, 2}),
	}
}

func TestRenderRunsThreePassesInOrder(t *testing.T) {
	rec := &recorder{}
	cam := camera.New()
	cam.Pos = mathutil.Vec3{0, 1, -4}
	pair := testPair()
	w := New(cam, []Entity{rec}, &pair)

	r := newRenderer()
	fb := raster.NewFrameBuffer(32, 24)
	r.BeginFrame(fb)
	w.Render(r, fb)

	require.Len(t, rec.passes, 3)
	assert.Equal(t, render.State{Active: true, From: pair.A, To: pair.B}, rec.passes[0].state)
	assert.Equal(t, cam.TransformByPortal(&pair.A, &pair.B), rec.passes[0].cam)
	assert.Equal(t, render.State{Active: true, From: pair.B, To: pair.A}, rec.passes[1].state)
	assert.Equal(t, cam.TransformByPortal(&pair.B, &pair.A), rec.passes[1].cam)
	assert.Equal(t, render.State{}, rec.passes[2].state)
	assert.Equal(t, cam, rec.passes[2].cam)
	assert.Empty(t, rec.ticks, "rendering never ticks")

	s := r.Stats()
	assert.Equal(t, 2, s.StencilMarks)
	assert.Equal(t, 2, s.DepthCommits)
}

func TestRenderWithoutPairDrawsOnce(t *testing.T) {
	rec := &recorder{}
	w := New(camera.New(), []Entity{rec}, nil)
	r := newRenderer()
	fb := raster.NewFrameBuffer(16, 12)

	w.Render(r, fb)
	require.Len(t, rec.passes, 1)
	assert.False(t, rec.passes[0].state.Active)
	assert.Zero(t, r.Stats().StencilMarks)

	// A pair left over in the renderer from an earlier frame is closed.
	pair := testPair()
	r.Enter(fb, &pair.A, &pair.B)
	rec.passes = nil
	w.Render(r, fb)
	require.Len(t, rec.passes, 1)
	assert.False(t, rec.passes[0].state.Active)
}

func TestTickAdvancesEachEntityOnce(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	w := New(camera.New(), []Entity{a, b}, nil)
	w.Tick(0.25)
	w.Tick(0.5)
	assert.Equal(t, []float64{0.25, 0.5}, a.ticks)
	assert.Equal(t, []float64{0.25, 0.5}, b.ticks)
}

func TestPlayerControls(t *testing.T) {
	w := New(camera.New(), nil, nil)
	w.RotatePlayer(math.Pi/2, 0.2)
	w.MovePlayer(mathutil.Vec3{0, 0, -1})

	c := w.Camera()
	assert.InDelta(t, math.Pi/2, c.AngX, 1e-12)
	assert.True(t, c.Pos.ApproxEqual(mathutil.Vec3{1, 0, 0}, 1e-12), "forward after a quarter turn is +X, got %v", c.Pos)

	w.RotatePlayer(0, 2)
	w.ClampPitch(0)
	assert.InDelta(t, 2.2, w.Camera().AngY, 1e-12, "zero limit leaves pitch alone")
	w.ClampPitch(1.5)
	assert.Equal(t, 1.5, w.Camera().AngY)
	w.RotatePlayer(0, -4)
	w.ClampPitch(1.5)
	assert.Equal(t, -1.5, w.Camera().AngY)
}

func TestPairManagement(t *testing.T) {
	w := New(camera.New(), nil, nil)
	_, ok := w.Pair()
	assert.False(t, ok)
	assert.False(t, w.RotatePortal(SideB, 1, 0))

	w.SetPair(testPair())
	assert.True(t, w.RotatePortal(SideB, 0.5, 0.1))
	p, ok := w.Pair()
	require.True(t, ok)
	assert.InDelta(t, math.Pi/2+0.5, p.B.AngX, 1e-12)
	assert.InDelta(t, 0.1, p.B.AngY, 1e-12)
	assert.Equal(t, testPair().A, p.A)

	// Pair returns a copy.
	p.A.Pos = mathutil.Vec3{}
	again, _ := w.Pair()
	assert.Equal(t, testPair().A, again.A)

	w.ClearPair()
	_, ok = w.Pair()
	assert.False(t, ok)
}

func TestRotatingEntity(t *testing.T) {
	e := NewRotating(scene.TransformFromPos(mathutil.Vec3{}), mesh.CubeID, mathutil.Vec3{0, 1, 0}, math.Pi/2)
	for i := 0; i < 10; i++ {
		e.Tick(0.1)
	}
	got := e.Trans.Rot().Rotate(mathutil.Vec3{0, 0, 1})
	assert.True(t, got.ApproxEqual(mathutil.Vec3{1, 0, 0}, 1e-9), "got %v", got)
}

func TestRandomRotatingStaysUnit(t *testing.T) {
	e := NewRandomRotating(scene.TransformFromPos(mathutil.Vec3{}), mesh.CubeID)
	for i := 0; i < 100; i++ {
		e.Tick(1.0 / 60)
		q := e.Trans.Rot()
		assert.InDelta(t, 1, q.Dot(q), 1e-9)
	}
	before := e.Trans.Rot()
	e.Tick(0)
	assert.InDelta(t, 1, before.Dot(e.Trans.Rot()), 1e-12, "zero dt does not move")
}

func TestStaticEntityDraws(t *testing.T) {
	e := NewStatic(scene.TransformFromPos(mathutil.Vec3{0, 0, -3}), mesh.CubeID)
	e.Tick(10)
	assert.Equal(t, mathutil.Translation(mathutil.Vec3{0, 0, -3}), e.Trans.Mat())

	r := newRenderer()
	fb := raster.NewFrameBuffer(16, 12)
	r.BeginFrame(fb)
	e.Render(r, fb)
	assert.Equal(t, 1, r.Stats().DrawCalls)
}

func TestExampleWorldShowsPortalView(t *testing.T) {
	w := ExampleWorld()
	pair, ok := w.Pair()
	require.True(t, ok)
	assert.Equal(t, mathutil.Vec3{0, 1, -7}, pair.A.Pos)
	assert.Len(t, w.Entities(), 4)

	const width, height = 64, 48
	r := newRenderer()
	withPair := raster.NewFrameBuffer(width, height)
	r.BeginFrame(withPair)
	w.Render(r, withPair)
	assert.Zero(t, r.Stats().Skipped)

	plain := raster.NewFrameBuffer(width, height)
	w.ClearPair()
	r.BeginFrame(plain)
	w.Render(r, plain)

	// Only the screen area of the portals may differ.
	mask := apertures(w.Camera(), pair, width, height)
	inside, differ := 0, 0
	for i, in := range mask {
		got, want := withPair.Color[i*4:i*4+4], plain.Color[i*4:i*4+4]
		if in {
			inside++
			if !assert.ObjectsAreEqual(want, got) {
				differ++
			}
			continue
		}
		assert.Equal(t, want, got, "pixel %d outside the portals", i)
	}
	assert.Greater(t, inside, 0)
	assert.Greater(t, differ, 0, "the portals show something")
}

// apertures marks every pixel either portal's quad covers when seen
// from cam, occluded or not.
func apertures(cam camera.Camera, pair PortalPair, width, height int) []bool {
	r := newRenderer()
	r.SetCamera(cam)
	fb := raster.NewFrameBuffer(width, height)
	mask := make([]bool, width*height)
	for _, p := range []*scene.Portal{&pair.A, &pair.B} {
		r.BeginFrame(fb)
		r.Enter(fb, p, p)
		for i, v := range fb.Stencil {
			if v == 1 {
				mask[i] = true
			}
		}
	}
	return mask
}

func TestOverlappingPortalsKeepTheirViews(t *testing.T) {
	// A sits in front of the middle of B. Seen through either portal the
	// camera ends up at z=-9 looking away from both, so every pixel must
	// keep the clear colour.
	pair := PortalPair{
		A: scene.NewPortal(mathutil.Vec3{0, 0, -3}, 0, 0, mathutil.Vec2{1, 1}),
		B: scene.NewPortal(mathutil.Vec3{0, 0, -6}, 0, 0, mathutil.Vec2{4, 4}),
	}
	w := New(camera.New(), nil, &pair)

	const width, height = 64, 48
	r := newRenderer()
	fb := raster.NewFrameBuffer(width, height)
	r.BeginFrame(fb)
	w.Render(r, fb)

	bg := color.NRGBA{40, 44, 52, 255}
	assert.Equal(t, bg, fb.ColorAt(width/2, height/2), "centre of A")
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			require.Equal(t, bg, fb.ColorAt(x, y), "pixel %d,%d", x, y)
		}
	}
	assert.Zero(t, r.Stats().Skipped)
}

func TestNearerEntityOccludesAperture(t *testing.T) {
	pair := PortalPair{
		A: scene.NewPortal(mathutil.Vec3{0, 0, -5}, 0, 0, mathutil.Vec2{2, 2}),
		B: scene.NewPortal(mathutil.Vec3{10, 0, -5}, 0, 0, mathutil.Vec2{2, 2}),
	}
	near := NewStatic(scene.NewTransform(mathutil.Vec3{0, 0, -2},
		mathutil.QuatIdentity(), mathutil.Vec3{0.3, 0.3, 0.3}), mesh.CubeID)
	w := New(camera.New(), []Entity{near}, &pair)

	const width, height = 64, 48
	cx, cy := width/2, height/2
	mask := apertures(w.Camera(), pair, width, height)
	require.True(t, mask[cy*width+cx], "the cube stands in front of A")

	r := newRenderer()
	withPair := raster.NewFrameBuffer(width, height)
	r.BeginFrame(withPair)
	w.Render(r, withPair)

	plain := raster.NewFrameBuffer(width, height)
	w.ClearPair()
	r.BeginFrame(plain)
	w.Render(r, plain)

	assert.NotEqual(t, color.NRGBA{40, 44, 52, 255}, plain.ColorAt(cx, cy))
	assert.Equal(t, plain.ColorAt(cx, cy), withPair.ColorAt(cx, cy))
}

func TestFromScene(t *testing.T) {
	sc := config.Scene{
		Camera: config.Camera{Pos: [3]float64{1, 2, 3}, Yaw: 90, FovDeg: 75},
		Entities: []config.Entity{
			{Mesh: mesh.FloorID},
			{Kind: config.KindRotating, Mesh: mesh.CubeID, Speed: 180},
			{Kind: config.KindRandomRotating, Mesh: mesh.CubeID, Scale: [3]float64{2, 2, 2}},
		},
		Portals: &config.Pair{
			A: config.Portal{Pos: [3]float64{0, 1, -7}, Size: [2]float64{1, 2}},
			B: config.Portal{Pos: [3]float64{2, 1, -5}, Yaw: 90, Size: [2]float64{1, 2}},
		},
	}
	w, err := FromScene(sc, nil)
	require.NoError(t, err)

	c := w.Camera()
	assert.Equal(t, mathutil.Vec3{1, 2, 3}, c.Pos)
	assert.InDelta(t, math.Pi/2, c.AngX, 1e-12)
	assert.InDelta(t, mathutil.Deg2Rad(75), c.FovY, 1e-12)

	ents := w.Entities()
	require.Len(t, ents, 3)
	assert.IsType(t, &Static{}, ents[0])
	rot := ents[1].(*Rotating)
	assert.Equal(t, mathutil.Vec3{0, 1, 0}, rot.Axis)
	assert.InDelta(t, math.Pi, rot.Speed, 1e-12)
	assert.Equal(t, mathutil.Vec3{2, 2, 2}, ents[2].(*RandomRotating).Trans.Scale())
	assert.Equal(t, mathutil.Vec3{1, 1, 1}, ents[0].(*Static).Trans.Scale())

	p, ok := w.Pair()
	require.True(t, ok)
	assert.InDelta(t, math.Pi/2, p.B.AngX, 1e-12)

	_, err = FromScene(config.Scene{Entities: []config.Entity{{Kind: "bogus", Mesh: "x"}}}, nil)
	assert.Error(t, err)
}
