package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal-renderer/internal/camera"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/world"
)

func kinds(es []Event) []EventKind {
	out := make([]EventKind, len(es))
	for i, e := range es {
		out[i] = e.Kind
	}
	return out
}

func TestCollectMovement(t *testing.T) {
	set := Settings{MoveSpeed: 2}
	var s State
	s.Dt = 0.5
	s.Down[KeyW] = true
	s.Down[KeyD] = true

	es := Collect(s, set)
	require.Equal(t, []EventKind{Move, Move}, kinds(es))
	assert.Equal(t, mathutil.Vec3{0, 0, -1}, es[0].Move)
	assert.Equal(t, mathutil.Vec3{1, 0, 0}, es[1].Move)

	s.Down[KeyShift] = true
	es = Collect(s, set)
	assert.Equal(t, mathutil.Vec3{0, 0, -2}, es[0].Move)
}

func TestCollectFocusRules(t *testing.T) {
	set := DefaultSettings()

	unfocused := State{Clicked: true, MouseDX: 10}
	unfocused.Pressed[KeyEscape] = true
	assert.Equal(t, []EventKind{Focus}, kinds(Collect(unfocused, set)))

	focused := State{Focused: true, Clicked: true, MouseDX: 10, MouseDY: -5}
	focused.Pressed[KeyEscape] = true
	es := Collect(focused, set)
	require.Equal(t, []EventKind{Unfocus, Look}, kinds(es))
	assert.InDelta(t, 10*set.MouseSensitivity, es[1].Yaw, 1e-12)
	assert.InDelta(t, -5*set.MouseSensitivity, es[1].Pitch, 1e-12)

	assert.Equal(t, []EventKind{Quit}, kinds(Collect(State{CloseRequested: true}, set)))
}

func TestCollectPortalKeys(t *testing.T) {
	set := Settings{PortalTurnSpeed: 2}
	s := State{Dt: 0.25}
	s.Down[KeyPortalLeft] = true
	s.Pressed[KeyTogglePortals] = true
	s.Down[KeyTogglePortals] = true

	es := Collect(s, set)
	require.Equal(t, []EventKind{RotatePortal, TogglePortals}, kinds(es))
	assert.Equal(t, world.SideB, es[0].Side)
	assert.InDelta(t, -0.5, es[0].Yaw, 1e-12)
}

func TestApply(t *testing.T) {
	w := world.ExampleWorld()
	start := w.Camera()
	c := NewController(Settings{PitchLimit: 1})

	quit := c.Apply(w, []Event{
		{Kind: Focus},
		{Kind: Move, Move: mathutil.Vec3{0, 0, -1}},
		{Kind: Look, Yaw: 0.1, Pitch: 3},
		{Kind: RotatePortal, Side: world.SideB, Yaw: 0.2},
	})
	assert.False(t, quit)
	assert.True(t, c.Focused)

	cam := w.Camera()
	assert.True(t, cam.Pos.ApproxEqual(start.Pos.Add(mathutil.Vec3{0, 0, -1}), 1e-12))
	assert.InDelta(t, 0.1, cam.AngX, 1e-12)
	assert.Equal(t, 1.0, cam.AngY, "pitch clamped")
	pair, _ := w.Pair()
	assert.InDelta(t, math.Pi/2+0.2, pair.B.AngX, 1e-12)

	assert.True(t, c.Apply(w, []Event{{Kind: Unfocus}, {Kind: Quit}}))
	assert.False(t, c.Focused)
}

func TestApplyToggleRestoresPair(t *testing.T) {
	w := world.ExampleWorld()
	orig, _ := w.Pair()
	c := NewController(DefaultSettings())

	c.Apply(w, []Event{{Kind: TogglePortals}})
	_, ok := w.Pair()
	assert.False(t, ok)

	c.Apply(w, []Event{{Kind: TogglePortals}})
	got, ok := w.Pair()
	require.True(t, ok)
	assert.Equal(t, orig, got)

	// Nothing stashed and no pair: toggling is a no-op.
	empty := world.New(camera.New(), nil, nil)
	NewController(DefaultSettings()).Apply(empty, []Event{{Kind: TogglePortals}})
	_, ok = empty.Pair()
	assert.False(t, ok)
}

func TestUnclampedPitchByDefault(t *testing.T) {
	w := world.New(camera.New(), nil, nil)
	NewController(DefaultSettings()).Apply(w, []Event{{Kind: Look, Pitch: 4}})
	assert.Equal(t, 4.0, w.Camera().AngY)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "rotate_portal", RotatePortal.String())
	assert.Equal(t, "event(42)", EventKind(42).String())
}
