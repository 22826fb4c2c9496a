// Package control turns a window-agnostic input snapshot into world
// events and applies them.
package control

import (
	"fmt"

	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/world"
)

type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyShift
	KeyEscape
	KeyPortalLeft
	KeyPortalRight
	KeyTogglePortals
	numKeys
)

// State is one frame of input. Down holds keys currently held, Pressed
// keys that went down this frame.
type State struct {
	Down    [numKeys]bool
	Pressed [numKeys]bool

	MouseDX, MouseDY float64
	Clicked          bool
	CloseRequested   bool
	Focused          bool
	Dt               float64 // seconds since the previous frame
}

// Settings scale the raw input. A PitchLimit of 0 leaves pitch unclamped.
type Settings struct {
	MoveSpeed        float64 // units per second
	MouseSensitivity float64 // radians per pixel
	PortalTurnSpeed  float64 // radians per second
	PitchLimit       float64 // radians
}

func DefaultSettings() Settings {
	return Settings{
		MoveSpeed:        3,
		MouseSensitivity: 0.003,
		PortalTurnSpeed:  1,
	}
}

type EventKind int

const (
	Quit EventKind = iota
	Move
	Look
	RotatePortal
	Focus
	Unfocus
	TogglePortals
)

var kindNames = [...]string{"quit", "move", "look", "rotate_portal", "focus", "unfocus", "toggle_portals"}

func (k EventKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a tagged union; only the fields of Kind are set.
type Event struct {
	Kind  EventKind
	Move  mathutil.Vec3 // Move: player-frame displacement, +x right, +y up, +z back
	Yaw   float64       // Look, RotatePortal
	Pitch float64       // Look
	Side  world.Side    // RotatePortal
}

var moveKeys = [...]struct {
	key Key
	dir mathutil.Vec3
}{
	{KeyW, mathutil.Vec3{0, 0, -1}},
	{KeyS, mathutil.Vec3{0, 0, 1}},
	{KeyA, mathutil.Vec3{-1, 0, 0}},
	{KeyD, mathutil.Vec3{1, 0, 0}},
	{KeyQ, mathutil.Vec3{0, 1, 0}},
	{KeyE, mathutil.Vec3{0, -1, 0}},
}

// Collect maps a snapshot onto events. Movement and portal turning follow
// held keys; Escape and mouse look only act while focused.
func Collect(s State, set Settings) []Event {
	var out []Event
	if s.CloseRequested {
		out = append(out, Event{Kind: Quit})
	}
	if s.Clicked && !s.Focused {
		out = append(out, Event{Kind: Focus})
	}
	if s.Focused && s.Pressed[KeyEscape] {
		out = append(out, Event{Kind: Unfocus})
	}

	speed := set.MoveSpeed * s.Dt
	if s.Down[KeyShift] {
		speed *= 2
	}
	for _, m := range moveKeys {
		if s.Down[m.key] {
			out = append(out, Event{Kind: Move, Move: m.dir.Scale(speed)})
		}
	}

	if s.Focused && (s.MouseDX != 0 || s.MouseDY != 0) {
		out = append(out, Event{
			Kind:  Look,
			Yaw:   s.MouseDX * set.MouseSensitivity,
			Pitch: s.MouseDY * set.MouseSensitivity,
		})
	}

	turn := set.PortalTurnSpeed * s.Dt
	if s.Down[KeyPortalLeft] {
		out = append(out, Event{Kind: RotatePortal, Side: world.SideB, Yaw: -turn})
	}
	if s.Down[KeyPortalRight] {
		out = append(out, Event{Kind: RotatePortal, Side: world.SideB, Yaw: turn})
	}
	if s.Pressed[KeyTogglePortals] {
		out = append(out, Event{Kind: TogglePortals})
	}
	return out
}

// Controller applies events to a world and tracks focus. A pair toggled
// off is kept so toggling again restores it.
type Controller struct {
	Settings Settings
	Focused  bool

	stash *world.PortalPair
}

func NewController(set Settings) *Controller {
	return &Controller{Settings: set}
}

// Apply runs events in order and reports whether a Quit was seen.
func (c *Controller) Apply(w *world.World, events []Event) (quit bool) {
	for _, e := range events {
		switch e.Kind {
		case Quit:
			quit = true
		case Move:
			w.MovePlayer(e.Move)
		case Look:
			w.RotatePlayer(e.Yaw, e.Pitch)
			w.ClampPitch(c.Settings.PitchLimit)
		case RotatePortal:
			w.RotatePortal(e.Side, e.Yaw, e.Pitch)
		case Focus:
			c.Focused = true
		case Unfocus:
			c.Focused = false
		case TogglePortals:
			if p, ok := w.Pair(); ok {
				c.stash = &p
				w.ClearPair()
			} else if c.stash != nil {
				w.SetPair(*c.stash)
				c.stash = nil
			}
		}
	}
	return quit
}
