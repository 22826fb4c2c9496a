package world

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"portal-renderer/internal/camera"
	"portal-renderer/internal/config"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/mesh"
	"portal-renderer/internal/scene"
)

// ExampleWorld is the demo layout: a floor, portal A straight ahead of the
// player and portal B off to the right facing +X, with cubes placed so
// each portal has something to show.
func ExampleWorld() *World {
	cam := camera.New()
	cam.Pos = mathutil.Vec3{0, 1, -4}

	pair := &PortalPair{
		A: scene.NewPortal(mathutil.Vec3{0, 1, -7}, 0, 0, mathutil.Vec2{1, 2}),
		B: scene.NewPortal(mathutil.Vec3{2, 1, -5}, math.Pi/2, 0, mathutil.Vec2{1, 2}),
	}

	entities := []Entity{
		NewStatic(scene.TransformFromPos(mathutil.Vec3{0, 0, 0}), mesh.FloorID),
		NewStatic(scene.TransformFromPos(mathutil.Vec3{0, 0.5, -11}), mesh.CubeID),
		NewRotating(scene.TransformFromPos(mathutil.Vec3{6, 1, -5}), mesh.CubeID,
			mathutil.Vec3{0, 1, 0}, math.Pi/2),
		NewRandomRotating(scene.NewTransform(mathutil.Vec3{-3, 1.5, -9},
			mathutil.QuatIdentity(), mathutil.Vec3{0.7, 0.7, 0.7}), mesh.CubeID),
	}
	return New(cam, entities, pair)
}

// FromScene builds a world from a scene description.
func FromScene(sc config.Scene, log *zap.Logger) (*World, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}

	cam := camera.New()
	cam.Pos = mathutil.Vec3(sc.Camera.Pos)
	cam.AngX = mathutil.Deg2Rad(sc.Camera.Yaw)
	cam.AngY = mathutil.Deg2Rad(sc.Camera.Pitch)
	if sc.Camera.FovDeg > 0 {
		cam.FovY = mathutil.Deg2Rad(sc.Camera.FovDeg)
	}

	entities := make([]Entity, 0, len(sc.Entities))
	for _, ec := range sc.Entities {
		entities = append(entities, entityFrom(ec))
	}

	var pair *PortalPair
	if sc.Portals != nil {
		pair = &PortalPair{A: portalFrom(sc.Portals.A), B: portalFrom(sc.Portals.B)}
	}

	log.Debug("scene built",
		zap.Int("entities", len(entities)),
		zap.Bool("portals", pair != nil))
	return New(cam, entities, pair), nil
}

func entityFrom(ec config.Entity) Entity {
	scale := mathutil.Vec3(ec.Scale)
	if scale == (mathutil.Vec3{}) {
		scale = mathutil.Vec3{1, 1, 1}
	}
	rot := mathutil.EulerToQuat(
		mathutil.Deg2Rad(ec.Rot[0]),
		mathutil.Deg2Rad(ec.Rot[1]),
		mathutil.Deg2Rad(ec.Rot[2]))
	trans := scene.NewTransform(mathutil.Vec3(ec.Pos), rot, scale)

	switch ec.Kind {
	case config.KindRotating:
		axis := mathutil.Vec3(ec.Axis)
		if axis == (mathutil.Vec3{}) {
			axis = mathutil.Vec3{0, 1, 0}
		}
		return NewRotating(trans, ec.Mesh, axis, mathutil.Deg2Rad(ec.Speed))
	case config.KindRandomRotating:
		return NewRandomRotating(trans, ec.Mesh)
	default:
		return NewStatic(trans, ec.Mesh)
	}
}

func portalFrom(pc config.Portal) scene.Portal {
	return scene.NewPortal(mathutil.Vec3(pc.Pos),
		mathutil.Deg2Rad(pc.Yaw), mathutil.Deg2Rad(pc.Pitch),
		mathutil.Vec2(pc.Size))
}
