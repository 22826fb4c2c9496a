package config

import "fmt"

// Scene describes a world: the player camera, the entities, an optional
// portal pair and the shots the batch renderer takes. Angles are degrees.
type Scene struct {
	Camera   Camera   `json:"camera" yaml:"camera"`
	Entities []Entity `json:"entities" yaml:"entities"`
	Portals  *Pair    `json:"portals,omitempty" yaml:"portals,omitempty"`
	Shots    []Shot   `json:"shots,omitempty" yaml:"shots,omitempty"`
}

type Camera struct {
	Pos    [3]float64 `json:"pos" yaml:"pos"`
	Yaw    float64    `json:"yaw" yaml:"yaw"`
	Pitch  float64    `json:"pitch" yaml:"pitch"`
	FovDeg float64    `json:"fov_deg,omitempty" yaml:"fov_deg,omitempty"`
}

// Entity kinds.
const (
	KindStatic         = "static"
	KindRotating       = "rotating"
	KindRandomRotating = "random_rotating"
)

type Entity struct {
	Kind  string     `json:"kind" yaml:"kind"`
	Mesh  string     `json:"mesh" yaml:"mesh"`
	Pos   [3]float64 `json:"pos" yaml:"pos"`
	Rot   [3]float64 `json:"rot,omitempty" yaml:"rot,omitempty"` // euler XYZ
	Scale [3]float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	// Rotating only
	Axis  [3]float64 `json:"axis,omitempty" yaml:"axis,omitempty"`
	Speed float64    `json:"speed,omitempty" yaml:"speed,omitempty"` // degrees per second
}

type Portal struct {
	Pos   [3]float64 `json:"pos" yaml:"pos"`
	Yaw   float64    `json:"yaw" yaml:"yaw"`
	Pitch float64    `json:"pitch" yaml:"pitch"`
	Size  [2]float64 `json:"size" yaml:"size"`
}

type Pair struct {
	A Portal `json:"a" yaml:"a"`
	B Portal `json:"b" yaml:"b"`
}

// Shot is one camera pose rendered by the batch tool.
type Shot struct {
	Name  string     `json:"name" yaml:"name"`
	Pos   [3]float64 `json:"pos" yaml:"pos"`
	Yaw   float64    `json:"yaw" yaml:"yaw"`
	Pitch float64    `json:"pitch" yaml:"pitch"`
}

// LoadScene reads a .json, .yaml or .yml scene file and checks it.
func LoadScene(path string) (Scene, error) {
	var sc Scene
	if err := decodeFile(path, &sc); err != nil {
		return Scene{}, fmt.Errorf("scene: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scene{}, fmt.Errorf("scene: %s: %w", path, err)
	}
	return sc, nil
}

// Validate rejects unknown entity kinds, entities without a mesh and
// unnamed or duplicate shots.
func (sc *Scene) Validate() error {
	for i, e := range sc.Entities {
		switch e.Kind {
		case "", KindStatic, KindRotating, KindRandomRotating:
		default:
			return fmt.Errorf("entity %d: unknown kind %q", i, e.Kind)
		}
		if e.Mesh == "" {
			return fmt.Errorf("entity %d: no mesh", i)
		}
	}
	seen := make(map[string]bool, len(sc.Shots))
	for i, s := range sc.Shots {
		if s.Name == "" {
			return fmt.Errorf("shot %d: no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("shot %d: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
