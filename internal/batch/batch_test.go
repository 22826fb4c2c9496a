package batch

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal-renderer/internal/config"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/mesh"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/texture"
	"portal-renderer/internal/world"
)

func exampleFactory() (*world.World, error) { return world.ExampleWorld(), nil }

func testConfig(t *testing.T, workers int) Config {
	return Config{
		OutputDir:   t.TempDir(),
		Width:       32,
		Height:      24,
		Supersample: 2,
		Workers:     workers,
		FrameMs:     80,
		Light:       raster.DefaultLight(),
	}
}

func run(t *testing.T, cfg Config, shots []Shot) []Result {
	t.Helper()
	results, err := Run(context.Background(), cfg, exampleFactory, shots,
		mesh.NewBank("", nil), texture.NewCache(texture.BuildIndex(""), nil), nil)
	require.NoError(t, err)
	require.Len(t, results, len(shots))
	return results
}

func TestOrbit(t *testing.T) {
	shots := Orbit(mathutil.Vec3{0, 1, -4}, 0.5, 0.1, 4)
	require.Len(t, shots, 4)
	assert.Equal(t, "frame_000", shots[0].Name)
	assert.Equal(t, "frame_003", shots[3].Name)
	assert.InDelta(t, 0.5+math.Pi, shots[2].Yaw, 1e-12)
	assert.Equal(t, 3, shots[3].Step)
	assert.Equal(t, 0.1, shots[1].Pitch)
}

func TestFromScene(t *testing.T) {
	shots := FromScene([]config.Shot{
		{Name: "front", Pos: [3]float64{1, 2, 3}, Yaw: 90, Pitch: -45},
		{Name: "back"},
	})
	require.Len(t, shots, 2)
	assert.Equal(t, mathutil.Vec3{1, 2, 3}, shots[0].Pos)
	assert.InDelta(t, math.Pi/2, shots[0].Yaw, 1e-12)
	assert.InDelta(t, -math.Pi/4, shots[0].Pitch, 1e-12)
	assert.Equal(t, 1, shots[1].Step)
}

func TestRunWritesFrames(t *testing.T) {
	cfg := testConfig(t, 2)
	cfg.Animate = true
	results := run(t, cfg, Orbit(mathutil.Vec3{0, 1, -4}, 0, 0, 4))

	for _, r := range results {
		require.NoError(t, r.Err, r.Shot.Name)
		assert.FileExists(t, filepath.Join(cfg.OutputDir, r.Image))
		assert.NotZero(t, r.Digest)
		assert.Positive(t, r.Stats.DrawCalls)
		assert.Nil(t, r.frame)
	}
	assert.NotEqual(t, results[0].Digest, results[2].Digest)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "animation.webp"))
}

func TestRunIsIndependentOfWorkerCount(t *testing.T) {
	shots := Orbit(mathutil.Vec3{0, 1, -4}, 0, 0, 5)
	one := run(t, testConfig(t, 1), shots)
	many := run(t, testConfig(t, 3), shots)
	for i := range shots {
		assert.Equal(t, one[i].Digest, many[i].Digest, shots[i].Name)
	}
}

func TestRunRecordsFrameErrors(t *testing.T) {
	cfg := testConfig(t, 2)
	boom := errors.New("no world")
	results, err := Run(context.Background(), cfg,
		func() (*world.World, error) { return nil, boom },
		Orbit(mathutil.Vec3{}, 0, 0, 3),
		mesh.NewBank("", nil), texture.NewCache(texture.BuildIndex(""), nil), nil)
	require.NoError(t, err)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, boom)
	}

	m := NewManifest(uuid.New(), cfg, results)
	assert.Equal(t, "no world", m.Frames[0].Error)
	assert.Empty(t, m.Frames[0].Image)
	assert.Empty(t, m.Frames[0].Digest)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, testConfig(t, 2), exampleFactory, Orbit(mathutil.Vec3{}, 0, 0, 4),
		mesh.NewBank("", nil), texture.NewCache(texture.BuildIndex(""), nil), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManifest(t *testing.T) {
	cfg := testConfig(t, 1)
	results := run(t, cfg, Orbit(mathutil.Vec3{0, 1, -4}, 0, 0, 2))
	id := uuid.New()
	m := NewManifest(id, cfg, results)

	path := filepath.Join(cfg.OutputDir, "manifest.json")
	require.NoError(t, WriteManifest(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Manifest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, id.String(), got.RunID)
	assert.Equal(t, 32, got.Width)
	require.Len(t, got.Frames, 2)
	assert.Equal(t, "frame_001.webp", got.Frames[1].Image)
	assert.Len(t, got.Frames[1].Digest, 16)
	assert.Equal(t, [3]float64{0, 1, -4}, got.Frames[0].Pos)
}
