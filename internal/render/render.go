// Package render is the stencil sequencer: it owns the base camera, the
// active portal pair and the transformed camera, and issues every draw
// into a raster.FrameBuffer.
package render

import (
	"image"
	"image/color"

	"go.uber.org/zap"

	"portal-renderer/internal/camera"
	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/mesh"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/scene"
)

// MeshProvider never fails; unknown IDs yield an empty mesh.
type MeshProvider interface {
	GetMeshOrDefault(id string) *mesh.Mesh
}

// TextureProvider never fails; unknown IDs yield a default texture.
type TextureProvider interface {
	GetTextureOrDefault(id string) *image.NRGBA
}

// State is Inactive (Active == false) or Active(From, To).
type State struct {
	Active   bool
	From, To scene.Portal
}

// Stats counts the work of one frame. BeginFrame resets it.
type Stats struct {
	DrawCalls     int
	Skipped       int
	Triangles     int
	StencilMarks  int
	DepthCommits  int
	PortalSurface int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger draw failures are reported to. nil keeps the
// no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithLight sets the point light used by lit draws.
func WithLight(l raster.Light) Option {
	return func(r *Renderer) { r.light = l }
}

// WithClearColor sets the colour BeginFrame fills the target with.
func WithClearColor(c color.NRGBA) Option {
	return func(r *Renderer) { r.clearColor = c }
}

// WithPortalSurface sets the flat colour and texture ID of the visible
// portal quads.
func WithPortalSurface(c color.NRGBA, texture string) Option {
	return func(r *Renderer) {
		r.portalColor = c
		r.portalTexture = texture
	}
}

// Renderer is the stencil render sequencer: it owns the base and
// transformed cameras and the Inactive/Active portal state.
type Renderer struct {
	meshes   MeshProvider
	textures TextureProvider
	log      *zap.Logger

	light         raster.Light
	clearColor    color.NRGBA
	portalColor   color.NRGBA
	portalTexture string

	camera      camera.Camera
	cameraTrans camera.Camera
	state       State
	stats       Stats
}

// New returns an Inactive renderer with the default camera.
func New(meshes MeshProvider, textures TextureProvider, opts ...Option) *Renderer {
	r := &Renderer{
		meshes:      meshes,
		textures:    textures,
		log:         zap.NewNop(),
		light:       raster.DefaultLight(),
		clearColor:  color.NRGBA{40, 44, 52, 255},
		portalColor: color.NRGBA{90, 160, 255, 255},
		camera:      camera.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cameraTrans = r.camera
	return r
}

// SetCamera replaces the base camera and recomputes the transformed one
// from the current state.
func (r *Renderer) SetCamera(c camera.Camera) {
	r.camera = c
	r.recomputeTrans()
}

func (r *Renderer) recomputeTrans() {
	if r.state.Active {
		r.cameraTrans = r.camera.TransformByPortal(&r.state.From, &r.state.To)
	} else {
		r.cameraTrans = r.camera
	}
}

// Camera is the untransformed base camera.
func (r *Renderer) Camera() camera.Camera { return r.camera }

// CameraTrans is the camera draws currently use.
func (r *Renderer) CameraTrans() camera.Camera { return r.cameraTrans }

func (r *Renderer) State() State { return r.state }

func (r *Renderer) Stats() Stats { return r.stats }

// BeginFrame clears all three planes and resets the frame statistics.
// The portal state is kept.
func (r *Renderer) BeginFrame(fb *raster.FrameBuffer) {
	fb.Clear(r.clearColor)
	r.stats = Stats{}
}

func viewProj(c camera.Camera, fb *raster.FrameBuffer) mathutil.Mat4 {
	return c.ProjectionMatrix(fb.Width, fb.Height).Mul(c.ViewMatrix())
}
