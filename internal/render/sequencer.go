package render

import (
	"fmt"

	"go.uber.org/zap"

	"portal-renderer/internal/mathutil"
	"portal-renderer/internal/mesh"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/scene"
)

var (
	// Writes the quad's depth over whatever the pass drew, but only on
	// pixels still marked as the entry aperture.
	depthCommit = raster.DrawParams{
		Depth:      raster.DepthAlways,
		DepthWrite: true,
		Stencil:    raster.StencilState{Func: raster.StencilEqual, Ref: 1},
	}
	// Marks visible aperture pixels with 1; no depth or colour writes.
	stencilMark = raster.DrawParams{
		Depth: raster.DepthLessOrEqual,
		Stencil: raster.StencilState{
			Func:   raster.StencilAlways,
			Ref:    1,
			PassOp: raster.StencilReplace,
		},
	}
	insideAperture = raster.StencilState{Func: raster.StencilEqual, Ref: 1}
)

// Enter switches to Active(from, to). A previously active entry portal
// gets its depth committed inside its own mark first, then from's aperture
// is marked in the stencil plane with the untransformed camera.
func (r *Renderer) Enter(fb *raster.FrameBuffer, from, to *scene.Portal) {
	if r.state.Active {
		old := r.state.From
		r.commitDepth(fb, &old)
	}

	r.cameraTrans = r.camera
	fb.ClearStencil(0)
	if err := r.drawQuad(fb, from, &stencilMark); err != nil {
		r.skip("stencil mark failed", zap.String("portal", portalName(from)), err)
	} else {
		r.stats.StencilMarks++
	}

	r.state = State{Active: true, From: *from, To: *to}
	r.recomputeTrans()
}

// Exit commits the active entry portal's depth and returns to Inactive
// with a cleared stencil plane.
func (r *Renderer) Exit(fb *raster.FrameBuffer) {
	if r.state.Active {
		from := r.state.From
		r.commitDepth(fb, &from)
		fb.ClearStencil(0)
	}
	r.state = State{}
	r.cameraTrans = r.camera
}

func (r *Renderer) commitDepth(fb *raster.FrameBuffer, p *scene.Portal) {
	if err := r.drawQuad(fb, p, &depthCommit); err != nil {
		r.skip("depth commit failed", zap.String("portal", portalName(p)), err)
		return
	}
	r.stats.DepthCommits++
}

// drawQuad draws p's quad with the untransformed camera and no colour.
func (r *Renderer) drawQuad(fb *raster.FrameBuffer, p *scene.Portal, params *raster.DrawParams) error {
	m := r.meshes.GetMeshOrDefault(mesh.PortalID)
	model := p.ModelMatrix()
	prog := &raster.UnlitProgram{
		MVP:   viewProj(r.camera, fb).Mul(model),
		Model: model,
		Color: r.portalColor,
	}
	return raster.DrawTriangles(fb, params, prog, m.Vertices(), m.Indices)
}

// scoped returns params with the aperture stencil test added while Active.
func (r *Renderer) scoped(params raster.DrawParams) raster.DrawParams {
	if r.state.Active {
		params.Stencil = insideAperture
	}
	return params
}

// Draw renders a mesh lit, through the current camera. While Active only
// pixels inside the entry aperture are touched.
func (r *Renderer) Draw(fb *raster.FrameBuffer, meshID string, model mathutil.Mat4) {
	m := r.meshes.GetMeshOrDefault(meshID)
	if m.Empty() {
		return
	}
	tex := r.textures.GetTextureOrDefault(m.Material.DiffuseMap)

	mvp := viewProj(r.cameraTrans, fb).Mul(model)
	prog := raster.NewPhongProgram(mvp, model, r.light, m.Material.Diffuse, m.Material.Ambient, tex)
	params := r.scoped(raster.DefaultDrawParams())
	if err := raster.DrawTriangles(fb, &params, prog, m.Vertices(), m.Indices); err != nil {
		r.skip("draw failed", zap.String("mesh", meshID), err)
		return
	}
	r.stats.DrawCalls++
	r.stats.Triangles += m.TriangleCount()
}

// DrawPortal renders a portal's visible surface as an opaque one-sided
// quad. The strict depth test leaves committed apertures, which sit at
// exactly the quad's depth, untouched.
func (r *Renderer) DrawPortal(fb *raster.FrameBuffer, p *scene.Portal) {
	m := r.meshes.GetMeshOrDefault(mesh.PortalID)
	if m.Empty() {
		return
	}
	model := p.ModelMatrix()
	prog := &raster.UnlitProgram{
		MVP:     viewProj(r.cameraTrans, fb).Mul(model),
		Model:   model,
		Color:   r.portalColor,
		Texture: r.textures.GetTextureOrDefault(r.portalTexture),
	}
	params := raster.DefaultDrawParams()
	params.Depth = raster.DepthLess
	params.CullBack = true
	params = r.scoped(params)
	if err := raster.DrawTriangles(fb, &params, prog, m.Vertices(), m.Indices); err != nil {
		r.skip("portal draw failed", zap.String("portal", portalName(p)), err)
		return
	}
	r.stats.DrawCalls++
	r.stats.PortalSurface++
	r.stats.Triangles += m.TriangleCount()
}

func (r *Renderer) skip(msg string, subject zap.Field, err error) {
	r.stats.Skipped++
	r.log.Warn(msg, subject, zap.Error(err))
}

func portalName(p *scene.Portal) string {
	return fmt.Sprintf("portal@(%.2f,%.2f,%.2f)", p.Pos[0], p.Pos[1], p.Pos[2])
}
