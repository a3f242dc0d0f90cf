// Package renderer is an OpenGL implementation of graphics.Renderer. Every
// draw call is a quad or a line pushed through one of two small programs;
// their fragment stages go through the shader translator so the same source
// serves desktop GL and GLES.
//
// A Renderer is not safe for concurrent use. All calls must come from the
// thread its Target's context is current on.
package renderer

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/google/uuid"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/shader"
)

var (
	glInitOnce sync.Once
	glInitErr  error
)

// Target is the window side of a renderer: the thing that owns the GL
// context and swaps its buffers.
type Target interface {
	MakeCurrent()
	// EndFrame swaps buffers and pumps the window system's events.
	EndFrame()
	GetFramebufferSize() (int, int)
	IsGLES() bool
	// SetError records a failure with the owning backend.
	SetError(msg string)
}

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

var lineVertices = []float32{-1.0, -1.0, 1.0, 1.0}

type Renderer struct {
	target    Target
	quadVAO   uint32
	quadVBO   uint32
	lineVAO   uint32
	lineVBO   uint32
	solid     *program
	textured  *program
	color     geom.Color
	textures  map[*Texture]struct{}
	destroyed bool
	log       *slog.Logger
}

var _ graphics.Renderer = (*Renderer)(nil)

// New makes target's context current, loads the GL entry points once per
// process and builds the renderer's programs.
func New(target Target) (*Renderer, error) {
	target.MakeCurrent()

	glInitOnce.Do(func() {
		glInitErr = gl.Init()
	})
	if glInitErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", glInitErr)
	}

	r := &Renderer{
		target:   target,
		color:    geom.Black,
		textures: make(map[*Texture]struct{}),
		log:      graphics.Logger().With("component", "gl-renderer", "id", uuid.NewString()),
	}
	r.quadVAO, r.quadVBO = newVertexArray(quadVertices)
	r.lineVAO, r.lineVBO = newVertexArray(lineVertices)

	var err error
	isGLES := target.IsGLES()
	r.solid, err = buildProgram(isGLES, shader.GetSolidFragmentShader(), shader.UniformColor)
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("failed to create solid program: %w", err)
	}
	r.textured, err = buildProgram(isGLES, shader.GetTextureFragmentShader(),
		shader.UniformTexture, shader.UniformDst, shader.UniformSrc, shader.UniformMod)
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("failed to create texture program: %w", err)
	}

	r.log.Info("renderer created", "version", gl.GoStr(gl.GetString(gl.VERSION)), "gles", isGLES)
	return r, nil
}

func newVertexArray(vertices []float32) (vao, vbo uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return vao, vbo
}

// begin sets the viewport to the current framebuffer and returns its size.
func (r *Renderer) begin(what string) (int, int, error) {
	if r.destroyed {
		return 0, 0, fmt.Errorf("%s: %w", what, graphics.ErrFreed)
	}
	w, h := r.target.GetFramebufferSize()
	if w <= 0 || h <= 0 {
		return 0, 0, r.fail("%s: framebuffer is %dx%d", what, w, h)
	}
	gl.Viewport(0, 0, int32(w), int32(h))
	return w, h, nil
}

func (r *Renderer) fail(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	r.target.SetError(err.Error())
	return err
}

// check turns a pending GL error into a Go error.
func (r *Renderer) check(what string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return r.fail("%s: GL error 0x%04x", what, code)
	}
	return nil
}

func (r *Renderer) SetDrawColor(c geom.Color) error {
	if r.destroyed {
		return fmt.Errorf("set draw color: %w", graphics.ErrFreed)
	}
	r.color = c
	return nil
}

func (r *Renderer) Clear() error {
	if _, _, err := r.begin("clear"); err != nil {
		return err
	}
	v := colorVec(r.color)
	gl.ClearColor(v[0], v[1], v[2], v[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
	return r.check("clear")
}

func (r *Renderer) DrawLine(from, to geom.Point) error {
	if from == to {
		return r.FillRect(geom.R(from.X, from.Y, 1, 1))
	}
	w, h, err := r.begin("draw line")
	if err != nil {
		return err
	}
	r.useSolid(ndcLine(from, to, w, h))
	gl.BindVertexArray(r.lineVAO)
	gl.DrawArrays(gl.LINES, 0, 2)
	gl.BindVertexArray(0)
	return r.check("draw line")
}

func (r *Renderer) FillRect(rect geom.Rect) error {
	w, h, err := r.begin("fill rect")
	if err != nil {
		return err
	}
	if rect.Empty() {
		return nil
	}
	r.useSolid(ndcRect(rect, w, h))
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	return r.check("fill rect")
}

func (r *Renderer) useSolid(ndc [4]float32) {
	gl.Disable(gl.BLEND)
	gl.UseProgram(r.solid.id)
	gl.Uniform4f(r.solid.loc(shader.UniformNDC), ndc[0], ndc[1], ndc[2], ndc[3])
	c := colorVec(r.color)
	gl.Uniform4f(r.solid.loc(shader.UniformColor), c[0], c[1], c[2], c[3])
}

func (r *Renderer) Copy(tex graphics.TextureHandle, src, dst *geom.Rect) error {
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.owner != r {
		return r.fail("copy: texture %T does not belong to this renderer", tex)
	}
	w, h, err := r.begin("copy")
	if err != nil {
		return err
	}
	if t.id == 0 {
		return fmt.Errorf("copy: %w", graphics.ErrFreed)
	}
	sr := geom.R(0, 0, t.width, t.height)
	if src != nil {
		sr = *src
	}
	dr := geom.R(0, 0, w, h)
	if dst != nil {
		dr = *dst
	}
	if sr.Empty() || dr.Empty() {
		return nil
	}

	setBlend(t.blend)
	p := r.textured
	gl.UseProgram(p.id)
	ndc := ndcRect(dr, w, h)
	gl.Uniform4f(p.loc(shader.UniformNDC), ndc[0], ndc[1], ndc[2], ndc[3])
	fr := fragRect(dr, h)
	gl.Uniform4f(p.loc(shader.UniformDst), fr[0], fr[1], fr[2], fr[3])
	tr := texRect(sr, t.width, t.height)
	gl.Uniform4f(p.loc(shader.UniformSrc), tr[0], tr[1], tr[2], tr[3])
	m := modColor(t.colorMod, t.alpha)
	gl.Uniform4f(p.loc(shader.UniformMod), m[0], m[1], m[2], m[3])

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.Uniform1i(p.loc(shader.UniformTexture), 0)

	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return r.check("copy")
}

func setBlend(mode graphics.BlendMode) {
	switch mode {
	case graphics.BlendNone:
		gl.Disable(gl.BLEND)
		return
	case graphics.BlendAdd:
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE, gl.ZERO, gl.ONE)
	case graphics.BlendMod:
		gl.BlendFuncSeparate(gl.ZERO, gl.SRC_COLOR, gl.ZERO, gl.ONE)
	default:
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	}
	gl.Enable(gl.BLEND)
}

// Present swaps buffers. The window system's events are pumped here, on the
// render thread, so the backend's queue fills even while the update loop
// polls from another goroutine.
func (r *Renderer) Present() {
	if r.destroyed {
		return
	}
	r.target.EndFrame()
}

func (r *Renderer) CreateTexture(src graphics.PixelHandle) (graphics.TextureHandle, error) {
	if r.destroyed {
		return nil, fmt.Errorf("create texture: %w", graphics.ErrFreed)
	}
	if src == nil {
		return nil, r.fail("create texture: nil source")
	}
	if src.MustLock() {
		if err := src.Lock(); err != nil {
			return nil, fmt.Errorf("create texture: %w", err)
		}
		defer src.Unlock()
	}
	width, height, pitch := src.Width(), src.Height(), src.Pitch()
	if width <= 0 || height <= 0 {
		return nil, r.fail("create texture: invalid source size %dx%d", width, height)
	}

	t := newTexture(r, width, height)
	alpha, _ := src.AlphaMod()
	blend, _ := src.BlendMode()
	mod, _ := src.ColorMod()
	t.alpha, t.blend, t.colorMod = alpha, blend, mod

	if err := t.upload(geom.R(0, 0, width, height), src.Pixels(), pitch); err != nil {
		t.release()
		return nil, err
	}
	r.textures[t] = struct{}{}
	return t, nil
}

// ReadPixels reads the back buffer. Call it before Present.
func (r *Renderer) ReadPixels() (*image.NRGBA, error) {
	w, h, err := r.begin("read pixels")
	if err != nil {
		return nil, err
	}
	buf := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadBuffer(gl.BACK)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(buf))
	if err := r.check("read pixels"); err != nil {
		return nil, err
	}
	return flipRows(buf, w, h), nil
}

// Destroy releases the programs, the vertex arrays and every texture still
// owned by the renderer.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.target.MakeCurrent()
	for t := range r.textures {
		t.release()
	}
	r.textures = nil
	r.solid.delete()
	r.textured.delete()
	gl.DeleteVertexArrays(1, &r.quadVAO)
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.lineVAO)
	gl.DeleteBuffers(1, &r.lineVBO)
	r.log.Debug("renderer destroyed")
}
