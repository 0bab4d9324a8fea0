// Package renderer draws page-curl meshes with OpenGL.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"pagecurl/internal/curl"
	"pagecurl/internal/engine/shader"
	"pagecurl/internal/engine/texture"
	"pagecurl/internal/logger"
	pmath "pagecurl/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

const (
	colorVertexShader = `
		#version 410 core

		layout (location = 0) in vec3 aPos;
		layout (location = 1) in vec4 aColor;

		uniform mat4 uProjection;

		out vec4 vColor;

		void main() {
			gl_Position = uProjection * vec4(aPos, 1.0);
			vColor = aColor;
		}
	`

	colorFragmentShader = `
		#version 410 core

		in vec4 vColor;
		out vec4 FragColor;

		void main() {
			FragColor = vColor;
		}
	`

	texVertexShader = `
		#version 410 core

		layout (location = 0) in vec3 aPos;
		layout (location = 1) in vec4 aColor;
		layout (location = 2) in vec2 aTexCoord;

		uniform mat4 uProjection;

		out vec4 vColor;
		out vec2 vTexCoord;

		void main() {
			gl_Position = uProjection * vec4(aPos, 1.0);
			vColor = aColor;
			vTexCoord = aTexCoord;
		}
	`

	texFragmentShader = `
		#version 410 core

		in vec4 vColor;
		in vec2 vTexCoord;

		uniform sampler2D uTexture;

		out vec4 FragColor;

		void main() {
			FragColor = texture(uTexture, vTexCoord) * vColor;
		}
	`
)

// meshBundle holds the GPU resources backing one page mesh. Resources
// follow the mesh, not its current display role, so role swaps never
// re-upload anything.
type meshBundle struct {
	vao  uint32
	vbos [3]uint32 // positions, colors, texcoords

	shadowVAO  uint32
	shadowVBOs [2]uint32 // positions, colors

	textures [2]uint32
	hasImage [2]bool
}

// Renderer streams curl mesh geometry into per-mesh vertex buffers and
// draws each page in four passes: drop shadow, front strip, back strip,
// self shadow.
type Renderer struct {
	config Config

	colorProgram uint32
	colorProjLoc int32

	texProgram uint32
	texProjLoc int32
	texSampler int32

	whiteTex uint32

	projection pmath.Mat4

	bundles map[*curl.PageMesh]*meshBundle
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:  cfg,
		bundles: make(map[*curl.PageMesh]*meshBundle),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// Painter's order handles page stacking; depth testing would
	// fight the translucent shadow strips.
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.15, 0.15, 0.17, 1.0)

	var err error
	r.colorProgram, err = shader.CompileProgram(colorVertexShader, colorFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("color program: %w", err)
	}
	r.colorProjLoc = shader.MustGetUniform(r.colorProgram, "uProjection")

	r.texProgram, err = shader.CompileProgram(texVertexShader, texFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("texture program: %w", err)
	}
	r.texProjLoc = shader.MustGetUniform(r.texProgram, "uProjection")
	r.texSampler = shader.MustGetUniform(r.texProgram, "uTexture")

	r.whiteTex = newTexture()
	white := []uint8{255, 255, 255, 255}
	gl.BindTexture(gl.TEXTURE_2D, r.whiteTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE,
		unsafe.Pointer(&white[0]))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.projection = pmath.Identity()
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for _, b := range r.bundles {
		gl.DeleteVertexArrays(1, &b.vao)
		gl.DeleteBuffers(int32(len(b.vbos)), &b.vbos[0])
		gl.DeleteVertexArrays(1, &b.shadowVAO)
		gl.DeleteBuffers(int32(len(b.shadowVBOs)), &b.shadowVBOs[0])
		gl.DeleteTextures(int32(len(b.textures)), &b.textures[0])
	}
	if r.whiteTex != 0 {
		gl.DeleteTextures(1, &r.whiteTex)
	}
	if r.colorProgram != 0 {
		gl.DeleteProgram(r.colorProgram)
	}
	if r.texProgram != 0 {
		gl.DeleteProgram(r.texProgram)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetProjection sets the projection matrix applied to all meshes.
func (r *Renderer) SetProjection(m pmath.Mat4) {
	r.projection = m
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// ReadPixels grabs the current framebuffer as raw RGBA bytes, rows
// bottom-up as OpenGL delivers them.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// DrawMesh uploads a mesh's current geometry and draws it.
func (r *Renderer) DrawMesh(m *curl.PageMesh) {
	b := r.bundle(m)
	r.syncPage(m, b)
	r.uploadGeometry(m, b)

	front := m.FrontCount()
	back := m.BackCount()
	drop := m.DropShadowCount()
	self := m.SelfShadowCount()

	// Drop shadow sits under the page.
	if drop >= 3 {
		r.drawShadow(b, 0, drop)
	}

	gl.UseProgram(r.texProgram)
	gl.UniformMatrix4fv(r.texProjLoc, 1, false, r.projection.Ptr())
	gl.Uniform1i(r.texSampler, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindVertexArray(b.vao)

	frontSide, backSide := curl.SideFront, curl.SideBack
	if m.FlipTexture() {
		frontSide, backSide = backSide, frontSide
	}

	if front >= 3 {
		gl.BindTexture(gl.TEXTURE_2D, r.pageTexture(b, frontSide))
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, int32(front))
	}
	if back > 0 {
		// The back strip shares the crest edge with the front strip.
		start := front - 2
		if start < 0 {
			start = 0
		}
		count := front + back - start
		if count >= 3 {
			gl.BindTexture(gl.TEXTURE_2D, r.pageTexture(b, backSide))
			gl.DrawArrays(gl.TRIANGLE_STRIP, int32(start), int32(count))
		}
	}

	// Self shadow falls onto the page itself.
	if self >= 3 {
		r.drawShadow(b, drop, self)
	}
}

func (r *Renderer) drawShadow(b *meshBundle, first, count int) {
	gl.UseProgram(r.colorProgram)
	gl.UniformMatrix4fv(r.colorProjLoc, 1, false, r.projection.Ptr())
	gl.BindVertexArray(b.shadowVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, int32(first), int32(count))
}

func (r *Renderer) pageTexture(b *meshBundle, side curl.Side) uint32 {
	if b.hasImage[side] {
		return b.textures[side]
	}
	return r.whiteTex
}

// bundle returns the GPU resources for a mesh, creating them on first
// use.
func (r *Renderer) bundle(m *curl.PageMesh) *meshBundle {
	if b, ok := r.bundles[m]; ok {
		return b
	}

	b := &meshBundle{}
	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(int32(len(b.vbos)), &b.vbos[0])

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbos[0])
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbos[1])
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(1)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbos[2])
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(2)

	gl.GenVertexArrays(1, &b.shadowVAO)
	gl.GenBuffers(int32(len(b.shadowVBOs)), &b.shadowVBOs[0])

	gl.BindVertexArray(b.shadowVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.shadowVBOs[0])
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.shadowVBOs[1])
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.GenTextures(int32(len(b.textures)), &b.textures[0])
	for _, id := range b.textures {
		gl.BindTexture(gl.TEXTURE_2D, id)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.bundles[m] = b
	logger.Debug("mesh bundle created", zap.Uint32("vao", b.vao))
	return b
}

// syncPage re-uploads a mesh's page textures when its content slot
// changed since the last frame.
func (r *Renderer) syncPage(m *curl.PageMesh, b *meshBundle) {
	page := m.Page()
	if page == nil || !page.Dirty() {
		return
	}

	for _, side := range []curl.Side{curl.SideFront, curl.SideBack} {
		img := page.Image(side)
		if img == nil {
			b.hasImage[side] = false
			m.SetTextureRect(side, curl.FullTexture)
			continue
		}
		padded, rect := texture.PadToPow2(img)
		uploadRGBA(b.textures[side], padded)
		b.hasImage[side] = true
		m.SetTextureRect(side, rect)
	}
	page.ClearDirty()
}

// uploadGeometry streams the mesh's current vertex data. Buffers are
// small and change every frame of a curl, so plain BufferData with
// streaming usage beats mapping.
func (r *Renderer) uploadGeometry(m *curl.PageMesh, b *meshBundle) {
	upload := func(vbo uint32, data []float32) {
		gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
		if len(data) == 0 {
			return
		}
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STREAM_DRAW)
	}

	upload(b.vbos[0], m.Positions())
	upload(b.vbos[1], m.Colors())
	upload(b.vbos[2], m.TexCoords())
	upload(b.shadowVBOs[0], m.ShadowPositions())
	upload(b.shadowVBOs[1], m.ShadowColors())
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func uploadRGBA(id uint32, img *image.RGBA) {
	b := img.Bounds()
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func newTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	return id
}
