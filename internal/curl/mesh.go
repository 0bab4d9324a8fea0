package curl

import (
	"fmt"
	"math"
)

// Corner order for the rectangle template and the flat triangle strip:
// top-left, bottom-left, top-right, bottom-right.
const (
	cornerTL = iota
	cornerBL
	cornerTR
	cornerBR
)

// MeshOptions fix a PageMesh's geometry budget and shading parameters.
type MeshOptions struct {
	// MaxSplits caps the number of curl subdivisions. The mesh never
	// emits more than 6 + 2*MaxSplits vertices per strip pass.
	MaxSplits int
	// Shadows enables the drop and self shadow strips.
	Shadows bool
	// CrestDarkness is the color multiplier floor at the curl crest.
	CrestDarkness float64
	// ShadowInner and ShadowOuter are the RGBA gradient endpoints for
	// both shadow strips.
	ShadowInner [4]float32
	ShadowOuter [4]float32
}

// PageMesh clips and re-triangulates a page rectangle around a curl
// cylinder. Output is a front strip, a back strip sharing the crest
// edge, and optional shadow strips, all written into fixed-capacity
// float32 buffers suitable for streaming to the GPU.
type PageMesh struct {
	opts     MeshOptions
	maxVerts int

	corners     [4]vertex
	flipTexture bool
	texRect     [2]TextureRect
	blend       [2][4]float32

	positions []float32
	colors    []float32
	texCoords []float32

	shadowPositions []float32
	shadowColors    []float32

	vertexCount     int
	frontCount      int
	backCount       int
	dropShadowCount int
	selfShadowCount int

	// Scratch for Curl. rotated holds the corners sorted by local X,
	// scanLines the band boundaries, band the per-band emission queue.
	rotated   [4]vertex
	scanLines []float64
	band      [10]vertex
	drop      []shadowVertex
	self      []shadowVertex

	degenerateDrops uint64

	page *Page
}

// NewPageMesh builds a mesh with buffers sized for the given options.
func NewPageMesh(opts MeshOptions) (*PageMesh, error) {
	if opts.MaxSplits < 1 {
		return nil, fmt.Errorf("curl mesh needs at least 1 split, got %d", opts.MaxSplits)
	}
	if opts.CrestDarkness < 0 || opts.CrestDarkness > 1 {
		return nil, fmt.Errorf("crest darkness must be in [0, 1], got %g", opts.CrestDarkness)
	}

	m := &PageMesh{
		opts:     opts,
		maxVerts: 6 + 2*opts.MaxSplits,
	}
	m.positions = make([]float32, m.maxVerts*3)
	m.colors = make([]float32, m.maxVerts*4)
	m.texCoords = make([]float32, m.maxVerts*2)
	m.scanLines = make([]float64, 0, opts.MaxSplits+1)
	if opts.Shadows {
		// Every emitted vertex can seed at most one shadow pair.
		m.shadowPositions = make([]float32, m.maxVerts*2*3*2)
		m.shadowColors = make([]float32, m.maxVerts*2*4*2)
		m.drop = make([]shadowVertex, 0, m.maxVerts)
		m.self = make([]shadowVertex, 0, m.maxVerts)
	}

	m.texRect[SideFront] = FullTexture
	m.texRect[SideBack] = FullTexture
	m.blend[SideFront] = [4]float32{1, 1, 1, 1}
	m.blend[SideBack] = [4]float32{1, 1, 1, 1}
	m.SetRect(Rect{})
	m.SetFlipTexture(false)
	m.Reset()
	return m, nil
}

// SetRect assigns the page rectangle the mesh deforms. Penumbra seeds
// point outward from each corner so self shadows widen away from the
// page interior.
func (m *PageMesh) SetRect(r Rect) {
	m.corners[cornerTL].posX, m.corners[cornerTL].posY = r.Left, r.Top
	m.corners[cornerBL].posX, m.corners[cornerBL].posY = r.Left, r.Bottom
	m.corners[cornerTR].posX, m.corners[cornerTR].posY = r.Right, r.Top
	m.corners[cornerBR].posX, m.corners[cornerBR].posY = r.Right, r.Bottom

	m.corners[cornerTL].penumbraX, m.corners[cornerTL].penumbraY = -1, 1
	m.corners[cornerBL].penumbraX, m.corners[cornerBL].penumbraY = -1, -1
	m.corners[cornerTR].penumbraX, m.corners[cornerTR].penumbraY = 1, 1
	m.corners[cornerBR].penumbraX, m.corners[cornerBR].penumbraY = 1, -1

	for i := range m.corners {
		m.corners[i].posZ = 0
		m.corners[i].colorFactor = 1
	}
}

// SetFlipTexture mirrors the UV template horizontally. Left-hand pages
// show their texture mirrored so the spread reads like an open book.
func (m *PageMesh) SetFlipTexture(flip bool) {
	m.flipTexture = flip
	if flip {
		m.corners[cornerTL].texX, m.corners[cornerTL].texY = 1, 0
		m.corners[cornerBL].texX, m.corners[cornerBL].texY = 1, 1
		m.corners[cornerTR].texX, m.corners[cornerTR].texY = 0, 0
		m.corners[cornerBR].texX, m.corners[cornerBR].texY = 0, 1
	} else {
		m.corners[cornerTL].texX, m.corners[cornerTL].texY = 0, 0
		m.corners[cornerBL].texX, m.corners[cornerBL].texY = 0, 1
		m.corners[cornerTR].texX, m.corners[cornerTR].texY = 1, 0
		m.corners[cornerBR].texX, m.corners[cornerBR].texY = 1, 1
	}
}

// FlipTexture reports whether the UV template is mirrored.
func (m *PageMesh) FlipTexture() bool {
	return m.flipTexture
}

// SetTextureRect restricts one side's UVs to the valid sub-rectangle of
// its texture, e.g. when content sits in the corner of a padded
// power-of-two texture.
func (m *PageMesh) SetTextureRect(side Side, tr TextureRect) {
	m.texRect[side] = tr
}

// SetBlendColor assigns the tint multiplied into one side's vertex
// colors.
func (m *PageMesh) SetBlendColor(side Side, c [4]float32) {
	m.blend[side] = c
}

// Reset restores the flat, uncurled state: the four corners as a single
// front-facing strip, no back strip, no shadows.
func (m *PageMesh) Reset() {
	m.vertexCount = 0
	m.frontCount = 0
	m.backCount = 0
	m.dropShadowCount = 0
	m.selfShadowCount = 0

	for i := range m.corners {
		v := m.corners[i]
		m.appendVertex(&v, true)
	}
}

// Curl deforms the page around a cylinder whose crest passes through pos
// with axis perpendicular to dir. dir must be unit length; radius must
// not be negative. The caller resolves degenerate inputs (zero direction
// means no curl) before asking for geometry.
func (m *PageMesh) Curl(pos, dir Point, radius float64) {
	if radius < 0 {
		radius = 0
	}

	m.vertexCount = 0
	m.frontCount = 0
	m.backCount = 0
	m.drop = m.drop[:0]
	m.self = m.self[:0]

	cos, sin := dir.X, dir.Y

	// Rotate the rectangle into curl-local space, dir along +X, and
	// insertion-sort the corners by ascending X (ties by Y).
	count := 0
	for i := range m.corners {
		v := m.corners[i]
		v.translate(-pos.X, -pos.Y)
		v.rotate(cos, sin)
		j := 0
		for ; j < count; j++ {
			r := &m.rotated[j]
			if r.posX > v.posX || (r.posX == v.posX && r.posY > v.posY) {
				break
			}
		}
		copy(m.rotated[j+1:count+1], m.rotated[j:count])
		m.rotated[j] = v
		count++
	}

	// Boundary edges of the rotated rectangle. The diagonal is the one
	// opposite the corner nearest the first, so edges always trace the
	// outline regardless of rotation.
	edges := [4][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}}
	d2 := sqDist(&m.rotated[0], &m.rotated[2])
	d3 := sqDist(&m.rotated[0], &m.rotated[3])
	if d2 > d3 {
		edges = [4][2]int{{0, 1}, {0, 3}, {1, 2}, {2, 3}}
	}

	curlLength := math.Pi * radius

	// Band boundaries: the crest at X=0, evenly spaced lines across the
	// half-cylinder arc, and a final line past the nearest corner that
	// sweeps up the fully rotated region.
	m.scanLines = m.scanLines[:0]
	m.scanLines = append(m.scanLines, 0)
	for i := 1; i < m.opts.MaxSplits; i++ {
		m.scanLines = append(m.scanLines, -curlLength*float64(i)/float64(m.opts.MaxSplits-1))
	}
	m.scanLines = append(m.scanLines, m.rotated[0].posX-1)

	last := len(m.scanLines) - 1
	scanXmax := m.rotated[3].posX + 1

	for i, scanXmin := range m.scanLines {
		// A zero radius folds every interior line onto the crest;
		// collapsed bands would re-emit the same vertices.
		if i > 0 && scanXmin == scanXmax {
			continue
		}

		n := 0

		// Corners inside this band, each paired with at most one
		// boundary intersection at the corner's own X. Bands are
		// half-open at the top so a corner lying exactly on a scan
		// line belongs to one band only. More than one intersection
		// is a degenerate band: discard and count the event.
		for j := 0; j < 4; j++ {
			v := m.rotated[j]
			if v.posX < scanXmin || v.posX >= scanXmax {
				continue
			}
			var isect [4]vertex
			in := m.intersections(edges, v.posX, &isect)
			switch {
			case in == 1 && isect[0].posY > v.posY:
				m.band[n] = isect[0]
				m.band[n+1] = v
				n += 2
			case in <= 1:
				m.band[n] = v
				n++
				if in == 1 {
					m.band[n] = isect[0]
					n++
				}
			default:
				m.degenerateDrops++
			}
		}

		// Band boundary intersections, higher Y first. A line grazing
		// a corner yields an odd count; those corners are emitted by
		// the loop above, so the stray hits are simply skipped.
		var isect [4]vertex
		if in := m.intersections(edges, scanXmin, &isect); in == 2 {
			if isect[0].posY < isect[1].posY {
				isect[0], isect[1] = isect[1], isect[0]
			}
			m.band[n] = isect[0]
			m.band[n+1] = isect[1]
			n += 2
		}

		for k := 0; k < n; k++ {
			v := &m.band[k]
			front := true
			switch {
			case i == 0:
				// Right of the crest: untouched.
			case i == last || curlLength == 0:
				// Past the arc: fully rotated, flat again at
				// height 2r.
				v.posX = -(curlLength + v.posX)
				v.posZ = 2 * radius
				v.penumbraX = -v.penumbraX
				front = false
			default:
				// On the half-cylinder.
				theta := math.Pi * v.posX / curlLength
				st, ct := math.Sincos(theta)
				v.posX = radius * st
				v.posZ = radius * (1 - ct)
				v.penumbraX *= ct
				v.colorFactor = m.opts.CrestDarkness +
					(1-m.opts.CrestDarkness)*math.Sqrt(st+1)
				front = v.posZ < radius
			}

			v.rotateBack(cos, sin)
			v.translate(pos.X, pos.Y)
			m.appendVertex(v, front)

			if m.opts.Shadows && radius > 0 {
				switch {
				case v.posZ > 0 && v.posZ <= radius:
					m.drop = insertShadow(m.drop, shadowVertex{
						posX:      v.posX,
						posY:      v.posY,
						posZ:      v.posZ,
						penumbraX: -dir.X * v.posZ / 2,
						penumbraY: -dir.Y * v.posZ / 2,
						t:         v.posZ / radius,
					})
				case v.posZ > radius:
					m.self = insertShadow(m.self, shadowVertex{
						posX:      v.posX,
						posY:      v.posY,
						posZ:      v.posZ,
						penumbraX: v.penumbraX * (v.posZ - radius) / 3,
						penumbraY: v.penumbraY * (v.posZ - radius) / 3,
						t:         (v.posZ - radius) / (2 * radius),
					})
				}
			}
		}

		scanXmax = scanXmin
	}

	m.buildShadowStrips()
}

// intersections finds boundary edge crossings at the vertical line X=x,
// interpolating all vertex attributes. Edges touching the line at an
// endpoint do not count as crossings.
func (m *PageMesh) intersections(edges [4][2]int, x float64, out *[4]vertex) int {
	n := 0
	for _, e := range edges {
		a, b := &m.rotated[e[0]], &m.rotated[e[1]]
		if !((a.posX > x && b.posX < x) || (b.posX > x && a.posX < x)) {
			continue
		}
		t := (x - b.posX) / (a.posX - b.posX)
		v := *b
		v.posX = x
		v.posY += (a.posY - b.posY) * t
		v.texX += (a.texX - b.texX) * t
		v.texY += (a.texY - b.texY) * t
		v.penumbraX += (a.penumbraX - b.penumbraX) * t
		v.penumbraY += (a.penumbraY - b.penumbraY) * t
		if n < len(out) {
			out[n] = v
			n++
		}
	}
	return n
}

// appendVertex writes one vertex into the output buffers and advances
// the strip counts, so a vertex dropped at capacity never desyncs them.
// front is the geometric orientation; the sampled texture side
// additionally depends on the flip flag, so a flipped flat page shows
// its back texture.
func (m *PageMesh) appendVertex(v *vertex, front bool) {
	if m.vertexCount >= m.maxVerts {
		return
	}

	side := SideBack
	if front != m.flipTexture {
		side = SideFront
	}

	i := m.vertexCount
	m.positions[i*3+0] = float32(v.posX)
	m.positions[i*3+1] = float32(v.posY)
	m.positions[i*3+2] = float32(v.posZ)

	tr := m.texRect[side]
	m.texCoords[i*2+0] = float32(tr.U0 + v.texX*(tr.U1-tr.U0))
	m.texCoords[i*2+1] = float32(tr.V0 + v.texY*(tr.V1-tr.V0))

	b := m.blend[side]
	f := float32(v.colorFactor)
	m.colors[i*4+0] = b[0] * f
	m.colors[i*4+1] = b[1] * f
	m.colors[i*4+2] = b[2] * f
	m.colors[i*4+3] = b[3]

	m.vertexCount++
	if front {
		m.frontCount++
	} else {
		m.backCount++
	}
}

// insertShadow keeps the strip renderable by inserting each new seed at
// the middle of the list; seeds arrive ordered from the strip's ends
// inward.
func insertShadow(list []shadowVertex, sv shadowVertex) []shadowVertex {
	if len(list) == cap(list) {
		return list
	}
	idx := (len(list) + 1) / 2
	list = append(list, shadowVertex{})
	copy(list[idx+1:], list[idx:])
	list[idx] = sv
	return list
}

// buildShadowStrips expands the collected shadow seeds into triangle
// strip pairs: base vertex on the surface, offset vertex at the penumbra
// edge. Drop shadow pairs come first in the buffers, self shadow pairs
// after.
func (m *PageMesh) buildShadowStrips() {
	m.dropShadowCount = 0
	m.selfShadowCount = 0
	if !m.opts.Shadows {
		return
	}

	pos := 0
	col := 0
	emit := func(sv *shadowVertex) {
		inner := m.opts.ShadowInner
		outer := m.opts.ShadowOuter
		t := float32(clamp(sv.t, 0, 1))

		m.shadowPositions[pos+0] = float32(sv.posX)
		m.shadowPositions[pos+1] = float32(sv.posY)
		m.shadowPositions[pos+2] = float32(sv.posZ)
		m.shadowPositions[pos+3] = float32(sv.posX + sv.penumbraX)
		m.shadowPositions[pos+4] = float32(sv.posY + sv.penumbraY)
		m.shadowPositions[pos+5] = float32(sv.posZ)
		pos += 6

		for c := 0; c < 4; c++ {
			m.shadowColors[col+c] = outer[c] + (inner[c]-outer[c])*t
			m.shadowColors[col+4+c] = outer[c]
		}
		col += 8
	}

	for i := range m.drop {
		emit(&m.drop[i])
	}
	m.dropShadowCount = len(m.drop) * 2
	for i := range m.self {
		emit(&m.self[i])
	}
	m.selfShadowCount = len(m.self) * 2
}

func sqDist(a, b *vertex) float64 {
	dx := a.posX - b.posX
	dy := a.posY - b.posY
	return dx*dx + dy*dy
}

// Positions returns the interleaved XYZ positions of the emitted
// vertices. The front strip occupies [0, FrontCount); the back strip
// starts two vertices earlier, sharing the crest edge.
func (m *PageMesh) Positions() []float32 {
	return m.positions[:m.vertexCount*3]
}

// Colors returns the RGBA colors of the emitted vertices.
func (m *PageMesh) Colors() []float32 {
	return m.colors[:m.vertexCount*4]
}

// TexCoords returns the UV coordinates of the emitted vertices.
func (m *PageMesh) TexCoords() []float32 {
	return m.texCoords[:m.vertexCount*2]
}

// ShadowPositions returns the XYZ positions of the shadow strips, drop
// shadow first.
func (m *PageMesh) ShadowPositions() []float32 {
	return m.shadowPositions[:(m.dropShadowCount+m.selfShadowCount)*3]
}

// ShadowColors returns the RGBA colors of the shadow strips.
func (m *PageMesh) ShadowColors() []float32 {
	return m.shadowColors[:(m.dropShadowCount+m.selfShadowCount)*4]
}

// FrontCount returns the number of vertices in the front strip.
func (m *PageMesh) FrontCount() int { return m.frontCount }

// BackCount returns the number of vertices in the back strip.
func (m *PageMesh) BackCount() int { return m.backCount }

// DropShadowCount returns the number of drop shadow strip vertices.
func (m *PageMesh) DropShadowCount() int { return m.dropShadowCount }

// SelfShadowCount returns the number of self shadow strip vertices.
func (m *PageMesh) SelfShadowCount() int { return m.selfShadowCount }

// MaxVertexCount returns the fixed vertex capacity per strip pass.
func (m *PageMesh) MaxVertexCount() int { return m.maxVerts }

// DegenerateDrops returns how many band vertices were discarded because
// a corner lined up with more than one boundary intersection. Non-zero
// values indicate numerically hostile poses worth logging.
func (m *PageMesh) DegenerateDrops() uint64 { return m.degenerateDrops }

// Page returns the content slot attached to this mesh, if any.
func (m *PageMesh) Page() *Page { return m.page }

// SetPage attaches a content slot to this mesh.
func (m *PageMesh) SetPage(p *Page) { m.page = p }
