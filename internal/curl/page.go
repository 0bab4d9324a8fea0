package curl

import "image"

// Side selects one face of a page sheet.
type Side int

const (
	SideFront Side = iota
	SideBack
)

// Page is a content slot. Providers fill it with imagery and blend
// colors for each face; the renderer turns the imagery into textures on
// demand.
type Page struct {
	images [2]image.Image
	blend  [2][4]float32
	dirty  bool
}

// NewPage returns an empty content slot with white blend colors.
func NewPage() *Page {
	p := &Page{}
	p.Reset()
	return p
}

// Reset clears both faces and marks the slot dirty so stale textures
// are not drawn.
func (p *Page) Reset() {
	p.images[SideFront] = nil
	p.images[SideBack] = nil
	p.blend[SideFront] = [4]float32{1, 1, 1, 1}
	p.blend[SideBack] = [4]float32{1, 1, 1, 1}
	p.dirty = true
}

// SetImage assigns one face's imagery.
func (p *Page) SetImage(side Side, img image.Image) {
	p.images[side] = img
	p.dirty = true
}

// Image returns one face's imagery, or nil for a blank face.
func (p *Page) Image(side Side) image.Image {
	return p.images[side]
}

// SetBlendColor assigns the tint for one face.
func (p *Page) SetBlendColor(side Side, c [4]float32) {
	p.blend[side] = c
}

// BlendColor returns the tint for one face.
func (p *Page) BlendColor(side Side) [4]float32 {
	return p.blend[side]
}

// Dirty reports whether the slot changed since the renderer last
// uploaded it.
func (p *Page) Dirty() bool { return p.dirty }

// ClearDirty marks the slot's textures as up to date.
func (p *Page) ClearDirty() { p.dirty = false }

// Provider supplies page content to the controller's three slots.
//
// Pages are numbered as sheets: frontIndex is the recto shown on the
// right of a spread, backIndex the verso revealed as the sheet turns.
// Indices outside [0, PageCount) identify blank faces; implementations
// must leave those faces empty rather than fail.
type Provider interface {
	// PageCount returns the number of pages.
	PageCount() int
	// Populate fills the slot's faces at the given pixel size.
	Populate(page *Page, width, height, frontIndex, backIndex int)
}
