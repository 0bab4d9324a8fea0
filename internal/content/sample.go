// Package content supplies page imagery: generated sample pages or
// images loaded from a directory.
package content

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pagecurl/internal/curl"
)

// Pastel backgrounds cycled by page number.
var sampleTints = []color.RGBA{
	{R: 0xf2, G: 0xd5, B: 0xcc, A: 0xff},
	{R: 0xcc, G: 0xe5, B: 0xf2, A: 0xff},
	{R: 0xd6, G: 0xf2, B: 0xcc, A: 0xff},
	{R: 0xf2, G: 0xec, B: 0xcc, A: 0xff},
	{R: 0xe0, G: 0xcc, B: 0xf2, A: 0xff},
	{R: 0xcc, G: 0xf2, B: 0xe8, A: 0xff},
}

// Sample generates numbered placeholder pages, useful before any real
// content is configured.
type Sample struct {
	count int
}

// NewSample returns a provider with the given number of pages.
func NewSample(count int) *Sample {
	if count < 0 {
		count = 0
	}
	return &Sample{count: count}
}

// PageCount implements curl.Provider.
func (s *Sample) PageCount() int { return s.count }

// Populate implements curl.Provider. Out-of-range faces stay blank.
func (s *Sample) Populate(page *curl.Page, width, height, frontIndex, backIndex int) {
	if img := s.render(frontIndex, width, height); img != nil {
		page.SetImage(curl.SideFront, img)
	}
	if img := s.render(backIndex, width, height); img != nil {
		page.SetImage(curl.SideBack, img)
	}
}

func (s *Sample) render(index, width, height int) image.Image {
	if index < 0 || index >= s.count || width <= 0 || height <= 0 {
		return nil
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	tint := sampleTints[index%len(sampleTints)]
	draw.Draw(img, img.Bounds(), image.NewUniform(tint), image.Point{}, draw.Src)

	frame := color.RGBA{
		R: tint.R / 2,
		G: tint.G / 2,
		B: tint.B / 2,
		A: 0xff,
	}
	inset := width / 24
	if inset < 2 {
		inset = 2
	}
	drawFrame(img, inset, frame)

	drawLabelCentered(img, fmt.Sprintf("Page %d", index+1), frame)
	return img
}

func drawFrame(img *image.RGBA, inset int, c color.RGBA) {
	b := img.Bounds()
	thickness := 2
	bars := []image.Rectangle{
		image.Rect(inset, inset, b.Dx()-inset, inset+thickness),
		image.Rect(inset, b.Dy()-inset-thickness, b.Dx()-inset, b.Dy()-inset),
		image.Rect(inset, inset, inset+thickness, b.Dy()-inset),
		image.Rect(b.Dx()-inset-thickness, inset, b.Dx()-inset, b.Dy()-inset),
	}
	for _, bar := range bars {
		draw.Draw(img, bar, image.NewUniform(c), image.Point{}, draw.Src)
	}
}

// drawLabelCentered renders the label with the bitmap font at a small
// size, then scales it up with nearest-neighbor so it stays crisp.
func drawLabelCentered(img *image.RGBA, label string, c color.RGBA) {
	face := basicfont.Face7x13
	textW := font.MeasureString(face, label).Ceil()
	textH := face.Metrics().Height.Ceil()
	if textW <= 0 || textH <= 0 {
		return
	}

	small := image.NewRGBA(image.Rect(0, 0, textW, textH))
	d := font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(label)

	scale := img.Bounds().Dx() / (textW * 2)
	if scale < 1 {
		scale = 1
	}
	big := image.NewRGBA(image.Rect(0, 0, textW*scale, textH*scale))
	xdraw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), xdraw.Src, nil)

	x := (img.Bounds().Dx() - big.Bounds().Dx()) / 2
	y := (img.Bounds().Dy() - big.Bounds().Dy()) / 2
	draw.Draw(img, big.Bounds().Add(image.Pt(x, y)), big, image.Point{}, draw.Over)
}
