// Package texture prepares page imagery for GPU upload: format
// conversion, resampling and power-of-two padding.
package texture

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"pagecurl/internal/curl"
)

// ToRGBA converts any image to RGBA without resizing.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(rgba, image.Point{}, img, b, xdraw.Src, nil)
	return rgba
}

// Scale resamples an image to the given size with Catmull-Rom
// filtering.
func Scale(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return ToRGBA(img)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// ScaleToFit resamples an image to fit within maxWidth x maxHeight
// while keeping its aspect ratio.
func ScaleToFit(img image.Image, maxWidth, maxHeight int) *image.RGBA {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw <= 0 || sh <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return ToRGBA(img)
	}
	w, h := maxWidth, sh*maxWidth/sw
	if h > maxHeight {
		w, h = sw*maxHeight/sh, maxHeight
	}
	return Scale(img, w, h)
}

// NextPow2 returns the smallest power of two >= n (minimum 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PadToPow2 copies an image into the top-left corner of a
// power-of-two sized RGBA image, as older GPUs and strict core
// profiles prefer, and returns the UV sub-rectangle covering the
// content.
func PadToPow2(img image.Image) (*image.RGBA, curl.TextureRect) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pw, ph := NextPow2(w), NextPow2(h)

	if pw == w && ph == h {
		return ToRGBA(img), curl.FullTexture
	}

	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	rect := curl.TextureRect{
		U0: 0,
		V0: 0,
		U1: float64(w) / float64(pw),
		V1: float64(h) / float64(ph),
	}
	return dst, rect
}
