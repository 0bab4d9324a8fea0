package debug

import (
	"image/png"
	"os"
	"testing"
)

func TestSavePixels(t *testing.T) {
	dir := t.TempDir()
	s := NewScreenshots(dir, "test")

	w, h := 4, 2
	pixels := make([]byte, w*h*4)
	// GL rows run bottom-up, images top-down. A red pixel in GL row 0
	// (bottom-left) must stay at the image's bottom-left after the flip.
	pixels[0] = 255
	pixels[3] = 255

	path, err := s.SavePixels(pixels, w, h)
	if err != nil {
		t.Fatalf("SavePixels: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening screenshot: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding screenshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Errorf("expected %dx%d, got %dx%d", w, h, b.Dx(), b.Dy())
	}
	r, _, _, _ := img.At(0, h-1).RGBA()
	if r>>8 != 255 {
		t.Error("bottom-left GL pixel should stay at the bottom-left of the image")
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Error("top-left of the image should be untouched")
	}
}

func TestSavePixelsSizeMismatch(t *testing.T) {
	s := NewScreenshots(t.TempDir(), "test")
	if _, err := s.SavePixels(make([]byte, 10), 4, 2); err == nil {
		t.Error("expected an error for mismatched pixel data")
	}
}
