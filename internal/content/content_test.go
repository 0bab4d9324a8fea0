package content

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"

	"pagecurl/internal/curl"
)

func TestSamplePageCount(t *testing.T) {
	if got := NewSample(12).PageCount(); got != 12 {
		t.Errorf("expected 12 pages, got %d", got)
	}
	if got := NewSample(-3).PageCount(); got != 0 {
		t.Errorf("negative count should clamp to 0, got %d", got)
	}
}

func TestSamplePopulate(t *testing.T) {
	s := NewSample(3)
	page := curl.NewPage()

	s.Populate(page, 256, 320, 1, 2)

	front := page.Image(curl.SideFront)
	if front == nil {
		t.Fatal("expected front imagery")
	}
	if b := front.Bounds(); b.Dx() != 256 || b.Dy() != 320 {
		t.Errorf("expected 256x320 page, got %dx%d", b.Dx(), b.Dy())
	}
	if page.Image(curl.SideBack) == nil {
		t.Error("expected back imagery")
	}
}

func TestSamplePopulateOutOfRange(t *testing.T) {
	s := NewSample(3)
	page := curl.NewPage()

	s.Populate(page, 256, 320, -1, 3)

	if page.Image(curl.SideFront) != nil {
		t.Error("face before the first page should stay blank")
	}
	if page.Image(curl.SideBack) != nil {
		t.Error("face past the last page should stay blank")
	}
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
}

func TestDirProvider(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "02.png"), 10, 10)
	writeTestPNG(t, filepath.Join(dir, "01.png"), 10, 10)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if d.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", d.PageCount())
	}

	page := curl.NewPage()
	d.Populate(page, 64, 80, 0, 1)

	front := page.Image(curl.SideFront)
	if front == nil {
		t.Fatal("expected front imagery")
	}
	if b := front.Bounds(); b.Dx() != 64 || b.Dy() != 80 {
		t.Errorf("page should be scaled to 64x80, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDirProviderBlankFaces(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "only.png"), 10, 10)

	d, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}

	page := curl.NewPage()
	d.Populate(page, 64, 64, 0, 1)

	if page.Image(curl.SideFront) == nil {
		t.Error("expected front imagery")
	}
	if page.Image(curl.SideBack) != nil {
		t.Error("face past the last page should stay blank")
	}
}

// TGA has no magic bytes, so it is decoded by extension; that path must
// not interfere with sniffed formats in the same directory.
func TestDirProviderMixedFormats(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "01.png"), 10, 10)

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.SetRGBA(0, 0, color.RGBA{G: 255, A: 255})
	f, err := os.Create(filepath.Join(dir, "02.tga"))
	if err != nil {
		t.Fatal(err)
	}
	if err := tga.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	d, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if d.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", d.PageCount())
	}

	page := curl.NewPage()
	d.Populate(page, 32, 32, 0, 1)

	if page.Image(curl.SideFront) == nil {
		t.Error("expected the png page to decode")
	}
	if page.Image(curl.SideBack) == nil {
		t.Error("expected the tga page to decode")
	}
}

func TestDirProviderErrors(t *testing.T) {
	if _, err := NewDir("/nonexistent/pages"); err == nil {
		t.Error("expected an error for a missing directory")
	}

	empty := t.TempDir()
	if _, err := NewDir(empty); err == nil {
		t.Error("expected an error for a directory without images")
	}
}

func TestDirProviderSkipsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := NewDir(dir)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}

	page := curl.NewPage()
	d.Populate(page, 64, 64, 0, -1)

	if page.Image(curl.SideFront) != nil {
		t.Error("a broken file should produce a blank face, not imagery")
	}
}
