package content

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"go.uber.org/zap"

	// Page image formats dispatched by sniffing. TGA is decoded by
	// extension instead: it has no magic bytes, and registering it
	// would shadow every other format.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"pagecurl/internal/curl"
	"pagecurl/internal/engine/texture"
	"pagecurl/internal/logger"
)

var pageImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".tga":  true,
}

// Dir serves page images from a directory, one page per file, ordered
// by filename.
type Dir struct {
	files []string
}

// NewDir scans a directory for page images.
func NewDir(path string) (*Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading page directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if pageImageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no page images in %s", path)
	}
	sort.Strings(files)

	logger.Info("page directory loaded",
		zap.String("path", path),
		zap.Int("pages", len(files)))
	return &Dir{files: files}, nil
}

// PageCount implements curl.Provider.
func (d *Dir) PageCount() int { return len(d.files) }

// Populate implements curl.Provider. Unreadable or out-of-range faces
// stay blank; a broken file must not take the viewer down.
func (d *Dir) Populate(page *curl.Page, width, height, frontIndex, backIndex int) {
	if img := d.load(frontIndex, width, height); img != nil {
		page.SetImage(curl.SideFront, img)
	}
	if img := d.load(backIndex, width, height); img != nil {
		page.SetImage(curl.SideBack, img)
	}
}

func (d *Dir) load(index, width, height int) image.Image {
	if index < 0 || index >= len(d.files) || width <= 0 || height <= 0 {
		return nil
	}

	f, err := os.Open(d.files[index])
	if err != nil {
		logger.Warn("failed to open page image",
			zap.String("file", d.files[index]), zap.Error(err))
		return nil
	}
	defer f.Close()

	var (
		img    image.Image
		format string
	)
	if strings.EqualFold(filepath.Ext(d.files[index]), ".tga") {
		img, err = tga.Decode(f)
		format = "tga"
	} else {
		img, format, err = image.Decode(f)
	}
	if err != nil {
		logger.Warn("failed to decode page image",
			zap.String("file", d.files[index]), zap.Error(err))
		return nil
	}
	logger.Debug("page image decoded",
		zap.String("file", filepath.Base(d.files[index])),
		zap.String("format", format))

	return texture.Scale(img, width, height)
}
