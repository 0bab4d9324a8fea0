package curl

// ViewMode selects between a single page and a two-page spread.
type ViewMode int

const (
	OnePage ViewMode = iota + 1
	TwoPages
)

// Slot identifies a page position in the layout.
type Slot int

const (
	SlotLeft Slot = iota
	SlotRight
)

// Margins are proportions of the view kept empty around the pages,
// each in [0, 0.5).
type Margins struct {
	Left, Top, Right, Bottom float64
}

// Layout maps between viewport pixels and the normalized view space the
// meshes live in. The view spans Y in [-1, 1] with X scaled by the
// viewport aspect ratio, so pages keep their proportions when the
// window resizes.
type Layout struct {
	mode       ViewMode
	margins    Margins
	pageAspect float64

	vpWidth, vpHeight int
	view              Rect
	slots             [2]Rect
}

// NewLayout builds a layout; call SetViewport before using the
// transforms.
func NewLayout(mode ViewMode, margins Margins) *Layout {
	return &Layout{mode: mode, margins: margins}
}

// SetViewMode switches between one- and two-page layouts.
func (l *Layout) SetViewMode(mode ViewMode) {
	l.mode = mode
	l.updateSlots()
}

// ViewMode returns the current layout mode.
func (l *Layout) ViewMode() ViewMode { return l.mode }

// SetPageAspect constrains each page slot to the given width/height
// ratio, shrinking it inside the margin box. Zero disables the
// constraint.
func (l *Layout) SetPageAspect(aspect float64) {
	l.pageAspect = aspect
	l.updateSlots()
}

// SetViewport tells the layout the drawable size in pixels.
func (l *Layout) SetViewport(width, height int) {
	l.vpWidth, l.vpHeight = width, height
	if width <= 0 || height <= 0 {
		l.view = Rect{}
	} else {
		aspect := float64(width) / float64(height)
		l.view = Rect{Left: -aspect, Top: 1, Right: aspect, Bottom: -1}
	}
	l.updateSlots()
}

// View returns the full view rectangle in normalized coordinates.
func (l *Layout) View() Rect { return l.view }

// PageRect returns the rectangle a slot's page occupies. In one-page
// mode both slots share the same rectangle.
func (l *Layout) PageRect(slot Slot) Rect {
	return l.slots[slot]
}

// ToNormalized converts a pixel position (origin top-left, Y down) into
// view coordinates (Y up).
func (l *Layout) ToNormalized(px, py float64) Point {
	if l.vpWidth <= 0 || l.vpHeight <= 0 {
		return Point{}
	}
	return Point{
		X: l.view.Left + l.view.Width()*px/float64(l.vpWidth),
		Y: l.view.Top - l.view.Height()*py/float64(l.vpHeight),
	}
}

// PagePixelSize returns one slot's size in viewport pixels, the size
// providers should render content at.
func (l *Layout) PagePixelSize() (int, int) {
	if l.vpWidth <= 0 || l.vpHeight <= 0 || l.view.Width() == 0 {
		return 0, 0
	}
	r := l.slots[SlotRight]
	w := int(r.Width() / l.view.Width() * float64(l.vpWidth))
	h := int(r.Height() / l.view.Height() * float64(l.vpHeight))
	return w, h
}

func (l *Layout) updateSlots() {
	box := Rect{
		Left:   l.view.Left + l.margins.Left*l.view.Width(),
		Top:    l.view.Top - l.margins.Top*l.view.Height(),
		Right:  l.view.Right - l.margins.Right*l.view.Width(),
		Bottom: l.view.Bottom + l.margins.Bottom*l.view.Height(),
	}

	if l.mode == TwoPages {
		if l.pageAspect > 0 {
			box = fitAspect(box, 2*l.pageAspect)
		}
		cx := (box.Left + box.Right) / 2
		l.slots[SlotLeft] = Rect{Left: box.Left, Top: box.Top, Right: cx, Bottom: box.Bottom}
		l.slots[SlotRight] = Rect{Left: cx, Top: box.Top, Right: box.Right, Bottom: box.Bottom}
	} else {
		if l.pageAspect > 0 {
			box = fitAspect(box, l.pageAspect)
		}
		l.slots[SlotLeft] = box
		l.slots[SlotRight] = box
	}
}

// fitAspect shrinks r to the given width/height ratio, centered.
func fitAspect(r Rect, aspect float64) Rect {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return r
	}
	if w/h > aspect {
		nw := h * aspect
		cx := (r.Left + r.Right) / 2
		r.Left, r.Right = cx-nw/2, cx+nw/2
	} else {
		nh := w / aspect
		cy := (r.Top + r.Bottom) / 2
		r.Top, r.Bottom = cy+nh/2, cy-nh/2
	}
	return r
}
