package curl

import (
	"math"
	"time"

	"go.uber.org/zap"

	"pagecurl/internal/logger"
)

// CurlState identifies the controller's interaction state.
type CurlState int

const (
	// StateNone means no page is being curled.
	StateNone CurlState = iota
	// StateCurlingLeft means the left page (or the current page, in
	// one-page mode) is turning backward.
	StateCurlingLeft
	// StateCurlingRight means the right page is turning forward.
	StateCurlingRight
)

func (s CurlState) String() string {
	switch s {
	case StateCurlingLeft:
		return "curling-left"
	case StateCurlingRight:
		return "curling-right"
	default:
		return "none"
	}
}

// Role identifies the display purpose a mesh currently serves. Roles
// rotate between the three meshes as pages turn; mesh identity is
// stable so renderer-side resources follow the mesh, not the role.
type Role int

const (
	RoleLeft Role = iota
	RoleRight
	RoleCurling
	roleCount
)

// Events carries the controller's outward notifications. Nil callbacks
// are skipped.
type Events struct {
	// IndexChanged fires once per settled page change, not per frame.
	IndexChanged func(index int)
	// PageClicked fires on a tap that does not start a curl.
	PageClicked func(index int)
}

// Options configure a Controller.
type Options struct {
	Mesh MeshOptions
	// AllowLastPageCurl lets the final page curl away to an empty
	// spread.
	AllowLastPageCurl bool
	// RenderLeftPage draws the left page in two-page mode.
	RenderLeftPage bool
	// PressureSensitivity scales curl radius by pointer pressure;
	// when off, PressureDefault is used for every interaction.
	PressureSensitivity bool
	PressureDefault     float64
	// SnapDuration is the settle animation after a release;
	// JumpDuration the programmatic page-jump animation.
	SnapDuration time.Duration
	JumpDuration time.Duration
}

// Controller owns the page-turn interaction: three meshes rotating
// through the left/right/curling roles, the pointer-to-curl mapping,
// settle animations and content population.
type Controller struct {
	layout *Layout
	opts   Options
	events Events

	provider Provider

	meshes  [roleCount]*PageMesh
	visible [roleCount]bool

	state       CurlState
	index       int
	targetIndex int

	dragStart Point
	pointer   Point
	pressure  float64

	curlPos, curlDir Point

	anim animation
	now  func() time.Time

	pageWidth, pageHeight int
	populated             bool

	drawList []*PageMesh
}

// NewController builds a controller over the given layout.
func NewController(layout *Layout, opts Options, events Events) (*Controller, error) {
	c := &Controller{
		layout:      layout,
		opts:        opts,
		events:      events,
		targetIndex: -1,
		now:         time.Now,
	}
	for i := range c.meshes {
		m, err := NewPageMesh(opts.Mesh)
		if err != nil {
			return nil, err
		}
		m.SetPage(NewPage())
		c.meshes[i] = m
	}
	return c, nil
}

// SetProvider attaches a content source and rewinds to the first page.
func (c *Controller) SetProvider(p Provider) {
	c.provider = p
	c.index = 0
	c.targetIndex = -1
	c.state = StateNone
	c.anim.active = false
	c.populated = false
	c.applyLayout()
	logger.Debug("content attached", zap.Int("pages", p.PageCount()))
}

// CurrentIndex returns the settled page index.
func (c *Controller) CurrentIndex() int { return c.index }

// State returns the current interaction state.
func (c *Controller) State() CurlState { return c.state }

// Animating reports whether a settle animation is in flight.
func (c *Controller) Animating() bool { return c.anim.active }

// CurlPose returns the last applied curl position and direction, for
// debugging overlays.
func (c *Controller) CurlPose() (Point, Point) { return c.curlPos, c.curlDir }

// Mesh returns the mesh currently serving a role.
func (c *Controller) Mesh(role Role) *PageMesh { return c.meshes[role] }

// UpdateLayout re-reads the layout after a viewport or mode change,
// reassigns mesh rectangles and re-renders content at the new pixel
// size. An in-flight curl is settled immediately first.
func (c *Controller) UpdateLayout() {
	if c.anim.active {
		c.finishAnimation()
	} else if c.state != StateNone {
		c.state = StateNone
	}
	c.applyLayout()
}

func (c *Controller) applyLayout() {
	w, h := c.layout.PagePixelSize()
	resized := w != c.pageWidth || h != c.pageHeight
	c.pageWidth, c.pageHeight = w, h

	left := c.layout.PageRect(SlotLeft)
	right := c.layout.PageRect(SlotRight)

	c.meshes[RoleLeft].SetRect(left)
	c.meshes[RoleLeft].SetFlipTexture(true)
	c.meshes[RoleLeft].Reset()

	c.meshes[RoleRight].SetRect(right)
	c.meshes[RoleRight].SetFlipTexture(false)
	c.meshes[RoleRight].Reset()

	c.meshes[RoleCurling].SetRect(right)
	c.meshes[RoleCurling].SetFlipTexture(false)
	c.meshes[RoleCurling].Reset()

	if c.provider != nil && (resized || !c.populated) {
		c.refreshSlots()
	}
}

// refreshSlots re-renders the left and right slots for the settled
// index. With the sheet at index occupying the right slot, the sheet
// before the previous one shows through the left slot's back face.
func (c *Controller) refreshSlots() {
	if c.provider == nil || c.pageWidth <= 0 || c.pageHeight <= 0 {
		return
	}
	c.populateSlot(RoleRight, c.index, c.index+1)
	if c.index > 0 {
		c.populateSlot(RoleLeft, c.index-2, c.index-1)
	} else {
		c.meshes[RoleLeft].Page().Reset()
		c.visible[RoleLeft] = false
	}
	c.populated = true
}

// populateSlot asks the provider for a slot's faces. Slots whose face
// indices all fall outside the page range stay blank and hidden.
func (c *Controller) populateSlot(role Role, frontIndex, backIndex int) {
	if c.provider == nil || c.pageWidth <= 0 || c.pageHeight <= 0 {
		return
	}
	count := c.provider.PageCount()
	page := c.meshes[role].Page()
	page.Reset()

	visible := (frontIndex >= 0 && frontIndex < count) ||
		(backIndex >= 0 && backIndex < count)
	if visible {
		c.provider.Populate(page, c.pageWidth, c.pageHeight, frontIndex, backIndex)
		c.meshes[role].SetBlendColor(SideFront, page.BlendColor(SideFront))
		c.meshes[role].SetBlendColor(SideBack, page.BlendColor(SideBack))
	}
	c.visible[role] = visible
}

// DrawList returns the meshes to draw this frame, back to front: left
// page, right page, then the curling page on top.
func (c *Controller) DrawList() []*PageMesh {
	c.drawList = c.drawList[:0]
	if c.layout.ViewMode() == TwoPages && c.opts.RenderLeftPage && c.visible[RoleLeft] {
		c.drawList = append(c.drawList, c.meshes[RoleLeft])
	}
	if c.visible[RoleRight] {
		c.drawList = append(c.drawList, c.meshes[RoleRight])
	}
	if c.state != StateNone {
		c.drawList = append(c.drawList, c.meshes[RoleCurling])
	}
	return c.drawList
}

// DragStart begins a curl if the pointer lands on a turnable page. A
// drag during a settle animation supersedes it: the animation completes
// instantly and the new curl starts from the settled state.
func (c *Controller) DragStart(p Point, pressure float64) {
	if c.provider == nil || c.pageWidth <= 0 {
		return
	}
	if c.anim.active {
		c.finishAnimation()
	}
	if c.state != StateNone {
		return
	}

	rightRect := c.layout.PageRect(SlotRight)
	leftRect := c.layout.PageRect(SlotLeft)
	count := c.provider.PageCount()

	c.dragStart = p
	if c.dragStart.Y > rightRect.Top {
		c.dragStart.Y = rightRect.Top
	}
	if c.dragStart.Y < rightRect.Bottom {
		c.dragStart.Y = rightRect.Bottom
	}

	curlRight := func() bool {
		if c.index >= count {
			return false
		}
		if !c.opts.AllowLastPageCurl && c.index >= count-1 {
			return false
		}
		c.dragStart.X = rightRect.Right
		c.startCurlRight()
		return true
	}
	curlLeft := func() bool {
		if c.index <= 0 {
			return false
		}
		if c.layout.ViewMode() == TwoPages {
			c.dragStart.X = leftRect.Left
		} else {
			c.dragStart.X = rightRect.Left
		}
		c.startCurlLeft()
		return true
	}

	started := false
	if c.layout.ViewMode() == TwoPages {
		if p.X < rightRect.Left {
			started = curlLeft()
		} else {
			started = curlRight()
		}
	} else {
		mid := (rightRect.Left + rightRect.Right) / 2
		if p.X < mid {
			started = curlLeft()
		} else {
			started = curlRight()
		}
	}
	if !started {
		return
	}

	c.pointer = p
	c.pressure = c.effectivePressure(pressure)
	c.updateCurl()
	logger.Debug("curl started",
		zap.Stringer("state", c.state),
		zap.Int("index", c.index))
}

// DragMove advances an active curl to follow the pointer.
func (c *Controller) DragMove(p Point, pressure float64) {
	if c.state == StateNone || c.anim.active {
		return
	}
	c.pointer = p
	c.pressure = c.effectivePressure(pressure)
	c.updateCurl()
}

// DragEnd releases the curl and starts a snap animation toward the
// nearer edge: past the spine (or page midline in one-page mode) the
// page falls open to the right, otherwise it turns over to the left.
func (c *Controller) DragEnd(p Point) {
	if c.state == StateNone || c.anim.active {
		return
	}

	rightRect := c.layout.PageRect(SlotRight)
	leftRect := c.layout.PageRect(SlotLeft)

	settleRight := false
	if c.layout.ViewMode() == TwoPages {
		settleRight = p.X > rightRect.Left
	} else {
		settleRight = p.X > (rightRect.Left+rightRect.Right)/2
	}

	target := c.dragStart
	if settleRight {
		target.X = rightRect.Right
		c.anim.settle = settleToRight
	} else {
		if c.layout.ViewMode() == TwoPages {
			target.X = leftRect.Left
		} else {
			target.X = rightRect.Left
		}
		c.anim.settle = settleToLeft
	}

	c.anim.source = p
	c.anim.target = target
	c.anim.start = c.now()
	c.anim.duration = c.opts.SnapDuration
	c.anim.ease = smoothstep
	c.anim.active = true
}

// Tap reports a click that did not become a drag.
func (c *Controller) Tap(p Point) {
	if c.state != StateNone || c.anim.active {
		return
	}
	if c.events.PageClicked != nil {
		c.events.PageClicked(c.index)
	}
}

// SetCurrentIndex jumps straight to a page without animation. Setting
// the current index again is a no-op and does not touch the provider.
func (c *Controller) SetCurrentIndex(index int) {
	if c.provider == nil {
		return
	}
	if c.anim.active {
		c.finishAnimation()
	}
	idx := c.clampIndex(index)
	if idx == c.index && c.populated {
		return
	}
	old := c.index
	c.index = idx
	c.state = StateNone
	c.refreshSlots()
	if c.index != old && c.events.IndexChanged != nil {
		c.events.IndexChanged(c.index)
	}
}

// AnimateToIndex turns a page toward the given index with the jump
// animation. The destination content is pre-loaded so it shows under
// the moving page, and the settled index lands on the target even when
// it is more than one page away.
func (c *Controller) AnimateToIndex(index int) {
	if c.provider == nil || c.pageWidth <= 0 {
		return
	}
	if c.anim.active {
		c.finishAnimation()
	}
	if c.state != StateNone {
		return
	}

	idx := c.clampIndex(index)
	if idx == c.index {
		return
	}

	rightRect := c.layout.PageRect(SlotRight)
	leftRect := c.layout.PageRect(SlotLeft)
	midY := (rightRect.Top + rightRect.Bottom) / 2
	leadingX := leftRect.Left
	if c.layout.ViewMode() != TwoPages {
		leadingX = rightRect.Left
	}

	if idx > c.index {
		if c.index >= c.provider.PageCount() {
			return
		}
		c.dragStart = Point{X: rightRect.Right, Y: midY}
		c.startCurlRight()
		c.populateSlot(RoleRight, idx, idx+1)
		c.anim.source = Point{X: rightRect.Right, Y: midY}
		c.anim.target = Point{X: leadingX, Y: midY}
		c.anim.settle = settleToLeft
	} else {
		c.dragStart = Point{X: leadingX, Y: midY}
		c.startCurlLeft()
		c.populateSlot(RoleLeft, idx-2, idx-1)
		if c.layout.ViewMode() != TwoPages {
			// The incoming sheet is the destination, not the
			// neighbor.
			c.populateSlot(RoleCurling, idx, idx+1)
		}
		c.anim.source = Point{X: leadingX, Y: midY}
		c.anim.target = Point{X: rightRect.Right, Y: midY}
		c.anim.settle = settleToRight
	}

	c.targetIndex = idx
	c.pressure = clamp(c.opts.PressureDefault, 0, 1)
	c.pointer = c.anim.source
	c.updateCurl()

	c.anim.start = c.now()
	c.anim.duration = c.opts.JumpDuration
	c.anim.ease = easeInSine
	c.anim.active = true
}

// Animate advances the settle animation. It returns true while the
// scene still needs redrawing.
func (c *Controller) Animate(now time.Time) bool {
	if !c.anim.active {
		return false
	}
	pos, done := c.anim.position(now)
	c.pointer = pos
	c.updateCurl()
	if done {
		c.finishAnimation()
	}
	return true
}

// finishAnimation applies the settle: the curled mesh flattens into the
// role it landed on, the index advances if the turn completed, and both
// page slots are re-rendered for the new spread.
func (c *Controller) finishAnimation() {
	settle := c.anim.settle
	c.anim.active = false
	old := c.index

	switch settle {
	case settleToRight:
		c.swapRoles(RoleCurling, RoleRight)
		m := c.meshes[RoleRight]
		m.SetRect(c.layout.PageRect(SlotRight))
		m.SetFlipTexture(false)
		m.Reset()
		if c.state == StateCurlingLeft {
			c.index = c.settledIndex(c.index - 1)
		}
	case settleToLeft:
		c.swapRoles(RoleCurling, RoleLeft)
		m := c.meshes[RoleLeft]
		m.SetRect(c.layout.PageRect(SlotLeft))
		m.SetFlipTexture(true)
		m.Reset()
		if c.state == StateCurlingRight {
			c.index = c.settledIndex(c.index + 1)
		}
	}

	c.state = StateNone
	c.targetIndex = -1
	c.refreshSlots()

	if c.index != old {
		logger.Debug("page settled", zap.Int("index", c.index))
		if c.events.IndexChanged != nil {
			c.events.IndexChanged(c.index)
		}
	}
}

func (c *Controller) settledIndex(fallback int) int {
	idx := fallback
	if c.targetIndex >= 0 {
		idx = c.targetIndex
	}
	return c.clampIndex(idx)
}

func (c *Controller) clampIndex(index int) int {
	if index < 0 {
		return 0
	}
	max := c.provider.PageCount()
	if !c.opts.AllowLastPageCurl {
		max--
	}
	if max < 0 {
		max = 0
	}
	if index > max {
		return max
	}
	return index
}

// startCurlRight lifts the right page: its mesh becomes the curling
// mesh, the next sheet slides in underneath, and the left slot is
// refreshed in case roles rotated since it was rendered.
func (c *Controller) startCurlRight() {
	c.swapRoles(RoleRight, RoleCurling)

	leftRect := c.layout.PageRect(SlotLeft)
	rightRect := c.layout.PageRect(SlotRight)

	if c.index > 0 {
		c.populateSlot(RoleLeft, c.index-2, c.index-1)
	} else {
		c.meshes[RoleLeft].Page().Reset()
		c.visible[RoleLeft] = false
	}
	c.meshes[RoleLeft].SetRect(leftRect)
	c.meshes[RoleLeft].SetFlipTexture(true)
	c.meshes[RoleLeft].Reset()

	c.populateSlot(RoleRight, c.index+1, c.index+2)
	c.meshes[RoleRight].SetRect(rightRect)
	c.meshes[RoleRight].SetFlipTexture(false)
	c.meshes[RoleRight].Reset()

	curl := c.meshes[RoleCurling]
	curl.SetRect(rightRect)
	curl.SetFlipTexture(false)
	curl.Reset()

	c.state = StateCurlingRight
}

// startCurlLeft lifts the left page back toward the right. In one-page
// mode there is no left mesh on screen, so the curling mesh is loaded
// with the previous sheet and dragged in from the leading edge.
func (c *Controller) startCurlLeft() {
	c.swapRoles(RoleLeft, RoleCurling)

	leftRect := c.layout.PageRect(SlotLeft)
	rightRect := c.layout.PageRect(SlotRight)

	c.populateSlot(RoleRight, c.index, c.index+1)
	c.meshes[RoleRight].SetRect(rightRect)
	c.meshes[RoleRight].SetFlipTexture(false)
	c.meshes[RoleRight].Reset()

	c.populateSlot(RoleLeft, c.index-2, c.index-1)
	c.meshes[RoleLeft].SetRect(leftRect)
	c.meshes[RoleLeft].SetFlipTexture(true)
	c.meshes[RoleLeft].Reset()

	curl := c.meshes[RoleCurling]
	if c.layout.ViewMode() == TwoPages {
		// Content carried over from the left role.
		curl.SetRect(leftRect)
		curl.SetFlipTexture(true)
	} else {
		c.populateSlot(RoleCurling, c.index-1, c.index)
		curl.SetRect(rightRect)
		curl.SetFlipTexture(false)
	}
	curl.Reset()

	c.state = StateCurlingLeft
}

// swapRoles exchanges which meshes serve two roles, content and
// visibility included.
func (c *Controller) swapRoles(a, b Role) {
	c.meshes[a], c.meshes[b] = c.meshes[b], c.meshes[a]
	c.visible[a], c.visible[b] = c.visible[b], c.visible[a]
}

func (c *Controller) effectivePressure(p float64) float64 {
	if !c.opts.PressureSensitivity {
		return clamp(c.opts.PressureDefault, 0, 1)
	}
	return clamp(p, 0, 1)
}

// updateCurl maps the pointer to a curl pose. The radius shrinks as
// pressure grows; the position leads the pointer early in the drag and
// trails it once the page is more than an arc length away, so the fold
// feels anchored to the finger.
func (c *Controller) updateCurl() {
	rightRect := c.layout.PageRect(SlotRight)
	pageWidth := rightRect.Width()

	radius := pageWidth / 3 * math.Max(1-c.pressure, 0)
	pos := c.pointer
	var dir Point

	twoPages := c.layout.ViewMode() == TwoPages

	switch {
	case c.state == StateCurlingRight || (c.state == StateCurlingLeft && twoPages):
		dir = pos.Sub(c.dragStart)
		dist := dir.Length()

		// Shrink the cylinder when the drag is long enough that a
		// full arc would push the fold past the far edge.
		arc := radius * math.Pi
		if dist > 2*pageWidth-arc {
			arc = math.Max(2*pageWidth-dist, 0)
			radius = arc / math.Pi
		}

		if dist >= arc {
			t := (dist - arc) / 2
			if twoPages {
				pos.X -= dir.X * t / dist
			} else {
				radius = clamp(pos.X-rightRect.Left, 0, radius)
			}
			pos.Y -= dir.Y * t / dist
		} else if dist > 0 {
			t := radius * math.Sin(math.Pi*math.Sqrt(dist/arc))
			pos.X += dir.X * t / dist
			pos.Y += dir.Y * t / dist
		}
	case c.state == StateCurlingLeft:
		// One-page backward turn: the incoming page slides in from
		// the leading edge, radius pinched at that edge so it
		// unrolls as it enters.
		radius = clamp(pos.X-rightRect.Left, 0, radius)
		if pos.X > rightRect.Right {
			pos.X = rightRect.Right
		}
		dir = pos.Sub(c.dragStart)
	default:
		return
	}

	c.setCurlPose(pos, dir, radius)
}

// setCurlPose clamps the pose to the turning page's rectangle, pins the
// curl to the vertical bounds so corners never tear off the page, and
// hands the result to the curling mesh. A pose past the trailing edge
// or with no direction flattens the page instead.
func (c *Controller) setCurlPose(pos, dir Point, radius float64) {
	mesh := c.meshes[RoleCurling]
	twoPages := c.layout.ViewMode() == TwoPages

	if c.state == StateCurlingRight || (c.state == StateCurlingLeft && !twoPages) {
		r := c.layout.PageRect(SlotRight)
		if pos.X >= r.Right {
			c.curlPos, c.curlDir = pos, Point{}
			mesh.Reset()
			return
		}
		if pos.X < r.Left {
			pos.X = r.Left
		}
		if dir.Y != 0 {
			// Where the fold line crosses the spine edge.
			edgeY := pos.Y + (pos.X-r.Left)*dir.X/dir.Y
			if edgeY > r.Top {
				dir = Point{X: pos.Y - r.Top, Y: r.Left - pos.X}
			} else if edgeY < r.Bottom {
				dir = Point{X: r.Bottom - pos.Y, Y: pos.X - r.Left}
			}
		}
	} else if c.state == StateCurlingLeft {
		r := c.layout.PageRect(SlotLeft)
		if pos.X <= r.Left {
			c.curlPos, c.curlDir = pos, Point{}
			mesh.Reset()
			return
		}
		if pos.X > r.Right {
			pos.X = r.Right
		}
		if dir.Y != 0 {
			edgeY := pos.Y + (pos.X-r.Right)*dir.X/dir.Y
			if edgeY > r.Top {
				dir = Point{X: r.Top - pos.Y, Y: pos.X - r.Right}
			} else if edgeY < r.Bottom {
				dir = Point{X: pos.Y - r.Bottom, Y: r.Right - pos.X}
			}
		}
	}

	dir = dir.Normalize()
	c.curlPos, c.curlDir = pos, dir
	if dir == (Point{}) {
		mesh.Reset()
		return
	}
	mesh.Curl(pos, dir, radius)
}
