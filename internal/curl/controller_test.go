package curl

import (
	"image"
	"testing"
	"time"
)

type popCall struct {
	front, back int
}

type fakeProvider struct {
	count int
	calls []popCall
}

func (f *fakeProvider) PageCount() int { return f.count }

func (f *fakeProvider) Populate(p *Page, width, height, frontIndex, backIndex int) {
	f.calls = append(f.calls, popCall{frontIndex, backIndex})
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if frontIndex >= 0 && frontIndex < f.count {
		p.SetImage(SideFront, img)
	}
	if backIndex >= 0 && backIndex < f.count {
		p.SetImage(SideBack, img)
	}
}

type recorder struct {
	base    time.Time
	indices []int
	clicks  []int
}

func newTestController(t *testing.T, pages int, mode ViewMode, mutate func(*Options)) (*Controller, *fakeProvider, *recorder) {
	t.Helper()

	rec := &recorder{base: time.Unix(1000, 0)}
	opts := Options{
		Mesh:              testMeshOptions(),
		AllowLastPageCurl: true,
		RenderLeftPage:    true,
		PressureDefault:   0.8,
		SnapDuration:      300 * time.Millisecond,
		JumpDuration:      800 * time.Millisecond,
	}
	if mutate != nil {
		mutate(&opts)
	}

	layout := NewLayout(mode, Margins{})
	layout.SetViewport(800, 400)

	c, err := NewController(layout, opts, Events{
		IndexChanged: func(i int) { rec.indices = append(rec.indices, i) },
		PageClicked:  func(i int) { rec.clicks = append(rec.clicks, i) },
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	c.now = func() time.Time { return rec.base }

	p := &fakeProvider{count: pages}
	c.SetProvider(p)
	p.calls = nil
	return c, p, rec
}

func TestSetCurrentIndexPopulatesOnce(t *testing.T) {
	c, p, rec := newTestController(t, 6, TwoPages, nil)

	c.SetCurrentIndex(3)
	if c.CurrentIndex() != 3 {
		t.Fatalf("expected index 3, got %d", c.CurrentIndex())
	}
	calls := len(p.calls)
	if calls == 0 {
		t.Fatal("expected provider calls after an index change")
	}

	// Setting the same index again must not touch the provider.
	c.SetCurrentIndex(3)
	if len(p.calls) != calls {
		t.Errorf("expected no new provider calls, got %d more", len(p.calls)-calls)
	}
	if len(rec.indices) != 1 || rec.indices[0] != 3 {
		t.Errorf("expected a single index notification for 3, got %v", rec.indices)
	}
}

func TestSetCurrentIndexClamps(t *testing.T) {
	c, _, _ := newTestController(t, 6, TwoPages, nil)

	c.SetCurrentIndex(-5)
	if c.CurrentIndex() != 0 {
		t.Errorf("negative index should clamp to 0, got %d", c.CurrentIndex())
	}

	c.SetCurrentIndex(100)
	if c.CurrentIndex() != 6 {
		t.Errorf("index past the end should clamp to 6, got %d", c.CurrentIndex())
	}

	c2, _, _ := newTestController(t, 6, TwoPages, func(o *Options) {
		o.AllowLastPageCurl = false
	})
	c2.SetCurrentIndex(100)
	if c2.CurrentIndex() != 5 {
		t.Errorf("with the last page pinned the index should clamp to 5, got %d",
			c2.CurrentIndex())
	}
}

func TestForwardDragSettlesLeft(t *testing.T) {
	c, _, rec := newTestController(t, 6, TwoPages, nil)

	c.DragStart(Point{X: 1.5, Y: 0.2}, 0)
	if c.State() != StateCurlingRight {
		t.Fatalf("expected curling-right, got %v", c.State())
	}
	c.DragMove(Point{X: 0.5, Y: 0}, 0)
	c.DragEnd(Point{X: -0.5, Y: 0})
	if !c.Animating() {
		t.Fatal("expected a settle animation after release")
	}
	if len(rec.indices) != 0 {
		t.Fatalf("index must not change before the settle completes, got %v", rec.indices)
	}

	if !c.Animate(rec.base.Add(150 * time.Millisecond)) {
		t.Error("expected redraw while the settle is in flight")
	}
	c.Animate(rec.base.Add(301 * time.Millisecond))

	if c.Animating() || c.State() != StateNone {
		t.Errorf("expected settled state, got animating=%v state=%v", c.Animating(), c.State())
	}
	if c.CurrentIndex() != 1 {
		t.Errorf("expected index 1 after the turn, got %d", c.CurrentIndex())
	}
	if len(rec.indices) != 1 || rec.indices[0] != 1 {
		t.Errorf("expected a single notification for index 1, got %v", rec.indices)
	}
	if c.Animate(rec.base.Add(400 * time.Millisecond)) {
		t.Error("Animate should report false once settled")
	}
}

func TestReleaseNearStartCancels(t *testing.T) {
	c, _, rec := newTestController(t, 6, TwoPages, nil)
	c.SetCurrentIndex(2)
	rec.indices = nil

	c.DragStart(Point{X: 1.5, Y: 0}, 0)
	c.DragEnd(Point{X: 1.2, Y: 0})
	c.Animate(rec.base.Add(time.Second))

	if c.CurrentIndex() != 2 {
		t.Errorf("cancelled turn should keep index 2, got %d", c.CurrentIndex())
	}
	if len(rec.indices) != 0 {
		t.Errorf("cancelled turn should not notify, got %v", rec.indices)
	}
}

func TestBackwardDragSettlesRight(t *testing.T) {
	c, _, rec := newTestController(t, 6, TwoPages, nil)
	c.SetCurrentIndex(3)
	rec.indices = nil

	c.DragStart(Point{X: -1.5, Y: 0}, 0)
	if c.State() != StateCurlingLeft {
		t.Fatalf("expected curling-left, got %v", c.State())
	}
	c.DragEnd(Point{X: 1.0, Y: 0})
	c.Animate(rec.base.Add(time.Second))

	if c.CurrentIndex() != 2 {
		t.Errorf("expected index 2 after turning back, got %d", c.CurrentIndex())
	}
	if len(rec.indices) != 1 || rec.indices[0] != 2 {
		t.Errorf("expected a single notification for index 2, got %v", rec.indices)
	}
}

func TestNoBackwardCurlAtFirstPage(t *testing.T) {
	c, p, _ := newTestController(t, 6, TwoPages, nil)

	c.DragStart(Point{X: -1, Y: 0}, 0)
	if c.State() != StateNone {
		t.Errorf("no page to turn back at index 0, got state %v", c.State())
	}
	if len(p.calls) != 0 {
		t.Errorf("refused drag should not touch the provider, got %v", p.calls)
	}
}

func TestLastPageGuard(t *testing.T) {
	c, _, _ := newTestController(t, 3, TwoPages, func(o *Options) {
		o.AllowLastPageCurl = false
	})
	c.SetCurrentIndex(2)

	c.DragStart(Point{X: 1.5, Y: 0}, 0)
	if c.State() != StateNone {
		t.Errorf("the pinned last page must not curl, got state %v", c.State())
	}
}

func TestAnimateToIndexForward(t *testing.T) {
	c, p, rec := newTestController(t, 6, TwoPages, nil)

	c.AnimateToIndex(4)
	if c.State() != StateCurlingRight || !c.Animating() {
		t.Fatalf("expected an animated forward turn, got state=%v animating=%v",
			c.State(), c.Animating())
	}

	// The destination spread is pre-loaded under the moving page.
	found := false
	for _, call := range p.calls {
		if call == (popCall{4, 5}) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected destination pre-load {4 5}, got %v", p.calls)
	}

	c.Animate(rec.base.Add(801 * time.Millisecond))
	if c.CurrentIndex() != 4 {
		t.Errorf("expected index 4 after the jump, got %d", c.CurrentIndex())
	}
	if len(rec.indices) != 1 || rec.indices[0] != 4 {
		t.Errorf("expected a single notification for index 4, got %v", rec.indices)
	}
}

func TestAnimateToIndexBackward(t *testing.T) {
	c, _, rec := newTestController(t, 6, TwoPages, nil)
	c.SetCurrentIndex(5)
	rec.indices = nil

	c.AnimateToIndex(2)
	if c.State() != StateCurlingLeft {
		t.Fatalf("expected curling-left, got %v", c.State())
	}
	c.Animate(rec.base.Add(time.Second))

	if c.CurrentIndex() != 2 {
		t.Errorf("expected index 2 after the jump, got %d", c.CurrentIndex())
	}
}

func TestNewDragSupersedesAnimation(t *testing.T) {
	c, _, _ := newTestController(t, 6, TwoPages, nil)

	c.AnimateToIndex(1)
	// Grab the page again before the jump lands.
	c.DragStart(Point{X: 1.5, Y: 0}, 0)

	if c.CurrentIndex() != 1 {
		t.Errorf("superseded animation should settle instantly to 1, got %d",
			c.CurrentIndex())
	}
	if c.State() != StateCurlingRight {
		t.Errorf("expected a fresh curl after the supersede, got %v", c.State())
	}
	if c.Animating() {
		t.Error("the old animation must not keep running under the new drag")
	}
}

func TestDrawListComposition(t *testing.T) {
	c, _, rec := newTestController(t, 6, TwoPages, nil)

	if got := c.DrawList(); len(got) != 1 {
		t.Fatalf("at index 0 only the right page should draw, got %d meshes", len(got))
	}

	c.SetCurrentIndex(2)
	if got := c.DrawList(); len(got) != 2 {
		t.Fatalf("expected left and right pages at index 2, got %d meshes", len(got))
	}

	c.DragStart(Point{X: 1.5, Y: 0}, 0)
	got := c.DrawList()
	if len(got) != 3 {
		t.Fatalf("expected three meshes mid-curl, got %d", len(got))
	}
	if got[len(got)-1] != c.Mesh(RoleCurling) {
		t.Error("the curling mesh must draw last")
	}

	c.DragEnd(Point{X: 1.8, Y: 0})
	c.Animate(rec.base.Add(time.Second))
	if got := c.DrawList(); len(got) != 2 {
		t.Errorf("expected two meshes after settling, got %d", len(got))
	}
}

func TestDrawListWithoutLeftPage(t *testing.T) {
	c, _, _ := newTestController(t, 6, TwoPages, func(o *Options) {
		o.RenderLeftPage = false
	})
	c.SetCurrentIndex(2)

	if got := c.DrawList(); len(got) != 1 {
		t.Errorf("left page rendering disabled, expected 1 mesh, got %d", len(got))
	}
}

func TestBlankSlotStaysHidden(t *testing.T) {
	c, p, _ := newTestController(t, 1, TwoPages, nil)

	c.DragStart(Point{X: 1.5, Y: 0}, 0)
	if c.State() != StateCurlingRight {
		t.Fatalf("the last page should curl away, got %v", c.State())
	}

	for _, call := range p.calls {
		if call.front >= 1 || call.back >= 2 {
			t.Errorf("out-of-range slot should not reach the provider, got %v", call)
		}
	}
	if got := c.DrawList(); len(got) != 1 {
		t.Errorf("only the curling page exists past the end, got %d meshes", len(got))
	}
}

func TestTapReportsClick(t *testing.T) {
	c, _, rec := newTestController(t, 6, TwoPages, nil)
	c.SetCurrentIndex(2)

	c.Tap(Point{X: 0.5, Y: 0})
	if len(rec.clicks) != 1 || rec.clicks[0] != 2 {
		t.Fatalf("expected a click at index 2, got %v", rec.clicks)
	}

	// No click reporting while a curl is active.
	c.DragStart(Point{X: 1.5, Y: 0}, 0)
	c.Tap(Point{X: 0.5, Y: 0})
	if len(rec.clicks) != 1 {
		t.Errorf("tap during a curl should be ignored, got %v", rec.clicks)
	}
}

func TestCurlRightLoadsNeighborSlots(t *testing.T) {
	c, p, _ := newTestController(t, 6, TwoPages, nil)
	c.SetCurrentIndex(2)
	p.calls = nil

	c.DragStart(Point{X: 1.5, Y: 0}, 0)

	want := []popCall{{0, 1}, {3, 4}}
	if len(p.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, p.calls)
	}
	for i := range want {
		if p.calls[i] != want[i] {
			t.Errorf("call %d: expected %v, got %v", i, want[i], p.calls[i])
		}
	}
}

func TestOnePageBackwardCurl(t *testing.T) {
	c, p, rec := newTestController(t, 6, OnePage, nil)
	c.SetCurrentIndex(3)
	rec.indices = nil
	p.calls = nil

	c.DragStart(Point{X: -1.9, Y: 0}, 0)
	if c.State() != StateCurlingLeft {
		t.Fatalf("expected curling-left, got %v", c.State())
	}
	// The incoming sheet slides in from the leading edge, unmirrored.
	if c.Mesh(RoleCurling).FlipTexture() {
		t.Error("one-page backward curl should not mirror the incoming sheet")
	}
	found := false
	for _, call := range p.calls {
		if call == (popCall{2, 3}) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the previous sheet {2 3} on the curling mesh, got %v", p.calls)
	}

	c.DragEnd(Point{X: 1.5, Y: 0})
	c.Animate(rec.base.Add(time.Second))
	if c.CurrentIndex() != 2 {
		t.Errorf("expected index 2 after turning back, got %d", c.CurrentIndex())
	}
}

func TestDragWithoutProvider(t *testing.T) {
	layout := NewLayout(TwoPages, Margins{})
	layout.SetViewport(800, 400)
	c, err := NewController(layout, Options{Mesh: testMeshOptions(), PressureDefault: 0.8}, Events{})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	c.DragStart(Point{X: 1.5, Y: 0}, 0)
	if c.State() != StateNone {
		t.Errorf("no content, no curl; got state %v", c.State())
	}
}
