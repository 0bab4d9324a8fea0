package curl

import (
	"math"
	"time"
)

// settleTarget names the edge a released curl animates toward.
type settleTarget int

const (
	settleToLeft settleTarget = iota + 1
	settleToRight
)

// animation drives the curl position from source to target over a fixed
// duration. Snaps after a release use smoothstep; programmatic jumps use
// a sine ease-in so the page appears to accelerate off the edge.
type animation struct {
	active   bool
	source   Point
	target   Point
	start    time.Time
	duration time.Duration
	settle   settleTarget
	ease     func(float64) float64
}

// position returns the interpolated curl position at time now and
// whether the animation has run its course.
func (a *animation) position(now time.Time) (Point, bool) {
	t := float64(now.Sub(a.start)) / float64(a.duration)
	if t >= 1 {
		return a.target, true
	}
	if t < 0 {
		t = 0
	}
	e := a.ease(t)
	return Point{
		X: a.source.X + (a.target.X-a.source.X)*e,
		Y: a.source.Y + (a.target.Y-a.source.Y)*e,
	}, false
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func easeInSine(t float64) float64 {
	return 1 - math.Cos(t*math.Pi/2)
}
