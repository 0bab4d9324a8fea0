// Package input handles SDL2 input events, unifying mouse and touch
// into pointer events carrying pressure.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies processed input events.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventPointerDown
	EventPointerMove
	EventPointerUp
)

// Event represents a processed input event. Pointer coordinates are in
// window pixels; Pressure is in [0, 1] and zero for mouse input, where
// no pressure information exists.
type Event struct {
	Type     EventType
	Key      sdl.Scancode
	Width    int
	Height   int
	PointerX float64
	PointerY float64
	Pressure float64
}

// Input handles all input processing.
type Input struct {
	events []Event

	winWidth  int
	winHeight int
	buttons   uint32
}

// New creates a new input handler. Window dimensions are needed to map
// normalized touch coordinates to pixels.
func New(winWidth, winHeight int) *Input {
	return &Input{
		events:    make([]Event, 0, 16),
		winWidth:  winWidth,
		winHeight: winHeight,
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.winWidth = int(e.Data1)
				i.winHeight = int(e.Data2)
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			} else if e.Type == sdl.KEYUP {
				i.events = append(i.events, Event{
					Type: EventKeyUp,
					Key:  e.Keysym.Scancode,
				})
			}

		case *sdl.MouseButtonEvent:
			// Synthetic mouse events mirror touch input; the touch
			// path already reported those.
			if e.Which == sdl.TOUCH_MOUSEID {
				continue
			}
			if e.Button != sdl.BUTTON_LEFT {
				continue
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				i.buttons |= 1
				i.events = append(i.events, Event{
					Type:     EventPointerDown,
					PointerX: float64(e.X),
					PointerY: float64(e.Y),
				})
			} else if e.Type == sdl.MOUSEBUTTONUP {
				i.buttons &^= 1
				i.events = append(i.events, Event{
					Type:     EventPointerUp,
					PointerX: float64(e.X),
					PointerY: float64(e.Y),
				})
			}

		case *sdl.MouseMotionEvent:
			if e.Which == sdl.TOUCH_MOUSEID {
				continue
			}
			if i.buttons == 0 {
				continue
			}
			i.events = append(i.events, Event{
				Type:     EventPointerMove,
				PointerX: float64(e.X),
				PointerY: float64(e.Y),
			})

		case *sdl.TouchFingerEvent:
			ev := Event{
				PointerX: float64(e.X) * float64(i.winWidth),
				PointerY: float64(e.Y) * float64(i.winHeight),
				Pressure: float64(e.Pressure),
			}
			switch e.Type {
			case sdl.FINGERDOWN:
				ev.Type = EventPointerDown
			case sdl.FINGERMOTION:
				ev.Type = EventPointerMove
			case sdl.FINGERUP:
				ev.Type = EventPointerUp
			default:
				continue
			}
			i.events = append(i.events, ev)
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
