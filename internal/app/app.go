// Package app wires the window, renderer, input and curl controller
// into the viewer's main loop.
package app

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"pagecurl/internal/config"
	"pagecurl/internal/content"
	"pagecurl/internal/curl"
	"pagecurl/internal/engine/debug"
	"pagecurl/internal/engine/input"
	"pagecurl/internal/engine/renderer"
	"pagecurl/internal/engine/window"
	"pagecurl/internal/logger"
	pmath "pagecurl/pkg/math"
)

// Pointer movement below this many pixels counts as a tap.
const tapSlopPx = 4.0

// App is the viewer instance.
type App struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	layout     *curl.Layout
	controller *curl.Controller

	dragging  bool
	dragMoved bool
	downX     float64
	downY     float64

	screenshots       *debug.Screenshots
	pendingScreenshot bool

	degenerateDrops uint64
}

// New creates the viewer: window and GL context first, then renderer,
// then the curl controller and its content.
func New(cfg *config.Config) (*App, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	a := &App{
		cfg:         cfg,
		screenshots: debug.NewScreenshots("", "pagecurl"),
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      "Page Curl Viewer",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.renderer, err = renderer.New(renderer.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	winW, winH := a.window.GetSize()
	a.input = input.New(winW, winH)

	mode := curl.OnePage
	if cfg.Curl.TwoPages {
		mode = curl.TwoPages
	}
	a.layout = curl.NewLayout(mode, curl.Margins{
		Left:   cfg.Curl.MarginLeft,
		Top:    cfg.Curl.MarginTop,
		Right:  cfg.Curl.MarginRight,
		Bottom: cfg.Curl.MarginBottom,
	})
	if cfg.Curl.PageAspect > 0 {
		a.layout.SetPageAspect(cfg.Curl.PageAspect)
	}

	a.controller, err = curl.NewController(a.layout, controllerOptions(cfg), curl.Events{
		IndexChanged: func(index int) {
			logger.Info("page changed", zap.Int("index", index))
		},
		PageClicked: func(index int) {
			logger.Debug("page clicked", zap.Int("index", index))
		},
	})
	if err != nil {
		a.renderer.Close()
		a.window.Close()
		return nil, fmt.Errorf("failed to create curl controller: %w", err)
	}

	a.resize(winW, winH)

	provider, err := newProvider(cfg)
	if err != nil {
		a.renderer.Close()
		a.window.Close()
		return nil, err
	}
	a.controller.SetProvider(provider)

	logger.Info("viewer initialized successfully")
	return a, nil
}

func controllerOptions(cfg *config.Config) curl.Options {
	var inner, outer [4]float32
	for i := 0; i < 4; i++ {
		inner[i] = float32(cfg.Curl.ShadowInner[i])
		outer[i] = float32(cfg.Curl.ShadowOuter[i])
	}
	return curl.Options{
		Mesh: curl.MeshOptions{
			MaxSplits:     cfg.Curl.MaxSplits,
			Shadows:       cfg.Curl.Shadows,
			CrestDarkness: cfg.Curl.CrestDarkness,
			ShadowInner:   inner,
			ShadowOuter:   outer,
		},
		AllowLastPageCurl:   cfg.Curl.AllowLastPageCurl,
		RenderLeftPage:      cfg.Curl.RenderLeftPage,
		PressureSensitivity: cfg.Curl.PressureSensitivity,
		PressureDefault:     cfg.Curl.PressureDefault,
		SnapDuration:        time.Duration(cfg.Curl.SnapDurationMs) * time.Millisecond,
		JumpDuration:        time.Duration(cfg.Curl.JumpDurationMs) * time.Millisecond,
	}
}

func newProvider(cfg *config.Config) (curl.Provider, error) {
	if cfg.Pages.Dir != "" {
		return content.NewDir(cfg.Pages.Dir)
	}
	return content.NewSample(cfg.Pages.SampleCount), nil
}

// Run starts the main loop.
func (a *App) Run() error {
	a.running = true

	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for a.running {
		if a.input.Update() {
			a.running = false
			break
		}

		for _, event := range a.input.Events() {
			a.handleEvent(event)
		}

		a.controller.Animate(time.Now())
		a.render()
		if a.pendingScreenshot {
			a.pendingScreenshot = false
			a.captureScreenshot()
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
			a.reportDegenerateDrops()
		}
	}

	return nil
}

// Close cleans up viewer resources.
func (a *App) Close() {
	logger.Info("closing viewer")

	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) handleEvent(event input.Event) {
	switch event.Type {
	case input.EventWindowResize:
		a.resize(event.Width, event.Height)

	case input.EventKeyDown:
		a.handleKey(event.Key)

	case input.EventPointerDown:
		a.dragging = true
		a.dragMoved = false
		a.downX, a.downY = event.PointerX, event.PointerY
		p := a.layout.ToNormalized(event.PointerX, event.PointerY)
		a.controller.DragStart(p, event.Pressure)

	case input.EventPointerMove:
		if !a.dragging {
			return
		}
		dx := event.PointerX - a.downX
		dy := event.PointerY - a.downY
		if dx*dx+dy*dy > tapSlopPx*tapSlopPx {
			a.dragMoved = true
		}
		p := a.layout.ToNormalized(event.PointerX, event.PointerY)
		a.controller.DragMove(p, event.Pressure)

	case input.EventPointerUp:
		if !a.dragging {
			return
		}
		a.dragging = false
		p := a.layout.ToNormalized(event.PointerX, event.PointerY)
		if a.controller.State() != curl.StateNone {
			a.controller.DragEnd(p)
		} else if !a.dragMoved {
			a.controller.Tap(p)
		}
	}
}

func (a *App) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		a.running = false
	case sdl.SCANCODE_RIGHT, sdl.SCANCODE_PAGEDOWN, sdl.SCANCODE_SPACE:
		a.controller.AnimateToIndex(a.controller.CurrentIndex() + 1)
	case sdl.SCANCODE_LEFT, sdl.SCANCODE_PAGEUP:
		a.controller.AnimateToIndex(a.controller.CurrentIndex() - 1)
	case sdl.SCANCODE_HOME:
		a.controller.SetCurrentIndex(0)
	case sdl.SCANCODE_F12:
		a.pendingScreenshot = true
	case sdl.SCANCODE_F11:
		a.cfg.Graphics.Fullscreen = !a.cfg.Graphics.Fullscreen
		if err := a.window.SetFullscreen(a.cfg.Graphics.Fullscreen); err != nil {
			logger.Warn("failed to toggle fullscreen", zap.Error(err))
		}
	}
}

// resize propagates a new window size: pointer mapping works in window
// coordinates, the GL viewport in drawable pixels.
func (a *App) resize(width, height int) {
	a.layout.SetViewport(width, height)
	a.controller.UpdateLayout()

	dw, dh := a.window.GetDrawableSize()
	a.renderer.Resize(dw, dh)

	view := a.layout.View()
	a.renderer.SetProjection(pmath.Ortho(
		float32(view.Left), float32(view.Right),
		float32(view.Bottom), float32(view.Top),
		-10, 10,
	))
}

func (a *App) render() {
	a.renderer.Begin()
	for _, mesh := range a.controller.DrawList() {
		a.renderer.DrawMesh(mesh)
	}
	a.renderer.End()
}

func (a *App) captureScreenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.screenshots.SavePixels(pixels, w, h)
	if err != nil {
		logger.Error("failed to save screenshot", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// reportDegenerateDrops surfaces mesh clipping anomalies once instead
// of silently discarding them.
func (a *App) reportDegenerateDrops() {
	var total uint64
	for _, role := range []curl.Role{curl.RoleLeft, curl.RoleRight, curl.RoleCurling} {
		total += a.controller.Mesh(role).DegenerateDrops()
	}
	if total > a.degenerateDrops {
		logger.Warn("degenerate curl bands discarded",
			zap.Uint64("count", total-a.degenerateDrops))
		a.degenerateDrops = total
	}
}
