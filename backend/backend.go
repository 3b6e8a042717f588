// Package backend defines the host-facing surface a frontend implements:
// rendering a framebuffer and collecting input. The motherboard and its
// domain logic never import this package; frontends import it and drive
// the board themselves, keeping the core free of host concerns.
package backend

import (
	"github.com/rgcarr/dmgcore/input"
	"github.com/rgcarr/dmgcore/video"
)

// Config configures a Backend at startup.
type Config struct {
	Title string
	Scale int
}

// Backend is a complete host platform: it renders frames and surfaces
// input. Resource acquisition happens in Init, not the constructor, so a
// Backend can be constructed speculatively (e.g. to probe availability)
// before committing to it.
type Backend interface {
	// Init acquires whatever resources the backend needs (a window, a
	// terminal screen) before the first Update call.
	Init(cfg Config) error

	// Update renders one frame and returns the input.Actions observed
	// since the previous call.
	Update(frame *video.FrameBuffer) ([]input.Action, error)

	// Cleanup releases resources acquired by Init.
	Cleanup() error
}
