//go:build !sdl2

package backend

import (
	"fmt"

	"github.com/rgcarr/dmgcore/input"
	"github.com/rgcarr/dmgcore/video"
)

// SDL2 stub for default builds: SDL2 requires cgo and the SDL2 development
// libraries, so it's opt-in via `-tags sdl2` exactly like the teacher's
// own sdl2_stub.go gates its SDL2 backend.
type SDL2 struct{}

func NewSDL2() *SDL2 { return &SDL2{} }

func (s *SDL2) Init(cfg Config) error {
	return fmt.Errorf("sdl2 backend not available: rebuild with -tags sdl2 and the SDL2 development libraries installed")
}

func (s *SDL2) Update(frame *video.FrameBuffer) ([]input.Action, error) {
	return nil, fmt.Errorf("sdl2 backend not available")
}

func (s *SDL2) Cleanup() error { return nil }
