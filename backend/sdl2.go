//go:build sdl2

package backend

import (
	"fmt"
	"log/slog"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/rgcarr/dmgcore/input"
	"github.com/rgcarr/dmgcore/video"
)

// sdlKeyNames maps the SDL keycodes the default keymap cares about onto
// the key-name strings input.DefaultKeyMap is keyed by.
var sdlKeyNames = map[sdl.Keycode]string{
	sdl.K_RETURN: "Enter",
	sdl.K_UP:     "Up",
	sdl.K_DOWN:   "Down",
	sdl.K_LEFT:   "Left",
	sdl.K_RIGHT:  "Right",
	sdl.K_ESCAPE: "Escape",
}

// SDL2 is a windowed backend using the go-sdl2 bindings: a streaming
// texture the size of the Game Boy screen, scaled up to the window.
// Only built with `-tags sdl2` plus the SDL2 development libraries
// installed; see sdl2_stub.go for the default build.
type SDL2 struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	keys     *input.Manager
}

func NewSDL2() *SDL2 {
	return &SDL2{keys: input.NewManager(nil)}
}

func (s *SDL2) Init(cfg Config) error {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 2
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initializing SDL2: %w", err)
	}

	title := cfg.Title
	if title == "" {
		title = "dmgcore"
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(video.FrameWidth*scale), int32(video.FrameHeight*scale), sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("creating window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("creating renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		video.FrameWidth, video.FrameHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("creating texture: %w", err)
	}
	s.texture = texture

	slog.Info("sdl2 backend initialized", "scale", scale)
	return nil
}

func (s *SDL2) Update(frame *video.FrameBuffer) ([]input.Action, error) {
	var actions []input.Action

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			actions = append(actions, input.Quit)
		case *sdl.KeyboardEvent:
			if name, ok := sdlKeyNames[e.Keysym.Sym]; ok {
				if e.Type == sdl.KEYDOWN {
					if a, ok := s.keys.KeyDown(name); ok {
						actions = append(actions, a)
					}
				} else {
					s.keys.KeyUp(name)
				}
			}
		}
	}

	if err := s.texture.Update(nil, frameBytesRGBA8888(frame), video.FrameWidth*4); err != nil {
		return actions, fmt.Errorf("updating texture: %w", err)
	}
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()

	return actions, nil
}

func (s *SDL2) Cleanup() error {
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

// frameBytesRGBA8888 packs the framebuffer's RGBA pixels into the raw byte
// layout SDL_PIXELFORMAT_RGBA8888 expects.
func frameBytesRGBA8888(fb *video.FrameBuffer) []byte {
	pixels := fb.ToSlice()
	out := make([]byte, len(pixels)*4)
	for i, p := range pixels {
		out[i*4] = byte(p >> 24)
		out[i*4+1] = byte(p >> 16)
		out[i*4+2] = byte(p >> 8)
		out[i*4+3] = byte(p)
	}
	return out
}
