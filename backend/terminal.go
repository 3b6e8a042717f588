package backend

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/rgcarr/dmgcore/input"
	"github.com/rgcarr/dmgcore/video"
)

// shadeColors maps a resolved GBColor to the terminal color approximating
// it; tcell has no grayscale ramp so this picks the nearest ANSI gray.
var shadeColors = map[video.GBColor]tcell.Color{
	video.WhiteColor:     tcell.ColorWhite,
	video.LightGreyColor: tcell.ColorSilver,
	video.DarkGreyColor:  tcell.ColorGray,
	video.BlackColor:     tcell.ColorBlack,
}

// tcellKeyNames maps the handful of non-rune tcell keys the default keymap
// cares about onto the key-name strings input.DefaultKeyMap is keyed by.
var tcellKeyNames = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
}

// Terminal renders the framebuffer as half-block Unicode characters
// (each cell encodes two vertically stacked pixels) and reads key events
// through tcell, translating them via an input.Manager.
type Terminal struct {
	screen tcell.Screen
	keys   *input.Manager
	cfg    Config
}

// NewTerminal returns a Terminal backend using the default key mapping.
func NewTerminal() *Terminal {
	return &Terminal{keys: input.NewManager(nil)}
}

func (t *Terminal) Init(cfg Config) error {
	t.cfg = cfg

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()
	t.screen = screen
	return nil
}

func (t *Terminal) Update(frame *video.FrameBuffer) ([]input.Action, error) {
	var actions []input.Action

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if a, ok := t.resolveKey(ev); ok {
				actions = append(actions, a)
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	t.render(frame)
	return actions, nil
}

func (t *Terminal) resolveKey(ev *tcell.EventKey) (input.Action, bool) {
	if ev.Key() == tcell.KeyRune {
		return t.keys.KeyDown(string(ev.Rune()))
	}
	if name, ok := tcellKeyNames[ev.Key()]; ok {
		return t.keys.KeyDown(name)
	}
	return 0, false
}

func (t *Terminal) render(frame *video.FrameBuffer) {
	t.screen.Clear()
	pixels := frame.ToSlice()

	for row := 0; row < video.FrameHeight/2; row++ {
		top := pixels[(row*2)*video.FrameWidth : (row*2+1)*video.FrameWidth]
		bottom := pixels[(row*2+1)*video.FrameWidth : (row*2+2)*video.FrameWidth]

		for x := 0; x < video.FrameWidth; x++ {
			ch, fg, bg := halfBlockCell(video.GBColor(top[x]), video.GBColor(bottom[x]))
			style := tcell.StyleDefault.Foreground(fg).Background(bg)
			t.screen.SetContent(x, row, ch, nil, style)
		}
	}

	t.screen.Show()
}

// halfBlockCell picks a glyph and fg/bg color pair so one terminal cell
// depicts two stacked pixels: a solid block when they match, the upper
// half-block glyph (foreground=top, background=bottom) otherwise.
func halfBlockCell(top, bottom video.GBColor) (rune, tcell.Color, tcell.Color) {
	if top == bottom {
		return '█', shadeColors[top], shadeColors[top]
	}
	return '▀', shadeColors[top], shadeColors[bottom]
}

func (t *Terminal) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}
