// Package input maps host key events onto Game Boy button presses and a
// small set of emulator-level actions (pause, step, quit), independent of
// any one backend's key-event representation.
package input

import "github.com/rgcarr/dmgcore/joypad"

// Action identifies a single mapped input, either a Game Boy hardware
// button or an emulator-level control.
type Action int

const (
	ButtonA Action = iota
	ButtonB
	ButtonStart
	ButtonSelect
	DPadUp
	DPadDown
	DPadLeft
	DPadRight

	PauseToggle
	StepFrame
	Quit
)

var buttons = map[Action]joypad.Button{
	ButtonA:      joypad.A,
	ButtonB:      joypad.B,
	ButtonStart:  joypad.Start,
	ButtonSelect: joypad.Select,
	DPadUp:       joypad.Up,
	DPadDown:     joypad.Down,
	DPadLeft:     joypad.Left,
	DPadRight:    joypad.Right,
}

// Button reports the joypad.Button an Action corresponds to, if any.
// Emulator-level actions (PauseToggle, StepFrame, Quit) return ok=false.
func (a Action) Button() (joypad.Button, bool) {
	b, ok := buttons[a]
	return b, ok
}
