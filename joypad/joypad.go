// Package joypad implements the DMG's P1 register: button-state latching,
// select-group decoding and the joypad edge interrupt.
package joypad

import (
	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/bit"
	"github.com/rgcarr/dmgcore/mem"
	"github.com/rgcarr/dmgcore/pic"
)

// Button identifies one of the eight physical inputs.
type Button uint8

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Joypad tracks pressed-state for both input groups and the P1 selection
// bits, raising the Joypad interrupt on a high-to-low transition of any
// selected, currently-readable line.
type Joypad struct {
	buttons uint8 // low 4 bits: A, B, Select, Start (1 = released)
	dpad    uint8 // low 4 bits: Right, Left, Up, Down (1 = released)
	select_ uint8 // raw P1 bits 4-5 as last written

	line pic.Line
}

// New returns a Joypad with nothing pressed and both groups selected (P1
// select bits 4-5 clear).
func New(line pic.Line) *Joypad {
	return &Joypad{buttons: 0x0F, dpad: 0x0F, line: line}
}

// Reset restores power-on state (nothing pressed, both groups selected) in
// place, keeping the interrupt line.
func (j *Joypad) Reset() {
	line := j.line
	*j = Joypad{buttons: 0x0F, dpad: 0x0F, line: line}
}

func (j *Joypad) selectButtons() bool { return !bit.IsSet(5, j.select_) }
func (j *Joypad) selectDpad() bool    { return !bit.IsSet(4, j.select_) }

func (j *Joypad) register() uint8 {
	result := uint8(0b1100_0000) | (j.select_ & 0b0011_0000)

	switch {
	case j.selectButtons() && j.selectDpad():
		result |= j.buttons & j.dpad & 0x0F
	case j.selectButtons():
		result |= j.buttons & 0x0F
	case j.selectDpad():
		result |= j.dpad & 0x0F
	default:
		result |= 0x0F
	}
	return result
}

func (j *Joypad) Read(address uint16) (uint8, error) {
	if address != addr.P1 {
		return 0, mem.NewFault(mem.Range, address)
	}
	return j.register(), nil
}

func (j *Joypad) Write(address uint16, value uint8) error {
	if address != addr.P1 {
		return mem.NewFault(mem.Range, address)
	}
	j.select_ = value & 0b0011_0000
	return nil
}

// Press records a button being held down, raising the Joypad interrupt if
// this causes a bit the current selection exposes to transition high→low.
func (j *Joypad) Press(b Button) {
	before := j.register()
	j.setGroup(b, false)
	if after := j.register(); before&^after&0x0F != 0 {
		j.line.Raise(addr.Joypad)
	}
}

// Release records a button being let go.
func (j *Joypad) Release(b Button) {
	j.setGroup(b, true)
}

func (j *Joypad) setGroup(b Button, released bool) {
	var group *uint8
	var bitIdx uint8

	switch b {
	case Right:
		group, bitIdx = &j.dpad, 0
	case Left:
		group, bitIdx = &j.dpad, 1
	case Up:
		group, bitIdx = &j.dpad, 2
	case Down:
		group, bitIdx = &j.dpad, 3
	case A:
		group, bitIdx = &j.buttons, 0
	case B:
		group, bitIdx = &j.buttons, 1
	case Select:
		group, bitIdx = &j.buttons, 2
	case Start:
		group, bitIdx = &j.buttons, 3
	default:
		return
	}

	*group = bit.SetTo(bitIdx, *group, released)
}
