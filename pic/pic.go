// Package pic implements the DMG interrupt controller: the IF/IE register
// pair and priority selection between the five interrupt sources.
package pic

import (
	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/mem"
)

// unusedBits is forced high on every IF/IE read: "IF and IE upper three
// bits read as ones" (spec §3 invariants).
const unusedBits = 0xE0

// PIC holds the two 5-bit interrupt registers and exposes raise/clear/fetch
// to peripherals and the CPU.
type PIC struct {
	ifReg uint8
	ieReg uint8
}

// New returns a PIC with both registers clear.
func New() *PIC {
	return &PIC{}
}

// Reset clears both interrupt registers in place.
func (p *PIC) Reset() {
	p.ifReg, p.ieReg = 0, 0
}

// Raise sets the given interrupt's bit in IF. Safe to call repeatedly; it's
// idempotent until Clear runs.
func (p *PIC) Raise(i addr.Interrupt) {
	p.ifReg |= i.Mask()
}

// Clear resets the given interrupt's bit in IF. Called by the CPU once it
// begins servicing that interrupt.
func (p *PIC) Clear(i addr.Interrupt) {
	p.ifReg &^= i.Mask()
}

// Fetch returns the lowest-numbered (highest priority) interrupt that is
// both flagged in IF and enabled in IE, if any.
func (p *PIC) Fetch() (addr.Interrupt, bool) {
	active := p.ifReg & p.ieReg
	for _, i := range addr.All {
		if active&i.Mask() != 0 {
			return i, true
		}
	}
	return 0, false
}

// Pending reports whether any enabled interrupt is flagged — used by the
// CPU's Halt state to decide when to wake, independent of IME.
func (p *PIC) Pending() bool {
	return p.ifReg&p.ieReg != 0
}

func (p *PIC) readIF() uint8 { return p.ifReg | unusedBits }
func (p *PIC) readIE() uint8 { return p.ieReg | unusedBits }

func (p *PIC) writeIF(v uint8) { p.ifReg = v & 0x1F }
func (p *PIC) writeIE(v uint8) { p.ieReg = v & 0x1F }

// Read implements mem.Device for the two discontiguous registers IF
// ($FF0F) and IE ($FFFF); the bus maps both addresses to the same PIC.
func (p *PIC) Read(address uint16) (uint8, error) {
	switch address {
	case addr.IF:
		return p.readIF(), nil
	case addr.IE:
		return p.readIE(), nil
	default:
		return 0, mem.NewFault(mem.Range, address)
	}
}

func (p *PIC) Write(address uint16, value uint8) error {
	switch address {
	case addr.IF:
		p.writeIF(value)
		return nil
	case addr.IE:
		p.writeIE(value)
		return nil
	default:
		return mem.NewFault(mem.Range, address)
	}
}

// Line is a narrow capability handle peripherals hold instead of a *PIC
// reference, breaking the would-be cyclic reference between every
// interrupt-raising component and the controller that owns them all (design
// note: "an interrupt line is the pair of (IF, IE) handles, given by value
// to each peripheral").
type Line struct {
	raise func(addr.Interrupt)
}

// Raise requests the given interrupt through the line.
func (l Line) Raise(i addr.Interrupt) {
	if l.raise != nil {
		l.raise(i)
	}
}

// Line returns a handle peripherals can use to raise interrupts without
// holding a reference to the whole controller.
func (p *PIC) Line() Line {
	return Line{raise: p.Raise}
}
