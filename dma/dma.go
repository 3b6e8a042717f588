// Package dma implements the OAM DMA transfer unit: the single $FF46
// register and the block-copy state machine it triggers.
package dma

import (
	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/mem"
)

// state is the DMA unit's lifecycle, exactly as spec §4.7 describes it:
// Off -> Req(B) -> On{hi=B, lo=0..159} -> Off.
type state uint8

const (
	stateOff state = iota
	stateReq
	stateOn
)

const transferLength = 160

// DMA copies 160 bytes from $B00-$B9F into OAM, one byte per CPU-divided
// cycle, locking the external and video buses for the duration so the CPU
// sees open-bus on everything but HRAM and IO.
type DMA struct {
	state     state
	latched   byte // the last byte written to $FF46 (readable even mid-transfer)
	requested byte // value from the write that triggered the pending Req
	activeHi  byte // source high byte captured at Req->On; the copy's own source, immune to later writes
	offset    int  // 0..159 progress within an active transfer
	bus       *mem.Bus
}

// New returns a DMA unit wired to the given bus, which it uses both for
// its source reads (bypassing its own lock) and the OAM destination write.
func New(bus *mem.Bus) *DMA {
	return &DMA{bus: bus}
}

// Active reports whether a transfer is currently locking the external and
// video buses.
func (d *DMA) Active() bool { return d.state == stateOn }

// Reset restores power-on state in place, keeping the wired bus.
func (d *DMA) Reset() {
	bus := d.bus
	*d = DMA{bus: bus}
}

// Tick advances the DMA unit by one CPU-divided cycle (one M-cycle).
func (d *DMA) Tick() {
	switch d.state {
	case stateOff:
		return
	case stateReq:
		d.activeHi = d.requested
		d.offset = 0
		d.state = stateOn
		d.bus.SetBusy(mem.ClassExternal, true)
		d.bus.SetBusy(mem.ClassVideo, true)
	case stateOn:
		src := uint16(d.activeHi)<<8 + uint16(d.offset)
		value := d.bus.ReadRaw(src)
		d.bus.WriteRaw(addr.OAMStart+uint16(d.offset), value)
		d.offset++
		if d.offset >= transferLength {
			d.state = stateOff
			d.bus.SetBusy(mem.ClassExternal, false)
			d.bus.SetBusy(mem.ClassVideo, false)
		}
	}
}

func (d *DMA) Read(address uint16) (uint8, error) {
	if address != addr.DMA {
		return 0, mem.NewFault(mem.Range, address)
	}
	return d.latched, nil
}

// Write latches a new source byte and requests a transfer. A write that
// arrives while a transfer is already active updates the latch (so a
// subsequent read reflects it) but does not restart or extend the
// in-flight copy — a documented hardware quirk.
func (d *DMA) Write(address uint16, value uint8) error {
	if address != addr.DMA {
		return mem.NewFault(mem.Range, address)
	}
	d.latched = value
	if d.state == stateOff {
		d.requested = value
		d.state = stateReq
	}
	return nil
}
