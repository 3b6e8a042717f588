// Package mem implements the DMG's memory-mapped device fabric: a Device
// interface every component implements, and a Bus that performs
// address-decoded routing with layered overlays and DMA bus-lock semantics.
//
// This mirrors the source architecture's network-on-chip (arch/src/mio):
// devices are opaque handles the bus holds by reference, mapped over
// inclusive address ranges; an overlay is just another mapping inserted
// ahead of the one it shadows.
package mem

import (
	"fmt"
	"log/slog"
)

// Class groups mapped ranges by which bus they sit behind, for the purpose
// of DMA's lockout: DMA busies the external and video buses but never the
// internal one (HRAM and IO registers stay reachable, which is why DMA
// routines must run from HRAM).
type Class uint8

const (
	ClassInternal Class = iota // HRAM, IO/interrupt registers
	ClassExternal              // cartridge ROM/RAM, WRAM, echo RAM
	ClassVideo                 // VRAM, OAM
)

type mapping struct {
	lo, hi uint16
	class  Class
	dev    Device
	name   string
}

func (m mapping) contains(address uint16) bool {
	return address >= m.lo && address <= m.hi
}

// Bus is the DMG's address-decoded routing fabric. Multiple devices may be
// mapped to overlapping ranges; the first-inserted one that doesn't fault
// wins, which is how the boot overlay shadows cartridge ROM until it's
// dismissed.
type Bus struct {
	mappings     []mapping
	busyExternal bool
	busyVideo    bool
	logger       *slog.Logger
}

// NewBus returns an empty bus with no devices mapped.
func NewBus() *Bus {
	return &Bus{logger: slog.Default()}
}

// Map attaches a device over an inclusive address range under the given
// bus class. Mappings are probed in the order they were added, so higher
// priority (e.g. an overlay) must be mapped before what it shadows.
func (b *Bus) Map(lo, hi uint16, class Class, dev Device, name string) {
	b.mappings = append(b.mappings, mapping{lo: lo, hi: hi, class: class, dev: dev, name: name})
}

// Unmap removes every mapping for the given device. Used to dismiss the
// boot ROM overlay, which only a board Reset maps again.
func (b *Bus) Unmap(dev Device) {
	kept := b.mappings[:0]
	for _, m := range b.mappings {
		if m.dev != dev {
			kept = append(kept, m)
		}
	}
	b.mappings = kept
}

// SetBusy locks or unlocks an entire bus class. DMA sets ClassExternal and
// ClassVideo busy for the duration of its transfer.
func (b *Bus) SetBusy(class Class, busy bool) {
	switch class {
	case ClassExternal:
		b.busyExternal = busy
	case ClassVideo:
		b.busyVideo = busy
	}
}

func (b *Bus) classBusy(class Class) bool {
	switch class {
	case ClassExternal:
		return b.busyExternal
	case ClassVideo:
		return b.busyVideo
	default:
		return false
	}
}

// Read returns the byte at address, or the open-bus value 0xFF if nothing
// mapped there responds without error (Range/Disabled/Busy/Misuse all
// collapse to 0xFF per the propagation policy in spec §7).
func (b *Bus) Read(address uint16) uint8 {
	for _, m := range b.mappings {
		if !m.contains(address) {
			continue
		}
		if b.classBusy(m.class) {
			b.logger.Debug("bus read blocked: class busy", "addr", fmt.Sprintf("$%04X", address), "device", m.name)
			continue
		}
		v, err := m.dev.Read(address)
		if err != nil {
			b.logger.Debug("device read fault", "addr", fmt.Sprintf("$%04X", address), "device", m.name, "err", err)
			continue
		}
		return v
	}
	return 0xFF
}

// ReadRaw bypasses the busy-class lock. Only the DMA unit should use this:
// it is itself the reason the external/video classes are busy, and must
// still be able to read its source and write OAM during its own transfer.
func (b *Bus) ReadRaw(address uint16) uint8 {
	for _, m := range b.mappings {
		if !m.contains(address) {
			continue
		}
		v, err := m.dev.Read(address)
		if err != nil {
			continue
		}
		return v
	}
	return 0xFF
}

// WriteRaw is ReadRaw's write counterpart, used by DMA to land bytes into
// OAM while the video bus class is locked for everyone else.
func (b *Bus) WriteRaw(address uint16, value uint8) {
	for _, m := range b.mappings {
		if !m.contains(address) {
			continue
		}
		if err := m.dev.Write(address, value); err != nil {
			continue
		}
		return
	}
}

// Write stores value at address if some mapped device accepts it;
// otherwise the write is silently discarded per spec §7.
func (b *Bus) Write(address uint16, value uint8) {
	for _, m := range b.mappings {
		if !m.contains(address) {
			continue
		}
		if b.classBusy(m.class) {
			b.logger.Debug("bus write blocked: class busy", "addr", fmt.Sprintf("$%04X", address), "device", m.name)
			continue
		}
		if err := m.dev.Write(address, value); err != nil {
			b.logger.Debug("device write fault", "addr", fmt.Sprintf("$%04X", address), "device", m.name, "err", err)
			continue
		}
		return
	}
}
