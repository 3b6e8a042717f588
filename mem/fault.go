package mem

import "fmt"

// Kind enumerates the memory-layer error taxonomy from the spec: a device
// can fail a read/write for one of these reasons, never any other.
type Kind uint8

const (
	// Range means the address isn't mapped by this device at all.
	Range Kind = iota
	// Disabled means the device is gated off (e.g. cartridge RAM with the
	// RAM-enable latch cleared).
	Disabled
	// Busy means the owning bus class is locked (DMA in progress).
	Busy
	// Misuse means the operation isn't supported by the device (e.g. a
	// write to a read-only MBC control register being read back).
	Misuse
)

func (k Kind) String() string {
	switch k {
	case Range:
		return "range"
	case Disabled:
		return "disabled"
	case Busy:
		return "busy"
	case Misuse:
		return "misuse"
	default:
		return "unknown"
	}
}

// Fault is the error type every mem.Device returns on a failed access.
// Per spec §7, faults are never fatal: the Bus converts a failed read into
// open-bus 0xFF and a failed write into a silent no-op.
type Fault struct {
	Kind Kind
	Addr uint16
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s at $%04X", f.Kind, f.Addr)
}

// NewFault builds a Fault value; a convenience for Device implementations.
func NewFault(kind Kind, address uint16) error {
	return &Fault{Kind: kind, Addr: address}
}
