package mem

// Device is a memory-mapped component: the bus routes reads and writes to
// whichever device is mapped over a given address. A failed access returns
// a *Fault (Range/Disabled/Busy/Misuse); the Bus is responsible for turning
// that into the open-bus convention, not the Device itself.
type Device interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, value uint8) error
}

// RAM is a flat byte-array device mapped starting at a fixed base address.
// Used for WRAM and HRAM, neither of which has any register semantics.
type RAM struct {
	base uint16
	data []byte
}

// NewRAM allocates a RAM device of the given size, addressed starting at
// base (inclusive).
func NewRAM(base uint16, size int) *RAM {
	return &RAM{base: base, data: make([]byte, size)}
}

func (r *RAM) Read(address uint16) (uint8, error) {
	off := int(address) - int(r.base)
	if off < 0 || off >= len(r.data) {
		return 0, NewFault(Range, address)
	}
	return r.data[off], nil
}

func (r *RAM) Write(address uint16, value uint8) error {
	off := int(address) - int(r.base)
	if off < 0 || off >= len(r.data) {
		return NewFault(Range, address)
	}
	r.data[off] = value
	return nil
}

// Bytes exposes the backing slice directly, for callers that need bulk or
// out-of-band access without going through the bus's address decoding on
// every byte.
func (r *RAM) Bytes() []byte { return r.data }

// Mirror forwards every access to an inner device after subtracting an
// address offset; it implements the Echo-RAM mirror of WRAM ($E000-$FDFF
// mirroring $C000-$DDFF).
type Mirror struct {
	inner  Device
	offset uint16 // subtracted from the incoming address before forwarding
}

// NewMirror builds a device that forwards address A to inner's (A-offset).
func NewMirror(inner Device, offset uint16) *Mirror {
	return &Mirror{inner: inner, offset: offset}
}

func (m *Mirror) Read(address uint16) (uint8, error) {
	return m.inner.Read(address - m.offset)
}

func (m *Mirror) Write(address uint16, value uint8) error {
	return m.inner.Write(address-m.offset, value)
}

// FuncDevice adapts plain functions to a single-purpose device, handy for
// registers with bespoke semantics (the boot-overlay disable latch) that
// don't warrant a whole struct.
type FuncDevice struct {
	ReadFn  func(address uint16) (uint8, error)
	WriteFn func(address uint16, value uint8) error
}

func (f *FuncDevice) Read(address uint16) (uint8, error) {
	if f.ReadFn == nil {
		return 0, NewFault(Misuse, address)
	}
	return f.ReadFn(address)
}

func (f *FuncDevice) Write(address uint16, value uint8) error {
	if f.WriteFn == nil {
		return NewFault(Misuse, address)
	}
	return f.WriteFn(address, value)
}
