package cart

import "github.com/rgcarr/dmgcore/mem"

// MBC is the contract every mapper variant implements: a ROM face
// responding to $0000-$7FFF (where writes are control-register writes, not
// data) and a RAM face responding to $A000-$BFFF.
type MBC interface {
	mem.Device
}

// Persistable is implemented by mappers that carry battery-backed RAM; the
// cartridge uses it to load/dump the .sav file.
type Persistable interface {
	RAMBytes() []byte
}

// romOffset returns the offset of bank*bankSize+within inside rom, wrapped
// modulo the ROM's actual length — every MBC translates addresses modulo
// the backing buffer's real size, per spec §4.2.
func romOffset(bank, within, bankSize, romLen int) int {
	if romLen == 0 {
		return 0
	}
	return (bank*bankSize + within) % romLen
}

func ramOffset(bank, within, bankSize, ramLen int) int {
	if ramLen == 0 {
		return 0
	}
	return (bank*bankSize + within) % ramLen
}

// NoMBC is a fixed 32 KiB ROM with no banking and optional unbanked RAM.
type NoMBC struct {
	rom []byte
	ram []byte
}

// NewNoMBC returns a no-MBC mapper over rom with ramSize bytes of optional
// cartridge RAM (0 for none).
func NewNoMBC(rom []byte, ramSize int) *NoMBC {
	return &NoMBC{rom: rom, ram: make([]byte, ramSize)}
}

func (m *NoMBC) Read(address uint16) (uint8, error) {
	switch {
	case address <= 0x7FFF:
		if int(address) >= len(m.rom) {
			return 0xFF, nil
		}
		return m.rom[address], nil
	case address >= 0xA000 && address <= 0xBFFF:
		if len(m.ram) == 0 {
			return 0, mem.NewFault(mem.Disabled, address)
		}
		return m.ram[ramOffset(0, int(address-0xA000), 0x2000, len(m.ram))], nil
	default:
		return 0, mem.NewFault(mem.Range, address)
	}
}

func (m *NoMBC) Write(address uint16, value uint8) error {
	switch {
	case address <= 0x7FFF:
		return mem.NewFault(mem.Misuse, address)
	case address >= 0xA000 && address <= 0xBFFF:
		if len(m.ram) == 0 {
			return mem.NewFault(mem.Disabled, address)
		}
		m.ram[ramOffset(0, int(address-0xA000), 0x2000, len(m.ram))] = value
		return nil
	default:
		return mem.NewFault(mem.Range, address)
	}
}

func (m *NoMBC) RAMBytes() []byte { return m.ram }
