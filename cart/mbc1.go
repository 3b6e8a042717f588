package cart

import "github.com/rgcarr/dmgcore/mem"

// MBC1 implements the four control regions from spec §4.2: RAM gate,
// 5-bit ROM bank, 2-bit secondary bank, and the banking-mode bit that
// decides whether the secondary bank feeds the ROM's fixed window or the
// RAM bank select.
type MBC1 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	primary    uint8 // 5-bit; hardware quirk means this is never stored as 0
	secondary  uint8 // 2-bit
	mode       uint8 // 0 = ROM banking mode, 1 = RAM banking mode
}

// NewMBC1 returns an MBC1 mapper over rom with ramSize bytes of cartridge
// RAM (0 for none).
func NewMBC1(rom []byte, ramSize int) *MBC1 {
	return &MBC1{rom: rom, ram: make([]byte, ramSize), primary: 1}
}

func (m *MBC1) fixedBank() int {
	if m.mode == 1 {
		return int(m.secondary) << 5
	}
	return 0
}

func (m *MBC1) switchableBank() int {
	return (int(m.secondary) << 5) | int(m.primary)
}

func (m *MBC1) ramBank() int {
	if m.mode == 1 {
		return int(m.secondary)
	}
	return 0
}

func (m *MBC1) Read(address uint16) (uint8, error) {
	switch {
	case address <= 0x3FFF:
		return m.rom[romOffset(m.fixedBank(), int(address), 0x4000, len(m.rom))], nil
	case address >= 0x4000 && address <= 0x7FFF:
		return m.rom[romOffset(m.switchableBank(), int(address-0x4000), 0x4000, len(m.rom))], nil
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0, mem.NewFault(mem.Disabled, address)
		}
		return m.ram[ramOffset(m.ramBank(), int(address-0xA000), 0x2000, len(m.ram))], nil
	default:
		return 0, mem.NewFault(mem.Range, address)
	}
}

func (m *MBC1) Write(address uint16, value uint8) error {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address >= 0x2000 && address <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			// writing 0 selects bank 1: a quirk of the hardware that makes
			// banks 0, 0x20, 0x40, 0x60 unreachable via the switchable window.
			bank = 1
		}
		m.primary = bank
	case address >= 0x4000 && address <= 0x5FFF:
		m.secondary = value & 0x03
	case address >= 0x6000 && address <= 0x7FFF:
		m.mode = value & 0x01
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return mem.NewFault(mem.Disabled, address)
		}
		m.ram[ramOffset(m.ramBank(), int(address-0xA000), 0x2000, len(m.ram))] = value
	default:
		return mem.NewFault(mem.Range, address)
	}
	return nil
}

func (m *MBC1) RAMBytes() []byte { return m.ram }
