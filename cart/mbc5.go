package cart

import "github.com/rgcarr/dmgcore/mem"

// MBC5 widens the ROM bank select to 9 bits split across two write
// registers and drops MBC1/MBC3's bank-0 write quirk: a written 0 is stored
// as 0, so bank 0 really is reachable through the switchable window.
type MBC5 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBankLo  uint8 // low 8 bits, $2000-$2FFF
	romBankHi  uint8 // bit 8, $3000-$3FFF
	ramBank    uint8 // 4-bit, $4000-$5FFF
}

// NewMBC5 returns an MBC5 mapper over rom with ramSize bytes of cartridge
// RAM (0 for none).
func NewMBC5(rom []byte, ramSize int) *MBC5 {
	return &MBC5{rom: rom, ram: make([]byte, ramSize)}
}

func (m *MBC5) romBank() int {
	return int(m.romBankHi)<<8 | int(m.romBankLo)
}

func (m *MBC5) Read(address uint16) (uint8, error) {
	switch {
	case address <= 0x3FFF:
		return m.rom[romOffset(0, int(address), 0x4000, len(m.rom))], nil
	case address >= 0x4000 && address <= 0x7FFF:
		return m.rom[romOffset(m.romBank(), int(address-0x4000), 0x4000, len(m.rom))], nil
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0, mem.NewFault(mem.Disabled, address)
		}
		return m.ram[ramOffset(int(m.ramBank), int(address-0xA000), 0x2000, len(m.ram))], nil
	default:
		return 0, mem.NewFault(mem.Range, address)
	}
}

func (m *MBC5) Write(address uint16, value uint8) error {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address >= 0x2000 && address <= 0x2FFF:
		m.romBankLo = value
	case address >= 0x3000 && address <= 0x3FFF:
		m.romBankHi = value & 0x01
	case address >= 0x4000 && address <= 0x5FFF:
		m.ramBank = value & 0x0F
	case address >= 0x6000 && address <= 0x7FFF:
		// no control register in this window for MBC5
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return mem.NewFault(mem.Disabled, address)
		}
		m.ram[ramOffset(int(m.ramBank), int(address-0xA000), 0x2000, len(m.ram))] = value
	default:
		return mem.NewFault(mem.Range, address)
	}
	return nil
}

func (m *MBC5) RAMBytes() []byte { return m.ram }
