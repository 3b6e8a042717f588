// Package debug exposes read-only introspection over a running
// motherboard: the register file, a disassembly window around PC, and
// VRAM/OAM tile dumps. It is the data backing for an interactive debugger,
// not the debugger itself — matching the teacher's own jeebie/debug
// package, which backs its SDL2 debug window the same way.
package debug

import (
	"fmt"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/cpu"
)

// Registers is a snapshot of the CPU's register file and run state.
type Registers struct {
	A, B, C, D, E, H, L, F uint8
	SP, PC                 uint16
	AF, BC, DE, HL         uint16
	IME, Halted, Stopped   bool
	Locked                 bool
}

// SnapshotRegisters reads the current register file off a live CPU.
func SnapshotRegisters(c *cpu.CPU) Registers {
	r := c.Regs
	return Registers{
		A: r.A, B: r.B, C: r.C, D: r.D, E: r.E, H: r.H, L: r.L, F: r.F,
		SP: r.SP, PC: r.PC,
		AF: r.AF(), BC: r.BC(), DE: r.DE(), HL: r.HL(),
		IME: c.IME(), Halted: c.Halted(), Stopped: c.Stopped(), Locked: c.Locked(),
	}
}

// BusReader is the narrow read surface the disassembler and tile dumpers
// need — satisfied by *mem.Bus without importing it for the type.
type BusReader interface {
	Read(address uint16) uint8
}

// Line is one disassembled instruction.
type Line struct {
	Address  uint16
	Mnemonic string
	Length   int
	RawBytes []uint8
}

// Disassemble returns up to count instructions starting at pc. Opcodes
// outside the small set of mnemonics known here fall back to a raw byte
// dump ("DB $xx") rather than failing — this is an inspection aid, not a
// full disassembler, and is deliberately minimal (spec's debug surface
// excludes an interactive shell around it).
func Disassemble(bus BusReader, pc uint16, count int) []Line {
	lines := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		opcode := bus.Read(pc)
		mnemonic, length := decodeMnemonic(bus, pc, opcode)

		raw := make([]uint8, length)
		for j := 0; j < length; j++ {
			raw[j] = bus.Read(pc + uint16(j))
		}

		lines = append(lines, Line{Address: pc, Mnemonic: mnemonic, Length: length, RawBytes: raw})
		pc += uint16(length)
	}
	return lines
}

var knownOpcodes = map[uint8]struct {
	mnemonic string
	length   int
}{
	0x00: {"NOP", 1},
	0x76: {"HALT", 1},
	0x10: {"STOP", 2},
	0xF3: {"DI", 1},
	0xFB: {"EI", 1},
	0xC3: {"JP $%04X", 3},
	0xCD: {"CALL $%04X", 3},
	0xC9: {"RET", 1},
	0x18: {"JR $%+d", 2},
	0x06: {"LD B,$%02X", 2},
	0x0E: {"LD C,$%02X", 2},
	0x3E: {"LD A,$%02X", 2},
	0xEA: {"LD ($%04X),A", 3},
	0xFA: {"LD A,($%04X)", 3},
}

func decodeMnemonic(bus BusReader, pc uint16, opcode uint8) (string, int) {
	if opcode == 0xCB {
		return fmt.Sprintf("CB $%02X", bus.Read(pc+1)), 2
	}

	entry, ok := knownOpcodes[opcode]
	if !ok {
		return fmt.Sprintf("DB $%02X", opcode), 1
	}

	switch entry.length {
	case 1:
		return entry.mnemonic, 1
	case 2:
		operand := bus.Read(pc + 1)
		if entry.mnemonic == "JR $%+d" {
			return fmt.Sprintf(entry.mnemonic, int8(operand)), 2
		}
		return fmt.Sprintf(entry.mnemonic, operand), 2
	case 3:
		lo, hi := bus.Read(pc+1), bus.Read(pc+2)
		return fmt.Sprintf(entry.mnemonic, uint16(hi)<<8|uint16(lo)), 3
	default:
		return entry.mnemonic, entry.length
	}
}

// TileDump is a raw 16-byte 8x8 1bpp-per-plane tile, read verbatim out of
// VRAM tile data ($8000-$97FF).
type TileDump [16]byte

// DumpTiles reads every tile out of VRAM tile data, 384 tiles total
// across the three addressing blocks ($8000-$97FF).
func DumpTiles(bus BusReader) []TileDump {
	const tileCount = 384
	const tileBytes = 16

	tiles := make([]TileDump, tileCount)
	for i := 0; i < tileCount; i++ {
		base := addr.VRAMStart + uint16(i*tileBytes)
		var t TileDump
		for j := 0; j < tileBytes; j++ {
			t[j] = bus.Read(base + uint16(j))
		}
		tiles[i] = t
	}
	return tiles
}

// OAMEntry mirrors one 4-byte sprite attribute table entry.
type OAMEntry struct {
	Y, X, Tile, Flags uint8
}

// DumpOAM reads all 40 OAM entries.
func DumpOAM(bus BusReader) []OAMEntry {
	entries := make([]OAMEntry, 40)
	for i := range entries {
		base := addr.OAMStart + uint16(i*4)
		entries[i] = OAMEntry{
			Y:     bus.Read(base),
			X:     bus.Read(base + 1),
			Tile:  bus.Read(base + 2),
			Flags: bus.Read(base + 3),
		}
	}
	return entries
}
