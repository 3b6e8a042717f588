package cpu

import "github.com/rgcarr/dmgcore/bit"

// decode turns a fetched opcode into the queue of micro-steps that execute
// it. The slice's length is exactly the instruction's M-cycle count; the
// first element runs in the same Cycle call as the fetch that produced it
// (the opcode-read cycle), and the rest are left queued for CPU.Cycle to
// pop one per call. This mirrors the regular bit-field structure real SM83
// opcodes are built from, rather than a 256-entry literal table.
func decode(opcode uint8) []step {
	if opcode == 0xCB {
		return []step{func(c *CPU) {}, cbStep}
	}

	// 01xxxxxx: LD r,r' (0x76 in this block is HALT, not LD (HL),(HL))
	if opcode >= 0x40 && opcode <= 0x7F {
		if opcode == 0x76 {
			return []step{func(c *CPU) { c.enterHalt() }}
		}
		dst := (opcode >> 3) & 0x7
		src := opcode & 0x7
		if dst == 6 || src == 6 {
			return []step{func(c *CPU) {}, func(c *CPU) { setR8(c, dst, getR8(c, src)) }}
		}
		return []step{func(c *CPU) { setR8(c, dst, getR8(c, src)) }}
	}

	// 10ooorrr: ALU A,r
	if opcode >= 0x80 && opcode <= 0xBF {
		op := (opcode >> 3) & 0x7
		src := opcode & 0x7
		if src == 6 {
			return []step{func(c *CPU) {}, func(c *CPU) { applyALU(c, op, getR8(c, 6)) }}
		}
		return []step{func(c *CPU) { applyALU(c, op, getR8(c, src)) }}
	}

	switch opcode {
	case 0x00: // NOP
		return []step{func(c *CPU) {}}
	case 0x10: // STOP
		return []step{func(c *CPU) { c.enterStop() }}
	case 0xF3: // DI
		return []step{func(c *CPU) { c.requestDI() }}
	case 0xFB: // EI
		return []step{func(c *CPU) { c.requestEI() }}
	case 0x27: // DAA
		return []step{func(c *CPU) { c.daa() }}
	case 0x2F: // CPL
		return []step{func(c *CPU) {
			c.Regs.A = ^c.Regs.A
			c.Regs.SetFlag(FlagSub)
			c.Regs.SetFlag(FlagHalf)
		}}
	case 0x37: // SCF
		return []step{func(c *CPU) {
			c.Regs.ResetFlag(FlagSub)
			c.Regs.ResetFlag(FlagHalf)
			c.Regs.SetFlag(FlagCarry)
		}}
	case 0x3F: // CCF
		return []step{func(c *CPU) {
			c.Regs.ResetFlag(FlagSub)
			c.Regs.ResetFlag(FlagHalf)
			c.Regs.SetFlagTo(FlagCarry, !c.Regs.IsSet(FlagCarry))
		}}
	case 0x07: // RLCA
		return []step{func(c *CPU) { c.Regs.A = c.rlc(c.Regs.A); c.Regs.ResetFlag(FlagZero) }}
	case 0x0F: // RRCA
		return []step{func(c *CPU) { c.Regs.A = c.rrc(c.Regs.A); c.Regs.ResetFlag(FlagZero) }}
	case 0x17: // RLA
		return []step{func(c *CPU) { c.Regs.A = c.rl(c.Regs.A); c.Regs.ResetFlag(FlagZero) }}
	case 0x1F: // RRA
		return []step{func(c *CPU) { c.Regs.A = c.rr(c.Regs.A); c.Regs.ResetFlag(FlagZero) }}
	case 0xE9: // JP HL
		return []step{func(c *CPU) { c.Regs.PC = c.Regs.HL() }}
	case 0xF9: // LD SP,HL
		return []step{func(c *CPU) {}, func(c *CPU) { c.Regs.SP = c.Regs.HL() }}
	case 0xC9: // RET
		return retSteps(false)
	case 0xD9: // RETI
		return retSteps(true)
	case 0xCD: // CALL a16
		return callSteps()
	case 0xC3: // JP a16
		return jpSteps()
	case 0x18: // JR e8
		return jrSteps()
	case 0xE0: // LDH (a8),A
		return []step{
			func(c *CPU) {},
			func(c *CPU) { c.immLatch = c.readPC() },
			func(c *CPU) { c.bus.Write(0xFF00+uint16(c.immLatch), c.Regs.A) },
		}
	case 0xF0: // LDH A,(a8)
		return []step{
			func(c *CPU) {},
			func(c *CPU) { c.immLatch = c.readPC() },
			func(c *CPU) { c.Regs.A = c.bus.Read(0xFF00 + uint16(c.immLatch)) },
		}
	case 0xE2: // LD (C),A
		return []step{func(c *CPU) {}, func(c *CPU) { c.bus.Write(0xFF00+uint16(c.Regs.C), c.Regs.A) }}
	case 0xF2: // LD A,(C)
		return []step{func(c *CPU) {}, func(c *CPU) { c.Regs.A = c.bus.Read(0xFF00 + uint16(c.Regs.C)) }}
	case 0xEA: // LD (a16),A
		return []step{
			func(c *CPU) {},
			func(c *CPU) { c.immLatch = c.readPC() },
			func(c *CPU) { c.rmwLatch = c.readPC() },
			func(c *CPU) { c.bus.Write(bit.Combine(c.rmwLatch, c.immLatch), c.Regs.A) },
		}
	case 0xFA: // LD A,(a16)
		return []step{
			func(c *CPU) {},
			func(c *CPU) { c.immLatch = c.readPC() },
			func(c *CPU) { c.rmwLatch = c.readPC() },
			func(c *CPU) { c.Regs.A = c.bus.Read(bit.Combine(c.rmwLatch, c.immLatch)) },
		}
	case 0xE8: // ADD SP,e8
		return []step{
			func(c *CPU) {},
			func(c *CPU) { c.immLatch = c.readPC() },
			func(c *CPU) {
				result, half, carry := addToSP(c.Regs.SP, int8(c.immLatch))
				c.Regs.ResetFlag(FlagZero)
				c.Regs.ResetFlag(FlagSub)
				c.Regs.SetFlagTo(FlagHalf, half)
				c.Regs.SetFlagTo(FlagCarry, carry)
				c.Regs.SP = result
			},
			func(c *CPU) {},
		}
	case 0xF8: // LD HL,SP+e8
		return []step{
			func(c *CPU) {},
			func(c *CPU) { c.immLatch = c.readPC() },
			func(c *CPU) {
				result, half, carry := addToSP(c.Regs.SP, int8(c.immLatch))
				c.Regs.ResetFlag(FlagZero)
				c.Regs.ResetFlag(FlagSub)
				c.Regs.SetFlagTo(FlagHalf, half)
				c.Regs.SetFlagTo(FlagCarry, carry)
				c.Regs.SetHL(result)
			},
		}
	case 0x08: // LD (a16),SP
		return []step{
			func(c *CPU) {},
			func(c *CPU) { c.immLatch = c.readPC() },
			func(c *CPU) { c.rmwLatch = c.readPC() },
			func(c *CPU) { c.bus.Write(bit.Combine(c.rmwLatch, c.immLatch), bit.Low(c.Regs.SP)) },
			func(c *CPU) { c.bus.Write(bit.Combine(c.rmwLatch, c.immLatch)+1, bit.High(c.Regs.SP)) },
		}
	}

	// 00rr0001: LD rr,d16
	if opcode&0xCF == 0x01 {
		idx := (opcode >> 4) & 0x3
		return []step{
			func(c *CPU) {},
			func(c *CPU) { c.immLatch = c.readPC() },
			func(c *CPU) { setR16Group1(c, idx, bit.Combine(c.readPC(), c.immLatch)) },
		}
	}

	// 00rr0011: INC rr
	if opcode&0xC7 == 0x03 {
		idx := (opcode >> 4) & 0x3
		return []step{func(c *CPU) {}, func(c *CPU) { setR16Group1(c, idx, getR16Group1(c, idx)+1) }}
	}
	// 00rr1011: DEC rr
	if opcode&0xC7 == 0x0B {
		idx := (opcode >> 4) & 0x3
		return []step{func(c *CPU) {}, func(c *CPU) { setR16Group1(c, idx, getR16Group1(c, idx)-1) }}
	}

	// 00rr1001: ADD HL,rr
	if opcode&0xC7 == 0x09 {
		idx := (opcode >> 4) & 0x3
		return []step{func(c *CPU) {}, func(c *CPU) { c.addToHL(getR16Group1(c, idx)) }}
	}

	// 00xxx100: INC r
	if opcode&0xC7 == 0x04 {
		idx := (opcode >> 3) & 0x7
		if idx == 6 {
			return []step{
				func(c *CPU) {},
				func(c *CPU) { c.rmwLatch = c.bus.Read(c.Regs.HL()) },
				func(c *CPU) { c.bus.Write(c.Regs.HL(), c.incReg(c.rmwLatch)) },
			}
		}
		return []step{func(c *CPU) { setR8(c, idx, c.incReg(getR8(c, idx))) }}
	}
	// 00xxx101: DEC r
	if opcode&0xC7 == 0x05 {
		idx := (opcode >> 3) & 0x7
		if idx == 6 {
			return []step{
				func(c *CPU) {},
				func(c *CPU) { c.rmwLatch = c.bus.Read(c.Regs.HL()) },
				func(c *CPU) { c.bus.Write(c.Regs.HL(), c.decReg(c.rmwLatch)) },
			}
		}
		return []step{func(c *CPU) { setR8(c, idx, c.decReg(getR8(c, idx))) }}
	}

	// 00xxx110: LD r,d8
	if opcode&0xC7 == 0x06 {
		idx := (opcode >> 3) & 0x7
		if idx == 6 {
			return []step{
				func(c *CPU) {},
				func(c *CPU) { c.immLatch = c.readPC() },
				func(c *CPU) { c.bus.Write(c.Regs.HL(), c.immLatch) },
			}
		}
		return []step{func(c *CPU) {}, func(c *CPU) { setR8(c, idx, c.readPC()) }}
	}

	// 00rr0010: LD (rr),A for BC,DE,HL+,HL-
	if opcode&0xCF == 0x02 {
		idx := (opcode >> 4) & 0x3
		return []step{func(c *CPU) {}, func(c *CPU) { c.bus.Write(indirectAddr(c, idx), c.Regs.A) }}
	}
	// 00rr1010: LD A,(rr)
	if opcode&0xCF == 0x0A {
		idx := (opcode >> 4) & 0x3
		return []step{func(c *CPU) {}, func(c *CPU) { c.Regs.A = c.bus.Read(indirectAddr(c, idx)) }}
	}

	// 11rr0001: POP rr (group2: BC,DE,HL,AF)
	if opcode&0xCF == 0xC1 {
		idx := (opcode >> 4) & 0x3
		return []step{
			func(c *CPU) {},
			func(c *CPU) { c.immLatch = c.bus.Read(c.Regs.SP); c.Regs.SP++ },
			func(c *CPU) {
				hi := c.bus.Read(c.Regs.SP)
				c.Regs.SP++
				setR16Group2(c, idx, bit.Combine(hi, c.immLatch))
			},
		}
	}
	// 11rr0101: PUSH rr
	if opcode&0xCF == 0xC5 {
		idx := (opcode >> 4) & 0x3
		return []step{
			func(c *CPU) {},
			func(c *CPU) {},
			func(c *CPU) {
				c.Regs.SP--
				c.bus.Write(c.Regs.SP, bit.High(getR16Group2(c, idx)))
			},
			func(c *CPU) {
				c.Regs.SP--
				c.bus.Write(c.Regs.SP, bit.Low(getR16Group2(c, idx)))
			},
		}
	}

	// 11ooo110: ALU A,d8 at 0xC6,CE,D6,DE,E6,EE,F6,FE
	if opcode&0xC7 == 0xC6 {
		op := (opcode >> 3) & 0x7
		return []step{func(c *CPU) {}, func(c *CPU) { applyALU(c, op, c.readPC()) }}
	}

	// 11xxx111: RST n
	if opcode&0xC7 == 0xC7 {
		n := uint16(opcode & 0x38)
		return rstSteps(n)
	}

	// 00cc000 at 0x20/0x28/0x30/0x38: JR cc,e8
	if opcode&0xE7 == 0x20 {
		cc := (opcode >> 3) & 0x3
		return jrccSteps(cc)
	}

	// 11cc010: JP cc,a16
	if opcode&0xC7 == 0xC2 {
		cc := (opcode >> 3) & 0x3
		return jpccSteps(cc)
	}

	// 11cc100: CALL cc,a16
	if opcode&0xE7 == 0xC4 {
		cc := (opcode >> 3) & 0x3
		return callccSteps(cc)
	}

	// 11cc000: RET cc
	if opcode&0xC7 == 0xC0 {
		cc := (opcode >> 3) & 0x3
		return retccSteps(cc)
	}

	// Illegal opcode on real hardware (D3,DB,DD,E3,E4,EB,EC,ED,F4,FC,FD):
	// freezes the CPU rather than executing anything.
	return []step{func(c *CPU) { c.enterIllegal() }}
}
