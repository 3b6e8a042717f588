package cpu

import "github.com/rgcarr/dmgcore/bit"

// getR8/setR8 resolve the 3-bit register-field encoding shared by LD,
// ALU, INC/DEC and the CB-prefixed block: 0-5 are B,C,D,E,H,L; 6 is the
// byte at (HL); 7 is A.
func getR8(c *CPU, idx uint8) uint8 {
	switch idx {
	case 0:
		return c.Regs.B
	case 1:
		return c.Regs.C
	case 2:
		return c.Regs.D
	case 3:
		return c.Regs.E
	case 4:
		return c.Regs.H
	case 5:
		return c.Regs.L
	case 6:
		return c.bus.Read(c.Regs.HL())
	default:
		return c.Regs.A
	}
}

func setR8(c *CPU, idx uint8, v uint8) {
	switch idx {
	case 0:
		c.Regs.B = v
	case 1:
		c.Regs.C = v
	case 2:
		c.Regs.D = v
	case 3:
		c.Regs.E = v
	case 4:
		c.Regs.H = v
	case 5:
		c.Regs.L = v
	case 6:
		c.bus.Write(c.Regs.HL(), v)
	default:
		c.Regs.A = v
	}
}

// getR16Group1/setR16Group1 resolve the 2-bit pair encoding used by LD
// rr,d16 / INC rr / DEC rr / ADD HL,rr: BC, DE, HL, SP.
func getR16Group1(c *CPU, idx uint8) uint16 {
	switch idx {
	case 0:
		return c.Regs.BC()
	case 1:
		return c.Regs.DE()
	case 2:
		return c.Regs.HL()
	default:
		return c.Regs.SP
	}
}

func setR16Group1(c *CPU, idx uint8, v uint16) {
	switch idx {
	case 0:
		c.Regs.SetBC(v)
	case 1:
		c.Regs.SetDE(v)
	case 2:
		c.Regs.SetHL(v)
	default:
		c.Regs.SP = v
	}
}

// getR16Group2/setR16Group2 resolve the PUSH/POP pair encoding, which
// swaps SP for AF relative to group 1.
func getR16Group2(c *CPU, idx uint8) uint16 {
	if idx == 3 {
		return c.Regs.AF()
	}
	return getR16Group1(c, idx)
}

func setR16Group2(c *CPU, idx uint8, v uint16) {
	if idx == 3 {
		c.Regs.SetAF(v)
		return
	}
	setR16Group1(c, idx, v)
}

// indirectAddr resolves the BC/DE/HL+/HL- indirect-addressing group used
// by LD (rr),A and LD A,(rr), applying HL's post-increment/decrement.
func indirectAddr(c *CPU, idx uint8) uint16 {
	switch idx {
	case 0:
		return c.Regs.BC()
	case 1:
		return c.Regs.DE()
	case 2:
		v := c.Regs.HL()
		c.Regs.SetHL(v + 1)
		return v
	default:
		v := c.Regs.HL()
		c.Regs.SetHL(v - 1)
		return v
	}
}

// condTrue evaluates one of the four branch conditions: NZ, Z, NC, C.
func condTrue(c *CPU, cc uint8) bool {
	switch cc {
	case 0:
		return !c.Regs.IsSet(FlagZero)
	case 1:
		return c.Regs.IsSet(FlagZero)
	case 2:
		return !c.Regs.IsSet(FlagCarry)
	default:
		return c.Regs.IsSet(FlagCarry)
	}
}

// applyALU dispatches the 3-bit ALU-operation field shared by the 0x80-0xBF
// block and the 0xC6-style A,d8 immediates: ADD, ADC, SUB, SBC, AND, XOR,
// OR, CP in that order.
func applyALU(c *CPU, op uint8, v uint8) {
	switch op {
	case 0:
		c.add(v)
	case 1:
		c.adc(v)
	case 2:
		c.sub(v)
	case 3:
		c.sbc(v)
	case 4:
		c.and(v)
	case 5:
		c.xor(v)
	case 6:
		c.or(v)
	default:
		c.cp(v)
	}
}

func jpSteps() []step {
	return []step{
		func(c *CPU) {},
		func(c *CPU) { c.immLatch = c.readPC() },
		func(c *CPU) { c.rmwLatch = c.readPC() },
		func(c *CPU) { c.Regs.PC = bit.Combine(c.rmwLatch, c.immLatch) },
	}
}

func jpccSteps(cc uint8) []step {
	return []step{
		func(c *CPU) {},
		func(c *CPU) { c.immLatch = c.readPC() },
		func(c *CPU) {
			c.rmwLatch = c.readPC()
			if condTrue(c, cc) {
				c.queue = append(c.queue, func(c *CPU) {
					c.Regs.PC = bit.Combine(c.rmwLatch, c.immLatch)
				})
			}
		},
	}
}

func jrSteps() []step {
	return []step{
		func(c *CPU) {},
		func(c *CPU) { c.immLatch = c.readPC() },
		func(c *CPU) { c.Regs.PC = uint16(int32(c.Regs.PC) + int32(int8(c.immLatch))) },
	}
}

func jrccSteps(cc uint8) []step {
	return []step{
		func(c *CPU) {},
		func(c *CPU) {
			c.immLatch = c.readPC()
			if condTrue(c, cc) {
				c.queue = append(c.queue, func(c *CPU) {
					c.Regs.PC = uint16(int32(c.Regs.PC) + int32(int8(c.immLatch)))
				})
			}
		},
	}
}

func callSteps() []step {
	return []step{
		func(c *CPU) {},
		func(c *CPU) { c.immLatch = c.readPC() },
		func(c *CPU) { c.rmwLatch = c.readPC() },
		func(c *CPU) {},
		func(c *CPU) {
			c.Regs.SP--
			c.bus.Write(c.Regs.SP, bit.High(c.Regs.PC))
		},
		func(c *CPU) {
			c.Regs.SP--
			c.bus.Write(c.Regs.SP, bit.Low(c.Regs.PC))
			c.Regs.PC = bit.Combine(c.rmwLatch, c.immLatch)
		},
	}
}

func callccSteps(cc uint8) []step {
	return []step{
		func(c *CPU) {},
		func(c *CPU) { c.immLatch = c.readPC() },
		func(c *CPU) {
			c.rmwLatch = c.readPC()
			if condTrue(c, cc) {
				target := bit.Combine(c.rmwLatch, c.immLatch)
				c.queue = append(c.queue,
					func(c *CPU) {},
					func(c *CPU) {
						c.Regs.SP--
						c.bus.Write(c.Regs.SP, bit.High(c.Regs.PC))
					},
					func(c *CPU) {
						c.Regs.SP--
						c.bus.Write(c.Regs.SP, bit.Low(c.Regs.PC))
						c.Regs.PC = target
					},
				)
			}
		},
	}
}

func retSteps(enableIME bool) []step {
	return []step{
		func(c *CPU) {},
		func(c *CPU) { c.immLatch = c.bus.Read(c.Regs.SP); c.Regs.SP++ },
		func(c *CPU) { c.rmwLatch = c.bus.Read(c.Regs.SP); c.Regs.SP++ },
		func(c *CPU) {
			c.Regs.PC = bit.Combine(c.rmwLatch, c.immLatch)
			if enableIME {
				c.ime = imeEnabled
			}
		},
	}
}

func retccSteps(cc uint8) []step {
	return []step{
		func(c *CPU) {},
		func(c *CPU) {
			if condTrue(c, cc) {
				c.queue = append(c.queue,
					func(c *CPU) { c.immLatch = c.bus.Read(c.Regs.SP); c.Regs.SP++ },
					func(c *CPU) { c.rmwLatch = c.bus.Read(c.Regs.SP); c.Regs.SP++ },
					func(c *CPU) { c.Regs.PC = bit.Combine(c.rmwLatch, c.immLatch) },
				)
			}
		},
	}
}

func rstSteps(target uint16) []step {
	return []step{
		func(c *CPU) {},
		func(c *CPU) {},
		func(c *CPU) {
			c.Regs.SP--
			c.bus.Write(c.Regs.SP, bit.High(c.Regs.PC))
		},
		func(c *CPU) {
			c.Regs.SP--
			c.bus.Write(c.Regs.SP, bit.Low(c.Regs.PC))
			c.Regs.PC = target
		},
	}
}
