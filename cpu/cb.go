package cpu

// cbStep runs as the second M-cycle of every CB-prefixed instruction: it
// fetches the CB opcode byte and, for register operands, completes the
// instruction immediately. Operand 6 — (HL) — needs extra bus cycles, so
// this appends the remaining micro-steps to the queue rather than running
// them inline, keeping the overall cycle count correct (2 for a register
// operand, 3 for BIT (HL), 4 for the read-modify-write groups on (HL)).
func cbStep(c *CPU) {
	cbOpcode := c.readPC()
	group := cbOpcode >> 6
	row := (cbOpcode >> 3) & 0x7
	idx := cbOpcode & 0x7

	if idx != 6 {
		switch group {
		case 0:
			setR8(c, idx, applyShift(c, row, getR8(c, idx)))
		case 1:
			c.bitTest(row, getR8(c, idx))
		case 2:
			setR8(c, idx, getR8(c, idx)&^(1<<row))
		default:
			setR8(c, idx, getR8(c, idx)|(1<<row))
		}
		return
	}

	switch group {
	case 0: // rotate/shift (HL): read, modify, write
		c.queue = append(c.queue,
			func(c *CPU) { c.rmwLatch = c.bus.Read(c.Regs.HL()) },
			func(c *CPU) { c.bus.Write(c.Regs.HL(), applyShift(c, row, c.rmwLatch)) },
		)
	case 1: // BIT b,(HL): read and test, no write-back
		c.queue = append(c.queue,
			func(c *CPU) { c.bitTest(row, c.bus.Read(c.Regs.HL())) },
		)
	case 2: // RES b,(HL)
		c.queue = append(c.queue,
			func(c *CPU) { c.rmwLatch = c.bus.Read(c.Regs.HL()) },
			func(c *CPU) { c.bus.Write(c.Regs.HL(), c.rmwLatch&^(1<<row)) },
		)
	default: // SET b,(HL)
		c.queue = append(c.queue,
			func(c *CPU) { c.rmwLatch = c.bus.Read(c.Regs.HL()) },
			func(c *CPU) { c.bus.Write(c.Regs.HL(), c.rmwLatch|(1<<row)) },
		)
	}
}

// applyShift dispatches the rotate/shift/swap sub-group (CB opcodes
// 0x00-0x3F): RLC, RRC, RL, RR, SLA, SRA, SWAP, SRL in that order.
func applyShift(c *CPU, row uint8, v uint8) uint8 {
	switch row {
	case 0:
		return c.rlc(v)
	case 1:
		return c.rrc(v)
	case 2:
		return c.rl(v)
	case 3:
		return c.rr(v)
	case 4:
		return c.sla(v)
	case 5:
		return c.sra(v)
	case 6:
		return c.swap(v)
	default:
		return c.srl(v)
	}
}
