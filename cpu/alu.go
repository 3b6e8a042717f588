package cpu

import "github.com/rgcarr/dmgcore/bit"

// The helpers below operate on register values directly and set flags,
// mirroring the teacher's instructions.go but expressed as pure functions
// over Registers so a micro-step closure can call them without caring
// which cycle of the instruction it's on.

func (c *CPU) incReg(v uint8) uint8 {
	result := v + 1
	c.Regs.SetFlagTo(FlagZero, result == 0)
	c.Regs.SetFlagTo(FlagHalf, v&0xF == 0xF)
	c.Regs.ResetFlag(FlagSub)
	return result
}

func (c *CPU) decReg(v uint8) uint8 {
	result := v - 1
	c.Regs.SetFlagTo(FlagZero, result == 0)
	c.Regs.SetFlagTo(FlagHalf, v&0xF == 0x0)
	c.Regs.SetFlag(FlagSub)
	return result
}

func (c *CPU) add(v uint8) {
	a := c.Regs.A
	result, carry := bit.CheckedAdd8(a, v)
	half := bit.HalfCarryAdd8(a, v, 0)

	c.Regs.SetFlagTo(FlagZero, result == 0)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.SetFlagTo(FlagHalf, half)
	c.Regs.SetFlagTo(FlagCarry, carry)
	c.Regs.A = result
}

func (c *CPU) adc(v uint8) {
	a := c.Regs.A
	carryIn := c.Regs.flagBit(FlagCarry)
	sum := uint16(a) + uint16(v) + uint16(carryIn)
	half := bit.HalfCarryAdd8(a, v, carryIn)

	c.Regs.SetFlagTo(FlagZero, uint8(sum) == 0)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.SetFlagTo(FlagHalf, half)
	c.Regs.SetFlagTo(FlagCarry, sum > 0xFF)
	c.Regs.A = uint8(sum)
}

func (c *CPU) sub(v uint8) {
	a := c.Regs.A
	result := a - v
	borrow := v > a
	half := bit.HalfCarrySub8(a, v, 0)

	c.Regs.SetFlagTo(FlagZero, result == 0)
	c.Regs.SetFlag(FlagSub)
	c.Regs.SetFlagTo(FlagHalf, half)
	c.Regs.SetFlagTo(FlagCarry, borrow)
	c.Regs.A = result
}

func (c *CPU) sbc(v uint8) {
	a := c.Regs.A
	borrowIn := c.Regs.flagBit(FlagCarry)
	diff := int(a) - int(v) - int(borrowIn)
	half := bit.HalfCarrySub8(a, v, borrowIn)

	c.Regs.SetFlagTo(FlagZero, uint8(diff) == 0)
	c.Regs.SetFlag(FlagSub)
	c.Regs.SetFlagTo(FlagHalf, half)
	c.Regs.SetFlagTo(FlagCarry, diff < 0)
	c.Regs.A = uint8(diff)
}

func (c *CPU) and(v uint8) {
	c.Regs.A &= v
	c.Regs.SetFlagTo(FlagZero, c.Regs.A == 0)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.SetFlag(FlagHalf)
	c.Regs.ResetFlag(FlagCarry)
}

func (c *CPU) or(v uint8) {
	c.Regs.A |= v
	c.Regs.SetFlagTo(FlagZero, c.Regs.A == 0)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.ResetFlag(FlagCarry)
}

func (c *CPU) xor(v uint8) {
	c.Regs.A ^= v
	c.Regs.SetFlagTo(FlagZero, c.Regs.A == 0)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.ResetFlag(FlagCarry)
}

func (c *CPU) cp(v uint8) {
	a := c.Regs.A
	result := a - v
	c.Regs.SetFlagTo(FlagZero, result == 0)
	c.Regs.SetFlag(FlagSub)
	c.Regs.SetFlagTo(FlagHalf, bit.HalfCarrySub8(a, v, 0))
	c.Regs.SetFlagTo(FlagCarry, v > a)
}

func (c *CPU) addToHL(v uint16) {
	hl := c.Regs.HL()
	result := hl + v
	c.Regs.ResetFlag(FlagSub)
	c.Regs.SetFlagTo(FlagHalf, bit.HalfCarryAdd16(hl, v))
	c.Regs.SetFlagTo(FlagCarry, uint32(hl)+uint32(v) > 0xFFFF)
	c.Regs.SetHL(result)
}

// addToSP implements the signed-immediate SP adjustment shared by ADD
// SP,e8 and LD HL,SP+e8: flags come from the unsigned low-byte addition,
// not from the signed 16-bit result, matching real hardware.
func addToSP(sp uint16, e int8) (result uint16, half, carry bool) {
	v := uint16(int16(e))
	half = (sp&0xF)+(v&0xF) > 0xF
	carry = (sp&0xFF)+(v&0xFF) > 0xFF
	result = sp + v
	return
}

func (c *CPU) rlc(v uint8) uint8 {
	carry := v&0x80 != 0
	result := v<<1 | v>>7
	c.Regs.SetFlagTo(FlagCarry, carry)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.SetFlagTo(FlagZero, result == 0)
	return result
}

func (c *CPU) rl(v uint8) uint8 {
	carryIn := c.Regs.flagBit(FlagCarry)
	carryOut := v&0x80 != 0
	result := v<<1 | carryIn
	c.Regs.SetFlagTo(FlagCarry, carryOut)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.SetFlagTo(FlagZero, result == 0)
	return result
}

func (c *CPU) rrc(v uint8) uint8 {
	carry := v&0x01 != 0
	result := v>>1 | v<<7
	c.Regs.SetFlagTo(FlagCarry, carry)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.SetFlagTo(FlagZero, result == 0)
	return result
}

func (c *CPU) rr(v uint8) uint8 {
	carryIn := c.Regs.flagBit(FlagCarry)
	carryOut := v&0x01 != 0
	result := v>>1 | carryIn<<7
	c.Regs.SetFlagTo(FlagCarry, carryOut)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.SetFlagTo(FlagZero, result == 0)
	return result
}

func (c *CPU) sla(v uint8) uint8 {
	carry := v&0x80 != 0
	result := v << 1
	c.Regs.SetFlagTo(FlagCarry, carry)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.SetFlagTo(FlagZero, result == 0)
	return result
}

func (c *CPU) sra(v uint8) uint8 {
	carry := v&0x01 != 0
	result := (v >> 1) | (v & 0x80)
	c.Regs.SetFlagTo(FlagCarry, carry)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.SetFlagTo(FlagZero, result == 0)
	return result
}

func (c *CPU) srl(v uint8) uint8 {
	carry := v&0x01 != 0
	result := v >> 1
	c.Regs.SetFlagTo(FlagCarry, carry)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.SetFlagTo(FlagZero, result == 0)
	return result
}

func (c *CPU) swap(v uint8) uint8 {
	result := v<<4 | v>>4
	c.Regs.SetFlagTo(FlagZero, result == 0)
	c.Regs.ResetFlag(FlagSub)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.ResetFlag(FlagCarry)
	return result
}

func (c *CPU) bitTest(index uint8, v uint8) {
	c.Regs.SetFlagTo(FlagZero, !bit.IsSet(index, v))
	c.Regs.ResetFlag(FlagSub)
	c.Regs.SetFlag(FlagHalf)
}

func (c *CPU) daa() {
	a := c.Regs.A
	adjust := uint8(0)
	carry := false

	if c.Regs.IsSet(FlagHalf) || (!c.Regs.IsSet(FlagSub) && a&0xF > 0x9) {
		adjust |= 0x06
	}
	if c.Regs.IsSet(FlagCarry) || (!c.Regs.IsSet(FlagSub) && a > 0x99) {
		adjust |= 0x60
		carry = true
	}

	if c.Regs.IsSet(FlagSub) {
		a -= adjust
	} else {
		a += adjust
	}

	c.Regs.A = a
	c.Regs.SetFlagTo(FlagZero, a == 0)
	c.Regs.ResetFlag(FlagHalf)
	c.Regs.SetFlagTo(FlagCarry, carry)
}
