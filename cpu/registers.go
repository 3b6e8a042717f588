package cpu

import "github.com/rgcarr/dmgcore/bit"

// Flag is one of the four flags packed into the high nibble of F; the low
// nibble always reads back as zero, per spec §8's flag-register property.
type Flag uint8

const (
	FlagZero  Flag = 0x80
	FlagSub   Flag = 0x40
	FlagHalf  Flag = 0x20
	FlagCarry Flag = 0x10
)

// Registers holds the eight 8-bit registers, paired into AF/BC/DE/HL, plus
// SP and PC. F is kept separately masked so its low nibble never drifts.
type Registers struct {
	A, B, C, D, E, H, L uint8
	F                   uint8
	SP, PC              uint16
}

func (r *Registers) AF() uint16 { return bit.Combine(r.A, r.F&0xF0) }
func (r *Registers) BC() uint16 { return bit.Combine(r.B, r.C) }
func (r *Registers) DE() uint16 { return bit.Combine(r.D, r.E) }
func (r *Registers) HL() uint16 { return bit.Combine(r.H, r.L) }

func (r *Registers) SetAF(v uint16) {
	r.A = bit.High(v)
	r.F = bit.Low(v) & 0xF0
}
func (r *Registers) SetBC(v uint16) { r.B = bit.High(v); r.C = bit.Low(v) }
func (r *Registers) SetDE(v uint16) { r.D = bit.High(v); r.E = bit.Low(v) }
func (r *Registers) SetHL(v uint16) { r.H = bit.High(v); r.L = bit.Low(v) }

func (r *Registers) SetFlag(f Flag)   { r.F |= uint8(f) }
func (r *Registers) ResetFlag(f Flag) { r.F &^= uint8(f) }

func (r *Registers) SetFlagTo(f Flag, on bool) {
	if on {
		r.SetFlag(f)
	} else {
		r.ResetFlag(f)
	}
}

func (r *Registers) IsSet(f Flag) bool { return r.F&uint8(f) != 0 }

// flagBit returns 0 or 1 for use in rotate-through-carry instructions.
func (r *Registers) flagBit(f Flag) uint8 {
	if r.IsSet(f) {
		return 1
	}
	return 0
}
