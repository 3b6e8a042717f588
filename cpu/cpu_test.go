package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/mem"
	"github.com/rgcarr/dmgcore/pic"
)

func newTestCPU(t *testing.T) (*CPU, *mem.Bus) {
	t.Helper()
	bus := mem.NewBus()
	ram := mem.NewRAM(0x0000, 0x10000)
	bus.Map(0x0000, 0xFFFF, mem.ClassExternal, ram, "ram")
	p := pic.New()
	bus.Map(addr.IF, addr.IF, mem.ClassInternal, p, "pic-if")
	bus.Map(addr.IE, addr.IE, mem.ClassInternal, p, "pic-ie")
	c := New(bus, p, nil)
	return c, bus
}

// runInstruction runs exactly one instruction to completion: the fetch
// cycle plus every queued micro-step it produces.
func runInstruction(c *CPU) {
	c.Cycle()
	for !c.AtInstructionBoundary() {
		c.Cycle()
	}
}

func loadProgram(bus *mem.Bus, at uint16, bytes ...uint8) {
	for i, b := range bytes {
		bus.Write(at+uint16(i), b)
	}
}

func TestResetMatchesPostBootRegisterState(t *testing.T) {
	c, _ := newTestCPU(t)
	c.Reset()

	assert.Equal(t, uint16(0x01B0), c.Regs.AF())
	assert.Equal(t, uint16(0x0100), c.Regs.PC)
	assert.Equal(t, uint16(0xFFFE), c.Regs.SP)
	assert.False(t, c.IME())
}

func TestNOPOnlyAdvancesPC(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0x0000, 0x00)

	runInstruction(c)

	assert.Equal(t, uint16(0x0001), c.Regs.PC)
}

func TestLDBImmediateLoadsRegister(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0x0000, 0x06, 0x42) // LD B,$42

	runInstruction(c)

	assert.Equal(t, uint8(0x42), c.Regs.B)
	assert.Equal(t, uint16(0x0002), c.Regs.PC)
}

func TestINCBSetsZeroAndHalfCarryOnOverflow(t *testing.T) {
	c, bus := newTestCPU(t)
	c.Regs.B = 0xFF
	loadProgram(bus, 0x0000, 0x04) // INC B

	runInstruction(c)

	assert.Equal(t, uint8(0x00), c.Regs.B)
	assert.True(t, c.Regs.IsSet(FlagZero))
	assert.True(t, c.Regs.IsSet(FlagHalf))
	assert.False(t, c.Regs.IsSet(FlagSub))
}

func TestADDAAddsAndSetsCarryOnOverflow(t *testing.T) {
	c, bus := newTestCPU(t)
	c.Regs.A = 0xF0
	c.Regs.B = 0x20
	loadProgram(bus, 0x0000, 0x80) // ADD A,B

	runInstruction(c)

	assert.Equal(t, uint8(0x10), c.Regs.A)
	assert.True(t, c.Regs.IsSet(FlagCarry))
}

func TestLDFromHLIndirectLoadsMemory(t *testing.T) {
	c, bus := newTestCPU(t)
	c.Regs.SetHL(0x9000)
	bus.Write(0x9000, 0x77)
	loadProgram(bus, 0x0000, 0x46) // LD B,(HL)

	runInstruction(c)

	assert.Equal(t, uint8(0x77), c.Regs.B)
}

func TestLDToHLIndirectStoresToMemory(t *testing.T) {
	c, bus := newTestCPU(t)
	c.Regs.A = 0x5A
	c.Regs.SetHL(0x9000)
	loadProgram(bus, 0x0000, 0x77) // LD (HL),A

	runInstruction(c)

	assert.Equal(t, uint8(0x5A), bus.Read(0x9000))
}

func TestJPAbsoluteSetsPC(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0x0000, 0xC3, 0x34, 0x12) // JP $1234

	runInstruction(c)

	assert.Equal(t, uint16(0x1234), c.Regs.PC)
}

func TestDITakesEffectImmediately(t *testing.T) {
	c, bus := newTestCPU(t)
	c.ime = imeEnabled
	loadProgram(bus, 0x0000, 0xF3) // DI

	runInstruction(c)

	assert.False(t, c.IME())
}

func TestEIDoesNotTakeEffectUntilAfterTheNextInstruction(t *testing.T) {
	c, bus := newTestCPU(t)
	p := pic.New()
	require.NoError(t, p.Write(addr.IE, addr.VBlank.Mask()))
	c.pic = p
	loadProgram(bus, 0x0000, 0xFB, 0x00, 0x00) // EI; NOP; NOP

	runInstruction(c) // EI
	assert.Equal(t, imePending, c.ime, "IME must be pending, not yet enabled, right after EI runs")

	p.Raise(addr.VBlank)
	runInstruction(c) // NOP: IME becomes enabled during this instruction's fetch...
	assert.Equal(t, uint16(0x0002), c.Regs.PC, "the interrupt must not dispatch during the instruction right after EI")

	runInstruction(c) // ...so dispatch happens on the fetch that follows it
	assert.Equal(t, addr.VBlank.Vector(), c.Regs.PC, "the pending interrupt should now dispatch")
}

func TestHaltEntersLowPowerStateAndWakesOnPendingInterrupt(t *testing.T) {
	c, bus := newTestCPU(t)
	p := pic.New()
	require.NoError(t, p.Write(addr.IE, addr.VBlank.Mask()))
	c.pic = p
	loadProgram(bus, 0x0000, 0x76) // HALT

	runInstruction(c)
	assert.True(t, c.Halted())

	p.Raise(addr.VBlank)
	c.Cycle()
	assert.False(t, c.Halted())
}

func TestNOPTakesExactlyOneMCycle(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0x0000, 0x00)

	c.Cycle()
	assert.True(t, c.AtInstructionBoundary(), "a 1-M-cycle instruction must finish within a single Cycle call")
}

func TestLDImmediateTakesExactlyTwoMCycles(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0x0000, 0x06, 0x42) // LD B,$42

	c.Cycle()
	assert.False(t, c.AtInstructionBoundary(), "a 2-M-cycle instruction must not finish after only one Cycle call")
	c.Cycle()
	assert.True(t, c.AtInstructionBoundary())
	assert.Equal(t, uint8(0x42), c.Regs.B)
}

func TestInterruptDispatchTakesExactlyFiveMCycles(t *testing.T) {
	c, _ := newTestCPU(t)
	p := pic.New()
	require.NoError(t, p.Write(addr.IE, addr.VBlank.Mask()))
	c.pic = p
	c.ime = imeEnabled
	c.Regs.SP = 0xFFFE
	c.Regs.PC = 0x1000
	p.Raise(addr.VBlank)

	for i := 0; i < 4; i++ {
		c.Cycle()
		assert.False(t, c.AtInstructionBoundary(), "dispatch should still be in flight after %d cycles", i+1)
	}
	c.Cycle()
	assert.True(t, c.AtInstructionBoundary())
	assert.Equal(t, addr.VBlank.Vector(), c.Regs.PC)
}

func TestIllegalOpcodeLocksTheCPUPermanently(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0x0000, 0xD3, 0x00) // D3 is undefined; NOP would never be reached

	runInstruction(c)
	assert.True(t, c.Locked())

	pc := c.Regs.PC
	for i := 0; i < 4; i++ {
		c.Cycle()
	}
	assert.True(t, c.Locked(), "an illegal opcode lockup never resumes on its own")
	assert.Equal(t, pc, c.Regs.PC, "a locked CPU must not advance, even across many Cycle calls")
}

func TestResetRecoversFromIllegalOpcodeLockup(t *testing.T) {
	c, bus := newTestCPU(t)
	loadProgram(bus, 0x0000, 0xDB) // undefined

	runInstruction(c)
	require.True(t, c.Locked())

	c.Reset()

	assert.False(t, c.Locked())
}

func TestCALLPushesReturnAddressAndJumps(t *testing.T) {
	c, bus := newTestCPU(t)
	c.Regs.SP = 0xFFFE
	loadProgram(bus, 0x0000, 0xCD, 0x00, 0x20) // CALL $2000

	runInstruction(c)

	require.Equal(t, uint16(0x2000), c.Regs.PC)
	lo := bus.Read(0xFFFC)
	hi := bus.Read(0xFFFD)
	assert.Equal(t, uint16(0x0003), uint16(hi)<<8|uint16(lo), "return address pushed should be just past the 3-byte CALL instruction")
}
