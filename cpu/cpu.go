// Package cpu implements the SM83 core: registers, ALU, and the
// fetch/decode/execute cycle expressed as an explicit queue of micro-steps,
// one of which runs per Cycle call — matching the machine's real cadence of
// one bus access per M-cycle rather than an instruction completing all at
// once.
package cpu

import (
	"log/slog"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/bit"
	"github.com/rgcarr/dmgcore/mem"
	"github.com/rgcarr/dmgcore/pic"
)

// imeState tracks the interrupt master enable flag, including the
// one-instruction delay EI imposes before interrupts actually unmask.
type imeState uint8

const (
	imeDisabled imeState = iota
	imeEnabled
	imePending
)

// runState is the CPU's execution mode: normal fetch/execute, one of the
// two low-power states a HALT/STOP instruction can enter, or the
// permanent lockup an illegal opcode causes.
type runState uint8

const (
	stateRunning runState = iota
	stateHalted
	stateStopped
	stateIllegal
)

// step is one micro-operation of an in-flight instruction: a single
// cycle's worth of bus access or internal work.
type step func(c *CPU)

// CPU is the SM83 core. It owns no memory directly; all access goes
// through the bus, so its view of the world matches every other device's.
type CPU struct {
	Regs Registers

	bus *mem.Bus
	pic *pic.PIC

	ime   imeState
	state runState

	haltBug bool // HALT with IME off and a pending interrupt: PC fails to advance once

	queue  []step // pending micro-steps for the in-flight instruction
	opcode uint8

	// immLatch and rmwLatch hold a byte read in one micro-step for use by a
	// later one in the same instruction (a 16-bit immediate's low byte, or
	// the value read back from (HL) in a read-modify-write instruction).
	immLatch uint8
	rmwLatch uint8

	logger *slog.Logger
}

// New returns a CPU wired to bus for memory access and pic for interrupt
// dispatch and the IME-gated wake from HALT.
func New(bus *mem.Bus, pic *pic.PIC, logger *slog.Logger) *CPU {
	if logger == nil {
		logger = slog.Default()
	}
	return &CPU{bus: bus, pic: pic, logger: logger}
}

// Reset restores power-on register state matching the post-boot-ROM values
// a real DMG leaves behind, for callers that skip the boot overlay.
func (c *CPU) Reset() {
	c.Regs = Registers{}
	c.Regs.SetAF(0x01B0)
	c.Regs.SetBC(0x0013)
	c.Regs.SetDE(0x00D8)
	c.Regs.SetHL(0x014D)
	c.Regs.SP = 0xFFFE
	c.Regs.PC = 0x0100
	c.ime = imeDisabled
	c.state = stateRunning
	c.queue = nil
}

// Cycle advances the CPU by exactly one M-cycle: popping and running the
// next queued micro-step, or — if idle — servicing a pending interrupt,
// waking from HALT, or fetching the next instruction.
func (c *CPU) Cycle() {
	if c.state == stateIllegal || c.state == stateStopped {
		return
	}

	if len(c.queue) == 0 {
		if c.state == stateHalted {
			if c.pic.Pending() {
				c.state = stateRunning
			} else {
				return
			}
		}

		if c.ime == imeEnabled {
			if i, ok := c.pic.Fetch(); ok {
				c.queue = interruptSequence(i)
			}
		}

		if len(c.queue) == 0 {
			c.fetch()
		}

		// EI's one-instruction delay: this fetch is for the instruction right
		// after EI, and it must run without an interrupt hijacking its slot.
		// Promoting here (rather than before the interrupt check above) means
		// the promotion only takes effect starting at the *next* fetch.
		if c.ime == imePending {
			c.ime = imeEnabled
		}
	}

	if len(c.queue) > 0 {
		s := c.queue[0]
		c.queue = c.queue[1:]
		s(c)
	}
}

// fetch reads the next opcode and decodes it into a fresh micro-step queue.
// The fetch itself consumes the cycle real hardware spends reading the
// opcode byte; decode happens instantaneously in emulated time, as the
// steps produced already account for every remaining cycle.
func (c *CPU) fetch() {
	opcode := c.readPC()

	if c.haltBug {
		c.haltBug = false
		c.Regs.PC--
	}

	c.opcode = opcode
	c.queue = decode(opcode)
}

func (c *CPU) readPC() uint8 {
	v := c.bus.Read(c.Regs.PC)
	c.Regs.PC++
	return v
}

// requestEI and requestDI implement the one-instruction delay on EI: IME
// only takes effect after the instruction following EI completes.
func (c *CPU) requestEI() {
	if c.ime == imeDisabled {
		c.ime = imePending
	}
}

func (c *CPU) requestDI() { c.ime = imeDisabled }

// enterHalt puts the CPU to sleep until an interrupt is pending. If IME is
// off but an interrupt is already pending at the moment of HALT, real
// hardware fails to increment PC on the very next fetch — the "HALT bug".
func (c *CPU) enterHalt() {
	if c.ime == imeDisabled && c.pic.Pending() {
		c.haltBug = true
		return
	}
	c.state = stateHalted
}

func (c *CPU) enterStop() {
	c.state = stateStopped
}

// enterIllegal locks the CPU up permanently, matching a real DMG's
// response to one of the undefined opcodes (D3, DB, DD, E3, E4, EB, EC,
// ED, F4, FC, FD): the bus freezes and only a reset recovers it.
func (c *CPU) enterIllegal() {
	c.state = stateIllegal
}

// Halted reports whether the CPU is currently in its HALT low-power state.
func (c *CPU) Halted() bool { return c.state == stateHalted }

// Stopped reports whether the CPU is currently in its STOP low-power
// state, in which Cycle does nothing until Wake or Reset.
func (c *CPU) Stopped() bool { return c.state == stateStopped }

// Locked reports whether the CPU has permanently locked up after
// executing an illegal opcode. Only Reset recovers from this state.
func (c *CPU) Locked() bool { return c.state == stateIllegal }

// Wake clears STOP so the CPU resumes fetching. The board never calls it,
// so under the board a stopped CPU stays stopped until Reset.
func (c *CPU) Wake() { c.state = stateRunning }

// IME reports whether interrupts are currently enabled (including the
// EI-delayed pending state not yet taking effect), for debug introspection.
func (c *CPU) IME() bool { return c.ime != imeDisabled }

// AtInstructionBoundary reports whether the next Cycle call will start a
// fresh fetch rather than continuing a queued micro-step sequence, for a
// host that wants to single-step one instruction at a time.
func (c *CPU) AtInstructionBoundary() bool { return len(c.queue) == 0 }

// interruptSequence builds the five-cycle interrupt-dispatch micro-steps:
// two idle cycles, a push of PC split across two cycles, and a final jump
// to the vector — disabling IME and clearing the serviced IF bit along the
// way, per spec §4.9.
func interruptSequence(i addr.Interrupt) []step {
	return []step{
		func(c *CPU) { c.ime = imeDisabled },
		func(c *CPU) {},
		func(c *CPU) {
			c.Regs.SP--
			c.bus.Write(c.Regs.SP, bit.High(c.Regs.PC))
		},
		func(c *CPU) {
			c.Regs.SP--
			c.bus.Write(c.Regs.SP, bit.Low(c.Regs.PC))
			c.pic.Clear(i)
		},
		func(c *CPU) {
			c.Regs.PC = i.Vector()
		},
	}
}
