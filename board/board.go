// Package board wires every DMG component onto a shared bus and drives
// them all from a single master-clock loop: the motherboard.
package board

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/audio"
	"github.com/rgcarr/dmgcore/cart"
	"github.com/rgcarr/dmgcore/cpu"
	"github.com/rgcarr/dmgcore/dma"
	"github.com/rgcarr/dmgcore/joypad"
	"github.com/rgcarr/dmgcore/mem"
	"github.com/rgcarr/dmgcore/pic"
	"github.com/rgcarr/dmgcore/serial"
	"github.com/rgcarr/dmgcore/timer"
	"github.com/rgcarr/dmgcore/timing"
	"github.com/rgcarr/dmgcore/video"
)

const bootROMSize = 256

// bootOverlay is the 256-byte boot ROM mapped over $0000-$00FF until the
// one-way $FF50 latch dismisses it. Reads outside that window (shouldn't
// happen, since it's only ever mapped to that range) fault Range.
type bootOverlay struct {
	data [bootROMSize]byte
}

func (b *bootOverlay) Read(address uint16) (uint8, error) {
	if address >= addr.BootROMStart && address <= addr.BootROMEnd {
		return b.data[address-addr.BootROMStart], nil
	}
	return 0, mem.NewFault(mem.Range, address)
}

func (b *bootOverlay) Write(address uint16, value uint8) error {
	return mem.NewFault(mem.Misuse, address)
}

// Motherboard owns every DMG component, the shared bus they're mapped
// onto, and the master-tick loop that advances them all in lockstep:
// PPU and Timer tick every master clock, CPU and DMA every 4th (one
// M-cycle), Serial every 512th, matching spec §4.10's gating ratios.
type Motherboard struct {
	Bus *mem.Bus

	CPU     *cpu.CPU
	PPU     *video.PPU
	APU     *audio.APU
	Timer   *timer.Timer
	DMA     *dma.DMA
	Joypad  *joypad.Joypad
	Serial  *serial.Serial
	PIC     *pic.PIC
	Cart    *cart.Cartridge

	wram *mem.RAM
	hram *mem.RAM
	boot *bootOverlay

	bootEnabled bool
	masterTicks uint64
	logger      *slog.Logger
	debugState  DebuggerState
}

// Options configures Motherboard construction.
type Options struct {
	BootROM        []byte // exactly 256 bytes, or nil for a synthetic boot
	SavePath       string
	SaveLoadPolicy cart.SaveLoadPolicy
	HostSampleRate int
	Logger         *slog.Logger
}

// New builds a Motherboard from a parsed ROM image and wires every
// component onto a fresh bus. If opts.BootROM is nil, the CPU and Timer
// are initialized directly to their post-boot state (spec's "synthetic
// boot") instead of running the boot overlay.
func New(rom []byte, opts Options) (*Motherboard, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HostSampleRate == 0 {
		opts.HostSampleRate = 44100
	}

	c, err := cart.New(rom, opts.SavePath, opts.SaveLoadPolicy, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	if opts.BootROM != nil && len(opts.BootROM) != bootROMSize {
		return nil, fmt.Errorf("boot ROM must be exactly %d bytes, got %d", bootROMSize, len(opts.BootROM))
	}

	m := &Motherboard{
		Bus:    mem.NewBus(),
		PIC:    pic.New(),
		Cart:   c,
		wram:   mem.NewRAM(addr.WRAMStart, int(addr.WRAMEnd-addr.WRAMStart)+1),
		hram:   mem.NewRAM(addr.HRAMStart, int(addr.HRAMEnd-addr.HRAMStart)+1),
		logger: opts.Logger,
	}

	m.PPU = video.New(m.PIC.Line(), opts.Logger)
	m.APU = audio.New(opts.HostSampleRate, opts.Logger)
	m.Timer = timer.New(m.PIC.Line())
	m.Joypad = joypad.New(m.PIC.Line())
	m.Serial = serial.New(m.PIC.Line())
	m.DMA = dma.New(m.Bus)
	m.CPU = cpu.New(m.Bus, m.PIC, opts.Logger)

	m.mapDevices()

	if opts.BootROM != nil {
		m.boot = &bootOverlay{}
		copy(m.boot.data[:], opts.BootROM)
		m.bootEnabled = true
		m.Bus.Map(addr.BootROMStart, addr.BootROMEnd, mem.ClassExternal, m.boot, "boot-overlay")
		m.Bus.Map(addr.BootDisable, addr.BootDisable, mem.ClassInternal, &mem.FuncDevice{
			ReadFn:  func(uint16) (uint8, error) { return 0xFF, nil },
			WriteFn: m.writeBootDisable,
		}, "boot-disable")
		// CPU/Timer registers stay at Go's zero value; the boot ROM itself
		// brings them to post-boot state by the time it jumps to $0100.
	} else {
		m.CPU.Reset()
		m.Timer.SetDivider(0xABCC)
	}

	return m, nil
}

func (m *Motherboard) writeBootDisable(address uint16, value uint8) error {
	if value&0x01 != 0 && m.bootEnabled {
		m.bootEnabled = false
		m.Bus.Unmap(m.boot)
	}
	return nil
}

// mapDevices attaches every component's device surface to the bus.
// Overlay devices (boot ROM) are mapped afterward by New, ahead of
// whatever they shadow, since Bus probes mappings in insertion order.
func (m *Motherboard) mapDevices() {
	b := m.Bus

	b.Map(addr.ROMBank0Start, addr.ROMBankNEnd, mem.ClassExternal, m.Cart.MBC, "cart-rom")
	b.Map(addr.ExtRAMStart, addr.ExtRAMEnd, mem.ClassExternal, m.Cart.MBC, "cart-ram")

	b.Map(addr.VRAMStart, addr.VRAMEnd, mem.ClassVideo, m.PPU, "vram")
	b.Map(addr.OAMStart, addr.OAMEnd, mem.ClassVideo, m.PPU, "oam")
	for _, reg := range []uint16{addr.LCDC, addr.STAT, addr.SCY, addr.SCX, addr.LY, addr.LYC, addr.BGP, addr.OBP0, addr.OBP1, addr.WY, addr.WX} {
		b.Map(reg, reg, mem.ClassInternal, m.PPU, "ppu-reg")
	}

	b.Map(addr.WRAMStart, addr.WRAMEnd, mem.ClassExternal, m.wram, "wram")
	b.Map(addr.EchoStart, addr.EchoEnd, mem.ClassExternal, mem.NewMirror(m.wram, addr.EchoStart-addr.WRAMStart), "echo-ram")
	b.Map(addr.HRAMStart, addr.HRAMEnd, mem.ClassInternal, m.hram, "hram")

	b.Map(addr.P1, addr.P1, mem.ClassInternal, m.Joypad, "joypad")
	b.Map(addr.SB, addr.SC, mem.ClassInternal, m.Serial, "serial")
	b.Map(addr.DIV, addr.TAC, mem.ClassInternal, m.Timer, "timer")
	b.Map(addr.IF, addr.IF, mem.ClassInternal, m.PIC, "pic-if")
	b.Map(addr.IE, addr.IE, mem.ClassInternal, m.PIC, "pic-ie")
	b.Map(addr.AudioStart, addr.WaveRAMEnd, mem.ClassInternal, m.APU, "apu")
	b.Map(addr.DMA, addr.DMA, mem.ClassInternal, m.DMA, "dma")
}

// Reset reinitializes every component and, if a boot ROM was supplied at
// construction, re-latches the boot overlay — spec's hard-reset operation.
func (m *Motherboard) Reset() {
	m.Bus.SetBusy(mem.ClassExternal, false)
	m.Bus.SetBusy(mem.ClassVideo, false)

	m.PIC.Reset()
	m.PPU.Reset()
	m.APU.Reset()
	m.Timer.Reset()
	m.Joypad.Reset()
	m.Serial.Reset()
	m.DMA.Reset()
	m.CPU.Reset()
	m.debugState = Running

	if m.boot != nil {
		m.bootEnabled = true
		m.Bus.Map(addr.BootROMStart, addr.BootROMEnd, mem.ClassExternal, m.boot, "boot-overlay")
	} else {
		m.Timer.SetDivider(0xABCC)
	}
}

// tickMCycle advances every component by one CPU M-cycle (4 master
// clock ticks). Per spec §5's ordering guarantee, the CPU-gate components
// (CPU, DMA) advance first, so any bus state they change this M-cycle
// (e.g. DMA claiming the bus, or a write the CPU issues) is already in
// effect by the time PPU and Timer observe it; PPU and Timer then tick
// all four master ticks, with Serial ticking every 512th one; APU is
// driven by the 4 T-cycles elapsed.
func (m *Motherboard) tickMCycle() {
	m.DMA.Tick()
	m.CPU.Cycle()

	for i := 0; i < 4; i++ {
		m.PPU.Tick()
		m.Timer.Tick()
		m.masterTicks++
		if m.masterTicks%512 == 0 {
			m.Serial.Tick()
		}
	}

	m.APU.Tick(4)
}

// RunFrame advances the emulator by exactly one frame's worth of master
// ticks (70224 T-cycles, spec §4.10), then returns the freshly rendered
// framebuffer.
func (m *Motherboard) RunFrame() *video.FrameBuffer {
	var elapsed int
	for elapsed < timing.CyclesPerFrame {
		m.tickMCycle()
		elapsed += 4
	}
	return m.PPU.Frame()
}

// DebuggerState is the host-visible run mode a Motherboard is in. A host
// that never calls SetState stays in Running, and RunFrame behaves exactly
// as it always has.
type DebuggerState int

const (
	// Running advances freely; RunFrame always runs the full frame.
	Running DebuggerState = iota
	// Paused advances nothing; RunFrame returns immediately with the last
	// rendered frame.
	Paused
	// Step runs exactly one CPU instruction, then transitions to Paused.
	Step
	// StepFrame runs exactly one frame, then transitions to Paused.
	StepFrame
)

// State reports the current debugger run mode.
func (m *Motherboard) State() DebuggerState { return m.debugState }

// SetState changes the debugger run mode, e.g. for a host's pause/resume
// or single-step UI controls.
func (m *Motherboard) SetState(s DebuggerState) { m.debugState = s }

// runFrameStepped advances the emulator by one M-cycle at a time until
// RunFrame's own deadline, but stops early if the host has asked for a
// single instruction via Step. Used internally by RunFrameStepped and
// StepInstruction; most callers just want RunFrame directly.
func (m *Motherboard) runFrameStepped() *video.FrameBuffer {
	var elapsed int
	for elapsed < timing.CyclesPerFrame {
		m.tickMCycle()
		elapsed += 4
		if m.debugState == Step && m.CPU.AtInstructionBoundary() {
			m.debugState = Paused
			break
		}
	}
	return m.PPU.Frame()
}

// StepInstruction runs the CPU forward to the next instruction boundary
// (servicing every other component along the way), then pauses. Returns
// the framebuffer as of that point, which may not be a complete frame.
func (m *Motherboard) StepInstruction() *video.FrameBuffer {
	m.debugState = Step
	fb := m.runFrameStepped()
	m.debugState = Paused
	return fb
}

// RunFrameStepped behaves like RunFrame when State is Running, runs one
// frame and pauses when State is StepFrame, and returns immediately with
// the last rendered frame when State is Paused. It's the stepping-aware
// counterpart to RunFrame for hosts driving a debugger UI.
func (m *Motherboard) RunFrameStepped() *video.FrameBuffer {
	switch m.debugState {
	case Paused:
		return m.PPU.Frame()
	case StepFrame:
		fb := m.runFrameStepped()
		m.debugState = Paused
		return fb
	default:
		return m.runFrameStepped()
	}
}

// Shutdown dumps battery-backed cartridge RAM, if any, per spec §6's
// shutdown sequence.
func (m *Motherboard) Shutdown() error {
	return m.Cart.DumpRAM()
}

// LoadROMFile reads a ROM image from disk — a small convenience wrapper
// used by cmd/dmg and the conformance test harnesses.
func LoadROMFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM %s: %w", path, err)
	}
	return data, nil
}
