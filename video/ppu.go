package video

import (
	"log/slog"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/mem"
	"github.com/rgcarr/dmgcore/pic"
)

// Mode is the four-value LCD status the PPU cycles through every
// scanline; its numeric value matches the low two bits of STAT.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeDraw
)

const (
	dotsPerLine    = 456
	oamScanDots    = 80
	linesPerFrame  = 154
	firstVBlankLn  = 144
)

// PPU is the pixel-FIFO renderer: OAM scan builds the scanline's sprite
// list, then the background/window fetcher and sprite fetcher feed a
// shared pixel FIFO that's drained one pixel per dot into the framebuffer.
type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat, scy, scx, ly, lyc, bgp, obp0, obp1, wy, wx byte

	mode Mode
	dot  int

	fifo        pixelFIFO
	bg          *bgFetcher
	sprites     *spriteFetcher
	lineSprites []Sprite
	drawnSprite map[int]bool // OAM index -> already merged into the FIFO this line

	lx            int // next screen column to output
	discarded     int // SCX%8 pixels still to drop at line start
	windowLine    int
	windowRenderedThisLine bool

	fb *FrameBuffer

	line   pic.Line
	logger *slog.Logger
}

// New returns a PPU with the screen off and the frame buffer cleared.
func New(line pic.Line, logger *slog.Logger) *PPU {
	if logger == nil {
		logger = slog.Default()
	}
	p := &PPU{fb: NewFrameBuffer(), line: line, logger: logger}
	ib := internalBus{p}
	p.bg = newBGFetcher(ib)
	p.sprites = newSpriteFetcher(ib)
	p.drawnSprite = make(map[int]bool)
	return p
}

// Reset restores power-on state in place: the screen off, VRAM/OAM
// cleared, and the frame buffer blanked. Done in place (not by
// reallocating the PPU) since the fetchers hold an internalBus pointing
// back at this exact struct.
func (p *PPU) Reset() {
	p.vram = [0x2000]byte{}
	p.oam = [0xA0]byte{}
	p.lcdc, p.stat, p.scy, p.scx, p.ly, p.lyc, p.bgp, p.obp0, p.obp1, p.wy, p.wx = 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0
	p.mode = ModeHBlank
	p.dot = 0
	p.fifo.clear()
	p.lineSprites = nil
	p.drawnSprite = make(map[int]bool)
	p.lx, p.discarded, p.windowLine = 0, 0, 0
	p.windowRenderedThisLine = false
	p.bg.startLine(0, 0, 0, 0, 0)
	p.fb.Clear()
}

// internalBus gives the fetchers and OAM scanner direct access to the
// PPU's own VRAM/OAM arrays, bypassing the Busy-fault checks Read/Write
// apply to the rest of the bus — the PPU is the reason those regions are
// locked during its own Mode 2/3, not a caller subject to the lock.
type internalBus struct{ p *PPU }

func (b internalBus) Read(address uint16) uint8 {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		return b.p.vram[address-addr.VRAMStart]
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		return b.p.oam[address-addr.OAMStart]
	default:
		return 0xFF
	}
}

// Frame returns the last fully-rendered framebuffer.
func (p *PPU) Frame() *FrameBuffer { return p.fb }

func (p *PPU) lcdEnabled() bool { return p.lcdc&0x80 != 0 }
func (p *PPU) tallSprites() bool { return p.lcdc&0x04 != 0 }
func (p *PPU) spritesEnabled() bool { return p.lcdc&0x02 != 0 }
func (p *PPU) windowEnabled() bool { return p.lcdc&0x20 != 0 }
func (p *PPU) bgEnabled() bool { return p.lcdc&0x01 != 0 }

// Tick advances the PPU by one dot (one master clock tick — the PPU is
// gated ÷1, the fastest-ticking component on the bus).
func (p *PPU) Tick() {
	if !p.lcdEnabled() {
		return
	}

	switch p.mode {
	case ModeOAMScan:
		if p.dot == 0 {
			p.lineSprites = nil
			if p.spritesEnabled() {
				p.lineSprites = scanOAM(internalBus{p}, int(p.ly), p.tallSprites())
			}
			p.drawnSprite = make(map[int]bool)
		}
		if p.dot == oamScanDots-1 {
			p.enterDraw()
		}
	case ModeDraw:
		p.stepDraw()
	case ModeHBlank:
		// idle until the line's 456 dots elapse
	case ModeVBlank:
		// idle until the line's 456 dots elapse
	}

	p.dot++
	if p.dot >= dotsPerLine {
		p.dot = 0
		p.advanceLine()
	}
}

func (p *PPU) enterDraw() {
	p.setMode(ModeDraw)
	p.fifo.clear()
	p.lx = 0
	p.discarded = int(p.scx) % 8
	p.windowRenderedThisLine = false
	p.bg.startLine(p.scx, p.scy, p.wy, p.wx, p.lcdc)
}

func (p *PPU) stepDraw() {
	if p.windowEnabled() && !p.bg.usingWindow && !p.windowRenderedThisLine &&
		int(p.ly) >= int(p.wy) && p.lx+7 >= int(p.wx) {
		p.bg.enterWindow()
		p.fifo.clear()
		p.windowRenderedThisLine = true
	}

	if out := p.bg.step(p.fifo.len() == 0, int(p.ly)); out != nil {
		for _, px := range out {
			p.fifo.push(px)
		}
	}

	if p.spritesEnabled() {
		for i, s := range p.lineSprites {
			if p.drawnSprite[s.OAMIndex] {
				continue
			}
			if s.X > p.lx || s.X+8 <= p.lx || p.fifo.len() == 0 {
				continue
			}
			pixels := p.sprites.fetch(p.lcdc, s, int(p.ly))
			p.fifo.mergeSprite(p.lx-s.X, pixels[max0(s.X-p.lx):])
			p.drawnSprite[s.OAMIndex] = true
			_ = i
		}
	}

	if p.discarded > 0 {
		if _, ok := p.fifo.pop(); ok {
			p.discarded--
		}
		return
	}

	px, ok := p.fifo.pop()
	if !ok {
		return
	}

	color := p.resolveColor(px)
	if p.lx < FrameWidth {
		p.fb.SetPixel(p.lx, int(p.ly), color)
	}
	p.lx++

	if p.lx >= FrameWidth {
		if p.bg.usingWindow {
			p.windowLine++
			p.bg.windowLine = p.windowLine
		}
		p.setMode(ModeHBlank)
	}
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// resolveColor applies the background/window or sprite palette to a FIFO
// pixel's raw 2-bit color index.
func (p *PPU) resolveColor(px pixel) GBColor {
	if px.fromSprite {
		if px.color == 0 {
			return p.resolveColor(pixel{color: 0})
		}
		palette := p.obp0
		if px.obp1 {
			palette = p.obp1
		}
		shade := (palette >> (px.color * 2)) & 0x3
		return ByteToColor(shade)
	}
	if !p.bgEnabled() {
		return WhiteColor
	}
	shade := (p.bgp >> (px.color * 2)) & 0x3
	return ByteToColor(shade)
}

func (p *PPU) advanceLine() {
	p.ly++
	if int(p.ly) == firstVBlankLn {
		p.setMode(ModeVBlank)
		p.line.Raise(addr.VBlank)
		if p.statInterruptEnabled(4) {
			p.line.Raise(addr.LCDStat)
		}
	} else if int(p.ly) >= linesPerFrame {
		p.ly = 0
		p.windowLine = 0
		p.setMode(ModeOAMScan)
	} else if p.mode != ModeVBlank {
		p.setMode(ModeOAMScan)
	}
	p.checkLYC()
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	switch m {
	case ModeHBlank:
		if p.statInterruptEnabled(3) {
			p.line.Raise(addr.LCDStat)
		}
	case ModeOAMScan:
		if p.statInterruptEnabled(5) {
			p.line.Raise(addr.LCDStat)
		}
	}
}

func (p *PPU) statInterruptEnabled(bit uint8) bool { return p.stat&(1<<bit) != 0 }

func (p *PPU) checkLYC() {
	match := p.ly == p.lyc
	if match && p.statInterruptEnabled(6) {
		p.line.Raise(addr.LCDStat)
	}
}

// Read implements mem.Device for VRAM, OAM, and the $FF40-$FF4B register
// block. VRAM/OAM reads during the PPU's own internal fetches go directly
// to the backing arrays, bypassing this — see internalBus above.
func (p *PPU) Read(address uint16) (uint8, error) {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		if p.mode == ModeDraw {
			return 0, mem.NewFault(mem.Busy, address)
		}
		return p.vram[address-addr.VRAMStart], nil
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		if p.mode == ModeOAMScan || p.mode == ModeDraw {
			return 0, mem.NewFault(mem.Busy, address)
		}
		return p.oam[address-addr.OAMStart], nil
	case address == addr.LCDC:
		return p.lcdc, nil
	case address == addr.STAT:
		return p.stat&0x78 | uint8(p.mode) | boolBit(p.ly == p.lyc, 2) | 0x80, nil
	case address == addr.SCY:
		return p.scy, nil
	case address == addr.SCX:
		return p.scx, nil
	case address == addr.LY:
		return p.ly, nil
	case address == addr.LYC:
		return p.lyc, nil
	case address == addr.BGP:
		return p.bgp, nil
	case address == addr.OBP0:
		return p.obp0, nil
	case address == addr.OBP1:
		return p.obp1, nil
	case address == addr.WY:
		return p.wy, nil
	case address == addr.WX:
		return p.wx, nil
	default:
		return 0, mem.NewFault(mem.Range, address)
	}
}

func (p *PPU) Write(address uint16, value uint8) error {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		if p.mode == ModeDraw {
			return mem.NewFault(mem.Busy, address)
		}
		p.vram[address-addr.VRAMStart] = value
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		if p.mode == ModeOAMScan || p.mode == ModeDraw {
			return mem.NewFault(mem.Busy, address)
		}
		p.oam[address-addr.OAMStart] = value
	case address == addr.LCDC:
		wasEnabled := p.lcdEnabled()
		p.lcdc = value
		if wasEnabled && !p.lcdEnabled() {
			p.ly = 0
			p.dot = 0
			p.mode = ModeHBlank
			p.fb.Clear()
		}
	case address == addr.STAT:
		p.stat = value & 0x78
	case address == addr.SCY:
		p.scy = value
	case address == addr.SCX:
		p.scx = value
	case address == addr.LY:
		// read-only: writes are ignored
	case address == addr.LYC:
		p.lyc = value
		p.checkLYC()
	case address == addr.BGP:
		p.bgp = value
	case address == addr.OBP0:
		p.obp0 = value
	case address == addr.OBP1:
		p.obp1 = value
	case address == addr.WY:
		p.wy = value
	case address == addr.WX:
		p.wx = value
	default:
		return mem.NewFault(mem.Range, address)
	}
	return nil
}

func boolBit(v bool, n uint8) uint8 {
	if v {
		return 1 << n
	}
	return 0
}
