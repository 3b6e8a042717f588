package video

import "github.com/rgcarr/dmgcore/addr"

type fetchStage uint8

const (
	stageTileNum fetchStage = iota
	stageDataLow
	stageDataHigh
	stagePush
)

type fetchBus interface {
	Read(address uint16) uint8
}

// bgFetcher is the background/window pixel fetcher: a four-stage state
// machine (fetch tile number, read the low bit plane, read the high bit
// plane, push 8 pixels to the FIFO) that advances one stage every 2 dots,
// per spec §4.8. The push stage stalls — without re-fetching — until the
// FIFO has drained, exactly as hardware does between tiles.
type bgFetcher struct {
	bus   fetchBus
	stage fetchStage
	tick  int // 0 or 1: position within the current stage's 2-dot span

	usingWindow bool
	mapX        int // tile column, 0-31, wraps
	windowLine  int // independent line counter for the window layer

	tileNum  uint8
	low, high byte

	lcdc, scx, scy, wy, wx byte
}

func newBGFetcher(bus fetchBus) *bgFetcher {
	return &bgFetcher{bus: bus}
}

// startLine resets fetcher state for a new scanline's background/window
// pass, capturing the control registers scan mode latches at Mode 3 entry.
func (f *bgFetcher) startLine(scx, scy, wy, wx, lcdc byte) {
	f.stage = stageTileNum
	f.tick = 0
	f.usingWindow = false
	f.mapX = 0
	f.scx, f.scy, f.wy, f.wx, f.lcdc = scx, scy, wy, wx, lcdc
}

func (f *bgFetcher) enterWindow() {
	f.usingWindow = true
	f.stage = stageTileNum
	f.tick = 0
	f.mapX = 0
}

// tileMapBase returns the base of the active tile map (background or
// window, selected by the relevant LCDC bit).
func (f *bgFetcher) tileMapBase() uint16 {
	bitIndex := uint8(3)
	if f.usingWindow {
		bitIndex = 6
	}
	if f.lcdc&(1<<bitIndex) != 0 {
		return addr.TileMap1
	}
	return addr.TileMap0
}

// tileDataAddr resolves LCDC bit 4's signed/unsigned tile-data addressing.
func (f *bgFetcher) tileDataAddr(tileNum uint8, row int) uint16 {
	if f.lcdc&0x10 != 0 {
		return addr.TileData0 + uint16(tileNum)*16 + uint16(row)*2
	}
	return addr.TileData2 + uint16(int8(tileNum))*16 + uint16(row)*2
}

// step advances the fetcher by one dot. When a push succeeds it returns
// the 8 fetched pixels; otherwise it returns nil.
func (f *bgFetcher) step(fifoEmpty bool, bgLine int) []pixel {
	f.tick++
	if f.tick < 2 {
		return nil
	}
	f.tick = 0

	switch f.stage {
	case stageTileNum:
		row := f.mapRow(bgLine)
		col := f.mapCol()
		tileAddr := f.tileMapBase() + uint16(row/8)*32 + uint16(col)
		f.tileNum = f.bus.Read(tileAddr)
		f.stage = stageDataLow
	case stageDataLow:
		row := f.mapRow(bgLine) % 8
		a := f.tileDataAddr(f.tileNum, row)
		f.low = f.bus.Read(a)
		f.stage = stageDataHigh
	case stageDataHigh:
		row := f.mapRow(bgLine) % 8
		a := f.tileDataAddr(f.tileNum, row)
		f.high = f.bus.Read(a + 1)
		f.stage = stagePush
	case stagePush:
		if !fifoEmpty {
			return nil // stall: retry push next opportunity without re-fetching
		}
		tr := TileRow{Low: f.low, High: f.high}
		pixels := make([]pixel, 8)
		for i := 0; i < 8; i++ {
			pixels[i] = pixel{color: tr.Pixel(i)}
		}
		f.mapX++
		f.stage = stageTileNum
		return pixels
	}
	return nil
}

func (f *bgFetcher) mapRow(bgLine int) int {
	if f.usingWindow {
		return f.windowLine
	}
	return (bgLine + int(f.scy)) & 0xFF
}

func (f *bgFetcher) mapCol() int {
	if f.usingWindow {
		return f.mapX & 31
	}
	return (f.mapX + int(f.scx)/8) & 31
}

// spriteFetcher pulls the tile row for a sprite the PPU has decided to
// render, a strictly shorter pipeline than the background's since the
// tile index is already known from OAM — it goes straight to the two
// data-byte reads.
type spriteFetcher struct {
	bus fetchBus
}

func newSpriteFetcher(bus fetchBus) *spriteFetcher { return &spriteFetcher{bus: bus} }

// fetch reads a sprite's 8-pixel row immediately (modeled as a single
// synchronous call rather than a multi-dot stage machine; the PPU merges
// the row into the FIFO in the same dot, without pausing the background
// fetcher — see stepDraw in ppu.go).
func (sf *spriteFetcher) fetch(lcdc byte, s Sprite, scanline int) []pixel {
	height := s.Height
	row := scanline - s.Y
	if s.FlipY {
		row = height - 1 - row
	}

	tileIndex := s.TileIndex
	if height == 16 {
		tileIndex &^= 0x01
	}

	base := addr.TileData0 + uint16(tileIndex)*16 + uint16(row)*2
	low := sf.bus.Read(base)
	high := sf.bus.Read(base + 1)
	tr := TileRow{Low: low, High: high}

	pixels := make([]pixel, 8)
	for i := 0; i < 8; i++ {
		var c uint8
		if s.FlipX {
			c = tr.PixelFlipped(i)
		} else {
			c = tr.Pixel(i)
		}
		pixels[i] = pixel{color: c, obp1: s.PaletteOBP1, bgPrio: s.BehindBG, fromSprite: true}
	}
	return pixels
}
