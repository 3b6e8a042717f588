package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/pic"
)

func newTestPPU(t *testing.T) (*PPU, *pic.PIC) {
	t.Helper()
	p := pic.New()
	return New(p.Line(), nil), p
}

func TestLCDCReadWriteRoundTrips(t *testing.T) {
	ppu, _ := newTestPPU(t)
	require.NoError(t, ppu.Write(addr.LCDC, 0x91))
	v, err := ppu.Read(addr.LCDC)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x91), v)
}

func TestLYIsReadOnly(t *testing.T) {
	ppu, _ := newTestPPU(t)
	ppu.ly = 42
	require.NoError(t, ppu.Write(addr.LY, 0xFF))

	v, err := ppu.Read(addr.LY)
	require.NoError(t, err)
	assert.Equal(t, uint8(42), v, "writes to LY must be discarded")
}

func TestSTATReadReflectsModeAndLYCCoincidence(t *testing.T) {
	ppu, _ := newTestPPU(t)
	ppu.mode = ModeVBlank
	ppu.ly = 10
	ppu.lyc = 10

	v, err := ppu.Read(addr.STAT)
	require.NoError(t, err)
	assert.Equal(t, uint8(ModeVBlank), v&0x03)
	assert.NotZero(t, v&0x04, "LYC=LY coincidence bit should be set")
}

func TestSTATUpperBitAlwaysReadsSet(t *testing.T) {
	ppu, _ := newTestPPU(t)
	v, err := ppu.Read(addr.STAT)
	require.NoError(t, err)
	assert.NotZero(t, v&0x80)
}

func TestVRAMFaultsBusyDuringDrawMode(t *testing.T) {
	ppu, _ := newTestPPU(t)
	ppu.mode = ModeDraw

	_, err := ppu.Read(addr.VRAMStart)
	assert.Error(t, err)
	assert.Error(t, ppu.Write(addr.VRAMStart, 1))
}

func TestOAMFaultsBusyDuringOAMScanAndDraw(t *testing.T) {
	ppu, _ := newTestPPU(t)
	ppu.mode = ModeOAMScan
	_, err := ppu.Read(addr.OAMStart)
	assert.Error(t, err)

	ppu.mode = ModeDraw
	_, err = ppu.Read(addr.OAMStart)
	assert.Error(t, err)
}

func TestVRAMAccessibleDuringHBlankAndVBlank(t *testing.T) {
	ppu, _ := newTestPPU(t)
	ppu.mode = ModeHBlank
	require.NoError(t, ppu.Write(addr.VRAMStart, 0x5A))

	v, err := ppu.Read(addr.VRAMStart)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x5A), v)
}

func TestDisablingLCDResetsLYAndClearsFramebuffer(t *testing.T) {
	ppu, _ := newTestPPU(t)
	require.NoError(t, ppu.Write(addr.LCDC, 0x80)) // enable
	ppu.ly = 100
	ppu.dot = 200
	ppu.fb.SetPixel(0, 0, BlackColor)

	require.NoError(t, ppu.Write(addr.LCDC, 0x00)) // disable

	assert.Equal(t, uint8(0), ppu.ly)
	assert.Equal(t, 0, ppu.dot)
	assert.Equal(t, uint32(BlackColor), ppu.fb.GetPixel(0, 0), "Clear resets the framebuffer to black")
}

func TestTickDoesNothingWhileLCDDisabled(t *testing.T) {
	ppu, _ := newTestPPU(t)
	for i := 0; i < dotsPerLine*2; i++ {
		ppu.Tick()
	}
	assert.Equal(t, 0, ppu.dot)
	assert.Equal(t, uint8(0), ppu.ly)
}

func TestFullFrameRaisesVBlankInterruptAtLine144(t *testing.T) {
	ppu, p := newTestPPU(t)
	require.NoError(t, p.Write(addr.IE, addr.VBlank.Mask()))
	require.NoError(t, ppu.Write(addr.LCDC, 0x91)) // enable, bg on

	for i := 0; i < dotsPerLine*linesPerFrame; i++ {
		ppu.Tick()
		if p.Pending() {
			break
		}
	}

	assert.True(t, p.Pending(), "a full frame of ticks must raise VBlank")
	assert.Equal(t, uint8(firstVBlankLn), ppu.ly)
}

func TestResetClearsVRAMAndFramebuffer(t *testing.T) {
	ppu, _ := newTestPPU(t)
	ppu.vram[0] = 0xFF
	ppu.fb.SetPixel(0, 0, BlackColor)
	ppu.ly = 50

	ppu.Reset()

	assert.Equal(t, byte(0), ppu.vram[0])
	assert.Equal(t, uint32(BlackColor), ppu.fb.GetPixel(0, 0))
	assert.Equal(t, uint8(0), ppu.ly)
}
