package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRAMReadWrite(t *testing.T) {
	r := NewRAM(0xC000, 0x10)

	require.NoError(t, r.Write(0xC005, 0x42))
	v, err := r.Read(0xC005)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), v)

	_, err = r.Read(0xD000)
	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, Range, fault.Kind)
}

func TestMirrorForwardsWithOffset(t *testing.T) {
	wram := NewRAM(0xC000, 0x2000)
	echo := NewMirror(wram, 0xE000-0xC000)

	require.NoError(t, echo.Write(0xE010, 0x99))
	v, err := wram.Read(0xC010)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x99), v)
}

func TestFuncDevice(t *testing.T) {
	var written uint8
	dev := &FuncDevice{
		ReadFn:  func(uint16) (uint8, error) { return 0xAB, nil },
		WriteFn: func(_ uint16, v uint8) error { written = v; return nil },
	}

	v, err := dev.Read(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), v)

	require.NoError(t, dev.Write(0, 0x77))
	assert.Equal(t, uint8(0x77), written)
}

func TestBusProbesInInsertionOrder(t *testing.T) {
	bus := NewBus()
	overlay := NewRAM(0x0000, 0x100)
	underlying := NewRAM(0x0000, 0x100)

	require.NoError(t, overlay.Write(0x0010, 0x11))
	require.NoError(t, underlying.Write(0x0010, 0x22))

	bus.Map(0x0000, 0x00FF, ClassExternal, overlay, "overlay")
	bus.Map(0x0000, 0x00FF, ClassExternal, underlying, "underlying")

	assert.Equal(t, uint8(0x11), bus.Read(0x0010))

	bus.Unmap(overlay)
	assert.Equal(t, uint8(0x22), bus.Read(0x0010))
}

func TestBusOpenBusOnUnmappedRead(t *testing.T) {
	bus := NewBus()
	assert.Equal(t, uint8(0xFF), bus.Read(0x1234))
}

func TestBusBusyClassBlocksReadsAndWrites(t *testing.T) {
	bus := NewBus()
	ram := NewRAM(0x8000, 0x10)
	bus.Map(0x8000, 0x800F, ClassVideo, ram, "vram")

	bus.SetBusy(ClassVideo, true)
	bus.Write(0x8000, 0x55)
	assert.Equal(t, uint8(0xFF), bus.Read(0x8000))

	bus.SetBusy(ClassVideo, false)
	bus.Write(0x8000, 0x55)
	assert.Equal(t, uint8(0x55), bus.Read(0x8000))
}

func TestBusRawBypassesBusyLock(t *testing.T) {
	bus := NewBus()
	ram := NewRAM(0x8000, 0x10)
	bus.Map(0x8000, 0x800F, ClassVideo, ram, "vram")
	bus.SetBusy(ClassVideo, true)

	bus.WriteRaw(0x8000, 0x42)
	assert.Equal(t, uint8(0x42), bus.ReadRaw(0x8000))
}

func TestFaultKindString(t *testing.T) {
	assert.Equal(t, "range", Range.String())
	assert.Equal(t, "disabled", Disabled.String())
	assert.Equal(t, "busy", Busy.String())
	assert.Equal(t, "misuse", Misuse.String())
}
