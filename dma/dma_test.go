package dma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/mem"
)

func TestTransferCopies160BytesOverTransferLengthTicks(t *testing.T) {
	bus := mem.NewBus()
	src := mem.NewRAM(0xB000, 0x100)
	for i := 0; i < 0x100; i++ {
		require.NoError(t, src.Write(0xB000+uint16(i), byte(i)))
	}
	oam := mem.NewRAM(addr.OAMStart, int(addr.OAMEnd-addr.OAMStart)+1)
	bus.Map(0xB000, 0xB0FF, mem.ClassExternal, src, "src")
	bus.Map(addr.OAMStart, addr.OAMEnd, mem.ClassVideo, oam, "oam")

	d := New(bus)
	d.Write(addr.DMA, 0xB0)
	assert.False(t, d.Active(), "a Req doesn't become active until the next Tick")

	for i := 0; i < transferLength+1; i++ {
		d.Tick()
	}

	assert.False(t, d.Active(), "transfer should have completed")
	for i := 0; i < transferLength; i++ {
		v, err := oam.Read(addr.OAMStart + uint16(i))
		require.NoError(t, err)
		assert.Equal(t, byte(i), v)
	}
}

func TestBusLocksExternalAndVideoWhileActive(t *testing.T) {
	bus := mem.NewBus()
	src := mem.NewRAM(0xB000, 0x100)
	oam := mem.NewRAM(addr.OAMStart, int(addr.OAMEnd-addr.OAMStart)+1)
	bus.Map(0xB000, 0xB0FF, mem.ClassExternal, src, "src")
	bus.Map(addr.OAMStart, addr.OAMEnd, mem.ClassVideo, oam, "oam")

	d := New(bus)
	d.Write(addr.DMA, 0xB0)
	d.Tick() // Req -> On, locks the buses

	assert.True(t, d.Active())
	assert.Equal(t, uint8(0xFF), bus.Read(0xB000), "external bus should read open-bus while DMA owns it")
}

func TestLatchedWriteDuringActiveTransferDoesNotRestart(t *testing.T) {
	bus := mem.NewBus()
	src := mem.NewRAM(0xB000, 0x100)
	oam := mem.NewRAM(addr.OAMStart, int(addr.OAMEnd-addr.OAMStart)+1)
	bus.Map(0xB000, 0xB0FF, mem.ClassExternal, src, "src")
	bus.Map(addr.OAMStart, addr.OAMEnd, mem.ClassVideo, oam, "oam")

	d := New(bus)
	d.Write(addr.DMA, 0xB0)
	d.Tick()
	for i := 0; i < 10; i++ {
		d.Tick()
	}

	d.Write(addr.DMA, 0xB1) // should update the latch but not restart the transfer

	v, err := d.Read(addr.DMA)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xB1), v)
	assert.True(t, d.Active(), "in-flight transfer should not have been interrupted")
}

func TestLatchedWriteDuringActiveTransferDoesNotCorruptInFlightSource(t *testing.T) {
	bus := mem.NewBus()
	src1 := mem.NewRAM(0xB000, 0x100)
	src2 := mem.NewRAM(0xB100, 0x100)
	for i := 0; i < 0x100; i++ {
		require.NoError(t, src1.Write(0xB000+uint16(i), byte(i)))
		require.NoError(t, src2.Write(0xB100+uint16(i), 0xEE))
	}
	oam := mem.NewRAM(addr.OAMStart, int(addr.OAMEnd-addr.OAMStart)+1)
	bus.Map(0xB000, 0xB0FF, mem.ClassExternal, src1, "src1")
	bus.Map(0xB100, 0xB1FF, mem.ClassExternal, src2, "src2")
	bus.Map(addr.OAMStart, addr.OAMEnd, mem.ClassVideo, oam, "oam")

	d := New(bus)
	d.Write(addr.DMA, 0xB0)
	d.Tick() // Req -> On
	for i := 0; i < 10; i++ {
		d.Tick()
	}

	d.Write(addr.DMA, 0xB1) // mid-transfer write: must not redirect the running copy's source

	for d.Active() {
		d.Tick()
	}

	for i := 0; i < transferLength; i++ {
		v, err := oam.Read(addr.OAMStart + uint16(i))
		require.NoError(t, err)
		assert.Equal(t, byte(i), v, "byte %d should still come from the original $B000 source, not $B100", i)
	}
}

func TestResetClearsStateButKeepsBus(t *testing.T) {
	bus := mem.NewBus()
	d := New(bus)
	d.Write(addr.DMA, 0xB0)
	d.Tick()
	require.True(t, d.Active())

	d.Reset()

	assert.False(t, d.Active())
	v, err := d.Read(addr.DMA)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v)
}
