package cart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func romOfSize(banks int) []byte {
	rom := make([]byte, banks*0x4000)
	for i := range rom {
		rom[i] = 0 // filled in per-test via bank markers
	}
	return rom
}

func TestParseHeaderRejectsShortROM(t *testing.T) {
	_, err := ParseHeader(make([]byte, 0x10))
	assert.Error(t, err)
}

func TestParseHeaderRejectsUnsupportedCartType(t *testing.T) {
	rom := romOfSize(2)
	rom[cartTypeAddr] = 0xFC // pocket camera, unimplemented
	_, err := ParseHeader(rom)
	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
}

func TestParseHeaderDecodesTitleROMAndRAMSize(t *testing.T) {
	rom := romOfSize(2)
	copy(rom[titleAddr:], []byte("MYGAME"))
	rom[cartTypeAddr] = 0x03 // MBC1+RAM+BATTERY
	rom[romSizeAddr] = 0x01  // 64KB (4 banks)
	rom[ramSizeAddr] = 0x03  // 32KB

	h, err := ParseHeader(rom)
	require.NoError(t, err)

	assert.Equal(t, "MYGAME", h.Title)
	assert.Equal(t, KindMBC1, h.MBC)
	assert.True(t, h.HasRAM)
	assert.True(t, h.HasBattery)
	assert.Equal(t, 64*1024, h.ROMSize)
	assert.Equal(t, 32*1024, h.RAMSize)
}

func TestComputeHeaderChecksumMatchesKnownHeader(t *testing.T) {
	rom := romOfSize(2)
	copy(rom[titleAddr:], []byte("TEST"))
	rom[cartTypeAddr] = 0x00
	rom[romSizeAddr] = 0x00
	rom[ramSizeAddr] = 0x00

	rom[headerChkAddr] = ComputeHeaderChecksum(rom)

	var sum uint8
	for i := titleAddr; i <= 0x014C; i++ {
		sum -= rom[i] + 1
	}
	assert.Equal(t, sum, rom[headerChkAddr])
}

func TestNewBuildsNoMBCForCartTypeZero(t *testing.T) {
	rom := romOfSize(2)
	rom[cartTypeAddr] = 0x00

	c, err := New(rom, "", SaveLoadNever, nil)
	require.NoError(t, err)
	assert.IsType(t, &NoMBC{}, c.MBC)
}

func TestNewBuildsMBC1ForCartTypeOne(t *testing.T) {
	rom := romOfSize(4)
	rom[cartTypeAddr] = 0x01
	rom[romSizeAddr] = 0x01

	c, err := New(rom, "", SaveLoadNever, nil)
	require.NoError(t, err)
	assert.IsType(t, &MBC1{}, c.MBC)
}

func TestNoMBCReadsFixedWindow(t *testing.T) {
	rom := romOfSize(2)
	rom[0x0010] = 0xAB
	m := NewNoMBC(rom, 0)

	v, err := m.Read(0x0010)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), v)
}

func TestNoMBCWithoutRAMFaultsOnAccess(t *testing.T) {
	m := NewNoMBC(romOfSize(2), 0)
	_, err := m.Read(0xA000)
	assert.Error(t, err)
	assert.Error(t, m.Write(0xA000, 1))
}

func TestNoMBCWithRAMRoundTrips(t *testing.T) {
	m := NewNoMBC(romOfSize(2), 0x2000)
	require.NoError(t, m.Write(0xA010, 0x7F))

	v, err := m.Read(0xA010)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7F), v)
}

func TestNoMBCWritesToROMFault(t *testing.T) {
	m := NewNoMBC(romOfSize(2), 0)
	assert.Error(t, m.Write(0x0000, 1))
}

func TestMBC1BankZeroQuirkSelectsBankOneInstead(t *testing.T) {
	rom := romOfSize(4)
	rom[0x4000*1] = 0x11 // bank 1 marker at the start of its window

	m := NewMBC1(rom, 0)
	require.NoError(t, m.Write(0x2000, 0x00)) // writing 0 should select bank 1

	v, err := m.Read(0x4000)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x11), v)
}

func TestMBC1SwitchesROMBankViaPrimaryRegister(t *testing.T) {
	rom := romOfSize(4)
	rom[0x4000*3] = 0x33

	m := NewMBC1(rom, 0)
	require.NoError(t, m.Write(0x2000, 0x03))

	v, err := m.Read(0x4000)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x33), v)
}

func TestMBC1RAMDisabledByDefault(t *testing.T) {
	m := NewMBC1(romOfSize(2), 0x2000)
	_, err := m.Read(0xA000)
	assert.Error(t, err)
}

func TestMBC1RAMEnableGateUnlocksAccess(t *testing.T) {
	m := NewMBC1(romOfSize(2), 0x2000)
	require.NoError(t, m.Write(0x0000, 0x0A)) // enable RAM

	require.NoError(t, m.Write(0xA000, 0x55))
	v, err := m.Read(0xA000)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x55), v)
}

func TestMBC1RAMBankingModeSelectsSecondaryRAMBank(t *testing.T) {
	m := NewMBC1(romOfSize(2), 0x8000) // 4 RAM banks worth
	require.NoError(t, m.Write(0x0000, 0x0A))
	require.NoError(t, m.Write(0x6000, 0x01)) // RAM banking mode
	require.NoError(t, m.Write(0x4000, 0x02)) // select RAM bank 2

	require.NoError(t, m.Write(0xA000, 0x99))

	require.NoError(t, m.Write(0x4000, 0x00)) // back to bank 0
	v, err := m.Read(0xA000)
	require.NoError(t, err)
	assert.NotEqual(t, uint8(0x99), v, "bank 2's data should not leak into bank 0's window")
}

func TestCartridgeDumpAndLoadRAMRoundTripThroughSaveFile(t *testing.T) {
	rom := romOfSize(2)
	rom[cartTypeAddr] = 0x03 // MBC1+RAM+BATTERY
	rom[ramSizeAddr] = 0x02  // 8KB

	savePath := filepath.Join(t.TempDir(), "game.sav")
	c, err := New(rom, savePath, SaveLoadNever, nil)
	require.NoError(t, err)

	p := c.MBC.(Persistable)
	p.RAMBytes()[0] = 0x42
	require.NoError(t, c.DumpRAM())

	data, err := os.ReadFile(savePath)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), data[0])

	c2, err := New(rom, savePath, SaveLoadAlways, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), c2.MBC.(Persistable).RAMBytes()[0])
}
