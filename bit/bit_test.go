package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0xABCD), Combine(0xAB, 0xCD))
	assert.Equal(t, uint16(0x0000), Combine(0x00, 0x00))
}

func TestSetResetClear(t *testing.T) {
	assert.True(t, IsSet(3, Set(3, 0x00)))
	assert.False(t, IsSet(3, Reset(3, 0xFF)))
	assert.Equal(t, Reset(3, 0xFF), Clear(3, 0xFF))
}

func TestSetTo(t *testing.T) {
	assert.Equal(t, uint8(0x08), SetTo(3, 0x00, true))
	assert.Equal(t, uint8(0x00), SetTo(3, 0x08, false))
}

func TestHighLow(t *testing.T) {
	assert.Equal(t, uint8(0xAB), High(0xABCD))
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
}

func TestExtractBits(t *testing.T) {
	assert.Equal(t, uint8(0b101), ExtractBits(0b11010110, 6, 4))
}

func TestCheckedAdd8(t *testing.T) {
	result, carry := CheckedAdd8(0xFF, 0x01)
	assert.Equal(t, uint8(0x00), result)
	assert.True(t, carry)

	result, carry = CheckedAdd8(0x01, 0x01)
	assert.Equal(t, uint8(0x02), result)
	assert.False(t, carry)
}

func TestHalfCarryAdd8(t *testing.T) {
	assert.True(t, HalfCarryAdd8(0x0F, 0x01, 0))
	assert.False(t, HalfCarryAdd8(0x01, 0x01, 0))
}

func TestHalfCarrySub8(t *testing.T) {
	assert.True(t, HalfCarrySub8(0x10, 0x01, 0))
	assert.False(t, HalfCarrySub8(0x1F, 0x01, 0))
}

func TestHalfCarryAdd16(t *testing.T) {
	assert.True(t, HalfCarryAdd16(0x0FFF, 0x0001))
	assert.False(t, HalfCarryAdd16(0x0001, 0x0001))
}
