package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/pic"
)

func TestRegisterReflectsSelectedGroup(t *testing.T) {
	p := pic.New()
	j := New(p.Line())

	require.NoError(t, j.Write(addr.P1, 0b0001_0000)) // select buttons
	j.Press(A)

	v, err := j.Read(addr.P1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v&0x01, "A bit should read low when pressed")
	assert.Equal(t, uint8(1), (v>>1)&0x01, "B should still read high")
}

func TestPressRaisesInterruptOnlyForSelectedGroup(t *testing.T) {
	p := pic.New()
	require.NoError(t, p.Write(addr.IE, addr.Joypad.Mask()))
	j := New(p.Line())

	require.NoError(t, j.Write(addr.P1, 0b0010_0000)) // select dpad only
	j.Press(A)                                        // buttons group, not selected
	assert.False(t, p.Pending(), "pressing an unselected group's button must not raise")

	j.Press(Up)
	assert.True(t, p.Pending(), "pressing a selected group's button must raise")
}

func TestReleaseClearsButton(t *testing.T) {
	p := pic.New()
	j := New(p.Line())
	require.NoError(t, j.Write(addr.P1, 0b0001_0000))

	j.Press(B)
	j.Release(B)

	v, err := j.Read(addr.P1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), (v>>1)&0x01)
}

func TestResetClearsPressedState(t *testing.T) {
	p := pic.New()
	j := New(p.Line())
	require.NoError(t, j.Write(addr.P1, 0b0001_0000))
	j.Press(A)

	j.Reset()

	require.NoError(t, j.Write(addr.P1, 0b0001_0000))
	v, err := j.Read(addr.P1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), v&0x01, "A should read released after Reset")
}
