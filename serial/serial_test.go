package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/pic"
)

type echoPeer struct{}

func (echoPeer) Exchange(out byte) byte { return out }

func TestOpenPeerReturnsAllOnes(t *testing.T) {
	p := pic.New()
	s := New(p.Line())

	require.NoError(t, s.Write(addr.SB, 0x3C))
	require.NoError(t, s.Write(addr.SC, 0x81)) // start + internal clock

	for i := 0; i < bitsPerTransfer; i++ {
		s.Tick()
	}

	v, err := s.Read(addr.SB)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), v)
}

func TestTransferCompletionRaisesInterruptAndClearsStartBit(t *testing.T) {
	p := pic.New()
	require.NoError(t, p.Write(addr.IE, addr.Serial.Mask()))
	s := New(p.Line())
	s.SetPeer(echoPeer{})

	require.NoError(t, s.Write(addr.SB, 0x55))
	require.NoError(t, s.Write(addr.SC, 0x81))

	for i := 0; i < bitsPerTransfer; i++ {
		s.Tick()
	}

	assert.True(t, p.Pending())
	v, err := s.Read(addr.SC)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v&0x80, "start bit clears on completion")
}

func TestExternalClockTransferDoesNotStart(t *testing.T) {
	p := pic.New()
	s := New(p.Line())
	require.NoError(t, s.Write(addr.SC, 0x80)) // start set, internal-clock bit clear

	s.Tick()
	assert.False(t, s.active)
}

func TestResetPreservesPeerAndLine(t *testing.T) {
	p := pic.New()
	require.NoError(t, p.Write(addr.IE, addr.Serial.Mask()))
	s := New(p.Line())
	s.SetPeer(echoPeer{})

	s.Reset()

	require.NoError(t, s.Write(addr.SB, 0x12))
	require.NoError(t, s.Write(addr.SC, 0x81))
	for i := 0; i < bitsPerTransfer; i++ {
		s.Tick()
	}

	v, err := s.Read(addr.SB)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x12), v, "peer should still be the echo peer after Reset")
}
