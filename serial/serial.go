// Package serial implements the DMG's link-cable shift register (SB/SC).
// Cycle-accurate peer-to-peer transfer is explicitly out of scope (spec
// §1 Non-goals); what's modeled is the internal-clock shift timing and
// completion interrupt, exchanging with an abstract peer that defaults to
// "open" (no cable connected).
package serial

import (
	"log/slog"

	"github.com/rgcarr/dmgcore/addr"
	"github.com/rgcarr/dmgcore/bit"
	"github.com/rgcarr/dmgcore/mem"
	"github.com/rgcarr/dmgcore/pic"
)

// bitsPerTransfer is the width of one serial exchange (SB is 8 bits wide).
const bitsPerTransfer = 8

// Peer models the far end of the link cable: given the byte this side is
// shifting out, it returns the byte shifted in. The zero value (openPeer)
// represents no cable connected and always returns 0xFF, matching real
// hardware's pull-up idle state.
type Peer interface {
	Exchange(out byte) (in byte)
}

type openPeer struct{}

func (openPeer) Exchange(byte) byte { return 0xFF }

// Serial is the SB/SC shift register and its internal-clock transfer timer.
type Serial struct {
	sb, sc byte

	active        bool
	bitsRemaining int

	peer   Peer
	line   pic.Line
	logger *slog.Logger
}

// New returns a Serial port with no peer connected.
func New(line pic.Line) *Serial {
	return &Serial{peer: openPeer{}, line: line, logger: slog.Default()}
}

// SetPeer attaches an external collaborator to exchange bytes with.
func (s *Serial) SetPeer(p Peer) {
	if p == nil {
		p = openPeer{}
	}
	s.peer = p
}

// Reset restores power-on state in place, keeping the attached peer,
// interrupt line and logger.
func (s *Serial) Reset() {
	peer, line, logger := s.peer, s.line, s.logger
	*s = Serial{peer: peer, line: line, logger: logger}
}

// Tick advances the serial clock by one tick; the motherboard calls this
// once every 512 master ticks (§4.10), so one call shifts one bit.
func (s *Serial) Tick() {
	if !s.active {
		return
	}
	s.bitsRemaining--
	if s.bitsRemaining > 0 {
		return
	}

	rx := s.peer.Exchange(s.sb)
	s.sb = rx
	s.sc = bit.Clear(7, s.sc)
	s.active = false
	s.line.Raise(addr.Serial)
	s.logger.Debug("serial transfer complete", "sb", rx)
}

func (s *Serial) Read(address uint16) (uint8, error) {
	switch address {
	case addr.SB:
		return s.sb, nil
	case addr.SC:
		return s.sc | 0x7E, nil
	default:
		return 0, mem.NewFault(mem.Range, address)
	}
}

func (s *Serial) Write(address uint16, value uint8) error {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStart()
	default:
		return mem.NewFault(mem.Range, address)
	}
	return nil
}

func (s *Serial) maybeStart() {
	if s.active {
		return
	}
	// a transfer starts on internal clock (bit 0) with start (bit 7) set;
	// external-clock transfers need peer-driven pulses, out of scope here.
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}
	s.active = true
	s.bitsRemaining = bitsPerTransfer
}
