// Package cart implements cartridge header parsing, MBC selection and the
// no-MBC/MBC1/MBC3/MBC5 bank-switching mappers.
package cart

import (
	"bytes"
	"fmt"
)

// header field offsets, relative to the start of the ROM image.
const (
	entryPointAddr = 0x0100
	logoAddr       = 0x0104
	titleAddr      = 0x0134
	titleLength    = 11 // up to the manufacturer-code/CGB-flag overlap
	cgbFlagAddr    = 0x0143
	sgbFlagAddr    = 0x0146
	cartTypeAddr   = 0x0147
	romSizeAddr    = 0x0148
	ramSizeAddr    = 0x0149
	destCodeAddr   = 0x014A
	versionAddr    = 0x014C
	headerChkAddr  = 0x014D
	globalChkAddr  = 0x014E

	headerParseStart = 0x0100
	headerParseLen   = 80
	headerMinROMLen  = 0x0150
)

// nintendoLogo is the fixed 48-byte pattern every licensed cartridge embeds
// at $0104-$0133; boot ROMs refuse to start a game whose logo doesn't
// match. We expose the comparison but never gate loading on it
// (spec §3: "an unchecked load proceeds regardless").
var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// MBCKind identifies which mapper variant a cartridge type byte selects.
type MBCKind uint8

const (
	KindNoMBC MBCKind = iota
	KindMBC1
	KindMBC3
	KindMBC5
	kindUnsupported
)

func (k MBCKind) String() string {
	switch k {
	case KindNoMBC:
		return "no-mbc"
	case KindMBC1:
		return "mbc1"
	case KindMBC3:
		return "mbc3"
	case KindMBC5:
		return "mbc5"
	default:
		return "unsupported"
	}
}

// HeaderError is returned when a ROM image's header can't be parsed: it's
// too short, or declares a cartridge type this core doesn't implement.
type HeaderError struct {
	Reason string
}

func (e *HeaderError) Error() string { return "cartridge header: " + e.Reason }

// Header is the parsed content of $0100-$014F.
type Header struct {
	Title          string
	MBC            MBCKind
	HasRAM         bool
	HasBattery     bool
	HasTimer       bool
	HasRumble      bool
	ROMSizeCode    uint8
	ROMSize        int
	RAMSizeCode    uint8
	RAMSize        int
	Destination    uint8
	Version        uint8
	HeaderChecksum uint8
	GlobalChecksum uint16
	LogoMatches    bool
}

// ParseHeader reads the 80-byte header starting at $0100 out of rom and
// decodes it. Fails if rom is shorter than the minimum viable cartridge
// image or the cartridge-type byte isn't one of the mappers this core
// implements.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerMinROMLen {
		return nil, &HeaderError{Reason: fmt.Sprintf("ROM too short: %d bytes, need at least %d", len(rom), headerMinROMLen)}
	}

	raw := rom[headerParseStart : headerParseStart+headerParseLen]
	_ = raw // parsed field-by-field below using absolute offsets for clarity

	h := &Header{}

	titleBytes := rom[titleAddr : titleAddr+titleLength]
	h.Title = cleanTitle(titleBytes)

	h.LogoMatches = bytes.Equal(rom[logoAddr:logoAddr+48], nintendoLogo[:])

	cartType := rom[cartTypeAddr]
	kind, hasRAM, hasBattery, hasTimer, hasRumble, err := decodeCartType(cartType)
	if err != nil {
		return nil, err
	}
	h.MBC = kind
	h.HasRAM = hasRAM
	h.HasBattery = hasBattery
	h.HasTimer = hasTimer
	h.HasRumble = hasRumble

	h.ROMSizeCode = rom[romSizeAddr]
	h.ROMSize = 32 * 1024 << h.ROMSizeCode

	h.RAMSizeCode = rom[ramSizeAddr]
	h.RAMSize = ramSizeForCode(h.RAMSizeCode)

	h.Destination = rom[destCodeAddr]
	h.Version = rom[versionAddr]
	h.HeaderChecksum = rom[headerChkAddr]
	h.GlobalChecksum = uint16(rom[globalChkAddr])<<8 | uint16(rom[globalChkAddr+1])

	return h, nil
}

// ComputeHeaderChecksum recomputes the header checksum over $0134-$014C, as
// real hardware does at boot: (-Σ(byte[i]+1)) & 0xFF.
func ComputeHeaderChecksum(rom []byte) uint8 {
	var sum uint8
	for i := titleAddr; i <= 0x014C; i++ {
		sum -= rom[i] + 1
	}
	return sum
}

// decodeCartType maps the $0147 cartridge-type byte to an MBC kind plus
// feature bits. Unknown or unimplemented (MBC2, MBC6/7, pocket camera, …)
// codes are reported as HeaderError, matching §7's "unsupported MBC kind
// aborts construction with a specific variant".
func decodeCartType(b byte) (kind MBCKind, hasRAM, hasBattery, hasTimer, hasRumble bool, err error) {
	switch b {
	case 0x00:
		return KindNoMBC, false, false, false, false, nil
	case 0x08:
		return KindNoMBC, true, false, false, false, nil
	case 0x09:
		return KindNoMBC, true, true, false, false, nil
	case 0x01:
		return KindMBC1, false, false, false, false, nil
	case 0x02:
		return KindMBC1, true, false, false, false, nil
	case 0x03:
		return KindMBC1, true, true, false, false, nil
	case 0x0F:
		return KindMBC3, false, true, true, false, nil
	case 0x10:
		return KindMBC3, true, true, true, false, nil
	case 0x11:
		return KindMBC3, false, false, false, false, nil
	case 0x12:
		return KindMBC3, true, false, false, false, nil
	case 0x13:
		return KindMBC3, true, true, false, false, nil
	case 0x19:
		return KindMBC5, false, false, false, false, nil
	case 0x1A:
		return KindMBC5, true, false, false, false, nil
	case 0x1B:
		return KindMBC5, true, true, false, false, nil
	case 0x1C:
		return KindMBC5, false, false, false, true, nil
	case 0x1D:
		return KindMBC5, true, false, false, true, nil
	case 0x1E:
		return KindMBC5, true, true, false, true, nil
	default:
		return kindUnsupported, false, false, false, false, &HeaderError{Reason: fmt.Sprintf("unsupported cartridge type $%02X", b)}
	}
}

func ramSizeForCode(code byte) int {
	switch code {
	case 0x00:
		return 0
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

func cleanTitle(raw []byte) string {
	end := len(raw)
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}
	return string(raw[:end])
}
