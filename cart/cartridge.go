package cart

import (
	"fmt"
	"log/slog"
	"os"
)

// SaveLoadPolicy controls whether New loads a save file from disk.
// LoadRAM itself does not consult it.
type SaveLoadPolicy uint8

const (
	// SaveLoadNever never reads a save file, regardless of the header.
	SaveLoadNever SaveLoadPolicy = iota
	// SaveLoadAuto reads the save file only if the header declares battery
	// backup. This is the policy cmd/dmg uses; the zero value is
	// SaveLoadNever.
	SaveLoadAuto
	// SaveLoadAlways reads the save file even if the header doesn't declare
	// a battery, for cartridges whose header lies.
	SaveLoadAlways
)

// Cartridge ties together a parsed header and the mapper it selects, and
// owns the battery-backed-RAM save file lifecycle described in spec §6.
type Cartridge struct {
	Header *Header
	MBC    MBC

	savePath string
	logger   *slog.Logger
}

// New parses rom's header and constructs the matching mapper. savePath, if
// non-empty, is the .sav file LoadRAM/DumpRAM use.
func New(rom []byte, savePath string, policy SaveLoadPolicy, logger *slog.Logger) (*Cartridge, error) {
	if logger == nil {
		logger = slog.Default()
	}

	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	var mbc MBC
	switch header.MBC {
	case KindNoMBC:
		mbc = NewNoMBC(rom, header.RAMSize)
	case KindMBC1:
		mbc = NewMBC1(rom, header.RAMSize)
	case KindMBC3:
		mbc = NewMBC3(rom, header.RAMSize, header.HasTimer)
	case KindMBC5:
		mbc = NewMBC5(rom, header.RAMSize)
	default:
		return nil, &HeaderError{Reason: fmt.Sprintf("cannot construct mapper for %s", header.MBC)}
	}

	c := &Cartridge{Header: header, MBC: mbc, savePath: savePath, logger: logger}

	shouldLoad := policy == SaveLoadAlways || (policy == SaveLoadAuto && header.HasBattery)
	if shouldLoad && savePath != "" {
		if err := c.LoadRAM(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading save RAM: %w", err)
		}
	}

	return c, nil
}

// LoadRAM reads savePath into the mapper's battery-backed RAM, truncating
// to the mapper's actual RAM size; a shorter file leaves the rest of RAM
// unchanged.
func (c *Cartridge) LoadRAM() error {
	p, ok := c.MBC.(Persistable)
	if !ok || c.savePath == "" {
		return nil
	}

	data, err := os.ReadFile(c.savePath)
	if err != nil {
		return err
	}

	dst := p.RAMBytes()
	n := copy(dst, data)
	c.logger.Info("loaded cartridge save", "path", c.savePath, "bytes", n)
	return nil
}

// DumpRAM writes the mapper's current battery-backed RAM to savePath. A
// cartridge with no battery or no save path configured is a no-op, matching
// the shutdown sequence in spec §6.
func (c *Cartridge) DumpRAM() error {
	p, ok := c.MBC.(Persistable)
	if !ok || c.savePath == "" || !c.Header.HasBattery {
		return nil
	}

	if err := os.WriteFile(c.savePath, p.RAMBytes(), 0o644); err != nil {
		return fmt.Errorf("dumping save RAM to %s: %w", c.savePath, err)
	}

	c.logger.Info("dumped cartridge save", "path", c.savePath, "bytes", len(p.RAMBytes()))
	return nil
}
