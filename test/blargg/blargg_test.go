package blargg

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgcarr/dmgcore/backend"
	"github.com/rgcarr/dmgcore/board"
	"github.com/rgcarr/dmgcore/cart"
)

// romCase pairs a Blargg cpu_instrs ROM with how many frames it needs to
// reach its pass/fail screen.
type romCase struct {
	name      string
	romPath   string
	maxFrames int
}

func romCases() []romCase {
	baseDir := "../../test-roms"
	return []romCase{
		{"01-special", filepath.Join(baseDir, "01-special.gb"), 500},
		{"02-interrupts", filepath.Join(baseDir, "02-interrupts.gb"), 500},
		{"04-op-r-imm", filepath.Join(baseDir, "04-op r,imm.gb"), 500},
		{"06-ld-r-r", filepath.Join(baseDir, "06-ld r,r.gb"), 500},
		{"09-op-r-r", filepath.Join(baseDir, "09-op r,r.gb"), 1000},
		{"10-bit-ops", filepath.Join(baseDir, "10-bit ops.gb"), 1000},
		{"11-op-a-hl", filepath.Join(baseDir, "11-op a,(hl).gb"), 1500},
	}
}

func TestBlarggSuite(t *testing.T) {
	for _, rc := range romCases() {
		rc := rc
		t.Run(rc.name, func(t *testing.T) {
			runBlarggCase(t, rc)
		})
	}
}

func runBlarggCase(t *testing.T, rc romCase) {
	if _, err := os.Stat(rc.romPath); os.IsNotExist(err) {
		t.Skipf("ROM file not found: %s", rc.romPath)
	}

	rom, err := board.LoadROMFile(rc.romPath)
	require.NoError(t, err)

	mb, err := board.New(rom, board.Options{SaveLoadPolicy: cart.SaveLoadNever})
	require.NoError(t, err)

	var frame []byte
	for i := 0; i < rc.maxFrames; i++ {
		fb := mb.RunFrame()
		frame = fb.ToGrayscale()
	}

	require.NoError(t, os.MkdirAll("testdata", 0o755))
	goldenPath := filepath.Join("testdata", rc.name+".bin")
	hash := fmt.Sprintf("%x", md5.Sum(frame))

	if os.Getenv("DMGCORE_GENERATE_GOLDEN") == "true" {
		require.NoError(t, os.WriteFile(goldenPath, frame, 0o644))
		require.NoError(t, os.MkdirAll(filepath.Join("testdata", "snapshots"), 0o755))
		require.NoError(t, backend.SaveFramePNG(mb.PPU.Frame(), filepath.Join("testdata", "snapshots", rc.name+".png")))
		t.Logf("golden generated for %s: %s", rc.name, hash)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "golden file missing — run with DMGCORE_GENERATE_GOLDEN=true first")
	require.Equal(t, fmt.Sprintf("%x", md5.Sum(expected)), hash, "rendered output differs from golden for %s", rc.name)
}
