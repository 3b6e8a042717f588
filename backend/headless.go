package backend

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rgcarr/dmgcore/input"
	"github.com/rgcarr/dmgcore/video"
)

// Headless drives a fixed number of frames with no interactive output,
// optionally dumping a PNG snapshot every N frames — the harness used by
// the conformance test suites and the CLI's --headless mode.
type Headless struct {
	MaxFrames        int
	SnapshotInterval int
	SnapshotDir      string
	ROMName          string

	frameCount int
	logger     *slog.Logger
}

// NewHeadless returns a Headless backend; logger defaults to slog.Default.
func NewHeadless(maxFrames int, logger *slog.Logger) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	return &Headless{MaxFrames: maxFrames, logger: logger}
}

func (h *Headless) Init(cfg Config) error {
	if h.SnapshotInterval > 0 {
		if err := os.MkdirAll(h.SnapshotDir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot dir: %w", err)
		}
	}
	h.logger.Info("headless backend starting", "max_frames", h.MaxFrames)
	return nil
}

// Done reports whether MaxFrames have elapsed.
func (h *Headless) Done() bool { return h.frameCount >= h.MaxFrames }

func (h *Headless) Update(frame *video.FrameBuffer) ([]input.Action, error) {
	h.frameCount++

	if h.SnapshotInterval > 0 && h.frameCount%h.SnapshotInterval == 0 {
		path := filepath.Join(h.SnapshotDir, fmt.Sprintf("%s_frame_%d.png", h.ROMName, h.frameCount))
		if err := SaveFramePNG(frame, path); err != nil {
			h.logger.Error("snapshot failed", "frame", h.frameCount, "error", err)
		} else {
			h.logger.Debug("snapshot saved", "frame", h.frameCount, "path", path)
		}
	}

	if h.frameCount%60 == 0 {
		h.logger.Info("frame progress", "completed", h.frameCount, "total", h.MaxFrames)
	}

	var actions []input.Action
	if h.Done() {
		actions = append(actions, input.Quit)
	}
	return actions, nil
}

func (h *Headless) Cleanup() error { return nil }

// SaveFramePNG encodes a framebuffer as a 160x144 RGBA PNG.
func SaveFramePNG(fb *video.FrameBuffer, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, 160, 144))
	pixels := fb.ToSlice()
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			rgba := pixels[y*160+x]
			img.Set(x, y, color.RGBA{
				R: uint8(rgba >> 24),
				G: uint8(rgba >> 16),
				B: uint8(rgba >> 8),
				A: uint8(rgba),
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
