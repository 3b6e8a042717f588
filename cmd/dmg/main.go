// Command dmg runs the DMG emulator core against a ROM file, either
// interactively (terminal or SDL2) or headless for batch/conformance use.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	"github.com/rgcarr/dmgcore/backend"
	"github.com/rgcarr/dmgcore/board"
	"github.com/rgcarr/dmgcore/cart"
	"github.com/rgcarr/dmgcore/config"
	"github.com/rgcarr/dmgcore/input"
	"github.com/rgcarr/dmgcore/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmg"
	app.Usage = "dmg [options] <ROM file>"
	app.Description = "A cycle-accurate DMG (original Game Boy) emulator core"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "Path to a JSON config file"},
		cli.StringFlag{Name: "boot-rom", Usage: "Path to a 256-byte boot ROM (omit for synthetic boot)"},
		cli.StringFlag{Name: "save", Usage: "Path to battery-RAM save file"},
		cli.StringFlag{Name: "backend", Usage: "Interactive backend: terminal or sdl2"},
		cli.IntFlag{Name: "scale", Usage: "Window scale factor (sdl2 backend only)"},
		cli.BoolFlag{Name: "headless", Usage: "Run without an interactive backend"},
		cli.IntFlag{Name: "frames", Usage: "Frame count for --headless (required)"},
		cli.IntFlag{Name: "snapshot-interval", Usage: "Save a PNG snapshot every N frames in headless mode"},
		cli.StringFlag{Name: "snapshot-dir", Usage: "Directory for headless snapshots"},
		cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, or error"},
		cli.StringFlag{Name: "frame-pacing", Usage: "Interactive frame pacing: adaptive, ticker, or none (default adaptive)"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmg exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.Args().First()
	if romPath == "" {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}

	opts := resolveOptions(c)
	configureLogging(*opts.LogLevel)

	rom, err := board.LoadROMFile(romPath)
	if err != nil {
		return err
	}

	var bootROM []byte
	if *opts.BootROMPath != "" {
		bootROM, err = board.LoadROMFile(*opts.BootROMPath)
		if err != nil {
			return err
		}
	}

	mb, err := board.New(rom, board.Options{
		BootROM:        bootROM,
		SavePath:       *opts.SavePath,
		SaveLoadPolicy: cart.SaveLoadAuto,
		Logger:         slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("constructing motherboard: %w", err)
	}
	defer mb.Shutdown()

	if c.Bool("headless") {
		return runHeadless(c, mb, romPath)
	}
	return runInteractive(mb, *opts.Backend, *opts.Scale, c.String("frame-pacing"))
}

// resolveOptions builds the cascade: defaults < config file < environment
// < CLI flags, per the design notes' layering order.
func resolveOptions(c *cli.Context) config.Options {
	fileOpts := config.Options{}
	if path := c.String("config"); path != "" {
		if loaded, err := config.FromFile(path); err == nil {
			fileOpts = loaded
		} else {
			slog.Warn("failed to load config file", "path", path, "error", err)
		}
	}

	cliOpts := config.Options{}
	if v := c.String("boot-rom"); v != "" {
		cliOpts.BootROMPath = &v
	}
	if v := c.String("save"); v != "" {
		cliOpts.SavePath = &v
	}
	if v := c.String("backend"); v != "" {
		cliOpts.Backend = &v
	}
	if v := c.Int("scale"); c.IsSet("scale") {
		cliOpts.Scale = &v
	}
	if v := c.String("log-level"); v != "" {
		cliOpts.LogLevel = &v
	}

	merged := cliOpts.Merge(config.FromEnv()).Merge(fileOpts).Merge(config.Default())

	if merged.BootROMPath == nil {
		empty := ""
		merged.BootROMPath = &empty
	}
	if merged.SavePath == nil {
		empty := ""
		merged.SavePath = &empty
	}
	return merged
}

func configureLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func runHeadless(c *cli.Context, mb *board.Motherboard, romPath string) error {
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("--headless requires --frames with a positive value")
	}

	h := backend.NewHeadless(frames, slog.Default())
	h.SnapshotInterval = c.Int("snapshot-interval")
	h.SnapshotDir = c.String("snapshot-dir")
	if h.SnapshotInterval > 0 && h.SnapshotDir == "" {
		dir, err := os.MkdirTemp("", "dmgcore-snapshots-*")
		if err != nil {
			return fmt.Errorf("creating snapshot dir: %w", err)
		}
		h.SnapshotDir = dir
	}
	h.ROMName = strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))

	if err := h.Init(backend.Config{}); err != nil {
		return err
	}

	for !h.Done() {
		frame := mb.RunFrame()
		if _, err := h.Update(frame); err != nil {
			return err
		}
	}
	return h.Cleanup()
}

// newLimiter picks the frame pacing strategy for the interactive loop.
// "none" is for backends (or debugging) that want to run unthrottled;
// "ticker" is a cheaper, less precise alternative to the default adaptive
// pacing.
func newLimiter(strategy string) timing.Limiter {
	switch strategy {
	case "none":
		return timing.NewNoOpLimiter()
	case "ticker":
		return timing.NewTickerLimiter()
	default:
		return timing.NewAdaptiveLimiter()
	}
}

func runInteractive(mb *board.Motherboard, backendName string, scale int, framePacing string) error {
	var b backend.Backend
	switch backendName {
	case "sdl2":
		b = backend.NewSDL2()
	default:
		b = backend.NewTerminal()
	}

	if err := b.Init(backend.Config{Title: "dmgcore", Scale: scale}); err != nil {
		return err
	}
	defer b.Cleanup()

	limiter := newLimiter(framePacing)
	if stoppable, ok := limiter.(interface{ Stop() }); ok {
		defer stoppable.Stop()
	}

	for {
		frame := mb.RunFrame()
		actions, err := b.Update(frame)
		if err != nil {
			return err
		}
		for _, a := range actions {
			if a == input.Quit {
				return nil
			}
			if button, ok := a.Button(); ok {
				mb.Joypad.Press(button)
			}
		}
		limiter.WaitForNextFrame()
	}
}
