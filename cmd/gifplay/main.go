package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/junsooki/AirGIF/internal/config"
	"github.com/junsooki/AirGIF/internal/decoder"
	"github.com/junsooki/AirGIF/internal/display"
	"github.com/junsooki/AirGIF/internal/input"
	"github.com/junsooki/AirGIF/internal/logger"
	"github.com/junsooki/AirGIF/internal/looper"
	"github.com/junsooki/AirGIF/internal/player"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\nUsage: gifplay [flags] <file.gif>\n", err)
		os.Exit(2)
	}

	log := logger.NewConsole(cfg.Debug, "gifplay", cfg.NoColor)
	if cfg.JSONLog {
		log = logger.New(cfg.Debug)
	}
	log.Info().
		Str("file", cfg.File).
		Int("override_ms", cfg.OverrideMs).
		Bool("auto_suspend", cfg.AutoSuspend).
		Msg("AirGIF starting")

	// The display's Update loop drains this; it stands in for the UI thread.
	loop := looper.New()
	defer loop.Close()

	p := player.New(decoder.NewGIFFactory(cfg.MaxPixels), loop, log)
	if cfg.OverrideMs >= 0 {
		p.SetFrameOverride(time.Duration(cfg.OverrideMs) * time.Millisecond)
	}
	p.SetAutoSuspend(cfg.AutoSuspend)

	load := func() error {
		data, err := os.ReadFile(cfg.File)
		if err != nil {
			return err
		}
		return p.Load(data)
	}

	dispatcher := input.NewDispatcher(p, load, log)
	disp := display.NewEbitenDisplay(p, loop, dispatcher.Dispatch, display.Options{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
	}, log)
	p.SetVisibility(disp.Visible)
	p.OnRedraw(disp.Invalidate)

	if err := load(); err != nil {
		log.Fatal().Err(err).Msg("load")
	}
	if w, err := p.Width(); err == nil {
		h, _ := p.Height()
		log.Info().Int("width", w).Int("height", h).Msg("loaded")
	}
	p.Start()

	// Ebitengine RunGame must be on the main goroutine (macOS requirement).
	if err := disp.Run(); err != nil {
		log.Error().Err(err).Msg("display")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("pump did not exit")
	}
}
