package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/junsooki/AirGIF/internal/decoder"
)

// ErrNoFile is returned when no animation path was given.
var ErrNoFile = errors.New("config: no file given")

// Config holds all runtime configuration.
type Config struct {
	File        string `koanf:"file"`
	OverrideMs  int    `koanf:"override_ms"`  // -1 uses the animation's own delays
	AutoSuspend bool   `koanf:"auto_suspend"` // stop while the window is minimised
	MaxPixels   int    `koanf:"max_pixels"`   // width*height*frames budget
	Debug       bool   `koanf:"debug"`
	NoColor     bool   `koanf:"no_color"`
	JSONLog     bool   `koanf:"json_log"` // JSON lines on stderr instead of the console writer

	Window WindowConfig `koanf:"window"`
}

// WindowConfig holds the initial window settings.
type WindowConfig struct {
	Title  string `koanf:"title"`
	Width  int    `koanf:"width"`
	Height int    `koanf:"height"`
}

func defaults() *Config {
	return &Config{
		OverrideMs:  -1,
		AutoSuspend: true,
		MaxPixels:   decoder.DefaultMaxPixels,
		Window: WindowConfig{
			Title:  "AirGIF",
			Width:  640,
			Height: 480,
		},
	}
}

// Load reads config files, then applies flags from args. Flags win over
// files; the first positional argument is the file to play.
func Load(args []string) (*Config, error) {
	return load(getConfigPaths(), args)
}

func load(paths []string, args []string) (*Config, error) {
	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("config: %s: %w", path, err)
			}
		}
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	fs := pflag.NewFlagSet("gifplay", pflag.ContinueOnError)
	override := fs.IntP("override", "o", cfg.OverrideMs, "Frame duration in ms for every frame (-1 = use the file's delays)")
	autoSuspend := fs.Bool("auto-suspend", cfg.AutoSuspend, "Stop playback while the window is minimised")
	maxPixels := fs.Int("max-pixels", cfg.MaxPixels, "Refuse animations whose width*height*frames exceeds this")
	debug := fs.BoolP("debug", "d", cfg.Debug, "Debug logging")
	noColor := fs.Bool("no-color", cfg.NoColor, "Plain log output")
	jsonLog := fs.Bool("json-log", cfg.JSONLog, "Log JSON lines to stderr")
	title := fs.String("title", cfg.Window.Title, "Window title")
	width := fs.Int("width", cfg.Window.Width, "Initial window width")
	height := fs.Int("height", cfg.Window.Height, "Initial window height")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("override", func() { cfg.OverrideMs = *override })
	set("auto-suspend", func() { cfg.AutoSuspend = *autoSuspend })
	set("max-pixels", func() { cfg.MaxPixels = *maxPixels })
	set("debug", func() { cfg.Debug = *debug })
	set("no-color", func() { cfg.NoColor = *noColor })
	set("json-log", func() { cfg.JSONLog = *jsonLog })
	set("title", func() { cfg.Window.Title = *title })
	set("width", func() { cfg.Window.Width = *width })
	set("height", func() { cfg.Window.Height = *height })
	if fs.NArg() > 0 {
		cfg.File = fs.Arg(0)
	}

	if cfg.File == "" {
		return nil, ErrNoFile
	}
	cfg.File = expandPath(cfg.File)
	if cfg.OverrideMs < -1 {
		cfg.OverrideMs = -1
	}
	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/airgif/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "airgif", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
