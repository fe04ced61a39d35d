// Package config loads sample settings from YAML. Command-line flags are
// applied on top by the programs.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/samples/device"
	"github.com/gogpu/samples/input"
	"github.com/gogpu/samples/media"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// maxFileSize bounds config files.
const maxFileSize = 1 << 20

// Config holds the settings of one sample run.
type Config struct {
	Window   Window   `yaml:"window"`
	Backend  string   `yaml:"backend"`
	Debug    bool     `yaml:"debug"`
	Media    Media    `yaml:"media"`
	Headless Headless `yaml:"headless"`
	Log      Log      `yaml:"log"`
}

// Window configures the host window.
type Window struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Continuous bool   `yaml:"continuous"`
}

// Media configures media lookup and the sample's assets.
type Media struct {
	// Roots are searched before the working and executable directories.
	Roots     []string `yaml:"roots"`
	MaxAscent *int     `yaml:"max_ascent"` // nil keeps the finder default
	// Texture is the image the sample shows.
	Texture string `yaml:"texture"`
}

// Finder returns a media finder searching Roots before the working and
// executable directories.
func (m Media) Finder() *media.Finder {
	opts := []media.Option{media.WithRoots(m.Roots...)}
	if m.MaxAscent != nil {
		opts = append(opts, media.WithMaxAscent(*m.MaxAscent))
	}
	return media.NewFinder(opts...)
}

// Headless configures a run without a window.
type Headless struct {
	Enabled bool `yaml:"enabled"`
	// Frames is the number of ticks to run.
	Frames int `yaml:"frames"`
	// Capture is the PNG path the last frame is written to, if set.
	Capture string `yaml:"capture"`
	// Keys are scripted key presses.
	Keys []ScriptedKey `yaml:"keys"`
}

// ScriptedKey presses Key before tick Frame and releases it after.
type ScriptedKey struct {
	Frame int    `yaml:"frame"`
	Key   string `yaml:"key"`
}

// Log configures the program's logger.
type Log struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is auto, text or json. Auto picks text on a terminal.
	Format string `yaml:"format"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Window: Window{
			Width:      1280,
			Height:     720,
			Continuous: true,
		},
		Backend:  device.BackendAuto,
		Headless: Headless{Frames: 60},
		Log:      Log{Level: "info", Format: "auto"},
	}
}

// Load reads path over Default and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(data) > maxFileSize {
		return Config{}, fmt.Errorf("%w: %s larger than %d bytes", ErrInvalid, path, maxFileSize)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Backend != "" && c.Backend != device.BackendAuto && !device.IsRegistered(c.Backend) {
		bad("backend %q", c.Backend)
	}
	if c.Media.MaxAscent != nil && *c.Media.MaxAscent < 0 {
		bad("media.max_ascent %d", *c.Media.MaxAscent)
	}
	if c.Headless.Frames < 0 {
		bad("headless.frames %d", c.Headless.Frames)
	}
	if c.Headless.Enabled && c.Headless.Frames == 0 {
		bad("headless run needs frames")
	}
	for i, k := range c.Headless.Keys {
		if k.Frame < 0 {
			bad("headless.keys[%d].frame %d", i, k.Frame)
		}
		if _, err := input.KeyByName(k.Key); err != nil {
			bad("headless.keys[%d]: %v", i, err)
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "auto", "text", "json":
	default:
		bad("log.format %q", c.Log.Format)
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: log.level %q", ErrInvalid, s)
}
