// Package cli holds the flag and logger plumbing shared by the sample
// programs.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/gogpu/samples"
	"github.com/gogpu/samples/config"
	"github.com/gogpu/samples/device"
	"github.com/gogpu/samples/host"
)

// Flags are the command-line overrides common to every sample.
type Flags struct {
	Config   string
	Backend  string
	Media    string
	Headless bool
	Frames   int
	Capture  string
	Verbose  bool
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "YAML config file")
	fs.StringVar(&f.Backend, "backend", "", "GPU backend: "+strings.Join(backendNames(), ", "))
	fs.StringVar(&f.Media, "media", "", "extra media directories, separated by "+string(os.PathListSeparator))
	fs.BoolVar(&f.Headless, "headless", false, "run without a window")
	fs.IntVar(&f.Frames, "frames", 0, "number of headless frames")
	fs.StringVar(&f.Capture, "capture", "", "write the last headless frame to this PNG")
	fs.BoolVar(&f.Verbose, "v", false, "debug logging")
}

func backendNames() []string {
	return []string{device.BackendAuto, device.BackendVulkan, device.BackendMetal,
		device.BackendDX12, device.BackendGL, device.BackendEmpty}
}

// Apply loads the config file, if any, and applies the flags over it.
// setFlags names the flags given on the command line; only those
// override the file.
func (f *Flags) Apply(setFlags map[string]bool) (config.Config, error) {
	cfg := config.Default()
	if f.Config != "" {
		var err error
		if cfg, err = config.Load(f.Config); err != nil {
			return config.Config{}, err
		}
	}

	if setFlags["backend"] {
		cfg.Backend = f.Backend
	}
	if f.Media != "" {
		roots := strings.Split(f.Media, string(os.PathListSeparator))
		cfg.Media.Roots = append(roots, cfg.Media.Roots...)
	}
	if setFlags["headless"] {
		cfg.Headless.Enabled = f.Headless
	}
	if setFlags["frames"] {
		cfg.Headless.Frames = f.Frames
	}
	if setFlags["capture"] {
		cfg.Headless.Capture = f.Capture
	}
	if f.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// Parse registers the flags on fs, parses args and returns the resulting
// config.
func Parse(fs *flag.FlagSet, args []string) (config.Config, error) {
	var f Flags
	f.Register(fs)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f.Apply(set)
}

// NewLogger builds the program logger. Format auto picks text when w is
// a terminal and JSON otherwise.
func NewLogger(w io.Writer, cfg config.Log) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	format := cfg.Format
	if format == "" || format == "auto" {
		format = "json"
		if isTerminal(w) {
			format = "text"
		}
	}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// DeviceOptions maps the config to device options.
func DeviceOptions(cfg config.Config) []device.Option {
	return []device.Option{
		device.WithBackendName(cfg.Backend),
		device.WithDebug(cfg.Debug),
	}
}

// Run drives the sample in a window, or headless when configured.
func Run(ctx context.Context, cfg config.Config, title string, newApp host.Factory) error {
	opts := host.OptionsFromConfig(cfg)
	if opts.Title == "" {
		opts.Title = title
	}
	if !cfg.Headless.Enabled {
		return host.RunWindow(opts, newApp)
	}
	res, err := host.RunHeadless(ctx, opts, newApp)
	if err != nil {
		return err
	}
	samples.Logger().Info("headless run", "ticks", res.Ticks, "presented", res.Presented)
	return nil
}

// Main installs the logger, runs the sample and returns the exit code.
func Main(ctx context.Context, name string, args []string, stderr io.Writer, run func(context.Context, config.Config) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := Parse(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 2
	}

	samples.SetLogger(NewLogger(stderr, cfg.Log))
	defer samples.SetLogger(nil)

	if err := run(ctx, cfg); err != nil {
		samples.Logger().Error(name+" failed", "err", err)
		return 1
	}
	return 0
}
