// Command frontpaneltext shows the raster fonts on an emulated front
// panel. Keys 1 to 5 are the panel buttons, the arrows its DPad.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/samples/config"
	"github.com/gogpu/samples/internal/cli"
	"github.com/gogpu/samples/samples/frontpaneltext"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, "frontpaneltext", os.Args[1:], os.Stderr, run)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	return cli.Run(ctx, cfg, frontpaneltext.Title, frontpaneltext.Factory(frontpaneltext.Options{
		Device:     cli.DeviceOptions(cfg),
		Finder:     cfg.Media.Finder(),
		Background: cfg.Media.Texture,
		CaptureDir: wd,
	}))
}
