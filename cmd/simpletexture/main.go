// Command simpletexture draws a textured quad.
//
// Usage:
//
//	simpletexture [-config file.yaml] [-backend name] [-media dirs] [-headless -frames n -capture out.png] [-v]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/samples/config"
	"github.com/gogpu/samples/internal/cli"
	"github.com/gogpu/samples/samples/simpletexture"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, "simpletexture", os.Args[1:], os.Stderr, run)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config) error {
	return cli.Run(ctx, cfg, simpletexture.Title, simpletexture.Factory(simpletexture.Options{
		Device:  cli.DeviceOptions(cfg),
		Finder:  cfg.Media.Finder(),
		Texture: cfg.Media.Texture,
	}))
}
