package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/samples"
)

// Result summarizes a headless run.
type Result struct {
	// Ticks is how many ticks ran.
	Ticks int
	// Presented is how many frames reached the presenter.
	Presented int
	// Exited reports whether the app asked to exit.
	Exited bool
}

// RunHeadless drives the app for opts.Frames ticks without a window. Keys
// scripted for a frame are pressed before that tick and released after
// it. The run stops early when the app exits or ctx is done. If
// opts.Capture is set the last frame is written there as PNG.
func RunHeadless(ctx context.Context, opts Options, newApp Factory) (Result, error) {
	var res Result
	if opts.Frames <= 0 {
		return res, fmt.Errorf("host: headless run needs frames, got %d", opts.Frames)
	}

	events := NewEvents()
	presenter := &FramePresenter{}
	app, err := newApp(Env{
		Events:    events,
		Presenter: presenter,
		Exit:      func() { res.Exited = true },
	})
	if err != nil {
		return res, err
	}
	if app == nil {
		return res, ErrNoApp
	}
	defer app.Close()

	width, height := opts.size(app)
	if err := app.Initialize(width, height); err != nil {
		return res, err
	}
	app.OnActivated()

	script := make(map[int][]ScriptedKey, len(opts.Keys))
	for _, k := range opts.Keys {
		script[k.Frame] = append(script[k.Frame], k)
	}

	for frame := 0; frame < opts.Frames && !res.Exited; frame++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		for _, k := range script[frame] {
			events.Press(k.Key, 0)
		}
		err := app.Tick()
		res.Ticks++
		for _, k := range script[frame] {
			events.Release(k.Key, 0)
		}
		if err != nil {
			return res, err
		}
	}
	res.Presented = presenter.Frames()
	samples.Logger().Info("host: headless run finished",
		"ticks", res.Ticks, "presented", res.Presented, "exited", res.Exited)

	if opts.Capture != "" {
		if err := presenter.SavePNG(opts.Capture); err != nil {
			if errors.Is(err, ErrNoFrame) {
				return res, fmt.Errorf("host: capture %s: %w", opts.Capture, err)
			}
			return res, err
		}
	}
	return res, nil
}
