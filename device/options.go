package device

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Default formats. The back buffer is sRGB so shading happens in linear
// space and output is gamma correct.
const (
	DefaultBackBufferFormat = gputypes.TextureFormatBGRA8UnormSrgb
	DefaultDepthFormat      = gputypes.TextureFormatDepth32Float
)

// Option configures Resources.
type Option func(*options)

type options struct {
	backendName      string
	backend          hal.Backend
	backBufferFormat gputypes.TextureFormat
	depthFormat      gputypes.TextureFormat
	presenter        Presenter
	debug            bool

	// wrapQueue lets tests intercept queue calls.
	wrapQueue func(hal.Queue) hal.Queue
}

func defaultOptions() options {
	return options{
		backendName:      BackendAuto,
		backBufferFormat: DefaultBackBufferFormat,
		depthFormat:      DefaultDepthFormat,
	}
}

// WithBackendName selects a registered backend by name.
func WithBackendName(name string) Option {
	return func(o *options) { o.backendName = name }
}

// WithBackend uses b directly, bypassing the registry.
func WithBackend(b hal.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithBackBufferFormat sets the render target format.
func WithBackBufferFormat(f gputypes.TextureFormat) Option {
	return func(o *options) { o.backBufferFormat = f }
}

// WithDepthFormat sets the depth buffer format. TextureFormatUndefined
// disables the depth buffer.
func WithDepthFormat(f gputypes.TextureFormat) Option {
	return func(o *options) { o.depthFormat = f }
}

// WithPresenter receives every presented frame.
func WithPresenter(p Presenter) Option {
	return func(o *options) { o.presenter = p }
}

// WithDebug requests backend validation layers.
func WithDebug(enabled bool) Option {
	return func(o *options) { o.debug = enabled }
}
