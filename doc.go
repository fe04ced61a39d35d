// Package samples holds what the gogpu sample programs share at the top
// level: the module logger and the version string.
//
// # Layout
//
// The samples are built from small packages:
//   - device: GPU device, queue and back buffer ownership, device-loss cycle
//   - lifecycle: Uninitialized/Ready/Lost/Terminated state machine
//   - steptimer, frame: per-tick timing and the Update/Render driver
//   - input: keyboard, gamepad and front-panel snapshots with edge tracking
//   - imageload, media: media lookup and BGRA image decoding
//   - scene, quad: device-dependent resource sets and the textured quad
//   - frontpanel, canvas: the 256x64 panel display and gg-backed canvas
//   - host: window (gogpu) and headless drivers
//
// Two programs live under cmd/: simpletexture and frontpaneltext.
//
// # Logging
//
// Nothing is logged until SetLogger is called:
//
//	samples.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
package samples

// Version is the samples module version.
const Version = "0.1.0"
