// Package device owns the GPU device for a sample: backend selection,
// instance, adapter, device and queue, and the window-size dependent
// render target and depth buffer.
//
// Resources follows a fixed sequence:
//
//	r := device.New(device.WithBackendName("auto"))
//	r.RegisterDeviceNotify(sample)
//	r.SetWindow(1280, 720)
//	r.CreateDeviceResources()
//	r.CreateWindowSizeDependentResources()
//
//	f, _ := r.BeginFrame()
//	pass := f.Clear(color)
//	// record draws
//	r.Present(f)
//
// When the hal layer reports a lost device, Present runs HandleDeviceLost:
// the Notify listener releases its resources, the device and
// size-dependent resources are recreated, and the listener is told to
// rebuild.
//
// Backends are looked up by name in a small registry over the hal backend
// registry. Programs link real backends with
//
//	import _ "github.com/gogpu/wgpu/hal/allbackends"
//
// and tests link the noop device with hal/noop.
package device
