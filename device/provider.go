package device

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

var _ gpucontext.DeviceProvider = (*Resources)(nil)

// Device returns the hal device as a gpucontext handle.
func (r *Resources) Device() gpucontext.Device {
	if r.device == nil {
		return nil
	}
	return r.device
}

// Queue returns the hal queue as a gpucontext handle.
func (r *Resources) Queue() gpucontext.Queue {
	if r.queue == nil {
		return nil
	}
	return r.queue
}

// SurfaceFormat returns the back buffer format.
func (r *Resources) SurfaceFormat() gputypes.TextureFormat { return r.opts.backBufferFormat }

// Adapter returns the hal adapter as a gpucontext handle.
func (r *Resources) Adapter() gpucontext.Adapter {
	if r.adapter == nil {
		return nil
	}
	return r.adapter
}

// AdapterInfo reports the adapter name and class.
func (r *Resources) AdapterInfo() gpucontext.AdapterInfo {
	info := gpucontext.AdapterInfo{Name: r.adapterInfo.Name, Type: gpucontext.AdapterTypeUnknown}
	switch r.adapterInfo.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		info.Type = gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		info.Type = gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		info.Type = gpucontext.AdapterTypeSoftware
	}
	return info
}
