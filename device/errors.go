package device

import (
	"errors"

	"github.com/gogpu/wgpu/hal"
)

// Errors returned by the device layer.
var (
	// ErrBackendNotAvailable is returned when the requested backend is not
	// registered or cannot be created.
	ErrBackendNotAvailable = errors.New("device: backend not available")

	// ErrInstanceCreation is returned when the backend cannot create an instance.
	ErrInstanceCreation = errors.New("device: failed to create instance")

	// ErrNoAdapter is returned when no adapter is enumerated.
	ErrNoAdapter = errors.New("device: no adapter found")

	// ErrDeviceCreation is returned when the adapter cannot open a device.
	ErrDeviceCreation = errors.New("device: failed to open device")

	// ErrTextureCreation is returned when a size-dependent texture cannot
	// be created.
	ErrTextureCreation = errors.New("device: failed to create texture")

	// ErrNotInitialized is returned when an operation needs a device that
	// has not been created yet.
	ErrNotInitialized = errors.New("device: not initialized")

	// ErrFrameInProgress is returned by BeginFrame when the previous frame
	// was not presented.
	ErrFrameInProgress = errors.New("device: frame already in progress")

	// ErrDeviceLost is the hal device-lost condition.
	ErrDeviceLost = hal.ErrDeviceLost
)
