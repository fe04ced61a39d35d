// Package lifecycle implements the device lifecycle state machine shared by
// the samples.
//
// A sample owns exactly one Machine. The machine decides when the
// device-dependent and window-size-dependent resources are created or
// released; the sample supplies the work through a Handler.
//
//	Uninitialized -> Ready -> Lost -> Ready -> ... -> Terminated
//
// Transitions not on this path are rejected with ErrInvalidTransition.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/gogpu/samples"
)

// State is a device lifecycle state.
type State uint8

// Lifecycle states.
const (
	// Uninitialized is the state before Initialize.
	Uninitialized State = iota
	// Ready means the device and every scene resource are valid.
	Ready
	// Lost means the device was lost and scene resources are released.
	Lost
	// Terminated is final.
	Terminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Ready:
		return "Ready"
	case Lost:
		return "Lost"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// ErrInvalidTransition is returned when an event is not legal in the
// current state.
var ErrInvalidTransition = errors.New("lifecycle: invalid transition")

// Handler performs the resource work for each transition.
type Handler interface {
	// CreateDeviceDependentResources creates everything tied to the device.
	CreateDeviceDependentResources() error

	// CreateWindowSizeDependentResources creates the subset of resources
	// that depends on the output size. Called after
	// CreateDeviceDependentResources and on every real size change.
	CreateWindowSizeDependentResources() error

	// ReleaseDeviceDependentResources releases every scene resource.
	// Must tolerate partially created state.
	ReleaseDeviceDependentResources()
}

// Machine is the device lifecycle state machine. It is not safe for
// concurrent use; the samples drive it from the render thread only.
type Machine struct {
	handler    Handler
	state      State
	generation uint64
}

// New returns a machine in the Uninitialized state.
func New(h Handler) *Machine {
	return &Machine{handler: h}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Generation returns the number of times resources were brought to Ready.
// It is zero before Initialize and increments on every restore.
func (m *Machine) Generation() uint64 { return m.generation }

// Initialize creates all resources once and moves to Ready.
func (m *Machine) Initialize() error {
	if m.state != Uninitialized {
		return m.invalid(Ready)
	}
	return m.bringUp(Ready)
}

// DeviceLost releases all scene resources and moves to Lost.
func (m *Machine) DeviceLost() error {
	if m.state != Ready {
		return m.invalid(Lost)
	}
	m.handler.ReleaseDeviceDependentResources()
	m.set(Lost)
	return nil
}

// DeviceRestored recreates resources through the same sequence as
// Initialize and moves back to Ready.
func (m *Machine) DeviceRestored() error {
	if m.state != Lost {
		return m.invalid(Ready)
	}
	return m.bringUp(Ready)
}

// WindowSizeChanged rebuilds size-dependent resources when changed is
// true. The caller decides whether the size really changed; false is a
// no-op.
func (m *Machine) WindowSizeChanged(changed bool) error {
	if m.state != Ready {
		return m.invalid(Ready)
	}
	if !changed {
		return nil
	}
	if err := m.handler.CreateWindowSizeDependentResources(); err != nil {
		return fmt.Errorf("lifecycle: window size dependent resources: %w", err)
	}
	return nil
}

// Terminate releases resources if they are live and moves to Terminated.
// Calling it again is a no-op.
func (m *Machine) Terminate() {
	switch m.state {
	case Terminated:
		return
	case Ready:
		m.handler.ReleaseDeviceDependentResources()
	}
	m.set(Terminated)
}

func (m *Machine) bringUp(to State) error {
	if err := m.handler.CreateDeviceDependentResources(); err != nil {
		m.handler.ReleaseDeviceDependentResources()
		return fmt.Errorf("lifecycle: device dependent resources: %w", err)
	}
	if err := m.handler.CreateWindowSizeDependentResources(); err != nil {
		m.handler.ReleaseDeviceDependentResources()
		return fmt.Errorf("lifecycle: window size dependent resources: %w", err)
	}
	m.generation++
	m.set(to)
	return nil
}

func (m *Machine) set(to State) {
	samples.Logger().Info("lifecycle: transition",
		"from", m.state.String(), "to", to.String(), "generation", m.generation)
	m.state = to
}

func (m *Machine) invalid(to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, to)
}
