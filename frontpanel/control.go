package frontpanel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/samples/input"
)

// ErrBufferSize is returned when a presented buffer does not match the
// panel size.
var ErrBufferSize = errors.New("frontpanel: buffer size mismatch")

// Control is a front-panel device: a gray display, buttons and the lights
// above them.
type Control interface {
	Width() int
	Height() int
	// PresentBuffer shows buf, one byte per pixel, row-major.
	PresentBuffer(buf []byte) error
	Buttons() input.PanelButtons
	// SetLights turns on the lights of the given buttons and off the rest.
	SetLights(lights input.PanelButtons) error
}

// MemoryControl is an in-memory panel. Headless runs and tests read back
// what was presented.
type MemoryControl struct {
	mu       sync.Mutex
	width    int
	height   int
	frame    []byte
	presents int
	buttons  input.PanelButtons
	lights   input.PanelButtons
}

// NewMemoryControl returns a panel of the given size.
func NewMemoryControl(width, height int) *MemoryControl {
	return &MemoryControl{width: width, height: height, frame: make([]byte, width*height)}
}

// Width returns the panel width.
func (m *MemoryControl) Width() int { return m.width }

// Height returns the panel height.
func (m *MemoryControl) Height() int { return m.height }

// PresentBuffer copies buf as the shown frame.
func (m *MemoryControl) PresentBuffer(buf []byte) error {
	if len(buf) != m.width*m.height {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBufferSize, len(buf), m.width*m.height)
	}
	m.mu.Lock()
	copy(m.frame, buf)
	m.presents++
	m.mu.Unlock()
	return nil
}

// Buttons returns the held buttons.
func (m *MemoryControl) Buttons() input.PanelButtons {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buttons
}

// SetLights records the light state.
func (m *MemoryControl) SetLights(lights input.PanelButtons) error {
	m.mu.Lock()
	m.lights = lights
	m.mu.Unlock()
	return nil
}

// Press holds b down.
func (m *MemoryControl) Press(b input.PanelButtons) {
	m.mu.Lock()
	m.buttons |= b
	m.mu.Unlock()
}

// Release lets go of b.
func (m *MemoryControl) Release(b input.PanelButtons) {
	m.mu.Lock()
	m.buttons &^= b
	m.mu.Unlock()
}

// Frame returns a copy of the last presented frame.
func (m *MemoryControl) Frame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.frame...)
}

// Presents counts PresentBuffer calls.
func (m *MemoryControl) Presents() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presents
}

// Lights returns the light state.
func (m *MemoryControl) Lights() input.PanelButtons {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lights
}

// DefaultPanelKeys maps desktop keys to panel buttons.
var DefaultPanelKeys = map[gpucontext.Key]input.PanelButtons{
	gpucontext.Key1:     input.PanelButton1,
	gpucontext.Key2:     input.PanelButton2,
	gpucontext.Key3:     input.PanelButton3,
	gpucontext.Key4:     input.PanelButton4,
	gpucontext.Key5:     input.PanelButton5,
	gpucontext.KeyLeft:  input.PanelDPadLeft,
	gpucontext.KeyRight: input.PanelDPadRight,
	gpucontext.KeyUp:    input.PanelDPadUp,
	gpucontext.KeyDown:  input.PanelDPadDown,
	gpucontext.KeySpace: input.PanelDPadSelect,
}

// KeyboardControl is a MemoryControl whose buttons are read from the
// keyboard.
type KeyboardControl struct {
	*MemoryControl
	keyboard *input.Keyboard
	keys     map[gpucontext.Key]input.PanelButtons
}

// NewKeyboardControl returns a Width×Height panel driven by kb through
// keys, or DefaultPanelKeys when keys is nil.
func NewKeyboardControl(kb *input.Keyboard, keys map[gpucontext.Key]input.PanelButtons) *KeyboardControl {
	if keys == nil {
		keys = DefaultPanelKeys
	}
	return &KeyboardControl{
		MemoryControl: NewMemoryControl(Width, Height),
		keyboard:      kb,
		keys:          keys,
	}
}

// Buttons returns the panel buttons whose keys are held, plus any pressed
// through the embedded MemoryControl.
func (k *KeyboardControl) Buttons() input.PanelButtons {
	b := k.MemoryControl.Buttons()
	for key, btn := range k.keys {
		if k.keyboard.IsKeyDown(key) {
			b |= btn
		}
	}
	return b
}
