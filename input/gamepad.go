package input

import "github.com/gogpu/gpucontext"

// GamePadButtons is a bit set of gamepad buttons.
type GamePadButtons uint32

// Gamepad buttons.
const (
	ButtonA GamePadButtons = 1 << iota
	ButtonB
	ButtonX
	ButtonY
	ButtonView
	ButtonMenu
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonLeftStick
	ButtonRightStick
	ButtonDPadUp
	ButtonDPadDown
	ButtonDPadLeft
	ButtonDPadRight
)

// GamePadState is one poll of a gamepad.
type GamePadState struct {
	Connected bool
	Buttons   GamePadButtons

	LeftStickX, LeftStickY   float32
	RightStickX, RightStickY float32
	LeftTrigger, RightTrigger float32
}

// IsDown reports whether every button in b is down.
func (s GamePadState) IsDown(b GamePadButtons) bool {
	return s.Connected && s.Buttons&b == b
}

// GamePad is a polled gamepad source.
type GamePad interface {
	State(player int) GamePadState
}

// NoGamePad reports a disconnected pad.
type NoGamePad struct{}

// State returns the zero state.
func (NoGamePad) State(int) GamePadState { return GamePadState{} }

// DefaultPadKeys maps keys to pad buttons for desktop hosts without a pad.
var DefaultPadKeys = map[gpucontext.Key]GamePadButtons{
	gpucontext.KeyEnter:     ButtonA,
	gpucontext.KeySpace:     ButtonA,
	gpucontext.KeyBackspace: ButtonView,
	gpucontext.KeyTab:       ButtonMenu,
	gpucontext.KeyUp:        ButtonDPadUp,
	gpucontext.KeyDown:      ButtonDPadDown,
	gpucontext.KeyLeft:      ButtonDPadLeft,
	gpucontext.KeyRight:     ButtonDPadRight,
	gpucontext.KeyQ:         ButtonLeftShoulder,
	gpucontext.KeyE:         ButtonRightShoulder,
}

// KeyboardGamePad emulates player 0's pad from keyboard levels.
type KeyboardGamePad struct {
	Keyboard *Keyboard
	// Keys maps a key to the pad buttons it drives. Nil uses DefaultPadKeys.
	Keys map[gpucontext.Key]GamePadButtons
}

// State returns the emulated pad. Players other than 0 are disconnected.
func (g KeyboardGamePad) State(player int) GamePadState {
	if player != 0 || g.Keyboard == nil {
		return GamePadState{}
	}
	keys := g.Keys
	if keys == nil {
		keys = DefaultPadKeys
	}
	s := GamePadState{Connected: true}
	for k, b := range keys {
		if g.Keyboard.IsKeyDown(k) {
			s.Buttons |= b
		}
	}
	return s
}
