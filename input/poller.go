package input

import "github.com/gogpu/gpucontext"

// Snapshot is one tick of input. It is a value; holding on to it does not
// observe later input.
type Snapshot struct {
	Pad         GamePadState
	PadPressed  GamePadButtons
	PadReleased GamePadButtons

	Keys KeyboardState

	Panel         PanelButtons
	PanelPressed  PanelButtons
	PanelReleased PanelButtons
}

// KeyPressed reports whether k was pressed since the previous snapshot.
func (s Snapshot) KeyPressed(k gpucontext.Key) bool { return s.Keys.WasPressed(k) }

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithKeyboard sets the keyboard source.
func WithKeyboard(k *Keyboard) PollerOption {
	return func(p *Poller) { p.keyboard = k }
}

// WithGamePad sets the gamepad source.
func WithGamePad(g GamePad) PollerOption {
	return func(p *Poller) {
		if g != nil {
			p.pad = g
		}
	}
}

// WithPanel sets the front-panel button source.
func WithPanel(src PanelSource) PollerOption {
	return func(p *Poller) { p.panel = src }
}

// Poller takes snapshots and tracks button edges across them.
type Poller struct {
	keyboard *Keyboard
	pad      GamePad
	panel    PanelSource

	padTracker   Tracker[GamePadButtons]
	panelTracker Tracker[PanelButtons]
}

// NewPoller returns a poller. Sources left unset read as idle.
func NewPoller(opts ...PollerOption) *Poller {
	p := &Poller{pad: NoGamePad{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Keyboard returns the keyboard source, or nil.
func (p *Poller) Keyboard() *Keyboard { return p.keyboard }

// Poll reads every source once and returns the snapshot.
func (p *Poller) Poll() Snapshot {
	var s Snapshot

	s.Pad = p.pad.State(0)
	buttons := s.Pad.Buttons
	if !s.Pad.Connected {
		buttons = 0
		p.padTracker.Reset()
	}
	p.padTracker.Update(buttons)
	s.PadPressed = p.padTracker.PressedSet()
	s.PadReleased = p.padTracker.ReleasedSet()

	if p.keyboard != nil {
		s.Keys = p.keyboard.Snapshot()
	}

	if p.panel != nil {
		s.Panel = p.panel.Buttons()
	}
	p.panelTracker.Update(s.Panel)
	s.PanelPressed = p.panelTracker.PressedSet()
	s.PanelReleased = p.panelTracker.ReleasedSet()

	return s
}

// Reset forgets tracked edges and keyboard state.
func (p *Poller) Reset() {
	p.padTracker.Reset()
	p.panelTracker.Reset()
	if p.keyboard != nil {
		p.keyboard.Reset()
	}
}
