package input

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
)

// fakeEvents records key handlers so tests can raise events.
type fakeEvents struct {
	gpucontext.NullEventSource
	press   func(gpucontext.Key, gpucontext.Modifiers)
	release func(gpucontext.Key, gpucontext.Modifiers)
}

func (f *fakeEvents) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers))   { f.press = fn }
func (f *fakeEvents) OnKeyRelease(fn func(gpucontext.Key, gpucontext.Modifiers)) { f.release = fn }

// fakePad returns a fixed state.
type fakePad struct{ state GamePadState }

func (p *fakePad) State(int) GamePadState { return p.state }

// fakePanel returns fixed buttons.
type fakePanel struct{ buttons PanelButtons }

func (p *fakePanel) Buttons() PanelButtons { return p.buttons }

func TestTrackerStates(t *testing.T) {
	var tr Tracker[GamePadButtons]
	steps := []struct {
		level GamePadButtons
		want  ButtonState
	}{
		{0, Up},
		{ButtonA, Pressed},
		{ButtonA, Held},
		{ButtonA | ButtonB, Held},
		{ButtonB, Released},
		{0, Up},
		{ButtonA, Pressed},
	}
	for i, s := range steps {
		tr.Update(s.level)
		if got := tr.State(ButtonA); got != s.want {
			t.Errorf("step %d: State(A) = %v, want %v", i, got, s.want)
		}
	}
}

func TestTrackerReset(t *testing.T) {
	var tr Tracker[PanelButtons]
	tr.Update(PanelButton1)
	tr.Update(PanelButton1)
	tr.Reset()
	tr.Update(PanelButton1)
	if tr.State(PanelButton1) != Pressed {
		t.Errorf("held button after Reset = %v, want Pressed", tr.State(PanelButton1))
	}
}

func TestButtonStateString(t *testing.T) {
	for s, want := range map[ButtonState]string{Up: "Up", Held: "Held", Released: "Released", Pressed: "Pressed", 9: "Unknown"} {
		if s.String() != want {
			t.Errorf("ButtonState(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}

func TestKeyboardAttach(t *testing.T) {
	ev := &fakeEvents{}
	kb := NewKeyboard()
	kb.Attach(ev)

	ev.press(gpucontext.KeyA, 0)
	if !kb.IsKeyDown(gpucontext.KeyA) {
		t.Fatal("KeyA should be down after press event")
	}
	ev.release(gpucontext.KeyA, 0)
	if kb.IsKeyDown(gpucontext.KeyA) {
		t.Fatal("KeyA should be up after release event")
	}
}

func TestKeyboardLatchesShortPress(t *testing.T) {
	kb := NewKeyboard()
	kb.Press(gpucontext.KeyEscape)
	kb.Release(gpucontext.KeyEscape)

	s := kb.Snapshot()
	if !s.WasPressed(gpucontext.KeyEscape) {
		t.Error("press+release between snapshots was lost")
	}
	if !s.WasReleased(gpucontext.KeyEscape) {
		t.Error("release between snapshots was lost")
	}
	if s.IsKeyDown(gpucontext.KeyEscape) {
		t.Error("key reported down after release")
	}

	s = kb.Snapshot()
	if s.WasPressed(gpucontext.KeyEscape) {
		t.Error("press reported again in the following snapshot")
	}
}

func TestKeyboardAutoRepeat(t *testing.T) {
	kb := NewKeyboard()
	kb.Press(gpucontext.KeySpace)
	_ = kb.Snapshot()
	kb.Press(gpucontext.KeySpace) // repeat while held
	s := kb.Snapshot()
	if s.WasPressed(gpucontext.KeySpace) {
		t.Error("auto-repeat counted as a new press")
	}
	if !s.IsKeyDown(gpucontext.KeySpace) {
		t.Error("held key not reported down")
	}
}

func TestKeyboardSnapshotIsImmutable(t *testing.T) {
	kb := NewKeyboard()
	kb.Press(gpucontext.KeyB)
	s := kb.Snapshot()
	kb.Release(gpucontext.KeyB)
	kb.Press(gpucontext.KeyC)
	if !s.IsKeyDown(gpucontext.KeyB) || s.IsKeyDown(gpucontext.KeyC) {
		t.Error("snapshot observed later input")
	}
}

func TestKeyboardOutOfRangeKey(t *testing.T) {
	kb := NewKeyboard()
	k := gpucontext.Key(1000)
	kb.Press(k)
	if kb.IsKeyDown(k) {
		t.Error("out of range key should be ignored")
	}
}

func TestKeyboardReset(t *testing.T) {
	kb := NewKeyboard()
	kb.Press(gpucontext.KeyLeft)
	kb.Reset()
	s := kb.Snapshot()
	if s.IsKeyDown(gpucontext.KeyLeft) || s.WasPressed(gpucontext.KeyLeft) {
		t.Error("Reset left key state behind")
	}
}

func TestKeyboardGamePad(t *testing.T) {
	kb := NewKeyboard()
	pad := KeyboardGamePad{Keyboard: kb}

	kb.Press(gpucontext.KeyBackspace)
	kb.Press(gpucontext.KeyUp)
	s := pad.State(0)
	if !s.Connected {
		t.Fatal("keyboard pad should report connected")
	}
	if !s.IsDown(ButtonView | ButtonDPadUp) {
		t.Errorf("buttons = %b, want View and DPadUp", s.Buttons)
	}
	if pad.State(1).Connected {
		t.Error("player 1 should be disconnected")
	}
	// Reading the pad must not consume keyboard edges.
	if !kb.Snapshot().WasPressed(gpucontext.KeyUp) {
		t.Error("pad state consumed the keyboard press latch")
	}
}

func TestPollerEdges(t *testing.T) {
	pad := &fakePad{state: GamePadState{Connected: true}}
	panel := &fakePanel{}
	p := NewPoller(WithGamePad(pad), WithPanel(panel))

	s := p.Poll()
	if s.PadPressed != 0 || s.PanelPressed != 0 {
		t.Fatalf("idle poll reported presses: %+v", s)
	}

	pad.state.Buttons = ButtonA
	panel.buttons = PanelDPadLeft
	s = p.Poll()
	if s.PadPressed != ButtonA {
		t.Errorf("PadPressed = %b, want A", s.PadPressed)
	}
	if s.PanelPressed != PanelDPadLeft {
		t.Errorf("PanelPressed = %b, want DPadLeft", s.PanelPressed)
	}

	s = p.Poll()
	if s.PadPressed != 0 || s.PanelPressed != 0 {
		t.Errorf("held buttons reported pressed again: pad %b panel %b", s.PadPressed, s.PanelPressed)
	}

	pad.state.Buttons = 0
	panel.buttons = 0
	s = p.Poll()
	if s.PadReleased != ButtonA || s.PanelReleased != PanelDPadLeft {
		t.Errorf("releases = pad %b panel %b", s.PadReleased, s.PanelReleased)
	}
}

func TestPollerDisconnectedPad(t *testing.T) {
	pad := &fakePad{state: GamePadState{Connected: true, Buttons: ButtonView}}
	p := NewPoller(WithGamePad(pad))
	_ = p.Poll()

	pad.state = GamePadState{Connected: false, Buttons: ButtonView}
	if s := p.Poll(); s.PadPressed != 0 {
		t.Errorf("disconnected pad reported presses %b", s.PadPressed)
	}
}

func TestExitActionOncePerPress(t *testing.T) {
	tests := []struct {
		name  string
		press func(kb *Keyboard, pad *fakePad)
	}{
		{"escape", func(kb *Keyboard, _ *fakePad) { kb.Press(gpucontext.KeyEscape) }},
		{"escape tapped", func(kb *Keyboard, _ *fakePad) {
			kb.Press(gpucontext.KeyEscape)
			kb.Release(gpucontext.KeyEscape)
		}},
		{"view", func(_ *Keyboard, pad *fakePad) { pad.state.Buttons = ButtonView }},
		{"both at once", func(kb *Keyboard, pad *fakePad) {
			kb.Press(gpucontext.KeyEscape)
			pad.state.Buttons = ButtonView
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := NewKeyboard()
			pad := &fakePad{state: GamePadState{Connected: true}}
			p := NewPoller(WithKeyboard(kb), WithGamePad(pad))
			signals := 0
			exit := NewExitAction(func() { signals++ })

			exit.Check(p.Poll())
			tt.press(kb, pad)
			for i := 0; i < 5; i++ {
				exit.Check(p.Poll())
			}
			if signals != 1 {
				t.Errorf("exit signals = %d, want 1", signals)
			}
			if exit.Fired() != 1 {
				t.Errorf("Fired() = %d, want 1", exit.Fired())
			}
		})
	}
}

func TestExitActionSecondPress(t *testing.T) {
	kb := NewKeyboard()
	p := NewPoller(WithKeyboard(kb))
	exit := NewExitAction(nil)

	kb.Press(gpucontext.KeyEscape)
	exit.Check(p.Poll())
	kb.Release(gpucontext.KeyEscape)
	exit.Check(p.Poll())
	kb.Press(gpucontext.KeyEscape)
	exit.Check(p.Poll())

	if exit.Fired() != 2 {
		t.Errorf("Fired() = %d after two presses, want 2", exit.Fired())
	}
}

func TestKeyByName(t *testing.T) {
	tests := []struct {
		name string
		want gpucontext.Key
	}{
		{"escape", gpucontext.KeyEscape},
		{"Left", gpucontext.KeyLeft},
		{" SPACE ", gpucontext.KeySpace},
		{"a", gpucontext.KeyA},
		{"z", gpucontext.KeyZ},
		{"0", gpucontext.Key0},
		{"9", gpucontext.Key9},
		{"f1", gpucontext.KeyF1},
		{"F12", gpucontext.KeyF12},
	}
	for _, tt := range tests {
		got, err := KeyByName(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("KeyByName(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}
	if _, err := KeyByName("hyper"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("KeyByName(hyper) err = %v", err)
	}
}
