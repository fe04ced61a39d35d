package input

// ButtonState is the edge state of one button between two updates.
type ButtonState uint8

// Button edge states.
const (
	// Up: not down now, not down before.
	Up ButtonState = iota
	// Held: down now and before.
	Held
	// Released: down before, up now.
	Released
	// Pressed: up before, down now.
	Pressed
)

// String returns the state name.
func (s ButtonState) String() string {
	switch s {
	case Up:
		return "Up"
	case Held:
		return "Held"
	case Released:
		return "Released"
	case Pressed:
		return "Pressed"
	default:
		return "Unknown"
	}
}

// Buttons is a bit set of buttons.
type Buttons interface {
	~uint32
}

// Tracker derives press and release edges from successive button levels.
type Tracker[T Buttons] struct {
	last     T
	pressed  T
	released T
}

// Update records the current level and recomputes edges.
func (t *Tracker[T]) Update(current T) {
	t.pressed = current &^ t.last
	t.released = t.last &^ current
	t.last = current
}

// Reset forgets the previous level, so a button still held afterwards
// reports Pressed on the next Update.
func (t *Tracker[T]) Reset() {
	var zero T
	t.last, t.pressed, t.released = zero, zero, zero
}

// PressedSet returns every button pressed on the last Update.
func (t *Tracker[T]) PressedSet() T { return t.pressed }

// ReleasedSet returns every button released on the last Update.
func (t *Tracker[T]) ReleasedSet() T { return t.released }

// State returns the edge state of b, which should be a single button.
func (t *Tracker[T]) State(b T) ButtonState {
	switch {
	case t.pressed&b != 0:
		return Pressed
	case t.released&b != 0:
		return Released
	case t.last&b != 0:
		return Held
	default:
		return Up
	}
}
