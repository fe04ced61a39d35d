package input

import "github.com/gogpu/gpucontext"

// ExitAction fires a callback once per press of the View button or the
// Escape key.
type ExitAction struct {
	fn    func()
	fired int
}

// NewExitAction returns an action that calls fn on each exit press.
func NewExitAction(fn func()) *ExitAction {
	return &ExitAction{fn: fn}
}

// Check fires the action if s contains a new exit press. A View press and
// an Escape press in the same snapshot count once.
func (e *ExitAction) Check(s Snapshot) bool {
	if s.PadPressed&ButtonView == 0 && !s.Keys.WasPressed(gpucontext.KeyEscape) {
		return false
	}
	e.fired++
	if e.fn != nil {
		e.fn()
	}
	return true
}

// Fired returns how many times the action has fired.
func (e *ExitAction) Fired() int { return e.fired }
