// Package input takes per-tick input snapshots from the keyboard, a
// gamepad and the front-panel buttons.
//
// Keyboard events arrive through a gpucontext.EventSource. Gamepad and
// panel state are polled. Poller.Poll combines all three into an
// immutable Snapshot that carries both levels (what is down) and edges
// (what was pressed or released since the previous poll).
//
//	kb := input.NewKeyboard()
//	kb.Attach(app.EventSource())
//	p := input.NewPoller(input.WithKeyboard(kb))
//	exit := input.NewExitAction(quit)
//
//	// once per tick
//	snap := p.Poll()
//	exit.Check(snap)
package input
