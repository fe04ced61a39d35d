package input

// PanelButtons is a bit set of front-panel buttons.
type PanelButtons uint32

// Front-panel buttons.
const (
	PanelButton1 PanelButtons = 1 << iota
	PanelButton2
	PanelButton3
	PanelButton4
	PanelButton5
	PanelDPadLeft
	PanelDPadRight
	PanelDPadUp
	PanelDPadDown
	PanelDPadSelect
)

// PanelSource is a polled front-panel button source.
type PanelSource interface {
	Buttons() PanelButtons
}
