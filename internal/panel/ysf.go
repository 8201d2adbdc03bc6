package panel

import "strings"

var ysfSchema = []field{
	{FieldMode, SelYSFMode},
	{FieldSource, SelYSFSource},
	{FieldUp, SelYSFUp},
	{FieldDown, SelYSFDown},
}

// YSFPanel shows System Fusion metadata. It is active while the decoder
// reports a mode; data modes show their fields without the active marker.
type YSFPanel struct {
	*BasePanel
}

func NewYSFPanel(r Renderer) Panel {
	return &YSFPanel{
		BasePanel: newBasePanel(r, ysfSchema, SelYSFLocation, ProtocolYSF),
	}
}

func (p *YSFPanel) Update(ev Event) {
	if !p.IsSupported(ev) {
		return
	}
	mode := string(ev.Mode)
	if mode == "" {
		p.Clear()
		return
	}
	p.fields.setText(FieldMode, mode)
	p.fields.setText(FieldSource, string(ev.Source))
	p.fields.setLocation(ev.Lat, ev.Lon, string(ev.Source))
	p.fields.setText(FieldUp, string(ev.Up))
	p.fields.setText(FieldDown, string(ev.Down))
	p.fields.setClass(ClassActive, !isDataMode(mode))
}

func (p *YSFPanel) Clear() {
	p.clearAll()
}

func (p *YSFPanel) State() State {
	st := p.BasePanel.State()
	st.Data = isDataMode(st.Fields[FieldMode])
	return st
}

func isDataMode(mode string) bool {
	return strings.Contains(mode, "data")
}
