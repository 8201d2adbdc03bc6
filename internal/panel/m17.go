package panel

var m17Schema = []field{
	{FieldSource, SelM17Source},
	{FieldDestination, SelM17Destination},
}

// M17Panel shows M17 source and destination callsigns.
type M17Panel struct {
	*BasePanel
}

func NewM17Panel(r Renderer) Panel {
	return &M17Panel{
		BasePanel: newBasePanel(r, m17Schema, "", ProtocolM17),
	}
}

func (p *M17Panel) Update(ev Event) {
	if !p.IsSupported(ev) {
		return
	}
	if !ev.IsVoice() {
		p.Clear()
		return
	}
	p.fields.setClass(ClassActive, true)
	p.fields.setText(FieldSource, string(ev.Source))
	p.fields.setText(FieldDestination, string(ev.Destination))
}

func (p *M17Panel) Clear() {
	p.clearAll()
}
