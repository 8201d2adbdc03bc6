package panel

// NXDN call types shown as a class on the slot.
const (
	NXDNConference = "conference"
	NXDNIndividual = "individual"
)

var nxdnSchema = []field{
	{FieldSource, SelNXDNSource},
	{FieldName, SelNXDNName},
	{FieldDestination, SelNXDNDestination},
}

// NXDNPanel shows NXDN caller and destination.
type NXDNPanel struct {
	*BasePanel
}

func NewNXDNPanel(r Renderer) Panel {
	return &NXDNPanel{
		BasePanel: newBasePanel(r, nxdnSchema, "", ProtocolNXDN),
	}
}

func (p *NXDNPanel) Update(ev Event) {
	if !p.IsSupported(ev) {
		return
	}
	if !ev.IsVoice() {
		p.Clear()
		return
	}
	source := string(ev.Source)
	if ev.Additional != nil && ev.Additional.Callsign != "" {
		source = string(ev.Additional.Callsign)
	}
	p.fields.setClass(ClassActive, true)
	p.fields.setText(FieldSource, source)
	p.fields.setText(FieldName, ev.Fname())
	p.fields.setText(FieldDestination, string(ev.Destination))
	p.fields.setCategory(string(ev.Type), NXDNConference, NXDNIndividual)
}

func (p *NXDNPanel) Clear() {
	p.clearAll()
}
