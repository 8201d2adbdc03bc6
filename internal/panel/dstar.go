package panel

var dstarSchema = []field{
	{FieldOurCall, SelDStarOurCall},
	{FieldYourCall, SelDStarYourCall},
	{FieldDeparture, SelDStarDeparture},
	{FieldDestination, SelDStarDestination},
	{FieldMessage, SelDStarMessage},
}

// DStarPanel shows D-STAR header and slow data fields.
type DStarPanel struct {
	*BasePanel
}

func NewDStarPanel(r Renderer) Panel {
	return &DStarPanel{
		BasePanel: newBasePanel(r, dstarSchema, SelDStarLocation, ProtocolDStar),
	}
}

func (p *DStarPanel) Update(ev Event) {
	if !p.IsSupported(ev) {
		return
	}
	if !ev.IsVoice() {
		p.Clear()
		return
	}
	p.fields.setClass(ClassActive, true)
	p.fields.setText(FieldOurCall, string(ev.OurCall))
	p.fields.setText(FieldYourCall, string(ev.YourCall))
	p.fields.setText(FieldDeparture, string(ev.Departure))
	p.fields.setText(FieldDestination, string(ev.Destination))
	p.fields.setText(FieldMessage, string(ev.Message))
	p.fields.setLocation(ev.Lat, ev.Lon, string(ev.OurCall))
}

func (p *DStarPanel) Clear() {
	p.clearAll()
}
