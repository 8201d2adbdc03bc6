package panel

// DMR call types shown as a class on the slot.
const (
	DMRGroup  = "group"
	DMRDirect = "direct"
)

// DMRSlots is the number of DMR timeslots.
const DMRSlots = 2

var dmrSchema = []field{
	{FieldID, SelDMRID},
	{FieldName, SelDMRName},
	{FieldTarget, SelDMRTarget},
}

// DMRSlot renders one timeslot. Its active, sync and category markers live on
// the slot element itself; the muted marker is on its timeslot panel.
type DMRSlot struct {
	r      Renderer
	fields *fieldSet
	muted  bool
}

func newDMRSlot(r Renderer) *DMRSlot {
	return &DMRSlot{r: r, fields: newFieldSet(r, "", dmrSchema, SelDMRLocation)}
}

// Update applies ev to the slot. The sync marker follows any sync report;
// everything else needs voice sync.
func (s *DMRSlot) Update(ev Event) {
	s.fields.setClass(ClassSync, ev.Sync != "")
	if !ev.IsVoice() {
		s.Clear()
		return
	}
	callsign, _ := ResolveCallsign(ev)
	s.fields.setText(FieldID, identityOrSource(ev))
	s.fields.setText(FieldName, ev.Fname())
	s.fields.setCategory(string(ev.Type), DMRGroup, DMRDirect)
	s.fields.setText(FieldTarget, string(ev.Target))
	s.fields.setLocation(ev.Lat, ev.Lon, callsign)
	s.fields.setClass(ClassActive, true)
}

// Clear resets the fields and the active marker. The sync marker is kept.
func (s *DMRSlot) Clear() {
	s.fields.clearFields()
	s.fields.setClass(ClassActive, false)
}

// SetMuted marks the timeslot as muted by the listener.
func (s *DMRSlot) SetMuted(on bool) {
	if s.muted == on {
		return
	}
	s.muted = on
	s.r.SetClass(SelDMRTimeslotPanel, ClassMuted, on)
}

func (s *DMRSlot) reset() {
	s.Clear()
	s.fields.setClass(ClassSync, false)
	s.SetMuted(false)
}

func (s *DMRSlot) State() State {
	st := s.fields.state()
	st.Muted = s.muted
	return st
}

// SlotTable holds the two DMR timeslots. Slots never share state.
type SlotTable struct {
	slots [DMRSlots]*DMRSlot
}

// NewSlotTable scopes each slot to its own element under r.
func NewSlotTable(r Renderer) *SlotTable {
	t := &SlotTable{}
	for i := range t.slots {
		t.slots[i] = newDMRSlot(Scope(r, SlotRoot(i)))
	}
	return t
}

// Slot returns slot i, if it exists.
func (t *SlotTable) Slot(i int) (*DMRSlot, bool) {
	if i < 0 || i >= len(t.slots) {
		return nil, false
	}
	return t.slots[i], true
}

// Update routes ev to its slot. An event without a usable slot index clears
// the whole table.
func (t *SlotTable) Update(ev Event) {
	if ev.Slot == nil {
		t.Clear()
		return
	}
	slot, ok := t.Slot(*ev.Slot)
	if !ok {
		t.Clear()
		return
	}
	slot.Update(ev)
}

func (t *SlotTable) Clear() {
	for _, s := range t.slots {
		s.reset()
	}
}

func (t *SlotTable) States() []State {
	out := make([]State, 0, len(t.slots))
	for _, s := range t.slots {
		out = append(out, s.State())
	}
	return out
}

// DMRPanel shows both DMR timeslots.
type DMRPanel struct {
	*BasePanel
	table *SlotTable
}

func NewDMRPanel(r Renderer) Panel {
	return &DMRPanel{
		BasePanel: NewBasePanel(r, ProtocolDMR),
		table:     NewSlotTable(r),
	}
}

func (p *DMRPanel) Update(ev Event) {
	if !p.IsSupported(ev) {
		return
	}
	p.table.Update(ev)
}

func (p *DMRPanel) Clear() {
	p.table.Clear()
}

// Mute toggles the muted marker of one timeslot. It reports false for an
// unknown slot.
func (p *DMRPanel) Mute(slot int, on bool) bool {
	s, ok := p.table.Slot(slot)
	if !ok {
		return false
	}
	s.SetMuted(on)
	return true
}

// Slots exposes the slot table.
func (p *DMRPanel) Slots() *SlotTable {
	return p.table
}

func (p *DMRPanel) State() State {
	st := State{Protocol: ProtocolDMR, Slots: p.table.States()}
	for _, s := range st.Slots {
		st.Active = st.Active || s.Active
	}
	return st
}
