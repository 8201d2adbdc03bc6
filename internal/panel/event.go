package panel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Protocol tags as reported by the decoder.
const (
	ProtocolDMR   = "DMR"
	ProtocolYSF   = "YSF"
	ProtocolDStar = "DSTAR"
	ProtocolNXDN  = "NXDN"
	ProtocolM17   = "M17"
)

// SyncVoice is the sync value that marks an active voice transmission.
const SyncVoice = "voice"

// Text is a metadata value that may arrive as a JSON string, number or bool.
// Radio IDs are sent as numbers for some modes, callsigns as strings.
// The empty Text means "not present".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*t = Text(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("metadata text: %w", err)
		}
		*t = Text(n.String())
	}
	return nil
}

// String returns the raw text.
func (t Text) String() string {
	return string(t)
}

// Additional carries identity data looked up by the decoder (radioid etc).
type Additional struct {
	Callsign Text `json:"callsign,omitempty"`
	Fname    Text `json:"fname,omitempty"`
}

// Event is one metadata report from the decoding pipeline. Fields that do not
// apply to a protocol are simply absent.
type Event struct {
	Protocol    Text        `json:"protocol,omitempty"`
	Sync        Text        `json:"sync,omitempty"`
	Mode        Text        `json:"mode,omitempty"`
	Type        Text        `json:"type,omitempty"`
	Source      Text        `json:"source,omitempty"`
	Target      Text        `json:"target,omitempty"`
	Destination Text        `json:"destination,omitempty"`
	TalkerAlias Text        `json:"talkeralias,omitempty"`
	Additional  *Additional `json:"additional,omitempty"`
	Lat         *float64    `json:"lat,omitempty"`
	Lon         *float64    `json:"lon,omitempty"`
	Slot        *int        `json:"slot,omitempty"`

	// YSF
	Up   Text `json:"up,omitempty"`
	Down Text `json:"down,omitempty"`

	// D-STAR
	OurCall   Text `json:"ourcall,omitempty"`
	YourCall  Text `json:"yourcall,omitempty"`
	Departure Text `json:"departure,omitempty"`
	Message   Text `json:"message,omitempty"`
}

// IsVoice reports whether the event carries an active voice sync.
func (e Event) IsVoice() bool {
	return e.Sync == SyncVoice
}

// Fname returns additional.fname, or "" when no additional data was sent.
func (e Event) Fname() string {
	if e.Additional == nil {
		return ""
	}
	return string(e.Additional.Fname)
}

// Float returns a pointer to v, for building events with coordinates.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v, for building DMR events with a slot.
func Int(v int) *int {
	return &v
}
