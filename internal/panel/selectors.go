package panel

import "fmt"

// Shared slot markers.
const (
	SelSlot = ".openwebrx-meta-slot"

	ClassActive = "active"
	ClassSync   = "sync"
	ClassMuted  = "muted"
)

// DMR, relative to one slot element.
const (
	SelDMRID       = ".openwebrx-dmr-id .dmr-id"
	SelDMRName     = ".openwebrx-dmr-name"
	SelDMRTarget   = ".openwebrx-dmr-target"
	SelDMRLocation = ".openwebrx-dmr-id .location"

	// SelDMRTimeslotPanel carries the muted marker of a slot.
	SelDMRTimeslotPanel = ".openwebrx-dmr-timeslot-panel"
)

// YSF.
const (
	SelYSFMode     = ".openwebrx-ysf-mode"
	SelYSFSource   = ".openwebrx-ysf-source .callsign"
	SelYSFLocation = ".openwebrx-ysf-source .location"
	SelYSFUp       = ".openwebrx-ysf-up"
	SelYSFDown     = ".openwebrx-ysf-down"
)

// D-STAR.
const (
	SelDStarOurCall     = ".openwebrx-dstar-ourcall .callsign"
	SelDStarYourCall    = ".openwebrx-dstar-yourcall"
	SelDStarDeparture   = ".openwebrx-dstar-departure"
	SelDStarDestination = ".openwebrx-dstar-destination"
	SelDStarMessage     = ".openwebrx-dstar-message"
	SelDStarLocation    = ".openwebrx-dstar-ourcall .location"
)

// NXDN.
const (
	SelNXDNSource      = ".openwebrx-nxdn-source"
	SelNXDNName        = ".openwebrx-nxdn-name"
	SelNXDNDestination = ".openwebrx-nxdn-destination"
)

// M17.
const (
	SelM17Source      = ".openwebrx-m17-source"
	SelM17Destination = ".openwebrx-m17-destination"
)

// SlotRoot addresses the i-th timeslot element of a DMR panel.
func SlotRoot(i int) string {
	return fmt.Sprintf("%s:nth-of-type(%d)", SelSlot, i+1)
}
