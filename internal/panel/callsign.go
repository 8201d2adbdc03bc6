package panel

import "regexp"

// talkerAliasPattern extracts the leading callsign of a DMR talker alias such
// as "N0XYZ John".
var talkerAliasPattern = regexp.MustCompile(`^([A-Z0-9]+)(\s.*)?$`)

// ResolveCallsign returns the operator identity carried by the event.
//
// additional.callsign wins whenever additional data is present, even if it is
// empty. Otherwise the talker alias is parsed. The raw source ID is not
// consulted; callers add it as their own fallback.
func ResolveCallsign(ev Event) (string, bool) {
	if ev.Additional != nil {
		return string(ev.Additional.Callsign), true
	}
	return parseTalkerAlias(ev.TalkerAlias)
}

func parseTalkerAlias(alias Text) (string, bool) {
	if alias == "" {
		return "", false
	}
	m := talkerAliasPattern.FindStringSubmatch(string(alias))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// identityOrSource picks the id a DMR slot shows: a non-empty additional
// callsign, then the parsed talker alias, then the raw source. Unlike
// ResolveCallsign, an empty additional callsign does not stop the chain.
func identityOrSource(ev Event) string {
	if ev.Additional != nil && ev.Additional.Callsign != "" {
		return string(ev.Additional.Callsign)
	}
	if cs, ok := parseTalkerAlias(ev.TalkerAlias); ok {
		return cs
	}
	return string(ev.Source)
}
