package goarg

import "strings"

// Presence is the bit flag recorded per field while binding.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Default value was applied.
)

// PresenceMap maps JSON Pointers ("/first_name") to Presence flags. Keys use
// external names; nested instances keep their own map.
type PresenceMap map[string]Presence

// Seen reports whether the pointer was supplied by the caller.
func (pm PresenceMap) Seen(pointer string) bool { return pm[pointer]&PresenceSeen != 0 }

// DefaultOnly reports whether the value at pointer was materialized only by a
// default: not seen and not null.
func (pm PresenceMap) DefaultOnly(pointer string) bool {
	p := pm[pointer]
	return p&PresenceDefaultApplied != 0 && p&PresenceSeen == 0 && p&PresenceWasNull == 0
}

// Clone returns a copy of the map.
func (pm PresenceMap) Clone() PresenceMap {
	if pm == nil {
		return nil
	}
	out := make(PresenceMap, len(pm))
	for k, v := range pm {
		out[k] = v
	}
	return out
}

// pointerOf renders a top-level JSON Pointer for an external name, escaping
// '~' and '/' per RFC 6901.
func pointerOf(name string) string {
	return "/" + strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
}
