package domain

import "fmt"

// ServePosition is the court position a serve is taken from (A-F).
// The zero value means the position was not recorded.
type ServePosition uint8

const (
	ServePositionNone ServePosition = iota
	ServePositionA
	ServePositionB
	ServePositionC
	ServePositionD
	ServePositionE
	ServePositionF
)

// Letter returns the notation letter, or 0 when unset
func (p ServePosition) Letter() rune {
	if p == ServePositionNone || p > ServePositionF {
		return 0
	}
	return 'A' + rune(p-ServePositionA)
}

// SubZone refines a numbered zone (A-D). The zero value means no subzone.
type SubZone uint8

const (
	SubZoneNone SubZone = iota
	SubZoneA
	SubZoneB
	SubZoneC
	SubZoneD
)

// Letter returns the notation letter, or 0 when unset
func (s SubZone) Letter() rune {
	if s == SubZoneNone || s > SubZoneD {
		return 0
	}
	return 'A' + rune(s-SubZoneA)
}

// Height qualifies receives and passes. The zero value means unrecorded.
type Height uint8

const (
	HeightNone Height = iota
	HeightLow
	HeightMid
	HeightHigh
)

// Letter returns the notation letter, or 0 when unset
func (h Height) Letter() rune {
	switch h {
	case HeightLow:
		return 'L'
	case HeightMid:
		return 'M'
	case HeightHigh:
		return 'H'
	default:
		return 0
	}
}

// ZoneKind separates the numbered court zones from the special outcomes
type ZoneKind uint8

const (
	ZoneNone ZoneKind = iota
	ZoneCourt
	ZoneOutOfBounds
	ZoneNet
	ZoneOverpass
)

// Zone is a court region 1-9 (optionally refined by a subzone) or one of
// the special outcomes. The zero value is "no zone recorded".
type Zone struct {
	kind   ZoneKind
	number uint8
	sub    SubZone
}

// Special zones
var (
	OutOfBounds = Zone{kind: ZoneOutOfBounds}
	Net         = Zone{kind: ZoneNet}
	Overpass    = Zone{kind: ZoneOverpass}
)

// CourtZone builds numbered zone n (1-9) with an optional subzone
func CourtZone(n uint8, sub SubZone) (Zone, error) {
	if n < 1 || n > 9 {
		return Zone{}, fmt.Errorf("court zone out of range: %d", n)
	}
	if sub > SubZoneD {
		return Zone{}, fmt.Errorf("invalid subzone: %d", sub)
	}
	return Zone{kind: ZoneCourt, number: n, sub: sub}, nil
}

// Kind returns the zone kind
func (z Zone) Kind() ZoneKind { return z.kind }

// Number returns 1-9 for court zones and 0 otherwise
func (z Zone) Number() uint8 { return z.number }

// SubZone returns the refinement of a court zone
func (z Zone) SubZone() SubZone { return z.sub }

// Present reports whether a zone was recorded at all
func (z Zone) Present() bool { return z.kind != ZoneNone }

// InCourt is true for the nine numbered zones
func (z Zone) InCourt() bool { return z.kind == ZoneCourt }

// InCourtOrAbsent is true for numbered zones and for no zone
func (z Zone) InCourtOrAbsent() bool { return z.kind == ZoneCourt || z.kind == ZoneNone }

// IsError is true for the zones that end a rally against the actor
func (z Zone) IsError() bool { return z.kind == ZoneOutOfBounds || z.kind == ZoneNet }

// String renders the zone in notation ("4", "4B", "0", "N", "V" or "")
func (z Zone) String() string {
	switch z.kind {
	case ZoneCourt:
		if l := z.sub.Letter(); l != 0 {
			return fmt.Sprintf("%d%c", z.number, l)
		}
		return fmt.Sprintf("%d", z.number)
	case ZoneOutOfBounds:
		return "0"
	case ZoneNet:
		return "N"
	case ZoneOverpass:
		return "V"
	default:
		return ""
	}
}
